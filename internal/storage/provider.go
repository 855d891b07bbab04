// Package storage defines the profile-directory file abstraction.
package storage

// Provider is the interface for profile directory file operations. Paths
// are relative to the directory root.
type Provider interface {
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Exists reports whether a file is present at path.
	Exists(path string) bool
}
