// Package profilestore owns a directory of persisted LLM client profiles:
// one config.json index plus one document per profile. Every mutation of
// the directory goes through this API so the index and the documents stay
// consistent.
package profilestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/llm"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/storage"
)

// DefaultBaseDir returns the fallback profile directory under the user's
// home, `~/.ansuz/profiles`. Resolved once at construction; operations
// never consult ambient state.
func DefaultBaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("profilestore: resolve home: %w", err)
	}
	return filepath.Join(home, ".ansuz", "profiles"), nil
}

// Store manages profiles persisted in a single directory. A Store returned
// by New is fully initialized: the directory and index file exist and the
// index is loaded. The mutex exists because the HTTP and MCP surfaces call
// one Store from concurrent handlers; cross-process coordination is out of
// scope (single writer per directory).
type Store struct {
	mu sync.Mutex
	fs *storage.FS

	config models.ProfilesConfig

	// Default-profile cache. defaultLoaded distinguishes "cached nil"
	// (no default bound) from "not resolved yet". Invalidated by
	// SetDefaultProfile and Reload, never implicitly.
	defaultClient *llm.Client
	defaultLoaded bool
}

// New opens (or initializes) the profile directory at baseDir. An empty
// baseDir falls back to DefaultBaseDir.
func New(baseDir string) (*Store, error) {
	if baseDir == "" {
		d, err := DefaultBaseDir()
		if err != nil {
			return nil, err
		}
		baseDir = d
	}

	fs, err := storage.NewFS(baseDir)
	if err != nil {
		return nil, err
	}

	s := &Store{fs: fs}

	if !fs.Exists(models.ConfigFileName) {
		if err := s.writeConfig(models.EmptyProfilesConfig()); err != nil {
			return nil, err
		}
	}

	cfg, err := s.readConfig()
	if err != nil {
		return nil, err
	}
	s.config = cfg

	return s, nil
}

// BaseDir returns the absolute profile directory path.
func (s *Store) BaseDir() string { return s.fs.Root() }

// Config returns a snapshot of the in-memory index.
func (s *Store) Config() models.ProfilesConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// ProfileNames returns the profile names in index order. Pure projection,
// no I/O.
func (s *Store) ProfileNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config.Names()
}

// UsageIDs returns the non-empty usage ids in index order.
func (s *Store) UsageIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config.UsageIDs()
}

// Profiles returns a copy of the metadata entries in index order.
func (s *Store) Profiles() []models.ProfileMetadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ProfileMetadata, len(s.config.Profiles))
	copy(out, s.config.Profiles)
	return out
}

// FindByUsageID returns the metadata entry carrying the given usage id.
func (s *Store) FindByUsageID(usageID string) (models.ProfileMetadata, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config.FindByUsageID(usageID)
}

// LoadProfile reads and deserializes the named profile's document. Each
// call re-reads from disk; only the default profile is cached.
func (s *Store) LoadProfile(name string) (*llm.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadProfileLocked(name)
}

func (s *Store) loadProfileLocked(name string) (*llm.Client, error) {
	meta, ok := s.config.Find(name)
	if !ok {
		return nil, fmt.Errorf("profilestore: unknown profile %q: %w", name, apperr.ErrNotFound)
	}
	data, err := s.fs.Read(meta.File)
	if err != nil {
		return nil, err
	}
	client, err := llm.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("profilestore: profile %q: %w", name, err)
	}
	slog.Debug("profilestore: loaded profile", slog.String("name", name))
	return client, nil
}

// ReadDocument returns the raw document bytes of the named profile.
func (s *Store) ReadDocument(name string) ([]byte, error) {
	s.mu.Lock()
	meta, ok := s.config.Find(name)
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("profilestore: unknown profile %q: %w", name, apperr.ErrNotFound)
	}
	return s.fs.Read(meta.File)
}

// DefaultProfile returns the default profile's client, or (nil, nil) when
// no default is bound. The result is cached for the lifetime of the Store;
// repeated calls return the identical instance until SetDefaultProfile
// invalidates the cache.
func (s *Store) DefaultProfile() (*llm.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.defaultLoaded {
		return s.defaultClient, nil
	}

	if s.config.DefaultProfile == nil {
		s.defaultClient = nil
		s.defaultLoaded = true
		return nil, nil
	}

	client, err := s.loadProfileLocked(*s.config.DefaultProfile)
	if err != nil {
		return nil, err
	}
	s.defaultClient = client
	s.defaultLoaded = true
	return client, nil
}

// SaveProfile serializes client (with or without its secrets) into
// <name>.json and upserts the index entry. An overwritten entry moves to
// the end of the index; the relative order of the others is preserved.
func (s *Store) SaveProfile(name, description string, client *llm.Client, includeSecrets bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := client.Serialize(includeSecrets)
	if err != nil {
		return err
	}

	meta := models.ProfileMetadata{
		Name:        name,
		File:        name + ".json",
		Description: description,
		UsageID:     client.UsageID,
	}
	if err := meta.Validate(); err != nil {
		return err
	}

	next := make([]models.ProfileMetadata, 0, len(s.config.Profiles)+1)
	for _, p := range s.config.Profiles {
		if p.Name != name {
			next = append(next, p)
		}
	}
	next = append(next, meta)

	// Whole-index validation before anything touches disk, so a usage-id
	// collision with another entry never corrupts the directory.
	cfg, err := models.NewProfilesConfig(s.config.DefaultProfile, next)
	if err != nil {
		return err
	}

	if err := s.fs.Write(meta.File, doc); err != nil {
		return err
	}
	if err := s.writeConfig(cfg); err != nil {
		return err
	}
	s.config = cfg

	slog.Info("profilestore: saved profile",
		slog.String("name", name),
		slog.String("file", meta.File),
		slog.Bool("include_secrets", includeSecrets))
	return nil
}

// DeleteProfile removes the named profile's document and index entry. The
// current default profile cannot be deleted; rebind the default first. A
// missing document file is tolerated.
func (s *Store) DeleteProfile(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, ok := s.config.Find(name)
	if !ok {
		return fmt.Errorf("profilestore: unknown profile %q: %w", name, apperr.ErrInvalidOperation)
	}
	if s.config.DefaultProfile != nil && *s.config.DefaultProfile == name {
		return fmt.Errorf("profilestore: profile %q is the default profile, set another default first: %w",
			name, apperr.ErrInvalidOperation)
	}

	if err := s.fs.Delete(meta.File); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	next := make([]models.ProfileMetadata, 0, len(s.config.Profiles)-1)
	for _, p := range s.config.Profiles {
		if p.Name != name {
			next = append(next, p)
		}
	}
	cfg, err := models.NewProfilesConfig(s.config.DefaultProfile, next)
	if err != nil {
		return err
	}
	if err := s.writeConfig(cfg); err != nil {
		return err
	}
	s.config = cfg

	slog.Info("profilestore: deleted profile", slog.String("name", name))
	return nil
}

// SetDefaultProfile binds the default profile and invalidates the default
// cache before returning, so no caller observes a stale default after a
// successful rebind.
func (s *Store) SetDefaultProfile(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.config.Find(name); !ok {
		return fmt.Errorf("profilestore: unknown profile %q: %w", name, apperr.ErrInvalidOperation)
	}

	cfg, err := models.NewProfilesConfig(&name, s.config.Profiles)
	if err != nil {
		return err
	}
	if err := s.writeConfig(cfg); err != nil {
		return err
	}
	s.config = cfg

	s.defaultClient = nil
	s.defaultLoaded = false

	slog.Info("profilestore: default profile set", slog.String("name", name))
	return nil
}

// Reload re-reads the index from disk, discarding the in-memory copy and
// the default cache. Used after external edits to the directory.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.readConfig()
	if err != nil {
		return err
	}
	s.config = cfg
	s.defaultClient = nil
	s.defaultLoaded = false
	return nil
}

func (s *Store) snapshotLocked() models.ProfilesConfig {
	out := models.ProfilesConfig{DefaultProfile: s.config.DefaultProfile}
	out.Profiles = make([]models.ProfileMetadata, len(s.config.Profiles))
	copy(out.Profiles, s.config.Profiles)
	return out
}

func (s *Store) readConfig() (models.ProfilesConfig, error) {
	data, err := s.fs.Read(models.ConfigFileName)
	if err != nil {
		return models.ProfilesConfig{}, err
	}
	return models.ParseProfilesConfig(data)
}

// writeConfig persists the index with stable two-space indentation.
func (s *Store) writeConfig(cfg models.ProfilesConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("profilestore: marshal index: %w", err)
	}
	return s.fs.Write(models.ConfigFileName, append(data, '\n'))
}
