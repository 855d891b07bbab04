// Package models defines the domain types for Ansuz: the on-disk profile
// index and the metadata entry for each stored profile.
package models

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ansuz/internal/apperr"
)

// ConfigFileName is the index file every profile directory carries.
const ConfigFileName = "config.json"

var nameRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Reserved names collide with filesystem conventions or the index itself.
var reservedNames = []string{".", "..", "config"}

// ProfileMetadata is one entry in the profile index.
type ProfileMetadata struct {
	Name        string `json:"name"`
	File        string `json:"file"`
	Description string `json:"description"`
	UsageID     string `json:"usage_id,omitempty"`
}

// Validate checks the structural invariants of a single entry.
func (m ProfileMetadata) Validate() error {
	err := validation.ValidateStruct(&m,
		validation.Field(&m.Name,
			validation.Required,
			validation.Match(nameRe),
			validation.NotIn(toAny(reservedNames)...),
		),
		validation.Field(&m.File,
			validation.Required,
			validation.Match(regexp.MustCompile(`\.json$`)),
		),
	)
	if err != nil {
		return fmt.Errorf("models: profile %q: %v: %w", m.Name, err, apperr.ErrValidation)
	}
	return nil
}

// ProfilesConfig is the per-directory profile index. DefaultProfile is nil
// when no default is bound; Profiles keeps insertion/save order.
type ProfilesConfig struct {
	DefaultProfile *string           `json:"default_profile"`
	Profiles       []ProfileMetadata `json:"profiles"`
}

// NewProfilesConfig builds a validated index. Every construction runs the
// whole-object invariant pass, not only loads from disk.
func NewProfilesConfig(defaultProfile *string, profiles []ProfileMetadata) (ProfilesConfig, error) {
	c := ProfilesConfig{DefaultProfile: defaultProfile, Profiles: profiles}
	if c.Profiles == nil {
		c.Profiles = []ProfileMetadata{}
	}
	if err := c.Validate(); err != nil {
		return ProfilesConfig{}, err
	}
	return c, nil
}

// EmptyProfilesConfig is the canonical value for a directory without an
// index file yet.
func EmptyProfilesConfig() ProfilesConfig {
	return ProfilesConfig{DefaultProfile: nil, Profiles: []ProfileMetadata{}}
}

// ParseProfilesConfig deserializes and re-validates a stored index, so a
// hand-edited or corrupted file fails the same way direct construction does.
func ParseProfilesConfig(data []byte) (ProfilesConfig, error) {
	var c ProfilesConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return ProfilesConfig{}, fmt.Errorf("models: parse index: %v: %w", err, apperr.ErrValidation)
	}
	if c.Profiles == nil {
		c.Profiles = []ProfileMetadata{}
	}
	if err := c.Validate(); err != nil {
		return ProfilesConfig{}, err
	}
	return c, nil
}

// Validate runs the whole-object invariant pass: per-entry checks first,
// then name uniqueness, usage-id uniqueness, and default binding.
func (c ProfilesConfig) Validate() error {
	for _, p := range c.Profiles {
		if err := p.Validate(); err != nil {
			return err
		}
	}

	names := make(map[string]struct{}, len(c.Profiles))
	for _, p := range c.Profiles {
		if _, dup := names[p.Name]; dup {
			return fmt.Errorf("models: duplicate profile name %q: %w", p.Name, apperr.ErrValidation)
		}
		names[p.Name] = struct{}{}
	}

	usageIDs := make(map[string]struct{}, len(c.Profiles))
	for _, p := range c.Profiles {
		if p.UsageID == "" {
			continue
		}
		if _, dup := usageIDs[p.UsageID]; dup {
			return fmt.Errorf("models: duplicate usage id %q: %w", p.UsageID, apperr.ErrValidation)
		}
		usageIDs[p.UsageID] = struct{}{}
	}

	if c.DefaultProfile != nil {
		if _, ok := names[*c.DefaultProfile]; !ok {
			return fmt.Errorf("models: default_profile %q is not present in profiles [%s]: %w",
				*c.DefaultProfile, strings.Join(c.Names(), " "), apperr.ErrValidation)
		}
	}

	return nil
}

// Names returns the profile names in index order.
func (c ProfilesConfig) Names() []string {
	out := make([]string, len(c.Profiles))
	for i, p := range c.Profiles {
		out[i] = p.Name
	}
	return out
}

// UsageIDs returns the non-empty usage ids in index order.
func (c ProfilesConfig) UsageIDs() []string {
	var out []string
	for _, p := range c.Profiles {
		if p.UsageID != "" {
			out = append(out, p.UsageID)
		}
	}
	return out
}

// Find returns the entry with the given name.
func (c ProfilesConfig) Find(name string) (ProfileMetadata, bool) {
	for _, p := range c.Profiles {
		if p.Name == name {
			return p, true
		}
	}
	return ProfileMetadata{}, false
}

// FindByUsageID returns the entry carrying the given usage id.
func (c ProfilesConfig) FindByUsageID(usageID string) (ProfileMetadata, bool) {
	if usageID == "" {
		return ProfileMetadata{}, false
	}
	for _, p := range c.Profiles {
		if p.UsageID == usageID {
			return p, true
		}
	}
	return ProfileMetadata{}, false
}

func toAny(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
