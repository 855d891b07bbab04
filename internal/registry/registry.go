// Package registry resolves usage identifiers to live LLM client
// configurations, merging an in-memory layer with an optional disk-backed
// profile store. Disk hits are promoted into the memory tier on first use.
package registry

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/llm"
	"github.com/starford/ansuz/internal/profilestore"
)

// Event is emitted once per successful Add.
type Event struct {
	Client *llm.Client
}

// Subscriber receives registry events. The registry holds a single
// replaceable subscriber slot, not a list; each Subscribe call displaces
// the previous callback.
type Subscriber func(Event)

// Registry maps usage ids to client configurations. A usage id is unique
// across the union of the memory and disk layers, so Add consults the
// store's index as well as the map.
type Registry struct {
	mu         sync.Mutex
	id         string
	store      *profilestore.Store
	clients    map[string]*llm.Client
	subscriber Subscriber
}

// Option configures a Registry.
type Option func(*Registry)

// WithStore attaches a profile store as the registry's disk layer.
func WithStore(store *profilestore.Store) Option {
	return func(r *Registry) {
		r.store = store
	}
}

// New creates a registry. Without WithStore it is purely in-memory.
func New(opts ...Option) *Registry {
	r := &Registry{
		id:      uuid.NewString(),
		clients: make(map[string]*llm.Client),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ID returns this registry instance's unique identifier.
func (r *Registry) ID() string { return r.id }

// Store returns the attached profile store, or nil.
func (r *Registry) Store() *profilestore.Store { return r.store }

// Subscribe replaces the registry's subscriber callback.
func (r *Registry) Subscribe(fn Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscriber = fn
}

// resolvesLocked reports whether usageID is already taken in either layer:
// the in-memory map or the attached store's index. Caller holds r.mu.
func (r *Registry) resolvesLocked(usageID string) bool {
	if _, ok := r.clients[usageID]; ok {
		return true
	}
	if r.store != nil {
		if _, ok := r.store.FindByUsageID(usageID); ok {
			return true
		}
	}
	return false
}

// Add registers a client under its usage id. The id must not resolve
// through either layer already. On success the subscriber (if any) is
// notified synchronously; a panicking subscriber is logged and contained.
func (r *Registry) Add(client *llm.Client) error {
	if client.UsageID == "" {
		return fmt.Errorf("registry: client has no usage id: %w", apperr.ErrValidation)
	}

	r.mu.Lock()
	if r.resolvesLocked(client.UsageID) {
		r.mu.Unlock()
		return fmt.Errorf("registry: usage id %q already exists: %w", client.UsageID, apperr.ErrDuplicate)
	}
	r.clients[client.UsageID] = client
	fn := r.subscriber
	r.mu.Unlock()

	r.notify(fn, Event{Client: client})
	slog.Debug("registry: added client",
		slog.String("registry_id", r.id),
		slog.String("usage_id", client.UsageID))
	return nil
}

// Get resolves a usage id: memory first, then the store's index. A disk
// hit is materialized and promoted into the memory tier, so subsequent
// calls return the identical instance without touching disk.
func (r *Registry) Get(usageID string) (*llm.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if client, ok := r.clients[usageID]; ok {
		return client, nil
	}

	if r.store != nil {
		if meta, ok := r.store.FindByUsageID(usageID); ok {
			client, err := r.store.LoadProfile(meta.Name)
			if err != nil {
				return nil, err
			}
			r.clients[usageID] = client
			slog.Debug("registry: promoted profile",
				slog.String("registry_id", r.id),
				slog.String("usage_id", usageID),
				slog.String("profile", meta.Name))
			return client, nil
		}
	}

	return nil, fmt.Errorf("registry: usage id %q: %w", usageID, apperr.ErrNotFound)
}

// UsageIDs returns the sorted union of in-memory ids and the store's known
// ids, including profiles never materialized into memory.
func (r *Registry) UsageIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(r.clients))
	for id := range r.clients {
		seen[id] = struct{}{}
	}
	if r.store != nil {
		for _, id := range r.store.UsageIDs() {
			seen[id] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// ExportProfiles saves every in-memory client as a profile named after its
// model, described by its usage id. dir selects the target directory; when
// empty the attached store's directory is used, else the current working
// directory. Entries that exist only on disk are not re-exported.
func (r *Registry) ExportProfiles(dir string, includeSecrets bool) error {
	target := r.store
	if dir != "" || target == nil {
		if dir == "" {
			wd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("registry: resolve working directory: %w", err)
			}
			dir = wd
		}
		var err error
		target, err = profilestore.New(dir)
		if err != nil {
			return err
		}
	}

	r.mu.Lock()
	ids := make([]string, 0, len(r.clients))
	for id := range r.clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	clients := make([]*llm.Client, len(ids))
	for i, id := range ids {
		clients[i] = r.clients[id]
	}
	r.mu.Unlock()

	for i, client := range clients {
		if err := target.SaveProfile(client.Model, ids[i], client, includeSecrets); err != nil {
			return err
		}
	}

	slog.Info("registry: exported profiles",
		slog.String("registry_id", r.id),
		slog.String("dir", target.BaseDir()),
		slog.Int("count", len(clients)))
	return nil
}

// notify delivers one event. Observer bugs must not break registration,
// so panics are recovered and logged.
func (r *Registry) notify(fn Subscriber, ev Event) {
	if fn == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			slog.Warn("registry: subscriber failed",
				slog.String("registry_id", r.id),
				slog.Any("panic", rec))
		}
	}()
	fn(ev)
}
