package plugin

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

var (
	// ErrNotLoaded is returned for paths that have no resident module.
	ErrNotLoaded = errors.New("plugin: module not loaded")
	// ErrAlreadyReleased is returned when a released token is used again.
	ErrAlreadyReleased = errors.New("plugin: token already released")
	// ErrRoleMismatch is returned when a resident module is requested in a
	// different role than it was loaded with.
	ErrRoleMismatch = errors.New("plugin: module loaded with a different role")
)

// Module is a loaded unit of code that registers factories.
type Module interface {
	Name() string
	Register(b *Builder) error
	Close() error
}

// Opener turns a path into a Module.
type Opener interface {
	Open(ctx context.Context, path string) (Module, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, path string) (Module, error)

func (f OpenerFunc) Open(ctx context.Context, path string) (Module, error) { return f(ctx, path) }

type handle struct {
	path   string
	role   Role
	module Module
	entry  Entry
	usage  int
	gone   bool
}

// Table owns every loaded module, keyed by canonical path. A module stays
// resident while at least one Token for it is unreleased.
type Table struct {
	mu       sync.Mutex
	opener   Opener
	registry *Registry
	handles  map[string]*handle
}

// NewTable creates a table that opens modules with opener and records
// their registrations in registry.
func NewTable(opener Opener, registry *Registry) *Table {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Table{
		opener:   opener,
		registry: registry,
		handles:  make(map[string]*handle),
	}
}

// Registry returns the registry backing the table.
func (t *Table) Registry() *Registry { return t.registry }

// Load returns a token for the module at path, opening and registering it
// if it is not resident. Loading a resident path only increments its
// usage. A failed load leaves neither a registry entry nor a handle.
func (t *Table) Load(ctx context.Context, path string, role Role) (*Token, error) {
	key := Canonical(path)

	t.mu.Lock()
	defer t.mu.Unlock()

	if h, ok := t.handles[key]; ok {
		if h.role != role {
			return nil, fmt.Errorf("%w: %s is a %s, requested %s", ErrRoleMismatch, key, h.role, role)
		}
		h.usage++
		return &Token{table: t, h: h}, nil
	}

	mod, err := t.opener.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("plugin: open %s: %w", key, err)
	}
	entry, err := t.registry.Register(key, mod.Name(), role, mod.Register)
	if err != nil {
		if cerr := mod.Close(); cerr != nil {
			log.Warn().Err(cerr).Str("module", key).Msg("plugin: close after failed registration")
		}
		return nil, err
	}

	h := &handle{path: key, role: role, module: mod, entry: entry, usage: 1}
	t.handles[key] = h
	log.Debug().Str("module", entry.Name).Str("path", key).Str("role", role.String()).Msg("plugin: loaded")
	return &Token{table: t, h: h}, nil
}

// Usage returns the outstanding token count for path, or 0 when it is
// not resident.
func (t *Table) Usage(path string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if h, ok := t.handles[Canonical(path)]; ok {
		return h.usage
	}
	return 0
}

// Len returns the number of resident modules.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.handles)
}

// Resident lists resident module paths in sorted order.
func (t *Table) Resident() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.handles))
	for p := range t.handles {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Close unloads every resident module regardless of outstanding tokens.
// It is meant for process shutdown after all games have returned.
func (t *Table) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var errs []error
	for key, h := range t.handles {
		if h.usage > 0 {
			log.Warn().Str("module", h.entry.Name).Int("usage", h.usage).Msg("plugin: unloading module with outstanding tokens")
		}
		if err := t.unload(h); err != nil {
			errs = append(errs, err)
		}
		delete(t.handles, key)
	}
	return errors.Join(errs...)
}

func (t *Table) clone(h *handle) {
	t.mu.Lock()
	h.usage++
	t.mu.Unlock()
}

func (t *Table) release(h *handle) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	h.usage--
	if h.usage > 0 || h.gone {
		return nil
	}
	delete(t.handles, h.path)
	return t.unload(h)
}

// unload must be called with t.mu held.
func (t *Table) unload(h *handle) error {
	h.gone = true
	t.registry.Remove(h.entry.Key)
	if err := h.module.Close(); err != nil {
		return fmt.Errorf("plugin: close %s: %w", h.path, err)
	}
	log.Debug().Str("module", h.entry.Name).Str("path", h.path).Msg("plugin: unloaded")
	return nil
}

// Token is a counted reference to a resident module. Instances created
// from the token's entry must not be used after Release.
type Token struct {
	table    *Table
	h        *handle
	released atomic.Bool
}

// Entry returns the module's registration.
func (k *Token) Entry() Entry { return k.h.entry }

// Name returns the module's registered name.
func (k *Token) Name() string { return k.h.entry.Name }

// Path returns the canonical module path.
func (k *Token) Path() string { return k.h.path }

// Clone returns a new token for the same module, incrementing its usage.
func (k *Token) Clone() (*Token, error) {
	if k.released.Load() {
		return nil, ErrAlreadyReleased
	}
	k.table.clone(k.h)
	return &Token{table: k.table, h: k.h}, nil
}

// Release drops this reference. The module is unloaded when the last
// token is released.
func (k *Token) Release() error {
	if !k.released.CompareAndSwap(false, true) {
		return ErrAlreadyReleased
	}
	return k.table.release(k.h)
}

// BuiltinPrefix addresses compiled-in modules.
const BuiltinPrefix = "builtin:"

// Canonical returns the key a path is tracked under: builtin names are
// kept verbatim, files resolve to an absolute path without symlinks.
func Canonical(path string) string {
	if strings.HasPrefix(path, BuiltinPrefix) {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

// DisplayName returns the name a module path is reported under: the file
// name without extension, or the builtin name.
func DisplayName(path string) string {
	if strings.HasPrefix(path, BuiltinPrefix) {
		return strings.TrimPrefix(path, BuiltinPrefix)
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
