// Package plugin loads tank algorithms and game managers from modules and
// tracks their lifetime. A Registry holds the factories each module
// registers; a Table maps module paths to loaded modules and unloads a
// module only once every Token handed out for it has been released.
package plugin

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/ItayH27/tanks-game-simulation/pkg/battle"
)

var (
	// ErrIncompleteRegistration is wrapped by every *BadRegistrationError.
	ErrIncompleteRegistration = errors.New("plugin: incomplete registration")
	// ErrDuplicateEntry is returned when a module registers under a key
	// that is already resident.
	ErrDuplicateEntry = errors.New("plugin: duplicate entry")
)

// Role is what a module is loaded as.
type Role uint8

const (
	RoleAlgorithm Role = iota + 1
	RoleGameManager
)

func (r Role) String() string {
	switch r {
	case RoleAlgorithm:
		return "algorithm"
	case RoleGameManager:
		return "game_manager"
	}
	return fmt.Sprintf("Role(%d)", uint8(r))
}

// Factory kind names used in registration errors.
const (
	KindName          = "name"
	KindPlayer        = "player"
	KindTankAlgorithm = "tank_algorithm"
	KindGameManager   = "game_manager"
)

// Entry is one module's registration. Key identifies the module (its
// canonical path); Name is what it calls itself and need not be unique.
type Entry struct {
	Key           string
	Name          string
	Role          Role
	Player        battle.PlayerFactory
	TankAlgorithm battle.TankAlgorithmFactory
	GameManager   battle.GameManagerFactory
}

func (e *Entry) check() (missing, unexpected []string) {
	if e.Name == "" {
		missing = append(missing, KindName)
	}
	want := map[string]bool{
		KindPlayer:        e.Role == RoleAlgorithm,
		KindTankAlgorithm: e.Role == RoleAlgorithm,
		KindGameManager:   e.Role == RoleGameManager,
	}
	have := map[string]bool{
		KindPlayer:        e.Player != nil,
		KindTankAlgorithm: e.TankAlgorithm != nil,
		KindGameManager:   e.GameManager != nil,
	}
	for _, kind := range []string{KindPlayer, KindTankAlgorithm, KindGameManager} {
		switch {
		case want[kind] && !have[kind]:
			missing = append(missing, kind)
		case !want[kind] && have[kind]:
			unexpected = append(unexpected, kind)
		}
	}
	return missing, unexpected
}

// BadRegistrationError describes a module whose registration did not
// match its role.
type BadRegistrationError struct {
	Name       string
	Role       Role
	Missing    []string
	Unexpected []string
}

func (e *BadRegistrationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "plugin: bad registration for %s %q", e.Role, e.Name)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, ", missing %s", strings.Join(e.Missing, ", "))
	}
	if len(e.Unexpected) > 0 {
		fmt.Fprintf(&b, ", unexpected %s", strings.Join(e.Unexpected, ", "))
	}
	return b.String()
}

func (e *BadRegistrationError) Unwrap() error { return ErrIncompleteRegistration }

// Builder is handed to a module while it registers. Every call attaches a
// factory to the entry the registry created for that module.
type Builder struct {
	reg    *Registry
	sealed bool
}

// Player attaches the coordinating player factory.
func (b *Builder) Player(f battle.PlayerFactory) {
	if e := b.last(); e != nil {
		e.Player = f
	}
}

// TankAlgorithm attaches the tank algorithm factory.
func (b *Builder) TankAlgorithm(f battle.TankAlgorithmFactory) {
	if e := b.last(); e != nil {
		e.TankAlgorithm = f
	}
}

// GameManager attaches the game manager factory.
func (b *Builder) GameManager(f battle.GameManagerFactory) {
	if e := b.last(); e != nil {
		e.GameManager = f
	}
}

func (b *Builder) last() *Entry {
	if b.sealed {
		log.Warn().Msg("plugin: builder used after registration finished, ignoring")
		return nil
	}
	return b.reg.lastPending()
}

// Registry holds the entries of every resident module.
type Registry struct {
	mu      sync.Mutex
	entries []*Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register creates an entry for the module at key, lets fn attach
// factories to it and validates the result. The registry stays locked for the whole sequence so
// that concurrent loads cannot attach to each other's entries. A failed
// registration leaves no entry behind.
func (r *Registry) Register(key, name string, role Role, fn func(*Builder) error) (Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.create(key, name, role); err != nil {
		return Entry{}, err
	}
	b := &Builder{reg: r}
	err := fn(b)
	b.sealed = true
	if err != nil {
		r.removeLast()
		return Entry{}, fmt.Errorf("plugin: register %q: %w", name, err)
	}
	if err := r.validateLast(); err != nil {
		r.removeLast()
		return Entry{}, err
	}
	return *r.entries[len(r.entries)-1], nil
}

func (r *Registry) create(key, name string, role Role) error {
	for _, e := range r.entries {
		if e.Key == key {
			return fmt.Errorf("%w: %q", ErrDuplicateEntry, key)
		}
	}
	r.entries = append(r.entries, &Entry{Key: key, Name: name, Role: role})
	return nil
}

func (r *Registry) lastPending() *Entry {
	if len(r.entries) == 0 {
		return nil
	}
	return r.entries[len(r.entries)-1]
}

func (r *Registry) validateLast() error {
	e := r.lastPending()
	if e == nil {
		return ErrIncompleteRegistration
	}
	missing, unexpected := e.check()
	if len(missing) > 0 || len(unexpected) > 0 {
		return &BadRegistrationError{Name: e.Name, Role: e.Role, Missing: missing, Unexpected: unexpected}
	}
	return nil
}

func (r *Registry) removeLast() {
	if n := len(r.entries); n > 0 {
		r.entries[n-1] = nil
		r.entries = r.entries[:n-1]
	}
}

// Remove deletes the entry for key and reports whether one was found.
func (r *Registry) Remove(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.Key == key {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Lookup returns the entry for key.
func (r *Registry) Lookup(key string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.Key == key {
			return *e, true
		}
	}
	return Entry{}, false
}

// Entries returns a copy of every valid entry in registration order.
func (r *Registry) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, *e)
	}
	return out
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
