package tournament

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/ItayH27/tanks-game-simulation/internal/plugin"
)

// resident tracks one algorithm module across a tournament. The module is
// loaded on first use and its base token is released once every scheduled
// side that references it has finished.
type resident struct {
	remaining int
	token     *plugin.Token
	err       error
}

// residents keeps algorithm modules loaded for exactly as long as the
// schedule still needs them.
type residents struct {
	mu     sync.Mutex
	table  *plugin.Table
	byPath map[string]*resident
}

func newResidents(table *plugin.Table, usage map[string]int) *residents {
	r := &residents{table: table, byPath: make(map[string]*resident, len(usage))}
	for path, n := range usage {
		r.byPath[path] = &resident{remaining: n}
	}
	return r
}

// acquire returns a fresh token for path, loading the module if needed. A
// failed load is remembered so later fixtures skip without retrying.
func (r *residents) acquire(ctx context.Context, path string) (*plugin.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.byPath[path]
	if !ok {
		return nil, plugin.ErrNotLoaded
	}
	if res.err != nil {
		return nil, res.err
	}
	if res.token == nil {
		if res.remaining <= 0 {
			return nil, plugin.ErrNotLoaded
		}
		tok, err := r.table.Load(ctx, path, plugin.RoleAlgorithm)
		if err != nil {
			res.err = err
			return nil, err
		}
		res.token = tok
	}
	return res.token.Clone()
}

// preload loads path without taking a per-fixture token.
func (r *residents) preload(ctx context.Context, path string) error {
	tok, err := r.acquire(ctx, path)
	if err != nil {
		return err
	}
	return tok.Release()
}

// done records that one scheduled side using path has finished, whether
// it ran or was skipped. The base token goes with the last one.
func (r *residents) done(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.byPath[path]
	if !ok || res.remaining <= 0 {
		return
	}
	res.remaining--
	if res.remaining > 0 || res.token == nil {
		return
	}
	if err := res.token.Release(); err != nil {
		log.Warn().Err(err).Str("module", path).Msg("Failed to release algorithm module")
	}
	res.token = nil
}

// close releases base tokens still held, e.g. after cancellation.
func (r *residents) close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, res := range r.byPath {
		if res.token == nil {
			continue
		}
		if err := res.token.Release(); err != nil {
			errs = append(errs, err)
		}
		res.token = nil
		res.remaining = 0
	}
	return errors.Join(errs...)
}
