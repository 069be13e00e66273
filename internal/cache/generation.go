package cache

import "sync"

// Generations counts invalidations per project. A value computed from the
// files of a project is stored only if no invalidation happened since the
// computation started.
type Generations struct {
	mu   sync.Mutex
	gens map[string]uint64
}

// NewGenerations creates an empty counter set.
func NewGenerations() *Generations {
	return &Generations{gens: make(map[string]uint64)}
}

// Current returns the generation of project.
func (g *Generations) Current(project string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gens[project]
}

// Bump starts a new generation for project. Call it before removing
// entries so that computations still running cannot store stale values.
func (g *Generations) Bump(project string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gens[project]++
}

// IfCurrent runs store while project is still at generation gen and
// reports whether it ran. Bump waits for store to finish.
func (g *Generations) IfCurrent(project string, gen uint64, store func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gens[project] != gen {
		return false
	}
	store()
	return true
}
