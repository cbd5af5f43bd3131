package providers

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"rpc-gateway.backend/internal/domain/entities"
	domainerrors "rpc-gateway.backend/internal/domain/errors"
)

// Registry maps (chain, optional kind override) to ordered candidate
// adapters. The adapter set is read-only after bootstrap; the per-cell
// weights are the only mutable state.
type Registry struct {
	adapters []Provider
	byKind   map[entities.ProviderKind]Provider

	mu      sync.RWMutex
	weights map[weightKey]*weight

	// now is swappable for deterministic tests.
	now func() time.Time
}

// NewRegistry builds the registry over a fixed adapter set.
func NewRegistry(adapters ...Provider) *Registry {
	byKind := make(map[entities.ProviderKind]Provider, len(adapters))
	for _, a := range adapters {
		byKind[a.Kind()] = a
	}
	return &Registry{
		adapters: adapters,
		byKind:   byKind,
		weights:  make(map[weightKey]*weight),
		now:      time.Now,
	}
}

// ByKind returns the adapter for an exact provider kind, used only for the
// testing-project provider override.
func (r *Registry) ByKind(kind entities.ProviderKind) (Provider, bool) {
	p, ok := r.byKind[kind]
	return p, ok
}

// Adapters returns the full adapter set.
func (r *Registry) Adapters() []Provider {
	return r.adapters
}

// CandidatesFor returns up to max eligible adapters for chain, ordered by
// (priority desc, consecutive failures asc, random tiebreak). Cooled-down
// cells are skipped. It never returns an empty non-error slice.
func (r *Registry) CandidatesFor(chain entities.Caip2, max int) ([]Provider, error) {
	type scored struct {
		p Provider
		w weight
		t int
	}

	now := r.now()
	supported := 0
	var eligible []scored

	r.mu.RLock()
	for _, a := range r.adapters {
		if !a.SupportsChain(chain) {
			continue
		}
		supported++
		w := r.weightSnapshot(a.Kind(), chain)
		if !w.eligible(now) {
			continue
		}
		eligible = append(eligible, scored{p: a, w: w, t: rand.Int()})
	}
	r.mu.RUnlock()

	if supported == 0 {
		return nil, fmt.Errorf("%w: %s", domainerrors.ErrUnsupportedChain, chain)
	}
	if len(eligible) == 0 {
		return nil, fmt.Errorf("%w: %s", domainerrors.ErrChainUnavailable, chain)
	}

	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].w.Priority != eligible[j].w.Priority {
			return eligible[i].w.Priority > eligible[j].w.Priority
		}
		if eligible[i].w.ConsecutiveFailures != eligible[j].w.ConsecutiveFailures {
			return eligible[i].w.ConsecutiveFailures < eligible[j].w.ConsecutiveFailures
		}
		return eligible[i].t < eligible[j].t
	})

	if max > 0 && len(eligible) > max {
		eligible = eligible[:max]
	}
	out := make([]Provider, len(eligible))
	for i, s := range eligible {
		out[i] = s.p
	}
	return out, nil
}

// WSCandidatesFor filters CandidatesFor down to WebSocket-capable adapters.
func (r *Registry) WSCandidatesFor(chain entities.Caip2, max int) ([]WSProvider, error) {
	candidates, err := r.CandidatesFor(chain, 0)
	if err != nil {
		return nil, err
	}
	var out []WSProvider
	for _, c := range candidates {
		if ws, ok := c.(WSProvider); ok {
			out = append(out, ws)
			if max > 0 && len(out) == max {
				break
			}
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s has no websocket-capable provider", domainerrors.ErrUnsupportedChain, chain)
	}
	return out, nil
}

// RecordOutcome updates the weight cell for one proxy attempt.
func (r *Registry) RecordOutcome(kind entities.ProviderKind, chain entities.Caip2, outcome entities.CallOutcome, httpStatus int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.weightLocked(kind, chain).applyOutcome(outcome, httpStatus, r.now())
}

// SetPriority overrides the configured priority for a cell.
func (r *Registry) SetPriority(kind entities.ProviderKind, chain entities.Caip2, priority entities.Priority) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.weightLocked(kind, chain).Priority = priority
}

// weightSnapshot returns a copy of the cell, or the Normal-priority default
// for cells that have never been touched. Caller holds the read lock.
func (r *Registry) weightSnapshot(kind entities.ProviderKind, chain entities.Caip2) weight {
	if w, ok := r.weights[weightKey{kind: kind, chain: chain}]; ok {
		return *w
	}
	return weight{Priority: entities.PriorityNormal}
}

// weightLocked returns the cell, creating it with Normal priority on first
// touch. Caller holds the write lock.
func (r *Registry) weightLocked(kind entities.ProviderKind, chain entities.Caip2) *weight {
	key := weightKey{kind: kind, chain: chain}
	if w, ok := r.weights[key]; ok {
		return w
	}
	w := &weight{Priority: entities.PriorityNormal}
	r.weights[key] = w
	return w
}
