package guild

import (
	"context"
	"sort"
	"sync"
)

type MemoryRepo struct {
	mu sync.RWMutex
	m  map[string]Guild
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{m: map[string]Guild{}}
}

func (r *MemoryRepo) Seed(ctx context.Context, gs []Guild) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range gs {
		r.m[g.ID] = g
	}
	return nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]Guild, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Guild, 0, len(r.m))
	for _, g := range r.m {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Guild, bool, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.m[id]
	return g, ok, nil
}

func (r *MemoryRepo) Update(ctx context.Context, g Guild) (Guild, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	r.m[g.ID] = g
	return g, nil
}
