package agent

import (
	"context"
	"sort"
	"sync"
)

type MemoryRepo struct {
	mu sync.RWMutex
	m  map[ID]Agent
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{m: map[ID]Agent{}}
}

func (r *MemoryRepo) Seed(ctx context.Context, as []Agent) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range as {
		r.m[a.ID] = a
	}
	return nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]Agent, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Agent, 0, len(r.m))
	for _, a := range r.m {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepo) ListByGuild(ctx context.Context, guildID string) ([]Agent, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, a := range all {
		if a.GuildID == guildID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *MemoryRepo) Get(ctx context.Context, id ID) (Agent, bool, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.m[id]
	return a, ok, nil
}

func (r *MemoryRepo) Update(ctx context.Context, a Agent) (Agent, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	r.m[a.ID] = a
	return a, nil
}
