package mission

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned when a mission ID is not on the board.
var ErrNotFound = errors.New("mission not found")

// Board owns all missions for a play session. Nothing else may delete a
// mission; stale Expired entries leave only through CleanUpExpired. The
// counter behind minted IDs never reuses a value, even across removals.
type Board struct {
	mu       sync.RWMutex
	missions map[ID]Mission
	counter  uint64
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{missions: make(map[ID]Mission)}
}

// Add puts a mission on the board, replacing any entry with the same ID.
func (b *Board) Add(m Mission) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.missions[m.ID] = m
}

// Remove deletes a mission and returns it.
func (b *Board) Remove(id ID) (Mission, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.missions[id]
	if ok {
		delete(b.missions, id)
	}
	return m, ok
}

// Get returns a copy of the mission.
func (b *Board) Get(id ID) (Mission, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	m, ok := b.missions[id]
	return m, ok
}

// Mutate applies fn to the stored mission under the board lock. This is the
// only way callers change a mission in place; fn must not retain the pointer.
func (b *Board) Mutate(id ID, fn func(*Mission)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.missions[id]
	if !ok {
		return fmt.Errorf("mutate %s: %w", id, ErrNotFound)
	}
	fn(&m)
	b.missions[id] = m
	return nil
}

// Len reports how many missions the board holds.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.missions)
}

// Available returns all Available missions. No ordering guarantee; callers
// must not depend on iteration order.
func (b *Board) Available() []Mission {
	return b.filter(func(m Mission) bool { return m.Status == StatusAvailable })
}

// ByStatus returns all missions in the given status.
func (b *Board) ByStatus(status Status) []Mission {
	return b.filter(func(m Mission) bool { return m.Status == status })
}

// ByGuild returns all missions belonging to the guild.
func (b *Board) ByGuild(guildID GuildID) []Mission {
	return b.filter(func(m Mission) bool { return m.GuildID == guildID })
}

// ByTag returns all missions carrying the tag.
func (b *Board) ByTag(tag string) []Mission {
	return b.filter(func(m Mission) bool { return m.HasTag(tag) })
}

func (b *Board) filter(keep func(Mission) bool) []Mission {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []Mission
	for _, m := range b.missions {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

// NextID mints a fresh mission ID. Strictly increasing, never reused for the
// board's lifetime.
func (b *Board) NextID() ID {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.counter++
	return ID(fmt.Sprintf("mission_%d", b.counter))
}

// UpdateMissions sweeps time-based transitions: expires overdue missions and
// auto-completes InProgress missions whose objectives are all done. Returns
// the IDs that transitioned to Expired in this sweep. Running the sweep twice
// at the same now is a no-op the second time.
func (b *Board) UpdateMissions(now float64) []ID {
	b.mu.Lock()
	defer b.mu.Unlock()
	var expired []ID
	for id, m := range b.missions {
		changed := m.CheckExpiration(now)
		if changed {
			expired = append(expired, id)
		}
		if m.Status == StatusInProgress && m.AllObjectivesCompleted() {
			changed = m.Complete(now) || changed
		}
		if changed {
			b.missions[id] = m
		}
	}
	return expired
}

// CleanUpExpired permanently removes Expired missions created more than
// daysToKeep days before now. Missions in any other status are never removed
// here.
func (b *Board) CleanUpExpired(daysToKeep int, now float64) int {
	cutoff := now - float64(daysToKeep)*24*60*60
	b.mu.Lock()
	defer b.mu.Unlock()
	removed := 0
	for id, m := range b.missions {
		if m.Status == StatusExpired && m.CreationTime < cutoff {
			delete(b.missions, id)
			removed++
		}
	}
	return removed
}
