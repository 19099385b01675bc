package poller

import (
	"cmp"
	"slices"
	"sync"

	"github.com/chachabrian/uniride-backend/internal/models"
)

// Cache holds the client-side view of rides being watched. Fetched state is
// merged so that a late or reordered response never rolls the view back.
type Cache struct {
	mu         sync.RWMutex
	rides      map[uint]models.Ride
	messages   map[uint][]models.ChatMessage
	pending    map[uint][]models.JoinRequest
	passengers map[uint][]models.JoinRequest
	owned      []uint
}

func NewCache() *Cache {
	return &Cache{
		rides:      make(map[uint]models.Ride),
		messages:   make(map[uint][]models.ChatMessage),
		pending:    make(map[uint][]models.JoinRequest),
		passengers: make(map[uint][]models.JoinRequest),
	}
}

// MergeRide keeps the ride with the highest Version. A status never moves
// backwards even if an older copy carries a higher version.
func (c *Cache) MergeRide(r models.Ride) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mergeRideLocked(r)
}

func (c *Cache) mergeRideLocked(r models.Ride) bool {
	cur, ok := c.rides[r.ID]
	if ok {
		if r.Version <= cur.Version || r.Status.Rank() < cur.Status.Rank() {
			return false
		}
	}
	c.rides[r.ID] = r
	return true
}

func (c *Cache) Ride(id uint) (models.Ride, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.rides[id]
	return r, ok
}

// MergeMessages appends messages not seen before and returns how many were
// new. The stored list stays ordered by time, then ID.
func (c *Cache) MergeMessages(rideID uint, msgs []models.ChatMessage) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur := c.messages[rideID]
	seen := make(map[uint]bool, len(cur))
	for _, m := range cur {
		seen[m.ID] = true
	}
	added := 0
	for _, m := range msgs {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		cur = append(cur, m)
		added++
	}
	if added > 0 {
		slices.SortStableFunc(cur, func(a, b models.ChatMessage) int {
			if d := a.CreatedAt.Compare(b.CreatedAt); d != 0 {
				return d
			}
			return cmp.Compare(a.ID, b.ID)
		})
		c.messages[rideID] = cur
	}
	return added
}

func (c *Cache) Messages(rideID uint) []models.ChatMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.messages[rideID])
}

// ReplacePending swaps in the latest pending list and reports whether it
// differs from the previous one.
func (c *Cache) ReplacePending(rideID uint, reqs []models.JoinRequest) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return replaceSet(c.pending, rideID, reqs)
}

func (c *Cache) Pending(rideID uint) []models.JoinRequest {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.pending[rideID])
}

// ReplacePassengers swaps in the latest passenger list and reports whether
// it differs from the previous one.
func (c *Cache) ReplacePassengers(rideID uint, reqs []models.JoinRequest) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return replaceSet(c.passengers, rideID, reqs)
}

func (c *Cache) Passengers(rideID uint) []models.JoinRequest {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.passengers[rideID])
}

// ReplaceOwned records the rides led by the current user, merging each into
// the ride view, and reports whether the set of IDs changed.
func (c *Cache) ReplaceOwned(rides []models.Ride) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]uint, 0, len(rides))
	for _, r := range rides {
		c.mergeRideLocked(r)
		ids = append(ids, r.ID)
	}
	slices.Sort(ids)
	if slices.Equal(ids, c.owned) {
		return false
	}
	c.owned = ids
	return true
}

func (c *Cache) Owned() []models.Ride {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Ride, 0, len(c.owned))
	for _, id := range c.owned {
		out = append(out, c.rides[id])
	}
	return out
}

func replaceSet(m map[uint][]models.JoinRequest, rideID uint, reqs []models.JoinRequest) bool {
	prev, ok := m[rideID]
	m[rideID] = slices.Clone(reqs)
	if !ok {
		return true
	}
	if len(prev) != len(reqs) {
		return true
	}
	states := make(map[uint]models.JoinRequestState, len(prev))
	for _, r := range prev {
		states[r.ID] = r.State
	}
	for _, r := range reqs {
		if s, ok := states[r.ID]; !ok || s != r.State {
			return true
		}
	}
	return false
}
