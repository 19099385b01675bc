package carpool

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/chachabrian/uniride-backend/internal/models"
)

// MemoryStore keeps everything in process. It backs STORE=memory and the
// tests; writes inside WithRide are staged and applied only when fn succeeds.
type MemoryStore struct {
	mu       sync.RWMutex
	locks    map[uint]*sync.Mutex
	rides    map[uint]models.Ride
	requests map[uint]models.JoinRequest
	messages map[uint][]models.ChatMessage

	nextRideID    uint
	nextRequestID uint
	nextMessageID uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		locks:    make(map[uint]*sync.Mutex),
		rides:    make(map[uint]models.Ride),
		requests: make(map[uint]models.JoinRequest),
		messages: make(map[uint][]models.ChatMessage),
	}
}

func (s *MemoryStore) CreateRide(ctx context.Context, ride *models.Ride) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextRideID++
	ride.ID = s.nextRideID
	s.rides[ride.ID] = *ride
	s.locks[ride.ID] = &sync.Mutex{}
	return nil
}

func (s *MemoryStore) Ride(ctx context.Context, id uint) (*models.Ride, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	ride, ok := s.rides[id]
	if !ok {
		return nil, ErrRideNotFound
	}
	return &ride, nil
}

func (s *MemoryStore) Rides(ctx context.Context, filter RideFilter) ([]models.Ride, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rides := make([]models.Ride, 0, len(s.rides))
	for _, ride := range s.rides {
		if filter.Matches(ride) {
			rides = append(rides, ride)
		}
	}
	sort.Slice(rides, func(i, j int) bool { return rides[i].ID < rides[j].ID })
	return rides, nil
}

func (s *MemoryStore) JoinRequests(ctx context.Context, rideID uint, states ...models.JoinRequestState) ([]models.JoinRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.requestsLocked(func(r models.JoinRequest) bool {
		return r.RideID == rideID && (len(states) == 0 || slices.Contains(states, r.State))
	}), nil
}

func (s *MemoryStore) RequestsByUser(ctx context.Context, userID uint) ([]models.JoinRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.requestsLocked(func(r models.JoinRequest) bool {
		return r.RequesterID == userID
	}), nil
}

func (s *MemoryStore) IsPassenger(ctx context.Context, rideID, userID uint) (bool, error) {
	reqs, err := s.JoinRequests(ctx, rideID, models.JoinRequestAccepted)
	if err != nil {
		return false, err
	}
	for _, r := range reqs {
		if r.RequesterID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) Messages(ctx context.Context, rideID uint) ([]models.ChatMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := slices.Clone(s.messages[rideID])
	sortMessages(msgs)
	return msgs, nil
}

func (s *MemoryStore) WithRide(ctx context.Context, rideID uint, fn func(tx RideTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	lock, ok := s.locks[rideID]
	s.mu.RUnlock()
	if !ok {
		return ErrRideNotFound
	}

	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	ride := s.rides[rideID]
	s.mu.RUnlock()

	tx := &memoryTx{
		store:    s,
		ride:     ride,
		requests: make(map[uint]models.JoinRequest),
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tx.rideDirty {
		s.rides[rideID] = tx.ride
	}
	for id, req := range tx.requests {
		s.requests[id] = req
	}
	s.messages[rideID] = append(s.messages[rideID], tx.messages...)
	return nil
}

func (s *MemoryStore) requestsLocked(keep func(models.JoinRequest) bool) []models.JoinRequest {
	var out []models.JoinRequest
	for _, r := range s.requests {
		if keep(r) {
			out = append(out, cloneRequest(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type memoryTx struct {
	store     *MemoryStore
	ride      models.Ride
	rideDirty bool
	requests  map[uint]models.JoinRequest
	messages  []models.ChatMessage
}

func (tx *memoryTx) Ride() *models.Ride {
	return &tx.ride
}

func (tx *memoryTx) SaveRide() error {
	tx.rideDirty = true
	return nil
}

// view merges committed requests for the ride with the ones staged in tx.
func (tx *memoryTx) view() []models.JoinRequest {
	tx.store.mu.RLock()
	reqs := tx.store.requestsLocked(func(r models.JoinRequest) bool {
		return r.RideID == tx.ride.ID
	})
	tx.store.mu.RUnlock()

	seen := make(map[uint]bool, len(reqs))
	for i, r := range reqs {
		if staged, ok := tx.requests[r.ID]; ok {
			reqs[i] = cloneRequest(staged)
		}
		seen[r.ID] = true
	}
	for id, r := range tx.requests {
		if !seen[id] {
			reqs = append(reqs, cloneRequest(r))
		}
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].ID < reqs[j].ID })
	return reqs
}

func (tx *memoryTx) PendingRequest(userID uint) (*models.JoinRequest, error) {
	for _, r := range tx.view() {
		if r.RequesterID == userID && r.State == models.JoinRequestPending {
			return &r, nil
		}
	}
	return nil, ErrRequestNotFound
}

func (tx *memoryTx) PendingRequests() ([]models.JoinRequest, error) {
	var out []models.JoinRequest
	for _, r := range tx.view() {
		if r.State == models.JoinRequestPending {
			out = append(out, r)
		}
	}
	return out, nil
}

func (tx *memoryTx) SaveJoinRequest(req *models.JoinRequest) error {
	if req.ID == 0 {
		tx.store.mu.Lock()
		tx.store.nextRequestID++
		req.ID = tx.store.nextRequestID
		tx.store.mu.Unlock()
	}
	tx.requests[req.ID] = cloneRequest(*req)
	return nil
}

func (tx *memoryTx) IsPassenger(userID uint) (bool, error) {
	for _, r := range tx.view() {
		if r.RequesterID == userID && r.State == models.JoinRequestAccepted {
			return true, nil
		}
	}
	return false, nil
}

func (tx *memoryTx) AppendMessage(msg *models.ChatMessage) error {
	tx.store.mu.Lock()
	tx.store.nextMessageID++
	msg.ID = tx.store.nextMessageID
	tx.store.mu.Unlock()

	tx.messages = append(tx.messages, *msg)
	return nil
}

func cloneRequest(r models.JoinRequest) models.JoinRequest {
	r.History = slices.Clone(r.History)
	return r
}

func sortMessages(msgs []models.ChatMessage) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if !msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
		}
		return msgs[i].ID < msgs[j].ID
	})
}
