// Package poller keeps a client's view of its rides fresh by polling the
// API on fixed intervals. Every watch is an owned set of goroutines that
// stops when its Handle is stopped.
package poller

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/chachabrian/uniride-backend/internal/models"
	"github.com/chachabrian/uniride-backend/pkg/api"
	"github.com/chachabrian/uniride-backend/pkg/client"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Source is the subset of the API the poller reads. *client.Client
// implements it.
type Source interface {
	Ride(ctx context.Context, rideID uint) (*api.RideResponse, error)
	Messages(ctx context.Context, rideID uint) ([]models.ChatMessage, error)
	PendingRequests(ctx context.Context, rideID uint) ([]models.JoinRequest, error)
	Passengers(ctx context.Context, rideID uint) ([]models.JoinRequest, error)
	ListRides(ctx context.Context, opts client.ListOptions) ([]api.RideResponse, error)
}

var _ Source = (*client.Client)(nil)

// Intervals between polls of each kind of state.
type Intervals struct {
	Participants time.Duration
	Chat         time.Duration
	Status       time.Duration
	Pending      time.Duration
	Ownership    time.Duration
}

func DefaultIntervals() Intervals {
	return Intervals{
		Participants: 3 * time.Second,
		Chat:         5 * time.Second,
		Status:       5 * time.Second,
		Pending:      7 * time.Second,
		Ownership:    10 * time.Second,
	}
}

// ChangeKind names what a poll found to be different.
type ChangeKind string

const (
	ChangeRide       ChangeKind = "ride"
	ChangeMessages   ChangeKind = "messages"
	ChangePending    ChangeKind = "pending"
	ChangePassengers ChangeKind = "passengers"
	ChangeOwned      ChangeKind = "owned"
)

type Change struct {
	Kind   ChangeKind
	RideID uint
}

type Option func(*Syncer)

func WithIntervals(iv Intervals) Option {
	return func(s *Syncer) { s.intervals = iv }
}

// WithMaxInFlight caps concurrent polls per ride.
func WithMaxInFlight(n int64) Option {
	return func(s *Syncer) { s.maxInFlight = n }
}

// WithRateLimit bounds the total poll rate across all watches.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(s *Syncer) { s.limiter = rate.NewLimiter(limit, burst) }
}

// WithOnChange is called after a poll changed the cache. It runs on the
// polling goroutine and must not block.
func WithOnChange(fn func(Change)) Option {
	return func(s *Syncer) { s.onChange = fn }
}

type Syncer struct {
	src         Source
	cache       *Cache
	intervals   Intervals
	maxInFlight int64
	limiter     *rate.Limiter
	onChange    func(Change)

	mu   sync.Mutex
	sems map[uint]*semaphore.Weighted
}

func NewSyncer(src Source, cache *Cache, opts ...Option) *Syncer {
	s := &Syncer{
		src:         src,
		cache:       cache,
		intervals:   DefaultIntervals(),
		maxInFlight: 2,
		limiter:     rate.NewLimiter(rate.Limit(5), 5),
		onChange:    func(Change) {},
		sems:        make(map[uint]*semaphore.Weighted),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Syncer) Cache() *Cache {
	return s.cache
}

// Handle owns the goroutines of one watch.
type Handle struct {
	cancel context.CancelFunc
	group  *errgroup.Group
	once   sync.Once
}

// Stop cancels the watch and waits for every loop to return. It is safe to
// call more than once.
func (h *Handle) Stop() {
	h.once.Do(func() {
		h.cancel()
		h.group.Wait()
	})
}

// WatchRide polls status, participants and chat of a ride, plus pending
// requests when the caller leads it.
func (s *Syncer) WatchRide(ctx context.Context, rideID uint, lead bool) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.loop(ctx, rideID, "status", s.intervals.Status, func(ctx context.Context) error {
			r, err := s.src.Ride(ctx, rideID)
			if err != nil {
				return err
			}
			if s.cache.MergeRide(r.Ride) {
				s.onChange(Change{Kind: ChangeRide, RideID: rideID})
			}
			return nil
		})
	})
	g.Go(func() error {
		return s.loop(ctx, rideID, "participants", s.intervals.Participants, func(ctx context.Context) error {
			reqs, err := s.src.Passengers(ctx, rideID)
			if err != nil {
				return err
			}
			if s.cache.ReplacePassengers(rideID, reqs) {
				s.onChange(Change{Kind: ChangePassengers, RideID: rideID})
			}
			return nil
		})
	})
	g.Go(func() error {
		return s.loop(ctx, rideID, "chat", s.intervals.Chat, func(ctx context.Context) error {
			msgs, err := s.src.Messages(ctx, rideID)
			if err != nil {
				return err
			}
			if s.cache.MergeMessages(rideID, msgs) > 0 {
				s.onChange(Change{Kind: ChangeMessages, RideID: rideID})
			}
			return nil
		})
	})
	if lead {
		g.Go(func() error {
			return s.loop(ctx, rideID, "pending", s.intervals.Pending, func(ctx context.Context) error {
				reqs, err := s.src.PendingRequests(ctx, rideID)
				if err != nil {
					return err
				}
				if s.cache.ReplacePending(rideID, reqs) {
					s.onChange(Change{Kind: ChangePending, RideID: rideID})
				}
				return nil
			})
		})
	}

	return &Handle{cancel: cancel, group: g}
}

// WatchOwnership polls the list of rides the caller leads.
func (s *Syncer) WatchOwnership(ctx context.Context) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.loop(ctx, 0, "ownership", s.intervals.Ownership, func(ctx context.Context) error {
			resp, err := s.src.ListRides(ctx, client.ListOptions{Mine: true})
			if err != nil {
				return err
			}
			rides := make([]models.Ride, len(resp))
			for i, r := range resp {
				rides[i] = r.Ride
			}
			if s.cache.ReplaceOwned(rides) {
				s.onChange(Change{Kind: ChangeOwned})
			}
			return nil
		})
	})

	return &Handle{cancel: cancel, group: g}
}

// loop polls once immediately and then on every tick until ctx is done.
// Poll failures are logged and retried on the next tick.
func (s *Syncer) loop(ctx context.Context, rideID uint, name string, every time.Duration, poll func(context.Context) error) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		s.tick(ctx, rideID, name, poll)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (s *Syncer) tick(ctx context.Context, rideID uint, name string, poll func(context.Context) error) {
	sem := s.semaphore(rideID)
	if !sem.TryAcquire(1) {
		return
	}
	defer sem.Release(1)

	if err := s.limiter.Wait(ctx); err != nil {
		return
	}
	if err := poll(ctx); err != nil && ctx.Err() == nil {
		log.Printf("poller: %s poll for ride %d failed: %v", name, rideID, err)
	}
}

func (s *Syncer) semaphore(rideID uint) *semaphore.Weighted {
	s.mu.Lock()
	defer s.mu.Unlock()
	sem, ok := s.sems[rideID]
	if !ok {
		sem = semaphore.NewWeighted(s.maxInFlight)
		s.sems[rideID] = sem
	}
	return sem
}
