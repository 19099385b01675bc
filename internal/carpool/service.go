// Package carpool implements the ride lifecycle, join-request workflow and
// hub-and-spoke chat of UniRide. The Service is the single authority over
// ride state; every mutation runs inside Store.WithRide.
package carpool

import (
	"context"
	"log"
	"time"

	"github.com/chachabrian/uniride-backend/internal/models"
)

// Actor is the authenticated caller as seen by the core.
type Actor struct {
	UserID uint
	Gender models.Gender
}

func (a Actor) Female() bool {
	return a.Gender == models.GenderFemale
}

// Neighborhoods answers proximity questions about location names.
type Neighborhoods interface {
	// Lookup returns the directory spelling of name.
	Lookup(name string) (string, bool)
	// Neighborhood returns name itself followed by every nearby location.
	Neighborhood(name string) []string
}

// exactOnly is used when no location graph is configured.
type exactOnly struct{}

func (exactOnly) Lookup(name string) (string, bool) { return name, true }
func (exactOnly) Neighborhood(name string) []string { return []string{name} }

// Publisher receives an Event after every committed mutation.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type Option func(*Service)

func WithNeighborhoods(n Neighborhoods) Option {
	return func(s *Service) { s.places = n }
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithClock replaces time.Now; tests use it to pin timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

type Service struct {
	store  Store
	places Neighborhoods
	events Publisher
	now    func() time.Time
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		places: exactOnly{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) publish(ctx context.Context, event Event) {
	if s.events == nil {
		return
	}
	event.At = s.now()
	if err := s.events.Publish(ctx, event); err != nil {
		log.Printf("Failed to publish %s for ride %d: %v", event.Type, event.RideID, err)
	}
}
