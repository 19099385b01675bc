package carpool

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chachabrian/uniride-backend/internal/models"
)

// recordingPublisher captures every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(_ context.Context, e Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// stubPlaces is a fixed neighbourhood table.
type stubPlaces map[string][]string

func (p stubPlaces) Neighborhood(name string) []string {
	return append([]string{name}, p[name]...)
}

func (p stubPlaces) Lookup(name string) (string, bool) {
	for known, near := range p {
		if strings.EqualFold(known, name) {
			return known, true
		}
		for _, n := range near {
			if strings.EqualFold(n, name) {
				return n, true
			}
		}
	}
	return "", false
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

var (
	lead   = Actor{UserID: 1, Gender: models.GenderMale}
	alice  = Actor{UserID: 2, Gender: models.GenderFemale}
	bob    = Actor{UserID: 3, Gender: models.GenderMale}
	carol  = Actor{UserID: 4, Gender: models.GenderFemale}
	dave   = Actor{UserID: 5, Gender: models.GenderMale}
	erin   = Actor{UserID: 6, Gender: models.GenderUnspecified}
	leadF  = Actor{UserID: 7, Gender: models.GenderFemale}
	clock0 = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
)

func newTestService(t *testing.T, opts ...Option) (*Service, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	clock := &fakeClock{now: clock0}
	opts = append([]Option{WithPublisher(pub), WithClock(clock.Now)}, opts...)
	return NewService(NewMemoryStore(), opts...), pub
}

func mustCreateRide(t *testing.T, svc *Service, actor Actor, in RideInput) *models.Ride {
	t.Helper()
	ride, err := svc.CreateRide(context.Background(), actor, in)
	if err != nil {
		t.Fatalf("CreateRide() error = %v", err)
	}
	return ride
}

func mustJoin(t *testing.T, svc *Service, actor Actor, rideID uint) {
	t.Helper()
	if _, err := svc.RequestToJoin(context.Background(), actor, rideID); err != nil {
		t.Fatalf("RequestToJoin(user %d) error = %v", actor.UserID, err)
	}
}

func mustAccept(t *testing.T, svc *Service, rideID, requesterID, leadID uint) {
	t.Helper()
	if _, err := svc.RespondToRequest(context.Background(), rideID, requesterID, leadID, true); err != nil {
		t.Fatalf("RespondToRequest(accept user %d) error = %v", requesterID, err)
	}
}

func TestKindRoundTrip(t *testing.T) {
	tests := []struct {
		err  error
		kind string
	}{
		{ErrSameLocation, "validation"},
		{ErrNotLead, "forbidden"},
		{ErrNoCapacity, "invalid_state"},
		{ErrDuplicateRequest, "conflict"},
		{ErrRideNotFound, "not_found"},
		{storeErr("op", context.DeadlineExceeded), "transient"},
		{context.Canceled, "internal"},
	}

	for _, tt := range tests {
		if got := Kind(tt.err); got != tt.kind {
			t.Errorf("Kind(%v) = %q, want %q", tt.err, got, tt.kind)
		}
		if tt.kind == "internal" {
			continue
		}
		if got := KindError(tt.kind); Kind(got) != tt.kind {
			t.Errorf("KindError(%q) = %v", tt.kind, got)
		}
	}
}
