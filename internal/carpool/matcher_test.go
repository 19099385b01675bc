package carpool

import (
	"context"
	"errors"
	"testing"

	"github.com/chachabrian/uniride-backend/internal/models"
)

var campus = stubPlaces{
	"Main Gate": {"Library"},
	"Library":   {"Main Gate"},
	"Hostel A":  {"Hostel B"},
	"Hostel B":  {"Hostel A"},
	"Market":    nil,
}

func rideIDs(rides []models.Ride) []uint {
	ids := make([]uint, 0, len(rides))
	for _, r := range rides {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestSearchNeighbourhood(t *testing.T) {
	svc, _ := newTestService(t, WithNeighborhoods(campus))
	ctx := context.Background()

	nearby := mustCreateRide(t, svc, lead, RideInput{From: "Library", To: "Hostel B", RideType: models.RideTypeCarpool})
	exact := mustCreateRide(t, svc, lead, RideInput{From: "Main Gate", To: "Hostel A", RideType: models.RideTypeCarpool})
	mustCreateRide(t, svc, lead, RideInput{From: "Market", To: "Hostel A", RideType: models.RideTypeCarpool})
	mustCreateRide(t, svc, lead, RideInput{From: "Main Gate", To: "Hostel A", RideType: models.RideTypeBike})

	got, err := svc.Search(ctx, bob, SearchQuery{
		From:      "Main Gate",
		To:        "Hostel A",
		RideTypes: []models.RideType{models.RideTypeCarpool},
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	ids := rideIDs(got)
	if len(ids) != 2 || ids[0] != exact.ID || ids[1] != nearby.ID {
		t.Errorf("Search() = %v, want [%d %d]", ids, exact.ID, nearby.ID)
	}
}

func TestSearchFiltersIneligibleRides(t *testing.T) {
	svc, _ := newTestService(t, WithNeighborhoods(campus))
	ctx := context.Background()

	own := mustCreateRide(t, svc, bob, RideInput{From: "Main Gate", To: "Market", RideType: models.RideTypeBike})
	full := mustCreateRide(t, svc, lead, RideInput{From: "Main Gate", To: "Market", RideType: models.RideTypeBike})
	mustJoin(t, svc, dave, full.ID)
	mustAccept(t, svc, full.ID, dave.UserID, lead.UserID)
	started := mustCreateRide(t, svc, lead, RideInput{From: "Main Gate", To: "Market", RideType: models.RideTypeBike})
	svc.StartRide(ctx, started.ID, lead.UserID)
	womenOnly := mustCreateRide(t, svc, leadF, RideInput{From: "Main Gate", To: "Market", RideType: models.RideTypeBike, FemalesOnly: true})
	open := mustCreateRide(t, svc, lead, RideInput{From: "Main Gate", To: "Market", RideType: models.RideTypeBike})

	got, err := svc.Search(ctx, bob, SearchQuery{From: "Main Gate", To: "Market"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if ids := rideIDs(got); len(ids) != 1 || ids[0] != open.ID {
		t.Errorf("Search() for bob = %v, want [%d] (own %d)", ids, open.ID, own.ID)
	}

	got, _ = svc.Search(ctx, alice, SearchQuery{From: "Main Gate", To: "Market"})
	if ids := rideIDs(got); len(ids) != 3 {
		t.Errorf("Search() for alice = %v, want own, females-only and open rides", ids)
	}

	got, _ = svc.Search(ctx, alice, SearchQuery{From: "Main Gate", To: "Market", FemalesOnly: true})
	if ids := rideIDs(got); len(ids) != 1 || ids[0] != womenOnly.ID {
		t.Errorf("females-only Search() = %v, want [%d]", ids, womenOnly.ID)
	}

	got, err = svc.Search(ctx, bob, SearchQuery{From: "Main Gate", To: "Market", FemalesOnly: true})
	if err != nil {
		t.Fatalf("females-only Search() by male error = %v, want an empty result", err)
	}
	if len(got) != 0 {
		t.Errorf("females-only Search() by male = %v, want none", rideIDs(got))
	}
}

func TestSearchDedupesAcrossTypes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	bike := mustCreateRide(t, svc, lead, RideInput{From: "A", To: "B", RideType: models.RideTypeBike})
	car := mustCreateRide(t, svc, lead, RideInput{From: "A", To: "B", RideType: models.RideTypeCarpool})

	got, err := svc.Search(ctx, bob, SearchQuery{
		From:      "A",
		To:        "B",
		RideTypes: []models.RideType{models.RideTypeBike, models.RideTypeCarpool, models.RideTypeBike},
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if ids := rideIDs(got); len(ids) != 2 || ids[0] != bike.ID || ids[1] != car.ID {
		t.Errorf("Search() = %v, want [%d %d]", ids, bike.ID, car.ID)
	}
}

func TestSearchValidation(t *testing.T) {
	svc, _ := newTestService(t)
	tests := []struct {
		name    string
		q       SearchQuery
		wantErr error
	}{
		{"same", SearchQuery{From: "A", To: "A"}, ErrSameLocation},
		{"missing", SearchQuery{From: "A"}, ErrMissingLocation},
		{"bad type", SearchQuery{From: "A", To: "B", RideTypes: []models.RideType{"jet"}}, ErrUnknownRideType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Search(context.Background(), bob, tt.q); !errors.Is(err, tt.wantErr) {
				t.Errorf("Search() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFallbackAfterEmptySearch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	got, err := svc.Search(ctx, bob, SearchQuery{From: "A", To: "B", RideTypes: []models.RideType{models.RideTypeBike}})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Search() = %d rides, want none", len(got))
	}

	ride, err := svc.CreateFallbackRide(ctx, bob, RideInput{From: "A", To: "B", RideType: models.RideTypeCarpool})
	if err != nil {
		t.Fatalf("CreateFallbackRide() error = %v", err)
	}
	if ride.LeadUserID != bob.UserID || ride.MaxCapacity != 4 || ride.CurrentCapacity != 1 || ride.Status != models.RideStatusOpen {
		t.Errorf("fallback ride = %+v", ride)
	}
}

func TestDedupeRides(t *testing.T) {
	in := []models.Ride{{ID: 3}, {ID: 1}, {ID: 3}, {ID: 2}, {ID: 1}}
	got := rideIDs(DedupeRides(in))
	want := []uint{3, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("DedupeRides() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("DedupeRides()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
