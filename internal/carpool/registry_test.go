package carpool

import (
	"context"
	"errors"
	"testing"

	"github.com/chachabrian/uniride-backend/internal/models"
)

func TestCreateRide(t *testing.T) {
	tests := []struct {
		name    string
		actor   Actor
		in      RideInput
		wantErr error
		wantMax int
	}{
		{"bike", lead, RideInput{From: "A", To: "B", RideType: models.RideTypeBike}, nil, 2},
		{"rickshaw", lead, RideInput{From: "A", To: "B", RideType: models.RideTypeRickshaw}, nil, 4},
		{"carpool", lead, RideInput{From: "A", To: "B", RideType: models.RideTypeCarpool}, nil, 4},
		{"same location", lead, RideInput{From: "A", To: "a ", RideType: models.RideTypeBike}, ErrSameLocation, 0},
		{"missing location", lead, RideInput{From: "A", RideType: models.RideTypeBike}, ErrMissingLocation, 0},
		{"unknown type", lead, RideInput{From: "A", To: "B", RideType: "scooter"}, ErrUnknownRideType, 0},
		{"females only by male", lead, RideInput{From: "A", To: "B", RideType: models.RideTypeCarpool, FemalesOnly: true}, ErrFemalesOnly, 0},
		{"females only by female", alice, RideInput{From: "A", To: "B", RideType: models.RideTypeCarpool, FemalesOnly: true}, nil, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			ride, err := svc.CreateRide(context.Background(), tt.actor, tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CreateRide() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateRide() error = %v", err)
			}
			if ride.ID == 0 {
				t.Error("ride ID not assigned")
			}
			if ride.Status != models.RideStatusOpen {
				t.Errorf("Status = %s, want open", ride.Status)
			}
			if ride.CurrentCapacity != 1 {
				t.Errorf("CurrentCapacity = %d, want 1", ride.CurrentCapacity)
			}
			if ride.MaxCapacity != tt.wantMax {
				t.Errorf("MaxCapacity = %d, want %d", ride.MaxCapacity, tt.wantMax)
			}
			if ride.LeadUserID != tt.actor.UserID {
				t.Errorf("LeadUserID = %d, want %d", ride.LeadUserID, tt.actor.UserID)
			}
		})
	}
}

func TestCreateRideUnknownLocation(t *testing.T) {
	svc, _ := newTestService(t, WithNeighborhoods(stubPlaces{"Library": {"Hostel"}}))

	_, err := svc.CreateRide(context.Background(), lead, RideInput{From: "Library", To: "Mars", RideType: models.RideTypeBike})
	if !errors.Is(err, ErrUnknownLocation) {
		t.Fatalf("error = %v, want ErrUnknownLocation", err)
	}
	if Kind(err) != "validation" {
		t.Errorf("Kind = %q, want validation", Kind(err))
	}
}

func TestListRidesFilters(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	mine := mustCreateRide(t, svc, lead, RideInput{From: "A", To: "B", RideType: models.RideTypeBike})
	mustCreateRide(t, svc, alice, RideInput{From: "A", To: "C", RideType: models.RideTypeCarpool})
	if _, _, err := svc.StartRide(ctx, mine.ID, lead.UserID); err != nil {
		t.Fatalf("StartRide() error = %v", err)
	}

	all, err := svc.ListRides(ctx, RideFilter{})
	if err != nil {
		t.Fatalf("ListRides() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("ListRides() = %d rides, want 2", len(all))
	}

	open, _ := svc.ListRides(ctx, RideFilter{Statuses: []models.RideStatus{models.RideStatusOpen}})
	if len(open) != 1 || open[0].LeadUserID != alice.UserID {
		t.Errorf("open rides = %+v, want alice's ride", open)
	}

	led, _ := svc.ListRides(ctx, RideFilter{LeadUserID: lead.UserID})
	if len(led) != 1 || led[0].ID != mine.ID {
		t.Errorf("lead rides = %+v, want ride %d", led, mine.ID)
	}
}

func TestStartRideIsIdempotent(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()
	ride := mustCreateRide(t, svc, lead, RideInput{From: "A", To: "B", RideType: models.RideTypeCarpool})

	started, already, err := svc.StartRide(ctx, ride.ID, lead.UserID)
	if err != nil {
		t.Fatalf("first StartRide() error = %v", err)
	}
	if already {
		t.Error("first StartRide() reported alreadyStarted")
	}
	if started.Status != models.RideStatusStarted || started.StartedAt == nil {
		t.Fatalf("ride after start = %+v", started)
	}

	again, already, err := svc.StartRide(ctx, ride.ID, lead.UserID)
	if err != nil {
		t.Fatalf("second StartRide() error = %v", err)
	}
	if !already {
		t.Error("second StartRide() did not report alreadyStarted")
	}
	if again.Version != started.Version {
		t.Errorf("Version moved from %d to %d on repeated start", started.Version, again.Version)
	}
	if !again.StartedAt.Equal(*started.StartedAt) {
		t.Error("StartedAt changed on repeated start")
	}

	count := 0
	for _, typ := range pub.types() {
		if typ == EventRideStarted {
			count++
		}
	}
	if count != 1 {
		t.Errorf("published %d ride_started events, want 1", count)
	}
}

func TestStartRideRequiresLead(t *testing.T) {
	svc, _ := newTestService(t)
	ride := mustCreateRide(t, svc, lead, RideInput{From: "A", To: "B", RideType: models.RideTypeCarpool})

	_, _, err := svc.StartRide(context.Background(), ride.ID, bob.UserID)
	if !errors.Is(err, ErrAuthorization) {
		t.Fatalf("error = %v, want authorization error", err)
	}
}

func TestStartRideUnknown(t *testing.T) {
	svc, _ := newTestService(t)
	_, _, err := svc.StartRide(context.Background(), 99, lead.UserID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want not found", err)
	}
}

func TestEndRideBeforeStart(t *testing.T) {
	svc, _ := newTestService(t)
	ride := mustCreateRide(t, svc, lead, RideInput{From: "A", To: "B", RideType: models.RideTypeCarpool})

	_, err := svc.EndRide(context.Background(), ride.ID, lead.UserID)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("error = %v, want invalid state", err)
	}
}

func TestRideLifecycleIsForwardOnly(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	ride := mustCreateRide(t, svc, lead, RideInput{From: "A", To: "B", RideType: models.RideTypeCarpool})

	if _, err := svc.EndRide(ctx, ride.ID, bob.UserID); !errors.Is(err, ErrAuthorization) {
		t.Errorf("EndRide by non-lead error = %v, want authorization", err)
	}
	if _, _, err := svc.StartRide(ctx, ride.ID, lead.UserID); err != nil {
		t.Fatalf("StartRide() error = %v", err)
	}
	done, err := svc.EndRide(ctx, ride.ID, lead.UserID)
	if err != nil {
		t.Fatalf("EndRide() error = %v", err)
	}
	if done.Status != models.RideStatusCompleted || done.CompletedAt == nil {
		t.Fatalf("ride after end = %+v", done)
	}

	if _, err := svc.EndRide(ctx, ride.ID, lead.UserID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second EndRide() error = %v, want invalid state", err)
	}
	if _, _, err := svc.StartRide(ctx, ride.ID, lead.UserID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("StartRide() after completion error = %v, want invalid state", err)
	}
}

func TestStartRideRejectsPendingRequests(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	ride := mustCreateRide(t, svc, lead, RideInput{From: "A", To: "B", RideType: models.RideTypeCarpool})
	mustJoin(t, svc, alice, ride.ID)
	mustJoin(t, svc, bob, ride.ID)
	mustAccept(t, svc, ride.ID, alice.UserID, lead.UserID)

	if _, _, err := svc.StartRide(ctx, ride.ID, lead.UserID); err != nil {
		t.Fatalf("StartRide() error = %v", err)
	}

	pending, err := svc.PendingRequests(ctx, ride.ID, lead.UserID)
	if err != nil {
		t.Fatalf("PendingRequests() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending after start = %d, want 0", len(pending))
	}

	mine, _ := svc.MyRequests(ctx, bob.UserID)
	if len(mine) != 1 || mine[0].State != models.JoinRequestRejected {
		t.Fatalf("bob's requests = %+v, want one rejected", mine)
	}
	if _, err := svc.RespondToRequest(ctx, ride.ID, bob.UserID, lead.UserID, true); !errors.Is(err, ErrNotFound) {
		t.Errorf("accept after start error = %v, want not found", err)
	}
}

func TestSetTranscriptURL(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	ride := mustCreateRide(t, svc, lead, RideInput{From: "A", To: "B", RideType: models.RideTypeBike})

	if err := svc.SetTranscriptURL(ctx, ride.ID, "s3://x"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("SetTranscriptURL on open ride error = %v, want invalid state", err)
	}
	svc.StartRide(ctx, ride.ID, lead.UserID)
	svc.EndRide(ctx, ride.ID, lead.UserID)
	if err := svc.SetTranscriptURL(ctx, ride.ID, "s3://x"); err != nil {
		t.Fatalf("SetTranscriptURL() error = %v", err)
	}
	got, _ := svc.Ride(ctx, ride.ID)
	if got.TranscriptURL != "s3://x" {
		t.Errorf("TranscriptURL = %q", got.TranscriptURL)
	}
}
