package carpool

import (
	"context"
	"slices"

	"github.com/chachabrian/uniride-backend/internal/models"
)

// RideFilter narrows ListRides. Zero values match everything.
type RideFilter struct {
	Statuses      []models.RideStatus
	RideTypes     []models.RideType
	LeadUserID    uint
	From          []string
	To            []string
	WithFreeSlots bool
}

// Store persists rides, join requests and chat messages.
//
// Every mutation of a ride or of anything hanging off it goes through
// WithRide, which serialises callers per ride and commits all staged writes
// or none of them.
type Store interface {
	CreateRide(ctx context.Context, ride *models.Ride) error
	Ride(ctx context.Context, id uint) (*models.Ride, error)
	Rides(ctx context.Context, filter RideFilter) ([]models.Ride, error)

	JoinRequests(ctx context.Context, rideID uint, states ...models.JoinRequestState) ([]models.JoinRequest, error)
	RequestsByUser(ctx context.Context, userID uint) ([]models.JoinRequest, error)
	IsPassenger(ctx context.Context, rideID, userID uint) (bool, error)

	Messages(ctx context.Context, rideID uint) ([]models.ChatMessage, error)

	WithRide(ctx context.Context, rideID uint, fn func(tx RideTx) error) error
}

// RideTx is the view of a single locked ride inside Store.WithRide.
type RideTx interface {
	// Ride returns the locked ride. Changes are persisted with SaveRide.
	Ride() *models.Ride
	SaveRide() error

	// PendingRequest returns ErrRequestNotFound when userID has none.
	PendingRequest(userID uint) (*models.JoinRequest, error)
	PendingRequests() ([]models.JoinRequest, error)
	SaveJoinRequest(req *models.JoinRequest) error
	IsPassenger(userID uint) (bool, error)

	AppendMessage(msg *models.ChatMessage) error
}

// Matches reports whether ride passes the filter.
func (f RideFilter) Matches(ride models.Ride) bool {
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, ride.Status) {
		return false
	}
	if len(f.RideTypes) > 0 && !slices.Contains(f.RideTypes, ride.RideType) {
		return false
	}
	if f.LeadUserID != 0 && ride.LeadUserID != f.LeadUserID {
		return false
	}
	if len(f.From) > 0 && !slices.Contains(f.From, ride.From) {
		return false
	}
	if len(f.To) > 0 && !slices.Contains(f.To, ride.To) {
		return false
	}
	if f.WithFreeSlots && ride.AvailableSlots() == 0 {
		return false
	}
	return true
}
