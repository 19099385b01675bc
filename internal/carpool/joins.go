package carpool

import (
	"context"
	"log"

	"github.com/chachabrian/uniride-backend/internal/models"
)

// RequestToJoin files a pending request from actor for an open ride with a
// free seat.
func (s *Service) RequestToJoin(ctx context.Context, actor Actor, rideID uint) (*models.JoinRequest, error) {
	var req *models.JoinRequest
	var version int64
	err := s.store.WithRide(ctx, rideID, func(tx RideTx) error {
		r := tx.Ride()
		if r.LeadUserID == actor.UserID {
			return ErrAlreadyMember
		}
		if r.Status != models.RideStatusOpen {
			return ErrRideNotOpen
		}
		if r.AvailableSlots() == 0 {
			return ErrNoCapacity
		}
		if r.FemalesOnly && !actor.Female() {
			return ErrFemalesOnly
		}

		if _, err := tx.PendingRequest(actor.UserID); err == nil {
			return ErrDuplicateRequest
		} else if Kind(err) != "not_found" {
			return err
		}
		member, err := tx.IsPassenger(actor.UserID)
		if err != nil {
			return err
		}
		if member {
			return ErrAlreadyMember
		}

		req = models.NewJoinRequest(rideID, actor.UserID, s.now())
		version = r.Version
		return tx.SaveJoinRequest(req)
	})
	if err != nil {
		return nil, storeErr("request to join", err)
	}

	log.Printf("User %d requested to join ride %d", actor.UserID, rideID)
	s.publish(ctx, Event{
		Type:    EventJoinRequested,
		RideID:  rideID,
		Version: version,
		UserID:  actor.UserID,
		// the lead polls for pending requests
		Audience: s.leadOf(ctx, rideID),
	})
	return req, nil
}

// PendingRequests lists the unresolved requests of a ride for its lead.
func (s *Service) PendingRequests(ctx context.Context, rideID, leadID uint) ([]models.JoinRequest, error) {
	if err := s.requireLead(ctx, rideID, leadID); err != nil {
		return nil, err
	}
	reqs, err := s.store.JoinRequests(ctx, rideID, models.JoinRequestPending)
	if err != nil {
		return nil, storeErr("pending requests", err)
	}
	return nonNil(reqs), nil
}

// RespondToRequest resolves requesterID's pending request. Accepting
// re-checks capacity under the ride lock and takes a seat in the same commit.
func (s *Service) RespondToRequest(ctx context.Context, rideID, requesterID, leadID uint, accept bool) (*models.JoinRequest, error) {
	var req *models.JoinRequest
	var ride *models.Ride
	err := s.store.WithRide(ctx, rideID, func(tx RideTx) error {
		r := tx.Ride()
		if r.LeadUserID != leadID {
			return ErrNotLead
		}
		pending, err := tx.PendingRequest(requesterID)
		if err != nil {
			return err
		}

		now := s.now()
		if !accept {
			pending.Resolve(models.JoinRequestRejected, leadID, now)
			req = pending
			ride = copyRide(r)
			return tx.SaveJoinRequest(pending)
		}

		if r.Status != models.RideStatusOpen {
			return ErrRideNotOpen
		}
		if r.CurrentCapacity+1 > r.MaxCapacity {
			return ErrNoCapacity
		}
		r.CurrentCapacity++
		r.UpdatedAt = now
		r.Version++
		if err := tx.SaveRide(); err != nil {
			return err
		}
		pending.Resolve(models.JoinRequestAccepted, leadID, now)
		req = pending
		ride = copyRide(r)
		return tx.SaveJoinRequest(pending)
	})
	if err != nil {
		return nil, storeErr("respond to request", err)
	}

	eventType := EventJoinRejected
	if accept {
		eventType = EventJoinAccepted
		log.Printf("Lead %d accepted user %d on ride %d (%d/%d)", leadID, requesterID, rideID, ride.CurrentCapacity, ride.MaxCapacity)
	} else {
		log.Printf("Lead %d rejected user %d on ride %d", leadID, requesterID, rideID)
	}
	s.publish(ctx, Event{
		Type:     eventType,
		RideID:   rideID,
		Version:  ride.Version,
		UserID:   requesterID,
		Audience: s.audience(ctx, ride),
	})
	return req, nil
}

// WithdrawRequest lets a requester take back a pending request.
func (s *Service) WithdrawRequest(ctx context.Context, rideID, requesterID uint) (*models.JoinRequest, error) {
	var req *models.JoinRequest
	var version int64
	err := s.store.WithRide(ctx, rideID, func(tx RideTx) error {
		pending, err := tx.PendingRequest(requesterID)
		if err != nil {
			return err
		}
		pending.Resolve(models.JoinRequestWithdrawn, requesterID, s.now())
		req = pending
		version = tx.Ride().Version
		return tx.SaveJoinRequest(pending)
	})
	if err != nil {
		return nil, storeErr("withdraw request", err)
	}

	log.Printf("User %d withdrew from ride %d", requesterID, rideID)
	s.publish(ctx, Event{
		Type:     EventJoinWithdrawn,
		RideID:   rideID,
		Version:  version,
		UserID:   requesterID,
		Audience: s.leadOf(ctx, rideID),
	})
	return req, nil
}

// Passengers lists the accepted requests of a ride. Only participants may
// look.
func (s *Service) Passengers(ctx context.Context, rideID, viewerID uint) ([]models.JoinRequest, error) {
	if _, err := s.requireParticipant(ctx, rideID, viewerID); err != nil {
		return nil, err
	}
	reqs, err := s.store.JoinRequests(ctx, rideID, models.JoinRequestAccepted)
	if err != nil {
		return nil, storeErr("passengers", err)
	}
	return nonNil(reqs), nil
}

// RequestHistory returns every request ever filed for a ride, with the
// transitions each went through.
func (s *Service) RequestHistory(ctx context.Context, rideID, leadID uint) ([]models.JoinRequest, error) {
	if err := s.requireLead(ctx, rideID, leadID); err != nil {
		return nil, err
	}
	reqs, err := s.store.JoinRequests(ctx, rideID)
	if err != nil {
		return nil, storeErr("request history", err)
	}
	return nonNil(reqs), nil
}

// MyRequests lists every request userID has filed, newest last.
func (s *Service) MyRequests(ctx context.Context, userID uint) ([]models.JoinRequest, error) {
	reqs, err := s.store.RequestsByUser(ctx, userID)
	if err != nil {
		return nil, storeErr("my requests", err)
	}
	return nonNil(reqs), nil
}

func (s *Service) requireLead(ctx context.Context, rideID, userID uint) error {
	ride, err := s.store.Ride(ctx, rideID)
	if err != nil {
		return storeErr("get ride", err)
	}
	if ride.LeadUserID != userID {
		return ErrNotLead
	}
	return nil
}

// requireParticipant returns the ride when userID is its lead or an accepted
// passenger.
func (s *Service) requireParticipant(ctx context.Context, rideID, userID uint) (*models.Ride, error) {
	ride, err := s.store.Ride(ctx, rideID)
	if err != nil {
		return nil, storeErr("get ride", err)
	}
	if ride.LeadUserID == userID {
		return ride, nil
	}
	ok, err := s.store.IsPassenger(ctx, rideID, userID)
	if err != nil {
		return nil, storeErr("check passenger", err)
	}
	if !ok {
		return nil, ErrNotParticipant
	}
	return ride, nil
}

func (s *Service) leadOf(ctx context.Context, rideID uint) []uint {
	ride, err := s.store.Ride(ctx, rideID)
	if err != nil {
		return nil
	}
	return []uint{ride.LeadUserID}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
