package carpool

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/chachabrian/uniride-backend/internal/models"
)

// RideInput describes a ride to offer.
type RideInput struct {
	From        string
	To          string
	RideType    models.RideType
	FemalesOnly bool
}

func (s *Service) validateRide(actor Actor, in *RideInput) error {
	in.From = strings.TrimSpace(in.From)
	in.To = strings.TrimSpace(in.To)

	if in.From == "" || in.To == "" {
		return ErrMissingLocation
	}
	if strings.EqualFold(in.From, in.To) {
		return ErrSameLocation
	}
	var err error
	if in.From, err = s.lookup(in.From); err != nil {
		return err
	}
	if in.To, err = s.lookup(in.To); err != nil {
		return err
	}
	if !in.RideType.Valid() {
		return fmt.Errorf("%w %q", ErrUnknownRideType, in.RideType)
	}
	if in.FemalesOnly && !actor.Female() {
		return ErrFemalesOnly
	}
	return nil
}

func (s *Service) lookup(name string) (string, error) {
	canonical, ok := s.places.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownLocation, name)
	}
	return canonical, nil
}

// CreateRide offers a new open ride with actor as lead.
func (s *Service) CreateRide(ctx context.Context, actor Actor, in RideInput) (*models.Ride, error) {
	if err := s.validateRide(actor, &in); err != nil {
		return nil, err
	}

	maxCapacity, _ := in.RideType.MaxCapacity()
	now := s.now()
	ride := &models.Ride{
		LeadUserID:      actor.UserID,
		From:            in.From,
		To:              in.To,
		RideType:        in.RideType,
		FemalesOnly:     in.FemalesOnly,
		MaxCapacity:     maxCapacity,
		CurrentCapacity: 1,
		Status:          models.RideStatusOpen,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.CreateRide(ctx, ride); err != nil {
		return nil, storeErr("create ride", err)
	}

	log.Printf("Ride %d created by user %d: %s -> %s (%s)", ride.ID, ride.LeadUserID, ride.From, ride.To, ride.RideType)
	s.publish(ctx, Event{
		Type:     EventRideCreated,
		RideID:   ride.ID,
		Version:  ride.Version,
		UserID:   actor.UserID,
		Audience: []uint{actor.UserID},
	})
	return ride, nil
}

// ListRides returns every ride passing filter, oldest first.
func (s *Service) ListRides(ctx context.Context, filter RideFilter) ([]models.Ride, error) {
	rides, err := s.store.Rides(ctx, filter)
	if err != nil {
		return nil, storeErr("list rides", err)
	}
	return rides, nil
}

func (s *Service) Ride(ctx context.Context, rideID uint) (*models.Ride, error) {
	ride, err := s.store.Ride(ctx, rideID)
	if err != nil {
		return nil, storeErr("get ride", err)
	}
	return ride, nil
}

// StartRide moves an open ride to started. Starting a ride that is already
// started succeeds with alreadyStarted set and changes nothing.
func (s *Service) StartRide(ctx context.Context, rideID, userID uint) (ride *models.Ride, alreadyStarted bool, err error) {
	err = s.store.WithRide(ctx, rideID, func(tx RideTx) error {
		r := tx.Ride()
		if r.LeadUserID != userID {
			return ErrNotLead
		}
		switch r.Status {
		case models.RideStatusStarted:
			alreadyStarted = true
			ride = copyRide(r)
			return nil
		case models.RideStatusCompleted:
			return ErrRideCompleted
		}

		now := s.now()
		r.Status = models.RideStatusStarted
		r.StartedAt = &now
		r.UpdatedAt = now
		r.Version++
		if err := tx.SaveRide(); err != nil {
			return err
		}
		if err := s.closePending(tx, userID); err != nil {
			return err
		}
		ride = copyRide(r)
		return nil
	})
	if err != nil {
		return nil, false, storeErr("start ride", err)
	}

	if !alreadyStarted {
		log.Printf("Ride %d started by lead %d with %d seat(s) taken", ride.ID, userID, ride.CurrentCapacity)
		s.publish(ctx, Event{
			Type:     EventRideStarted,
			RideID:   ride.ID,
			Version:  ride.Version,
			UserID:   userID,
			Audience: s.audience(ctx, ride),
		})
	}
	return ride, alreadyStarted, nil
}

// EndRide completes a started ride. Completion is terminal.
func (s *Service) EndRide(ctx context.Context, rideID, userID uint) (*models.Ride, error) {
	var ride *models.Ride
	err := s.store.WithRide(ctx, rideID, func(tx RideTx) error {
		r := tx.Ride()
		if r.LeadUserID != userID {
			return ErrNotLead
		}
		switch r.Status {
		case models.RideStatusOpen:
			return ErrRideNotStarted
		case models.RideStatusCompleted:
			return ErrRideCompleted
		}

		now := s.now()
		r.Status = models.RideStatusCompleted
		r.CompletedAt = &now
		r.UpdatedAt = now
		r.Version++
		if err := tx.SaveRide(); err != nil {
			return err
		}
		ride = copyRide(r)
		return nil
	})
	if err != nil {
		return nil, storeErr("end ride", err)
	}

	log.Printf("Ride %d completed by lead %d", ride.ID, userID)
	s.publish(ctx, Event{
		Type:     EventRideCompleted,
		RideID:   ride.ID,
		Version:  ride.Version,
		UserID:   userID,
		Audience: s.audience(ctx, ride),
	})
	return ride, nil
}

// SetTranscriptURL records where the chat of a completed ride was archived.
func (s *Service) SetTranscriptURL(ctx context.Context, rideID uint, url string) error {
	err := s.store.WithRide(ctx, rideID, func(tx RideTx) error {
		r := tx.Ride()
		if r.Status != models.RideStatusCompleted {
			return fmt.Errorf("%w: ride %d is %s", ErrInvalidState, r.ID, r.Status)
		}
		r.TranscriptURL = url
		r.UpdatedAt = s.now()
		r.Version++
		return tx.SaveRide()
	})
	return storeErr("set transcript url", err)
}

// closePending rejects every pending request of a ride that left open.
func (s *Service) closePending(tx RideTx, actorID uint) error {
	pending, err := tx.PendingRequests()
	if err != nil {
		return err
	}
	now := s.now()
	for i := range pending {
		req := &pending[i]
		req.Resolve(models.JoinRequestRejected, actorID, now)
		if err := tx.SaveJoinRequest(req); err != nil {
			return err
		}
	}
	if len(pending) > 0 {
		log.Printf("Ride %d closed %d pending request(s)", tx.Ride().ID, len(pending))
	}
	return nil
}

// audience is the lead plus everyone who ever asked to join the ride.
func (s *Service) audience(ctx context.Context, ride *models.Ride) []uint {
	users := []uint{ride.LeadUserID}
	reqs, err := s.store.JoinRequests(ctx, ride.ID)
	if err != nil {
		log.Printf("Failed to load audience for ride %d: %v", ride.ID, err)
		return users
	}
	seen := map[uint]bool{ride.LeadUserID: true}
	for _, r := range reqs {
		if seen[r.RequesterID] {
			continue
		}
		seen[r.RequesterID] = true
		users = append(users, r.RequesterID)
	}
	return users
}

func copyRide(r *models.Ride) *models.Ride {
	c := *r
	return &c
}
