package carpool

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/chachabrian/uniride-backend/internal/models"
)

// MaxMessageLength is the longest chat message accepted, in characters.
const MaxMessageLength = 1000

// SendInput is a chat message as submitted. RecipientID is advisory only:
// routing is decided by who the sender is.
type SendInput struct {
	RideID      uint
	SenderID    uint
	RecipientID *uint
	Text        string
}

// SendMessage appends a message to the ride's chat. The lead broadcasts;
// every passenger message is addressed to the lead.
func (s *Service) SendMessage(ctx context.Context, in SendInput) (*models.ChatMessage, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return nil, ErrMessageTooLong
	}

	var msg *models.ChatMessage
	var ride *models.Ride
	err := s.store.WithRide(ctx, in.RideID, func(tx RideTx) error {
		r := tx.Ride()
		if r.Status == models.RideStatusCompleted {
			return ErrRideCompleted
		}

		msg = &models.ChatMessage{
			RideID:   r.ID,
			SenderID: in.SenderID,
			Text:     text,
		}
		if in.SenderID != r.LeadUserID {
			ok, err := tx.IsPassenger(in.SenderID)
			if err != nil {
				return err
			}
			if !ok {
				return ErrNotParticipant
			}
			lead := r.LeadUserID
			msg.RecipientID = &lead
		}
		msg.CreatedAt = s.now()
		ride = copyRide(r)
		return tx.AppendMessage(msg)
	})
	if err != nil {
		return nil, storeErr("send message", err)
	}

	audience := []uint{ride.LeadUserID}
	if msg.IsBroadcast() {
		audience = s.audience(ctx, ride)
	}
	s.publish(ctx, Event{
		Type:     EventChatMessage,
		RideID:   ride.ID,
		Version:  ride.Version,
		UserID:   in.SenderID,
		Audience: audience,
	})
	return msg, nil
}

// Messages returns the ride's chat in send order for the lead or an accepted
// passenger.
func (s *Service) Messages(ctx context.Context, rideID, viewerID uint) ([]models.ChatMessage, error) {
	if _, err := s.requireParticipant(ctx, rideID, viewerID); err != nil {
		return nil, err
	}
	msgs, err := s.store.Messages(ctx, rideID)
	if err != nil {
		return nil, storeErr("messages", err)
	}
	return nonNil(msgs), nil
}

// ArchivedRide returns a completed ride whose chat has been archived. Like
// Messages, it is only for the lead and accepted passengers.
func (s *Service) ArchivedRide(ctx context.Context, rideID, viewerID uint) (*models.Ride, error) {
	ride, err := s.requireParticipant(ctx, rideID, viewerID)
	if err != nil {
		return nil, err
	}
	if ride.Status != models.RideStatusCompleted {
		return nil, ErrRideNotCompleted
	}
	if ride.TranscriptURL == "" {
		return nil, ErrNoTranscript
	}
	return ride, nil
}

// Transcript returns every message of a ride regardless of viewer. It backs
// the archive written on completion.
func (s *Service) Transcript(ctx context.Context, rideID uint) (*models.Ride, []models.ChatMessage, error) {
	ride, err := s.store.Ride(ctx, rideID)
	if err != nil {
		return nil, nil, storeErr("get ride", err)
	}
	msgs, err := s.store.Messages(ctx, rideID)
	if err != nil {
		return nil, nil, storeErr("messages", err)
	}
	return ride, msgs, nil
}
