package carpool

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/chachabrian/uniride-backend/internal/models"
)

func TestHubAndSpokeRouting(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	ride := rideSeven(t, svc)
	mustJoin(t, svc, alice, ride.ID)
	mustJoin(t, svc, bob, ride.ID)
	mustAccept(t, svc, ride.ID, alice.UserID, lead.UserID)
	mustAccept(t, svc, ride.ID, bob.UserID, lead.UserID)

	fromLead, err := svc.SendMessage(ctx, SendInput{RideID: 7, SenderID: lead.UserID, Text: "Meet at the gate"})
	if err != nil {
		t.Fatalf("lead SendMessage() error = %v", err)
	}
	if !fromLead.IsBroadcast() {
		t.Errorf("lead message recipient = %v, want broadcast", *fromLead.RecipientID)
	}

	bobID := bob.UserID
	reply, err := svc.SendMessage(ctx, SendInput{RideID: 7, SenderID: alice.UserID, RecipientID: &bobID, Text: "On my way"})
	if err != nil {
		t.Fatalf("passenger SendMessage() error = %v", err)
	}
	if reply.RecipientID == nil || *reply.RecipientID != lead.UserID {
		t.Errorf("passenger message recipient = %v, want lead %d", reply.RecipientID, lead.UserID)
	}

	for _, viewer := range []uint{lead.UserID, alice.UserID, bob.UserID} {
		msgs, err := svc.Messages(ctx, 7, viewer)
		if err != nil {
			t.Fatalf("Messages(viewer %d) error = %v", viewer, err)
		}
		if len(msgs) != 2 || msgs[0].ID != fromLead.ID || msgs[1].ID != reply.ID {
			t.Errorf("Messages(viewer %d) = %+v", viewer, msgs)
		}
		if msgs[0].CreatedAt.After(msgs[1].CreatedAt) {
			t.Error("messages out of order")
		}
	}
}

func TestSendMessageRejections(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	ride := mustCreateRide(t, svc, lead, RideInput{From: "A", To: "B", RideType: models.RideTypeCarpool})
	mustJoin(t, svc, alice, ride.ID)
	mustJoin(t, svc, bob, ride.ID)
	mustAccept(t, svc, ride.ID, alice.UserID, lead.UserID)

	tests := []struct {
		name    string
		in      SendInput
		wantErr error
	}{
		{"stranger", SendInput{RideID: ride.ID, SenderID: dave.UserID, Text: "hi"}, ErrAuthorization},
		{"pending requester", SendInput{RideID: ride.ID, SenderID: bob.UserID, Text: "hi"}, ErrAuthorization},
		{"empty", SendInput{RideID: ride.ID, SenderID: lead.UserID, Text: "   "}, ErrEmptyMessage},
		{"too long", SendInput{RideID: ride.ID, SenderID: lead.UserID, Text: strings.Repeat("x", MaxMessageLength+1)}, ErrMessageTooLong},
		{"unknown ride", SendInput{RideID: 42, SenderID: lead.UserID, Text: "hi"}, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.SendMessage(ctx, tt.in); !errors.Is(err, tt.wantErr) {
				t.Errorf("SendMessage() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := svc.Messages(ctx, ride.ID, bob.UserID); !errors.Is(err, ErrNotParticipant) {
		t.Errorf("Messages() for pending requester error = %v, want ErrNotParticipant", err)
	}
}

func TestChatClosesOnCompletion(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	ride := mustCreateRide(t, svc, lead, RideInput{From: "A", To: "B", RideType: models.RideTypeCarpool})
	mustJoin(t, svc, alice, ride.ID)
	mustAccept(t, svc, ride.ID, alice.UserID, lead.UserID)
	svc.StartRide(ctx, ride.ID, lead.UserID)

	if _, err := svc.SendMessage(ctx, SendInput{RideID: ride.ID, SenderID: alice.UserID, Text: "running late"}); err != nil {
		t.Fatalf("SendMessage() on started ride error = %v", err)
	}
	if _, err := svc.EndRide(ctx, ride.ID, lead.UserID); err != nil {
		t.Fatal(err)
	}

	for _, sender := range []uint{lead.UserID, alice.UserID} {
		_, err := svc.SendMessage(ctx, SendInput{RideID: ride.ID, SenderID: sender, Text: "thanks"})
		if !errors.Is(err, ErrInvalidState) {
			t.Errorf("SendMessage(sender %d) after completion error = %v, want invalid state", sender, err)
		}
	}

	msgs, err := svc.Messages(ctx, ride.ID, alice.UserID)
	if err != nil {
		t.Fatalf("Messages() after completion error = %v", err)
	}
	if len(msgs) != 1 {
		t.Errorf("Messages() = %d, want 1", len(msgs))
	}

	_, transcript, err := svc.Transcript(ctx, ride.ID)
	if err != nil || len(transcript) != 1 {
		t.Errorf("Transcript() = %d messages, %v", len(transcript), err)
	}
}
