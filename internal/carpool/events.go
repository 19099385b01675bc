package carpool

import "time"

type EventType string

const (
	EventRideCreated   EventType = "ride_created"
	EventRideStarted   EventType = "ride_started"
	EventRideCompleted EventType = "ride_completed"
	EventJoinRequested EventType = "join_requested"
	EventJoinAccepted  EventType = "join_accepted"
	EventJoinRejected  EventType = "join_rejected"
	EventJoinWithdrawn EventType = "join_withdrawn"
	EventChatMessage   EventType = "chat_message"
)

// Event tells observers that a ride changed. It is a hint to refetch, not a
// replacement for polling.
type Event struct {
	Type     EventType `json:"type"`
	RideID   uint      `json:"rideId"`
	Version  int64     `json:"version"`
	UserID   uint      `json:"userId,omitempty"`
	Audience []uint    `json:"audience,omitempty"`
	At       time.Time `json:"at"`
}
