package models

import (
	"time"

	"gorm.io/datatypes"
)

// JoinRequestState tags a join request. Only pending entries are actionable;
// the rest are kept for audit.
type JoinRequestState string

const (
	JoinRequestPending   JoinRequestState = "pending"
	JoinRequestAccepted  JoinRequestState = "accepted"
	JoinRequestRejected  JoinRequestState = "rejected"
	JoinRequestWithdrawn JoinRequestState = "withdrawn"
)

// JoinRequestTransition records one state change.
type JoinRequestTransition struct {
	From    JoinRequestState `json:"from,omitempty"`
	To      JoinRequestState `json:"to"`
	At      time.Time        `json:"at"`
	ActorID uint             `json:"actorID"`
}

type JoinRequest struct {
	ID          uint                                       `json:"id" gorm:"primaryKey"`
	RideID      uint                                       `json:"rideID" gorm:"not null;index"`
	RequesterID uint                                       `json:"userID" gorm:"not null;index"`
	State       JoinRequestState                           `json:"state" gorm:"size:16;not null;index"`
	History     datatypes.JSONSlice[JoinRequestTransition] `json:"history"`
	CreatedAt   time.Time                                  `json:"createdAt"`
	UpdatedAt   time.Time                                  `json:"updatedAt"`
	ResolvedAt  *time.Time                                 `json:"resolvedAt,omitempty"`
}

// TableName specifies the table name
func (JoinRequest) TableName() string {
	return "join_requests"
}

// NewJoinRequest returns a pending request with its creation recorded.
func NewJoinRequest(rideID, requesterID uint, at time.Time) *JoinRequest {
	return &JoinRequest{
		RideID:      rideID,
		RequesterID: requesterID,
		State:       JoinRequestPending,
		History: datatypes.JSONSlice[JoinRequestTransition]{
			{To: JoinRequestPending, At: at, ActorID: requesterID},
		},
		CreatedAt: at,
		UpdatedAt: at,
	}
}

// Resolve moves a pending request to a terminal state.
func (r *JoinRequest) Resolve(to JoinRequestState, actorID uint, at time.Time) {
	r.History = append(r.History, JoinRequestTransition{
		From:    r.State,
		To:      to,
		At:      at,
		ActorID: actorID,
	})
	r.State = to
	r.UpdatedAt = at
	r.ResolvedAt = &at
}
