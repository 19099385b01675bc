package models

import (
	"time"
)

// RideType is the vehicle class a ride is offered with.
type RideType string

const (
	RideTypeBike     RideType = "bike"
	RideTypeRickshaw RideType = "rickshaw"
	RideTypeCarpool  RideType = "carpool"
)

// RideTypes lists every supported ride type in display order.
var RideTypes = []RideType{RideTypeBike, RideTypeRickshaw, RideTypeCarpool}

// MaxCapacity returns the seat count for the ride type, lead included.
func (t RideType) MaxCapacity() (int, bool) {
	switch t {
	case RideTypeBike:
		return 2, true
	case RideTypeRickshaw, RideTypeCarpool:
		return 4, true
	default:
		return 0, false
	}
}

func (t RideType) Valid() bool {
	_, ok := t.MaxCapacity()
	return ok
}

// RideStatus moves strictly forward: open -> started -> completed.
type RideStatus string

const (
	RideStatusOpen      RideStatus = "open"
	RideStatusStarted   RideStatus = "started"
	RideStatusCompleted RideStatus = "completed"
)

// Rank orders statuses along the lifecycle.
func (s RideStatus) Rank() int {
	switch s {
	case RideStatusOpen:
		return 1
	case RideStatusStarted:
		return 2
	case RideStatusCompleted:
		return 3
	default:
		return 0
	}
}

type Ride struct {
	ID              uint       `json:"rideID" gorm:"primaryKey"`
	LeadUserID      uint       `json:"leadUserID" gorm:"not null;index"`
	From            string     `json:"from" gorm:"column:from_location;not null;index"`
	To              string     `json:"to" gorm:"column:to_location;not null;index"`
	RideType        RideType   `json:"rideType" gorm:"size:16;not null"`
	FemalesOnly     bool       `json:"femalesOnly" gorm:"not null;default:false"`
	MaxCapacity     int        `json:"maxCapacity" gorm:"not null"`
	CurrentCapacity int        `json:"currentCapacity" gorm:"not null;default:1"`
	Status          RideStatus `json:"status" gorm:"size:16;not null;default:'open';index"`
	Version         int64      `json:"version" gorm:"not null;default:1"`
	TranscriptURL   string     `json:"transcriptURL,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	StartedAt       *time.Time `json:"startedAt,omitempty"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
}

// TableName specifies the table name
func (Ride) TableName() string {
	return "rides"
}

// AvailableSlots is the unused capacity of the ride.
func (r Ride) AvailableSlots() int {
	if n := r.MaxCapacity - r.CurrentCapacity; n > 0 {
		return n
	}
	return 0
}
