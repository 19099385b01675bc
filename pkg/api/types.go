// Package api holds the request and response bodies of the UniRide HTTP API,
// shared by the server handlers and pkg/client.
package api

import (
	"time"

	"github.com/chachabrian/uniride-backend/internal/models"
)

// Error codes carried in ErrorResponse.Code.
const (
	CodeValidation   = "validation"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeInvalidState = "invalid_state"
	CodeConflict     = "conflict"
	CodeNotFound     = "not_found"
	CodeTransient    = "transient"
	CodeInternal     = "internal"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type RegisterRequest struct {
	Username     string `json:"username" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=6"`
	Gender       string `json:"gender" binding:"omitempty,oneof=female male unspecified"`
	EnrollmentID string `json:"enrollmentId"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	ID           uint          `json:"id"`
	Username     string        `json:"username"`
	Email        string        `json:"email"`
	Gender       models.Gender `json:"gender"`
	EnrollmentID string        `json:"enrollmentId,omitempty"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UpdateProfileRequest struct {
	Username     *string `json:"username"`
	EnrollmentID *string `json:"enrollmentId"`
}

type CreateRideRequest struct {
	From        string          `json:"from" binding:"required"`
	To          string          `json:"to" binding:"required"`
	RideType    models.RideType `json:"rideType" binding:"required,ridetype"`
	FemalesOnly bool            `json:"femalesOnly"`
}

type SearchRequest struct {
	From        string            `json:"from" binding:"required"`
	To          string            `json:"to" binding:"required"`
	RideTypes   []models.RideType `json:"rideTypes" binding:"omitempty,dive,ridetype"`
	FemalesOnly bool              `json:"femalesOnly"`
}

// RideResponse is a ride with its derived seat count.
type RideResponse struct {
	models.Ride
	AvailableSlots int `json:"availableSlots"`
}

func NewRideResponse(r models.Ride) RideResponse {
	return RideResponse{Ride: r, AvailableSlots: r.AvailableSlots()}
}

type RideListResponse struct {
	Rides []RideResponse `json:"rides"`
}

func NewRideListResponse(rides []models.Ride) RideListResponse {
	out := RideListResponse{Rides: make([]RideResponse, 0, len(rides))}
	for _, r := range rides {
		out.Rides = append(out.Rides, NewRideResponse(r))
	}
	return out
}

type StartRideResponse struct {
	Ride           RideResponse `json:"ride"`
	AlreadyStarted bool         `json:"alreadyStarted"`
}

type JoinRequestResponse struct {
	Request models.JoinRequest `json:"request"`
}

type JoinRequestListResponse struct {
	Requests []models.JoinRequest `json:"requests"`
}

type RespondRequest struct {
	Accept *bool `json:"accept" binding:"required"`
}

type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
	// RecipientID is ignored for routing; passenger messages always go to
	// the lead.
	RecipientID *uint `json:"recipientID"`
}

type MessageResponse struct {
	Message models.ChatMessage `json:"message"`
}

type MessageListResponse struct {
	Messages []models.ChatMessage `json:"messages"`
}

// Transcript is the archived chat of a completed ride.
type Transcript struct {
	Ride       models.Ride          `json:"ride"`
	Messages   []models.ChatMessage `json:"messages"`
	ArchivedAt time.Time            `json:"archivedAt"`
}

type Location struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

type LocationListResponse struct {
	Locations []Location `json:"locations"`
}

type NearbyLocation struct {
	Name       string  `json:"name"`
	DistanceKm float64 `json:"distanceKm"`
}

type NearbyResponse struct {
	Location string           `json:"location"`
	Nearby   []NearbyLocation `json:"nearby"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Store   string `json:"store"`
	Clients int    `json:"websocketClients"`
}
