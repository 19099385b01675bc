package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/chachabrian/uniride-backend/internal/carpool"
	"github.com/chachabrian/uniride-backend/internal/models"
	"github.com/chachabrian/uniride-backend/pkg/api"
	"github.com/gin-gonic/gin"
)

// Archiver stores the chat of a ride once it completes and reads it back.
type Archiver interface {
	ArchiveInBackground(rideID uint)
	Load(ctx context.Context, ride *models.Ride) ([]byte, error)
}

// CreateRide offers a new ride with the caller as lead
func CreateRide(svc *carpool.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input api.CreateRideRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}

		ride, err := svc.CreateRide(c.Request.Context(), actor(c), carpool.RideInput{
			From:        input.From,
			To:          input.To,
			RideType:    input.RideType,
			FemalesOnly: input.FemalesOnly,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, api.NewRideResponse(*ride))
	}
}

// ListRides returns every ride, optionally narrowed by ?status=open,started
// &type=bike&lead=me&available=true
func ListRides(svc *carpool.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter carpool.RideFilter

		for _, s := range splitQuery(c.Query("status")) {
			status := models.RideStatus(s)
			if status.Rank() == 0 {
				badRequest(c, fmt.Errorf("unknown status %q", s))
				return
			}
			filter.Statuses = append(filter.Statuses, status)
		}
		for _, t := range splitQuery(c.Query("type")) {
			rideType := models.RideType(t)
			if !rideType.Valid() {
				badRequest(c, fmt.Errorf("unknown ride type %q", t))
				return
			}
			filter.RideTypes = append(filter.RideTypes, rideType)
		}
		if c.Query("lead") == "me" {
			filter.LeadUserID = c.GetUint("userId")
		}
		filter.WithFreeSlots = c.Query("available") == "true"

		rides, err := svc.ListRides(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, api.NewRideListResponse(rides))
	}
}

func GetRide(svc *carpool.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideID, ok := idParam(c, "rideId")
		if !ok {
			return
		}

		ride, err := svc.Ride(c.Request.Context(), rideID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, api.NewRideResponse(*ride))
	}
}

// StartRide moves the ride to started. Repeating it is not an error.
func StartRide(svc *carpool.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideID, ok := idParam(c, "rideId")
		if !ok {
			return
		}

		ride, alreadyStarted, err := svc.StartRide(c.Request.Context(), rideID, c.GetUint("userId"))
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, api.StartRideResponse{
			Ride:           api.NewRideResponse(*ride),
			AlreadyStarted: alreadyStarted,
		})
	}
}

// EndRide completes the ride and archives its chat in the background.
func EndRide(svc *carpool.Service, archiver Archiver) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideID, ok := idParam(c, "rideId")
		if !ok {
			return
		}

		ride, err := svc.EndRide(c.Request.Context(), rideID, c.GetUint("userId"))
		if err != nil {
			respondError(c, err)
			return
		}

		if archiver != nil {
			archiver.ArchiveInBackground(ride.ID)
		}

		c.JSON(http.StatusOK, api.NewRideResponse(*ride))
	}
}

func splitQuery(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
