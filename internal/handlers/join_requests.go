package handlers

import (
	"net/http"

	"github.com/chachabrian/uniride-backend/internal/carpool"
	"github.com/chachabrian/uniride-backend/internal/models"
	"github.com/chachabrian/uniride-backend/pkg/api"
	"github.com/gin-gonic/gin"
)

func RequestToJoin(svc *carpool.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideID, ok := idParam(c, "rideId")
		if !ok {
			return
		}

		req, err := svc.RequestToJoin(c.Request.Context(), actor(c), rideID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, api.JoinRequestResponse{Request: *req})
	}
}

// GetPendingRequests lists unresolved requests for the ride's lead
func GetPendingRequests(svc *carpool.Service) gin.HandlerFunc {
	return requestList(func(c *gin.Context, rideID uint) ([]models.JoinRequest, error) {
		return svc.PendingRequests(c.Request.Context(), rideID, c.GetUint("userId"))
	})
}

// GetRequestHistory lists every request of the ride with its transitions
func GetRequestHistory(svc *carpool.Service) gin.HandlerFunc {
	return requestList(func(c *gin.Context, rideID uint) ([]models.JoinRequest, error) {
		return svc.RequestHistory(c.Request.Context(), rideID, c.GetUint("userId"))
	})
}

// GetPassengers lists accepted passengers for the ride's participants
func GetPassengers(svc *carpool.Service) gin.HandlerFunc {
	return requestList(func(c *gin.Context, rideID uint) ([]models.JoinRequest, error) {
		return svc.Passengers(c.Request.Context(), rideID, c.GetUint("userId"))
	})
}

func requestList(load func(c *gin.Context, rideID uint) ([]models.JoinRequest, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideID, ok := idParam(c, "rideId")
		if !ok {
			return
		}

		reqs, err := load(c, rideID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, api.JoinRequestListResponse{Requests: reqs})
	}
}

// RespondToRequest lets the lead accept or reject a pending request
func RespondToRequest(svc *carpool.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideID, ok := idParam(c, "rideId")
		if !ok {
			return
		}
		requesterID, ok := idParam(c, "userId")
		if !ok {
			return
		}

		var input api.RespondRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}

		req, err := svc.RespondToRequest(c.Request.Context(), rideID, requesterID, c.GetUint("userId"), *input.Accept)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, api.JoinRequestResponse{Request: *req})
	}
}

// WithdrawRequest takes back the caller's pending request
func WithdrawRequest(svc *carpool.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideID, ok := idParam(c, "rideId")
		if !ok {
			return
		}

		req, err := svc.WithdrawRequest(c.Request.Context(), rideID, c.GetUint("userId"))
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, api.JoinRequestResponse{Request: *req})
	}
}

// GetMyRequests lists every request the caller has filed
func GetMyRequests(svc *carpool.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqs, err := svc.MyRequests(c.Request.Context(), c.GetUint("userId"))
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, api.JoinRequestListResponse{Requests: reqs})
	}
}
