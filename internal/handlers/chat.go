package handlers

import (
	"net/http"

	"github.com/chachabrian/uniride-backend/internal/carpool"
	"github.com/chachabrian/uniride-backend/pkg/api"
	"github.com/gin-gonic/gin"
)

func GetMessages(svc *carpool.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideID, ok := idParam(c, "rideId")
		if !ok {
			return
		}

		msgs, err := svc.Messages(c.Request.Context(), rideID, c.GetUint("userId"))
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, api.MessageListResponse{Messages: msgs})
	}
}

// SendMessage posts to the ride chat. The recipient in the body is not
// trusted; routing follows the sender's role.
func SendMessage(svc *carpool.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideID, ok := idParam(c, "rideId")
		if !ok {
			return
		}

		var input api.SendMessageRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}

		msg, err := svc.SendMessage(c.Request.Context(), carpool.SendInput{
			RideID:      rideID,
			SenderID:    c.GetUint("userId"),
			RecipientID: input.RecipientID,
			Text:        input.Text,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, api.MessageResponse{Message: *msg})
	}
}

// GetTranscript returns the archived chat of a completed ride to its lead and
// accepted passengers.
func GetTranscript(svc *carpool.Service, archiver Archiver) gin.HandlerFunc {
	return func(c *gin.Context) {
		rideID, ok := idParam(c, "rideId")
		if !ok {
			return
		}

		ride, err := svc.ArchivedRide(c.Request.Context(), rideID, c.GetUint("userId"))
		if err != nil {
			respondError(c, err)
			return
		}
		if archiver == nil {
			respondError(c, carpool.ErrNoTranscript)
			return
		}

		body, err := archiver.Load(c.Request.Context(), ride)
		if err != nil {
			respondError(c, err)
			return
		}

		c.Data(http.StatusOK, "application/json; charset=utf-8", body)
	}
}
