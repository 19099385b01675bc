package handlers

import (
	"net/http"

	"github.com/chachabrian/uniride-backend/internal/carpool"
	"github.com/chachabrian/uniride-backend/pkg/api"
	"github.com/gin-gonic/gin"
)

// SearchRides finds open rides near the requested route
func SearchRides(svc *carpool.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input api.SearchRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}

		rides, err := svc.Search(c.Request.Context(), actor(c), carpool.SearchQuery{
			From:        input.From,
			To:          input.To,
			RideTypes:   input.RideTypes,
			FemalesOnly: input.FemalesOnly,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, api.NewRideListResponse(rides))
	}
}

// CreateFallbackRide is the explicit "offer it yourself" choice after a
// search came back empty.
func CreateFallbackRide(svc *carpool.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input api.CreateRideRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}

		ride, err := svc.CreateFallbackRide(c.Request.Context(), actor(c), carpool.RideInput{
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
