package handlers

import (
	"net/http"

	"github.com/chachabrian/uniride-backend/internal/services"
	"github.com/chachabrian/uniride-backend/pkg/api"
	"github.com/gin-gonic/gin"
)

func Health(store string, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, api.HealthResponse{
			Status:  "ok",
			Store:   store,
			Clients: hub.GetConnectedClients(),
		})
	}
}
