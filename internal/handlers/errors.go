package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/chachabrian/uniride-backend/internal/carpool"
	"github.com/chachabrian/uniride-backend/internal/middleware"
	"github.com/chachabrian/uniride-backend/pkg/api"
	"github.com/gin-gonic/gin"
)

var statusByKind = map[string]int{
	api.CodeValidation:   http.StatusBadRequest,
	api.CodeForbidden:    http.StatusForbidden,
	api.CodeNotFound:     http.StatusNotFound,
	api.CodeConflict:     http.StatusConflict,
	api.CodeInvalidState: http.StatusUnprocessableEntity,
	api.CodeTransient:    http.StatusServiceUnavailable,
	api.CodeInternal:     http.StatusInternalServerError,
}

// respondError writes err as the API error envelope. Server-side failures
// are logged with the request ID and their detail is not sent to the client.
func respondError(c *gin.Context, err error) {
	kind := carpool.Kind(err)
	status := statusByKind[kind]

	message := err.Error()
	if status >= 500 {
		log.Printf("[%s] %s %s failed: %v", middleware.GetRequestID(c), c.Request.Method, c.FullPath(), err)
		if kind == api.CodeInternal {
			message = "Internal server error"
		} else {
			message = "Service temporarily unavailable, please retry"
		}
	}
	c.JSON(status, api.ErrorResponse{Error: message, Code: kind})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error(), Code: api.CodeValidation})
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, fmt.Errorf("invalid %s %q", name, c.Param(name)))
		return 0, false
	}
	return uint(id), true
}

func actor(c *gin.Context) carpool.Actor {
	return carpool.Actor{UserID: middleware.UserID(c), Gender: middleware.Gender(c)}
}
