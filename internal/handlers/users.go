package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/chachabrian/uniride-backend/internal/database"
	"github.com/chachabrian/uniride-backend/pkg/api"
	"github.com/gin-gonic/gin"
)

// GetProfile retrieves the user's profile
func GetProfile(users database.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := users.UserByID(c.Request.Context(), c.GetUint("userId"))
		if err != nil {
			if errors.Is(err, database.ErrUserNotFound) {
				c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "User not found", Code: api.CodeNotFound})
				return
			}
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, userResponse(user))
	}
}

// UpdateProfile updates the user's profile information. Gender is fixed at
// registration because session tokens carry it.
func UpdateProfile(users database.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input api.UpdateProfileRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}

		ctx := c.Request.Context()
		user, err := users.UserByID(ctx, c.GetUint("userId"))
		if err != nil {
			if errors.Is(err, database.ErrUserNotFound) {
				c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "User not found", Code: api.CodeNotFound})
				return
			}
			respondError(c, err)
			return
		}

		if input.Username != nil {
			name := strings.TrimSpace(*input.Username)
			if name == "" {
				c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "username cannot be empty", Code: api.CodeValidation})
				return
			}
			user.Username = name
		}
		if input.EnrollmentID != nil {
			user.EnrollmentID = *input.EnrollmentID
		}

		if err := users.UpdateUser(ctx, user); err != nil {
			if errors.Is(err, database.ErrUserExists) {
				c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error(), Code: api.CodeConflict})
				return
			}
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, userResponse(user))
	}
}
