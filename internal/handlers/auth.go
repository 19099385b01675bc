package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/chachabrian/uniride-backend/internal/database"
	"github.com/chachabrian/uniride-backend/internal/models"
	"github.com/chachabrian/uniride-backend/pkg/api"
	"github.com/chachabrian/uniride-backend/pkg/utils"
	"github.com/gin-gonic/gin"
)

func userResponse(u *models.User) api.UserResponse {
	return api.UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		Gender:       u.Gender,
		EnrollmentID: u.EnrollmentID,
	}
}

// Register creates an account. When emailDomain is set only addresses of
// that university domain are accepted.
func Register(users database.UserStore, tokens *utils.TokenManager, emailDomain string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input api.RegisterRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(input.Email))
		if emailDomain != "" && !strings.HasSuffix(email, "@"+strings.ToLower(emailDomain)) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{
				Error: "Please register with your university email (@" + emailDomain + ")",
				Code:  api.CodeValidation,
			})
			return
		}

		user := models.User{
			Username:     strings.TrimSpace(input.Username),
			Email:        email,
			Password:     input.Password,
			Gender:       models.ParseGender(input.Gender),
			EnrollmentID: input.EnrollmentID,
		}
		if err := user.HashPassword(); err != nil {
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to hash password", Code: api.CodeInternal})
			return
		}

		if err := users.CreateUser(c.Request.Context(), &user); err != nil {
			if errors.Is(err, database.ErrUserExists) {
				c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error(), Code: api.CodeConflict})
				return
			}
			respondError(c, err)
			return
		}

		token, err := tokens.GenerateToken(&user)
		if err != nil {
			respondError(c, err)
			return
		}

		log.Printf("User %d registered (%s)", user.ID, user.Email)
		c.JSON(http.StatusCreated, api.AuthResponse{Token: token, User: userResponse(&user)})
	}
}

func Login(users database.UserStore, tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input api.LoginRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}

		user, err := users.UserByEmail(c.Request.Context(), strings.TrimSpace(input.Email))
		if err != nil {
			if errors.Is(err, database.ErrUserNotFound) {
				c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Invalid credentials", Code: api.CodeUnauthorized})
				return
			}
			respondError(c, err)
			return
		}

		if err := user.CheckPassword(input.Password); err != nil {
			c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Invalid credentials", Code: api.CodeUnauthorized})
			return
		}

		token, err := tokens.GenerateToken(user)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, api.AuthResponse{Token: token, User: userResponse(user)})
	}
}
