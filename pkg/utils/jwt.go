package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/chachabrian/uniride-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// Identity is what a session token asserts about its bearer.
type Identity struct {
	UserID uint
	Email  string
	Gender models.Gender
}

type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = time.Hour * 24 * 7
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

func (m *TokenManager) GenerateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"id":     user.ID,
		"email":  user.Email,
		"gender": string(user.Gender),
		"exp":    time.Now().Add(m.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *TokenManager) ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
}

// ParseIdentity validates tokenString and extracts the bearer's identity.
func (m *TokenManager) ParseIdentity(tokenString string) (*Identity, error) {
	token, err := m.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	id, ok := claims["id"].(float64)
	if !ok || id <= 0 {
		return nil, errors.New("token has no user id")
	}
	email, _ := claims["email"].(string)
	gender, _ := claims["gender"].(string)
	return &Identity{
		UserID: uint(id),
		Email:  email,
		Gender: models.ParseGender(gender),
	}, nil
}
