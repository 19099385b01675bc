package handlers

import (
	"github.com/chachabrian/uniride-backend/internal/models"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the custom binding tags used by api request bodies.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("ridetype", func(fl validator.FieldLevel) bool {
		return models.RideType(fl.Field().String()).Valid()
	})
}
