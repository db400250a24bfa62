// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"fmt"
	"strings"

	"github.com/faqbnb/faqbnb-api/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// bearerToken extracts the Bearer token from the Authorization header,
// or returns an empty string.
func bearerToken(c fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(authHeader, "Bearer ")
}

// newValidator builds a validator with the custom validations the DTOs use
func newValidator() *validator.Validate {
	v := validator.New()

	// Access codes are exactly 12 characters from the A-Z0-9 alphabet
	v.RegisterValidation("access_code", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if len(value) != utils.AccessCodeLength {
			return false
		}
		for _, char := range value {
			if !strings.ContainsRune(utils.AccessCodeAlphabet, char) {
				return false
			}
		}
		return true
	})

	v.RegisterValidation("alpha_space", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, char := range value {
			if !((char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || char == ' ') {
				return false
			}
		}
		return true
	})

	v.RegisterValidation("password_strength", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()

		hasUpper := false
		hasNumber := false

		for _, char := range value {
			if char >= 'A' && char <= 'Z' {
				hasUpper = true
			}
			if char >= '0' && char <= '9' {
				hasNumber = true
			}
		}

		return hasUpper && hasNumber
	})

	return v
}

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return err.Field() + " must be at least " + err.Param() + " characters"
	case "max":
		return err.Field() + " must be at most " + err.Param() + " characters"
	case "len":
		return err.Field() + " must be exactly " + err.Param() + " characters"
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "eqfield":
		return err.Field() + " must match " + err.Param()
	case "url":
		return err.Field() + " must be a valid URL"
	case "uuid":
		return err.Field() + " must be a valid UUID"
	case "alpha_space":
		return err.Field() + " must contain only letters and spaces"
	case "access_code":
		return "Access code must be 12 characters of A-Z and 0-9"
	case "password_strength":
		return "Password must contain at least 1 uppercase letter and 1 number"
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}
