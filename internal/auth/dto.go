package auth

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// RegisterRequest is the parsed body of POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required"`
}

// LoginRequest is the parsed body of POST /api/auth/login. The strength
// policy is deliberately absent here: login must accept any password shape
// that was ever valid.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest is the parsed body of PUT /api/auth/change-password.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

const specialChars = `!@#$%^&*(),.?":{}|<>`

// PasswordIssues evaluates the registration strength policy and returns one
// message per failing rule so callers can show per-rule feedback.
func PasswordIssues(password string) []string {
	var issues []string
	if len(password) < 8 {
		issues = append(issues, "must be at least 8 characters long")
	}
	var hasLower, hasUpper, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case strings.ContainsRune(specialChars, r):
			hasSpecial = true
		}
	}
	if !hasLower {
		issues = append(issues, "must contain at least one lowercase letter")
	}
	if !hasUpper {
		issues = append(issues, "must contain at least one uppercase letter")
	}
	if !hasSpecial {
		issues = append(issues, `must contain at least one special character (`+specialChars+`)`)
	}
	return issues
}

// FieldErrors flattens validator output into the envelope's errors map.
func FieldErrors(err error) map[string][]string {
	fields := make(map[string][]string)
	var verrs validator.ValidationErrors
	if !asValidationErrors(err, &verrs) {
		fields["body"] = []string{"malformed request body"}
		return fields
	}
	for _, fe := range verrs {
		name := jsonFieldName(fe)
		switch fe.Tag() {
		case "required":
			fields[name] = append(fields[name], "is required")
		case "email":
			fields[name] = append(fields[name], "must be a valid email address")
		default:
			fields[name] = append(fields[name], "is invalid")
		}
	}
	return fields
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = verrs
	}
	return ok
}

func jsonFieldName(fe validator.FieldError) string {
	// Field names in responses follow the JSON body, not the Go struct.
	switch fe.Field() {
	case "OldPassword":
		return "oldPassword"
	case "NewPassword":
		return "newPassword"
	default:
		return strings.ToLower(fe.Field())
	}
}
