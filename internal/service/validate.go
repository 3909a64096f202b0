package service

import (
	"fmt"
	"net/mail"
	"regexp"
	"unicode"
)

// ValidationError reports which field of a request was rejected and why.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

const (
	usernameMinLen = 3
	usernameMaxLen = 50
	passwordMinLen = 8
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

func validateRegisterInput(in RegisterInput) error {
	if n := len(in.Username); n < usernameMinLen || n > usernameMaxLen {
		return &ValidationError{"username", fmt.Sprintf("must be between %d and %d characters", usernameMinLen, usernameMaxLen)}
	}
	if !usernameRe.MatchString(in.Username) {
		return &ValidationError{"username", "can only contain letters, numbers, dots, underscores and hyphens"}
	}
	if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		return &ValidationError{"email", "is not a valid email address"}
	}
	if err := validatePassword(in.Password); err != nil {
		return err
	}
	if in.PasswordConfirmation != in.Password {
		return &ValidationError{"password_confirmation", "passwords do not match"}
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < passwordMinLen {
		return &ValidationError{"password", fmt.Sprintf("must be at least %d characters long", passwordMinLen)}
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	switch {
	case !hasUpper:
		return &ValidationError{"password", "must contain at least one uppercase letter"}
	case !hasLower:
		return &ValidationError{"password", "must contain at least one lowercase letter"}
	case !hasDigit:
		return &ValidationError{"password", "must contain at least one digit"}
	}
	return nil
}
