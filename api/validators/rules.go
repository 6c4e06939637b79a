package validators

import (
	"regexp"
	"unicode"

	pkgerrors "github.com/The-WildNuts/The-Wild-Nuts/pkg/errors"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid email format")
	}
	return nil
}

// ValidatePasswordStrength enforces the signup password policy: at
// least eight characters with an uppercase letter, a lowercase letter
// and a digit.
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters long")
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper {
		return pkgerrors.New(pkgerrors.CodeValidation, "password must contain at least one uppercase letter")
	}
	if !lower {
		return pkgerrors.New(pkgerrors.CodeValidation, "password must contain at least one lowercase letter")
	}
	if !digit {
		return pkgerrors.New(pkgerrors.CodeValidation, "password must contain at least one digit")
	}
	return nil
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

func ValidateUsername(username string) error {
	if len(username) < 3 {
		return pkgerrors.New(pkgerrors.CodeValidation, "username must be at least 3 characters long")
	}
	if len(username) > 20 {
		return pkgerrors.New(pkgerrors.CodeValidation, "username must be at most 20 characters long")
	}
	if !usernamePattern.MatchString(username) {
		return pkgerrors.New(pkgerrors.CodeValidation, "username can only contain letters, numbers, and underscores")
	}
	return nil
}
