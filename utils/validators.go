package utils

import (
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// InitValidator registers the portal's custom rules on gin's binding engine.
func InitValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterCustomValidators(v)
	}
}

func RegisterCustomValidators(v *validator.Validate) {
	v.RegisterValidation("password", ValidatePasswordRule)
	v.RegisterValidation("anchor", ValidateAnchorRule)
}

func ValidatePasswordRule(fl validator.FieldLevel) bool {
	return ValidatePassword(fl.Field().String())
}

func ValidatePassword(password string) bool {
	// Password must:
	// - Be at least 6 characters long
	// - Contain at least one number
	// - Contain at least one special character

	hasNumber := false
	hasSpecial := false

	if len(password) < 6 {
		return false
	}

	for _, char := range password {
		switch {
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	return hasNumber && hasSpecial
}

func ValidateAnchorRule(fl validator.FieldLevel) bool {
	return ValidAnchorToken(fl.Field().String())
}

// ValidAnchorToken accepts 1-64 letters, digits, '-', '_' or '.'. Whitespace
// and ':' are rejected because comments embed the token as "NIP:<token>".
func ValidAnchorToken(token string) bool {
	if len(token) == 0 || len(token) > 64 {
		return false
	}
	for _, r := range token {
		if !IsAnchorRune(r) {
			return false
		}
	}
	return true
}

// IsAnchorRune reports whether r may appear in an anchor token.
func IsAnchorRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-', r == '_', r == '.':
		return true
	}
	return false
}
