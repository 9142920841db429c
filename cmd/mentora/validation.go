package main

import (
	"regexp"

	"github.com/krancour/mentora/sdk/authx"
	"github.com/pkg/errors"
)

const minPasswordLength = 6

var (
	emailRegex      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	upperRegex      = regexp.MustCompile(`[A-Z]`)
	digitRegex      = regexp.MustCompile(`[0-9]`)
	nonAlphaNumeric = regexp.MustCompile(`[^A-Za-z0-9]`)
)

// validateRegistration applies the checks the registration form makes before
// anything is sent to the API server, in the same order.
func validateRegistration(reg authx.Registration, confirmation string) error {
	if reg.Username == "" || reg.Email == "" || reg.Password == "" {
		return errors.New("Please fill in all required fields")
	}
	if len(reg.Password) < minPasswordLength {
		return errors.Errorf(
			"Password must be at least %d characters",
			minPasswordLength,
		)
	}
	if reg.Password != confirmation {
		return errors.New("Passwords do not match")
	}
	if !emailRegex.MatchString(reg.Email) {
		return errors.New("Please enter a valid email address")
	}
	return nil
}

// passwordStrength scores password from 0 to 5, one point each for reaching
// six characters, reaching eight characters, containing an upper case letter,
// containing a digit, and containing anything else.
func passwordStrength(password string) int {
	var strength int
	if len(password) >= 6 {
		strength++
	}
	if len(password) >= 8 {
		strength++
	}
	if upperRegex.MatchString(password) {
		strength++
	}
	if digitRegex.MatchString(password) {
		strength++
	}
	if nonAlphaNumeric.MatchString(password) {
		strength++
	}
	return strength
}

func strengthLabel(strength int) string {
	switch {
	case strength <= 2:
		return "Weak"
	case strength <= 3:
		return "Good"
	default:
		return "Strong"
	}
}
