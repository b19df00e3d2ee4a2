package utils

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// MaxPhoneNumberLength is the longest phone number a profile may store
const MaxPhoneNumberLength = 15

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

// ValidatePhoneNumber checks the stored length of a phone number
func ValidatePhoneNumber(phone string) error {
	if utf8.RuneCountInString(phone) > MaxPhoneNumberLength {
		return fmt.Errorf("phone number exceeds %d characters", MaxPhoneNumberLength)
	}
	return nil
}

// SanitizeString removes control characters
func SanitizeString(s string) string {
	return controlChars.ReplaceAllString(s, "")
}

var controlChars = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)
