package cgt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// isinRegex checks for the basic structure: 2 letters, 9 alphanumeric, 1 digit.
var isinRegex = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{9}[0-9]$`)

// Security identifies a security. All pool and matching state is keyed by ISIN;
// Ticker and Name are only used for display.
type Security struct {
	ISIN   string `json:"isin"`
	Ticker string `json:"ticker,omitempty"`
	Name   string `json:"name,omitempty"`
}

// String returns the ticker if known, the ISIN otherwise.
func (s Security) String() string {
	if s.Ticker != "" {
		return s.Ticker
	}
	return s.ISIN
}

// ValidateISIN checks if a string is a validly formatted ISIN (ISO 6166),
// including its check digit.
func ValidateISIN(isin string) error {
	if len(isin) != 12 {
		return fmt.Errorf("invalid length: must be 12 characters, got %d", len(isin))
	}
	if !isinRegex.MatchString(isin) {
		return fmt.Errorf("invalid format: must be 2 uppercase letters, 9 alphanumeric chars, and 1 digit")
	}

	// letters count as two digits: A=10 ... Z=35.
	var numericStr strings.Builder
	for _, char := range isin[:11] {
		if char >= 'A' && char <= 'Z' {
			numericStr.WriteString(strconv.Itoa(int(char - 'A' + 10)))
		} else {
			numericStr.WriteRune(char)
		}
	}

	// Luhn, doubling from the rightmost digit.
	sum := 0
	double := true
	digits := numericStr.String()
	for i := len(digits) - 1; i >= 0; i-- {
		digit := int(digits[i] - '0')
		if double {
			digit *= 2
		}
		sum += digit/10 + digit%10
		double = !double
	}

	expected := (10 - sum%10) % 10
	actual := int(isin[11] - '0')
	if expected != actual {
		return fmt.Errorf("invalid check digit: expected %d, got %d", expected, actual)
	}
	return nil
}
