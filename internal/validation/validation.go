// Package validation normalizes and checks the free-text fields that both the
// wizard guards and the intake handlers depend on.
package validation

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// CountryCode is the calling code every WhatsApp number is normalized to.
const CountryCode = "60"

var (
	// ErrPhoneRequired is returned when the number is blank.
	ErrPhoneRequired = errors.New("WhatsApp number is required.")

	// ErrPhoneInvalid is returned when the normalized number is not a Malaysian mobile.
	ErrPhoneInvalid = errors.New("WhatsApp number is invalid. Use format like +60123456789 or 0123456789.")

	// ErrEmailInvalid is returned for a non-empty address that fails the shape check.
	ErrEmailInvalid = errors.New("Email is invalid. Please enter a valid email address (e.g. name@example.com).")

	// ErrDateFormat is returned when a date is not a YYYY-MM-DD calendar date.
	ErrDateFormat = errors.New("date must be in YYYY-MM-DD format")
)

var (
	mobilePattern = regexp.MustCompile(`^\+601\d{7,9}$`)
	emailPattern  = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,24}$`)
	datePattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// NormalizePhone strips everything except digits and a leading plus, then
// rewrites local trunk numbers ("012...") and bare country-code numbers
// ("6012...") into "+60..." form. The result is not guaranteed valid.
func NormalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	var b strings.Builder
	for i, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	p := b.String()
	switch {
	case strings.HasPrefix(p, "0"):
		return "+" + CountryCode + p[1:]
	case strings.HasPrefix(p, CountryCode[:1]):
		return "+" + p
	default:
		return p
	}
}

// IsValidMobile reports whether a normalized number is a Malaysian mobile.
func IsValidMobile(normalized string) bool {
	return mobilePattern.MatchString(normalized)
}

// ValidatePhone normalizes raw and checks it, returning the normalized form.
func ValidatePhone(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrPhoneRequired
	}
	normalized := NormalizePhone(raw)
	if !IsValidMobile(normalized) {
		return normalized, ErrPhoneInvalid
	}
	return normalized, nil
}

// IsValidEmail checks the local@domain.tld shape with a 2-24 letter TLD.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// ValidateOptionalEmail accepts blank input and otherwise requires a valid shape.
func ValidateOptionalEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return nil
	}
	if !IsValidEmail(email) {
		return ErrEmailInvalid
	}
	return nil
}

// ShouldValidateEmailLive decides when inline email feedback is worth showing
// while the user is still typing.
func ShouldValidateEmailLive(email string) bool {
	e := strings.TrimSpace(email)
	if e == "" {
		return false
	}
	return len(e) >= 3 || strings.Contains(e, "@")
}

// DateLayout is the wire format for preferred dates.
const DateLayout = "2006-01-02"

// ParseDate parses a strict YYYY-MM-DD calendar date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if !datePattern.MatchString(s) {
		return time.Time{}, ErrDateFormat
	}
	if loc == nil {
		loc = time.UTC
	}
	d, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, ErrDateFormat
	}
	return d, nil
}

// IsPastDate reports whether date falls on a calendar day before now, both
// evaluated in loc.
func IsPastDate(date, now time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	dy, dm, dd := date.In(loc).Date()
	ny, nm, nd := now.In(loc).Date()
	return time.Date(dy, dm, dd, 0, 0, 0, 0, loc).Before(time.Date(ny, nm, nd, 0, 0, 0, 0, loc))
}
