package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"local trunk prefix", "0123456789", "+60123456789"},
		{"local with spaces and dashes", "012-345 6789", "+60123456789"},
		{"country code without plus", "60123456789", "+60123456789"},
		{"already e164", "+60123456789", "+60123456789"},
		{"plus in the middle is dropped", "01+23456789", "+60123456789"},
		{"foreign number untouched", "+6591234567", "+6591234567"},
		{"blank", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePhone(tt.in))
		})
	}
}

func TestNormalizePhoneKeepsSignificantDigits(t *testing.T) {
	locals := []string{"0123456789", "01112345678", "0191234567", "017 888 9999"}
	for _, in := range locals {
		got := NormalizePhone(in)
		require.True(t, strings.HasPrefix(got, "+"+CountryCode), "got %s", got)

		digits := strings.NewReplacer(" ", "", "-", "").Replace(in)
		assert.Equal(t, digits[1:], strings.TrimPrefix(got, "+"+CountryCode))
	}
}

func TestValidatePhone(t *testing.T) {
	normalized, err := ValidatePhone("0123456789")
	require.NoError(t, err)
	assert.Equal(t, "+60123456789", normalized)

	_, err = ValidatePhone("")
	assert.ErrorIs(t, err, ErrPhoneRequired)

	_, err = ValidatePhone("12345")
	assert.ErrorIs(t, err, ErrPhoneInvalid)

	// landline, not a mobile
	_, err = ValidatePhone("0312345678")
	assert.ErrorIs(t, err, ErrPhoneInvalid)

	// too long
	_, err = ValidatePhone("+6012345678901")
	assert.ErrorIs(t, err, ErrPhoneInvalid)
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"name@example.com", " Name.Surname+tag@sub.example.my ", "a@b.co"}
	for _, e := range valid {
		assert.True(t, IsValidEmail(e), e)
	}
	invalid := []string{"", "name", "name@example", "name@example.c", "@example.com", "name@example.c0m"}
	for _, e := range invalid {
		assert.False(t, IsValidEmail(e), e)
	}
}

func TestValidateOptionalEmail(t *testing.T) {
	assert.NoError(t, ValidateOptionalEmail(""))
	assert.NoError(t, ValidateOptionalEmail("x@y.com"))
	assert.ErrorIs(t, ValidateOptionalEmail("bad"), ErrEmailInvalid)
}

func TestShouldValidateEmailLive(t *testing.T) {
	assert.False(t, ShouldValidateEmailLive(""))
	assert.False(t, ShouldValidateEmailLive("ab"))
	assert.True(t, ShouldValidateEmailLive("a@"))
	assert.True(t, ShouldValidateEmailLive("abc"))
}

func TestParseDate(t *testing.T) {
	loc := time.FixedZone("MYT", 8*60*60)

	d, err := ParseDate("2026-10-20", loc)
	require.NoError(t, err)
	assert.Equal(t, 20, d.Day())
	assert.Equal(t, loc, d.Location())

	for _, bad := range []string{"20-10-2026", "2026-13-01", "2026-02-30", "2026-1-1", ""} {
		_, err := ParseDate(bad, loc)
		assert.ErrorIs(t, err, ErrDateFormat, bad)
	}
}

func TestIsPastDate(t *testing.T) {
	loc := time.FixedZone("MYT", 8*60*60)

	// 2026-10-15 20:00 UTC is already 2026-10-16 in Kuala Lumpur.
	now := time.Date(2026, 10, 15, 20, 0, 0, 0, time.UTC)

	yesterday, _ := ParseDate("2026-10-15", loc)
	today, _ := ParseDate("2026-10-16", loc)
	tomorrow, _ := ParseDate("2026-10-17", loc)

	assert.True(t, IsPastDate(yesterday, now, loc))
	assert.False(t, IsPastDate(today, now, loc))
	assert.False(t, IsPastDate(tomorrow, now, loc))
}
