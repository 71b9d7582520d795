package leads

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// BookingRequest is the body of POST /api/bookings. Optional text fields are
// sent as null when blank.
type BookingRequest struct {
	Source               string  `json:"source"`
	ServiceCategory      string  `json:"service_category"`
	ServiceName          string  `json:"service_name"`
	ServiceVariant       *string `json:"service_variant"`
	VehicleType          string  `json:"vehicle_type"`
	VehicleCondition     string  `json:"vehicle_condition"`
	ServiceArea          string  `json:"service_area"`
	ServiceAreaOther     *string `json:"service_area_other"`
	PropertyType         string  `json:"property_type"`
	PreferredDate        string  `json:"preferred_date"`
	PreferredTimeWindow  string  `json:"preferred_time_window"`
	CustomerName         string  `json:"customer_name"`
	CustomerWhatsapp     string  `json:"customer_whatsapp"`
	CustomerEmail        *string `json:"customer_email"`
	Notes                *string `json:"notes"`
	ConsentGiven         bool    `json:"consent_given"`
	ConsentTimestamp     string  `json:"consent_timestamp,omitempty"`
	PrivacyPolicyVersion string  `json:"privacy_policy_version"`
	TermsVersion         string  `json:"terms_version"`
}

// FleetRequest is the body of POST /api/fleet.
type FleetRequest struct {
	Source           string       `json:"source,omitempty"`
	CompanyName      string       `json:"company_name"`
	ContactPerson    string       `json:"contact_person"`
	WhatsappNumber   string       `json:"whatsapp_number"`
	Email            *string      `json:"email"`
	NumberOfVehicles VehicleCount `json:"number_of_vehicles"`
	ServiceFrequency string       `json:"service_frequency"`
	Locations        *string      `json:"locations"`
	Notes            *string      `json:"notes"`
	Status           string       `json:"status,omitempty"`
}

// VehicleCount accepts a JSON number, a numeric string, "" or null.
type VehicleCount struct {
	Value int
	// Given is false for null or blank input.
	Given bool
	// Invalid marks a given value that is not a whole number.
	Invalid bool
}

// Vehicles builds a count for an outgoing request.
func Vehicles(n int) VehicleCount {
	return VehicleCount{Value: n, Given: true}
}

func (v *VehicleCount) UnmarshalJSON(b []byte) error {
	*v = VehicleCount{}
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			return nil
		}
	}
	v.Given = true
	n, err := strconv.Atoi(raw)
	if err != nil {
		v.Invalid = true
		return nil
	}
	v.Value = n
	return nil
}

func (v VehicleCount) MarshalJSON() ([]byte, error) {
	if !v.Given {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(v.Value)), nil
}

// Booking is a validated, normalized consumer booking.
type Booking struct {
	ID                   string
	CreatedAt            time.Time
	Source               string
	Category             string
	Service              string
	Variant              string
	VehicleType          string
	VehicleCondition     string
	ServiceArea          string
	PropertyType         string
	PreferredDate        string
	PreferredTimeWindow  string
	CustomerName         string
	CustomerWhatsapp     string
	CustomerEmail        string
	Notes                string
	PrivacyPolicyVersion string
	TermsVersion         string
}

// FleetEnquiry is a validated, normalized corporate enquiry.
type FleetEnquiry struct {
	ID               string
	SubmittedAt      time.Time
	Source           string
	CompanyName      string
	ContactPerson    string
	WhatsappNumber   string
	Email            string
	NumberOfVehicles int // zero when not given
	ServiceFrequency string
	Locations        string
	Notes            string
	Status           string
}

// Kind tells bookings and fleet enquiries apart in notifications and metrics.
type Kind string

const (
	KindBooking Kind = "booking"
	KindFleet   Kind = "fleet"
)

// Lead is what a Notifier learns about an accepted submission.
type Lead struct {
	Kind    Kind
	ID      string
	Name    string
	Phone   string
	Email   string
	Summary string
	Fields  [][2]string
}

// Optional trims s and returns nil when nothing is left.
func Optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
