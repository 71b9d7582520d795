// Package booking defines the in-progress lead drafts shared by the wizard,
// the draft store and the submission client.
package booking

import (
	"strings"

	"github.com/wolfman30/nomad-detailing/internal/catalog"
)

// Step is a wizard state.
type Step string

const (
	StepCategory Step = "category"
	StepService  Step = "service"
	StepVehicle  Step = "vehicle"
	StepLocation Step = "location"
	StepContact  Step = "contact"
	StepDone     Step = "done"
)

// Steps is the linear order of the wizard.
var Steps = []Step{StepCategory, StepService, StepVehicle, StepLocation, StepContact, StepDone}

// Valid reports whether s is a known step.
func (s Step) Valid() bool {
	for _, known := range Steps {
		if s == known {
			return true
		}
	}
	return false
}

// BookingDraft is the wizard's field model. The JSON shape is what the draft
// store persists as bookingData.
type BookingDraft struct {
	Category catalog.Category `json:"category"`
	Service  string           `json:"service"`
	Variant  string           `json:"variant"`

	VehicleType      string `json:"vehicleType"`
	VehicleCondition string `json:"vehicleCondition"`

	ServiceArea         string `json:"serviceArea"`
	AreaOther           string `json:"areaOther"`
	PropertyType        string `json:"propertyType"`
	PreferredDate       string `json:"preferredDate"`
	PreferredTimeWindow string `json:"preferredTimeWindow"`

	CustomerName     string `json:"customerName"`
	CustomerWhatsapp string `json:"customerWhatsapp"`
	CustomerEmail    string `json:"customerEmail"`
	Notes            string `json:"notes"`

	ConsentGiven bool `json:"consentGiven"`
}

// UsesOtherArea reports whether the free-text area detail is in play.
func (d BookingDraft) UsesOtherArea() bool {
	return d.ServiceArea == catalog.AreaOthers
}

// FinalNotes folds the "Others" area detail into the notes exactly once.
func (d BookingDraft) FinalNotes() string {
	return AppendAreaDetail(d.Notes, d.ServiceArea, d.AreaOther)
}

const areaDetailLabel = "Service Area (Other): "

// AppendAreaDetail adds a labelled area line to notes when area is "Others".
// It is a no-op when the same line is already present.
func AppendAreaDetail(notes, area, other string) string {
	notes = strings.TrimSpace(notes)
	other = strings.TrimSpace(other)
	if area != catalog.AreaOthers || other == "" {
		return notes
	}
	line := areaDetailLabel + other
	if strings.Contains(notes, line) {
		return notes
	}
	if notes == "" {
		return line
	}
	return notes + "\n\n" + line
}

// Preset carries the context of the page that launched the wizard.
type Preset struct {
	Category catalog.Category `json:"category,omitempty"`
	Service  string           `json:"service,omitempty"`
	Variant  string           `json:"variant,omitempty"`
}

// Source derives the lead's source tag from how the wizard was entered.
func (p Preset) Source() string {
	switch {
	case p.Service != "":
		return catalog.SourceServicesPage
	case p.Category != catalog.CategoryNone:
		return catalog.SourceHomepageCategory
	default:
		return catalog.SourceDirectBooking
	}
}

// CategoryOnly reports whether the preset pins a category but no service.
func (p Preset) CategoryOnly() bool {
	return p.Category.Bookable() && p.Service == ""
}

// FleetEnquiryDraft is the single-form corporate enquiry.
type FleetEnquiryDraft struct {
	CompanyName      string `json:"companyName"`
	ContactPerson    string `json:"contactPerson"`
	WhatsappNumber   string `json:"whatsappNumber"`
	Email            string `json:"email"`
	NumberOfVehicles string `json:"numberOfVehicles"`
	ServiceFrequency string `json:"serviceFrequency"`
	Locations        string `json:"locations"`
	Notes            string `json:"notes"`
}
