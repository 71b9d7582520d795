package wizard

import (
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/nomad-detailing/internal/booking"
	"github.com/wolfman30/nomad-detailing/internal/catalog"
	"github.com/wolfman30/nomad-detailing/internal/validation"
)

// Guard messages shown to the user.
const (
	MsgCategoryRequired   = "Please select a category."
	MsgServiceRequired    = "Please select a service."
	MsgVariantRequired    = "Please select a coating duration."
	MsgEnquiryOnly        = "Maintenance Plans are arranged over WhatsApp. Please choose a bookable service."
	MsgVehicleType        = "Please select a vehicle type."
	MsgVehicleCondition   = "Please select the vehicle condition."
	MsgServiceArea        = "Please select a service area."
	MsgAreaOther          = "Please tell us which area you are in."
	MsgPropertyType       = "Please select a property type."
	MsgDateRequired       = "Please choose a preferred date."
	MsgDateInvalid        = "Preferred date must be a valid date (YYYY-MM-DD)."
	MsgDatePast           = "Preferred date cannot be in the past."
	MsgTimeWindow         = "Please select a preferred time window."
	MsgNameRequired       = "Name is required."
	MsgConsentRequired    = "Please agree to the Privacy Policy and Terms & Conditions."
	MsgFleetCompany       = "Company name is required."
	MsgFleetContact       = "Contact person is required."
	MsgFleetVehicleCount  = "Number of vehicles must be a whole number greater than zero."
	MsgFleetFrequency     = "Please select a service frequency."
	msgFleetFrequencyFrom = "Service frequency must be one of: "
)

// guardFunc returns the messages blocking a step; none means passable.
type guardFunc func(d booking.BookingDraft, now time.Time, loc *time.Location) []string

var guards = map[booking.Step]guardFunc{
	booking.StepCategory: guardCategory,
	booking.StepService:  guardService,
	booking.StepVehicle:  guardVehicle,
	booking.StepLocation: guardLocation,
	booking.StepContact:  guardContact,
}

func guardCategory(booking.BookingDraft, time.Time, *time.Location) []string {
	return nil
}

func guardService(d booking.BookingDraft, _ time.Time, _ *time.Location) []string {
	if !d.Category.Bookable() {
		return []string{MsgCategoryRequired}
	}
	svc, ok := catalog.LookupService(d.Category, d.Service)
	if !ok {
		return []string{MsgServiceRequired}
	}
	if svc.RequiresVariant && !catalog.Contains(catalog.VariantKeys(svc.Key), d.Variant) {
		return []string{MsgVariantRequired}
	}
	return nil
}

func guardVehicle(d booking.BookingDraft, _ time.Time, _ *time.Location) []string {
	var msgs []string
	if !catalog.Contains(catalog.VehicleTypes, d.VehicleType) {
		msgs = append(msgs, MsgVehicleType)
	}
	if !catalog.Contains(catalog.VehicleConditions, d.VehicleCondition) {
		msgs = append(msgs, MsgVehicleCondition)
	}
	return msgs
}

func guardLocation(d booking.BookingDraft, now time.Time, loc *time.Location) []string {
	var msgs []string
	if !catalog.Contains(catalog.ServiceAreas, d.ServiceArea) {
		msgs = append(msgs, MsgServiceArea)
	} else if d.UsesOtherArea() && strings.TrimSpace(d.AreaOther) == "" {
		msgs = append(msgs, MsgAreaOther)
	}
	if !catalog.Contains(catalog.PropertyTypes, d.PropertyType) {
		msgs = append(msgs, MsgPropertyType)
	}
	if msg := dateMessage(d.PreferredDate, now, loc); msg != "" {
		msgs = append(msgs, msg)
	}
	if !catalog.Contains(catalog.TimeWindows, d.PreferredTimeWindow) {
		msgs = append(msgs, MsgTimeWindow)
	}
	return msgs
}

func dateMessage(raw string, now time.Time, loc *time.Location) string {
	if strings.TrimSpace(raw) == "" {
		return MsgDateRequired
	}
	date, err := validation.ParseDate(raw, loc)
	if err != nil {
		return MsgDateInvalid
	}
	if validation.IsPastDate(date, now, loc) {
		return MsgDatePast
	}
	return ""
}

func guardContact(d booking.BookingDraft, _ time.Time, _ *time.Location) []string {
	var msgs []string
	if strings.TrimSpace(d.CustomerName) == "" {
		msgs = append(msgs, MsgNameRequired)
	}
	if _, err := validation.ValidatePhone(d.CustomerWhatsapp); err != nil {
		msgs = append(msgs, err.Error())
	}
	if err := validation.ValidateOptionalEmail(d.CustomerEmail); err != nil {
		msgs = append(msgs, err.Error())
	}
	if !d.ConsentGiven {
		msgs = append(msgs, MsgConsentRequired)
	}
	return msgs
}

// validateForSubmit runs every guard in step order and adds the checks that
// only matter for a real booking.
func validateForSubmit(d booking.BookingDraft, now time.Time, loc *time.Location) []string {
	var msgs []string
	for _, step := range booking.Steps {
		if g, ok := guards[step]; ok {
			msgs = append(msgs, g(d, now, loc)...)
		}
	}
	if svc, ok := catalog.LookupService(d.Category, d.Service); ok && svc.EnquiryOnly {
		msgs = append(msgs, MsgEnquiryOnly)
	}
	return msgs
}

// ValidateFleet checks a fleet enquiry form before it is sent.
func ValidateFleet(d booking.FleetEnquiryDraft) []string {
	var msgs []string
	if strings.TrimSpace(d.CompanyName) == "" {
		msgs = append(msgs, MsgFleetCompany)
	}
	if strings.TrimSpace(d.ContactPerson) == "" {
		msgs = append(msgs, MsgFleetContact)
	}
	if _, err := validation.ValidatePhone(d.WhatsappNumber); err != nil {
		msgs = append(msgs, err.Error())
	}
	if err := validation.ValidateOptionalEmail(d.Email); err != nil {
		msgs = append(msgs, err.Error())
	}
	if raw := strings.TrimSpace(d.NumberOfVehicles); raw != "" {
		if n, err := strconv.Atoi(raw); err != nil || n <= 0 {
			msgs = append(msgs, MsgFleetVehicleCount)
		}
	}
	freq := strings.ToLower(strings.TrimSpace(d.ServiceFrequency))
	switch {
	case freq == "":
		msgs = append(msgs, MsgFleetFrequency)
	case !catalog.Contains(catalog.ServiceFrequencies, freq):
		msgs = append(msgs, msgFleetFrequencyFrom+strings.Join(catalog.ServiceFrequencies, ", "))
	}
	return msgs
}
