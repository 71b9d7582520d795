package leads

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/nomad-detailing/internal/booking"
	"github.com/wolfman30/nomad-detailing/internal/catalog"
	"github.com/wolfman30/nomad-detailing/internal/validation"
)

func oneOf(field string, allowed []string) string {
	return fmt.Sprintf("%s must be one of: %s", field, strings.Join(allowed, ", "))
}

func checkPhone(field, raw string, errs *ValidationErrors) string {
	normalized, err := validation.ValidatePhone(raw)
	switch {
	case err == nil:
		return normalized
	case errors.Is(err, validation.ErrPhoneRequired):
		*errs = append(*errs, field+" is required")
	default:
		*errs = append(*errs, field+" must be a Malaysian mobile number (e.g. +60123456789 or 0123456789)")
	}
	return ""
}

func checkEmail(field, raw string, errs *ValidationErrors) {
	if validation.ValidateOptionalEmail(raw) != nil {
		*errs = append(*errs, field+" must be a valid email address")
	}
}

// ValidateBooking re-checks a booking against the closed sets and returns
// the normalized booking, or ValidationErrors listing every problem.
func ValidateBooking(req BookingRequest, now time.Time, loc *time.Location) (Booking, error) {
	var errs ValidationErrors
	b := Booking{
		Source:               strings.TrimSpace(req.Source),
		Category:             strings.TrimSpace(req.ServiceCategory),
		Service:              strings.TrimSpace(req.ServiceName),
		Variant:              deref(req.ServiceVariant),
		VehicleType:          strings.TrimSpace(req.VehicleType),
		VehicleCondition:     strings.TrimSpace(req.VehicleCondition),
		ServiceArea:          strings.TrimSpace(req.ServiceArea),
		PropertyType:         strings.TrimSpace(req.PropertyType),
		PreferredDate:        strings.TrimSpace(req.PreferredDate),
		PreferredTimeWindow:  strings.TrimSpace(req.PreferredTimeWindow),
		CustomerName:         strings.TrimSpace(req.CustomerName),
		CustomerEmail:        deref(req.CustomerEmail),
		PrivacyPolicyVersion: strings.TrimSpace(req.PrivacyPolicyVersion),
		TermsVersion:         strings.TrimSpace(req.TermsVersion),
	}

	if b.Source == "" {
		b.Source = catalog.SourceDirectBooking
	} else if !catalog.Contains(catalog.BookingSources, b.Source) {
		errs = append(errs, oneOf("source", catalog.BookingSources))
	}

	category := catalog.Category(b.Category)
	if !category.Bookable() {
		errs = append(errs, oneOf("service_category", catalog.BookableCategories))
	}

	if b.Service == "" {
		errs = append(errs, "service_name is required")
	} else if category.Bookable() {
		validateService(category, b.Service, b.Variant, &errs)
	}

	if !catalog.Contains(catalog.VehicleTypes, b.VehicleType) {
		errs = append(errs, oneOf("vehicle_type", catalog.VehicleTypes))
	}
	if !catalog.Contains(catalog.VehicleConditions, b.VehicleCondition) {
		errs = append(errs, oneOf("vehicle_condition", catalog.VehicleConditions))
	}

	areaOther := deref(req.ServiceAreaOther)
	if !catalog.Contains(catalog.ServiceAreas, b.ServiceArea) {
		errs = append(errs, oneOf("service_area", catalog.ServiceAreas))
	} else if b.ServiceArea == catalog.AreaOthers && areaOther == "" {
		errs = append(errs, `service_area_other is required when service_area is "Others"`)
	}
	if !catalog.Contains(catalog.PropertyTypes, b.PropertyType) {
		errs = append(errs, oneOf("property_type", catalog.PropertyTypes))
	}

	switch {
	case b.PreferredDate == "":
		errs = append(errs, "preferred_date is required")
	default:
		date, err := validation.ParseDate(b.PreferredDate, loc)
		if err != nil {
			errs = append(errs, "preferred_date must be in YYYY-MM-DD format")
		} else if validation.IsPastDate(date, now, loc) {
			errs = append(errs, "preferred_date cannot be in the past")
		}
	}
	if !catalog.Contains(catalog.TimeWindows, b.PreferredTimeWindow) {
		errs = append(errs, oneOf("preferred_time_window", catalog.TimeWindows))
	}

	if b.CustomerName == "" {
		errs = append(errs, "customer_name is required")
	}
	b.CustomerWhatsapp = checkPhone("customer_whatsapp", req.CustomerWhatsapp, &errs)
	checkEmail("customer_email", b.CustomerEmail, &errs)

	if !req.ConsentGiven {
		errs = append(errs, "consent_given must be true (customer must agree to Privacy Policy & Terms)")
	}

	if err := errs.orNil(); err != nil {
		return Booking{}, err
	}
	b.Notes = booking.AppendAreaDetail(deref(req.Notes), b.ServiceArea, areaOther)
	return b, nil
}

func validateService(category catalog.Category, service, variant string, errs *ValidationErrors) {
	svc, ok := catalog.LookupService(category, service)
	if !ok {
		var keys []string
		for _, s := range catalog.Services(category) {
			if !s.EnquiryOnly {
				keys = append(keys, s.Key)
			}
		}
		*errs = append(*errs, oneOf("service_name", keys))
		return
	}
	if svc.EnquiryOnly {
		*errs = append(*errs, fmt.Sprintf("service_name %s is arranged over WhatsApp and cannot be booked", svc.Key))
		return
	}
	switch {
	case svc.RequiresVariant && !catalog.Contains(catalog.VariantKeys(svc.Key), variant):
		*errs = append(*errs, oneOf("service_variant", catalog.VariantKeys(svc.Key)))
	case !svc.RequiresVariant && variant != "":
		*errs = append(*errs, fmt.Sprintf("service_variant is not applicable to %s", svc.Key))
	}
}

// ValidateFleet re-checks a fleet enquiry. Frequency and status are matched
// case-insensitively and stored lower-case.
func ValidateFleet(req FleetRequest) (FleetEnquiry, error) {
	var errs ValidationErrors
	f := FleetEnquiry{
		Source:           strings.TrimSpace(req.Source),
		CompanyName:      strings.TrimSpace(req.CompanyName),
		ContactPerson:    strings.TrimSpace(req.ContactPerson),
		Email:            deref(req.Email),
		ServiceFrequency: strings.ToLower(strings.TrimSpace(req.ServiceFrequency)),
		Locations:        deref(req.Locations),
		Notes:            deref(req.Notes),
		Status:           strings.ToLower(strings.TrimSpace(req.Status)),
	}
	if f.Source == "" {
		f.Source = catalog.SourceFleetPage
	}
	if f.Status == "" {
		f.Status = catalog.StatusNew
	}

	if f.CompanyName == "" {
		errs = append(errs, "company_name is required")
	}
	if f.ContactPerson == "" {
		errs = append(errs, "contact_person is required")
	}
	f.WhatsappNumber = checkPhone("whatsapp_number", req.WhatsappNumber, &errs)
	checkEmail("email", f.Email, &errs)

	if n := req.NumberOfVehicles; n.Given {
		if n.Invalid || n.Value <= 0 {
			errs = append(errs, "number_of_vehicles must be a whole number greater than zero")
		} else {
			f.NumberOfVehicles = n.Value
		}
	}
	if !catalog.Contains(catalog.ServiceFrequencies, f.ServiceFrequency) {
		errs = append(errs, oneOf("service_frequency", catalog.ServiceFrequencies))
	}
	if !catalog.Contains(catalog.FleetStatuses, f.Status) {
		errs = append(errs, oneOf("status", catalog.FleetStatuses))
	}

	if err := errs.orNil(); err != nil {
		return FleetEnquiry{}, err
	}
	return f, nil
}
