package leads

import (
	"strconv"
	"time"

	"github.com/wolfman30/nomad-detailing/internal/catalog"
	"github.com/wolfman30/nomad-detailing/internal/sink"
)

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Record lays the booking out in the consumer_bookings column order.
// Consent is stamped at acceptance time, the same instant as created_at.
func (b Booking) Record() sink.Record {
	created := stamp(b.CreatedAt)
	return sink.Record{
		{Name: "booking_id", Value: b.ID},
		{Name: "created_at", Value: created},
		{Name: "source", Value: b.Source},
		{Name: "service_category", Value: b.Category},
		{Name: "service_name", Value: b.Service},
		{Name: "service_variant", Value: b.Variant},
		{Name: "vehicle_type", Value: b.VehicleType},
		{Name: "vehicle_condition", Value: b.VehicleCondition},
		{Name: "service_area", Value: b.ServiceArea},
		{Name: "property_type", Value: b.PropertyType},
		{Name: "preferred_date", Value: b.PreferredDate},
		{Name: "preferred_time_window", Value: b.PreferredTimeWindow},
		{Name: "customer_name", Value: b.CustomerName},
		{Name: "customer_whatsapp", Value: b.CustomerWhatsapp},
		{Name: "customer_email", Value: b.CustomerEmail},
		{Name: "notes", Value: b.Notes},
		{Name: "consent_given", Value: true},
		{Name: "consent_timestamp", Value: created},
		{Name: "privacy_policy_version", Value: b.PrivacyPolicyVersion},
		{Name: "terms_version", Value: b.TermsVersion},
		{Name: "status", Value: catalog.StatusNew},
		{Name: "internal_notes", Value: ""},
	}
}

// Record lays the enquiry out in the corporate_fleet_enquiries column order.
func (f FleetEnquiry) Record() sink.Record {
	var vehicles any = ""
	if f.NumberOfVehicles > 0 {
		vehicles = f.NumberOfVehicles
	}
	return sink.Record{
		{Name: "enquiry_id", Value: f.ID},
		{Name: "submitted_at", Value: stamp(f.SubmittedAt)},
		{Name: "source", Value: f.Source},
		{Name: "company_name", Value: f.CompanyName},
		{Name: "contact_person", Value: f.ContactPerson},
		{Name: "whatsapp_number", Value: f.WhatsappNumber},
		{Name: "email", Value: f.Email},
		{Name: "number_of_vehicles", Value: vehicles},
		{Name: "service_frequency", Value: f.ServiceFrequency},
		{Name: "locations", Value: f.Locations},
		{Name: "notes", Value: f.Notes},
		{Name: "status", Value: f.Status},
		{Name: "internal_notes", Value: ""},
	}
}

// Lead summarises the booking for the business inbox.
func (b Booking) Lead() Lead {
	return Lead{
		Kind:    KindBooking,
		ID:      b.ID,
		Name:    b.CustomerName,
		Phone:   b.CustomerWhatsapp,
		Email:   b.CustomerEmail,
		Summary: catalog.ServiceLabel(b.Service, b.Variant) + " on " + b.PreferredDate + " (" + b.PreferredTimeWindow + ")",
		Fields: [][2]string{
			{"Vehicle", b.VehicleType + ", " + b.VehicleCondition},
			{"Area", b.ServiceArea},
			{"Property", b.PropertyType},
			{"Source", b.Source},
			{"Notes", b.Notes},
		},
	}
}

// Lead summarises the enquiry for the business inbox.
func (f FleetEnquiry) Lead() Lead {
	summary := "Fleet enquiry from " + f.CompanyName + " (" + f.ServiceFrequency + ")"
	fields := [][2]string{
		{"Contact", f.ContactPerson},
		{"Locations", f.Locations},
		{"Notes", f.Notes},
	}
	if f.NumberOfVehicles > 0 {
		fields = append([][2]string{{"Vehicles", strconv.Itoa(f.NumberOfVehicles)}}, fields...)
	}
	return Lead{
		Kind:    KindFleet,
		ID:      f.ID,
		Name:    f.CompanyName,
		Phone:   f.WhatsappNumber,
		Email:   f.Email,
		Summary: summary,
		Fields:  fields,
	}
}
