// Package catalog holds the closed value sets shared by the booking wizard and
// the intake handlers. The destination sheets use these exact strings as
// dropdown values, so changing one here is a schema change downstream.
package catalog

import (
	"slices"
	"strings"
)

// Category selects which service catalog the wizard shows.
type Category string

const (
	CategoryNone        Category = ""
	CategoryPremium     Category = "premium"
	CategoryMaintenance Category = "maintenance"
	// CategoryCorporate is never stored on a booking; it routes to the fleet form.
	CategoryCorporate Category = "corporate"
)

// BookableCategories are the categories a booking can carry.
var BookableCategories = []string{string(CategoryPremium), string(CategoryMaintenance)}

// Bookable reports whether c can be stored on a booking.
func (c Category) Bookable() bool {
	return c == CategoryPremium || c == CategoryMaintenance
}

// Service is one entry of a category's catalog.
type Service struct {
	Key             string
	Title           string
	Description     string
	RequiresVariant bool
	EnquiryOnly     bool
}

// Variant is a sub-selection for a variant-requiring service.
type Variant struct {
	Key   string
	Title string
}

const (
	ServiceCeramicCoating          = "ceramic_coating"
	ServiceMaintenancePlansEnquiry = "maintenance_plans_enquiry"
)

var premiumServices = []Service{
	{Key: "deep_interior_detailing", Title: "Deep Interior Detailing", Description: "Deep extraction, conditioning, and odour neutralisation for a like-new cabin."},
	{Key: "elite_exterior_finish", Title: "Elite Exterior Finish", Description: "Decontamination and protection for a clean, glossy finish."},
	{Key: "one_step_paint_correction", Title: "One-Step Paint Correction", Description: "Restore clarity and gloss with light-to-moderate defect removal."},
	{Key: "two_step_paint_correction", Title: "Two-Step Paint Correction", Description: "Maximum correction for moderate-to-heavy imperfections and near-flawless results."},
	{Key: ServiceCeramicCoating, Title: "Ceramic Coating", Description: "Long-term protection for effortless maintenance and durable gloss.", RequiresVariant: true},
}

var maintenanceServices = []Service{
	{Key: "maintenance_wash", Title: "Maintenance Wash", Description: "A premium wash to keep your vehicle fresh between major details."},
	{Key: "ceramic_maintenance_wash", Title: "Ceramic Maintenance Wash", Description: "Safe wash method designed for coated vehicles."},
	{Key: "interior_maintenance", Title: "Interior Maintenance", Description: "Quick refresh to keep the cabin clean and comfortable."},
	{Key: ServiceMaintenancePlansEnquiry, Title: "Maintenance Plans (Enquiry)", Description: "Enquire via WhatsApp for ongoing care plans.", EnquiryOnly: true},
}

var ceramicVariants = []Variant{
	{Key: "1-year", Title: "1-Year Protection"},
	{Key: "2-year", Title: "2-Year Protection"},
	{Key: "3-year", Title: "3-Year Protection"},
}

// Services returns the catalog for a category, or nil when it has none.
func Services(c Category) []Service {
	switch c {
	case CategoryPremium:
		return slices.Clone(premiumServices)
	case CategoryMaintenance:
		return slices.Clone(maintenanceServices)
	default:
		return nil
	}
}

// LookupService finds key within the category's catalog.
func LookupService(c Category, key string) (Service, bool) {
	for _, s := range Services(c) {
		if s.Key == key {
			return s, true
		}
	}
	return Service{}, false
}

// FindService searches every catalog; used when only the key is known.
func FindService(key string) (Service, Category, bool) {
	for _, c := range []Category{CategoryPremium, CategoryMaintenance} {
		if s, ok := LookupService(c, key); ok {
			return s, c, true
		}
	}
	return Service{}, CategoryNone, false
}

// Variants returns the sub-selections for a service.
func Variants(serviceKey string) []Variant {
	if serviceKey == ServiceCeramicCoating {
		return slices.Clone(ceramicVariants)
	}
	return nil
}

// VariantKeys lists the allowed variant values for a service.
func VariantKeys(serviceKey string) []string {
	vs := Variants(serviceKey)
	keys := make([]string, 0, len(vs))
	for _, v := range vs {
		keys = append(keys, v.Key)
	}
	return keys
}

// ServiceLabel renders the service with its variant, e.g. "Ceramic Coating (2-Year Protection)".
func ServiceLabel(serviceKey, variantKey string) string {
	if serviceKey == "" {
		return ""
	}
	s, _, ok := FindService(serviceKey)
	if !ok {
		return serviceKey
	}
	if s.RequiresVariant && variantKey != "" {
		title := variantKey
		for _, v := range Variants(serviceKey) {
			if v.Key == variantKey {
				title = v.Title
			}
		}
		return s.Title + " (" + title + ")"
	}
	return s.Title
}

const AreaOthers = "Others"

var (
	VehicleTypes       = []string{"Sedan", "SUV", "MPV", "Coupe", "Supercar"}
	VehicleConditions  = []string{"Well maintained", "Moderate wear", "Heavy soiling"}
	ServiceAreas       = []string{"Kuala Lumpur", "Petaling Jaya", "Subang", "Cheras", "Puchong", AreaOthers}
	PropertyTypes      = []string{"Condo", "Landed", "Office"}
	TimeWindows        = []string{"Morning", "Midday", "Afternoon"}
	ServiceFrequencies = []string{"one-off", "monthly", "weekly", "ad-hoc"}
	FleetStatuses      = []string{"new", "contacted", "quoted", "won", "lost"}
)

// Booking sources record how the wizard was entered.
const (
	SourceServicesPage     = "services_page"
	SourceHomepageCategory = "homepage_category"
	SourceDirectBooking    = "direct_booking"
	SourceFleetPage        = "fleet_page"
)

var BookingSources = []string{SourceServicesPage, SourceHomepageCategory, SourceDirectBooking}

// StatusNew is the initial pipeline status of every lead.
const StatusNew = "new"

// Contains reports whether value is one of allowed (exact match).
func Contains(allowed []string, value string) bool {
	return slices.Contains(allowed, value)
}

// FilterAreas narrows the service area list for an autocomplete query.
func FilterAreas(query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return slices.Clone(ServiceAreas)
	}
	var out []string
	for _, a := range ServiceAreas {
		if strings.Contains(strings.ToLower(a), q) {
			out = append(out, a)
		}
	}
	return out
}
