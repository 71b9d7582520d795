package submission

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/nomad-detailing/internal/booking"
	"github.com/wolfman30/nomad-detailing/internal/catalog"
	"github.com/wolfman30/nomad-detailing/internal/leads"
	"github.com/wolfman30/nomad-detailing/internal/sink"
	"github.com/wolfman30/nomad-detailing/internal/wizard"
	"github.com/wolfman30/nomad-detailing/pkg/logging"
)

var myt = time.FixedZone("MYT", 8*60*60)

func fixedNow() time.Time { return time.Date(2026, 10, 15, 10, 0, 0, 0, myt) }

func draft() booking.BookingDraft {
	return booking.BookingDraft{
		Category:            catalog.CategoryPremium,
		Service:             catalog.ServiceCeramicCoating,
		Variant:             "3-year",
		VehicleType:         "Coupe",
		VehicleCondition:    "Well maintained",
		ServiceArea:         catalog.AreaOthers,
		AreaOther:           " Shah Alam ",
		PropertyType:        "Landed",
		PreferredDate:       "2026-10-18",
		PreferredTimeWindow: "Afternoon",
		CustomerName:        "Farid",
		CustomerWhatsapp:    "012-345 6789",
		CustomerEmail:       "  ",
		Notes:               "Porch is covered",
		ConsentGiven:        true,
	}
}

func TestBuildBookingRequest(t *testing.T) {
	req := BuildBookingRequest(draft(), booking.Preset{Service: catalog.ServiceCeramicCoating}, fixedNow())

	assert.Equal(t, catalog.SourceServicesPage, req.Source)
	assert.Equal(t, "premium", req.ServiceCategory)
	assert.Equal(t, "+60123456789", req.CustomerWhatsapp)
	assert.Nil(t, req.CustomerEmail)
	require.NotNil(t, req.ServiceAreaOther)
	assert.Equal(t, "Shah Alam", *req.ServiceAreaOther)
	require.NotNil(t, req.Notes)
	assert.Equal(t, "Porch is covered\n\nService Area (Other): Shah Alam", *req.Notes)
	assert.Equal(t, "2026-10-15T02:00:00Z", req.ConsentTimestamp)
	assert.Equal(t, PrivacyPolicyVersion, req.PrivacyPolicyVersion)
	assert.Equal(t, TermsVersion, req.TermsVersion)

	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"customer_email":null`)
}

func TestBuildBookingRequestSources(t *testing.T) {
	d := draft()
	assert.Equal(t, catalog.SourceDirectBooking, BuildBookingRequest(d, booking.Preset{}, fixedNow()).Source)
	assert.Equal(t, catalog.SourceHomepageCategory, BuildBookingRequest(d, booking.Preset{Category: catalog.CategoryPremium}, fixedNow()).Source)

	d.ServiceArea = "Cheras"
	req := BuildBookingRequest(d, booking.Preset{}, fixedNow())
	assert.Nil(t, req.ServiceAreaOther)
	assert.Equal(t, "Porch is covered", *req.Notes)
}

func TestBuildFleetRequest(t *testing.T) {
	req := BuildFleetRequest(booking.FleetEnquiryDraft{
		CompanyName:      " Acme ",
		ContactPerson:    "Mei",
		WhatsappNumber:   "60129876543",
		NumberOfVehicles: "15",
		ServiceFrequency: "Weekly",
	})
	assert.Equal(t, "Acme", req.CompanyName)
	assert.Equal(t, "+60129876543", req.WhatsappNumber)
	assert.Equal(t, leads.Vehicles(15), req.NumberOfVehicles)
	assert.Equal(t, "weekly", req.ServiceFrequency)

	blank := BuildFleetRequest(booking.FleetEnquiryDraft{NumberOfVehicles: ""})
	assert.False(t, blank.NumberOfVehicles.Given)
}

type memorySink struct {
	records map[string][]sink.Record
	err     error
}

func (m *memorySink) Name() string { return "memory" }
func (m *memorySink) Append(_ context.Context, table string, rec sink.Record) (json.RawMessage, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.records == nil {
		m.records = map[string][]sink.Record{}
	}
	m.records[table] = append(m.records[table], rec)
	return json.RawMessage(`{"ok":true}`), nil
}

func intakeServer(t *testing.T, s sink.Sink) *httptest.Server {
	t.Helper()
	h := leads.NewHandler(s, logging.Discard(),
		leads.WithClock(fixedNow),
		leads.WithLocation(myt),
		leads.WithIDGenerator(func() string { return "srv-1" }),
	)
	mux := http.NewServeMux()
	mux.HandleFunc(BookingsPath, h.Bookings)
	mux.HandleFunc(FleetPath, h.FleetEnquiries)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSubmitBookingAgainstIntake(t *testing.T) {
	s := &memorySink{}
	srv := intakeServer(t, s)
	c := NewClient(srv.URL, WithHTTPClient(srv.Client()), WithClock(fixedNow), WithLogger(logging.Discard()))

	id, err := c.SubmitBooking(context.Background(), draft(), booking.Preset{})
	require.NoError(t, err)
	assert.Equal(t, "srv-1", id)

	require.Len(t, s.records[sink.TableBookings], 1)
	notes, _ := s.records[sink.TableBookings][0].Get("notes")
	assert.Equal(t, "Porch is covered\n\nService Area (Other): Shah Alam", notes, "area detail must appear once")
}

func TestSubmitBookingRejected(t *testing.T) {
	srv := intakeServer(t, &memorySink{})
	c := NewClient(srv.URL, WithHTTPClient(srv.Client()), WithClock(fixedNow), WithLogger(logging.Discard()))

	d := draft()
	d.PreferredDate = "2026-10-01"
	_, err := c.SubmitBooking(context.Background(), d, booking.Preset{})

	var rej *RejectedError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, http.StatusBadRequest, rej.Status)
	assert.Equal(t, []string{"preferred_date cannot be in the past"}, rej.UserMessages())
	assert.False(t, rej.Retryable())
}

func TestSubmitBookingSinkFailure(t *testing.T) {
	srv := intakeServer(t, &memorySink{err: &sink.Error{Sink: "sheets", Status: 500}})
	c := NewClient(srv.URL, WithHTTPClient(srv.Client()), WithClock(fixedNow), WithLogger(logging.Discard()))

	_, err := c.SubmitBooking(context.Background(), draft(), booking.Preset{})
	var rej *RejectedError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, http.StatusBadGateway, rej.Status)
	assert.Equal(t, []string{msgSinkFailed}, rej.UserMessages())
	assert.True(t, rej.Retryable())
}

func TestSubmitTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, WithLogger(logging.Discard()))
	_, err := c.SubmitBooking(context.Background(), draft(), booking.Preset{})

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, []string{"Network error. Please try again."}, te.UserMessages())
}

func TestSubmitOkFalseWith200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"ok":false,"error":"Sheet locked"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithHTTPClient(srv.Client()), WithLogger(logging.Discard()))
	_, err := c.SubmitFleet(context.Background(), booking.FleetEnquiryDraft{})
	var rej *RejectedError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, []string{"Sheet locked"}, rej.Messages)
}

func TestSubmit2xxWithoutOkFlagIsRejected(t *testing.T) {
	for _, body := range []string{`{}`, `{"booking_id":"BK-1"}`, `not json`} {
		t.Run(body, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, body)
			}))
			defer srv.Close()

			c := NewClient(srv.URL, WithHTTPClient(srv.Client()), WithLogger(logging.Discard()))
			id, err := c.SubmitBooking(context.Background(), draft(), booking.Preset{})
			assert.Empty(t, id)
			var rej *RejectedError
			require.ErrorAs(t, err, &rej)
			assert.Equal(t, http.StatusOK, rej.Status)
			assert.Equal(t, []string{msgUnexpected}, rej.UserMessages())
			assert.False(t, rej.Retryable())
		})
	}
}

func TestSubmitFleetAgainstIntake(t *testing.T) {
	s := &memorySink{}
	srv := intakeServer(t, s)
	c := NewClient(srv.URL, WithHTTPClient(srv.Client()), WithLogger(logging.Discard()))

	id, err := c.SubmitFleet(context.Background(), booking.FleetEnquiryDraft{
		CompanyName:      "Acme",
		ContactPerson:    "Mei",
		WhatsappNumber:   "0129876543",
		NumberOfVehicles: "4",
		ServiceFrequency: "Monthly",
	})
	require.NoError(t, err)
	assert.Equal(t, "srv-1", id)
	require.Len(t, s.records[sink.TableFleet], 1)
}

func TestWizardEndToEnd(t *testing.T) {
	s := &memorySink{}
	srv := intakeServer(t, s)
	client := NewClient(srv.URL, WithHTTPClient(srv.Client()), WithClock(fixedNow), WithLogger(logging.Discard()))

	m, _ := wizard.Mount(context.Background(), booking.Preset{Category: catalog.CategoryMaintenance},
		wizard.WithSubmitter(client),
		wizard.WithClock(fixedNow),
		wizard.WithLocation(myt),
		wizard.WithLogger(logging.Discard()),
	)
	require.NoError(t, m.SelectService("maintenance_wash"))
	require.NoError(t, m.Update(func(d *booking.BookingDraft) {
		d.VehicleType = "Sedan"
		d.VehicleCondition = "Heavy soiling"
	}))
	_, err := m.GoNext()
	require.NoError(t, err)
	require.NoError(t, m.Update(func(d *booking.BookingDraft) {
		d.ServiceArea = "Subang"
		d.PropertyType = "Office"
		d.PreferredDate = "2026-10-15"
		d.PreferredTimeWindow = "Midday"
	}))
	_, err = m.GoNext()
	require.NoError(t, err)
	require.NoError(t, m.Update(func(d *booking.BookingDraft) {
		d.CustomerName = "Lim"
		d.CustomerWhatsapp = "+60 11-2345 6789"
	}))
	require.NoError(t, m.SetConsent(true))

	require.NoError(t, m.Submit(context.Background()))
	assert.Equal(t, booking.StepDone, m.Step())
	assert.Equal(t, "srv-1", m.BookingID())

	rec := s.records[sink.TableBookings][0]
	source, _ := rec.Get("source")
	assert.Equal(t, catalog.SourceHomepageCategory, source)
	phone, _ := rec.Get("customer_whatsapp")
	assert.Equal(t, "+601123456789", phone)
}

func TestWizardShowsServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"ok":false,"errors":["service_area must be one of: Kuala Lumpur"]}`)
	}))
	defer srv.Close()
	client := NewClient(srv.URL, WithHTTPClient(srv.Client()), WithLogger(logging.Discard()))

	m, _ := wizard.Mount(context.Background(), booking.Preset{Service: "interior_maintenance"},
		wizard.WithSubmitter(client), wizard.WithClock(fixedNow), wizard.WithLocation(myt), wizard.WithLogger(logging.Discard()))
	require.NoError(t, m.Update(func(d *booking.BookingDraft) {
		d.VehicleType = "MPV"
		d.VehicleCondition = "Moderate wear"
		d.ServiceArea = "Puchong"
		d.PropertyType = "Condo"
		d.PreferredDate = "2026-11-01"
		d.PreferredTimeWindow = "Morning"
		d.CustomerName = "Lim"
		d.CustomerWhatsapp = "0112345678"
		d.ConsentGiven = true
	}))
	_, err := m.GoNext()
	require.NoError(t, err)
	_, err = m.GoNext()
	require.NoError(t, err)

	err = m.Submit(context.Background())
	require.Error(t, err)
	assert.True(t, errors.As(err, new(*RejectedError)))
	assert.Equal(t, []string{"service_area must be one of: Kuala Lumpur"}, m.Errors())
	assert.Equal(t, booking.StepContact, m.Step())
}
