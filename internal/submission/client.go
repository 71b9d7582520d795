// Package submission turns wizard drafts into intake requests and posts them.
package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/nomad-detailing/internal/booking"
	"github.com/wolfman30/nomad-detailing/internal/leads"
	"github.com/wolfman30/nomad-detailing/internal/validation"
	"github.com/wolfman30/nomad-detailing/pkg/logging"
)

// Legal document versions the customer agreed to.
const (
	PrivacyPolicyVersion = "v1.0 (2026-01-23)"
	TermsVersion         = "v1.0 (2026-01-23)"
)

const (
	BookingsPath = "/api/bookings"
	FleetPath    = "/api/fleet"

	defaultTimeout = 15 * time.Second
)

// Client posts bookings and fleet enquiries to the intake API.
type Client struct {
	baseURL string
	http    *http.Client
	now     func() time.Time
	logger  *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(c *http.Client) Option { return func(cl *Client) { cl.http = c } }

func WithClock(now func() time.Time) Option { return func(cl *Client) { cl.now = now } }

func WithLogger(l *logging.Logger) Option { return func(cl *Client) { cl.logger = l } }

// NewClient targets the intake API at baseURL ("" means same origin paths).
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.Default()
	}
	return c
}

// BuildBookingRequest maps a draft onto the wire payload. The "Others" area
// detail is folded into notes once and also sent on its own for validation.
func BuildBookingRequest(d booking.BookingDraft, preset booking.Preset, now time.Time) leads.BookingRequest {
	req := leads.BookingRequest{
		Source:               preset.Source(),
		ServiceCategory:      string(d.Category),
		ServiceName:          d.Service,
		ServiceVariant:       leads.Optional(d.Variant),
		VehicleType:          d.VehicleType,
		VehicleCondition:     d.VehicleCondition,
		ServiceArea:          d.ServiceArea,
		PropertyType:         d.PropertyType,
		PreferredDate:        strings.TrimSpace(d.PreferredDate),
		PreferredTimeWindow:  d.PreferredTimeWindow,
		CustomerName:         strings.TrimSpace(d.CustomerName),
		CustomerWhatsapp:     validation.NormalizePhone(d.CustomerWhatsapp),
		CustomerEmail:        leads.Optional(d.CustomerEmail),
		Notes:                leads.Optional(d.FinalNotes()),
		ConsentGiven:         d.ConsentGiven,
		PrivacyPolicyVersion: PrivacyPolicyVersion,
		TermsVersion:         TermsVersion,
	}
	if d.UsesOtherArea() {
		req.ServiceAreaOther = leads.Optional(d.AreaOther)
	}
	if d.ConsentGiven {
		req.ConsentTimestamp = now.UTC().Format(time.RFC3339)
	}
	return req
}

// BuildFleetRequest maps the fleet form onto the wire payload.
func BuildFleetRequest(d booking.FleetEnquiryDraft) leads.FleetRequest {
	req := leads.FleetRequest{
		CompanyName:      strings.TrimSpace(d.CompanyName),
		ContactPerson:    strings.TrimSpace(d.ContactPerson),
		WhatsappNumber:   validation.NormalizePhone(d.WhatsappNumber),
		Email:            leads.Optional(d.Email),
		ServiceFrequency: strings.ToLower(strings.TrimSpace(d.ServiceFrequency)),
		Locations:        leads.Optional(d.Locations),
		Notes:            leads.Optional(d.Notes),
	}
	if n, err := strconv.Atoi(strings.TrimSpace(d.NumberOfVehicles)); err == nil {
		req.NumberOfVehicles = leads.Vehicles(n)
	}
	return req
}

// SubmitBooking posts the draft and returns the server's booking id.
func (c *Client) SubmitBooking(ctx context.Context, d booking.BookingDraft, preset booking.Preset) (string, error) {
	var resp leads.BookingResponse
	if err := c.post(ctx, BookingsPath, BuildBookingRequest(d, preset, c.now()), &resp); err != nil {
		return "", err
	}
	return resp.BookingID, nil
}

// SubmitFleet posts the fleet form and returns the server's enquiry id.
func (c *Client) SubmitFleet(ctx context.Context, d booking.FleetEnquiryDraft) (string, error) {
	var resp leads.FleetResponse
	if err := c.post(ctx, FleetPath, BuildFleetRequest(d), &resp); err != nil {
		return "", err
	}
	return resp.EnquiryID, nil
}

type envelope struct {
	OK     *bool    `json:"ok"`
	Error  string   `json:"error"`
	Errors []string `json:"errors"`
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("submission: marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("submission: request failed", "path", path, "error", err)
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &TransportError{Err: err}
	}

	var env envelope
	_ = json.Unmarshal(data, &env)
	if resp.StatusCode < 200 || resp.StatusCode > 299 || (env.OK != nil && !*env.OK) {
		return newRejected(resp.StatusCode, env)
	}
	// A 2xx only counts when the body says ok:true.
	if env.OK == nil {
		c.logger.Warn("submission: response without ok flag", "path", path, "status", resp.StatusCode)
		return &RejectedError{Status: resp.StatusCode, Messages: []string{msgUnexpected}}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &RejectedError{Status: resp.StatusCode, Messages: []string{msgUnexpected}}
	}
	return nil
}
