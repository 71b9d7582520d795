package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/nomad-detailing/internal/sink"
	"github.com/wolfman30/nomad-detailing/pkg/logging"
)

const (
	maxBodyBytes  = 64 << 10
	notifyTimeout = 5 * time.Second
)

// Notifier is told about accepted leads. Failures never affect the response.
type Notifier interface {
	NotifyLead(ctx context.Context, lead Lead) error
}

// Recorder receives intake metrics.
type Recorder interface {
	ObserveIntake(kind, outcome string)
	ObserveSink(sink string, elapsed time.Duration, err error)
	ObserveNotifyFailure(kind string)
}

// Handler serves the booking and fleet intake endpoints.
type Handler struct {
	sink       sink.Sink
	logger     *logging.Logger
	notifier   Notifier
	metrics    Recorder
	now        func() time.Time
	loc        *time.Location
	newID      func() string
	bookingTbl string
	fleetTbl   string
}

// Option configures a Handler.
type Option func(*Handler)

func WithNotifier(n Notifier) Option { return func(h *Handler) { h.notifier = n } }

func WithMetrics(r Recorder) Option { return func(h *Handler) { h.metrics = r } }

func WithClock(now func() time.Time) Option { return func(h *Handler) { h.now = now } }

// WithLocation sets the business time zone used for the not-in-the-past rule.
func WithLocation(loc *time.Location) Option { return func(h *Handler) { h.loc = loc } }

func WithIDGenerator(fn func() string) Option { return func(h *Handler) { h.newID = fn } }

// WithTables overrides the destination table names; blanks keep the defaults.
func WithTables(bookings, fleet string) Option {
	return func(h *Handler) {
		if bookings != "" {
			h.bookingTbl = bookings
		}
		if fleet != "" {
			h.fleetTbl = fleet
		}
	}
}

// NewHandler creates the intake handler.
func NewHandler(s sink.Sink, logger *logging.Logger, opts ...Option) *Handler {
	if s == nil {
		panic("leads: sink required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	h := &Handler{
		sink:       s,
		logger:     logger,
		now:        time.Now,
		loc:        time.UTC,
		newID:      func() string { return uuid.New().String() },
		bookingTbl: sink.TableBookings,
		fleetTbl:   sink.TableFleet,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type errorResponse struct {
	OK      bool            `json:"ok"`
	Error   string          `json:"error,omitempty"`
	Errors  []string        `json:"errors,omitempty"`
	Details json.RawMessage `json:"details,omitempty"`
}

// BookingResponse is the 200 body of POST /api/bookings.
type BookingResponse struct {
	OK        bool            `json:"ok"`
	BookingID string          `json:"booking_id"`
	Result    json.RawMessage `json:"result,omitempty"`
}

// FleetResponse is the 200 body of POST /api/fleet.
type FleetResponse struct {
	OK        bool            `json:"ok"`
	EnquiryID string          `json:"enquiry_id"`
	Result    json.RawMessage `json:"result,omitempty"`
}

// Bookings handles POST /api/bookings.
func (h *Handler) Bookings(w http.ResponseWriter, r *http.Request) {
	defer h.recoverPanic(w, KindBooking)
	if !allowPost(w, r) {
		return
	}

	var req BookingRequest
	if err := decodeBody(r, &req); err != nil {
		h.reject(w, KindBooking, ValidationErrors{err.Error()})
		return
	}
	now := h.now()
	b, err := ValidateBooking(req, now, h.loc)
	if err != nil {
		h.reject(w, KindBooking, err)
		return
	}
	b.ID = h.newID()
	b.CreatedAt = now

	result, ok := h.forward(r.Context(), w, KindBooking, h.bookingTbl, b.Record())
	if !ok {
		return
	}
	h.logger.Info("booking accepted", "booking_id", b.ID, "service", b.Service, "source", b.Source)
	h.notify(r.Context(), b.Lead())
	writeJSON(w, http.StatusOK, BookingResponse{OK: true, BookingID: b.ID, Result: result})
}

// FleetEnquiries handles POST /api/fleet.
func (h *Handler) FleetEnquiries(w http.ResponseWriter, r *http.Request) {
	defer h.recoverPanic(w, KindFleet)
	if !allowPost(w, r) {
		return
	}

	var req FleetRequest
	if err := decodeBody(r, &req); err != nil {
		h.reject(w, KindFleet, ValidationErrors{err.Error()})
		return
	}
	f, err := ValidateFleet(req)
	if err != nil {
		h.reject(w, KindFleet, err)
		return
	}
	f.ID = h.newID()
	f.SubmittedAt = h.now()

	result, ok := h.forward(r.Context(), w, KindFleet, h.fleetTbl, f.Record())
	if !ok {
		return
	}
	h.logger.Info("fleet enquiry accepted", "enquiry_id", f.ID, "company", f.CompanyName)
	h.notify(r.Context(), f.Lead())
	writeJSON(w, http.StatusOK, FleetResponse{OK: true, EnquiryID: f.ID, Result: result})
}

func allowPost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodPost {
		return true
	}
	w.Header().Set("Allow", http.MethodPost)
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
	return false
}

// decodeBody accepts a JSON object, or a JSON string whose content is one.
func decodeBody(r *http.Request, dst any) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil || len(data) > maxBodyBytes {
		return ErrInvalidBody
	}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return ErrInvalidBody
		}
		data = bytes.TrimSpace([]byte(inner))
	}
	if len(data) == 0 || data[0] != '{' {
		return ErrInvalidBody
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return ErrInvalidBody
	}
	return nil
}

func (h *Handler) reject(w http.ResponseWriter, kind Kind, err error) {
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		verrs = ValidationErrors{err.Error()}
	}
	h.observe(kind, "invalid")
	h.logger.Debug("submission rejected", "kind", kind, "errors", []string(verrs))
	writeJSON(w, http.StatusBadRequest, errorResponse{Errors: verrs})
}

func (h *Handler) forward(ctx context.Context, w http.ResponseWriter, kind Kind, table string, rec sink.Record) (json.RawMessage, bool) {
	start := time.Now()
	result, err := h.sink.Append(ctx, table, rec)
	if h.metrics != nil {
		h.metrics.ObserveSink(h.sink.Name(), time.Since(start), err)
	}
	if err != nil {
		h.logger.Error("sink write failed", "kind", kind, "sink", h.sink.Name(), "id", rec.ID(), "error", err)
		h.observe(kind, "sink_error")
		resp := errorResponse{Error: "Sink write failed"}
		var serr *sink.Error
		if errors.As(err, &serr) {
			resp.Details = serr.Details
		}
		if resp.Details == nil {
			resp.Details, _ = json.Marshal(map[string]string{"message": err.Error()})
		}
		writeJSON(w, http.StatusBadGateway, resp)
		return nil, false
	}
	h.observe(kind, "ok")
	return result, true
}

func (h *Handler) observe(kind Kind, outcome string) {
	if h.metrics != nil {
		h.metrics.ObserveIntake(string(kind), outcome)
	}
}

func (h *Handler) notify(ctx context.Context, lead Lead) {
	if h.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := h.notifier.NotifyLead(ctx, lead); err != nil {
		h.logger.Warn("lead notification failed", "kind", lead.Kind, "id", lead.ID, "error", err)
		if h.metrics != nil {
			h.metrics.ObserveNotifyFailure(string(lead.Kind))
		}
	}
}

func (h *Handler) recoverPanic(w http.ResponseWriter, kind Kind) {
	rec := recover()
	if rec == nil {
		return
	}
	msg := fmt.Sprint(rec)
	if err, ok := rec.(error); ok {
		msg = err.Error()
	}
	h.logger.Error("intake handler panic", "kind", kind, "panic", msg)
	h.observe(kind, "panic")
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
