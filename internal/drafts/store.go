// Package drafts persists an in-progress booking across a detour away from the
// wizard (typically to read the privacy policy or terms) and records where the
// legal pages should send the user back to.
package drafts

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/wolfman30/nomad-detailing/internal/booking"
	"github.com/wolfman30/nomad-detailing/pkg/logging"
)

// Slot keys. Bump the draft version when the BookingDraft shape changes.
const (
	DraftKey        = "booking:state:v1"
	ReturnToKey     = "nav:returnTo"
	ReturnAnchorKey = "nav:returnAnchorId"

	// DefaultReturnPage is where legal pages go back to when nothing was recorded.
	DefaultReturnPage = "booking"
)

// Snapshot is the persisted wizard tuple.
type Snapshot struct {
	Step           booking.Step         `json:"step"`
	Booking        booking.BookingDraft `json:"bookingData"`
	Consent        bool                 `json:"consent"`
	ReturnAnchorID string               `json:"returnAnchorId,omitempty"`
	SavedAt        time.Time            `json:"savedAt"`
}

// ReturnPoint tells a legal page where its back button leads.
type ReturnPoint struct {
	Page     string
	AnchorID string
}

// Store is a typed single-slot view over a session KV.
type Store struct {
	kv     KV
	logger *logging.Logger
	now    func() time.Time
}

// Option customises a Store.
type Option func(*Store)

// WithClock overrides the savedAt clock.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used for swallowed read failures.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// NewStore binds a Store to one session's KV.
func NewStore(kv KV, opts ...Option) *Store {
	if kv == nil {
		panic("drafts: kv cannot be nil")
	}
	s := &Store{kv: kv, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.Default()
	}
	return s
}

// Save overwrites the slot with the current wizard state.
func (s *Store) Save(ctx context.Context, step booking.Step, draft booking.BookingDraft, consent bool, returnAnchor string) error {
	data, err := json.Marshal(Snapshot{
		Step:           step,
		Booking:        draft,
		Consent:        consent,
		ReturnAnchorID: strings.TrimSpace(returnAnchor),
		SavedAt:        s.now().UTC(),
	})
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, DraftKey, string(data))
}

// Read returns the saved snapshot. Missing, unreadable or malformed data all
// read as absent; the caller never sees an error.
func (s *Store) Read(ctx context.Context) (Snapshot, bool) {
	raw, ok, err := s.kv.Get(ctx, DraftKey)
	if err != nil {
		s.logger.Warn("drafts: read failed, treating as absent", "error", err)
		return Snapshot{}, false
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return Snapshot{}, false
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		s.logger.Debug("drafts: malformed snapshot ignored", "error", err)
		return Snapshot{}, false
	}
	if !snap.Step.Valid() {
		s.logger.Debug("drafts: snapshot with unknown step ignored", "step", snap.Step)
		return Snapshot{}, false
	}
	return snap, true
}

// Clear removes the slot.
func (s *Store) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, DraftKey)
}

// SetReturn records where the legal pages should return to.
func (s *Store) SetReturn(ctx context.Context, page, anchorID string) error {
	if err := s.kv.Set(ctx, ReturnToKey, strings.TrimSpace(page)); err != nil {
		return err
	}
	return s.kv.Set(ctx, ReturnAnchorKey, strings.TrimSpace(anchorID))
}

// Return reads the recorded return point, defaulting to the booking page.
func (s *Store) Return(ctx context.Context) ReturnPoint {
	rp := ReturnPoint{Page: DefaultReturnPage}
	if page, ok, err := s.kv.Get(ctx, ReturnToKey); err == nil && ok && strings.TrimSpace(page) != "" {
		rp.Page = page
	}
	if anchor, ok, err := s.kv.Get(ctx, ReturnAnchorKey); err == nil && ok {
		rp.AnchorID = anchor
	}
	return rp
}
