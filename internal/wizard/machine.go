// Package wizard is the booking flow as an explicit state machine:
// category → service → [variant] → vehicle → location → contact → done.
// It owns transitions and guards only; rendering and navigation are left to
// the caller, which receives Effects describing what to do outside the wizard.
package wizard

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/wolfman30/nomad-detailing/internal/booking"
	"github.com/wolfman30/nomad-detailing/internal/catalog"
	"github.com/wolfman30/nomad-detailing/internal/drafts"
	"github.com/wolfman30/nomad-detailing/pkg/logging"
)

// EffectKind names a side effect the caller must carry out.
type EffectKind int

const (
	EffectNone EffectKind = iota
	// EffectFleet hands the user over to the corporate fleet form.
	EffectFleet
	// EffectExternal opens Target (a WhatsApp deep link) without leaving the wizard.
	EffectExternal
	// EffectExit leaves the wizard for the page named by Target.
	EffectExit
	// EffectScrollTo scrolls to the element id in Target once Delay has passed.
	EffectScrollTo
	// EffectNavigate opens the page named by Target; the draft has been saved.
	EffectNavigate
)

// Effect is returned by transitions that reach outside the wizard.
type Effect struct {
	Kind   EffectKind
	Target string
	Delay  time.Duration
}

// None reports whether the caller has nothing to do.
func (e Effect) None() bool { return e.Kind == EffectNone }

const (
	// DefaultEnquiryURL is where enquiry-only services are routed.
	DefaultEnquiryURL = "https://wa.me/60189877906?text=Hi%20Nomad%2C%20I%27d%20like%20to%20enquire%20about%20Maintenance%20Plans."

	// FleetPage, HomePage are navigation targets used in effects.
	FleetPage = "fleet"
	HomePage  = "home"

	// ConsentAnchor is the element the wizard returns to after a legal detour.
	ConsentAnchor = "booking-consent"

	restoreScrollDelay = 50 * time.Millisecond
)

// Submitter posts a validated booking and returns the server-issued id.
type Submitter interface {
	SubmitBooking(ctx context.Context, draft booking.BookingDraft, preset booking.Preset) (string, error)
}

// Machine is one wizard instance. It is safe for concurrent use; Submit
// releases the lock while the request is in flight and rejects re-entry.
type Machine struct {
	mu sync.Mutex

	step   booking.Step
	draft  booking.BookingDraft
	preset booking.Preset

	errs       []string
	submitting bool
	bookingID  string

	store      *drafts.Store
	submitter  Submitter
	now        func() time.Time
	loc        *time.Location
	enquiryURL string
	logger     *logging.Logger
}

// Option configures a Machine at mount time.
type Option func(*Machine)

// WithDraftStore enables restore-on-mount and LeaveForLegal.
func WithDraftStore(store *drafts.Store) Option {
	return func(m *Machine) { m.store = store }
}

// WithSubmitter sets the backend client used by Submit.
func WithSubmitter(s Submitter) Option {
	return func(m *Machine) { m.submitter = s }
}

// WithClock overrides the clock used for the not-in-the-past date rule.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithLocation sets the business time zone for date checks.
func WithLocation(loc *time.Location) Option {
	return func(m *Machine) { m.loc = loc }
}

// WithEnquiryURL overrides the WhatsApp link for enquiry-only services.
func WithEnquiryURL(url string) Option {
	return func(m *Machine) { m.enquiryURL = url }
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(m *Machine) { m.logger = logger }
}

// Mount creates the wizard. A saved draft wins over the preset and is
// consumed; otherwise the preset decides the starting step.
func Mount(ctx context.Context, preset booking.Preset, opts ...Option) (*Machine, Effect) {
	m := &Machine{
		step:       booking.StepCategory,
		now:        time.Now,
		loc:        time.UTC,
		enquiryURL: DefaultEnquiryURL,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = logging.Default()
	}
	m.preset = effectivePreset(preset)
	if m.preset != preset {
		m.logger.Debug("wizard: preset adjusted", "requested", preset, "applied", m.preset)
	}

	if m.store != nil {
		if snap, ok := m.store.Read(ctx); ok {
			return m, m.restore(ctx, snap)
		}
	}
	return m, m.applyPreset()
}

func (m *Machine) restore(ctx context.Context, snap drafts.Snapshot) Effect {
	m.step = snap.Step
	m.draft = snap.Booking
	m.draft.ConsentGiven = snap.Consent
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("wizard: failed to clear restored draft", "error", err)
	}
	m.logger.Debug("wizard: draft restored", "step", snap.Step, "saved_at", snap.SavedAt)
	if snap.ReturnAnchorID == "" {
		return Effect{}
	}
	return Effect{Kind: EffectScrollTo, Target: snap.ReturnAnchorID, Delay: restoreScrollDelay}
}

// effectivePreset drops the parts of p the wizard cannot honour, so the
// lead's source names the entry the customer actually got.
func effectivePreset(p booking.Preset) booking.Preset {
	if p.Category == catalog.CategoryCorporate {
		return p
	}
	var out booking.Preset
	if p.Category.Bookable() {
		out.Category = p.Category
	}
	if p.Service == "" {
		return out
	}
	svc, svcCategory, ok := catalog.FindService(p.Service)
	if !ok || (out.Category != catalog.CategoryNone && out.Category != svcCategory) {
		return out
	}
	out.Category, out.Service = svcCategory, svc.Key
	if svc.RequiresVariant && catalog.Contains(catalog.VariantKeys(svc.Key), p.Variant) {
		out.Variant = p.Variant
	}
	return out
}

func (m *Machine) applyPreset() Effect {
	p := m.preset
	if p.Category == catalog.CategoryCorporate {
		return Effect{Kind: EffectFleet, Target: FleetPage}
	}

	if p.Service != "" {
		svc, _ := catalog.LookupService(p.Category, p.Service)
		m.draft.Category = p.Category
		m.draft.Service = svc.Key
		if svc.EnquiryOnly || (svc.RequiresVariant && p.Variant == "") {
			m.step = booking.StepService
			return Effect{}
		}
		m.draft.Variant = p.Variant
		m.step = booking.StepVehicle
		return Effect{}
	}

	if p.Category != catalog.CategoryNone {
		m.draft.Category = p.Category
		m.step = booking.StepService
		return Effect{}
	}
	m.step = booking.StepCategory
	return Effect{}
}

// Step returns the current state.
func (m *Machine) Step() booking.Step {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step
}

// Draft returns a copy of the field values.
func (m *Machine) Draft() booking.BookingDraft {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft
}

// Preset returns the part of the mount preset that was applied.
func (m *Machine) Preset() booking.Preset {
	return m.preset
}

// Errors returns the messages from the last failed Submit.
func (m *Machine) Errors() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.errs)
}

// Submitting reports whether a submission is in flight.
func (m *Machine) Submitting() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submitting
}

// BookingID is the server-issued id once the wizard is done.
func (m *Machine) BookingID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bookingID
}

var progressIndex = map[booking.Step]int{
	booking.StepCategory: 0,
	booking.StepService:  0,
	booking.StepVehicle:  1,
	booking.StepLocation: 2,
	booking.StepContact:  3,
	booking.StepDone:     4,
}

// ActiveIndex is the zero-based progress indicator position.
func (m *Machine) ActiveIndex() int {
	return progressIndex[m.Step()]
}

// AwaitingVariant reports whether the inline variant choice is open.
func (m *Machine) AwaitingVariant() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step != booking.StepService {
		return false
	}
	svc, ok := catalog.LookupService(m.draft.Category, m.draft.Service)
	return ok && svc.RequiresVariant && m.draft.Variant == ""
}

// Guard returns the messages blocking step with the current values.
func (m *Machine) Guard(step booking.Step) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.guardLocked(step)
}

func (m *Machine) guardLocked(step booking.Step) []string {
	g, ok := guards[step]
	if !ok {
		return nil
	}
	return g(m.draft, m.now(), m.loc)
}

// CanContinue reports whether the current step's guard holds.
func (m *Machine) CanContinue() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step == booking.StepDone {
		return false
	}
	return len(m.guardLocked(m.step)) == 0
}

// SelectCategory picks a catalog and moves on to service. Corporate hands
// over to the fleet form instead.
func (m *Machine) SelectCategory(c catalog.Category) (Effect, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.submitting {
		return Effect{}, ErrSubmitInFlight
	}
	if m.step != booking.StepCategory {
		return Effect{}, ErrWrongStep
	}
	if c == catalog.CategoryCorporate {
		return Effect{Kind: EffectFleet, Target: FleetPage}, nil
	}
	if !c.Bookable() {
		return Effect{}, ErrUnknownOption
	}
	if m.draft.Category != c {
		m.draft.Service = ""
		m.draft.Variant = ""
	}
	m.draft.Category = c
	m.step = booking.StepService
	return Effect{}, nil
}

// SelectService records the service. Plain services advance to vehicle;
// variant-requiring ones open the variant choice; enquiry-only ones wait for
// GoNext to hand off to WhatsApp.
func (m *Machine) SelectService(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.submitting {
		return ErrSubmitInFlight
	}
	if m.step != booking.StepService {
		return ErrWrongStep
	}
	svc, ok := catalog.LookupService(m.draft.Category, key)
	if !ok {
		return ErrUnknownOption
	}
	if m.draft.Service != svc.Key {
		m.draft.Variant = ""
	}
	m.draft.Service = svc.Key
	if svc.RequiresVariant || svc.EnquiryOnly {
		return nil
	}
	m.step = booking.StepVehicle
	return nil
}

// SelectVariant completes a variant-requiring service and moves to vehicle.
func (m *Machine) SelectVariant(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.submitting {
		return ErrSubmitInFlight
	}
	if m.step != booking.StepService {
		return ErrWrongStep
	}
	svc, ok := catalog.LookupService(m.draft.Category, m.draft.Service)
	if !ok || !svc.RequiresVariant {
		return ErrWrongStep
	}
	if !catalog.Contains(catalog.VariantKeys(svc.Key), key) {
		return ErrUnknownOption
	}
	m.draft.Variant = key
	m.step = booking.StepVehicle
	return nil
}

// Update edits field values. Category, service and variant belong to the
// Select operations and are left untouched.
func (m *Machine) Update(fn func(d *booking.BookingDraft)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.submitting {
		return ErrSubmitInFlight
	}
	if m.step == booking.StepDone {
		return ErrWrongStep
	}
	d := m.draft
	fn(&d)
	d.Category, d.Service, d.Variant = m.draft.Category, m.draft.Service, m.draft.Variant
	m.draft = d
	return nil
}

// SetConsent ticks or clears the privacy/terms checkbox.
func (m *Machine) SetConsent(given bool) error {
	return m.Update(func(d *booking.BookingDraft) { d.ConsentGiven = given })
}

// GoNext advances one step if the current guard holds.
func (m *Machine) GoNext() (Effect, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.submitting {
		return Effect{}, ErrSubmitInFlight
	}
	switch m.step {
	case booking.StepContact:
		return Effect{}, ErrSubmitRequired
	case booking.StepDone:
		return Effect{}, ErrWrongStep
	case booking.StepService:
		if svc, ok := catalog.LookupService(m.draft.Category, m.draft.Service); ok && svc.EnquiryOnly {
			return Effect{Kind: EffectExternal, Target: m.enquiryURL}, nil
		}
	}
	if msgs := m.guardLocked(m.step); len(msgs) > 0 {
		return Effect{}, &GuardError{Step: m.step, Messages: msgs}
	}
	m.step = nextStep(m.step)
	return Effect{}, nil
}

// GoBack returns to the previous step without checks. Leaving service when
// the wizard was opened for a category exits to the home page instead.
func (m *Machine) GoBack() Effect {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.submitting {
		return Effect{}
	}
	switch m.step {
	case booking.StepCategory, booking.StepDone:
		return Effect{}
	case booking.StepService:
		if m.preset.CategoryOnly() {
			return Effect{Kind: EffectExit, Target: HomePage}
		}
	}
	m.step = prevStep(m.step)
	return Effect{}
}

func nextStep(s booking.Step) booking.Step {
	i := slices.Index(booking.Steps, s)
	if i < 0 || i == len(booking.Steps)-1 {
		return s
	}
	return booking.Steps[i+1]
}

func prevStep(s booking.Step) booking.Step {
	i := slices.Index(booking.Steps, s)
	if i <= 0 {
		return s
	}
	return booking.Steps[i-1]
}

// Submit validates everything and posts the booking. Failures keep the
// wizard on contact with messages in Errors; the draft is never lost.
func (m *Machine) Submit(ctx context.Context) error {
	m.mu.Lock()
	if m.submitting {
		m.mu.Unlock()
		return ErrSubmitInFlight
	}
	if m.step != booking.StepContact {
		m.mu.Unlock()
		return ErrWrongStep
	}
	if m.submitter == nil {
		m.mu.Unlock()
		return ErrNoSubmitter
	}
	if msgs := validateForSubmit(m.draft, m.now(), m.loc); len(msgs) > 0 {
		m.errs = msgs
		m.mu.Unlock()
		return &GuardError{Step: booking.StepContact, Messages: msgs}
	}
	m.submitting = true
	m.errs = nil
	draft, preset := m.draft, m.preset
	m.mu.Unlock()

	id, err := m.submitter.SubmitBooking(ctx, draft, preset)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitting = false
	if err != nil {
		m.errs = userMessages(err, genericSubmitFailure)
		m.logger.Warn("wizard: booking submission failed", "error", err)
		return err
	}
	m.bookingID = id
	m.step = booking.StepDone
	m.draft = booking.BookingDraft{}
	if m.store != nil {
		if err := m.store.Clear(ctx); err != nil {
			m.logger.Warn("wizard: failed to clear draft after submit", "error", err)
		}
	}
	return nil
}

// LeaveForLegal saves the draft and return point before the caller opens a
// legal page. The page's back action returns here via drafts.Store.Return.
// A finished booking leaves no draft behind; only the return point is kept.
func (m *Machine) LeaveForLegal(ctx context.Context, page, anchorID string) (Effect, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.submitting {
		return Effect{}, ErrSubmitInFlight
	}
	if m.store == nil {
		return Effect{}, ErrNoDraftStore
	}
	if anchorID == "" {
		anchorID = ConsentAnchor
	}
	if m.step != booking.StepDone {
		if err := m.store.Save(ctx, m.step, m.draft, m.draft.ConsentGiven, anchorID); err != nil {
			return Effect{}, err
		}
	}
	if err := m.store.SetReturn(ctx, drafts.DefaultReturnPage, anchorID); err != nil {
		return Effect{}, err
	}
	return Effect{Kind: EffectNavigate, Target: page}, nil
}

// Abandon discards the draft and any saved snapshot.
func (m *Machine) Abandon(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draft = booking.BookingDraft{}
	m.errs = nil
	m.step = booking.StepCategory
	if m.store == nil {
		return nil
	}
	return m.store.Clear(ctx)
}
