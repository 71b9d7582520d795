package wizard

import (
	"context"
	"slices"
	"sync"

	"github.com/wolfman30/nomad-detailing/internal/booking"
	"github.com/wolfman30/nomad-detailing/pkg/logging"
)

// FleetSubmitter posts a corporate enquiry and returns its id.
type FleetSubmitter interface {
	SubmitFleet(ctx context.Context, draft booking.FleetEnquiryDraft) (string, error)
}

const genericFleetFailure = "Enquiry submission failed. Please try again."

// FleetForm is the single-page corporate enquiry. It shares the wizard's
// validation and double-submit rules but has no steps.
type FleetForm struct {
	mu         sync.Mutex
	draft      booking.FleetEnquiryDraft
	errs       []string
	submitting bool
	enquiryID  string

	submitter FleetSubmitter
	logger    *logging.Logger
}

// NewFleetForm returns an empty form bound to submitter.
func NewFleetForm(submitter FleetSubmitter, logger *logging.Logger) *FleetForm {
	if logger == nil {
		logger = logging.Default()
	}
	return &FleetForm{submitter: submitter, logger: logger}
}

// Update edits the form; ignored while a submission is in flight.
func (f *FleetForm) Update(fn func(d *booking.FleetEnquiryDraft)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitting {
		return ErrSubmitInFlight
	}
	fn(&f.draft)
	return nil
}

// Draft returns a copy of the current values.
func (f *FleetForm) Draft() booking.FleetEnquiryDraft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// Errors returns the messages from the last failed Submit.
func (f *FleetForm) Errors() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.errs)
}

// Submitted reports whether the last Submit succeeded.
func (f *FleetForm) Submitted() bool {
	return f.EnquiryID() != ""
}

// EnquiryID is the server-issued id of the last successful enquiry.
func (f *FleetForm) EnquiryID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enquiryID
}

// Submitting reports whether a submission is in flight.
func (f *FleetForm) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Submit validates and posts the enquiry. On success the form is reset so a
// second enquiry can be written.
func (f *FleetForm) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return ErrSubmitInFlight
	}
	if f.submitter == nil {
		f.mu.Unlock()
		return ErrNoSubmitter
	}
	if msgs := ValidateFleet(f.draft); len(msgs) > 0 {
		f.errs = msgs
		f.mu.Unlock()
		return &GuardError{Step: "fleet", Messages: msgs}
	}
	f.submitting = true
	f.errs = nil
	f.enquiryID = ""
	draft := f.draft
	f.mu.Unlock()

	id, err := f.submitter.SubmitFleet(ctx, draft)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	if err != nil {
		f.errs = userMessages(err, genericFleetFailure)
		f.logger.Warn("wizard: fleet enquiry submission failed", "error", err)
		return err
	}
	f.enquiryID = id
	f.draft = booking.FleetEnquiryDraft{}
	return nil
}
