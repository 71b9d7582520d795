package wizard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wolfman30/nomad-detailing/internal/booking"
)

var (
	// ErrSubmitInFlight is returned while a previous submission has not resolved.
	ErrSubmitInFlight = errors.New("wizard: submission already in progress")

	// ErrWrongStep is returned when an action does not apply to the current step.
	ErrWrongStep = errors.New("wizard: action not available at this step")

	// ErrSubmitRequired is returned by GoNext on the contact step.
	ErrSubmitRequired = errors.New("wizard: contact step advances through Submit")

	// ErrUnknownOption is returned for a value outside the offered choices.
	ErrUnknownOption = errors.New("wizard: unknown option")

	// ErrNoSubmitter is returned by Submit when no backend client was configured.
	ErrNoSubmitter = errors.New("wizard: no submitter configured")

	// ErrNoDraftStore is returned by LeaveForLegal without a draft store.
	ErrNoDraftStore = errors.New("wizard: no draft store configured")
)

// GuardError lists what is missing before a step can be left.
type GuardError struct {
	Step     booking.Step
	Messages []string
}

func (e *GuardError) Error() string {
	return fmt.Sprintf("wizard: %s step incomplete: %s", e.Step, strings.Join(e.Messages, "; "))
}

// userFacing is implemented by submission errors that carry display text.
type userFacing interface {
	UserMessages() []string
}

const genericSubmitFailure = "Booking submission failed. Please try again."

func userMessages(err error, fallback string) []string {
	var uf userFacing
	if errors.As(err, &uf) {
		if msgs := uf.UserMessages(); len(msgs) > 0 {
			return msgs
		}
	}
	return []string{fallback}
}
