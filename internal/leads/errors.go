package leads

import (
	"errors"
	"strings"
)

// ErrInvalidBody is returned when the request body is not a JSON object.
var ErrInvalidBody = errors.New("invalid JSON body")

// ValidationErrors lists every problem found in a submission.
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	return "leads: invalid submission: " + strings.Join(v, "; ")
}

func (v ValidationErrors) orNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}
