package submission

import (
	"fmt"
	"net/http"
	"slices"
	"strings"
)

const (
	msgNetwork    = "Network error. Please try again."
	msgSinkFailed = "We couldn't save your request right now. Please try again in a moment."
	msgUnexpected = "Unexpected response from server. Please try again."
)

// RejectedError is a non-2xx or ok:false answer from the intake API.
type RejectedError struct {
	Status   int
	Messages []string
}

func newRejected(status int, env envelope) *RejectedError {
	e := &RejectedError{Status: status}
	switch {
	case len(env.Errors) > 0:
		e.Messages = slices.Clone(env.Errors)
	case status == http.StatusBadGateway:
		e.Messages = []string{msgSinkFailed}
	case env.Error != "":
		e.Messages = []string{env.Error}
	default:
		e.Messages = []string{fmt.Sprintf("Submission failed (%d). Please try again.", status)}
	}
	return e
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("submission: rejected (%d): %s", e.Status, strings.Join(e.Messages, "; "))
}

// UserMessages is what the form shows.
func (e *RejectedError) UserMessages() []string { return slices.Clone(e.Messages) }

// Retryable reports whether resubmitting the same draft may succeed.
func (e *RejectedError) Retryable() bool { return e.Status >= 500 }

// TransportError means the request never got an answer.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "submission: transport: " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) UserMessages() []string { return []string{msgNetwork} }
