// Package sink forwards accepted lead records to the business's spreadsheet,
// CRM or archive. The intake handlers treat a sink's answer as authoritative.
package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("nomad.internal.sink")

// Destination tables. Google Sheets tab names double as Airtable table names
// unless overridden in config.
const (
	TableBookings = "consumer_bookings"
	TableFleet    = "corporate_fleet_enquiries"
)

// DefaultTimeout bounds a single sink call.
const DefaultTimeout = 10 * time.Second

// Sink appends one record to a destination table and returns the
// destination's own response body.
type Sink interface {
	Name() string
	Append(ctx context.Context, table string, rec Record) (json.RawMessage, error)
}

// Error is a failed append. Details carries the destination's response so
// it can be surfaced to the caller.
type Error struct {
	Sink    string
	Status  int
	Details json.RawMessage
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("sink: %s write failed: %v", e.Sink, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("sink: %s write failed (%d)", e.Sink, e.Status)
	default:
		return fmt.Sprintf("sink: %s write failed", e.Sink)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// ErrNotConfigured is returned when a sink is missing its endpoint or credentials.
var ErrNotConfigured = errors.New("sink: not configured")

const maxResponseBytes = 1 << 20

func startSpan(ctx context.Context, name, table string) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "sink."+name+".append")
	span.SetAttributes(
		attribute.String("nomad.sink", name),
		attribute.String("nomad.table", table),
	)
	return ctx, span
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// postJSON sends payload and returns the status with the (bounded) body.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload any) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

// asDetails keeps JSON bodies as-is and wraps anything else as {"raw": text}.
func asDetails(body []byte) json.RawMessage {
	if json.Valid(body) && len(bytes.TrimSpace(body)) > 0 {
		return json.RawMessage(body)
	}
	wrapped, _ := json.Marshal(map[string]string{"raw": string(body)})
	return wrapped
}

func defaultClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: DefaultTimeout}
}
