package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"

	"github.com/wolfman30/nomad-detailing/internal/api/router"
	"github.com/wolfman30/nomad-detailing/internal/leads"
	"github.com/wolfman30/nomad-detailing/internal/sink"
	"github.com/wolfman30/nomad-detailing/pkg/logging"
)

type memorySink struct {
	records []sink.Record
}

func (m *memorySink) Name() string { return "memory" }

func (m *memorySink) Append(_ context.Context, _ string, rec sink.Record) (json.RawMessage, error) {
	m.records = append(m.records, rec)
	return json.RawMessage(`{"ok":true}`), nil
}

func newTestHandler() (http.Handler, *memorySink) {
	s := &memorySink{}
	logger := logging.New("error")
	return router.New(&router.Config{
		Logger:       logger,
		LeadsHandler: leads.NewHandler(s, logger),
		SinkName:     s.Name(),
	}), s
}

func event(method, path, body string) events.APIGatewayV2HTTPRequest {
	return events.APIGatewayV2HTTPRequest{
		RawPath: path,
		Body:    body,
		Headers: map[string]string{"content-type": "application/json"},
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			RequestID: "apigw-1",
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method:   method,
				Path:     path,
				SourceIP: "203.0.113.5",
			},
		},
	}
}

const fleetBody = `{"company_name":"Acme","contact_person":"Mei","whatsapp_number":"0129876543","service_frequency":"ad-hoc"}`

func TestHandleHealth(t *testing.T) {
	h, _ := newTestHandler()
	resp, err := handle(context.Background(), h, event(http.MethodGet, "/health", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if !strings.Contains(resp.Body, `"status":"ok"`) {
		t.Fatalf("unexpected body %q", resp.Body)
	}
}

func TestHandleFleetEnquiry(t *testing.T) {
	h, s := newTestHandler()
	resp, err := handle(context.Background(), h, event(http.MethodPost, "/api/fleet", fleetBody))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, resp.Body)
	}
	if resp.Headers["content-type"] != "application/json" {
		t.Fatalf("expected JSON content type, got %q", resp.Headers["content-type"])
	}
	if len(s.records) != 1 {
		t.Fatalf("expected one record, got %d", len(s.records))
	}
}

func TestHandleBase64Body(t *testing.T) {
	h, s := newTestHandler()
	evt := event(http.MethodPost, "/api/fleet", base64.StdEncoding.EncodeToString([]byte(fleetBody)))
	evt.IsBase64Encoded = true

	resp, err := handle(context.Background(), h, evt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK || len(s.records) != 1 {
		t.Fatalf("expected decoded body to be accepted, got %d", resp.StatusCode)
	}
}

func TestHandleBadBase64(t *testing.T) {
	h, _ := newTestHandler()
	evt := event(http.MethodPost, "/api/fleet", "%%%")
	evt.IsBase64Encoded = true

	resp, _ := handle(context.Background(), h, evt)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestHandleRejectsNonPost(t *testing.T) {
	h, _ := newTestHandler()
	resp, err := handle(context.Background(), h, event(http.MethodGet, "/api/bookings", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected status %d, got %d", http.StatusMethodNotAllowed, resp.StatusCode)
	}
	if resp.Headers["allow"] != "POST" {
		t.Fatalf("expected Allow header, got %q", resp.Headers["allow"])
	}
}

func TestHandlePreflight(t *testing.T) {
	h, _ := newTestHandler()
	resp, _ := handle(context.Background(), h, event(http.MethodOptions, "/api/bookings", ""))
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if resp.Headers["access-control-allow-methods"] != "POST, OPTIONS" {
		t.Fatalf("unexpected allow methods %q", resp.Headers["access-control-allow-methods"])
	}
}

func TestHandleUnknownPath(t *testing.T) {
	h, _ := newTestHandler()
	resp, _ := handle(context.Background(), h, event(http.MethodPost, "/webhooks/unknown", "{}"))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
