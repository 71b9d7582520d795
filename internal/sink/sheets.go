package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/wolfman30/nomad-detailing/pkg/logging"
)

// GoogleSheets appends rows through a Google Apps Script web app that owns
// the workbook. The token travels in the body and in both auth headers since
// Apps Script deployments differ in which one they read.
type GoogleSheets struct {
	url    string
	token  string
	client *http.Client
	logger *logging.Logger
}

// GoogleSheetsConfig configures the Apps Script endpoint.
type GoogleSheetsConfig struct {
	WebAppURL string
	Token     string
}

// NewGoogleSheets builds the sink. A nil client gets DefaultTimeout.
func NewGoogleSheets(cfg GoogleSheetsConfig, client *http.Client, logger *logging.Logger) *GoogleSheets {
	if logger == nil {
		logger = logging.Default()
	}
	return &GoogleSheets{
		url:    strings.TrimSpace(cfg.WebAppURL),
		token:  strings.TrimSpace(cfg.Token),
		client: defaultClient(client),
		logger: logger,
	}
}

// Name identifies the sink in results and metrics.
func (s *GoogleSheets) Name() string { return "sheets" }

type sheetsPayload struct {
	Token string `json:"token"`
	Sheet string `json:"sheet"`
	Data  Record `json:"data"`
}

// Append writes rec as a new row of the sheet named table.
func (s *GoogleSheets) Append(ctx context.Context, table string, rec Record) (raw json.RawMessage, err error) {
	if s.url == "" {
		return nil, &Error{Sink: s.Name(), Err: fmt.Errorf("%w: GOOGLE_SHEETS_WEBAPP_URL missing", ErrNotConfigured)}
	}
	ctx, span := startSpan(ctx, s.Name(), table)
	defer func() { endSpan(span, err) }()

	headers := map[string]string{}
	if s.token != "" {
		headers["X-Api-Token"] = s.token
		headers["Authorization"] = "Bearer " + s.token
	}

	status, body, err := postJSON(ctx, s.client, s.url, headers, sheetsPayload{Token: s.token, Sheet: table, Data: rec})
	if err != nil {
		return nil, &Error{Sink: s.Name(), Status: status, Err: err}
	}
	if status < 200 || status > 299 {
		s.logger.Error("sheets webapp returned error status", "status", status, "sheet", table)
		return nil, &Error{Sink: s.Name(), Status: status, Details: asDetails(body)}
	}

	result := sheetsResult(body)
	var flag struct {
		OK *bool `json:"ok"`
	}
	if json.Unmarshal(result, &flag) == nil && flag.OK != nil && !*flag.OK {
		return nil, &Error{Sink: s.Name(), Status: status, Details: result}
	}
	s.logger.Debug("sheets row appended", "sheet", table, "id", rec.ID())
	return result, nil
}

// sheetsResult keeps JSON replies and turns a plain "OK" into {"ok":true,"raw":...}.
func sheetsResult(body []byte) json.RawMessage {
	if json.Valid(body) && len(strings.TrimSpace(string(body))) > 0 {
		return json.RawMessage(body)
	}
	wrapped, _ := json.Marshal(struct {
		OK  bool   `json:"ok"`
		Raw string `json:"raw"`
	}{OK: true, Raw: string(body)})
	return wrapped
}
