package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/wolfman30/nomad-detailing/pkg/logging"
)

// DefaultAirtableBaseURL is the public REST endpoint.
const DefaultAirtableBaseURL = "https://api.airtable.com/v0"

// Airtable creates one record per lead in an Airtable base.
type Airtable struct {
	baseURL string
	baseID  string
	token   string
	client  *http.Client
	logger  *logging.Logger
}

// AirtableConfig configures the base and credentials.
type AirtableConfig struct {
	BaseURL string
	BaseID  string
	Token   string
}

// NewAirtable builds the sink. A nil client gets DefaultTimeout.
func NewAirtable(cfg AirtableConfig, client *http.Client, logger *logging.Logger) *Airtable {
	if logger == nil {
		logger = logging.Default()
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultAirtableBaseURL
	}
	return &Airtable{
		baseURL: base,
		baseID:  strings.TrimSpace(cfg.BaseID),
		token:   strings.TrimSpace(cfg.Token),
		client:  defaultClient(client),
		logger:  logger,
	}
}

// Name identifies the sink in results and metrics.
func (a *Airtable) Name() string { return "airtable" }

// Append creates a record in table. Blank text columns are left out because
// Airtable rejects "" for typed fields.
func (a *Airtable) Append(ctx context.Context, table string, rec Record) (raw json.RawMessage, err error) {
	if a.token == "" || a.baseID == "" {
		return nil, &Error{Sink: a.Name(), Err: fmt.Errorf("%w: AIRTABLE_TOKEN and AIRTABLE_BASE_ID required", ErrNotConfigured)}
	}
	ctx, span := startSpan(ctx, a.Name(), table)
	defer func() { endSpan(span, err) }()

	endpoint := a.baseURL + "/" + url.PathEscape(a.baseID) + "/" + url.PathEscape(table)
	headers := map[string]string{"Authorization": "Bearer " + a.token}
	payload := map[string]any{"fields": rec.withoutBlanks()}

	status, body, err := postJSON(ctx, a.client, endpoint, headers, payload)
	if err != nil {
		return nil, &Error{Sink: a.Name(), Status: status, Err: err}
	}
	if status < 200 || status > 299 {
		a.logger.Error("airtable returned error status", "status", status, "table", table)
		return nil, &Error{Sink: a.Name(), Status: status, Details: asDetails(body)}
	}
	if !json.Valid(body) {
		return nil, &Error{Sink: a.Name(), Status: status, Details: asDetails(body), Err: fmt.Errorf("unexpected non-JSON response")}
	}
	a.logger.Debug("airtable record created", "table", table, "id", rec.ID())
	return json.RawMessage(body), nil
}
