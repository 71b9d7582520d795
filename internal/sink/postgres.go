package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/nomad-detailing/pkg/logging"
)

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres archives every accepted lead as JSON in lead_submissions, so the
// business keeps a copy even if the spreadsheet is edited.
type Postgres struct {
	db     rowQuerier
	logger *logging.Logger
}

// NewPostgres builds the archive sink over a pool.
func NewPostgres(pool *pgxpool.Pool, logger *logging.Logger) *Postgres {
	if pool == nil {
		panic("sink: pgx pool required")
	}
	return newPostgresWithQuerier(pool, logger)
}

func newPostgresWithQuerier(db rowQuerier, logger *logging.Logger) *Postgres {
	if logger == nil {
		logger = logging.Default()
	}
	return &Postgres{db: db, logger: logger}
}

// Name identifies the sink in results and metrics.
func (p *Postgres) Name() string { return "postgres" }

const insertSubmission = `
	INSERT INTO lead_submissions (id, table_name, lead_id, record)
	VALUES ($1, $2, $3, $4)
	RETURNING created_at
`

// Append inserts rec into the archive.
func (p *Postgres) Append(ctx context.Context, table string, rec Record) (raw json.RawMessage, err error) {
	ctx, span := startSpan(ctx, p.Name(), table)
	defer func() { endSpan(span, err) }()

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, &Error{Sink: p.Name(), Err: fmt.Errorf("marshal record: %w", err)}
	}

	id := uuid.New()
	var createdAt time.Time
	if err := p.db.QueryRow(ctx, insertSubmission, id, table, rec.ID(), data).Scan(&createdAt); err != nil {
		p.logger.Error("lead archive insert failed", "error", err, "table", table, "lead_id", rec.ID())
		return nil, &Error{Sink: p.Name(), Err: fmt.Errorf("insert failed: %w", err)}
	}

	out, _ := json.Marshal(map[string]any{
		"ok":         true,
		"id":         id.String(),
		"created_at": createdAt.UTC().Format(time.RFC3339),
	})
	return out, nil
}
