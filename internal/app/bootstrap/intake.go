// Package bootstrap wires configuration into the intake components shared by
// the API server and the Lambda entry point.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/nomad-detailing/cmd/mainconfig"
	appconfig "github.com/wolfman30/nomad-detailing/internal/config"
	"github.com/wolfman30/nomad-detailing/internal/leads"
	"github.com/wolfman30/nomad-detailing/internal/notify"
	"github.com/wolfman30/nomad-detailing/internal/observability/metrics"
	"github.com/wolfman30/nomad-detailing/internal/sink"
	"github.com/wolfman30/nomad-detailing/pkg/logging"
)

// Intake bundles the intake handler with the resources it owns.
type Intake struct {
	Handler *leads.Handler
	Sink    sink.Sink
	Metrics *metrics.LeadMetrics

	closers []func()
}

// Close releases pools opened while building.
func (i *Intake) Close() {
	if i == nil {
		return
	}
	for _, c := range i.closers {
		c()
	}
}

// BuildIntake assembles sinks, notifications and metrics into a handler.
// reg may be nil to skip metrics.
func BuildIntake(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, reg prometheus.Registerer) (*Intake, error) {
	if cfg == nil {
		return nil, errors.New("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if err := cfg.ValidateIntake(); err != nil {
		return nil, err
	}

	intake := &Intake{}
	s, closers, err := BuildSink(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	intake.Sink = s
	intake.closers = closers

	opts := []leads.Option{
		leads.WithLocation(cfg.Location()),
		leads.WithTables(cfg.BookingsTable, cfg.FleetTable),
	}
	if reg != nil {
		intake.Metrics = metrics.NewLeadMetrics(reg)
		opts = append(opts, leads.WithMetrics(intake.Metrics))
	}

	sender, err := BuildEmailSender(ctx, cfg, logger)
	if err != nil {
		intake.Close()
		return nil, err
	}
	if sender != nil && len(cfg.NotifyEmailTo) > 0 {
		opts = append(opts, leads.WithNotifier(notify.NewService(sender, cfg.NotifyEmailTo, logger)))
	} else {
		logger.Info("lead notifications disabled", "email_provider", cfg.EmailProvider)
	}

	intake.Handler = leads.NewHandler(s, logger, opts...)
	logger.Info("intake configured", "sink", s.Name(), "timezone", cfg.BusinessTimezone)
	return intake, nil
}

// BuildSink creates every configured sink in SINK_PROVIDERS order and joins
// them with sink.Multi. The returned closers release any database pool.
func BuildSink(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (sink.Sink, []func(), error) {
	client := &http.Client{Timeout: cfg.SinkTimeout}
	var (
		sinks   []sink.Sink
		closers []func()
	)
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}
	for _, provider := range cfg.SinkProviders {
		switch provider {
		case appconfig.SinkSheets:
			sinks = append(sinks, sink.NewGoogleSheets(sink.GoogleSheetsConfig{
				WebAppURL: cfg.SheetsWebAppURL,
				Token:     cfg.SheetsAPIToken,
			}, client, logger))
		case appconfig.SinkAirtable:
			sinks = append(sinks, sink.NewAirtable(sink.AirtableConfig{
				BaseURL: cfg.AirtableBaseURL,
				BaseID:  cfg.AirtableBaseID,
				Token:   cfg.AirtableToken,
			}, client, logger))
		case appconfig.SinkPostgres:
			pool, err := BuildPostgresPool(ctx, cfg.DatabaseURL, logger)
			if err != nil {
				closeAll()
				return nil, nil, err
			}
			closers = append(closers, pool.Close)
			sinks = append(sinks, sink.NewPostgres(pool, logger))
		default:
			closeAll()
			return nil, nil, fmt.Errorf("bootstrap: unknown sink provider %q", provider)
		}
	}
	s := sink.Multi(sinks...)
	if s == nil {
		return nil, nil, errors.New("bootstrap: no sink configured")
	}
	return s, closers, nil
}

// BuildPostgresPool opens and pings a pgx pool.
func BuildPostgresPool(ctx context.Context, databaseURL string, logger *logging.Logger) (*pgxpool.Pool, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, errors.New("bootstrap: DATABASE_URL is empty")
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap: ping postgres: %w", err)
	}
	logger.Info("postgres archive sink connected")
	return pool, nil
}

// BuildEmailSender returns the configured sender, or nil when email is off.
func BuildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (notify.EmailSender, error) {
	switch cfg.EmailProvider {
	case "", appconfig.EmailNone:
		return nil, nil
	case appconfig.EmailStub:
		return notify.NewStubEmailSender(logger), nil
	case appconfig.EmailSendGrid:
		sender, err := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: sendgrid: %w", err)
		}
		return sender, nil
	case appconfig.EmailSES:
		client, err := mainconfig.NewSESClient(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: %w", err)
		}
		sender, err := notify.NewSESSender(client, notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: ses: %w", err)
		}
		return sender, nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown email provider %q", cfg.EmailProvider)
	}
}
