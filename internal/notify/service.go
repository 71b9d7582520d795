package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/wolfman30/nomad-detailing/internal/leads"
	"github.com/wolfman30/nomad-detailing/pkg/logging"
)

// Service emails the business inbox when a lead is accepted.
type Service struct {
	email      EmailSender
	recipients []string
	logger     *logging.Logger
}

// NewService creates a notification service. With no sender or no
// recipients every call is a no-op.
func NewService(email EmailSender, recipients []string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	var to []string
	for _, r := range recipients {
		if r = strings.TrimSpace(r); r != "" {
			to = append(to, r)
		}
	}
	return &Service{email: email, recipients: to, logger: logger}
}

var _ leads.Notifier = (*Service)(nil)

// NotifyLead sends one email per recipient. Every recipient is attempted;
// the returned error joins the failures.
func (s *Service) NotifyLead(ctx context.Context, lead leads.Lead) error {
	if s.email == nil || len(s.recipients) == 0 {
		s.logger.Debug("notify: email not configured, skipping lead notification", "id", lead.ID)
		return nil
	}

	msg := EmailMessage{
		Subject: subjectFor(lead),
		Body:    plainBody(lead),
		HTML:    htmlBody(lead),

		ReplyTo:     strings.TrimSpace(lead.Email),
		ReplyToName: lead.Name,
		Category:    string(lead.Kind),
	}

	var errs []error
	for _, to := range s.recipients {
		msg.To = to
		if err := s.email.Send(ctx, msg); err != nil {
			s.logger.Error("notify: failed to send lead email", "error", err, "to", to, "id", lead.ID)
			errs = append(errs, err)
			continue
		}
		s.logger.Info("notify: lead email sent", "to", to, "kind", lead.Kind, "id", lead.ID)
	}
	if len(errs) > 0 {
		return fmt.Errorf("notify: %d of %d lead email(s) failed: %w", len(errs), len(s.recipients), errors.Join(errs...))
	}
	return nil
}

func subjectFor(lead leads.Lead) string {
	switch lead.Kind {
	case leads.KindFleet:
		return "New fleet enquiry - " + lead.Name
	default:
		return "New booking - " + lead.Name
	}
}

func plainBody(lead leads.Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", lead.Summary)
	fmt.Fprintf(&b, "Name: %s\n", lead.Name)
	fmt.Fprintf(&b, "WhatsApp: %s\n", lead.Phone)
	if lead.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", lead.Email)
	}
	for _, f := range lead.Fields {
		if f[1] == "" {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", f[0], f[1])
	}
	fmt.Fprintf(&b, "\nReference: %s\n", lead.ID)
	return b.String()
}

const rowHTML = `<tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>%s:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td></tr>`

func htmlBody(lead leads.Lead) string {
	var rows strings.Builder
	row := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&rows, rowHTML, html.EscapeString(label), strings.ReplaceAll(html.EscapeString(value), "\n", "<br>"))
	}
	row("Name", lead.Name)
	row("WhatsApp", lead.Phone)
	row("Email", lead.Email)
	for _, f := range lead.Fields {
		row(f[0], f[1])
	}

	return fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px;">
<h2>%s</h2>
<table style="border-collapse: collapse; margin: 20px 0;">%s</table>
<p style="color: #6b7280; font-size: 12px; margin-top: 20px;">Reference: %s</p>
</div>`, html.EscapeString(lead.Summary), rows.String(), html.EscapeString(lead.ID))
}
