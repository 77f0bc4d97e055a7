package notify

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/wolfman30/mastry-api/internal/leads"
	"github.com/wolfman30/mastry-api/pkg/logging"
)

// LeadNotifier emails the sales inbox whenever a lead is stored.
type LeadNotifier struct {
	email     EmailSender
	recipient string
	logger    *logging.Logger
}

// NewLeadNotifier returns nil when there is no sender or recipient, which
// the intake handler treats as notifications disabled.
func NewLeadNotifier(email EmailSender, recipient string, logger *logging.Logger) *LeadNotifier {
	recipient = strings.TrimSpace(recipient)
	if email == nil || recipient == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &LeadNotifier{email: email, recipient: recipient, logger: logger}
}

// NotifyNewLead sends one email describing lead.
func (n *LeadNotifier) NotifyNewLead(ctx context.Context, lead *leads.Lead) error {
	if n == nil || lead == nil {
		return nil
	}
	msg := EmailMessage{
		To:      n.recipient,
		ReplyTo: lead.Email,
		Subject: fmt.Sprintf("New lead: %s", truncate(lead.Name, 80)),
		Body:    leadText(lead),
		HTML:    leadHTML(lead),
	}
	if err := n.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: new lead %s: %w", lead.ID, err)
	}
	n.logger.Info("notify: lead email sent", "lead_id", lead.ID, "to", n.recipient)
	return nil
}

type leadField struct {
	label string
	value string
}

func leadFields(lead *leads.Lead) []leadField {
	fields := []leadField{
		{"Name", lead.Name},
		{"Email", lead.Email},
	}
	for _, f := range []struct {
		label string
		value *string
	}{
		{"Company", lead.Company},
		{"Country", lead.Country},
		{"Message", lead.Message},
	} {
		if f.value != nil && *f.value != "" {
			fields = append(fields, leadField{f.label, *f.value})
		}
	}
	if !lead.CreatedAt.IsZero() {
		fields = append(fields, leadField{"Received", lead.CreatedAt.UTC().Format(time.RFC1123)})
	}
	if lead.ID != "" {
		fields = append(fields, leadField{"Lead ID", lead.ID})
	}
	return fields
}

func leadText(lead *leads.Lead) string {
	var b strings.Builder
	b.WriteString("A new lead was submitted on the website.\n\n")
	for _, f := range leadFields(lead) {
		fmt.Fprintf(&b, "%s: %s\n", f.label, f.value)
	}
	return b.String()
}

func leadHTML(lead *leads.Lead) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: sans-serif; max-width: 600px;">`)
	b.WriteString(`<h2>New lead</h2><table style="border-collapse: collapse;">`)
	for _, f := range leadFields(lead) {
		fmt.Fprintf(&b, `<tr><td style="padding: 6px;"><strong>%s:</strong></td><td style="padding: 6px;">%s</td></tr>`,
			f.label, html.EscapeString(f.value))
	}
	b.WriteString(`</table></div>`)
	return b.String()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

var _ leads.Notifier = (*LeadNotifier)(nil)
