package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/wolfman30/leadcapture/internal/leads"
	"github.com/wolfman30/leadcapture/pkg/logging"
)

// LeadNotifier emails a summary of every new lead to a fixed recipient list.
type LeadNotifier struct {
	sender     EmailSender
	recipients []string
	location   *time.Location
	logger     *logging.Logger
}

// NewLeadNotifier creates a notifier. Blank recipients are ignored; dates in
// the email are shown in loc (UTC when nil).
func NewLeadNotifier(sender EmailSender, recipients []string, loc *time.Location, logger *logging.Logger) *LeadNotifier {
	if sender == nil {
		panic("notify: email sender required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	var to []string
	for _, r := range recipients {
		if r = strings.TrimSpace(r); r != "" {
			to = append(to, r)
		}
	}
	return &LeadNotifier{sender: sender, recipients: to, location: loc, logger: logger}
}

// NotifyNewLead sends the summary to each recipient. Every recipient is
// attempted; failures are joined.
func (n *LeadNotifier) NotifyNewLead(ctx context.Context, lead *leads.Lead) error {
	if lead == nil || len(n.recipients) == 0 {
		return nil
	}
	msg := n.render(lead)
	var errs []error
	for _, to := range n.recipients {
		msg.To = to
		if err := n.sender.Send(ctx, msg); err != nil {
			n.logger.Warn("notify: lead email failed", "lead_id", lead.ID, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (n *LeadNotifier) render(lead *leads.Lead) EmailMessage {
	rows := [][2]string{
		{"Nome", lead.Name},
		{"E-mail", lead.Email},
		{"Telefone", lead.Phone},
		{"Cargo", lead.Position},
		{"Data de nascimento", lead.BirthDate},
		{"Recebido em", lead.CreatedAt.In(n.location).Format("02/01/2006 15:04")},
	}
	for _, f := range leads.AttributionFields {
		if v := lead.Get(f); v != "" {
			rows = append(rows, [2]string{f, v})
		}
	}

	var text, htmlBody strings.Builder
	htmlBody.WriteString("<h2>Novo lead recebido</h2><table>")
	for _, row := range rows {
		fmt.Fprintf(&text, "%s: %s\n", row[0], row[1])
		fmt.Fprintf(&htmlBody, "<tr><th align=\"left\">%s</th><td>%s</td></tr>", html.EscapeString(row[0]), html.EscapeString(row[1]))
	}
	htmlBody.WriteString("</table>")
	fmt.Fprintf(&text, "\nMensagem:\n%s\n", lead.Message)
	fmt.Fprintf(&htmlBody, "<h3>Mensagem</h3><p>%s</p>", html.EscapeString(lead.Message))

	return EmailMessage{
		Subject: "Novo lead: " + lead.Name,
		Body:    text.String(),
		HTML:    htmlBody.String(),
	}
}

var _ leads.Notifier = (*LeadNotifier)(nil)
