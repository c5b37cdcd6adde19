// Package mailer sends the best-effort upload notification email. Callers
// treat every error from Notify as loggable and non-fatal; notification sits
// outside the upload consistency boundary.
package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/taller/photovault/common/config"
	"github.com/taller/photovault/common/logger"
	"github.com/wneessen/go-mail"
)

// PhotoLink references one uploaded photo in a notification
type PhotoLink struct {
	Filename  string
	PublicURL string
}

// BatchSummary describes an upload batch for notification purposes
type BatchSummary struct {
	GroupID  string
	Stage    string
	Uploader string
	Note     string
	Count    int
	Photos   []PhotoLink
}

// Mailer sends batch notifications over SMTP
type Mailer struct {
	client *mail.Client
	cfg    *config.Config
	log    *logger.Logger
}

// New creates a mailer from config
func New(cfg *config.Config, log *logger.Logger) (*Mailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Mail.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Mail.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Mail.User),
			mail.WithPassword(cfg.Mail.Password),
		)
	}

	client, err := mail.NewClient(cfg.Mail.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create mail client: %w", err)
	}

	return &Mailer{
		client: client,
		cfg:    cfg,
		log:    log,
	}, nil
}

// Notify sends one email summarizing an upload batch
func (m *Mailer) Notify(ctx context.Context, summary BatchSummary) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.Mail.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(m.cfg.Mail.To); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}

	msg.Subject(fmt.Sprintf("%d new photos for order %s (%s)", summary.Count, summary.GroupID, summary.Stage))
	msg.SetBodyString(mail.TypeTextHTML, renderBody(summary))

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}

	m.log.Info("notification sent",
		"group_id", summary.GroupID,
		"stage", summary.Stage,
		"count", summary.Count,
	)

	return nil
}

func renderBody(summary BatchSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<h2>New evidence photos</h2>")
	fmt.Fprintf(&b, "<p><strong>Order:</strong> %s</p>", summary.GroupID)
	fmt.Fprintf(&b, "<p><strong>Stage:</strong> %s</p>", summary.Stage)
	if summary.Uploader != "" {
		fmt.Fprintf(&b, "<p><strong>Technician:</strong> %s</p>", summary.Uploader)
	}
	if summary.Note != "" {
		fmt.Fprintf(&b, "<p><strong>Comments:</strong> %s</p>", summary.Note)
	}
	fmt.Fprintf(&b, "<p>%d photo(s) uploaded.</p>", summary.Count)
	b.WriteString(`<hr style="border: 1px solid #eee; margin: 20px 0;" />`)

	for _, p := range summary.Photos {
		fmt.Fprintf(&b,
			`<div style="margin-bottom: 20px;"><img src="%s" alt="%s" style="max-width: 250px; border-radius: 8px;" /></div>`,
			p.PublicURL, p.Filename,
		)
	}

	return b.String()
}
