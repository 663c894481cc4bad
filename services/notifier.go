package services

import (
	"context"
	"fmt"
	"net/smtp"
	"sync"
	"sync/atomic"

	"github.com/aquasentra/api-go/config"
	"github.com/aquasentra/api-go/models"
	"go.uber.org/zap"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// EmailProvider delivers a single message.
type EmailProvider interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPProvider struct {
	cfg config.SMTPConfig
}

func NewSMTPProvider(cfg config.SMTPConfig) *SMTPProvider {
	return &SMTPProvider{cfg: cfg}
}

func (p *SMTPProvider) Send(_ context.Context, msg Message) error {
	addr := p.cfg.Host + ":" + p.cfg.Port
	var auth smtp.Auth
	if p.cfg.User != "" {
		auth = smtp.PlainAuth("", p.cfg.User, p.cfg.Pass, p.cfg.Host)
	}
	body := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		p.cfg.From, msg.To, msg.Subject, msg.Body)
	return smtp.SendMail(addr, auth, p.cfg.From, []string{msg.To}, []byte(body))
}

// Notifier fans messages out to recipients independently. Delivery failures
// are counted and logged, never propagated to the request that triggered
// them.
type Notifier struct {
	provider EmailProvider
	log      *zap.Logger
}

func NewNotifier(provider EmailProvider, log *zap.Logger) *Notifier {
	return &Notifier{provider: provider, log: log}
}

// SendAll dispatches every message concurrently and reports per-recipient
// outcomes. No all-or-nothing guarantee.
func (n *Notifier) SendAll(ctx context.Context, msgs []Message) (sent, failed int) {
	if n == nil || n.provider == nil || len(msgs) == 0 {
		return 0, 0
	}

	var ok, bad int64
	var wg sync.WaitGroup
	for _, msg := range msgs {
		wg.Add(1)
		go func(m Message) {
			defer wg.Done()
			if err := n.provider.Send(ctx, m); err != nil {
				atomic.AddInt64(&bad, 1)
				n.log.Warn("email delivery failed", zap.String("to", m.To), zap.Error(err))
				return
			}
			atomic.AddInt64(&ok, 1)
		}(msg)
	}
	wg.Wait()
	return int(ok), int(bad)
}

// Welcome sends the registration email. Best effort.
func (n *Notifier) Welcome(ctx context.Context, user *models.User) {
	n.SendAll(ctx, []Message{{
		To:      user.Email,
		Subject: "Welcome to Aquasentra",
		Body:    fmt.Sprintf("Hello %s,\n\nYour account is ready. Thank you for helping keep our coasts safe.", user.Name),
	}})
}

// ReportVerified tells the owner their report passed review. Best effort.
func (n *Notifier) ReportVerified(ctx context.Context, ownerEmail string, report *models.HazardReport) {
	n.SendAll(ctx, []Message{{
		To:      ownerEmail,
		Subject: fmt.Sprintf("Report %s verified", report.PublicCode),
		Body: fmt.Sprintf("Your %s report (%s) has been verified and is now visible on the hazard map.",
			report.HazardType, report.PublicCode),
	}})
}

// ReportRejected tells the owner why their report was turned down.
func (n *Notifier) ReportRejected(ctx context.Context, ownerEmail string, report *models.HazardReport, reason string) {
	n.SendAll(ctx, []Message{{
		To:      ownerEmail,
		Subject: fmt.Sprintf("Report %s rejected", report.PublicCode),
		Body:    fmt.Sprintf("Your report %s was rejected: %s", report.PublicCode, reason),
	}})
}
