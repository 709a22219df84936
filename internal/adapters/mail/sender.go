// Package mail sends the finished CSV to the outreach inbox.
package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"

	"leadscout/internal/domain"
)

// Dialer is satisfied by *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type Config struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       []string
	Subject  string
}

type Sender struct {
	cfg    Config
	dialer Dialer
}

// NewSender uses an SMTP dialer built from cfg.
func NewSender(cfg Config) *Sender {
	return &Sender{cfg: cfg, dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)}
}

// NewSenderWithDialer is for callers that bring their own transport.
func NewSenderWithDialer(cfg Config, d Dialer) *Sender {
	return &Sender{cfg: cfg, dialer: d}
}

func (s *Sender) Name() string { return "email" }

// Export mails the CSV as an attachment. An incomplete configuration is
// logged and skipped, not treated as a failure.
func (s *Sender) Export(ctx context.Context, leads []domain.Lead, a domain.Artifact) error {
	if !s.cfg.Enabled {
		return nil
	}
	if s.cfg.Host == "" || s.cfg.From == "" || len(s.cfg.To) == 0 {
		log.Ctx(ctx).Warn().Msg("email config incomplete, not sending")
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", s.cfg.To...)
	m.SetHeader("Subject", s.cfg.Subject)
	m.SetBody("text/plain", body(len(leads), a))
	if a.Path != "" {
		m.Attach(a.Path)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	log.Ctx(ctx).Info().Strs("to", s.cfg.To).Msg("leads email sent")
	return nil
}

func body(n int, a domain.Artifact) string {
	var b strings.Builder
	b.WriteString("Hello,\n\n")
	b.WriteString("attached is the current CSV with possible app leads. Summary:\n")
	fmt.Fprintf(&b, "- Leads total: %d\n", n)
	fmt.Fprintf(&b, "- Created at: %s\n", a.GeneratedAt.Format("02.01.2006 15:04"))
	b.WriteString("\nApp Leads Scout\n")
	return b.String()
}
