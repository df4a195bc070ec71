package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strconv"
	texttemplate "text/template"

	"github.com/jordan-wright/email"
	"go.uber.org/zap"
)

const resetSubject = "Password Reset Request"

var resetHTML = template.Must(template.New("reset-html").Parse(
	`<p>Hello {{.Name}},</p>
<p>You requested a password reset. Click the link below to choose a new password:</p>
<p><a href="{{.Link}}">Reset password</a></p>
<p>This link expires in 15 minutes. If you did not request a reset, ignore this email.</p>
`))

var resetText = texttemplate.Must(texttemplate.New("reset-text").Parse(
	`Hello {{.Name}},

You requested a password reset. Open the link below to choose a new password:

{{.Link}}

This link expires in 15 minutes. If you did not request a reset, ignore this email.
`))

// SMTPConfig holds the relay address and PLAIN credentials.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer sends reset emails through an SMTP relay.
type SMTPMailer struct {
	cfg    SMTPConfig
	logger *zap.Logger
	send   func(e *email.Email, addr string, a smtp.Auth) error
}

func NewSMTPMailer(cfg SMTPConfig, logger *zap.Logger) *SMTPMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &SMTPMailer{
		cfg:    cfg,
		logger: logger,
		send: func(e *email.Email, addr string, a smtp.Auth) error {
			return e.Send(addr, a)
		},
	}
}

// SendResetEmail renders the reset message and hands it to the relay.
func (m *SMTPMailer) SendResetEmail(ctx context.Context, to, name, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e, err := buildResetEmail(m.cfg.From, to, name, link)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	var a smtp.Auth
	if m.cfg.Username != "" {
		a = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := m.send(e, addr, a); err != nil {
		m.logger.Warn("smtp send failed", zap.String("to", to), zap.String("relay", addr), zap.Error(err))
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func buildResetEmail(from, to, name, link string) (*email.Email, error) {
	data := struct{ Name, Link string }{name, link}

	var html, text bytes.Buffer
	if err := resetHTML.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("render reset html: %w", err)
	}
	if err := resetText.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("render reset text: %w", err)
	}

	e := email.NewEmail()
	e.From = from
	e.To = []string{to}
	e.Subject = resetSubject
	e.HTML = html.Bytes()
	e.Text = text.Bytes()
	return e, nil
}
