// Package mailer renders and delivers outbound email. Delivery goes
// through the Sender interface so tests and the queue consumer never need a
// live SMTP server.
package mailer

import (
	"bytes"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"text/template"
	"time"
)

const dialTimeout = 10 * time.Second

const verificationTemplate = `<html>
  <body>
    <p>Welcome! Please confirm your email address.</p>
    <p><a href="{{.Link}}">Verify email</a></p>
    <p>If you did not register, ignore this message.</p>
  </body>
</html>`

var verificationTmpl = template.Must(template.New("verification").Parse(verificationTemplate))

// RenderVerificationEmail renders the verification email body around the
// given link.
func RenderVerificationEmail(link string) (string, error) {
	var buf bytes.Buffer
	if err := verificationTmpl.Execute(&buf, struct{ Link string }{Link: link}); err != nil {
		return "", fmt.Errorf("failed to render verification email: %w", err)
	}
	return buf.String(), nil
}

// Sender delivers a single rendered message to one recipient.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPConfig holds SMTP connection details.
type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

// SMTPSender is the Sender implementation backed by a plain SMTP server.
type SMTPSender struct {
	cfg SMTPConfig
}

// NewSMTPSender creates a new SMTPSender.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send delivers one HTML message. The dial carries a bounded timeout so a
// slow SMTP server cannot stall the consumer indefinitely.
func (s *SMTPSender) Send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return fmt.Errorf("failed to dial SMTP server %s: %w", addr, err)
	}
	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to start SMTP session: %w", err)
	}
	defer client.Close()

	if s.cfg.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP auth failed: %w", err)
		}
	}

	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("SMTP MAIL failed: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("SMTP RCPT failed: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA failed: %w", err)
	}

	msg := strings.Join([]string{
		"From: " + s.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("failed to write message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}

	return client.Quit()
}
