package mail

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// ErrSMTPDisabled is returned by Send when delivery is switched off in configuration.
var ErrSMTPDisabled = errors.New("smtp: delivery disabled")

// Message is a plain-text email addressed to a single invitee.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers a Message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSettings configure the SMTP relay used for invitation emails.
type SMTPSettings struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

type smtpClient interface {
	Extension(name string) (bool, string)
	StartTLS(cfg *tls.Config) error
	Auth(a smtp.Auth) error
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

type dialFunc func(ctx context.Context, settings SMTPSettings) (smtpClient, error)

// SMTPMailer sends each message over a fresh SMTP session, upgrading with STARTTLS when the
// relay offers it.
type SMTPMailer struct {
	settings SMTPSettings
	from     *mail.Address
	dial     dialFunc
	now      func() time.Time
}

// NewSMTPMailer validates settings. A disabled configuration yields a mailer whose Send always
// returns ErrSMTPDisabled.
func NewSMTPMailer(settings SMTPSettings) (*SMTPMailer, error) {
	if settings.Timeout <= 0 {
		settings.Timeout = defaultTimeout
	}
	m := &SMTPMailer{settings: settings, dial: dialSMTP, now: time.Now}
	if !settings.Enabled {
		return m, nil
	}

	if strings.TrimSpace(settings.Host) == "" {
		return nil, errors.New("smtp: host is required when enabled")
	}
	if settings.Port <= 0 {
		return nil, errors.New("smtp: port is required when enabled")
	}
	from, err := mail.ParseAddress(settings.From)
	if err != nil {
		return nil, fmt.Errorf("smtp: invalid from address: %w", err)
	}
	m.from = from
	return m, nil
}

// Send delivers msg, failing fast when ctx is already done.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if !m.settings.Enabled {
		return ErrSMTPDisabled
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	to, err := mail.ParseAddress(strings.TrimSpace(msg.To))
	if err != nil {
		return fmt.Errorf("smtp: invalid recipient address %q: %w", msg.To, err)
	}
	payload, err := m.compose(to, msg)
	if err != nil {
		return err
	}

	client, err := m.dial(ctx, m.settings)
	if err != nil {
		return err
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.settings.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("smtp: start tls: %w", err)
		}
	}
	if strings.TrimSpace(m.settings.Username) != "" {
		auth := smtp.PlainAuth("", m.settings.Username, m.settings.Password, m.settings.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp: auth: %w", err)
		}
	}

	if err := client.Mail(m.from.Address); err != nil {
		return fmt.Errorf("smtp: mail from: %w", err)
	}
	if err := client.Rcpt(to.Address); err != nil {
		return fmt.Errorf("smtp: rcpt to %s: %w", to.Address, err)
	}
	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp: data command: %w", err)
	}
	if _, err := io.WriteString(wc, payload); err != nil {
		_ = wc.Close()
		return fmt.Errorf("smtp: write body: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("smtp: close data writer: %w", err)
	}
	return client.Quit()
}

// compose renders the RFC 5322 payload. Header values are stripped of line breaks and the
// subject is Q-encoded when it carries non-ASCII company or role names.
func (m *SMTPMailer) compose(to *mail.Address, msg Message) (string, error) {
	id, err := messageID(m.from.Address)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	header := func(name, value string) {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\r\n")
	}
	header("From", m.from.String())
	header("To", to.String())
	header("Subject", mime.QEncoding.Encode("utf-8", singleLine(msg.Subject)))
	header("Date", m.now().UTC().Format(time.RFC1123Z))
	header("Message-ID", id)
	header("MIME-Version", "1.0")
	header("Content-Type", "text/plain; charset=UTF-8")
	b.WriteString("\r\n")

	body := strings.ReplaceAll(msg.Body, "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return b.String(), nil
}

func messageID(from string) (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("smtp: message id: %w", err)
	}
	domain := "localhost"
	if at := strings.LastIndex(from, "@"); at >= 0 && at < len(from)-1 {
		domain = from[at+1:]
	}
	return "<" + hex.EncodeToString(buf) + "@" + domain + ">", nil
}

func singleLine(value string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(value)
}

func dialSMTP(ctx context.Context, settings SMTPSettings) (smtpClient, error) {
	address := net.JoinHostPort(settings.Host, strconv.Itoa(settings.Port))
	dialer := &net.Dialer{Timeout: settings.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("smtp: dial %s: %w", address, err)
	}

	deadline := time.Now().Add(settings.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	client, err := smtp.NewClient(conn, settings.Host)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("smtp: new client: %w", err)
	}
	return client, nil
}
