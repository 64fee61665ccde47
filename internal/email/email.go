package email

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ekaraman/weather-reporter/internal/config"
	"github.com/ekaraman/weather-reporter/internal/logger"
)

// SendError reports an address validation, TLS, authentication or transport
// failure while sending a report.
type SendError struct {
	Msg string
	Err error
}

func (e *SendError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *SendError) Unwrap() error { return e.Err }

var validate = validator.New()

// Sender delivers one plain-text report per SMTP session.
type Sender struct {
	host      string
	port      int
	from      string
	auth      smtp.Auth
	tlsConfig *tls.Config
}

func NewSender(cfg *config.Config) *Sender {
	return &Sender{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		from:      cfg.FromEmail,
		auth:      smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost),
		tlsConfig: &tls.Config{ServerName: cfg.SMTPHost},
	}
}

// ValidateAddress rejects a recipient before any network activity: no line
// breaks or embedded whitespace, and the address must have a structurally
// valid local-part@domain shape.
func ValidateAddress(address string) error {
	if strings.ContainsAny(address, "\r\n") {
		return &SendError{Msg: "invalid email address (line breaks not allowed)"}
	}
	if strings.ContainsAny(address, " \t") {
		return &SendError{Msg: "invalid email address (whitespace not allowed)"}
	}
	if err := validate.Var(address, "required,email"); err != nil {
		return &SendError{Msg: fmt.Sprintf("invalid email address format: %q", address)}
	}
	return nil
}

// sanitizeHeader strips line breaks from a header field.
func sanitizeHeader(value string) string {
	value = strings.NewReplacer("\n", " ", "\r", " ").Replace(value)
	return strings.TrimSpace(value)
}

// Send validates the recipient, opens one SMTP session, authenticates and
// delivers a single plain-text message. Every failure is a SendError.
func (s *Sender) Send(to, subject, body string) error {
	if err := ValidateAddress(to); err != nil {
		return err
	}

	client, err := s.connect()
	if err != nil {
		return err
	}
	defer client.Quit()

	if err := client.Auth(s.auth); err != nil {
		logger.Error("SMTP authentication failed: %v", err)
		return &SendError{Msg: "SMTP authentication failed", Err: err}
	}

	if err := client.Mail(s.from); err != nil {
		return &SendError{Msg: "failed to set MAIL FROM", Err: err}
	}
	if err := client.Rcpt(to); err != nil {
		return &SendError{Msg: "failed to set RCPT TO", Err: err}
	}

	wc, err := client.Data()
	if err != nil {
		return &SendError{Msg: "DATA command failed", Err: err}
	}

	headers := []string{
		fmt.Sprintf("Date: %s", time.Now().Format(time.RFC1123Z)),
		fmt.Sprintf("From: %s", sanitizeHeader(s.from)),
		fmt.Sprintf("To: %s", sanitizeHeader(to)),
		fmt.Sprintf("Subject: %s", sanitizeHeader(subject)),
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="utf-8"`,
	}
	message := strings.Join(headers, "\r\n") + "\r\n\r\n" + strings.TrimSpace(body)

	if _, err := wc.Write([]byte(message)); err != nil {
		wc.Close()
		return &SendError{Msg: "failed to write message body", Err: err}
	}
	if err := wc.Close(); err != nil {
		return &SendError{Msg: "failed to close DATA writer", Err: err}
	}

	logger.Info("Report email successfully sent to %s", to)
	return nil
}

// connect dials the SMTP server and secures the channel: implicit TLS on
// port 465, mandatory STARTTLS upgrade otherwise.
func (s *Sender) connect() (*smtp.Client, error) {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	var conn net.Conn
	var err error
	if s.port == 465 {
		conn, err = tls.Dial("tcp", addr, s.tlsConfig)
	} else {
		conn, err = net.Dial("tcp", addr)
	}
	if err != nil {
		logger.Error("Failed to dial SMTP server %s: %v", addr, err)
		return nil, &SendError{Msg: "SMTP connection error", Err: err}
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return nil, &SendError{Msg: "failed to create SMTP client", Err: err}
	}

	if s.port != 465 {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			client.Close()
			return nil, &SendError{Msg: "SMTP server does not support STARTTLS"}
		}
		if err := client.StartTLS(s.tlsConfig); err != nil {
			client.Close()
			logger.Error("TLS negotiation failed: %v", err)
			return nil, &SendError{Msg: "TLS negotiation failed", Err: err}
		}
	}

	return client, nil
}
