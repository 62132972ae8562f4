package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// DefaultSendTimeout bounds every SMTP exchange. A hung mail server must
// never hold an HTTP request open past this.
const DefaultSendTimeout = 30 * time.Second

// Mailer delivers LoanMate notification mail over SMTP. Delivery is
// at-most-once: a failed send is reported to the caller and never retried
// here.
type Mailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	useTLS   bool
	timeout  time.Duration
}

func New(host, port, username, password, from string, useTLS bool, timeout time.Duration) *Mailer {
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	return &Mailer{
		host:     strings.TrimSpace(host),
		port:     strings.TrimSpace(port),
		username: username,
		password: password,
		from:     strings.TrimSpace(from),
		useTLS:   useTLS,
		timeout:  timeout,
	}
}

// SendOTP mails the 6-digit reset code.
func (m *Mailer) SendOTP(ctx context.Context, email, otp string) error {
	subject := "Your Password Reset OTP - LoanMate"
	body := fmt.Sprintf(
		"Your Password Reset OTP: %s\n\nThis OTP will expire in 10 minutes.\nIf you didn't request this, please ignore this email.\n\nLoanMate Security Team\n",
		otp,
	)
	return m.send(ctx, email, subject, body)
}

// SendResetLink mails the link carrying the reset grant token.
func (m *Mailer) SendResetLink(ctx context.Context, email, link string) error {
	subject := "Password Reset Link - LoanMate"
	body := fmt.Sprintf(
		"Click the link below to reset your password:\n%s\n\nThis link will expire in 30 minutes.\nIf you didn't request this, please ignore this email.\n\nLoanMate Security Team\n",
		link,
	)
	return m.send(ctx, email, subject, body)
}

// SendResetConfirmation mails the post-reset notice. Callers treat failures
// here as best-effort.
func (m *Mailer) SendResetConfirmation(ctx context.Context, email string) error {
	subject := "Password Reset Successful - LoanMate"
	body := "Your password has been reset successfully!\n\nIf you didn't make this change, please contact our support team immediately.\n\nLoanMate Security Team\n"
	return m.send(ctx, email, subject, body)
}

// SendWelcome mails the newsletter welcome note.
func (m *Mailer) SendWelcome(ctx context.Context, email string) error {
	subject := "Thank you for subscribing to LoanMate!"
	body := "Welcome to LoanMate! You'll now receive the latest financial tips and updates.\n"
	return m.send(ctx, email, subject, body)
}

func (m *Mailer) send(ctx context.Context, to, subject, body string) error {
	if m == nil {
		return errors.New("mailer not configured")
	}
	if m.host == "" || m.port == "" || m.from == "" {
		return errors.New("mailer missing configuration")
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	deadline, _ := ctx.Deadline()

	addr := net.JoinHostPort(m.host, m.port)
	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("mail: dial %s: %w", addr, err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(deadline)

	if m.useTLS {
		conn = tls.Client(conn, &tls.Config{ServerName: m.host})
	}

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		return fmt.Errorf("mail: smtp handshake: %w", err)
	}
	defer client.Close()

	if !m.useTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
				return fmt.Errorf("mail: starttls: %w", err)
			}
		}
	}

	if m.username != "" || m.password != "" {
		auth := smtp.PlainAuth("", m.username, m.password, m.host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("mail: auth: %w", err)
		}
	}

	if err := client.Mail(m.from); err != nil {
		return fmt.Errorf("mail: mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("mail: rcpt to %s: %w", to, err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("mail: data command: %w", err)
	}
	if _, err := wc.Write([]byte(formatMessage(m.from, to, subject, body))); err != nil {
		_ = wc.Close()
		return fmt.Errorf("mail: write body: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("mail: close data writer: %w", err)
	}

	return client.Quit()
}

func formatMessage(from, to, subject, body string) string {
	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("Content-Transfer-Encoding: 7bit\r\n\r\n")
	msg.WriteString(body)
	msg.WriteString("\r\n")
	return msg.String()
}
