package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"mime/quotedprintable"
	"net/smtp"
	"strings"

	"github.com/The-WildNuts/The-Wild-Nuts/pkg/config"
	"github.com/The-WildNuts/The-Wild-Nuts/pkg/logger"
)

// Mailer is the outbound email surface used by the auth, orders and marketing
// services.
type Mailer interface {
	SendOTP(ctx context.Context, to, otp string) error
	SendWelcome(ctx context.Context, to, name string) error
	SendOrderStatus(ctx context.Context, to, orderID, name, status string) error
	SendOrderCancelled(ctx context.Context, to, orderID, name string) error
	SendMarketing(ctx context.Context, to, subject, content string) error
}

type smtpMailer struct {
	cfg  config.SMTPConfig
	logg *logger.Logger
	send func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

// New returns an SMTP-backed mailer. When credentials are absent every send is
// logged instead of dialed out, so local development works without an account.
func New(cfg config.SMTPConfig, logg *logger.Logger) Mailer {
	return &smtpMailer{cfg: cfg, logg: logg, send: smtp.SendMail}
}

func (m *smtpMailer) SendOTP(ctx context.Context, to, otp string) error {
	html, err := renderTemplate(otpTemplate, map[string]string{"OTP": otp})
	if err != nil {
		return err
	}
	text := fmt.Sprintf("Your one-time password is %s. It is valid for 10 minutes.", otp)
	return m.deliver(ctx, to, "Your OTP for The Wild Nuts Password Reset", text, html)
}

func (m *smtpMailer) SendWelcome(ctx context.Context, to, name string) error {
	if name == "" {
		name = "there"
	}
	html, err := renderTemplate(welcomeTemplate, map[string]string{"Name": name})
	if err != nil {
		return err
	}
	text := fmt.Sprintf("Hi %s, welcome to The Wild Nuts! Your account is ready.", name)
	return m.deliver(ctx, to, "Welcome to The Wild Nuts", text, html)
}

func (m *smtpMailer) SendOrderStatus(ctx context.Context, to, orderID, name, status string) error {
	if name == "" {
		name = "Customer"
	}
	html, err := renderTemplate(orderStatusTemplate, map[string]string{
		"Name": name, "OrderID": orderID, "Status": status,
	})
	if err != nil {
		return err
	}
	text := fmt.Sprintf("Hi %s, your order %s is now: %s.", name, orderID, status)
	return m.deliver(ctx, to, fmt.Sprintf("Order %s update", orderID), text, html)
}

func (m *smtpMailer) SendOrderCancelled(ctx context.Context, to, orderID, name string) error {
	if name == "" {
		name = "Customer"
	}
	html, err := renderTemplate(orderCancelledTemplate, map[string]string{
		"Name": name, "OrderID": orderID,
	})
	if err != nil {
		return err
	}
	text := fmt.Sprintf("Hi %s, your order %s has been cancelled.", name, orderID)
	return m.deliver(ctx, to, fmt.Sprintf("Order %s cancelled", orderID), text, html)
}

func (m *smtpMailer) SendMarketing(ctx context.Context, to, subject, content string) error {
	html, err := renderTemplate(marketingTemplate, map[string]string{"Content": content})
	if err != nil {
		return err
	}
	return m.deliver(ctx, to, subject, content, html)
}

func (m *smtpMailer) deliver(ctx context.Context, to, subject, text, html string) error {
	if !m.cfg.Configured() {
		if m.logg != nil {
			ctx = m.logg.WithFields(ctx, map[string]any{"to": to, "subject": subject})
			m.logg.Info(ctx, "smtp not configured, skipping send")
		}
		return nil
	}

	msg, err := buildMessage(m.cfg, to, subject, text, html)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Email, m.cfg.Password, m.cfg.Host)
	if err := m.send(addr, auth, m.cfg.Email, []string{to}, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

const mimeBoundary = "twn-mail-boundary"

func buildMessage(cfg config.SMTPConfig, to, subject, text, html string) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s <%s>\r\n", cfg.FromName, cfg.Email)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mimeBoundary)

	for _, part := range []struct {
		contentType string
		body        string
	}{
		{"text/plain; charset=utf-8", text},
		{"text/html; charset=utf-8", html},
	} {
		fmt.Fprintf(&buf, "--%s\r\n", mimeBoundary)
		fmt.Fprintf(&buf, "Content-Type: %s\r\n", part.contentType)
		buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")
		qp := quotedprintable.NewWriter(&buf)
		if _, err := qp.Write([]byte(part.body)); err != nil {
			return nil, fmt.Errorf("encode mail body: %w", err)
		}
		if err := qp.Close(); err != nil {
			return nil, fmt.Errorf("encode mail body: %w", err)
		}
		buf.WriteString("\r\n")
	}
	fmt.Fprintf(&buf, "--%s--\r\n", mimeBoundary)
	return buf.Bytes(), nil
}

func renderTemplate(tmpl *template.Template, data any) (string, error) {
	var out strings.Builder
	if err := tmpl.Execute(&out, data); err != nil {
		return "", fmt.Errorf("render mail template: %w", err)
	}
	return out.String(), nil
}
