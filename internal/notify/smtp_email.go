package notify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPEmail sends plain-text mail through an SMTP relay.
type SMTPEmail struct {
	addr     string
	from     string
	auth     smtp.Auth
	sendMail sendMailFunc
	now      func() time.Time
}

// NewSMTPEmail configures the relay. PLAIN auth is used when username is set.
func NewSMTPEmail(addr, from, username, password string) (*SMTPEmail, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, errors.New("smtp address is required")
	}
	if strings.TrimSpace(from) == "" {
		return nil, errors.New("source email is required")
	}
	var auth smtp.Auth
	if username != "" {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, fmt.Errorf("parse smtp address: %w", err)
		}
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPEmail{
		addr:     addr,
		from:     from,
		auth:     auth,
		sendMail: smtp.SendMail,
		now:      time.Now,
	}, nil
}

// Send implements EmailSender. net/smtp does not take a context, so only an
// already-cancelled context is honoured.
func (s *SMTPEmail) Send(ctx context.Context, email Email) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(email.To) == 0 {
		return "", errors.New("email has no recipients")
	}
	messageID := fmt.Sprintf("<%s@%s>", email.ID, senderDomain(s.from))
	if err := s.sendMail(s.addr, s.auth, s.from, email.To, s.render(email, messageID)); err != nil {
		return "", fmt.Errorf("smtp send: %w", err)
	}
	return messageID, nil
}

func (s *SMTPEmail) render(email Email, messageID string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(email.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", email.Subject)
	fmt.Fprintf(&b, "Message-ID: %s\r\n", messageID)
	fmt.Fprintf(&b, "Date: %s\r\n", s.now().UTC().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(email.Body)
	b.WriteString("\r\n")
	return []byte(b.String())
}

func senderDomain(from string) string {
	if at := strings.LastIndex(from, "@"); at >= 0 && at < len(from)-1 {
		return strings.TrimSuffix(from[at+1:], ">")
	}
	return "localhost"
}
