package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"

	"github.com/jordan-wright/email"
)

// implicitTLSPort is the SMTP submission port that starts with TLS instead of
// upgrading through STARTTLS.
const implicitTLSPort = 465

// SMTP sends messages through an authenticated SMTP submission server.
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string

	send func(e *email.Email, addr string, auth smtp.Auth, cfg *tls.Config) error
}

// NewSMTP creates an SMTP transport using PLAIN authentication.
func NewSMTP(host string, port int, username, password string) *SMTP {
	s := &SMTP{Host: host, Port: port, Username: username, Password: password}
	if port == implicitTLSPort {
		s.send = (*email.Email).SendWithTLS
	} else {
		s.send = (*email.Email).SendWithStartTLS
	}
	return s
}

// Send delivers e. The underlying client has no context support, so a
// cancelled ctx returns early while the dial finishes in the background.
func (s *SMTP) Send(ctx context.Context, e *email.Email) error {
	addr := net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
	auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
	cfg := &tls.Config{ServerName: s.Host}

	done := make(chan error, 1)
	go func() {
		done <- s.send(e, addr, auth, cfg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send via %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send via %s: %w", addr, ctx.Err())
	}
}
