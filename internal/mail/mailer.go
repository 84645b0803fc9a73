package mail

import (
	"context"

	"github.com/jordan-wright/email"
)

// Transport delivers a composed message.
type Transport interface {
	Send(ctx context.Context, e *email.Email) error
}

// Mailer composes and delivers notifications.
type Mailer struct {
	Composer  Composer
	Transport Transport
}

// Deliver composes the notification for f and hands it to the transport.
func (m *Mailer) Deliver(ctx context.Context, f Fields) error {
	e, err := m.Composer.Compose(f)
	if err != nil {
		return err
	}
	return m.Transport.Send(ctx, e)
}
