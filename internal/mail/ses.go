package mail

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"
	"github.com/aws/aws-sdk-go/service/ses/sesiface"
	"github.com/jordan-wright/email"
)

// SES sends messages with the SES raw message API. Sender and recipient must
// be verified identities in the account.
type SES struct {
	client sesiface.SESAPI
}

// NewSES creates an SES transport for region using the default AWS
// credential chain.
func NewSES(region string) (*SES, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}
	return NewSESWithClient(ses.New(sess)), nil
}

// NewSESWithClient wraps an existing SES client.
func NewSESWithClient(client sesiface.SESAPI) *SES {
	return &SES{client: client}
}

func (s *SES) Send(ctx context.Context, e *email.Email) error {
	raw, err := e.Bytes()
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	input := &ses.SendRawEmailInput{
		Destinations: aws.StringSlice(e.To),
		RawMessage:   &ses.RawMessage{Data: raw},
	}
	if _, err := s.client.SendRawEmailWithContext(ctx, input); err != nil {
		return fmt.Errorf("ses send raw email: %w", err)
	}
	return nil
}
