// Package captcha verifies reCAPTCHA response tokens against the provider's
// siteverify endpoint.
package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultVerifyURL is Google's reCAPTCHA verification endpoint.
const DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

var (
	// ErrRejected is returned when the provider answered but did not confirm
	// the token.
	ErrRejected = errors.New("captcha rejected")

	ErrMissingSecret = errors.New("captcha secret is empty")
)

// Verifier checks a CAPTCHA response token for the given client address.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

// RejectedError carries the provider's error codes for a rejected token.
type RejectedError struct {
	ErrorCodes []string
}

func (e *RejectedError) Error() string {
	if len(e.ErrorCodes) == 0 {
		return ErrRejected.Error()
	}
	return fmt.Sprintf("%v: %s", ErrRejected, strings.Join(e.ErrorCodes, ", "))
}

func (e *RejectedError) Unwrap() error {
	return ErrRejected
}

// siteverifyResponse is the provider's answer. Success is a pointer so a body
// without the field is told apart from an explicit false.
type siteverifyResponse struct {
	Success     *bool    `json:"success"`
	ErrorCodes  []string `json:"error-codes"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
}

// Client is a Verifier backed by a resty client.
type Client struct {
	http      *resty.Client
	secret    string
	verifyURL string
}

// Option configures a Client.
type Option func(*Client)

// WithVerifyURL overrides the verification endpoint.
func WithVerifyURL(verifyURL string) Option {
	return func(c *Client) {
		c.verifyURL = verifyURL
	}
}

// WithTimeout bounds each verification call.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(timeout)
	}
}

// WithRestyClient replaces the underlying HTTP client.
func WithRestyClient(client *resty.Client) Option {
	return func(c *Client) {
		c.http = client
	}
}

// New creates a Client for the site secret.
func New(secret string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSecret
	}

	c := &Client{
		http:      resty.New(),
		secret:    secret,
		verifyURL: DefaultVerifyURL,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Verify posts the token to the provider with secret, response, and remoteip
// query parameters. remoteip is omitted when empty.
//
// It returns nil only when the provider answers 2xx with "success": true. A
// false or missing success field yields a *RejectedError; transport failures,
// non-2xx statuses, and undecodable bodies yield a plain error.
func (c *Client) Verify(ctx context.Context, token, remoteIP string) error {
	params := map[string]string{
		"secret":   c.secret,
		"response": token,
	}
	if remoteIP != "" {
		params["remoteip"] = remoteIP
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(params).
		Post(c.verifyURL)
	if err != nil {
		return fmt.Errorf("call siteverify: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("siteverify returned status %s", resp.Status())
	}

	var out siteverifyResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return fmt.Errorf("decode siteverify response: %w", err)
	}
	if out.Success == nil || !*out.Success {
		return &RejectedError{ErrorCodes: out.ErrorCodes}
	}

	return nil
}
