// Package function hosts the contact Handler on AWS Lambda behind API
// Gateway. Success is always answered with an empty JSON object.
//
// OpenFaaS deployments run cmd/contactd behind of-watchdog in http mode; the
// classic stdin/stdout watchdog cannot carry the 400 responses.
package function

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/telarpress/contact-relay/clientip"
	"github.com/telarpress/contact-relay/internal/contact"
)

// ErrBodyTooLarge is returned when a request body exceeds the configured limit.
var ErrBodyTooLarge = errors.New("request body too large")

// request is one invocation after the runtime event has been unpacked.
type request struct {
	Method     string
	Path       string
	RemoteAddr string
	Headers    clientip.HeaderValues
	Body       []byte
	// BodyErr is set when the runtime body could not be decoded.
	BodyErr error
}

type response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// Adapter runs invocations through a contact.Handler.
type Adapter struct {
	Handler      *contact.Handler
	MaxBodyBytes int64
}

// serve handles req. Every outcome, including an undecodable body, is
// encoded in the response.
func (a *Adapter) serve(ctx context.Context, req request) response {
	if ctx == nil {
		ctx = context.Background()
	}

	x := &exchange{
		ctx:       ctx,
		req:       req,
		maxBody:   a.MaxBodyBytes,
		requestID: contact.NewRequestID(),
	}
	a.Handler.Handle(x)
	return x.resp
}

type exchange struct {
	ctx       context.Context
	req       request
	maxBody   int64
	requestID string
	resp      response
}

func (x *exchange) Context() context.Context {
	return x.ctx
}

func (x *exchange) RequestID() string {
	return x.requestID
}

func (x *exchange) ClientInput() clientip.RequestInput {
	return clientip.RequestInput{
		Context:    x.ctx,
		RemoteAddr: x.req.RemoteAddr,
		Path:       x.req.Path,
		Headers:    x.req.Headers,
	}
}

func (x *exchange) Submission() (contact.Submission, error) {
	if x.req.BodyErr != nil {
		return contact.Submission{}, x.req.BodyErr
	}
	data := x.req.Body
	if x.maxBody > 0 && int64(len(data)) > x.maxBody {
		return contact.Submission{}, fmt.Errorf("%w: %d bytes, limit %d", ErrBodyTooLarge, len(data), x.maxBody)
	}
	return contact.DecodeSubmission(x.header("Content-Type"), data)
}

func (x *exchange) Fail(err *contact.Error) {
	x.respond(err.Status, err.Envelope())
}

func (x *exchange) Succeed() {
	x.respond(http.StatusOK, struct{}{})
}

func (x *exchange) header(name string) string {
	if x.req.Headers == nil {
		return ""
	}
	values := x.req.Headers.Values(name)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func (x *exchange) respond(status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		data = []byte(`{}`)
	}
	x.resp = response{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":          "application/json",
			contact.RequestIDHeader: x.requestID,
		},
		Body: data,
	}
}
