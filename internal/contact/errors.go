package contact

import (
	"fmt"
	"net/http"
)

// Error codes returned in the response envelope.
const (
	CodeNullCaptchaValue     = "ServerError/NullCaptchaValue"
	CodeResponseCaptchaError = "ServerError/ResponseCaptchaError"
	CodeSendEmailError       = "ServerError/SendEmailError"
	CodeInvalidRequestBody   = "ServerError/InvalidRequestBody"
)

// Error is a submission failure reported to the caller. Err holds the cause,
// which is logged but never sent in a response.
type Error struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func errNullCaptchaValue() *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Code:    CodeNullCaptchaValue,
		Message: "Please select captcha first",
	}
}

func errResponseCaptcha(err error) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Code:    CodeResponseCaptchaError,
		Message: "Failed captcha verification",
		Err:     err,
	}
}

func errSendEmail(err error) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Code:    CodeSendEmailError,
		Message: "Failed to send email",
		Err:     err,
	}
}

func errInvalidRequestBody(err error) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Code:    CodeInvalidRequestBody,
		Message: "Invalid request body",
		Err:     err,
	}
}

// envelope is the JSON error body: {"error":{"code":..,"message":..}}.
type envelope struct {
	Error envelopeError `json:"error"`
}

type envelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Envelope returns the response body for e.
func (e *Error) Envelope() any {
	return envelope{Error: envelopeError{Code: e.Code, Message: e.Message}}
}
