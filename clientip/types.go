package clientip

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
)

var (
	ErrInvalidInputType = errors.New("invalid input type")

	ErrSourceUnavailable = errors.New("source unavailable")

	ErrInvalidIP = errors.New("invalid IP address")

	ErrChainTooLong = errors.New("X-Forwarded-For chain too long")

	ErrNoClientIP = errors.New("no client IP found in request")
)

// InputTypeError reports a header value that is neither absent nor a string.
type InputTypeError struct {
	Got string
}

func (e *InputTypeError) Error() string {
	return fmt.Sprintf("%v: expected a string, got %q", ErrInvalidInputType, e.Got)
}

func (e *InputTypeError) Unwrap() error {
	return ErrInvalidInputType
}

type ExtractionError struct {
	Err    error
	Source string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

func (e *ExtractionError) SourceName() string {
	return e.Source
}

type InvalidIPError struct {
	ExtractionError
	Value string
}

func (e *InvalidIPError) Error() string {
	return fmt.Sprintf("%s: %v (value=%q)", e.Source, e.Err, e.Value)
}

type ChainTooLongError struct {
	ExtractionError
	ChainLength int
	MaxLength   int
}

func (e *ChainTooLongError) Error() string {
	return fmt.Sprintf("%s: %v (chain_length=%d, max_length=%d)",
		e.Source, e.Err, e.ChainLength, e.MaxLength)
}

// Result is the outcome of one resolution.
//
// Raw holds the header token exactly as it was validated, so callers that
// need the address as the client sent it can use it instead of IP.String().
type Result struct {
	IP netip.Addr

	Raw string

	Source string

	Err error
}

func (r Result) Valid() bool {
	return r.Err == nil && r.IP.IsValid()
}

// String returns the raw client IP, or "" when the result is not valid.
func (r Result) String() string {
	if !r.Valid() {
		return ""
	}
	return r.Raw
}

func NormalizeSourceName(headerName string) string {
	return strings.ToLower(strings.ReplaceAll(headerName, "-", "_"))
}
