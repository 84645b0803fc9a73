package clientip

import (
	"context"
	"net/http"
	"strings"
)

// HeaderValues provides access to request header values by name.
//
// Implementations should return one slice entry per received header line.
// Header names are requested in canonical MIME format (for example
// "X-Forwarded-For") and lookups must be case-insensitive.
//
// net/http's http.Header satisfies this interface directly.
type HeaderValues interface {
	Values(name string) []string
}

// HeaderValuesFunc adapts a function to the HeaderValues interface.
type HeaderValuesFunc func(name string) []string

// Values implements HeaderValues.
func (f HeaderValuesFunc) Values(name string) []string {
	if f == nil {
		return nil
	}

	return f(name)
}

// HeaderMap is a single-valued header map keyed by lower-case header name, the
// shape used by function runtimes and API gateway events.
type HeaderMap map[string]string

// Values implements HeaderValues. Keys that are not already lower-case are
// matched with a case-insensitive scan.
func (h HeaderMap) Values(name string) []string {
	if h == nil {
		return nil
	}

	lower := strings.ToLower(name)
	if v, ok := h[lower]; ok {
		return []string{v}
	}

	for k, v := range h {
		if strings.EqualFold(k, name) {
			return []string{v}
		}
	}

	return nil
}

// RequestInput provides framework-agnostic request data for resolution.
//
// Context defaults to context.Background() when nil. Headers may be nil, in
// which case only the remote_addr source can produce a result.
type RequestInput struct {
	Context    context.Context
	RemoteAddr string
	Path       string
	Headers    HeaderValues
}

func requestInputContext(input RequestInput) context.Context {
	if input.Context == nil {
		return context.Background()
	}

	return input.Context
}

func inputFromRequest(r *http.Request) RequestInput {
	if r == nil {
		return RequestInput{}
	}

	input := RequestInput{
		Context:    r.Context(),
		RemoteAddr: r.RemoteAddr,
	}
	if r.Header != nil {
		input.Headers = r.Header
	}
	if r.URL != nil {
		input.Path = r.URL.Path
	}

	return input
}

// headerValues guards against a nil HeaderValues and typed-nil http.Header.
func headerValues(headers HeaderValues, name string) []string {
	if isNilInterface(headers) {
		return nil
	}

	return headers.Values(name)
}
