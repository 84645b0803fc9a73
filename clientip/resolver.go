package clientip

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// Resolver resolves the originating client IP from request headers, trying
// each configured source in priority order.
//
// Resolver instances hold only immutable configuration and are safe for
// concurrent reuse.
type Resolver struct {
	config *Config
	source sourceExtractor
}

// New creates a Resolver from one or more Option builders.
func New(opts ...Option) (*Resolver, error) {
	cfg, err := configFromOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	resolver := &Resolver{config: cfg}
	resolver.source = resolver.buildSourceChain(cfg)

	return resolver, nil
}

func (r *Resolver) buildSourceChain(cfg *Config) sourceExtractor {
	sources := make([]sourceExtractor, 0, len(cfg.sourcePriority))
	for _, sourceName := range cfg.sourcePriority {
		var source sourceExtractor
		switch canonicalSourceName(sourceName) {
		case SourceXForwardedFor:
			source = newForwardedForSource(r)
		case SourceRemoteAddr:
			source = newRemoteAddrSource(r)
		default:
			source = newSingleHeaderSource(r, headerNameForSource(sourceName))
		}
		sources = append(sources, source)
	}

	return newChainedSource(r, sources...)
}

// Resolve resolves the client IP for an HTTP request.
func (r *Resolver) Resolve(req *http.Request) Result {
	return r.ResolveFrom(inputFromRequest(req))
}

// ResolveFrom resolves the client IP from framework-agnostic request input.
func (r *Resolver) ResolveFrom(input RequestInput) Result {
	ctx := requestInputContext(input)
	if err := ctx.Err(); err != nil {
		return Result{Err: err}
	}

	result, err := r.source.Extract(ctx, input)
	if err != nil {
		return Result{Source: sourceNameOf(err), Err: err}
	}

	return Result{
		IP:     normalizeIP(result.IP),
		Raw:    result.Raw,
		Source: result.Source,
	}
}

// ClientIP resolves the client IP from input and returns it as sent by the
// client, or "" when no source yields one.
func (r *Resolver) ClientIP(input RequestInput) string {
	return r.ResolveFrom(input).String()
}

func sourceNameOf(err error) string {
	var sourceErr interface{ SourceName() string }
	if errors.As(err, &sourceErr) {
		return sourceErr.SourceName()
	}
	return ""
}

var defaultResolver = sync.OnceValue(func() *Resolver {
	resolver, err := New()
	if err != nil {
		panic(fmt.Sprintf("clientip: default resolver: %v", err))
	}
	return resolver
})

// ClientIP returns the best-guess client IP from headers using DefaultPriority,
// or "" when none of the headers holds a valid address. A nil headers value is
// treated as a request without headers.
func ClientIP(headers HeaderValues) string {
	return defaultResolver().ClientIP(RequestInput{Headers: headers})
}
