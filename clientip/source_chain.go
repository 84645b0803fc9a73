package clientip

import (
	"context"
	"errors"
	"strings"
)

type chainedSource struct {
	resolver *Resolver
	sources  []sourceExtractor
	name     string
}

func newChainedSource(resolver *Resolver, sources ...sourceExtractor) *chainedSource {
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = s.Name()
	}
	return &chainedSource{
		resolver: resolver,
		sources:  sources,
		name:     "chained[" + strings.Join(names, ",") + "]",
	}
}

func newForwardedForSource(resolver *Resolver) sourceExtractor {
	return &forwardedForSource{
		resolver:       resolver,
		unavailableErr: &ExtractionError{Err: ErrSourceUnavailable, Source: SourceXForwardedFor},
	}
}

func newSingleHeaderSource(resolver *Resolver, headerName string) sourceExtractor {
	sourceName := NormalizeSourceName(headerName)
	return &singleHeaderSource{
		resolver:       resolver,
		headerName:     headerName,
		sourceName:     sourceName,
		unavailableErr: &ExtractionError{Err: ErrSourceUnavailable, Source: sourceName},
	}
}

func newRemoteAddrSource(resolver *Resolver) sourceExtractor {
	return &remoteAddrSource{
		resolver:       resolver,
		unavailableErr: &ExtractionError{Err: ErrSourceUnavailable, Source: SourceRemoteAddr},
	}
}

// Extract returns the first source that yields a valid address. Missing and
// invalid values fall through to the next source; only context errors stop
// the scan early.
func (c *chainedSource) Extract(ctx context.Context, input RequestInput) (extractionResult, error) {
	var lastErr error
	for _, source := range c.sources {
		if ctx.Err() != nil {
			return extractionResult{}, ctx.Err()
		}

		result, err := source.Extract(ctx, input)
		if err == nil {
			if result.Source == "" {
				result.Source = source.Name()
			}
			return result, nil
		}

		if isContextError(err) {
			return extractionResult{}, err
		}

		lastErr = err
	}

	if lastErr == nil || errors.Is(lastErr, ErrSourceUnavailable) {
		return extractionResult{}, &ExtractionError{Err: ErrNoClientIP, Source: c.name}
	}

	return extractionResult{}, &ExtractionError{Err: errors.Join(ErrNoClientIP, lastErr), Source: c.name}
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (c *chainedSource) Name() string {
	return c.name
}
