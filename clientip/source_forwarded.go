package clientip

import (
	"context"
	"errors"
	"strings"
)

type forwardedForSource struct {
	resolver       *Resolver
	unavailableErr error
}

func (s *forwardedForSource) Name() string {
	return SourceXForwardedFor
}

func (s *forwardedForSource) Extract(ctx context.Context, input RequestInput) (extractionResult, error) {
	values := headerValues(input.Headers, "X-Forwarded-For")
	if len(values) == 0 || strings.TrimSpace(strings.Join(values, "")) == "" {
		return extractionResult{}, sourceUnavailableError(s.unavailableErr, s.Name())
	}

	parts, err := s.resolver.parseXFFValues(values)
	if err != nil {
		var chainErr *ChainTooLongError
		if errors.As(err, &chainErr) {
			s.resolver.config.metrics.RecordSecurityEvent(securityEventChainTooLong)
			s.resolver.logSecurityWarning(ctx, input, s.Name(), securityEventChainTooLong, "X-Forwarded-For chain exceeds configured length threshold",
				"chain_length", chainErr.ChainLength,
				"max_length", chainErr.MaxLength,
			)
		}
	}

	raw, ip, ok := firstValidInChain(parts)
	if !ok {
		s.resolver.config.metrics.RecordResolutionFailure(s.Name())
		return extractionResult{}, &InvalidIPError{
			ExtractionError: ExtractionError{
				Err:    ErrInvalidIP,
				Source: s.Name(),
			},
			Value: strings.Join(values, ", "),
		}
	}

	s.resolver.config.metrics.RecordResolutionSuccess(s.Name())
	return extractionResult{IP: normalizeIP(ip), Raw: raw, Source: s.Name()}, nil
}
