package clientip

import (
	"context"
	"strings"
)

type singleHeaderSource struct {
	resolver       *Resolver
	headerName     string
	sourceName     string
	unavailableErr error
}

func (s *singleHeaderSource) Name() string {
	return s.sourceName
}

func (s *singleHeaderSource) Extract(ctx context.Context, input RequestInput) (extractionResult, error) {
	values := headerValues(input.Headers, s.headerName)
	if len(values) == 0 {
		return extractionResult{}, sourceUnavailableError(s.unavailableErr, s.Name())
	}

	value := values[0]
	if len(values) > 1 {
		// Node joins repeated unknown headers with ", ", which never
		// validates as a single address. Keep that outcome but surface it.
		s.resolver.config.metrics.RecordSecurityEvent(securityEventMultipleHeaders)
		s.resolver.logSecurityWarning(ctx, input, s.Name(), securityEventMultipleHeaders, "multiple single-IP headers received - possible spoofing attempt",
			"header", s.headerName,
			"header_count", len(values),
		)
		value = strings.Join(values, ", ")
	}

	if value == "" {
		return extractionResult{}, sourceUnavailableError(s.unavailableErr, s.Name())
	}

	ip, ok := parseIP(value)
	if !ok {
		s.resolver.config.metrics.RecordResolutionFailure(s.Name())
		return extractionResult{}, &InvalidIPError{
			ExtractionError: ExtractionError{
				Err:    ErrInvalidIP,
				Source: s.Name(),
			},
			Value: value,
		}
	}

	s.resolver.config.metrics.RecordResolutionSuccess(s.Name())
	return extractionResult{IP: normalizeIP(ip), Raw: value, Source: s.Name()}, nil
}

type remoteAddrSource struct {
	resolver       *Resolver
	unavailableErr error
}

func (s *remoteAddrSource) Name() string {
	return SourceRemoteAddr
}

func (s *remoteAddrSource) Extract(ctx context.Context, input RequestInput) (extractionResult, error) {
	if strings.TrimSpace(input.RemoteAddr) == "" {
		return extractionResult{}, sourceUnavailableError(s.unavailableErr, s.Name())
	}

	host, ip, ok := parseRemoteAddr(input.RemoteAddr)
	if !ok {
		s.resolver.config.metrics.RecordResolutionFailure(s.Name())
		return extractionResult{}, &InvalidIPError{
			ExtractionError: ExtractionError{
				Err:    ErrInvalidIP,
				Source: s.Name(),
			},
			Value: input.RemoteAddr,
		}
	}

	s.resolver.config.metrics.RecordResolutionSuccess(s.Name())
	return extractionResult{IP: normalizeIP(ip), Raw: host, Source: s.Name()}, nil
}
