package clientip

import (
	"fmt"
)

// Priority sets the resolution source order.
//
// Built-in names (SourceXClientIP, SourceXForwardedFor, ...) and their header
// spellings ("X-Client-IP") resolve to the same source; any other value is
// read as a custom single-IP header. SourceRemoteAddr adds the connection
// address as a source, typically last.
func Priority(sources ...string) Option {
	resolvedSources := canonicalizeSourceNames(cloneStrings(sources))

	return func(c *Config) error {
		c.sourcePriority = cloneStrings(resolvedSources)
		return nil
	}
}

// MaxChainLength sets the X-Forwarded-For length above which a chain_too_long
// security event is reported. Longer chains are still scanned in full.
func MaxChainLength(max int) Option {
	return func(c *Config) error {
		c.maxChainLength = max
		return nil
	}
}

// WithLogger sets the logger implementation used for warning events.
func WithLogger(logger Logger) Option {
	return func(c *Config) error {
		c.logger = logger
		return nil
	}
}

// WithMetrics sets a concrete metrics implementation.
//
// If previously configured, a metrics factory is disabled.
func WithMetrics(metrics Metrics) Option {
	return func(c *Config) error {
		c.metrics = metrics
		c.metricsFactory = nil
		c.useMetricsFactory = false
		return nil
	}
}

// WithMetricsFactory configures a lazy metrics constructor.
//
// The factory is invoked only for the final winning metrics option after
// option validation succeeds.
func WithMetricsFactory(factory func() (Metrics, error)) Option {
	return func(c *Config) error {
		if factory == nil {
			return fmt.Errorf("metrics factory cannot be nil")
		}

		c.metricsFactory = factory
		c.useMetricsFactory = true
		return nil
	}
}
