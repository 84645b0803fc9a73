package clientip

import (
	"fmt"
	"strings"
)

const (
	// DefaultMaxChainLength is the X-Forwarded-For length above which a
	// chain_too_long security event is reported. Typical proxy chains rarely
	// exceed 5-10 entries.
	DefaultMaxChainLength = 100
)

// Option configures a Resolver.
//
// Construct options using package-provided option builder functions.
type Option func(*Config) error

// Config holds resolver configuration state.
//
// It is mutated by Option functions during construction. The type is exported
// only so adapter packages can write their own Option values; its fields are
// not part of the API.
type Config struct {
	sourcePriority []string
	maxChainLength int

	logger  Logger
	metrics Metrics

	metricsFactory    func() (Metrics, error)
	useMetricsFactory bool
}

func canonicalSourceName(sourceName string) string {
	normalized := NormalizeSourceName(sourceName)
	if normalized == SourceRemoteAddr {
		return SourceRemoteAddr
	}
	if _, ok := builtinHeaderNames[normalized]; ok {
		return normalized
	}
	return sourceName
}

func canonicalizeSourceNames(sources []string) []string {
	resolved := make([]string, len(sources))
	for i, source := range sources {
		resolved[i] = canonicalSourceName(strings.TrimSpace(source))
	}
	return resolved
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	cloned := make([]string, len(values))
	copy(cloned, values)
	return cloned
}

func defaultConfig() *Config {
	return &Config{
		maxChainLength: DefaultMaxChainLength,
		logger:         noopLogger{},
		metrics:        noopMetrics{},
		sourcePriority: cloneStrings(DefaultPriority),
	}
}

func applyOptions(c *Config, opts ...Option) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(c); err != nil {
			return err
		}
	}

	return nil
}

func configFromOptions(opts ...Option) (*Config, error) {
	cfg := defaultConfig()

	if err := applyOptions(cfg, opts...); err != nil {
		return nil, err
	}

	if cfg.useMetricsFactory && cfg.metricsFactory == nil {
		return nil, fmt.Errorf("metrics factory cannot be nil")
	}

	validationConfig := cfg
	if cfg.useMetricsFactory {
		validationConfig = cfg.clone()
		validationConfig.metrics = noopMetrics{}
	}

	if err := validationConfig.validate(); err != nil {
		return nil, err
	}

	if cfg.useMetricsFactory {
		metrics, err := cfg.metricsFactory()
		if err != nil {
			return nil, err
		}
		cfg.metrics = metrics

		if err := cfg.validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (c *Config) clone() *Config {
	return &Config{
		sourcePriority:    cloneStrings(c.sourcePriority),
		maxChainLength:    c.maxChainLength,
		logger:            c.logger,
		metrics:           c.metrics,
		metricsFactory:    c.metricsFactory,
		useMetricsFactory: c.useMetricsFactory,
	}
}
