package clientip

import (
	"fmt"
	"reflect"
	"strings"
)

func (c *Config) validate() error {
	if c.maxChainLength <= 0 {
		return fmt.Errorf("maxChainLength must be > 0, got %d", c.maxChainLength)
	}
	if len(c.sourcePriority) == 0 {
		return fmt.Errorf("at least one source required in priority list")
	}
	if err := c.validateSourcePriority(); err != nil {
		return err
	}
	if isNilLogger(c.logger) {
		return fmt.Errorf("logger cannot be nil")
	}
	if isNilMetrics(c.metrics) {
		return fmt.Errorf("metrics cannot be nil")
	}
	return nil
}

func (c *Config) validateSourcePriority() error {
	seen := make(map[string]struct{}, len(c.sourcePriority))

	for _, sourceName := range c.sourcePriority {
		normalized := NormalizeSourceName(strings.TrimSpace(sourceName))
		if normalized == "" {
			return fmt.Errorf("source names cannot be empty")
		}

		if _, ok := seen[normalized]; ok {
			return fmt.Errorf("duplicate source %q in priority list", sourceName)
		}
		seen[normalized] = struct{}{}
	}

	return nil
}

func isNilLogger(logger Logger) bool {
	return isNilInterface(logger)
}

func isNilMetrics(metrics Metrics) bool {
	return isNilInterface(metrics)
}

func isNilInterface(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}
