// Package prometheus provides a Prometheus adapter for the clientip package.
//
// The package exposes clientip options that install a Prometheus-backed
// Metrics implementation on a resolver, using either the default registerer
// or a caller-provided registerer.
package prometheus
