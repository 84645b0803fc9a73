// Package app assembles the relay from configuration.
package app

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/telarpress/contact-relay/clientip"
	clientipprom "github.com/telarpress/contact-relay/clientip/prometheus"
	"github.com/telarpress/contact-relay/internal/captcha"
	"github.com/telarpress/contact-relay/internal/config"
	"github.com/telarpress/contact-relay/internal/contact"
	"github.com/telarpress/contact-relay/internal/function"
	"github.com/telarpress/contact-relay/internal/log"
	"github.com/telarpress/contact-relay/internal/mail"
	"github.com/telarpress/contact-relay/internal/metrics"
	"github.com/telarpress/contact-relay/internal/server"
	"go.uber.org/zap"
)

// App holds the wired components shared by every entry point.
type App struct {
	Options  *config.Options
	Logger   *zap.Logger
	Registry *prometheus.Registry
	Resolver *clientip.Resolver
	Handler  *contact.Handler
}

// Option replaces a collaborator, mainly for tests.
type Option func(*builder)

type builder struct {
	verifier  captcha.Verifier
	transport mail.Transport
	registry  *prometheus.Registry
}

// WithVerifier uses v instead of the reCAPTCHA client.
func WithVerifier(v captcha.Verifier) Option {
	return func(b *builder) { b.verifier = v }
}

// WithTransport uses t instead of the configured mail transport.
func WithTransport(t mail.Transport) Option {
	return func(b *builder) { b.transport = t }
}

// WithRegistry registers metrics on reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(b *builder) { b.registry = reg }
}

// Load reads configuration and secrets, then builds the App.
func Load(configFile string, overrides ...config.Option) (*App, error) {
	opts, err := config.Load(configFile, overrides...)
	if err != nil {
		return nil, err
	}
	secrets, err := config.LoadSecrets(opts)
	if err != nil {
		return nil, err
	}
	return New(opts, secrets, log.NewLogger(opts))
}

// New wires the relay from already loaded configuration.
func New(opts *config.Options, secrets *config.Secrets, logger *zap.Logger, options ...Option) (*App, error) {
	b := &builder{}
	for _, o := range options {
		o(b)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	registry := b.registry
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	resolverOpts := []clientip.Option{
		clientip.Priority(opts.ClientIPPriority()...),
		clientip.MaxChainLength(opts.ClientIP.MaxChainLength),
		clientip.WithLogger(log.ClientIPLogger(logger)),
	}
	if opts.Metrics.Enabled {
		resolverOpts = append(resolverOpts, clientipprom.WithRegisterer(registry))
	}
	resolver, err := clientip.New(resolverOpts...)
	if err != nil {
		return nil, fmt.Errorf("client ip resolver: %w", err)
	}

	var recorder metrics.Recorder = metrics.Nop{}
	if opts.Metrics.Enabled {
		recorder, err = metrics.New(registry)
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
	}

	verifier := b.verifier
	if verifier == nil {
		verifier, err = captcha.New(secrets.CaptchaSecret,
			captcha.WithVerifyURL(opts.Captcha.VerifyURL),
			captcha.WithTimeout(opts.Captcha.Timeout),
		)
		if err != nil {
			return nil, fmt.Errorf("captcha: %w", err)
		}
	}

	transport := b.transport
	if transport == nil {
		transport, err = newTransport(opts, secrets)
		if err != nil {
			return nil, err
		}
	}

	mailer := &mail.Mailer{
		Composer: mail.Composer{
			Account:       secrets.MailUser,
			Recipient:     opts.Mail.Recipient,
			SubjectPrefix: opts.Mail.SubjectPrefix,
		},
		Transport: transport,
	}

	service := contact.NewService(verifier, mailer,
		contact.WithMetrics(recorder),
		contact.WithLogger(logger),
		contact.WithTimeouts(opts.Captcha.Timeout, opts.Mail.Timeout),
	)

	return &App{
		Options:  opts,
		Logger:   logger,
		Registry: registry,
		Resolver: resolver,
		Handler:  contact.NewHandler(service, resolver, recorder, logger),
	}, nil
}

func newTransport(opts *config.Options, secrets *config.Secrets) (mail.Transport, error) {
	switch opts.Mail.Transport {
	case config.TransportSMTP:
		return mail.NewSMTP(opts.Mail.SMTPHost, opts.Mail.SMTPPort, secrets.MailUser, secrets.MailPassword), nil
	case config.TransportSES:
		ses, err := mail.NewSES(opts.Mail.SESRegion)
		if err != nil {
			return nil, fmt.Errorf("ses: %w", err)
		}
		return ses, nil
	default:
		return nil, fmt.Errorf("unknown mail transport %q", opts.Mail.Transport)
	}
}

// HTTPHandler serves submissions over net/http.
func (a *App) HTTPHandler() *contact.HTTPHandler {
	return &contact.HTTPHandler{
		Handler:            a.Handler,
		MaxBodyBytes:       a.Options.MaxBodyBytes,
		SuccessRedirectURL: a.Options.SuccessRedirectURL,
	}
}

// Function serves submissions on function runtimes.
func (a *App) Function() *function.Adapter {
	return &function.Adapter{
		Handler:      a.Handler,
		MaxBodyBytes: a.Options.MaxBodyBytes,
	}
}

// Server is the HTTP server with health and metrics routes.
func (a *App) Server() *server.Server {
	return server.New(a.Options, server.Deps{
		Contact:  a.HTTPHandler(),
		Gatherer: a.Registry,
		Logger:   a.Logger,
	})
}
