// Package contact validates contact form submissions with a CAPTCHA check
// and relays them as email.
package contact

import (
	"context"
	"errors"
	"time"

	"github.com/telarpress/contact-relay/internal/captcha"
	"github.com/telarpress/contact-relay/internal/mail"
	"github.com/telarpress/contact-relay/internal/metrics"
	"go.uber.org/zap"
)

const (
	DefaultCaptchaTimeout = 10 * time.Second
	DefaultMailTimeout    = 30 * time.Second
)

// Mailer delivers the notification for a submission.
type Mailer interface {
	Deliver(ctx context.Context, f mail.Fields) error
}

// Service runs the submission pipeline: CAPTCHA verification, then one email.
type Service struct {
	verifier       captcha.Verifier
	mailer         Mailer
	metrics        metrics.Recorder
	logger         *zap.Logger
	captchaTimeout time.Duration
	mailTimeout    time.Duration
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

func WithMetrics(recorder metrics.Recorder) ServiceOption {
	return func(s *Service) {
		if recorder != nil {
			s.metrics = recorder
		}
	}
}

func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTimeouts bounds the CAPTCHA and mail calls. Non-positive values keep
// the defaults.
func WithTimeouts(captchaTimeout, mailTimeout time.Duration) ServiceOption {
	return func(s *Service) {
		if captchaTimeout > 0 {
			s.captchaTimeout = captchaTimeout
		}
		if mailTimeout > 0 {
			s.mailTimeout = mailTimeout
		}
	}
}

func NewService(verifier captcha.Verifier, mailer Mailer, opts ...ServiceOption) *Service {
	s := &Service{
		verifier:       verifier,
		mailer:         mailer,
		metrics:        metrics.Nop{},
		logger:         zap.NewNop(),
		captchaTimeout: DefaultCaptchaTimeout,
		mailTimeout:    DefaultMailTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit verifies the submission's CAPTCHA token for remoteIP and, when it
// passes, sends exactly one notification email. Every failure is a *Error;
// the mailer is never called unless verification succeeded.
func (s *Service) Submit(ctx context.Context, sub Submission, remoteIP string) error {
	if sub.CaptchaToken == "" {
		s.metrics.ObserveSubmission(metrics.OutcomeMissingCaptcha)
		return errNullCaptchaValue()
	}

	if err := s.verify(ctx, sub.CaptchaToken, remoteIP); err != nil {
		s.metrics.ObserveSubmission(metrics.OutcomeCaptchaRejected)
		return errResponseCaptcha(err)
	}

	if err := s.deliver(ctx, sub); err != nil {
		s.metrics.ObserveSubmission(metrics.OutcomeMailFailed)
		return errSendEmail(err)
	}

	s.metrics.ObserveSubmission(metrics.OutcomeSent)
	return nil
}

func (s *Service) verify(ctx context.Context, token, remoteIP string) error {
	ctx, cancel := context.WithTimeout(ctx, s.captchaTimeout)
	defer cancel()

	start := time.Now()
	err := s.verifier.Verify(ctx, token, remoteIP)
	s.metrics.ObserveUpstream(metrics.UpstreamCaptcha, err, time.Since(start))
	if err != nil {
		var rejected *captcha.RejectedError
		if errors.As(err, &rejected) {
			s.loggerFor(ctx).Info("captcha rejected", zap.Strings("error_codes", rejected.ErrorCodes))
		} else {
			s.loggerFor(ctx).Warn("captcha verification failed", zap.Error(err))
		}
	}
	return err
}

func (s *Service) deliver(ctx context.Context, sub Submission) error {
	ctx, cancel := context.WithTimeout(ctx, s.mailTimeout)
	defer cancel()

	start := time.Now()
	err := s.mailer.Deliver(ctx, sub.mailFields())
	s.metrics.ObserveUpstream(metrics.UpstreamMail, err, time.Since(start))
	if err != nil {
		s.loggerFor(ctx).Error("mail delivery failed", zap.Error(err))
	}
	return err
}

type loggerKey struct{}

// ContextWithLogger returns a copy of ctx carrying a request-scoped logger.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

func (s *Service) loggerFor(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return s.logger
}
