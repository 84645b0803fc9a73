package contact

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/telarpress/contact-relay/clientip"
	"github.com/telarpress/contact-relay/internal/metrics"
	"go.uber.org/zap"
)

// Exchange is one request/response pair as seen by a host adapter.
type Exchange interface {
	Context() context.Context
	// RequestID identifies the exchange in logs and responses.
	RequestID() string
	// ClientInput is the request data used to resolve the client IP.
	ClientInput() clientip.RequestInput
	// Submission decodes the request body.
	Submission() (Submission, error)
	Fail(err *Error)
	Succeed()
}

// NewRequestID returns a fresh request identifier.
func NewRequestID() string {
	return uuid.NewString()
}

// Handler drives an Exchange through the Service. It is the single entry
// point shared by every host adapter.
type Handler struct {
	service  *Service
	resolver *clientip.Resolver
	metrics  metrics.Recorder
	logger   *zap.Logger
}

func NewHandler(service *Service, resolver *clientip.Resolver, recorder metrics.Recorder, logger *zap.Logger) *Handler {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		service:  service,
		resolver: resolver,
		metrics:  recorder,
		logger:   logger,
	}
}

// Handle processes x and writes exactly one outcome to it.
func (h *Handler) Handle(x Exchange) {
	input := x.ClientInput()
	clientIP := h.resolver.ClientIP(input)

	logger := h.logger.With(
		zap.String("request_id", x.RequestID()),
		zap.String("client_ip", clientIP),
		zap.String("request.path", input.Path),
	)
	ctx := ContextWithLogger(x.Context(), logger)

	sub, err := x.Submission()
	if err != nil {
		h.metrics.ObserveSubmission(metrics.OutcomeInvalidRequestBody)
		cerr := errInvalidRequestBody(err)
		logger.Warn("submission rejected", zap.String("outcome", cerr.Code), zap.Error(err))
		x.Fail(cerr)
		return
	}

	if err := h.service.Submit(ctx, sub, clientIP); err != nil {
		var cerr *Error
		if !errors.As(err, &cerr) {
			cerr = errSendEmail(err)
		}
		logger.Warn("submission rejected", zap.String("outcome", cerr.Code), zap.Error(cerr.Err))
		x.Fail(cerr)
		return
	}

	logger.Info("submission relayed", zap.String("outcome", "sent"), zap.String("company", sub.Company))
	x.Succeed()
}
