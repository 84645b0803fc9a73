package contact

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/telarpress/contact-relay/clientip"
)

// RequestIDHeader carries the request identifier in HTTP responses.
const RequestIDHeader = "X-Request-Id"

const contentTypeJSON = "application/json"

// HTTPHandler serves the Handler over net/http.
//
// On success the browser is redirected (303 See Other) to SuccessRedirectURL,
// or answered with an empty JSON object when no redirect is configured.
type HTTPHandler struct {
	Handler            *Handler
	MaxBodyBytes       int64
	SuccessRedirectURL string
}

func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	x := &httpExchange{
		w:          w,
		r:          r,
		requestID:  NewRequestID(),
		maxBody:    h.MaxBodyBytes,
		successURL: h.SuccessRedirectURL,
	}
	w.Header().Set(RequestIDHeader, x.requestID)
	h.Handler.Handle(x)
}

type httpExchange struct {
	w          http.ResponseWriter
	r          *http.Request
	requestID  string
	maxBody    int64
	successURL string
}

func (x *httpExchange) Context() context.Context {
	return x.r.Context()
}

func (x *httpExchange) RequestID() string {
	return x.requestID
}

func (x *httpExchange) ClientInput() clientip.RequestInput {
	return clientip.RequestInput{
		Context:    x.r.Context(),
		RemoteAddr: x.r.RemoteAddr,
		Path:       x.r.URL.Path,
		Headers:    x.r.Header,
	}
}

func (x *httpExchange) Submission() (Submission, error) {
	if x.r.Body == nil {
		return Submission{}, nil
	}

	body := x.r.Body
	if x.maxBody > 0 {
		body = http.MaxBytesReader(x.w, x.r.Body, x.maxBody)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return Submission{}, err
	}

	return DecodeSubmission(x.r.Header.Get("Content-Type"), data)
}

func (x *httpExchange) Fail(err *Error) {
	writeJSON(x.w, err.Status, err.Envelope())
}

func (x *httpExchange) Succeed() {
	if x.successURL != "" {
		http.Redirect(x.w, x.r, x.successURL, http.StatusSeeOther)
		return
	}
	writeJSON(x.w, http.StatusOK, struct{}{})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
