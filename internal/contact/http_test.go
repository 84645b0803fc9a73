package contact

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/telarpress/contact-relay/clientip"
	"github.com/telarpress/contact-relay/internal/captcha"
)

func newTestResolver(t *testing.T) *clientip.Resolver {
	t.Helper()

	resolver, err := clientip.New(clientip.Priority(
		clientip.SourceXForwardedFor,
		clientip.SourceXRealIP,
		clientip.SourceRemoteAddr,
	))
	if err != nil {
		t.Fatalf("clientip.New() error = %v", err)
	}
	return resolver
}

func newTestHTTPHandler(t *testing.T, verifier *fakeVerifier, mailer *fakeMailer, redirect string) *HTTPHandler {
	t.Helper()

	recorder := &recordingRecorder{}
	service := NewService(verifier, mailer, WithMetrics(recorder))
	return &HTTPHandler{
		Handler:            NewHandler(service, newTestResolver(t), recorder, nil),
		MaxBodyBytes:       1 << 10,
		SuccessRedirectURL: redirect,
	}
}

func formRequest(method string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func validForm() url.Values {
	return url.Values{
		"g-recaptcha-response": {"tok"},
		"firstName":            {"Ada"},
		"lastName":             {"Lovelace"},
		"email":                {"ada@example.com"},
		"company":              {"Acme"},
		"message":              {"Hello"},
		"country":              {"UK"},
	}
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelopeError {
	t.Helper()

	var body envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body.Error
}

func TestHTTPHandler_SuccessRedirects(t *testing.T) {
	mailer := &fakeMailer{}
	h := newTestHTTPHandler(t, &fakeVerifier{}, mailer, "https://telar.press/pending.html")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, formRequest(http.MethodPost, validForm()))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if got := rec.Header().Get("Location"); got != "https://telar.press/pending.html" {
		t.Fatalf("Location = %q", got)
	}
	if len(mailer.delivered) != 1 {
		t.Fatalf("delivered = %d, want 1", len(mailer.delivered))
	}
}

func TestHTTPHandler_SuccessWithoutRedirect(t *testing.T) {
	h := newTestHTTPHandler(t, &fakeVerifier{}, &fakeMailer{}, "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, formRequest(http.MethodPost, validForm()))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "{}" {
		t.Fatalf("body = %q, want {}", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("Content-Type = %q", got)
	}
}

func TestHTTPHandler_Failures(t *testing.T) {
	tests := []struct {
		name        string
		verifyErr   error
		mailErr     error
		form        url.Values
		wantCode    string
		wantMessage string
	}{
		{
			name:        "missing token",
			form:        url.Values{"company": {"Acme"}},
			wantCode:    CodeNullCaptchaValue,
			wantMessage: "Please select captcha first",
		},
		{
			name:        "rejected token",
			verifyErr:   &captcha.RejectedError{ErrorCodes: []string{"timeout-or-duplicate"}},
			form:        validForm(),
			wantCode:    CodeResponseCaptchaError,
			wantMessage: "Failed captcha verification",
		},
		{
			name:        "mail failure",
			mailErr:     errors.New("connection reset"),
			form:        validForm(),
			wantCode:    CodeSendEmailError,
			wantMessage: "Failed to send email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHTTPHandler(t, &fakeVerifier{err: tt.verifyErr}, &fakeMailer{err: tt.mailErr}, "https://telar.press/pending.html")

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, formRequest(http.MethodPost, tt.form))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			want := envelopeError{Code: tt.wantCode, Message: tt.wantMessage}
			if diff := cmp.Diff(want, decodeEnvelope(t, rec)); diff != "" {
				t.Fatalf("envelope mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHTTPHandler_ErrorBodyHidesCause(t *testing.T) {
	h := newTestHTTPHandler(t, &fakeVerifier{}, &fakeMailer{err: errors.New("535 secret-password-rejected")}, "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, formRequest(http.MethodPost, validForm()))

	if strings.Contains(rec.Body.String(), "secret-password-rejected") {
		t.Fatalf("body leaks cause: %s", rec.Body.String())
	}
}

func TestHTTPHandler_BodyTooLarge(t *testing.T) {
	verifier := &fakeVerifier{}
	h := newTestHTTPHandler(t, verifier, &fakeMailer{}, "")

	form := validForm()
	form.Set("message", strings.Repeat("x", 4<<10))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, formRequest(http.MethodPost, form))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if got := decodeEnvelope(t, rec).Code; got != CodeInvalidRequestBody {
		t.Fatalf("code = %q, want %q", got, CodeInvalidRequestBody)
	}
	if len(verifier.calls) != 0 {
		t.Fatalf("verify calls = %d, want 0", len(verifier.calls))
	}
}

func TestHTTPHandler_RequestID(t *testing.T) {
	h := newTestHTTPHandler(t, &fakeVerifier{}, &fakeMailer{}, "")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, formRequest(http.MethodPost, url.Values{}))

	id := rec.Header().Get(RequestIDHeader)
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("%s = %q, want uuid: %v", RequestIDHeader, id, err)
	}
}

func TestHTTPHandler_RemoteIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{
			name:    "forwarded chain",
			headers: map[string]string{"X-Forwarded-For": "unknown, 203.0.113.9:8080, 10.0.0.1"},
			want:    "203.0.113.9",
		},
		{
			name:    "real ip",
			headers: map[string]string{"X-Real-IP": "198.51.100.4"},
			want:    "198.51.100.4",
		},
		{
			name:    "invalid headers fall back to connection",
			headers: map[string]string{"X-Forwarded-For": "unknown", "X-Real-IP": "not-an-ip"},
			want:    "192.0.2.1",
		},
		{
			name: "no headers",
			want: "192.0.2.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := &fakeVerifier{}
			h := newTestHTTPHandler(t, verifier, &fakeMailer{}, "")

			req := formRequest(http.MethodPut, validForm())
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if len(verifier.calls) != 1 {
				t.Fatalf("verify calls = %d, want 1", len(verifier.calls))
			}
			if got := verifier.calls[0].RemoteIP; got != tt.want {
				t.Fatalf("remoteip = %q, want %q", got, tt.want)
			}
		})
	}
}
