package contact

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/url"
	"strings"

	"github.com/telarpress/contact-relay/internal/mail"
)

// Form field names.
const (
	FieldCaptcha   = "g-recaptcha-response"
	FieldFirstName = "firstName"
	FieldLastName  = "lastName"
	FieldEmail     = "email"
	FieldCompany   = "company"
	FieldMessage   = "message"
	FieldCountry   = "country"
)

// multipartMemory bounds the in-memory part of a multipart form; the body is
// already capped before decoding.
const multipartMemory = 1 << 20

// Submission is one contact form post.
type Submission struct {
	CaptchaToken string `json:"g-recaptcha-response"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Company      string `json:"company"`
	Message      string `json:"message"`
	Country      string `json:"country"`
}

func (s Submission) mailFields() mail.Fields {
	return mail.Fields{
		Company:   s.Company,
		Country:   s.Country,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Email:     s.Email,
		Message:   s.Message,
	}
}

// DecodeSubmission decodes body according to contentType. JSON objects,
// urlencoded forms and multipart forms are accepted. An unknown or missing
// content type is read as JSON when the body starts with "{" and as a form
// otherwise. An empty body is an empty submission.
func DecodeSubmission(contentType string, body []byte) (Submission, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return Submission{}, nil
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = ""
	}

	switch {
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		return decodeJSON(body)
	case mediaType == "application/x-www-form-urlencoded":
		return decodeForm(body)
	case mediaType == "multipart/form-data":
		return decodeMultipart(body, params["boundary"])
	case bytes.HasPrefix(bytes.TrimSpace(body), []byte("{")):
		return decodeJSON(body)
	default:
		return decodeForm(body)
	}
}

func decodeJSON(body []byte) (Submission, error) {
	var s Submission
	if err := json.Unmarshal(body, &s); err != nil {
		return Submission{}, fmt.Errorf("decode json body: %w", err)
	}
	return s, nil
}

func decodeForm(body []byte) (Submission, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return Submission{}, fmt.Errorf("decode form body: %w", err)
	}
	return submissionFromValues(values), nil
}

func decodeMultipart(body []byte, boundary string) (Submission, error) {
	if boundary == "" {
		return Submission{}, errors.New("decode multipart body: missing boundary")
	}

	form, err := multipart.NewReader(bytes.NewReader(body), boundary).ReadForm(multipartMemory)
	if err != nil {
		return Submission{}, fmt.Errorf("decode multipart body: %w", err)
	}
	defer form.RemoveAll()

	return submissionFromValues(url.Values(form.Value)), nil
}

func submissionFromValues(values url.Values) Submission {
	return Submission{
		CaptchaToken: values.Get(FieldCaptcha),
		FirstName:    values.Get(FieldFirstName),
		LastName:     values.Get(FieldLastName),
		Email:        values.Get(FieldEmail),
		Company:      values.Get(FieldCompany),
		Message:      values.Get(FieldMessage),
		Country:      values.Get(FieldCountry),
	}
}
