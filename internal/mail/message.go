// Package mail composes contact notification emails and delivers them over
// SMTP or Amazon SES.
package mail

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	netmail "net/mail"
	"strings"

	"github.com/jordan-wright/email"
)

// Fields are the submitted contact form values rendered into the message.
type Fields struct {
	Company   string
	Country   string
	FirstName string
	LastName  string
	Email     string
	Message   string
}

const notificationHTML = `<!DOCTYPE html PUBLIC "-//W3C//DTD HTML 4.0 Transitional//EN" "http://www.w3.org/TR/REC-html40/loose.dtd">
<html>
  <head>
    <style>
      button:hover{opacity:0.7}
      a:hover{opacity:0.7}
    </style>
  </head>
  <body>
    <div class="card" style="box-shadow:0 4px 8px 0 rgba(0, 0, 0, 0.2);margin:auto;text-align:center;font-family:arial;">
      <h1>{{.Company}} from {{.Country}}</h1>
      <p>First Name: {{.FirstName}}, Last Name: {{.LastName}}</p>
      <p>Email: {{.Email}}</p>
      <div style="margin: 24px 0;">
      </div>
      <p> {{.Message}}</p>
    </div>
  </body>
</html>
`

var notificationTemplate = template.Must(template.New("notification").Parse(notificationHTML))

// Composer turns submitted fields into an email addressed to the configured
// recipient.
type Composer struct {
	// Account is the mailbox the message is sent from.
	Account string
	// Recipient receives every notification.
	Recipient string
	// SubjectPrefix precedes the company name in the subject line.
	SubjectPrefix string
}

// Compose renders the notification. Field values are HTML-escaped in the
// body; header values have line breaks removed.
func (c Composer) Compose(f Fields) (*email.Email, error) {
	if c.Account == "" || c.Recipient == "" {
		return nil, errors.New("mail account and recipient are required")
	}

	var body bytes.Buffer
	if err := notificationTemplate.Execute(&body, f); err != nil {
		return nil, fmt.Errorf("render notification: %w", err)
	}

	company := headerValue(f.Company)

	e := email.NewEmail()
	e.From = (&netmail.Address{Name: company + " contact", Address: c.Account}).String()
	e.To = []string{c.Recipient}
	e.Subject = fmt.Sprintf("%s - %s", c.SubjectPrefix, company)
	e.HTML = body.Bytes()

	if addr, err := netmail.ParseAddress(headerValue(f.Email)); err == nil {
		e.ReplyTo = []string{addr.String()}
	}

	return e, nil
}

// headerValue collapses line breaks so submitted text cannot add headers.
func headerValue(s string) string {
	return strings.TrimSpace(strings.NewReplacer("\r", " ", "\n", " ").Replace(s))
}
