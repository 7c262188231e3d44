package notify

import (
	"fmt"
	"net/smtp"

	"courtwatch/pkg/config"

	"github.com/jordan-wright/email"
	sendgrid "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Relay delivers one message to one address. Both the email channel and the
// SMS gateway channel go through a Relay, so a failing transport degrades the
// same way for either.
type Relay interface {
	Send(from, to, subject, body string) error
}

// smtpRelay submits mail over the conventional submission port with STARTTLS
// and the app-scoped credential.
type smtpRelay struct {
	host     string
	port     int
	username string
	password string
}

// NewSMTPRelay builds the default relay from a facility profile and its
// credentials.
func NewSMTPRelay(profile config.Profile, creds config.Credentials) Relay {
	return &smtpRelay{
		host:     profile.SMTPHost,
		port:     profile.SMTPPort,
		username: creds.Sender(),
		password: creds.SMTPPassword,
	}
}

func (r *smtpRelay) Send(from, to, subject, body string) error {
	msg := email.NewEmail()
	msg.From = from
	msg.To = []string{to}
	msg.Subject = subject
	msg.Text = []byte(body)

	addr := fmt.Sprintf("%s:%d", r.host, r.port)
	auth := smtp.PlainAuth("", r.username, r.password, r.host)
	if err := msg.Send(addr, auth); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

// sendgridRelay submits through the SendGrid API instead of SMTP. Selected
// when an API key is configured for the facility.
type sendgridRelay struct {
	client *sendgrid.Client
}

// NewSendGridRelay builds an API-backed relay.
func NewSendGridRelay(apiKey string) Relay {
	return &sendgridRelay{client: sendgrid.NewSendClient(apiKey)}
}

func (r *sendgridRelay) Send(from, to, subject, body string) error {
	message := mail.NewSingleEmail(
		mail.NewEmail("", from),
		subject,
		mail.NewEmail("", to),
		body,
		"",
	)
	resp, err := r.client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send to %s: %w", to, err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid send to %s: status %d", to, resp.StatusCode)
	}
	return nil
}

// RelayFor picks the API relay when a key is configured and falls back to
// SMTP otherwise.
func RelayFor(profile config.Profile, creds config.Credentials) Relay {
	if creds.SendGridAPIKey != "" {
		return NewSendGridRelay(creds.SendGridAPIKey)
	}
	return NewSMTPRelay(profile, creds)
}
