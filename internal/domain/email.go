package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// ConferenceCreatedEmailData holds data for the conference-created confirmation email.
type ConferenceCreatedEmailData struct {
	Email          string
	ConferenceName string
	City           string
	MaxAttendees   int
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendConferenceCreated(ctx context.Context, data *ConferenceCreatedEmailData) error
}
