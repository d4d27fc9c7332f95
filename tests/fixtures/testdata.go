package fixtures

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/inboxpilot/inboxpilot-backend/internal/models"
	"google.golang.org/api/gmail/v1"
)

// MessageBuilder creates test Message instances with fluent API
type MessageBuilder struct {
	message models.Message
}

// NewMessageBuilder creates a new MessageBuilder with sensible defaults
func NewMessageBuilder() *MessageBuilder {
	now := time.Now().UTC().Truncate(time.Second)
	return &MessageBuilder{
		message: models.Message{
			ID:       "msg-1",
			UserID:   "user-1",
			From:     "sender@example.com",
			To:       "me@example.com",
			Subject:  "Test Subject",
			Snippet:  "This is a test email...",
			Body:     "This is a test email body.",
			Date:     &now,
			LabelIDs: models.StringList{"INBOX"},
		},
	}
}

// WithID sets the message ID
func (b *MessageBuilder) WithID(id string) *MessageBuilder {
	b.message.ID = id
	return b
}

// WithUserID sets the owning user
func (b *MessageBuilder) WithUserID(userID string) *MessageBuilder {
	b.message.UserID = userID
	return b
}

// WithFrom sets the sender address
func (b *MessageBuilder) WithFrom(from string) *MessageBuilder {
	b.message.From = from
	return b
}

// WithSubject sets the message subject
func (b *MessageBuilder) WithSubject(subject string) *MessageBuilder {
	b.message.Subject = subject
	return b
}

// WithBody sets the message body
func (b *MessageBuilder) WithBody(body string) *MessageBuilder {
	b.message.Body = body
	return b
}

// WithDate sets the message date
func (b *MessageBuilder) WithDate(t time.Time) *MessageBuilder {
	b.message.Date = &t
	return b
}

// WithLabels sets the label IDs
func (b *MessageBuilder) WithLabels(labels ...string) *MessageBuilder {
	b.message.LabelIDs = models.StringList(labels)
	return b
}

// WithSenderID sets the resolved sender reference
func (b *MessageBuilder) WithSenderID(id string) *MessageBuilder {
	b.message.SenderID = &id
	return b
}

// Build returns the constructed Message
func (b *MessageBuilder) Build() *models.Message {
	return &b.message
}

// BuildValue returns the constructed Message as a value (not pointer)
func (b *MessageBuilder) BuildValue() models.Message {
	return b.message
}

// SenderBuilder creates test Sender instances with fluent API
type SenderBuilder struct {
	sender models.Sender
}

// NewSenderBuilder creates a new SenderBuilder with sensible defaults
func NewSenderBuilder() *SenderBuilder {
	return &SenderBuilder{
		sender: models.Sender{
			ID:      "sender-1",
			UserID:  "user-1",
			OrgName: "Example",
		},
	}
}

// WithID sets the sender ID
func (b *SenderBuilder) WithID(id string) *SenderBuilder {
	b.sender.ID = id
	return b
}

// WithUserID sets the owning user
func (b *SenderBuilder) WithUserID(userID string) *SenderBuilder {
	b.sender.UserID = userID
	return b
}

// WithOrgName sets the organization name
func (b *SenderBuilder) WithOrgName(name string) *SenderBuilder {
	b.sender.OrgName = name
	return b
}

// Build returns the constructed Sender
func (b *SenderBuilder) Build() *models.Sender {
	return &b.sender
}

// GmailMessageBuilder assembles provider-shaped messages for pipeline tests.
// The body is encoded the way the Gmail API returns it (base64url).
type GmailMessageBuilder struct {
	id      string
	from    string
	to      string
	subject string
	date    string
	body    string
	labels  []string
	snippet string
}

// NewGmailMessageBuilder creates a builder with sensible defaults
func NewGmailMessageBuilder(id string) *GmailMessageBuilder {
	return &GmailMessageBuilder{
		id:      id,
		from:    "Sender <sender@example.com>",
		to:      "me@example.com",
		subject: "Test Subject",
		date:    "Mon, 02 Jan 2006 15:04:05 -0700",
		body:    "This is a test email body.",
		labels:  []string{"INBOX"},
		snippet: "This is a test email...",
	}
}

// WithFrom sets the From header
func (b *GmailMessageBuilder) WithFrom(from string) *GmailMessageBuilder {
	b.from = from
	return b
}

// WithSubject sets the Subject header
func (b *GmailMessageBuilder) WithSubject(subject string) *GmailMessageBuilder {
	b.subject = subject
	return b
}

// WithDate sets the raw Date header value
func (b *GmailMessageBuilder) WithDate(date string) *GmailMessageBuilder {
	b.date = date
	return b
}

// WithBody sets the plain-text body
func (b *GmailMessageBuilder) WithBody(body string) *GmailMessageBuilder {
	b.body = body
	return b
}

// WithLabels sets the label IDs
func (b *GmailMessageBuilder) WithLabels(labels ...string) *GmailMessageBuilder {
	b.labels = labels
	return b
}

// Build returns the provider-shaped message
func (b *GmailMessageBuilder) Build() *gmail.Message {
	return &gmail.Message{
		Id:       b.id,
		Snippet:  b.snippet,
		LabelIds: b.labels,
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: b.from},
				{Name: "To", Value: b.to},
				{Name: "Subject", Value: b.subject},
				{Name: "Date", Value: b.date},
			},
			Body: &gmail.MessagePartBody{
				Data: base64.URLEncoding.EncodeToString([]byte(b.body)),
			},
		},
	}
}

// CreateMessages creates a slice of messages for a given user
func CreateMessages(userID string, count int) []models.Message {
	messages := make([]models.Message, count)
	for i := 0; i < count; i++ {
		messages[i] = NewMessageBuilder().
			WithID(fmt.Sprintf("msg-%d", i+1)).
			WithUserID(userID).
			WithFrom(generateFrom(i)).
			WithSubject(generateSubject(i)).
			WithDate(time.Now().UTC().Add(-time.Duration(i) * time.Hour)).
			BuildValue()
	}
	return messages
}

// CreateGmailMessages creates provider-shaped messages with sequential IDs
func CreateGmailMessages(count int) []*gmail.Message {
	messages := make([]*gmail.Message, count)
	for i := 0; i < count; i++ {
		messages[i] = NewGmailMessageBuilder(fmt.Sprintf("msg-%d", i+1)).
			WithFrom(generateFrom(i)).
			WithSubject(generateSubject(i)).
			Build()
	}
	return messages
}

// Helper functions for generating test data
func generateFrom(index int) string {
	froms := []string{
		"order-update@amazon.com",
		"no-reply@accounts.google.com",
		"notifications@github.com",
		"alerts@chase.com",
		"newsletter@example.com",
	}
	return froms[index%len(froms)]
}

func generateSubject(index int) string {
	subjects := []string{
		"Welcome to our service",
		"Your order confirmation",
		"Important update",
		"Newsletter",
		"Account notification",
	}
	return subjects[index%len(subjects)]
}
