package mailsync

import (
	"encoding/base64"
	"net/mail"
	"strings"
	"time"

	"github.com/inboxpilot/inboxpilot-backend/internal/models"
	"google.golang.org/api/gmail/v1"
)

// Normalize converts a raw provider message into the stored record shape.
// It is a pure function: the same input always yields the same output, and
// malformed fields degrade to zero values rather than errors.
func Normalize(userID string, msg *gmail.Message) models.Message {
	var headers []*gmail.MessagePartHeader
	if msg.Payload != nil {
		headers = msg.Payload.Headers
	}

	var date *time.Time
	if raw := headerValue(headers, "date"); raw != "" {
		if parsed, err := mail.ParseDate(raw); err == nil {
			date = &parsed
		}
	}

	return models.Message{
		ID:       msg.Id,
		UserID:   userID,
		From:     extractAddress(headerValue(headers, "from")),
		To:       headerValue(headers, "to"),
		Subject:  headerValue(headers, "subject"),
		Snippet:  msg.Snippet,
		Body:     decodeBody(msg.Payload),
		Date:     date,
		LabelIDs: models.StringList(msg.LabelIds),
	}
}

// headerValue returns the first header whose name matches case-insensitively.
func headerValue(headers []*gmail.MessagePartHeader, name string) string {
	for _, h := range headers {
		if h != nil && strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// extractAddress pulls the bare address out of an RFC 5322 From header,
// preferring the angle-bracket form ("Name <a@b.com>" yields "a@b.com").
func extractAddress(fromHeader string) string {
	if start := strings.Index(fromHeader, "<"); start >= 0 {
		if end := strings.Index(fromHeader[start:], ">"); end > 1 {
			return fromHeader[start+1 : start+end]
		}
	}
	return strings.TrimSpace(fromHeader)
}

// decodeBody extracts the message body: the top-level body when present,
// otherwise the non-empty part payloads joined with newlines.
func decodeBody(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}
	if payload.Body != nil && payload.Body.Data != "" {
		return decodeBase64URL(payload.Body.Data)
	}

	var parts []string
	for _, part := range payload.Parts {
		if part == nil || part.Body == nil || part.Body.Data == "" {
			continue
		}
		if decoded := decodeBase64URL(part.Body.Data); decoded != "" {
			parts = append(parts, decoded)
		}
	}
	return strings.Join(parts, "\n")
}

// decodeBase64URL decodes the provider's base64url payload encoding.
// Undecodable data degrades to the empty string.
func decodeBase64URL(data string) string {
	normalized := strings.ReplaceAll(data, "-", "+")
	normalized = strings.ReplaceAll(normalized, "_", "/")
	decoded, err := base64.StdEncoding.DecodeString(normalized)
	if err != nil {
		// Tolerate payloads that arrive without padding.
		decoded, err = base64.RawStdEncoding.DecodeString(normalized)
		if err != nil {
			return ""
		}
	}
	return string(decoded)
}
