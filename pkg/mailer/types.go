package mailer

import (
	"fmt"
	"strings"
)

// Tags represents email tags/categories that can be either presence-only
// (using struct{}{}) or key-value pairs (using string values).
//   - Postmark: uses the first tag name
//   - Mailgun: uses tag names
//   - Resend: uses name-value pairs (presence-only tags become name="true")
type Tags map[string]any

// SimpleTags creates presence-only tags from a list of tag names.
func SimpleTags(names ...string) Tags {
	t := make(Tags, len(names))
	for _, n := range names {
		t[n] = struct{}{}
	}
	return t
}

// Recipient formats a name and email into RFC 5322 address format.
// Returns "Name <email>" if name is provided, otherwise just email.
func Recipient(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// SplitAddresses splits a comma separated address list, dropping empty entries.
func SplitAddresses(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Generated is the output of a Generator.
type Generated struct {
	From    string
	Subject string
	HTML    string
	Text    string
}

// Email represents a fully-prepared email message ready for sending.
type Email struct {
	Headers     map[string]string // Custom headers
	Tags        Tags              // Provider-specific tags/categories
	Subject     string            // Email subject
	HTML        string            // HTML body content
	Text        string            // Plain text alternative
	From        string            // Sender address; providers may apply a default
	ReplyTo     string            // Reply-to address
	To          []string          // Recipients (at least one required)
	CC          []string          // Carbon copy recipients
	BCC         []string          // Blind carbon copy recipients
	Attachments []Attachment      // File attachments
}

// Validate checks the fields every transport relies on.
func (e *Email) Validate() error {
	if e == nil || len(e.To) == 0 {
		return ErrNoRecipient
	}
	if strings.TrimSpace(e.Subject) == "" {
		return ErrNoSubject
	}
	if e.HTML == "" && e.Text == "" {
		return ErrNoContent
	}
	return nil
}

// Recipients returns every envelope recipient: To, CC and BCC.
func (e *Email) Recipients() []string {
	out := make([]string, 0, len(e.To)+len(e.CC)+len(e.BCC))
	out = append(out, e.To...)
	out = append(out, e.CC...)
	return append(out, e.BCC...)
}

// String returns a short description safe for logs.
func (e *Email) String() string {
	return fmt.Sprintf("email to=%v subject=%q attachments=%d", e.To, e.Subject, len(e.Attachments))
}

// Attachment represents an email attachment.
type Attachment struct {
	Filename    string // Display name for the attachment
	ContentType string // MIME type (e.g., "application/pdf")
	ContentID   string // Optional Content-ID for inline attachments
	Content     []byte // Raw file content
}
