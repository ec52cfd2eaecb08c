package mailer

import (
	"bytes"
	"fmt"

	"github.com/wneessen/go-mail"
)

// BuildMessage converts an Email into a MIME message. It is shared by every
// transport that speaks raw MIME: SMTP, sendmail, SES and .eml files.
func BuildMessage(email *Email) (*mail.Msg, error) {
	if err := email.Validate(); err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if email.From != "" {
		if err := msg.From(email.From); err != nil {
			return nil, fmt.Errorf("invalid from address: %w", err)
		}
	}
	if err := msg.To(email.To...); err != nil {
		return nil, fmt.Errorf("invalid to address: %w", err)
	}
	if len(email.CC) > 0 {
		if err := msg.Cc(email.CC...); err != nil {
			return nil, fmt.Errorf("invalid cc address: %w", err)
		}
	}
	if len(email.BCC) > 0 {
		if err := msg.Bcc(email.BCC...); err != nil {
			return nil, fmt.Errorf("invalid bcc address: %w", err)
		}
	}
	if email.ReplyTo != "" {
		if err := msg.ReplyTo(email.ReplyTo); err != nil {
			return nil, fmt.Errorf("invalid reply-to address: %w", err)
		}
	}

	msg.Subject(email.Subject)
	msg.SetDate()
	msg.SetMessageID()

	switch {
	case email.HTML != "" && email.Text != "":
		msg.SetBodyString(mail.TypeTextPlain, email.Text)
		msg.AddAlternativeString(mail.TypeTextHTML, email.HTML)
	case email.HTML != "":
		msg.SetBodyString(mail.TypeTextHTML, email.HTML)
	default:
		msg.SetBodyString(mail.TypeTextPlain, email.Text)
	}

	for key, value := range email.Headers {
		msg.SetGenHeader(mail.Header(key), value)
	}

	for _, att := range email.Attachments {
		var opts []mail.FileOption
		if att.ContentType != "" {
			opts = append(opts, mail.WithFileContentType(mail.ContentType(att.ContentType)))
		}
		if att.ContentID != "" {
			opts = append(opts, mail.WithFileContentID(att.ContentID))
			if err := msg.EmbedReader(att.Filename, bytes.NewReader(att.Content), opts...); err != nil {
				return nil, fmt.Errorf("failed to embed file %s: %w", att.Filename, err)
			}
			continue
		}
		if err := msg.AttachReader(att.Filename, bytes.NewReader(att.Content), opts...); err != nil {
			return nil, fmt.Errorf("failed to attach file %s: %w", att.Filename, err)
		}
	}

	return msg, nil
}

// RawMessage renders the email as RFC 5322 bytes.
func RawMessage(email *Email) ([]byte, error) {
	msg, err := BuildMessage(email)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write message: %w", err)
	}
	return buf.Bytes(), nil
}
