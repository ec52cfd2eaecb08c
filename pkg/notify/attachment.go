package notify

import (
	"encoding/base64"
	"fmt"
	"mime"
	"path"
	"path/filepath"
	"strings"
)

// EncodingBase64 marks inline attachment content encoded with standard base64.
const EncodingBase64 = "base64"

// Attachment is returned by a definition's attachment resolver.
// Exactly one of Path or Content must be set. Path may be a local file,
// a file:// URL, an http(s):// URL or an s3://bucket/key reference.
type Attachment struct {
	Filename    string
	Path        string
	ContentType string
	ContentID   string
	Content     []byte
}

// SerializedAttachment is the wire form of an attachment inside a Job.
type SerializedAttachment struct {
	Filename    string `json:"filename"`
	Path        string `json:"path,omitempty"`
	Content     string `json:"content,omitempty"`
	Encoding    string `json:"encoding,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	ContentID   string `json:"cid,omitempty"`
}

// IsInline reports whether the content travels inside the job.
func (a SerializedAttachment) IsInline() bool {
	return a.Path == ""
}

// DecodeContent returns the inline content bytes.
func (a SerializedAttachment) DecodeContent() ([]byte, error) {
	switch strings.ToLower(a.Encoding) {
	case "":
		return []byte(a.Content), nil
	case EncodingBase64:
		data, err := base64.StdEncoding.DecodeString(a.Content)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidAttachment, a.Filename, err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: %s: unsupported encoding %q", ErrInvalidAttachment, a.Filename, a.Encoding)
	}
}

// SerializeAttachments converts resolver output into its wire form.
// Content is always base64 encoded so binary data survives JSON.
func SerializeAttachments(atts []Attachment) ([]SerializedAttachment, error) {
	out := make([]SerializedAttachment, 0, len(atts))
	for i, a := range atts {
		hasPath := a.Path != ""
		hasContent := a.Content != nil
		if hasPath == hasContent {
			return nil, fmt.Errorf("%w: attachment %d must have exactly one of path or content", ErrInvalidAttachment, i)
		}

		name := a.Filename
		if name == "" && hasPath {
			name = path.Base(strings.TrimPrefix(a.Path, "file://"))
		}
		if name == "" || name == "." || name == "/" {
			return nil, fmt.Errorf("%w: attachment %d has no filename", ErrInvalidAttachment, i)
		}

		contentType := a.ContentType
		if contentType == "" {
			contentType = mime.TypeByExtension(filepath.Ext(name))
		}

		s := SerializedAttachment{
			Filename:    name,
			Path:        a.Path,
			ContentType: contentType,
			ContentID:   a.ContentID,
		}
		if hasContent {
			s.Content = base64.StdEncoding.EncodeToString(a.Content)
			s.Encoding = EncodingBase64
		}
		out = append(out, s)
	}
	return out, nil
}
