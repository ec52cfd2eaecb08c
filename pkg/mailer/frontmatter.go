package mailer

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

var frontmatterDelimiter = []byte("---")

// Template is a template source split into its YAML frontmatter and body.
type Template struct {
	Metadata map[string]any
	Body     string
}

// String returns a metadata value as a string, or "" when absent.
// Keys are matched case-insensitively.
func (t *Template) String(key string) string {
	for k, v := range t.Metadata {
		if strings.EqualFold(k, key) {
			if s, ok := v.(string); ok {
				return s
			}
			return fmt.Sprint(v)
		}
	}
	return ""
}

// ParseTemplate splits content into frontmatter metadata and body.
// Content that does not open with a "---" line has no frontmatter.
func ParseTemplate(content []byte) (*Template, error) {
	first, rest, more := cutLine(content)
	if !bytes.Equal(first, frontmatterDelimiter) {
		return &Template{Metadata: make(map[string]any), Body: string(content)}, nil
	}
	if !more || len(rest) == 0 {
		return nil, fmt.Errorf("%w: no content after opening delimiter", ErrInvalidFrontmatter)
	}

	var header bytes.Buffer
	var body []byte
	for {
		line, next, more := cutLine(rest)
		if bytes.Equal(line, frontmatterDelimiter) {
			body = next
			break
		}
		if !more {
			return nil, fmt.Errorf("%w: closing delimiter not found", ErrInvalidFrontmatter)
		}
		header.Write(line)
		header.WriteByte('\n')
		rest = next
	}

	metadata := make(map[string]any)
	if len(bytes.TrimSpace(header.Bytes())) > 0 {
		if err := yaml.Unmarshal(header.Bytes(), &metadata); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
		}
	}

	return &Template{Metadata: metadata, Body: string(body)}, nil
}

// cutLine returns the first line without its line ending, the remainder,
// and whether a line ending was found.
func cutLine(b []byte) (line, rest []byte, more bool) {
	line, rest, more = bytes.Cut(b, []byte{'\n'})
	return bytes.TrimSuffix(line, []byte{'\r'}), rest, more
}
