package storage

import (
	"mime"
	"net/http"
	"path/filepath"
	"slices"
	"strings"
)

// MIMEOctetStream is the type of content nothing else could be detected for.
const MIMEOctetStream = "application/octet-stream"

// sniffLen is how much of the content http.DetectContentType looks at.
const sniffLen = 512

var attachableTypes = []string{
	"image/*",
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"text/plain",
	"text/csv",
	"text/calendar",
}

// DetectMIME returns the MIME type of an attachment named name. A known
// extension wins; otherwise the first bytes of data decide.
func DetectMIME(name string, data []byte) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	if len(data) == 0 {
		return MIMEOctetStream
	}
	return http.DetectContentType(data[:min(len(data), sniffLen)])
}

// normalizeMIME lowercases t and drops parameters such as charset.
func normalizeMIME(t string) string {
	t, _, _ = strings.Cut(t, ";")
	return strings.ToLower(strings.TrimSpace(t))
}

func matchesMIME(t string, patterns []string) bool {
	t = normalizeMIME(t)
	return slices.ContainsFunc(patterns, func(p string) bool {
		p = normalizeMIME(p)
		if family, ok := strings.CutSuffix(p, "*"); ok && strings.HasSuffix(family, "/") {
			return strings.HasPrefix(t, family)
		}
		return t == p
	})
}
