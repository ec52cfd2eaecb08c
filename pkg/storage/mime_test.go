package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectMIME(t *testing.T) {
	t.Parallel()

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	tests := []struct {
		name     string
		filename string
		data     []byte
		want     string
	}{
		{"extension wins", "invoice.pdf", []byte("hello"), "application/pdf"},
		{"magic bytes without extension", "logo", png, "image/png"},
		{"unknown extension falls back to content", "logo.unknownext", png, "image/png"},
		{"plain text", "notes", []byte("hello world"), "text/plain; charset=utf-8"},
		{"empty", "blob", nil, MIMEOctetStream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, DetectMIME(tt.filename, tt.data))
		})
	}
}

func TestNormalizeMIME(t *testing.T) {
	t.Parallel()

	require.Equal(t, "text/plain", normalizeMIME("Text/Plain; charset=utf-8"))
	require.Equal(t, "image/png", normalizeMIME(" image/png "))
	require.Empty(t, normalizeMIME(""))
}

func TestMatchesMIME(t *testing.T) {
	t.Parallel()

	require.True(t, matchesMIME("image/png", attachableTypes))
	require.True(t, matchesMIME("IMAGE/JPEG; q=1", []string{"image/*"}))
	require.True(t, matchesMIME("text/csv; charset=utf-8", attachableTypes))
	require.False(t, matchesMIME("application/zip", attachableTypes))
	require.False(t, matchesMIME("imagex/png", []string{"image/*"}))
	require.False(t, matchesMIME("", []string{"*"}))
}
