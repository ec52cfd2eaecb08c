package mailer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlainText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "paragraphs",
			html: "<p>Hello <strong>Ann</strong>,</p><p>Your order shipped.</p>",
			want: "Hello Ann,\nYour order shipped.",
		},
		{
			name: "entities",
			html: "<p>Tom &amp; Jerry&#39;s &lt;shop&gt;</p>",
			want: "Tom & Jerry's <shop>",
		},
		{
			name: "links keep their target",
			html: `<p>Visit <a href="https://example.com/a?x=1&amp;y=2">our shop</a></p>`,
			want: "Visit our shop (https://example.com/a?x=1&y=2)",
		},
		{
			name: "head and style removed",
			html: "<html><head><title>T</title><style>p{color:red}</style></head><body><h1>Title</h1>\n\n\n\n<p>Body</p></body></html>",
			want: "Title\n\nBody",
		},
		{
			name: "line breaks",
			html: "Line one<br>Line two<br/>Line three",
			want: "Line one\nLine two\nLine three",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, PlainText(tt.html))
		})
	}
}
