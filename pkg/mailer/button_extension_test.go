package mailer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
)

func convertMarkdown(t *testing.T, source string, style ...ButtonStyle) string {
	t.Helper()

	md := goldmark.New(goldmark.WithExtensions(NewButtonExtension(style...)))
	var buf bytes.Buffer
	require.NoError(t, md.Convert([]byte(source), &buf))
	return buf.String()
}

func TestButtonExtension_RendersStyledLink(t *testing.T) {
	t.Parallel()

	out := convertMarkdown(t, "# Welcome\n\nPlease verify:\n\n[!button|Verify Email](https://example.com/verify?token=a&b=c)\n\nThanks!")

	require.Contains(t, out, "<h1>Welcome</h1>")
	require.Contains(t, out, `<a href="https://example.com/verify?token=a&amp;b=c" class="btn"`)
	require.Contains(t, out, "background-color:#2563eb")
	require.Contains(t, out, ">Verify Email</a>")
	require.Contains(t, out, "Thanks!")
}

func TestButtonExtension_CustomStyle(t *testing.T) {
	t.Parallel()

	out := convertMarkdown(t, "[!button|Go](https://example.com)", ButtonStyle{Background: "#000", Color: "#fff", Radius: "0"})
	require.Contains(t, out, "background-color:#000;color:#fff;border-radius:0;")
}

func TestButtonExtension_EscapesLabelAndRejectsScriptURLs(t *testing.T) {
	t.Parallel()

	out := convertMarkdown(t, `[!button|<script>alert("x")</script>](javascript:alert(1))`)

	require.NotContains(t, out, "<script>")
	require.Contains(t, out, "&lt;script&gt;")
	require.Contains(t, out, `href="#"`)
}

func TestButtonExtension_LeavesOtherSyntaxAlone(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"regular link":    "[Click](https://example.com)",
		"missing url":     "[!button|Click]",
		"unclosed label":  "[!button|Click(https://example.com)",
		"unclosed url":    "[!button|Click](https://example.com",
		"space before url": "[!button|Click] (https://example.com)",
	}
	for name, source := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			require.NotContains(t, convertMarkdown(t, source), `class="btn"`)
		})
	}
}

func TestButtonExtension_MultipleButtons(t *testing.T) {
	t.Parallel()

	out := convertMarkdown(t, "[!button|Accept](https://example.com/accept) [!button|Decline](https://example.com/decline)")
	require.Equal(t, 2, bytes.Count([]byte(out), []byte(`class="btn"`)))
}

func TestButtonNode_Kind(t *testing.T) {
	t.Parallel()

	node := &ButtonNode{URL: []byte("https://example.com"), Label: []byte("Go")}
	require.Equal(t, KindButton, node.Kind())
}
