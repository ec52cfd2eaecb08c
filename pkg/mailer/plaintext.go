package mailer

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicy = bluemonday.StrictPolicy()

	blockEnd   = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|table|blockquote|pre)>|<br\s*/?>`)
	linkTag    = regexp.MustCompile(`(?is)<a\s[^>]*href="([^"]+)"[^>]*>(.*?)</a>`)
	styleBlock = regexp.MustCompile(`(?is)<(style|script|head)[^>]*>.*?</(style|script|head)>`)
	blankLines = regexp.MustCompile(`\n[ \t]*\n(\s*\n)+`)
	spaceRuns  = regexp.MustCompile(`[ \t]+`)
)

// PlainText derives the plain-text alternative of an HTML body.
// Links keep their target as "label (url)" and block elements end lines.
func PlainText(body string) string {
	s := styleBlock.ReplaceAllString(body, "")
	s = linkTag.ReplaceAllStringFunc(s, func(m string) string {
		parts := linkTag.FindStringSubmatch(m)
		label := strings.TrimSpace(textPolicy.Sanitize(parts[2]))
		href := html.UnescapeString(parts[1])
		if label == "" || label == href || href == "#" {
			return label
		}
		return label + " (" + href + ")"
	})
	s = blockEnd.ReplaceAllString(s, "\n")
	s = html.UnescapeString(textPolicy.Sanitize(s))

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRuns.ReplaceAllString(line, " "))
	}
	s = strings.Join(lines, "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
