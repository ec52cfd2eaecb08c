package mailer

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindButton is the node kind for ButtonNode.
var KindButton = ast.NewNodeKind("Button")

// buttonPrefix is the syntax prefix that triggers button parsing: [!button|Label](URL).
var buttonPrefix = []byte("[!button|")

// ButtonNode represents a call-to-action link in the AST.
type ButtonNode struct {
	ast.BaseInline
	URL   []byte
	Label []byte
}

func (n *ButtonNode) Kind() ast.NodeKind {
	return KindButton
}

func (n *ButtonNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"URL":   string(n.URL),
		"Label": string(n.Label),
	}, nil)
}

// ButtonStyle controls the inline styles of rendered buttons.
// Email clients ignore stylesheets, so every rule is inlined.
type ButtonStyle struct {
	Background string
	Color      string
	Radius     string
}

// DefaultButtonStyle is used when no style is configured.
var DefaultButtonStyle = ButtonStyle{
	Background: "#2563eb",
	Color:      "#ffffff",
	Radius:     "6px",
}

type buttonParser struct{}

func (p *buttonParser) Trigger() []byte {
	return []byte{'['}
}

func (p *buttonParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if !bytes.HasPrefix(line, buttonPrefix) {
		return nil
	}

	rest := line[len(buttonPrefix):]
	labelEnd := bytes.IndexByte(rest, ']')
	if labelEnd < 0 || labelEnd+1 >= len(rest) || rest[labelEnd+1] != '(' {
		return nil
	}
	urlPart := rest[labelEnd+2:]
	urlEnd := bytes.IndexByte(urlPart, ')')
	if urlEnd < 0 {
		return nil
	}

	block.Advance(len(buttonPrefix) + labelEnd + 2 + urlEnd + 1)
	return &ButtonNode{
		Label: bytes.TrimSpace(rest[:labelEnd]),
		URL:   bytes.TrimSpace(urlPart[:urlEnd]),
	}
}

type buttonRenderer struct {
	style ButtonStyle
}

func (r *buttonRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindButton, r.render)
}

func (r *buttonRenderer) render(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ButtonNode)

	href := n.URL
	if html.IsDangerousURL(href) {
		href = []byte("#")
	}

	_, _ = w.WriteString(`<a href="`)
	_, _ = w.Write(util.EscapeHTML(util.URLEscape(href, false)))
	_, _ = fmt.Fprintf(w,
		`" class="btn" target="_blank" style="display:inline-block;padding:12px 24px;background-color:%s;color:%s;border-radius:%s;font-weight:600;text-decoration:none;">`,
		r.style.Background, r.style.Color, r.style.Radius,
	)
	_, _ = w.Write(util.EscapeHTML(n.Label))
	_, _ = w.WriteString(`</a>`)
	return ast.WalkContinue, nil
}

type buttonExtension struct {
	style ButtonStyle
}

func (e *buttonExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(&buttonParser{}, 50),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&buttonRenderer{style: e.style}, 50),
	))
}

// NewButtonExtension returns a goldmark extension rendering [!button|Label](URL)
// as an inline-styled call-to-action link.
func NewButtonExtension(style ...ButtonStyle) goldmark.Extender {
	s := DefaultButtonStyle
	if len(style) > 0 {
		s = style[0]
	}
	return &buttonExtension{style: s}
}
