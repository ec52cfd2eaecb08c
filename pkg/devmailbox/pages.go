package devmailbox

import (
	_ "embed"
	"html/template"
	"time"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/courier/pkg/mailer/file"
)

//go:embed pages.html
var pagesHTML string

var pages = template.Must(template.New("pages").Funcs(template.FuncMap{
	"date": formatDate,
}).Parse(pagesHTML))

func page(name string, data any) templ.Component {
	return templ.FromGoHTML(pages.Lookup(name), data)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

type listEntry struct {
	Date      time.Time
	Recipient string
	Subject   string
	Format    string
	URL       string
}

func listPage(m *Mailbox, entries []file.Entry) templ.Component {
	rows := make([]listEntry, 0, len(entries))
	for _, e := range entries {
		format := "json"
		if e.Raw {
			format = "eml"
		}
		rows = append(rows, listEntry{
			Date:      e.Date,
			Recipient: e.Recipient,
			Subject:   e.Subject,
			Format:    format,
			URL:       m.link(e.Name),
		})
	}
	return page("list", struct {
		Dir      string
		PruneURL string
		Entries  []listEntry
	}{m.outbox.Dir(), m.link("prune"), rows})
}

// recordPage shows a structured message. body must already be sanitized; it
// is rendered inside a sandboxed iframe.
func recordPage(m *Mailbox, name string, rec file.Record, body string) templ.Component {
	return page("record", struct {
		Record file.Record
		Body   string
		Home   string
		RawURL string
	}{rec, body, m.home(), m.link(name, "raw")})
}

func rawPage(m *Mailbox, name, content string) templ.Component {
	return page("raw", struct {
		Name    string
		Content string
		Home    string
		RawURL  string
	}{name, content, m.home(), m.link(name, "raw")})
}
