// Package mailer renders emails and defines the provider-facing email model.
//
// # Architecture
//
// The package consists of three parts:
//
//   - Generator: renders the sender, subject and body templates of a job
//   - Email: the fully prepared message handed to a transport
//   - Sender: the interface provider packages implement (smtp, sendmail,
//     file, ses, resend, postmark, mailgun)
//
// BuildMessage turns an Email into a MIME message for transports that speak
// raw MIME.
//
// # Rendering
//
// TemplateGenerator renders the sender and subject with text/template and the
// body with html/template:
//
//	gen := mailer.NewTemplateGenerator(
//		mailer.WithPartials(store),
//		mailer.WithLayout(templates.FS, "layouts/base.html"),
//	)
//	if err := gen.OnInit(ctx); err != nil {
//		return err
//	}
//
//	out, err := gen.Generate(ctx,
//		"{{ .fromAddress }}",
//		"Order confirmation for #{{ .order.code }}",
//		body,
//		vars,
//	)
//
// With WithBodyFormat(FormatMarkdown) the body is a markdown template, and
// buttons can be written as:
//
//	[!button|Track your order]({{ .trackingURL }})
//
// Partials are fetched before every render. When the fetched set differs from
// the one in use, it is parsed once and swapped in atomically; each render
// executes its own clone of the parsed set.
//
// # Helpers
//
// Every template can use:
//
//	{{ formatDate .order.placedAt "mediumDate" }}   Mar 5, 2024
//	{{ formatDate .order.placedAt "dd.mm.yyyy" }}   05.03.2024
//	{{ formatMoney .order.total }}                  25.50 for 2550
//
// Both return a nil argument unchanged.
//
// # Email Tags
//
// The Email type supports provider-specific tags for categorization:
//
//	email := &mailer.Email{
//		To:      []string{"user@example.com"},
//		Subject: "Welcome",
//		HTML:    "<p>Hello!</p>",
//		Tags:    mailer.SimpleTags("welcome", "onboarding"),
//	}
//
// # Errors
//
//   - ErrNoRecipient, ErrNoSubject, ErrNoContent: invalid Email
//   - ErrConfiguration: OnInit failed (layout or partials)
//   - ErrLayoutNotFound: layout file not found
//   - ErrRenderFailed: template rendering failed
//   - ErrSendFailed: email sending failed
//   - ErrInvalidFrontmatter: invalid YAML frontmatter
//   - ErrUnsupportedValue: a helper received a value it cannot format
package mailer
