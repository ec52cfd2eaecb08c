// Package transport describes where rendered emails go.
//
// A transport is one of the variants SMTP, Sendmail, File, SES, Resend,
// Postmark, Mailgun, None and Testing. Config is sealed, so a type switch over
// these variants is exhaustive.
//
// A Resolver yields the transport for each job from a Source:
//
//	r := transport.NewResolver(transport.Static(transport.SMTP{Config: smtpCfg}))
//
//	r := transport.NewResolver(transport.Dynamic(func(ctx context.Context) (transport.Config, error) {
//		if notify.RequestContextFrom(ctx).Channel == "b2b" {
//			return transport.Postmark{Config: b2b}, nil
//		}
//		return transport.SMTP{Config: smtpCfg}, nil
//	}))
//
// In dev mode the resolver always returns a File transport and logs a warning
// when it replaces a different one:
//
//	r := transport.NewResolver(src, transport.WithDevMode("./var/mail"), transport.WithLogger(log))
//
// EnvConfig builds a transport from MAIL_TRANSPORT and provider specific
// variables (SMTP_*, SENDMAIL_*, FILE_*, SES_*, RESEND_*, POSTMARK_*, MAILGUN_*).
package transport
