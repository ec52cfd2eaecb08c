// Package delivery sends prepared emails through a transport.Config.
//
// Sender.Send switches over the transport variants: None discards, Testing
// calls its callback synchronously, File writes to disk and the remaining
// variants delegate to the provider packages under pkg/mailer. API clients
// (SES, Resend, Postmark, Mailgun) are cached per configuration fingerprint,
// so dynamic transports reuse connections.
package delivery
