// Package devmailbox is the development mailbox: a small web UI over the
// directory the file transport writes to.
//
//	mb := devmailbox.New(file.NewOutbox(cfg.OutputPath), "/mailbox")
//	r.Mount(mb.Route(), mb.Routes())
//
// Structured (.json) messages are previewed with their HTML body sanitized by
// bluemonday and rendered in a sandboxed iframe. Raw (.eml) messages are shown
// as text. POST {route}/prune removes messages older than ?older_than.
package devmailbox
