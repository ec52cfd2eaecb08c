// Package templatestore loads email template bodies and partials.
//
// Templates are named and exist per channel and language. A lookup prefers the
// requested channel, falling back to DefaultChannel, then picks the best
// translation for the requested language (BCP 47 matching) with a configurable
// fallback language. Only active templates and partials are served; a missing
// template is ErrNotFound, never an empty body.
//
// Backends:
//
//   - Memory: in-process, filled with PutTemplate/PutPartial
//   - LoadFS: a Memory filled from an fs.FS (embedded defaults, a directory)
//   - Postgres: email_templates / email_partials tables with translations;
//     apply Migrations with db.Migrate first
//   - Cached: caches template bodies of any Store in a MemoryCache or
//     RedisCache; partials always come from the wrapped store
//
// Example:
//
//	store, err := templatestore.LoadFS(os.DirFS("templates"))
//	if err != nil {
//		return err
//	}
//	body, err := store.Template(ctx, templatestore.RefFor(ctx, job.TemplateName()))
package templatestore
