// Package logger builds the slog loggers used across courier.
//
// Loggers write JSON (or text) to stdout and, when a Sentry DSN is configured,
// fan out to Sentry: error records become issues, warnings are kept as logs.
// A ContextHandler runs ContextExtractors on every record, so values
// stored in the context show up without being passed explicitly:
//
//	log, err := logger.New(cfg.Logger, logger.DefaultExtractors()...)
//	if err != nil {
//		return err
//	}
//
//	ctx = logger.WithJob(ctx, logger.JobInfo{Type: "order-confirmation", ID: "42", Attempt: 1})
//	log.ErrorContext(ctx, "email not sent", slog.String("stage", "send"))
//	// {"level":"ERROR","msg":"email not sent","stage":"send","job":{"type":"order-confirmation","id":"42","attempt":1}}
//
// RequestContextExtractor adds the channel and language of the notify.RequestContext
// in the context. Rendered bodies and transport credentials are never logged by
// these extractors.
//
// # Configuration
//
//	LOG_LEVEL             - debug, info, warn or error (default: info)
//	LOG_FORMAT            - json or text (default: json)
//	SENTRY_DSN            - enables Sentry when set
//	SENTRY_ENVIRONMENT    - Sentry environment (default: production)
//	SENTRY_RELEASE        - Sentry release
//	SENTRY_MIN_LEVEL      - WARN keeps warnings as Sentry logs, ERROR only errors (default: WARN)
//
// Register Shutdown as a shutdown hook to flush Sentry before exit.
package logger
