package logger

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/courier/pkg/notify"
)

// RequestContextExtractor adds the channel and language of the request that
// triggered the email, as a "request" group.
func RequestContextExtractor() ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		rc, ok := notify.RequestContextFrom(ctx)
		if !ok {
			return slog.Attr{}, false
		}
		attrs := make([]any, 0, 2)
		if rc.Channel != "" {
			attrs = append(attrs, slog.String("channel", rc.Channel))
		}
		if rc.LanguageCode != "" {
			attrs = append(attrs, slog.String("language", rc.LanguageCode))
		}
		if len(attrs) == 0 {
			return slog.Attr{}, false
		}
		return slog.Group("request", attrs...), true
	}
}

// JobInfo identifies the queued job being processed.
type JobInfo struct {
	Type    string
	ID      string
	Queue   string
	Attempt int
}

type jobKey struct{}

// WithJob returns a copy of ctx carrying job, for JobExtractor.
func WithJob(ctx context.Context, job JobInfo) context.Context {
	return context.WithValue(ctx, jobKey{}, job)
}

// JobFrom returns the job stored in ctx, if any.
func JobFrom(ctx context.Context) (JobInfo, bool) {
	job, ok := ctx.Value(jobKey{}).(JobInfo)
	return job, ok
}

// JobExtractor adds the job set with WithJob as a "job" group.
func JobExtractor() ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		job, ok := JobFrom(ctx)
		if !ok {
			return slog.Attr{}, false
		}
		attrs := []any{slog.String("type", job.Type)}
		if job.ID != "" {
			attrs = append(attrs, slog.String("id", job.ID))
		}
		if job.Queue != "" {
			attrs = append(attrs, slog.String("queue", job.Queue))
		}
		if job.Attempt > 0 {
			attrs = append(attrs, slog.Int("attempt", job.Attempt))
		}
		return slog.Group("job", attrs...), true
	}
}

// DefaultExtractors returns the extractors used by courier workers.
func DefaultExtractors() []ContextExtractor {
	return []ContextExtractor{RequestContextExtractor(), JobExtractor()}
}
