package job

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/riverqueue/river"
)

// EnqueueOption adjusts how a single job is inserted.
type EnqueueOption func(*river.InsertOpts, *taskArgs)

// InQueue routes the job to a queue configured with WithQueue.
// An empty name keeps the default queue.
func InQueue(name string) EnqueueOption {
	return func(o *river.InsertOpts, _ *taskArgs) {
		if name != "" {
			o.Queue = name
		}
	}
}

// ScheduledIn delays the first attempt by d.
func ScheduledIn(d time.Duration) EnqueueOption {
	return func(o *river.InsertOpts, _ *taskArgs) {
		if d > 0 {
			o.ScheduledAt = time.Now().Add(d)
		}
	}
}

// MaxAttempts overrides the manager's attempt limit for this job.
func MaxAttempts(n int) EnqueueOption {
	return func(o *river.InsertOpts, _ *taskArgs) {
		if n > 0 {
			o.MaxAttempts = n
		}
	}
}

// UniqueKey drops the job when another job with the same task and key was
// inserted within period. A zero period or empty key disables the check.
//
//	manager.Enqueue(ctx, processor.TaskName, j,
//		job.UniqueKey(j.Type+":"+j.Recipient, time.Hour))
func UniqueKey(key string, period time.Duration) EnqueueOption {
	return func(o *river.InsertOpts, a *taskArgs) {
		if key == "" || period <= 0 {
			return
		}
		a.UniqueKey = key
		o.UniqueOpts = river.UniqueOpts{ByArgs: true, ByPeriod: period}
	}
}

// maxTagLen is River's limit on a single tag.
const maxTagLen = 255

// Tags labels the job in River's tables, for example with the email type.
// River accepts only word characters and inner dashes, so other runes become
// dashes. Tags shorter than three characters after that are dropped.
func Tags(tags ...string) EnqueueOption {
	return func(o *river.InsertOpts, _ *taskArgs) {
		for _, tag := range tags {
			if tag = normalizeTag(tag); tag != "" {
				o.Tags = append(o.Tags, tag)
			}
		}
	}
}

// normalizeTag maps tag onto River's tag format, \A[\w][\w\-]+[\w]\z with
// ASCII \w, or returns "" when nothing usable is left.
func normalizeTag(tag string) string {
	tag = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '-'
		}
	}, tag)
	if len(tag) > maxTagLen {
		tag = tag[:maxTagLen]
	}
	tag = strings.Trim(tag, "-")
	if len(tag) < 3 {
		return ""
	}
	return tag
}

// newInsert encodes payload and applies opts.
func newInsert(name string, payload any, opts ...EnqueueOption) (*taskArgs, *river.InsertOpts, error) {
	args := &taskArgs{TaskName: name}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		args.Payload = raw
	}

	insert := &river.InsertOpts{}
	for _, opt := range opts {
		opt(insert, args)
	}
	return args, insert, nil
}
