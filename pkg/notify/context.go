package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/text/language"
)

// RequestContext is a snapshot of the request that triggered an event.
// It is carried inside every Job so a worker in another process renders
// the email for the same channel and language.
type RequestContext struct {
	Extra        map[string]string `json:"extra,omitempty"`
	Channel      string            `json:"channel,omitempty"`
	LanguageCode string            `json:"languageCode,omitempty"`
	ActiveUserID string            `json:"activeUserId,omitempty"`
}

// ContextCarrier is implemented by events that carry their own request context.
// When an event implements it, the carried context wins over the one stored in ctx.
type ContextCarrier interface {
	RequestContext() RequestContext
}

type requestContextKey struct{}

// WithRequestContext returns a copy of ctx that carries rc.
func WithRequestContext(ctx context.Context, rc RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey{}, rc)
}

// RequestContextFrom returns the request context stored in ctx, if any.
func RequestContextFrom(ctx context.Context) (RequestContext, bool) {
	rc, ok := ctx.Value(requestContextKey{}).(RequestContext)
	return rc, ok
}

// Language returns the parsed language tag, or language.Und when the code is empty or malformed.
func (rc RequestContext) Language() language.Tag {
	if rc.LanguageCode == "" {
		return language.Und
	}
	tag, err := language.Parse(rc.LanguageCode)
	if err != nil {
		return language.Und
	}
	return tag
}

// Validate reports whether the language code is a well-formed BCP 47 tag.
func (rc RequestContext) Validate() error {
	if rc.LanguageCode == "" {
		return nil
	}
	if _, err := language.Parse(rc.LanguageCode); err != nil {
		return fmt.Errorf("%w: language %q: %v", ErrInvalidContext, rc.LanguageCode, err)
	}
	return nil
}

// EncodeRequestContext returns the wire form of rc stored in Job.Ctx.
func EncodeRequestContext(rc RequestContext) (json.RawMessage, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContext, err)
	}
	return data, nil
}

// DecodeRequestContext restores a request context from its wire form.
// An empty or null payload yields the zero context.
func DecodeRequestContext(raw json.RawMessage) (RequestContext, error) {
	var rc RequestContext
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return rc, nil
	}
	if err := json.Unmarshal(trimmed, &rc); err != nil {
		return RequestContext{}, fmt.Errorf("%w: %v", ErrInvalidContext, err)
	}
	if err := rc.Validate(); err != nil {
		return RequestContext{}, err
	}
	return rc, nil
}
