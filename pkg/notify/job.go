package notify

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"
)

// Job is the serializable description of one email to render and send.
// It crosses the queue boundary, so every field is plain data and the
// processor never needs the original event.
type Job struct {
	TemplateVars map[string]any         `json:"templateVars"`
	Ctx          json.RawMessage        `json:"ctx"`
	Type         string                 `json:"type"`
	From         string                 `json:"from"`
	Recipient    string                 `json:"recipient"`
	Subject      string                 `json:"subject"`
	TemplateFile string                 `json:"templateFile"`
	CC           string                 `json:"cc,omitempty"`
	BCC          string                 `json:"bcc,omitempty"`
	ReplyTo      string                 `json:"replyTo,omitempty"`
	Attachments  []SerializedAttachment `json:"attachments"`
}

// UnmarshalJSON decodes numbers in template vars as json.Number,
// so minor-unit amounts and identifiers keep their exact value.
func (j *Job) UnmarshalJSON(data []byte) error {
	type wire Job
	var w wire
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&w); err != nil {
		return err
	}
	*j = Job(w)
	return nil
}

// RequestContext decodes the embedded request context.
func (j Job) RequestContext() (RequestContext, error) {
	return DecodeRequestContext(j.Ctx)
}

// TemplateName returns the template reference, falling back to the job type.
func (j Job) TemplateName() string {
	if j.TemplateFile != "" {
		return j.TemplateFile
	}
	return j.Type
}

// Clone returns a deep copy of the job.
func (j Job) Clone() Job {
	c := j
	c.Ctx = slices.Clone(j.Ctx)
	c.TemplateVars = cloneMap(j.TemplateVars)
	c.Attachments = slices.Clone(j.Attachments)
	return c
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// plainData reduces vars to JSON-shaped values: maps, slices, strings,
// bools, json.Number and nil. Derived values survive only when the source
// type exposes them through its JSON encoding.
func plainData(vars map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(vars)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// mergeVars layers maps left to right; later keys win.
func mergeVars(layers ...map[string]any) map[string]any {
	out := make(map[string]any)
	for _, layer := range layers {
		maps.Copy(out, layer)
	}
	return out
}
