package remote

import (
	"bytes"
	"encoding/json"
	"errors"
)

// Result is the uniform outcome of a call. Transport failures never surface
// as Go errors: they set Err and leave Body empty, so callers detect failure
// by the absence of the domain field they expected.
type Result struct {
	Status int
	Body   json.RawMessage
	Err    string
}

// Failed reports a transport-level failure.
func (r Result) Failed() bool {
	return r.Err != ""
}

// Unauthorized reports an HTTP 401.
func (r Result) Unauthorized() bool {
	return r.Status == 401
}

// IsArray reports whether the body is a JSON array.
func (r Result) IsArray() bool {
	b := bytes.TrimSpace(r.Body)
	return len(b) > 0 && b[0] == '['
}

// Decode unmarshals the body into v.
func (r Result) Decode(v any) error {
	if r.Failed() {
		return errors.New(r.Err)
	}
	return json.Unmarshal(r.Body, v)
}

// Has reports whether the body is an object carrying a non-null field.
func (r Result) Has(field string) bool {
	raw, ok := r.fields()[field]
	return ok && !isNull(raw)
}

// Field decodes one field of an object body into dst. It returns false when
// the field is absent, null or of the wrong type.
func (r Result) Field(field string, dst any) bool {
	raw, ok := r.fields()[field]
	if !ok || isNull(raw) {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// ErrorMessage returns the transport failure, or the body's "error" field,
// or "" when the call carries no error.
func (r Result) ErrorMessage() string {
	if r.Failed() {
		return r.Err
	}
	var msg string
	if r.Field("error", &msg) {
		return msg
	}
	if r.Has("error") {
		return string(r.fields()["error"])
	}
	return ""
}

// Message returns the body's "message" field, if any.
func (r Result) Message() string {
	var msg string
	r.Field("message", &msg)
	return msg
}

func (r Result) fields() map[string]json.RawMessage {
	if r.Failed() {
		return nil
	}
	b := bytes.TrimSpace(r.Body)
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	return m
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
