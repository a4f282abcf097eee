package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/ytget/stockdesk/internal/apperr"
	"github.com/ytget/stockdesk/internal/model"
)

// Envelope is the normalized form of a backend JSON response. The backend
// reports payloads under "data" or a resource-specific key and messages under
// "message" or "error"; callers never look at the raw shape.
type Envelope struct {
	Success bool
	Message string
	// Data is nil whenever Success is false.
	Data   json.RawMessage
	fields map[string]json.RawMessage
}

// DecodeEnvelope parses a response body. A bare JSON array is accepted as a
// successful payload. A missing success flag counts as success unless an
// "error" key is present.
func DecodeEnvelope(body []byte) (*Envelope, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, apperr.Decode("empty response body", nil)
	}
	if trimmed[0] == '[' {
		if !json.Valid(trimmed) {
			return nil, apperr.Decode("malformed JSON array", nil)
		}
		return &Envelope{Success: true, Data: json.RawMessage(trimmed)}, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, apperr.Decode("malformed response", err)
	}

	env := &Envelope{fields: fields}
	if raw, ok := fields["success"]; ok {
		if err := json.Unmarshal(raw, &env.Success); err != nil {
			return nil, apperr.Decode("success flag is not a boolean", err)
		}
	} else {
		env.Success = isNull(fields["error"])
	}

	env.Message = textField(fields["message"])
	if env.Message == "" {
		env.Message = textField(fields["error"])
	}
	if env.Success {
		if raw, ok := fields["data"]; ok && !isNull(raw) {
			env.Data = raw
		}
	}
	return env, nil
}

// Err returns a backend error for an unsuccessful envelope and nil otherwise.
func (e *Envelope) Err() error {
	if e.Success {
		return nil
	}
	msg := e.Message
	if msg == "" {
		msg = "request rejected by backend"
	}
	return apperr.Backend(msg, 0)
}

// Field returns a top-level field or nil.
func (e *Envelope) Field(key string) json.RawMessage {
	raw, ok := e.fields[key]
	if !ok || isNull(raw) {
		return nil
	}
	return raw
}

// Text returns a top-level field rendered as text.
func (e *Envelope) Text(key string) string {
	return textField(e.Field(key))
}

// Payload returns "data" when present, otherwise the first of keys present.
func (e *Envelope) Payload(keys ...string) json.RawMessage {
	if e.Data != nil {
		return e.Data
	}
	if !e.Success {
		return nil
	}
	for _, k := range keys {
		if raw := e.Field(k); raw != nil {
			return raw
		}
	}
	return nil
}

// Records decodes the payload as a list of records. A single object is
// returned as a one-element list; a missing payload is an empty list.
func (e *Envelope) Records(keys ...string) ([]model.Record, error) {
	raw := e.Payload(keys...)
	if raw == nil {
		return []model.Record{}, nil
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		rec, err := decodeRecord(raw)
		if err != nil {
			return nil, err
		}
		return []model.Record{rec}, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, apperr.Decode("payload is not a list", err)
	}
	out := make([]model.Record, 0, len(items))
	for _, item := range items {
		rec, err := decodeRecord(item)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Record decodes the payload as a single record.
func (e *Envelope) Record(keys ...string) (model.Record, error) {
	raw := e.Payload(keys...)
	if raw == nil {
		return nil, apperr.Decode("missing record payload", nil)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		recs, err := e.Records(keys...)
		if err != nil {
			return nil, err
		}
		if len(recs) == 0 {
			return nil, apperr.Backend("record not found", 0)
		}
		return recs[0], nil
	}
	return decodeRecord(raw)
}

// Count reads a total from "count" or "data". Numeric strings are accepted.
func (e *Envelope) Count() (int, error) {
	raw := e.Field("count")
	if raw == nil {
		raw = e.Data
	}
	if raw == nil {
		return 0, apperr.Decode("missing count", nil)
	}
	n, err := strconv.Atoi(strings.Trim(string(bytes.TrimSpace(raw)), `"`))
	if err != nil {
		var f float64
		if jerr := json.Unmarshal(raw, &f); jerr != nil || f < 0 {
			return 0, apperr.Decode("count is not a number", err)
		}
		n = int(f)
	}
	if n < 0 {
		return 0, apperr.Decode("negative count", nil)
	}
	return n, nil
}

// Strings decodes a field that is either a list of strings or a list of
// objects carrying the string under key.
func (e *Envelope) Strings(field, key string) ([]string, error) {
	raw := e.Payload(field)
	if raw == nil {
		return []string{}, nil
	}
	var plain []string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain, nil
	}
	recs, err := e.Records(field)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.String(key))
	}
	return out, nil
}

// IDs decodes a top-level list of identifiers. Entries may be strings or
// numbers and a lone string counts as one entry. A missing field is nil.
func (e *Envelope) IDs(key string) ([]string, error) {
	raw := e.Field(key)
	if raw == nil {
		return nil, nil
	}
	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		if one = strings.TrimSpace(one); one == "" {
			return []string{}, nil
		}
		return []string{one}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var items []any
	if err := dec.Decode(&items); err != nil {
		return nil, apperr.Decode(key+" is not a list", err)
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case string:
			out = append(out, v)
		case json.Number:
			out = append(out, v.String())
		default:
			return nil, apperr.Decode(key+" holds a non-scalar entry", nil)
		}
	}
	return out, nil
}

func decodeRecord(raw json.RawMessage) (model.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var rec model.Record
	if err := dec.Decode(&rec); err != nil {
		return nil, apperr.Decode("record is not an object", err)
	}
	if rec == nil {
		rec = model.Record{}
	}
	return rec, nil
}

func textField(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}
