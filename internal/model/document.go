package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
)

// Document is a payload decoded one level deep: each key keeps its raw JSON value
// so tier presence can be tested before any tier struct is built.
type Document map[string]json.RawMessage

// ParseDocument decodes a single JSON object.
func ParseDocument(data []byte) (Document, error) {
	return parseDocument("", data)
}

func parseDocument(kind Kind, data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &SchemaError{Kind: kind, Err: err}
	}
	if doc == nil {
		return nil, &SchemaError{Kind: kind, Err: fmt.Errorf("%w: payload is null", ErrMissingField)}
	}
	return doc, nil
}

// has reports whether key exists with a non-null value.
func (d Document) has(key string) bool {
	raw, ok := d[key]
	return ok && !isNull(raw)
}

// require decodes key into v, failing if the key is absent or null.
func (d Document) require(kind Kind, key string, v any) error {
	if !d.has(key) {
		return &SchemaError{Kind: kind, Field: key, Err: ErrMissingField}
	}
	return d.optional(kind, key, v)
}

// optional decodes key into v when present and leaves v untouched otherwise.
func (d Document) optional(kind Kind, key string, v any) error {
	if !d.has(key) {
		return nil
	}
	if err := json.Unmarshal(d[key], v); err != nil {
		return &SchemaError{Kind: kind, Field: key, Err: err}
	}
	return nil
}

// document decodes key as a nested object. A missing key yields a nil Document.
func (d Document) document(kind Kind, key string) (Document, error) {
	if !d.has(key) {
		return nil, nil
	}
	var nested Document
	if err := json.Unmarshal(d[key], &nested); err != nil {
		return nil, &SchemaError{Kind: kind, Field: key, Err: err}
	}
	return nested, nil
}

// list decodes key as an array of raw elements.
func (d Document) list(kind Kind, key string) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := d.optional(kind, key, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// tier reports whether all of keys are present. None present means the tier is
// absent; a subset is an incomplete tier.
func (d Document) tier(kind Kind, keys ...string) (bool, error) {
	missing := ""
	found := 0
	for _, k := range keys {
		if d.has(k) {
			found++
		} else if missing == "" {
			missing = k
		}
	}
	switch found {
	case 0:
		return false, nil
	case len(keys):
		return true, nil
	}
	return false, &SchemaError{Kind: kind, Field: missing, Err: ErrIncompleteTier}
}

// fullTier reports whether the full tier keys are present. Without the
// non-local tier any full key is an invalid combination, complete or not.
func (d Document) fullTier(kind Kind, nonLocal bool, keys ...string) (bool, error) {
	if !nonLocal && slices.ContainsFunc(keys, d.has) {
		return false, &TierError{Kind: kind, NonLocal: false, Full: true}
	}
	return d.tier(kind, keys...)
}

// expectKind validates the "type" discriminant.
func (d Document) expectKind(want Kind) error {
	var got Kind
	if err := d.require(want, "type", &got); err != nil {
		return err
	}
	if got != want {
		return &SchemaError{Kind: want, Field: "type", Err: fmt.Errorf("%w %q", ErrKindMismatch, got)}
	}
	return nil
}

// kind returns the "type" discriminant without validating it.
func (d Document) kind() Kind {
	var k Kind
	if d.has("type") {
		_ = json.Unmarshal(d["type"], &k)
	}
	return k
}

// popularity decodes a 0-100 popularity score.
func (d Document) popularity(kind Kind, key string) (int, error) {
	var p int
	if err := d.require(kind, key, &p); err != nil {
		return 0, err
	}
	if p < 0 || p > 100 {
		return 0, &SchemaError{Kind: kind, Field: key, Err: fmt.Errorf("%w: %d", ErrOutOfRange, p)}
	}
	return p, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// decodeList decodes every element of raw with fn, rooting errors at field[i].
func decodeList[T any](kind Kind, field string, raw []json.RawMessage, fn func(Document) (T, error)) ([]T, error) {
	out := make([]T, 0, len(raw))
	for i, r := range raw {
		v, err := decodeElement(kind, field, i, r, fn)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func decodeElement[T any](kind Kind, field string, i int, raw json.RawMessage, fn func(Document) (T, error)) (T, error) {
	var zero T
	path := field + "[" + strconv.Itoa(i) + "]"
	doc, err := parseDocument(kind, raw)
	if err != nil {
		return zero, nestedError(kind, path, err)
	}
	v, err := fn(doc)
	if err != nil {
		return zero, nestedError(kind, path, err)
	}
	return v, nil
}

// decodeEnvelope decodes a multi-fetch response such as {"artists":[...]}.
// Null elements stand for ids the service did not recognise and are skipped.
// Error paths keep the element's index in the payload.
func decodeEnvelope[T any](kind Kind, key string, data []byte, fn func(Document) (T, error)) ([]T, error) {
	env, err := parseDocument(kind, data)
	if err != nil {
		return nil, err
	}
	if !env.has(key) {
		return nil, &SchemaError{Kind: kind, Field: key, Err: ErrMissingField}
	}
	raw, err := env.list(kind, key)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raw))
	for i, r := range raw {
		if isNull(r) {
			continue
		}
		v, err := decodeElement(kind, key, i, r, fn)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// wireObject is the encoding counterpart of Document.
type wireObject map[string]any

func (w wireObject) marshal() ([]byte, error) {
	return json.Marshal(map[string]any(w))
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
