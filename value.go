package genson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	omap "github.com/wk8/go-ordered-map/v2"
)

// OrderedValue is a decoded JSON object that preserves the key order it was
// read in. Every object encountered while parsing a batch becomes one of
// these rather than a plain map, so that a schema built from first-seen key
// order survives no matter how the batch is partitioned for parallel fold
// (see builder.go).
type OrderedValue = omap.OrderedMap[string, any]

// newOrderedValue allocates an empty OrderedValue.
func newOrderedValue() *OrderedValue {
	return omap.New[string, any]()
}

// decodeValue reads exactly one JSON value from data and returns it using
// the engine's internal value shapes: nil, bool, int64, float64, string,
// []any, and *OrderedValue. Any content after that one value is an error;
// splitting line-delimited input into documents is done by the caller.
//
// encoding/json's Decoder.Token is used instead of decoding into `any`
// directly because the latter always normalises numbers to float64 and
// always loses object key order; there is no library in the example pack
// that exposes an order-preserving, integer-preserving decode to a generic
// value, so this one token walk is hand-rolled over the standard decoder.
func decodeValue(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeTokenValue(dec)
	if err != nil {
		return nil, err
	}

	// Reject trailing garbage after the first value, mirroring
	// encoding/json.Unmarshal's own strictness.
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("unexpected trailing content after JSON value")
		}
		return nil, err
	}

	return v, nil
}

// decodeTokenValue reads one JSON value (scalar, array, or object) from dec.
func decodeTokenValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return buildFromToken(dec, tok)
}

func buildFromToken(dec *json.Decoder, tok json.Token) (any, error) {
	switch t := tok.(type) {
	case nil:
		return nil, nil
	case bool:
		return t, nil
	case string:
		return t, nil
	case json.Number:
		return classifyNumber(t)
	case json.Delim:
		switch t {
		case '[':
			return decodeArray(dec)
		case '{':
			return decodeObject(dec)
		default:
			return nil, fmt.Errorf("unexpected JSON delimiter %q", t)
		}
	default:
		return nil, fmt.Errorf("unexpected JSON token %T", tok)
	}
}

// classifyNumber decides, from the literal's own text, whether a JSON
// number is an integer or a floating-point number: a '.' or an exponent
// marker means it was written as a number, otherwise it is an integer. This
// mirrors how the original Rust implementation classifies a
// serde_json::Number before building a scalar schema node (see
// genson-core/src/schema.rs in original source) — the distinction is made
// once, at parse time, and never re-derived from the decoded magnitude.
func classifyNumber(n json.Number) (any, error) {
	s := n.String()
	isFloat := false
	for _, c := range s {
		if c == '.' || c == 'e' || c == 'E' {
			isFloat = true
			break
		}
	}
	if !isFloat {
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		// Overflows int64 (e.g. a huge literal integer): fall back to
		// float64 rather than failing the whole document.
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid JSON number %q: %w", s, err)
	}
	return f, nil
}

func decodeArray(dec *json.Decoder) (any, error) {
	out := []any{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		v, err := buildFromToken(dec, tok)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	// Consume the closing ']'.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeObject(dec *json.Decoder) (any, error) {
	out := newOrderedValue()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %T", keyTok)
		}
		valTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		v, err := buildFromToken(dec, valTok)
		if err != nil {
			return nil, err
		}
		out.Set(key, v)
	}
	// Consume the closing '}'.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

// orderedKeys returns the keys of an OrderedValue in insertion order.
func orderedKeys(ov *OrderedValue) []string {
	keys := make([]string, 0, ov.Len())
	for pair := ov.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// orderedGet looks up a key, reporting whether it was present.
func orderedGet(ov *OrderedValue, key string) (any, bool) {
	return ov.Get(key)
}
