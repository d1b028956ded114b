package genson

import "strings"

// located pairs a single JSON document's text with the batch position it
// came from, so a parse failure can be reported against the right index
// and line (§7).
type located struct {
	text     string
	docIndex int
	line     int
}

// ParseBatch splits a batch of input strings into individual JSON document
// texts according to cfg.Framing, decodes each one, and applies
// ignore_outer_array and wrap_root. It stops at the first malformed
// document and reports it via InvalidJSONError.
func ParseBatch(docs []string, cfg Config) ([]any, error) {
	locs := frameDocuments(docs, cfg.Framing)
	if len(locs) == 0 {
		return nil, &EmptyBatchError{}
	}

	values := make([]any, 0, len(locs))
	for _, loc := range locs {
		v, err := decodeValue([]byte(loc.text))
		if err != nil {
			return nil, &InvalidJSONError{
				Index:   loc.docIndex,
				Line:    loc.line,
				Message: err.Error(),
				Snippet: snippet(loc.text, 100),
			}
		}

		if cfg.IgnoreOuterArray {
			if arr, ok := v.([]any); ok {
				for _, elem := range arr {
					values = append(values, wrapRoot(elem, cfg))
				}
				continue
			}
		}
		values = append(values, wrapRoot(v, cfg))
	}
	return values, nil
}

// frameDocuments splits each raw input string into one or more document
// texts per cfg.Framing, discarding blank lines/inputs and numbering
// documents and lines 1-based for error reporting.
func frameDocuments(docs []string, framing Framing) []located {
	var out []located
	for i, d := range docs {
		switch framing {
		case FramingLineDelimited:
			for li, line := range strings.Split(d, "\n") {
				trimmed := strings.TrimSpace(line)
				if trimmed == "" {
					continue
				}
				out = append(out, located{text: trimmed, docIndex: i + 1, line: li + 1})
			}
		default:
			trimmed := strings.TrimSpace(d)
			if trimmed == "" {
				continue
			}
			out = append(out, located{text: trimmed, docIndex: i + 1, line: 1})
		}
	}
	return out
}

// wrapRoot wraps v under cfg.WrapRoot's synthetic key, when configured.
func wrapRoot(v any, cfg Config) any {
	if cfg.WrapRoot == nil {
		return v
	}
	wrapped := newOrderedValue()
	wrapped.Set(*cfg.WrapRoot, v)
	return wrapped
}
