package genson

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Normalise rewrites every value to conform to schema: every object gets
// every property the schema knows about (missing ones null-filled), arrays
// and maps recurse element-wise, and map fields are emitted in the physical
// shape cfg.MapEncoding selects. Documents are normalised independently, so
// the work is fanned out across up to cfg.MaxBuilders goroutines the same
// way BuildSchema fans out inference; the result slice keeps the input
// order regardless of which goroutine finished first.
func Normalise(values []any, schema *NodeSchema, cfg Config) ([]any, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if schema == nil {
		return values, nil
	}

	workers := cfg.maxBuilders()
	if workers > len(values) {
		workers = len(values)
	}
	if workers < 1 {
		workers = 1
	}

	out := make([]any, len(values))
	g, ctx := errgroup.WithContext(context.Background())
	sem := semaphore.NewWeighted(int64(workers))
	for i, v := range values {
		i, v := i, v
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)
			nv, err := normaliseValue(v, schema, cfg)
			if err != nil {
				return err
			}
			out[i] = nv
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func normaliseValue(v any, schema *NodeSchema, cfg Config) (any, error) {
	if schema == nil {
		return v, nil
	}
	switch schema.Kind {
	case KindNull:
		return nil, nil
	case KindUnion:
		return normaliseUnion(v, schema, cfg)
	case KindBoolean:
		return normaliseBoolean(v), nil
	case KindInteger:
		return normaliseInteger(v), nil
	case KindNumber:
		return normaliseNumber(v), nil
	case KindString:
		return normaliseString(v), nil
	case KindArray:
		return normaliseArray(v, schema, cfg)
	case KindObject:
		return normaliseObject(v, schema, cfg)
	case KindMap:
		return normaliseMap(v, schema, cfg)
	default:
		return v, nil
	}
}

func normaliseUnion(v any, schema *NodeSchema, cfg Config) (any, error) {
	if v == nil {
		return nil, nil
	}
	members := schema.NonNullMembers()
	for _, m := range members {
		if matchesKind(m, v) {
			return normaliseValue(v, m, cfg)
		}
	}
	if cfg.CoerceString && len(members) > 0 {
		if s, ok := v.(string); ok {
			if coerced, ok := coerceString(s, members[0]); ok {
				return normaliseValue(coerced, members[0], cfg)
			}
		}
	}
	// No member matches the value's runtime shape (the schema widened to
	// accommodate other documents this one never exercised): fall back to
	// the widest member rather than fail the whole batch.
	if len(members) > 0 {
		if widened, ok := widenScalar(v, members[len(members)-1].Kind); ok {
			return widened, nil
		}
	}
	return v, nil
}

func normaliseBoolean(v any) any {
	if b, ok := v.(bool); ok {
		return b
	}
	if v == nil {
		return nil
	}
	return v
}

func normaliseInteger(v any) any {
	switch t := v.(type) {
	case int64:
		return t
	case float64:
		if t == float64(int64(t)) {
			return int64(t)
		}
		return t
	case nil:
		return nil
	default:
		return v
	}
}

func normaliseNumber(v any) any {
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	case nil:
		return nil
	default:
		return v
	}
}

func normaliseString(v any) any {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return nil
	default:
		return fmt.Sprint(t)
	}
}

func normaliseArray(v any, schema *NodeSchema, cfg Config) (any, error) {
	arr, ok := v.([]any)
	if !ok {
		if v == nil {
			if cfg.EmptyAsNull {
				return nil, nil
			}
			return []any{}, nil
		}
		// A scalar observed where the field's final schema is an array:
		// widen it into a single-element array (§4.5 scalar-to-array
		// widening).
		elem, err := normaliseValue(v, schema.Items, cfg)
		if err != nil {
			return nil, err
		}
		return []any{elem}, nil
	}

	out := make([]any, 0, len(arr))
	for _, e := range arr {
		ne, err := normaliseValue(e, schema.Items, cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, ne)
	}
	if len(out) == 0 && cfg.EmptyAsNull {
		return nil, nil
	}
	return out, nil
}

func normaliseObject(v any, schema *NodeSchema, cfg Config) (any, error) {
	obj := asOrderedValue(v)

	// A bare scalar arriving where the schema is an object means this
	// field's type was unified from a mix of records and a promoted scalar
	// (unify.go); find which promoted property the scalar belongs to by
	// matching its runtime kind against the field__<kind> suffix, and
	// treat every other property as absent.
	if obj == nil && v != nil {
		if name, ok := promotedKeyFor(schema.PropertyNames(), v); ok {
			synthetic := newOrderedValue()
			synthetic.Set(name, v)
			obj = synthetic
		}
	}

	out := newOrderedValue()
	for _, name := range schema.PropertyNames() {
		propSchema, _ := schema.Properties.Get(name)
		var raw any
		present := false
		if obj != nil {
			raw, present = obj.Get(name)
		}
		if !present {
			out.Set(name, nil)
			continue
		}
		nv, err := normaliseValue(raw, propSchema, cfg)
		if err != nil {
			return nil, err
		}
		out.Set(name, nv)
	}
	return out, nil
}

func normaliseMap(v any, schema *NodeSchema, cfg Config) (any, error) {
	var entries []mapEntry
	switch val := v.(type) {
	case *OrderedValue:
		for pair := val.Oldest(); pair != nil; pair = pair.Next() {
			nv, err := normaliseValue(pair.Value, schema.Values, cfg)
			if err != nil {
				return nil, err
			}
			entries = append(entries, mapEntry{Key: pair.Key, Value: nv})
		}
	case nil:
		// no entries
	default:
		// A scalar observed where the field's final schema is a map: Infer
		// and Normalise can be called with values that were never jointly
		// produced by the same batch (§6 takes already-parsed values and a
		// schema as independent inputs), so this is a reachable shape, not
		// a fault. Per §4.5, widen it into a single-entry map under the
		// literal key "default" rather than failing the call.
		nv, err := normaliseValue(v, schema.Values, cfg)
		if err != nil {
			return nil, err
		}
		entries = append(entries, mapEntry{Key: "default", Value: nv})
	}
	if len(entries) == 0 && cfg.EmptyAsNull {
		return nil, nil
	}
	return encodeMap(entries, cfg.MapEncoding), nil
}

// matchesKind reports whether value v could plausibly have produced schema
// member m, used to pick the right union branch during normalisation.
func matchesKind(m *NodeSchema, v any) bool {
	switch v.(type) {
	case nil:
		return m.Kind == KindNull
	case bool:
		return m.Kind == KindBoolean
	case int64:
		return m.Kind == KindInteger || m.Kind == KindNumber
	case float64:
		return m.Kind == KindNumber
	case string:
		return m.Kind == KindString
	case []any:
		return m.Kind == KindArray
	case *OrderedValue:
		return m.Kind == KindObject || m.Kind == KindMap
	default:
		return false
	}
}

// coerceString parses s according to member's scalar kind, used for
// cfg.CoerceString fallback matching in a union.
func coerceString(s string, member *NodeSchema) (any, bool) {
	switch member.Kind {
	case KindInteger:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, false
		}
		return i, true
	case KindNumber:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		return f, true
	case KindBoolean:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, false
		}
		return b, true
	default:
		return nil, false
	}
}

// widenScalar best-effort converts v to the given kind when no exact union
// member matched it.
func widenScalar(v any, kind Kind) (any, bool) {
	switch kind {
	case KindNumber:
		switch t := v.(type) {
		case int64:
			return float64(t), true
		case float64:
			return t, true
		}
	case KindString:
		return fmt.Sprint(v), true
	}
	return nil, false
}

// promotedKeyFor finds the property name ending in "__<kind>" matching v's
// runtime kind, the inverse of promoteScalar in unify.go.
func promotedKeyFor(names []string, v any) (string, bool) {
	var kind Kind
	switch v.(type) {
	case bool:
		kind = KindBoolean
	case int64:
		kind = KindInteger
	case float64:
		kind = KindNumber
	case string:
		kind = KindString
	default:
		return "", false
	}
	suffix := "__" + kind.String()
	for _, name := range names {
		if strings.HasSuffix(name, suffix) {
			return name, true
		}
	}
	return "", false
}

func asOrderedValue(v any) *OrderedValue {
	if ov, ok := v.(*OrderedValue); ok {
		return ov
	}
	return nil
}
