package genson

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Join is the schema lattice's join operation (⊔): the smallest schema that
// describes every value either a or b describes. nil stands for "no
// observation yet" and is the join identity.
func Join(a, b *NodeSchema) *NodeSchema {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.Kind == b.Kind {
		switch a.Kind {
		case KindArray:
			return NewArray(Join(a.Items, b.Items))
		case KindObject:
			return joinObjects(a, b)
		case KindMap:
			return NewMap(Join(a.Values, b.Values))
		case KindUnion:
			return canonicalizeUnion(append(append([]*NodeSchema{}, a.Members...), b.Members...))
		default:
			return &NodeSchema{Kind: a.Kind}
		}
	}
	// Integer and number widen to number directly rather than forming a
	// union: the core keeps the int/number distinction for as long as every
	// observation agrees, but a single float anywhere forces the field to
	// number for good, matching the original implementation's scalar
	// widening (see genson-core/src/schema.rs in original source).
	if isNumeric(a.Kind) && isNumeric(b.Kind) {
		return NewScalar(KindNumber)
	}
	return canonicalizeUnion([]*NodeSchema{a, b})
}

func isNumeric(k Kind) bool { return k == KindInteger || k == KindNumber }

// joinObjects merges two object schemas field by field, preserving a's
// property order and appending any field b introduces that a never saw. A
// field is required in the result only if both sides observed it, and both
// sides required it: a field b's documents never had cannot be required
// once a and b are joined into one schema.
func joinObjects(a, b *NodeSchema) *NodeSchema {
	out := NewObject()
	for pair := a.Properties.Oldest(); pair != nil; pair = pair.Next() {
		key := pair.Key
		bv, bok := b.Properties.Get(key)
		if bok {
			out.SetProperty(key, Join(pair.Value, bv))
			if a.IsRequired(key) && b.IsRequired(key) {
				out.MarkRequired(key)
			}
		} else {
			out.SetProperty(key, pair.Value)
		}
	}
	for pair := b.Properties.Oldest(); pair != nil; pair = pair.Next() {
		if _, ok := a.Properties.Get(pair.Key); !ok {
			out.SetProperty(pair.Key, pair.Value)
		}
	}
	return out
}

// schemaOfValue infers a one-shot schema from a single decoded document
// value. Every key present in an object is required by that single
// observation; Join later relaxes a field to optional as soon as some other
// observation lacks it.
func schemaOfValue(v any) *NodeSchema {
	switch val := v.(type) {
	case nil:
		return NewScalar(KindNull)
	case bool:
		return NewScalar(KindBoolean)
	case int64:
		return NewScalar(KindInteger)
	case float64:
		return NewScalar(KindNumber)
	case string:
		return NewScalar(KindString)
	case []any:
		var items *NodeSchema
		for _, e := range val {
			items = Join(items, schemaOfValue(e))
		}
		return NewArray(items)
	case *OrderedValue:
		obj := NewObject()
		for pair := val.Oldest(); pair != nil; pair = pair.Next() {
			obj.SetProperty(pair.Key, schemaOfValue(pair.Value))
			obj.MarkRequired(pair.Key)
		}
		return obj
	default:
		// decodeValue never produces any other shape; treat defensively
		// as an opaque string rather than panicking on a caller-built value.
		return NewScalar(KindString)
	}
}

// BuildSchema folds a slice of decoded values into one schema, splitting the
// batch across up to cfg.MaxBuilders partitions and reducing each partition
// to a partial schema concurrently, then joining the partials in index
// order. Because Join is associative and joinObjects preserves a's property
// order before appending b's new keys, the result does not depend on how
// many partitions were used or how goroutines were scheduled — only on the
// left-to-right order of values.
func BuildSchema(values []any, cfg Config) (*NodeSchema, error) {
	if len(values) == 0 {
		return nil, &EmptyBatchError{}
	}

	workers := cfg.maxBuilders()
	if workers > len(values) {
		workers = len(values)
	}
	if workers < 1 {
		workers = 1
	}

	chunks := partitionValues(values, workers)
	partials := make([]*NodeSchema, len(chunks))

	g, ctx := errgroup.WithContext(context.Background())
	sem := semaphore.NewWeighted(int64(workers))
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)
			var acc *NodeSchema
			for _, v := range chunk {
				acc = Join(acc, schemaOfValue(v))
			}
			partials[i] = acc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var result *NodeSchema
	for _, p := range partials {
		result = Join(result, p)
	}
	return canonicalize(result), nil
}

// partitionValues splits values into up to n contiguous, order-preserving
// chunks of roughly equal size.
func partitionValues(values []any, n int) [][]any {
	if n <= 1 || len(values) <= 1 {
		return [][]any{values}
	}
	chunkSize := (len(values) + n - 1) / n
	chunks := make([][]any, 0, n)
	for start := 0; start < len(values); start += chunkSize {
		end := start + chunkSize
		if end > len(values) {
			end = len(values)
		}
		chunks = append(chunks, values[start:end])
	}
	return chunks
}
