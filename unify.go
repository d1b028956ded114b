package genson

// Unify attempts to fold a set of differing record-variant schemas observed
// for the same field into one schema, so that classify.go can still emit a
// KindMap for that field even though its properties are not byte-for-byte
// identical. It returns (nil, false) rather than an error when the variants
// genuinely cannot be reconciled: failing to unify is an ordinary "no", not
// a fault (§4.4).
//
// Object variants are merged field-by-field using the same join used to
// accumulate schemas across a batch (joinObjects, reached here through
// Join). A scalar variant colliding with object variants is, when
// cfg.WrapScalars or cfg.ForceScalarPromotion names the field, promoted
// into a synthetic single-property object {fieldName__kind: scalar} before
// merging — unless that promoted key already exists on some variant, in
// which case unification fails rather than risk shadowing a real field.
func Unify(variants []*NodeSchema, cfg Config, fieldName string) (*NodeSchema, bool) {
	if len(variants) == 0 {
		return nil, false
	}

	var objects, others []*NodeSchema
	for _, v := range variants {
		if v.Kind == KindObject {
			objects = append(objects, v)
		} else {
			others = append(others, v)
		}
	}

	if len(objects) == 0 {
		joined := variants[0]
		for _, v := range variants[1:] {
			joined = Join(joined, v)
		}
		return canonicalize(joined), true
	}

	if len(others) > 0 {
		allowPromote := cfg.WrapScalars || cfg.isForcedScalarPromotion(fieldName)
		if !allowPromote {
			return nil, false
		}
		for _, o := range others {
			switch o.Kind {
			case KindArray, KindMap, KindUnion:
				// only scalars are promoted; a structural variant cannot unify
				// with a record
				return nil, false
			}
			promoted, ok := promoteScalar(o, fieldName, objects)
			if !ok {
				return nil, false
			}
			objects = append(objects, promoted)
		}
	}

	merged := objects[0]
	for _, o := range objects[1:] {
		merged = Join(merged, o)
	}
	return canonicalize(merged), true
}

// promoteScalar wraps a non-object variant in a singleton object keyed by
// fieldName__<kind>, so it can be merged alongside genuine object variants.
// It fails when that synthetic key would collide with a field already
// present on one of the object variants being unified.
func promoteScalar(scalar *NodeSchema, fieldName string, objects []*NodeSchema) (*NodeSchema, bool) {
	key := fieldName + "__" + scalar.Kind.String()
	for _, obj := range objects {
		if obj.Properties == nil {
			continue
		}
		if _, ok := obj.Properties.Get(key); ok {
			return nil, false
		}
	}
	promoted := NewObject()
	promoted.SetProperty(key, scalar)
	return promoted, true
}
