package genson

// Classify walks a built schema bottom-up and rewrites eligible object
// nodes into KindMap nodes, per the five-rule procedure below. Children are
// classified before their parent, so a nested object can itself become a
// map before the object containing it is evaluated.
//
// Rule order, most specific first:
//  1. ForceFieldTypes names the field explicitly: honour "map"/"record"
//     and skip every other rule for that field.
//  2. The document root never becomes a map unless cfg.RootMapAllowed.
//  3. Fewer distinct keys than cfg.MapThreshold: stays a record.
//  4. More required keys than cfg.MapMaxRequiredKeys (when set): stays a
//     record even though the key count cleared the threshold.
//  5. Otherwise the object is eligible: if every property shares one
//     structural schema it becomes a homogeneous map directly; if not, and
//     cfg.UnifyMaps is set (and the field is not in cfg.NoUnify), Unify
//     attempts to fold the differing variants into one map value schema.
//     A forced "map" (rule 1) always yields a map: when its variants fail
//     to unify, the map's value schema is the union of those variants.
func Classify(schema *NodeSchema, cfg Config) *NodeSchema {
	return classifyNode(schema, cfg, "", true)
}

func classifyNode(n *NodeSchema, cfg Config, fieldName string, isRoot bool) *NodeSchema {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindArray:
		return NewArray(classifyNode(n.Items, cfg, fieldName, false))
	case KindMap:
		return NewMap(classifyNode(n.Values, cfg, fieldName, false))
	case KindUnion:
		members := make([]*NodeSchema, len(n.Members))
		for i, m := range n.Members {
			members[i] = classifyNode(m, cfg, fieldName, false)
		}
		return canonicalizeUnion(members)
	case KindObject:
		return classifyObject(n, cfg, fieldName, isRoot)
	default:
		return n
	}
}

func classifyObject(n *NodeSchema, cfg Config, fieldName string, isRoot bool) *NodeSchema {
	classified := NewObject()
	classified.Required = n.Required
	if n.Properties != nil {
		for pair := n.Properties.Oldest(); pair != nil; pair = pair.Next() {
			classified.SetProperty(pair.Key, classifyNode(pair.Value, cfg, pair.Key, false))
		}
	}

	if forced, ok := cfg.ForceFieldTypes[fieldName]; ok {
		if forced == "record" {
			return classified
		}
		// forced == "map": rule 1 is the highest-priority rule and applies
		// unconditionally, ahead of rule 5's unify/no_unify gate, so it
		// goes through forceMap rather than rewriteAsMap.
		return forceMap(classified, cfg, fieldName)
	}

	if isRoot && !cfg.RootMapAllowed {
		return classified
	}

	nKeys := 0
	if classified.Properties != nil {
		nKeys = classified.Properties.Len()
	}
	if nKeys < cfg.MapThreshold {
		return classified
	}
	if cfg.MapMaxRequiredKeys != nil && len(classified.Required) > *cfg.MapMaxRequiredKeys {
		return classified
	}

	return rewriteAsMap(classified, cfg, fieldName)
}

// rewriteAsMap attempts to collapse an eligible object's properties into a
// single map value schema, returning the original object unchanged when
// that is not possible.
func rewriteAsMap(obj *NodeSchema, cfg Config, fieldName string) *NodeSchema {
	if obj.Properties == nil || obj.Properties.Len() == 0 {
		return obj
	}

	variants := make([]*NodeSchema, 0, obj.Properties.Len())
	for pair := obj.Properties.Oldest(); pair != nil; pair = pair.Next() {
		variants = append(variants, pair.Value)
	}

	if allEqual(variants) {
		return NewMap(variants[0])
	}
	if cfg.UnifyMaps && !cfg.isNoUnify(fieldName) {
		if unified, ok := Unify(variants, cfg, fieldName); ok {
			return NewMap(unified)
		}
	}
	return obj
}

// forceMap implements rule 1's forced "map" override: it always produces a
// KindMap, unconditionally and regardless of cfg.NoUnify (which only scopes
// rule 5's ordinary unification gate, never a forced override). An empty
// object forces to Map(string), per spec; a non-empty object whose variants
// can't be reconciled even by Unify still becomes a map, falling back to
// the union of its variants as the common value type, rather than silently
// staying a record.
func forceMap(obj *NodeSchema, cfg Config, fieldName string) *NodeSchema {
	if obj.Properties == nil || obj.Properties.Len() == 0 {
		return NewMap(NewScalar(KindString))
	}

	variants := make([]*NodeSchema, 0, obj.Properties.Len())
	for pair := obj.Properties.Oldest(); pair != nil; pair = pair.Next() {
		variants = append(variants, pair.Value)
	}

	if allEqual(variants) {
		return NewMap(variants[0])
	}
	if unified, ok := Unify(variants, cfg, fieldName); ok {
		return NewMap(unified)
	}
	return NewMap(canonicalizeUnion(variants))
}

func allEqual(schemas []*NodeSchema) bool {
	for _, s := range schemas[1:] {
		if !s.Equal(schemas[0]) {
			return false
		}
	}
	return true
}
