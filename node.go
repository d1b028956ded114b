package genson

import (
	"fmt"
	"sort"
	"strings"

	json "github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	omap "github.com/wk8/go-ordered-map/v2"
)

// Kind tags which variant of NodeSchema is populated. NodeSchema follows the
// teacher's Schema type in using one struct with a discriminant plus a set
// of fields gated by what's populated, rather than a Go interface
// hierarchy: equality, canonicalisation and the join operation all need to
// pattern-match on every field at once, which a single struct makes
// mechanical and an interface hierarchy makes awkward.
type Kind int

const (
	KindNull Kind = iota
	KindBoolean
	KindInteger
	KindNumber
	KindString
	KindArray
	KindObject
	KindMap
	KindUnion
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindMap:
		return "map"
	case KindUnion:
		return "union"
	default:
		return "unknown"
	}
}

// precedence orders scalar and structural kinds for union-member sorting.
// The original implementation's table ends with "binary"; it has no entry
// here because there is no JSON binary literal and no Kind for it.
var precedence = map[Kind]int{
	KindNull:    0,
	KindMap:     1,
	KindArray:   2,
	KindObject:  3,
	KindBoolean: 4,
	KindInteger: 5,
	KindNumber:  6,
	KindString:  7,
}

// PropertyMap is the ordered property container for KindObject nodes. Order
// reflects first-seen insertion order across the batch that produced the
// schema (see builder.go), independent of how the batch was partitioned.
type PropertyMap = omap.OrderedMap[string, *NodeSchema]

// NodeSchema is the engine's structural schema node. Exactly one
// constellation of fields is meaningful for a given Kind:
//
//	KindObject: Properties, Required
//	KindArray:  Items
//	KindMap:    Values
//	KindUnion:  Members
//	all others: no extra fields
type NodeSchema struct {
	Kind Kind

	Properties *PropertyMap        `json:"properties,omitempty"`
	Required   map[string]struct{} `json:"-"`

	Items *NodeSchema `json:"items,omitempty"`

	Values *NodeSchema `json:"values,omitempty"`

	Members []*NodeSchema `json:"anyOf,omitempty"`
}

// NewScalar builds a leaf schema node for one of the non-structural kinds.
func NewScalar(k Kind) *NodeSchema { return &NodeSchema{Kind: k} }

// NewArray builds an array schema node.
func NewArray(items *NodeSchema) *NodeSchema { return &NodeSchema{Kind: KindArray, Items: items} }

// NewObject builds an empty object schema node ready for properties to be
// added with SetProperty.
func NewObject() *NodeSchema {
	return &NodeSchema{Kind: KindObject, Properties: omap.New[string, *NodeSchema]()}
}

// NewMap builds a map schema node with the given value schema.
func NewMap(values *NodeSchema) *NodeSchema { return &NodeSchema{Kind: KindMap, Values: values} }

// NewUnion builds a (not yet canonicalised) union node from members.
func NewUnion(members ...*NodeSchema) *NodeSchema {
	return &NodeSchema{Kind: KindUnion, Members: members}
}

// SetProperty inserts or updates a property, preserving first-seen order: an
// existing key keeps its position, a new key is appended.
func (n *NodeSchema) SetProperty(name string, schema *NodeSchema) {
	if n.Properties == nil {
		n.Properties = omap.New[string, *NodeSchema]()
	}
	n.Properties.Set(name, schema)
}

// MarkRequired adds name to the object's required set.
func (n *NodeSchema) MarkRequired(name string) {
	if n.Required == nil {
		n.Required = make(map[string]struct{})
	}
	n.Required[name] = struct{}{}
}

// IsRequired reports whether name is in the object's required set.
func (n *NodeSchema) IsRequired(name string) bool {
	if n.Required == nil {
		return false
	}
	_, ok := n.Required[name]
	return ok
}

// PropertyNames returns property names in insertion order.
func (n *NodeSchema) PropertyNames() []string {
	if n.Properties == nil {
		return nil
	}
	out := make([]string, 0, n.Properties.Len())
	for pair := n.Properties.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// IsNullable reports whether n is KindNull itself or a union whose members
// include KindNull.
func (n *NodeSchema) IsNullable() bool {
	if n.Kind != KindUnion {
		return n.Kind == KindNull
	}
	for _, m := range n.Members {
		if m.Kind == KindNull {
			return true
		}
	}
	return false
}

// NonNullMembers returns a union's members excluding KindNull, or a
// single-element slice of n itself when n is not a union.
func (n *NodeSchema) NonNullMembers() []*NodeSchema {
	if n.Kind != KindUnion {
		if n.Kind == KindNull {
			return nil
		}
		return []*NodeSchema{n}
	}
	out := make([]*NodeSchema, 0, len(n.Members))
	for _, m := range n.Members {
		if m.Kind != KindNull {
			out = append(out, m)
		}
	}
	return out
}

// canonicalize rewrites n into the engine's canonical form, per the
// invariants in §3.1: unions are flattened (no union directly nested in a
// union), deduplicated by Kind (same-Kind members are merged through Join),
// and sorted by precedence; a
// single-member union collapses to that member; a nullable union is
// represented as the 2-member {null, T} form (never {null, T, T}).
// Children are canonicalised first, bottom-up.
func canonicalize(n *NodeSchema) *NodeSchema {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindArray:
		return NewArray(canonicalize(n.Items))
	case KindMap:
		return NewMap(canonicalize(n.Values))
	case KindObject:
		out := NewObject()
		out.Required = n.Required
		if n.Properties != nil {
			for pair := n.Properties.Oldest(); pair != nil; pair = pair.Next() {
				out.SetProperty(pair.Key, canonicalize(pair.Value))
			}
		}
		return out
	case KindUnion:
		return canonicalizeUnion(n.Members)
	default:
		return &NodeSchema{Kind: n.Kind}
	}
}

// canonicalizeUnion flattens, canonicalises, deduplicates and sorts a set of
// union members, returning a plain (non-union) node when only one distinct
// member remains.
func canonicalizeUnion(members []*NodeSchema) *NodeSchema {
	flat := make([]*NodeSchema, 0, len(members))
	var flatten func(ms []*NodeSchema)
	flatten = func(ms []*NodeSchema) {
		for _, m := range ms {
			c := canonicalize(m)
			if c.Kind == KindUnion {
				flatten(c.Members)
				continue
			}
			flat = append(flat, c)
		}
	}
	flatten(members)

	// Dedup by Kind, not by exact structural fingerprint: per §4.2, two
	// members of the same Kind are never allowed to coexist in one union —
	// Object(p,r) ⊔ Object(p',r') = Object(p∪p', r∩r'), and the analogous
	// rules for Array/Map, always merge same-Kind members into one. Join
	// already implements exactly that merge for every Kind (trivially for
	// scalars, structurally for Object/Array/Map), so folding every
	// same-Kind bucket through Join is sufficient and correct — there is
	// never a reason to keep two KindObject (or KindArray, KindMap)
	// members side by side in a union.
	seen := make(map[Kind]*NodeSchema, len(flat))
	order := make([]Kind, 0, len(flat))
	for _, m := range flat {
		if existing, ok := seen[m.Kind]; ok {
			seen[m.Kind] = Join(existing, m)
			continue
		}
		seen[m.Kind] = m
		order = append(order, m.Kind)
	}

	dedup := make([]*NodeSchema, 0, len(order))
	for _, kind := range order {
		dedup = append(dedup, seen[kind])
	}
	sort.SliceStable(dedup, func(i, j int) bool {
		return precedence[dedup[i].Kind] < precedence[dedup[j].Kind]
	})

	if len(dedup) == 1 {
		return dedup[0]
	}
	return &NodeSchema{Kind: KindUnion, Members: dedup}
}

// canonicalKey produces a stable structural fingerprint used to compare
// schemas for equality. It is an internal
// hashing aid, not a serialisation format: property order in the key is
// always alphabetical regardless of the schema's own insertion order, since
// two objects with the same fields in different orders are the same type.
func (n *NodeSchema) canonicalKey() string {
	if n == nil {
		return "null()"
	}
	var b strings.Builder
	n.writeKey(&b)
	return b.String()
}

func (n *NodeSchema) writeKey(b *strings.Builder) {
	fmt.Fprintf(b, "%s(", n.Kind)
	switch n.Kind {
	case KindArray:
		n.Items.writeKey(b)
	case KindMap:
		n.Values.writeKey(b)
	case KindObject:
		names := n.PropertyNames()
		sort.Strings(names)
		for i, name := range names {
			if i > 0 {
				b.WriteByte(',')
			}
			prop, _ := n.Properties.Get(name)
			b.WriteString(name)
			if n.IsRequired(name) {
				b.WriteByte('!')
			}
			b.WriteByte(':')
			prop.writeKey(b)
		}
	case KindUnion:
		for i, m := range n.Members {
			if i > 0 {
				b.WriteByte('|')
			}
			m.writeKey(b)
		}
	}
	b.WriteByte(')')
}

// Equal reports whether two schemas are structurally identical, ignoring
// object property insertion order (required-set and type shape are what
// matter for equality; order is a presentation detail preserved only in
// PropertyNames/Marshal).
func (n *NodeSchema) Equal(other *NodeSchema) bool {
	if n == nil || other == nil {
		return n == other
	}
	return n.canonicalKey() == other.canonicalKey()
}

// nodeSchemaWire is the deterministic wire shape for NodeSchema, using the
// teacher's MarshalJSON idiom (schema.go): marshal through an auxiliary
// struct with go-json-experiment/json and json.Deterministic(true), so
// property and object key order in the output is stable across runs.
type nodeSchemaWire struct {
	Type       string          `json:"type"`
	Properties *PropertyMap    `json:"properties,omitempty"`
	Required   []string        `json:"required,omitempty"`
	Items      *NodeSchema     `json:"items,omitempty"`
	Values     *NodeSchema     `json:"values,omitempty"`
	AnyOf      []*NodeSchema   `json:"anyOf,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (n *NodeSchema) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.toWire(), json.Deterministic(true))
}

// MarshalJSONTo implements the JSON v2 MarshalerTo interface, matching the
// teacher's Schema.MarshalJSONTo so NodeSchema nests correctly inside a
// larger deterministic encode.
func (n *NodeSchema) MarshalJSONTo(enc *jsontext.Encoder, opts json.Options) error {
	opts = json.JoinOptions(opts, json.Deterministic(true))
	return json.MarshalEncode(enc, n.toWire(), opts)
}

func (n *NodeSchema) toWire() *nodeSchemaWire {
	w := &nodeSchemaWire{Type: n.Kind.String()}
	switch n.Kind {
	case KindObject:
		w.Properties = n.Properties
		names := n.PropertyNames()
		sort.Strings(names)
		for _, name := range names {
			if n.IsRequired(name) {
				w.Required = append(w.Required, name)
			}
		}
	case KindArray:
		w.Items = n.Items
	case KindMap:
		w.Values = n.Values
	case KindUnion:
		w.AnyOf = n.Members
	}
	return w
}

// UnmarshalJSON implements json.Unmarshaler, the inverse of MarshalJSON.
func (n *NodeSchema) UnmarshalJSON(data []byte) error {
	var w nodeSchemaWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	kind, err := kindFromString(w.Type)
	if err != nil {
		return err
	}
	n.Kind = kind
	n.Properties = w.Properties
	n.Items = w.Items
	n.Values = w.Values
	n.Members = w.AnyOf
	for _, name := range w.Required {
		n.MarkRequired(name)
	}
	return nil
}

func kindFromString(s string) (Kind, error) {
	switch s {
	case "null":
		return KindNull, nil
	case "boolean":
		return KindBoolean, nil
	case "integer":
		return KindInteger, nil
	case "number":
		return KindNumber, nil
	case "string":
		return KindString, nil
	case "array":
		return KindArray, nil
	case "object":
		return KindObject, nil
	case "map":
		return KindMap, nil
	case "union":
		return KindUnion, nil
	default:
		return 0, fmt.Errorf("%w: unrecognised schema type %q", ErrInvalidJSON, s)
	}
}
