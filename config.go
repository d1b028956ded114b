package genson

// Framing selects how the document boundary within an input string is found.
type Framing int

const (
	// FramingNone treats each input string as exactly one JSON document.
	FramingNone Framing = iota
	// FramingLineDelimited splits each input string on LF, discarding blank lines,
	// and parses each remaining non-empty line as a standalone JSON document.
	FramingLineDelimited
)

// MapEncoding selects the physical shape the normaliser emits for Map schemas.
// The three encodings are logically equivalent; see §4.6.
type MapEncoding int

const (
	// MapEncodingMapping emits a native JSON object.
	MapEncodingMapping MapEncoding = iota
	// MapEncodingEntries emits an ordered array of single-entry objects.
	MapEncodingEntries
	// MapEncodingKV emits an ordered array of {"key": ..., "value": ...} records.
	MapEncodingKV
)

// Config is the single, immutable configuration record threaded through every
// component of the engine. Zero value is not meaningful; use DefaultConfig.
type Config struct {
	// Framing selects how documents are split out of each input string.
	Framing Framing

	// IgnoreOuterArray, if set, treats a top-level array document as a sequence
	// of separate documents (its elements), rather than a single array document.
	IgnoreOuterArray bool

	// WrapRoot, if non-nil, wraps every document under a synthetic single key
	// before inference and normalisation: V becomes {*WrapRoot: V}.
	WrapRoot *string

	// MapThreshold is the number of distinct observed keys at or above which
	// an object becomes eligible for rewrite into a Map.
	MapThreshold int

	// MapMaxRequiredKeys, if non-nil, suppresses a Map rewrite for any object
	// node whose required-key count exceeds this value.
	MapMaxRequiredKeys *int

	// UnifyMaps enables unification of non-identical record variants into a
	// single Map value schema.
	UnifyMaps bool

	// NoUnify names fields for which unification is disabled even when
	// UnifyMaps is on.
	NoUnify map[string]struct{}

	// ForceFieldTypes hard-overrides the classifier's decision for a field
	// name: "map" or "record".
	ForceFieldTypes map[string]string

	// ForceScalarPromotion names fields whose scalar values are always
	// promoted into a singleton object during unification.
	ForceScalarPromotion map[string]struct{}

	// WrapScalars, when true, lets a scalar colliding with an object during
	// unification be promoted into {field__TYPE: scalar} instead of failing
	// unification outright.
	WrapScalars bool

	// EmptyAsNull, when true, makes the normaliser turn empty arrays and
	// empty maps into null.
	EmptyAsNull bool

	// CoerceString, when true, lets the normaliser parse a numeric/boolean
	// string to match a union schema whose first non-null member is
	// numeric/boolean.
	CoerceString bool

	// MapEncoding selects the physical shape the normaliser emits for maps.
	MapEncoding MapEncoding

	// RootMapAllowed, when false, never rewrites the document root to a Map.
	RootMapAllowed bool

	// MaxBuilders, if non-nil, bounds the number of concurrent partial
	// schema builders (and, by reuse, the normaliser's per-document fan-out).
	MaxBuilders *int
}

// DefaultConfig returns the engine's default configuration. MapThreshold
// matches the original implementation's default.
func DefaultConfig() Config {
	return Config{
		Framing:          FramingNone,
		IgnoreOuterArray: true,
		MapThreshold:     20,
		WrapScalars:      true,
		RootMapAllowed:   true,
		MapEncoding:      MapEncodingMapping,
	}
}

// Validate eagerly checks the configuration for internal contradictions,
// per §7: configuration errors are detected before any inference work.
func (c Config) Validate() error {
	if c.MapThreshold < 0 {
		return &ConfigInvalidError{Field: "MapThreshold", Reason: "must be >= 0"}
	}
	if c.MapMaxRequiredKeys != nil && *c.MapMaxRequiredKeys < 0 {
		return &ConfigInvalidError{Field: "MapMaxRequiredKeys", Reason: "must be >= 0 when set"}
	}
	if c.MaxBuilders != nil && *c.MaxBuilders <= 0 {
		return &ConfigInvalidError{Field: "MaxBuilders", Reason: "must be > 0 when set"}
	}
	for _, kind := range c.ForceFieldTypes {
		if kind != "map" && kind != "record" {
			return &ConfigInvalidError{Field: "ForceFieldTypes", Reason: "values must be \"map\" or \"record\", got " + kind}
		}
	}
	if c.MapEncoding != MapEncodingMapping && c.MapEncoding != MapEncodingEntries && c.MapEncoding != MapEncodingKV {
		return &ConfigInvalidError{Field: "MapEncoding", Reason: "unrecognised map encoding"}
	}
	if c.WrapRoot != nil {
		if name := *c.WrapRoot; name == "" {
			return &ConfigInvalidError{Field: "WrapRoot", Reason: "must not be empty when set"}
		}
	}
	return nil
}

// isNoUnify reports whether unification is disabled for the given field name.
func (c Config) isNoUnify(field string) bool {
	if c.NoUnify == nil {
		return false
	}
	_, ok := c.NoUnify[field]
	return ok
}

// isForcedScalarPromotion reports whether field always promotes scalars
// during unification.
func (c Config) isForcedScalarPromotion(field string) bool {
	if c.ForceScalarPromotion == nil {
		return false
	}
	_, ok := c.ForceScalarPromotion[field]
	return ok
}

// maxBuilders returns the configured concurrency cap, or a generous default
// when unset.
func (c Config) maxBuilders() int {
	if c.MaxBuilders != nil && *c.MaxBuilders > 0 {
		return *c.MaxBuilders
	}
	return 8
}
