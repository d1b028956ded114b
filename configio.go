package genson

import (
	"fmt"

	yaml "github.com/goccy/go-yaml"
)

// yamlConfig is the on-disk shape of a Config, decoded with goccy/go-yaml
// (the teacher's dependency for its application/yaml media type in
// compiler.go) before being folded onto DefaultConfig. Fields that default
// to true (IgnoreOuterArray, WrapScalars, RootMapAllowed) are pointers so
// an absent key in the document leaves the default alone rather than
// silently resetting it to false.
type yamlConfig struct {
	Framing              string            `yaml:"framing"`
	IgnoreOuterArray     *bool             `yaml:"ignore_outer_array"`
	WrapRoot             string            `yaml:"wrap_root"`
	MapThreshold         *int              `yaml:"map_threshold"`
	MapMaxRequiredKeys   *int              `yaml:"map_max_required_keys"`
	UnifyMaps            bool              `yaml:"unify_maps"`
	NoUnify              []string          `yaml:"no_unify"`
	ForceFieldTypes      map[string]string `yaml:"force_field_types"`
	ForceScalarPromotion []string          `yaml:"force_scalar_promotion"`
	WrapScalars          *bool             `yaml:"wrap_scalars"`
	EmptyAsNull          bool              `yaml:"empty_as_null"`
	CoerceString         bool              `yaml:"coerce_string"`
	MapEncoding          string            `yaml:"map_encoding"`
	RootMapAllowed       *bool             `yaml:"root_map_allowed"`
	MaxBuilders          *int              `yaml:"max_builders"`
}

// LoadConfigYAML decodes a YAML document into a Config, starting from
// DefaultConfig and overriding only the keys present in data. This is the
// ambient "how does configuration reach the program" story a deployment
// needs; it does not reintroduce the excluded CLI-flags surface.
func LoadConfigYAML(data []byte) (Config, error) {
	var y yamlConfig
	if err := yaml.Unmarshal(data, &y); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}

	cfg := DefaultConfig()

	switch y.Framing {
	case "":
	case "none":
		cfg.Framing = FramingNone
	case "line_delimited":
		cfg.Framing = FramingLineDelimited
	default:
		return Config{}, &ConfigInvalidError{Field: "framing", Reason: "unrecognised value " + y.Framing}
	}

	if y.IgnoreOuterArray != nil {
		cfg.IgnoreOuterArray = *y.IgnoreOuterArray
	}
	if y.WrapRoot != "" {
		wrapRoot := y.WrapRoot
		cfg.WrapRoot = &wrapRoot
	}
	if y.MapThreshold != nil {
		cfg.MapThreshold = *y.MapThreshold
	}
	cfg.MapMaxRequiredKeys = y.MapMaxRequiredKeys
	cfg.UnifyMaps = y.UnifyMaps
	if len(y.NoUnify) > 0 {
		set := make(map[string]struct{}, len(y.NoUnify))
		for _, f := range y.NoUnify {
			set[f] = struct{}{}
		}
		cfg.NoUnify = set
	}
	if len(y.ForceFieldTypes) > 0 {
		cfg.ForceFieldTypes = y.ForceFieldTypes
	}
	if len(y.ForceScalarPromotion) > 0 {
		set := make(map[string]struct{}, len(y.ForceScalarPromotion))
		for _, f := range y.ForceScalarPromotion {
			set[f] = struct{}{}
		}
		cfg.ForceScalarPromotion = set
	}
	if y.WrapScalars != nil {
		cfg.WrapScalars = *y.WrapScalars
	}
	cfg.EmptyAsNull = y.EmptyAsNull
	cfg.CoerceString = y.CoerceString

	switch y.MapEncoding {
	case "":
	case "mapping":
		cfg.MapEncoding = MapEncodingMapping
	case "entries":
		cfg.MapEncoding = MapEncodingEntries
	case "kv":
		cfg.MapEncoding = MapEncodingKV
	default:
		return Config{}, &ConfigInvalidError{Field: "map_encoding", Reason: "unrecognised value " + y.MapEncoding}
	}

	if y.RootMapAllowed != nil {
		cfg.RootMapAllowed = *y.RootMapAllowed
	}
	cfg.MaxBuilders = y.MaxBuilders

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
