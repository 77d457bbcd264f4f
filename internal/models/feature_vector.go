package models

import (
	"fmt"
	"time"
)

// FeatureSource names an optional input source that may be absent at
// feature-building time.
type FeatureSource string

const (
	SourceAdvancedHome FeatureSource = "advanced_home"
	SourceAdvancedAway FeatureSource = "advanced_away"
	SourceMarket       FeatureSource = "market"
	SourceContext      FeatureSource = "external_context"
)

// FeatureVector is a fixed-schema, ordered set of normalized features for a
// match at a given as-of timestamp. Vectors are immutable once built; train
// and inference share the same schema version so feature order can never
// silently mismatch.
type FeatureVector struct {
	SchemaVersion  string          `json:"schema_version"`
	Names          []string        `json:"names"`
	Values         []float64       `json:"values"`
	AsOf           time.Time       `json:"as_of"`
	Degraded       bool            `json:"degraded"`
	MissingSources []FeatureSource `json:"missing_sources,omitempty"`

	index map[string]int
}

// NewFeatureVector builds a vector over parallel name/value slices.
func NewFeatureVector(schemaVersion string, names []string, values []float64, asOf time.Time) (*FeatureVector, error) {
	if len(names) != len(values) {
		return nil, fmt.Errorf("feature vector name/value length mismatch: %d names, %d values", len(names), len(values))
	}
	fv := &FeatureVector{
		SchemaVersion: schemaVersion,
		Names:         names,
		Values:        values,
		AsOf:          asOf,
	}
	fv.buildIndex()
	return fv, nil
}

func (fv *FeatureVector) buildIndex() {
	fv.index = make(map[string]int, len(fv.Names))
	for i, name := range fv.Names {
		fv.index[name] = i
	}
}

// Value returns the named feature value. The second result is false when the
// schema does not contain the feature.
func (fv *FeatureVector) Value(name string) (float64, bool) {
	if fv.index == nil {
		fv.buildIndex()
	}
	i, ok := fv.index[name]
	if !ok {
		return 0, false
	}
	return fv.Values[i], true
}

// Has reports whether the vector carries every one of the given features.
func (fv *FeatureVector) Has(names ...string) bool {
	if fv.index == nil {
		fv.buildIndex()
	}
	for _, name := range names {
		if _, ok := fv.index[name]; !ok {
			return false
		}
	}
	return true
}

// Subset extracts values for the given feature names in the given order.
func (fv *FeatureVector) Subset(names []string) ([]float64, error) {
	out := make([]float64, len(names))
	for i, name := range names {
		v, ok := fv.Value(name)
		if !ok {
			return nil, fmt.Errorf("feature %q not present in schema %s", name, fv.SchemaVersion)
		}
		out[i] = v
	}
	return out, nil
}

// SourceMissing reports whether the named optional source was absent when the
// vector was built.
func (fv *FeatureVector) SourceMissing(src FeatureSource) bool {
	for _, s := range fv.MissingSources {
		if s == src {
			return true
		}
	}
	return false
}
