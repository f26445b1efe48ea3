package suggest

import (
	"fmt"
	"math"

	"github.com/entarch/archcat-go/internal/apptype"
)

// Factor names, exactly the keys of every suggestion's score breakdown.
const (
	FactorTypeAffinity       = "type_affinity"
	FactorTagOverlap         = "tag_overlap"
	FactorMetadataSimilarity = "metadata_similarity"
	FactorConnectivity       = "connectivity"
)

// Factors lists the factor names in display order.
var Factors = []string{
	FactorTypeAffinity,
	FactorTagOverlap,
	FactorMetadataSimilarity,
	FactorConnectivity,
}

// Weights assigns each scoring factor its share of the overall score.
// Weights are policy, not mechanism: tuning them never touches the scoring
// code. They must be non-negative and sum to 1.0.
type Weights struct {
	TypeAffinity       float64 `json:"type_affinity"`
	TagOverlap         float64 `json:"tag_overlap"`
	MetadataSimilarity float64 `json:"metadata_similarity"`
	Connectivity       float64 `json:"connectivity"`
}

// Map returns the weights keyed by factor name.
func (w Weights) Map() map[string]float64 {
	return map[string]float64{
		FactorTypeAffinity:       w.TypeAffinity,
		FactorTagOverlap:         w.TagOverlap,
		FactorMetadataSimilarity: w.MetadataSimilarity,
		FactorConnectivity:       w.Connectivity,
	}
}

// Config holds the engine's tuning knobs.
type Config struct {
	Weights Weights

	// TopN caps the number of suggestions returned per call.
	TopN int

	// MinSignal is the threshold a sub-score must exceed to earn a reason
	// string. Zero means any positive contribution is explained.
	MinSignal float64
}

// DefaultConfig returns the documented default policy: affinity and tag
// overlap carry the most weight, metadata and graph proximity the rest.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			TypeAffinity:       0.3,
			TagOverlap:         0.3,
			MetadataSimilarity: 0.2,
			Connectivity:       0.2,
		},
		TopN: 10,
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	w := c.Weights
	for name, v := range w.Map() {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%w: weight %s must be non-negative, got %v", apptype.ErrInvalidData, name, v)
		}
	}
	sum := w.TypeAffinity + w.TagOverlap + w.MetadataSimilarity + w.Connectivity
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("%w: weights must sum to 1.0, got %v", apptype.ErrInvalidData, sum)
	}
	if c.TopN <= 0 {
		return fmt.Errorf("%w: topN must be positive, got %d", apptype.ErrInvalidData, c.TopN)
	}
	if c.MinSignal < 0 || c.MinSignal >= 1 {
		return fmt.Errorf("%w: minSignal must be in [0,1), got %v", apptype.ErrInvalidData, c.MinSignal)
	}
	return nil
}
