// Package suggest ranks candidate entities for new relationships.
//
// The engine is a pure function of (source id, corpus snapshot): it reads the
// corpus through its Store at call time, holds no state across calls, and
// caches nothing. Every suggestion carries a breakdown of the four raw
// sub-scores, each in [0,1]; the overall score is the fixed weighted sum of
// the breakdown under Config.Weights.
package suggest

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/entarch/archcat-go/internal/apptype"
	"github.com/entarch/archcat-go/internal/metrics"
)

// Store is the read-side contract the engine consumes. Implementations must
// present a consistent snapshot of entities, relationships, and tags for the
// duration of one call.
type Store interface {
	ListEntities(ctx context.Context) ([]apptype.Entity, error)
	GetEntity(ctx context.Context, id string) (*apptype.Entity, error)
	ListRelationshipsFor(ctx context.Context, entityID string) ([]apptype.Relationship, error)
	ListAllRelationships(ctx context.Context) ([]apptype.Relationship, error)
	ListTagsFor(ctx context.Context, entityID string) ([]string, error)
}

// Engine computes relationship suggestions over a Store.
type Engine struct {
	store Store
	cfg   Config
}

// NewEngine validates the configuration and returns an engine.
func NewEngine(store Store, cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{store: store, cfg: cfg}, nil
}

// corpus is the per-call snapshot the factors score against.
type corpus struct {
	source  *apptype.Entity
	srcTags map[string]struct{}
	srcMeta map[string]any // nil when the source metadata is malformed

	related   map[string]struct{}            // ids directly linked to the source
	neighbors map[string]map[string]struct{} // entity id -> distinct neighbor ids

	pairCounts  map[[2]string]int            // unordered type pair -> edge count
	maxPair     int                          // max over pairCounts
	pairByType  map[[2]string]map[string]int // pair -> relationship type -> count
	sourceNames map[string]string            // id -> name, for reasons
}

// Suggest returns ranked relationship suggestions for the given source
// entity: score descending, candidate name ascending on ties, truncated to
// TopN. Candidates already related to the source (either direction) and the
// source itself are never returned. A missing source yields ErrNotFound; an
// empty candidate pool yields an empty, non-nil slice.
func (e *Engine) Suggest(ctx context.Context, sourceID string) ([]apptype.Suggestion, error) {
	c, candidates, err := e.load(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	metrics.Default().ObserveSuggestCandidates(float64(len(candidates)))

	suggestions := make([]apptype.Suggestion, 0, len(candidates))
	for i := range candidates {
		cand := &candidates[i]
		s, err := e.score(ctx, c, cand)
		if err != nil {
			return nil, err
		}
		suggestions = append(suggestions, s)
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Score != suggestions[j].Score {
			return suggestions[i].Score > suggestions[j].Score
		}
		return suggestions[i].Target.Name < suggestions[j].Target.Name
	})
	if len(suggestions) > e.cfg.TopN {
		suggestions = suggestions[:e.cfg.TopN]
	}
	return suggestions, nil
}

// load pulls the corpus snapshot and builds the per-call indexes: the
// related-entity set, the neighbor map, and the type-affinity statistics.
// Indexes are built once here so candidates never rescans the relationship
// list.
func (e *Engine) load(ctx context.Context, sourceID string) (*corpus, []apptype.Entity, error) {
	source, err := e.store.GetEntity(ctx, sourceID)
	if err != nil {
		return nil, nil, fmt.Errorf("source entity %q: %w", sourceID, err)
	}

	entities, err := e.store.ListEntities(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("listing entities: %w", err)
	}
	allRels, err := e.store.ListAllRelationships(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("listing relationships: %w", err)
	}
	srcRels, err := e.store.ListRelationshipsFor(ctx, sourceID)
	if err != nil {
		return nil, nil, fmt.Errorf("relationships for %q: %w", sourceID, err)
	}
	srcTags, err := e.store.ListTagsFor(ctx, sourceID)
	if err != nil {
		return nil, nil, fmt.Errorf("tags for %q: %w", sourceID, err)
	}

	c := &corpus{
		source:      source,
		srcTags:     make(map[string]struct{}, len(srcTags)),
		related:     make(map[string]struct{}),
		neighbors:   make(map[string]map[string]struct{}),
		pairCounts:  make(map[[2]string]int),
		pairByType:  make(map[[2]string]map[string]int),
		sourceNames: make(map[string]string, len(entities)),
	}
	for _, t := range srcTags {
		c.srcTags[t] = struct{}{}
	}
	// Malformed source metadata disables the metadata factor for this call
	// instead of failing it.
	if meta, err := source.DecodeMetadata(); err == nil {
		c.srcMeta = meta
	}

	for _, r := range srcRels {
		if other, ok := r.Other(sourceID); ok {
			c.related[other] = struct{}{}
		}
	}

	typeOf := make(map[string]string, len(entities))
	for _, ent := range entities {
		typeOf[ent.ID] = ent.Type
		c.sourceNames[ent.ID] = ent.Name
	}
	for _, r := range allRels {
		// Duplicate edges collapse in the neighbor sets; they still count
		// toward the affinity statistics with their multiplicity.
		addNeighbor(c.neighbors, r.SourceID, r.TargetID)
		addNeighbor(c.neighbors, r.TargetID, r.SourceID)

		st, sok := typeOf[r.SourceID]
		tt, tok := typeOf[r.TargetID]
		if !sok || !tok {
			continue
		}
		pair := typePair(st, tt)
		c.pairCounts[pair]++
		if c.pairCounts[pair] > c.maxPair {
			c.maxPair = c.pairCounts[pair]
		}
		byType := c.pairByType[pair]
		if byType == nil {
			byType = make(map[string]int)
			c.pairByType[pair] = byType
		}
		byType[r.Type]++
	}

	// Candidate pool: everything except the source and its direct relations,
	// ordered by name so scoring and tie-breaks are deterministic.
	candidates := make([]apptype.Entity, 0, len(entities))
	for _, ent := range entities {
		if ent.ID == sourceID {
			continue
		}
		if _, ok := c.related[ent.ID]; ok {
			continue
		}
		candidates = append(candidates, ent)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Name < candidates[j].Name })

	return c, candidates, nil
}

func addNeighbor(neighbors map[string]map[string]struct{}, from, to string) {
	set := neighbors[from]
	if set == nil {
		set = make(map[string]struct{})
		neighbors[from] = set
	}
	set[to] = struct{}{}
}

// score computes one candidate's breakdown, reasons, and suggested type.
func (e *Engine) score(ctx context.Context, c *corpus, cand *apptype.Entity) (apptype.Suggestion, error) {
	var reasons []string
	breakdown := make(map[string]float64, len(Factors))

	// Type affinity: how often the two types co-occur as related pairs,
	// normalized by the busiest type pair in the corpus.
	pair := typePair(c.source.Type, cand.Type)
	affinity := 0.0
	if c.maxPair > 0 {
		affinity = float64(c.pairCounts[pair]) / float64(c.maxPair)
	}
	breakdown[FactorTypeAffinity] = affinity
	if affinity > e.cfg.MinSignal {
		reasons = append(reasons, fmt.Sprintf("%s and %s entities are frequently linked (%d existing relationships)",
			c.source.Type, cand.Type, c.pairCounts[pair]))
	}

	// Tag overlap: Jaccard over the two tag sets.
	candTags, err := e.store.ListTagsFor(ctx, cand.ID)
	if err != nil {
		return apptype.Suggestion{}, fmt.Errorf("tags for %q: %w", cand.ID, err)
	}
	candTagSet := make(map[string]struct{}, len(candTags))
	for _, t := range candTags {
		candTagSet[t] = struct{}{}
	}
	overlap := jaccard(c.srcTags, candTagSet)
	breakdown[FactorTagOverlap] = overlap
	if overlap > e.cfg.MinSignal {
		shared := sortedKeys(intersect(c.srcTags, candTagSet))
		reasons = append(reasons, "Shares tags: "+strings.Join(shared, ", "))
	}

	// Metadata similarity: shared-key comparison. Malformed metadata on the
	// candidate zeroes this factor for the candidate only.
	metaScore := 0.0
	var matched []string
	if c.srcMeta != nil {
		if candMeta, err := cand.DecodeMetadata(); err == nil {
			metaScore, matched = metadataSimilarity(c.srcMeta, candMeta)
		}
	}
	breakdown[FactorMetadataSimilarity] = metaScore
	if metaScore > e.cfg.MinSignal {
		reasons = append(reasons, "Matching metadata: "+strings.Join(matched, ", "))
	}

	// Connectivity: common-neighbor signal, normalized by the source's
	// degree so the factor stays within [0,1].
	conn := 0.0
	srcN := c.neighbors[c.source.ID]
	if len(srcN) > 0 {
		common := intersect(srcN, c.neighbors[cand.ID])
		if len(common) > 0 {
			conn = float64(len(common)) / float64(len(srcN))
			names := make([]string, 0, len(common))
			for id := range common {
				if name, ok := c.sourceNames[id]; ok {
					names = append(names, name)
				}
			}
			sort.Strings(names)
			reasons = append(reasons, fmt.Sprintf("Connected through: %s", strings.Join(names, ", ")))
		}
	}
	breakdown[FactorConnectivity] = conn

	weights := e.cfg.Weights.Map()
	score := 0.0
	for _, f := range Factors {
		score += weights[f] * breakdown[f]
	}
	if len(reasons) == 0 {
		reasons = []string{"No strong signals found"}
	}

	return apptype.Suggestion{
		Target:                    apptype.EntityRef{ID: cand.ID, Name: cand.Name, Type: cand.Type},
		Score:                     score,
		ScoreBreakdown:            breakdown,
		Reasons:                   reasons,
		SuggestedRelationshipType: dominantType(c.pairByType[pair]),
	}, nil
}

// dominantType returns the strictly most frequent relationship type used
// between a type pair, or nil when the history is empty or tied.
func dominantType(byType map[string]int) *string {
	var best string
	bestCount, runnerUp := 0, 0
	names := make([]string, 0, len(byType))
	for name := range byType {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		n := byType[name]
		switch {
		case n > bestCount:
			runnerUp = bestCount
			best, bestCount = name, n
		case n > runnerUp:
			runnerUp = n
		}
	}
	if bestCount == 0 || bestCount == runnerUp {
		return nil
	}
	return &best
}
