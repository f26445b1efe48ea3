package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entarch/archcat-go/internal/apptype"
)

// fakeStore is an in-memory Store for engine tests.
type fakeStore struct {
	entities      []apptype.Entity
	relationships []apptype.Relationship
	tags          map[string][]string
}

func (f *fakeStore) ListEntities(ctx context.Context) ([]apptype.Entity, error) {
	return f.entities, nil
}

func (f *fakeStore) GetEntity(ctx context.Context, id string) (*apptype.Entity, error) {
	for i := range f.entities {
		if f.entities[i].ID == id {
			return &f.entities[i], nil
		}
	}
	return nil, fmt.Errorf("entity %q: %w", id, apptype.ErrNotFound)
}

func (f *fakeStore) ListRelationshipsFor(ctx context.Context, entityID string) ([]apptype.Relationship, error) {
	var out []apptype.Relationship
	for _, r := range f.relationships {
		if r.SourceID == entityID || r.TargetID == entityID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) ListAllRelationships(ctx context.Context) ([]apptype.Relationship, error) {
	return f.relationships, nil
}

func (f *fakeStore) ListTagsFor(ctx context.Context, entityID string) ([]string, error) {
	return f.tags[entityID], nil
}

func newTestEngine(t *testing.T, store Store) *Engine {
	t.Helper()
	engine, err := NewEngine(store, DefaultConfig())
	require.NoError(t, err)
	return engine
}

func entity(id, name, entityType string, metadata string) apptype.Entity {
	e := apptype.Entity{ID: id, Name: name, Type: entityType}
	if metadata != "" {
		e.Metadata = json.RawMessage(metadata)
	}
	return e
}

func rel(id, source, target, relType string) apptype.Relationship {
	return apptype.Relationship{ID: id, SourceID: source, TargetID: target, Type: relType}
}

func TestSuggestSharedTagsRankFirst(t *testing.T) {
	store := &fakeStore{
		entities: []apptype.Entity{
			entity("src", "Analytics Platform", apptype.EntityTypeCapability, ""),
			entity("c1", "Elasticsearch", apptype.EntityTypeTool, ""),
			entity("c2", "Kong Gateway", apptype.EntityTypeTool, ""),
		},
		tags: map[string][]string{
			"src": {"analytics", "data"},
			"c1":  {"analytics", "data"},
		},
	}
	engine := newTestEngine(t, store)

	suggestions, err := engine.Suggest(context.Background(), "src")
	require.NoError(t, err)
	require.Len(t, suggestions, 2)

	first := suggestions[0]
	assert.Equal(t, "c1", first.Target.ID)
	assert.Greater(t, first.ScoreBreakdown[FactorTagOverlap], 0.0)
	assert.Contains(t, first.Reasons[0], "Shares tags: analytics, data")

	// No relationships anywhere: affinity and connectivity stay zero.
	assert.Zero(t, first.ScoreBreakdown[FactorTypeAffinity])
	assert.Zero(t, first.ScoreBreakdown[FactorConnectivity])
	assert.Nil(t, first.SuggestedRelationshipType)
}

func TestSuggestSingleEntityCorpus(t *testing.T) {
	store := &fakeStore{
		entities: []apptype.Entity{entity("src", "Lonely", apptype.EntityTypeCapability, "")},
	}
	engine := newTestEngine(t, store)

	suggestions, err := engine.Suggest(context.Background(), "src")
	require.NoError(t, err)
	assert.NotNil(t, suggestions)
	assert.Empty(t, suggestions)
}

func TestSuggestUnknownSource(t *testing.T) {
	engine := newTestEngine(t, &fakeStore{})
	_, err := engine.Suggest(context.Background(), "ghost")
	assert.ErrorIs(t, err, apptype.ErrNotFound)
}

func TestSuggestNoSignals(t *testing.T) {
	store := &fakeStore{
		entities: []apptype.Entity{
			entity("src", "A", apptype.EntityTypeCapability, `{"domain":"Security"}`),
			entity("c1", "B", apptype.EntityTypeProduct, `{"domain":"Analytics"}`),
		},
	}
	engine := newTestEngine(t, store)

	suggestions, err := engine.Suggest(context.Background(), "src")
	require.NoError(t, err)
	require.Len(t, suggestions, 1)

	s := suggestions[0]
	assert.Zero(t, s.Score)
	assert.Nil(t, s.SuggestedRelationshipType)
	assert.Equal(t, []string{"No strong signals found"}, s.Reasons)
	for _, factor := range Factors {
		assert.Zero(t, s.ScoreBreakdown[factor], factor)
	}
}

func TestSuggestMalformedCandidateMetadata(t *testing.T) {
	store := &fakeStore{
		entities: []apptype.Entity{
			entity("src", "Source", apptype.EntityTypeCapability, `{"domain":"Analytics"}`),
			entity("bad", "Broken", apptype.EntityTypeTool, `["not","an","object"]`),
			entity("good", "Healthy", apptype.EntityTypeTool, `{"domain":"Analytics"}`),
		},
	}
	engine := newTestEngine(t, store)

	suggestions, err := engine.Suggest(context.Background(), "src")
	require.NoError(t, err)
	require.Len(t, suggestions, 2)

	byID := make(map[string]apptype.Suggestion, 2)
	for _, s := range suggestions {
		byID[s.Target.ID] = s
	}
	assert.Zero(t, byID["bad"].ScoreBreakdown[FactorMetadataSimilarity])
	assert.Equal(t, 1.0, byID["good"].ScoreBreakdown[FactorMetadataSimilarity])
	assert.Equal(t, "good", suggestions[0].Target.ID)
}

func TestSuggestExcludesSelfAndRelated(t *testing.T) {
	store := &fakeStore{
		entities: []apptype.Entity{
			entity("src", "Source", apptype.EntityTypeCapability, ""),
			entity("linked", "Linked", apptype.EntityTypeTool, ""),
			entity("free", "Free", apptype.EntityTypeTool, ""),
		},
		relationships: []apptype.Relationship{
			// Inbound edge: exclusion is direction-agnostic.
			rel("r1", "linked", "src", "supports"),
		},
	}
	engine := newTestEngine(t, store)

	suggestions, err := engine.Suggest(context.Background(), "src")
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "free", suggestions[0].Target.ID)
}

func TestSuggestTypeAffinityAndDominantType(t *testing.T) {
	store := &fakeStore{
		entities: []apptype.Entity{
			entity("cap1", "Cap One", apptype.EntityTypeCapability, ""),
			entity("cap2", "Cap Two", apptype.EntityTypeCapability, ""),
			entity("tool1", "Tool One", apptype.EntityTypeTool, ""),
			entity("tool2", "Tool Two", apptype.EntityTypeTool, ""),
			entity("tool3", "Tool Three", apptype.EntityTypeTool, ""),
		},
		relationships: []apptype.Relationship{
			rel("r1", "cap2", "tool1", "implemented by"),
			rel("r2", "cap2", "tool2", "implemented by"),
			rel("r3", "cap2", "tool3", "uses"),
		},
	}
	engine := newTestEngine(t, store)

	suggestions, err := engine.Suggest(context.Background(), "cap1")
	require.NoError(t, err)
	require.Len(t, suggestions, 4)

	for _, s := range suggestions {
		if s.Target.Type != apptype.EntityTypeTool {
			continue
		}
		// Capability-Tool is the busiest pair, so affinity is maximal.
		assert.Equal(t, 1.0, s.ScoreBreakdown[FactorTypeAffinity], s.Target.Name)
		require.NotNil(t, s.SuggestedRelationshipType, s.Target.Name)
		assert.Equal(t, "implemented by", *s.SuggestedRelationshipType)
		require.NotEmpty(t, s.Reasons)
		assert.Contains(t, s.Reasons[0], "Capability and Tool entities are frequently linked (3 existing relationships)")
	}
}

func TestSuggestDominantTypeTieYieldsNil(t *testing.T) {
	store := &fakeStore{
		entities: []apptype.Entity{
			entity("cap1", "Cap One", apptype.EntityTypeCapability, ""),
			entity("cap2", "Cap Two", apptype.EntityTypeCapability, ""),
			entity("tool1", "Tool One", apptype.EntityTypeTool, ""),
			entity("tool2", "Tool Two", apptype.EntityTypeTool, ""),
		},
		relationships: []apptype.Relationship{
			rel("r1", "cap2", "tool1", "uses"),
			rel("r2", "cap2", "tool2", "implemented by"),
		},
	}
	engine := newTestEngine(t, store)

	suggestions, err := engine.Suggest(context.Background(), "cap1")
	require.NoError(t, err)
	for _, s := range suggestions {
		if s.Target.Type == apptype.EntityTypeTool {
			assert.Nil(t, s.SuggestedRelationshipType, s.Target.Name)
		}
	}
}

func TestSuggestConnectivity(t *testing.T) {
	store := &fakeStore{
		entities: []apptype.Entity{
			entity("src", "Source", apptype.EntityTypeCapability, ""),
			entity("hub1", "Hub One", apptype.EntityTypeUseCase, ""),
			entity("hub2", "Hub Two", apptype.EntityTypeUseCase, ""),
			entity("cand", "Candidate", apptype.EntityTypeTool, ""),
		},
		relationships: []apptype.Relationship{
			rel("r1", "src", "hub1", "enables"),
			rel("r2", "src", "hub2", "enables"),
			rel("r3", "cand", "hub1", "supports"),
		},
	}
	engine := newTestEngine(t, store)

	suggestions, err := engine.Suggest(context.Background(), "src")
	require.NoError(t, err)
	require.Len(t, suggestions, 1)

	s := suggestions[0]
	assert.Equal(t, "cand", s.Target.ID)
	// One of the source's two neighbors is shared.
	assert.InDelta(t, 0.5, s.ScoreBreakdown[FactorConnectivity], 1e-12)
	assert.Contains(t, s.Reasons, "Connected through: Hub One")
}

func TestSuggestDeterministicOutput(t *testing.T) {
	store := &fakeStore{
		entities: []apptype.Entity{
			entity("src", "Source", apptype.EntityTypeCapability, `{"domain":"Analytics","maturity":"High"}`),
			entity("c1", "Alpha", apptype.EntityTypeTool, `{"domain":"Analytics"}`),
			entity("c2", "Beta", apptype.EntityTypeTool, `{"domain":"Analytics"}`),
			entity("c3", "Gamma", apptype.EntityTypeUseCase, `{"maturity":"High"}`),
		},
		relationships: []apptype.Relationship{
			rel("r1", "c1", "c3", "uses"),
		},
		tags: map[string][]string{
			"src": {"x", "y"},
			"c2":  {"x"},
			"c3":  {"y"},
		},
	}
	engine := newTestEngine(t, store)

	first, err := engine.Suggest(context.Background(), "src")
	require.NoError(t, err)
	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := engine.Suggest(context.Background(), "src")
		require.NoError(t, err)
		againJSON, err := json.Marshal(again)
		require.NoError(t, err)
		assert.Equal(t, string(firstJSON), string(againJSON))
	}
}

func TestSuggestTieBrokenByName(t *testing.T) {
	store := &fakeStore{
		entities: []apptype.Entity{
			entity("src", "Source", apptype.EntityTypeCapability, ""),
			entity("b", "Bravo", apptype.EntityTypeTool, ""),
			entity("a", "Alpha", apptype.EntityTypeTool, ""),
		},
	}
	engine := newTestEngine(t, store)

	suggestions, err := engine.Suggest(context.Background(), "src")
	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	assert.Equal(t, "Alpha", suggestions[0].Target.Name)
	assert.Equal(t, "Bravo", suggestions[1].Target.Name)
}

func TestSuggestHonorsTopN(t *testing.T) {
	store := &fakeStore{tags: map[string][]string{}}
	store.entities = append(store.entities, entity("src", "Source", apptype.EntityTypeCapability, ""))
	for i := 0; i < 25; i++ {
		id := fmt.Sprintf("c%02d", i)
		store.entities = append(store.entities, entity(id, "Candidate "+id, apptype.EntityTypeTool, ""))
	}

	cfg := DefaultConfig()
	cfg.TopN = 7
	engine, err := NewEngine(store, cfg)
	require.NoError(t, err)

	suggestions, err := engine.Suggest(context.Background(), "src")
	require.NoError(t, err)
	assert.Len(t, suggestions, 7)
}

func TestSuggestBreakdownKeysAndBounds(t *testing.T) {
	store := &fakeStore{
		entities: []apptype.Entity{
			entity("src", "Source", apptype.EntityTypeCapability, `{"domain":"Analytics"}`),
			entity("c1", "Cand", apptype.EntityTypeTool, `{"domain":"Analytics"}`),
			entity("c2", "Other", apptype.EntityTypeUseCase, ""),
		},
		relationships: []apptype.Relationship{
			rel("r1", "c1", "c2", "uses"),
			rel("r2", "src", "c2", "enables"),
		},
		tags: map[string][]string{"src": {"t"}, "c1": {"t"}},
	}
	engine := newTestEngine(t, store)

	suggestions, err := engine.Suggest(context.Background(), "src")
	require.NoError(t, err)
	require.NotEmpty(t, suggestions)

	weights := DefaultConfig().Weights.Map()
	for _, s := range suggestions {
		require.Len(t, s.ScoreBreakdown, len(Factors))
		sum := 0.0
		for _, factor := range Factors {
			v, ok := s.ScoreBreakdown[factor]
			require.True(t, ok, factor)
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
			sum += weights[factor] * v
		}
		assert.InDelta(t, sum, s.Score, 1e-12)
	}
}

func TestSuggestDuplicateEdgesCollapseInConnectivity(t *testing.T) {
	store := &fakeStore{
		entities: []apptype.Entity{
			entity("src", "Source", apptype.EntityTypeCapability, ""),
			entity("hub", "Hub", apptype.EntityTypeUseCase, ""),
			entity("cand", "Cand", apptype.EntityTypeTool, ""),
		},
		relationships: []apptype.Relationship{
			rel("r1", "src", "hub", "enables"),
			rel("r2", "cand", "hub", "supports"),
			rel("r3", "cand", "hub", "uses"), // duplicate pair, different type
		},
	}
	engine := newTestEngine(t, store)

	suggestions, err := engine.Suggest(context.Background(), "src")
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	// Two edges to the same neighbor count once.
	assert.Equal(t, 1.0, suggestions[0].ScoreBreakdown[FactorConnectivity])
}

func TestNewEngineRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights.TypeAffinity = 0.9 // sum != 1.0
	_, err := NewEngine(&fakeStore{}, cfg)
	assert.ErrorIs(t, err, apptype.ErrInvalidData)

	cfg = DefaultConfig()
	cfg.TopN = 0
	_, err = NewEngine(&fakeStore{}, cfg)
	assert.ErrorIs(t, err, apptype.ErrInvalidData)
}
