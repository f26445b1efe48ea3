package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entarch/archcat-go/internal/apptype"
	"github.com/entarch/archcat-go/internal/database"
)

func setupService(t *testing.T) *Service {
	cfg := &Config{
		URL: fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")),
	}
	svc, err := NewService(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, svc.Close()) })
	return svc
}

func create(t *testing.T, svc *Service, name, entityType, metadata string, tags ...string) string {
	t.Helper()
	input := apptype.EntityInput{Name: name, Type: entityType, Tags: tags}
	if metadata != "" {
		input.Metadata = json.RawMessage(metadata)
	}
	ids, err := svc.CreateEntities(context.Background(), []apptype.EntityInput{input})
	require.NoError(t, err)
	return ids[0]
}

func TestServiceEndToEndSuggestions(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	cloud := create(t, svc, "Cloud Infrastructure Management", apptype.EntityTypeCapability,
		`{"domain":"Infrastructure","maturity":"High","technology_stack":["Cloud","DevOps"]}`, "infrastructure")
	analytics := create(t, svc, "Data Analytics Platform", apptype.EntityTypeCapability,
		`{"domain":"Analytics","maturity":"Medium","technology_stack":["Big Data","Analytics"]}`, "analytics")
	monitoring := create(t, svc, "Resource Monitoring", apptype.EntityTypeUseCase,
		`{"domain":"Infrastructure","complexity":"Medium","technology_stack":["Monitoring","DevOps"]}`, "infrastructure")
	streaming := create(t, svc, "Real-time Data Processing", apptype.EntityTypeUseCase,
		`{"domain":"Analytics","complexity":"High","technology_stack":["Big Data","Stream Processing"]}`, "analytics")
	k8s := create(t, svc, "Kubernetes", apptype.EntityTypeTool,
		`{"vendor":"CNCF","deployment":"Hybrid","technology_stack":["Container","DevOps"]}`, "infrastructure")
	elastic := create(t, svc, "Elasticsearch", apptype.EntityTypeTool,
		`{"vendor":"Elastic","deployment":"Hybrid","technology_stack":["Search","Analytics"]}`, "analytics")

	_, err := svc.CreateRelationships(ctx, []apptype.RelationshipInput{
		{SourceID: cloud, TargetID: monitoring, Type: "enables"},
		{SourceID: cloud, TargetID: k8s, Type: "uses"},
		{SourceID: analytics, TargetID: streaming, Type: "supports"},
	})
	require.NoError(t, err)

	suggestions, err := svc.Suggest(ctx, analytics)
	require.NoError(t, err)
	require.NotEmpty(t, suggestions)

	// Related and self never show up.
	for _, s := range suggestions {
		assert.NotEqual(t, analytics, s.Target.ID)
		assert.NotEqual(t, streaming, s.Target.ID)
	}

	// Elasticsearch shares the analytics tag; it must outrank Kubernetes.
	rank := make(map[string]int, len(suggestions))
	for i, s := range suggestions {
		rank[s.Target.ID] = i
	}
	require.Contains(t, rank, elastic)
	require.Contains(t, rank, k8s)
	assert.Less(t, rank[elastic], rank[k8s])

	for _, s := range suggestions {
		assert.Len(t, s.ScoreBreakdown, 4)
		assert.NotEmpty(t, s.Reasons)
	}
}

func TestServiceGraphAndTags(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	a := create(t, svc, "API Management", apptype.EntityTypeCapability, "", "integration")
	b := create(t, svc, "Kong API Gateway", apptype.EntityTypeTool, "", "integration")
	_, err := svc.CreateRelationships(ctx, []apptype.RelationshipInput{
		{SourceID: a, TargetID: b, Type: "implemented by"},
	})
	require.NoError(t, err)

	entities, relationships, err := svc.ReadGraph(ctx)
	require.NoError(t, err)
	assert.Len(t, entities, 2)
	require.Len(t, relationships, 1)
	assert.Equal(t, "implemented by", relationships[0].Type)

	tags, err := svc.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, apptype.TagCount{Name: "integration", EntityCount: 2}, tags[0])

	filtered, err := svc.ListEntities(ctx, database.ListEntitiesFilter{Type: apptype.EntityTypeTool})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, b, filtered[0].ID)
}

func TestServiceAdminLifecycle(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.CreateAdmin(ctx, "root", "p4ss", "owner"))

	admin, err := svc.Login(ctx, "root", "p4ss")
	require.NoError(t, err)
	assert.Equal(t, "owner", admin.Role)

	_, err = svc.Login(ctx, "root", "wrong")
	require.Error(t, err)
}
