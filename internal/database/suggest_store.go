package database

import (
	"context"

	"github.com/entarch/archcat-go/internal/apptype"
	"github.com/entarch/archcat-go/internal/suggest"
)

// suggestStore adapts the manager to the suggestion engine's read contract,
// which lists the whole catalog rather than a filtered view.
type suggestStore struct {
	dm *DBManager
}

func (s suggestStore) ListEntities(ctx context.Context) ([]apptype.Entity, error) {
	return s.dm.ListEntities(ctx, ListEntitiesFilter{})
}

func (s suggestStore) GetEntity(ctx context.Context, id string) (*apptype.Entity, error) {
	return s.dm.GetEntity(ctx, id)
}

func (s suggestStore) ListRelationshipsFor(ctx context.Context, entityID string) ([]apptype.Relationship, error) {
	return s.dm.ListRelationshipsFor(ctx, entityID)
}

func (s suggestStore) ListAllRelationships(ctx context.Context) ([]apptype.Relationship, error) {
	return s.dm.ListAllRelationships(ctx)
}

func (s suggestStore) ListTagsFor(ctx context.Context, entityID string) ([]string, error) {
	return s.dm.ListTagsFor(ctx, entityID)
}

// SuggestStore exposes the manager as a suggest.Store.
func (dm *DBManager) SuggestStore() suggest.Store {
	return suggestStore{dm: dm}
}
