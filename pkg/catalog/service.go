// Package catalog provides a library-first API for the architecture catalog
// without MCP transport.
package catalog

import (
	"context"
	"encoding/json"

	"github.com/entarch/archcat-go/internal/apptype"
	"github.com/entarch/archcat-go/internal/auth"
	"github.com/entarch/archcat-go/internal/database"
	"github.com/entarch/archcat-go/internal/suggest"
)

// Service exposes catalog operations over an embedded database.
type Service struct {
	db     *database.DBManager
	engine *suggest.Engine
	auth   *auth.Manager
}

// NewService constructs a Service with the provided config.
func NewService(cfg *Config) (*Service, error) {
	dm, err := database.NewDBManager(cfg.toInternal())
	if err != nil {
		return nil, err
	}
	engine, err := suggest.NewEngine(dm.SuggestStore(), cfg.suggestConfig())
	if err != nil {
		dm.Close()
		return nil, err
	}
	return &Service{
		db:     dm,
		engine: engine,
		auth:   auth.NewManager(dm),
	}, nil
}

// Close releases resources.
func (s *Service) Close() error { return s.db.Close() }

// DB exposes the underlying database manager for server wiring.
func (s *Service) DB() *database.DBManager { return s.db }

// Engine exposes the suggestion engine for server wiring.
func (s *Service) Engine() *suggest.Engine { return s.engine }

// Auth exposes the admin authenticator for server wiring.
func (s *Service) Auth() *auth.Manager { return s.auth }

// CreateEntities inserts entities and returns their minted ids.
func (s *Service) CreateEntities(ctx context.Context, entities []apptype.EntityInput) ([]string, error) {
	return s.db.CreateEntities(ctx, entities)
}

// GetEntity fetches one entity with its tags.
func (s *Service) GetEntity(ctx context.Context, id string) (*apptype.Entity, error) {
	return s.db.GetEntity(ctx, id)
}

// GetEntityByName fetches one entity by its unique name.
func (s *Service) GetEntityByName(ctx context.Context, name string) (*apptype.Entity, error) {
	return s.db.GetEntityByName(ctx, name)
}

// ListEntities lists entities filtered by type, search text, or tags.
func (s *Service) ListEntities(ctx context.Context, filter database.ListEntitiesFilter) ([]apptype.Entity, error) {
	return s.db.ListEntities(ctx, filter)
}

// UpdateEntity updates an entity's description or metadata.
func (s *Service) UpdateEntity(ctx context.Context, id string, description *string, metadata json.RawMessage) error {
	return s.db.UpdateEntity(ctx, id, description, metadata)
}

// SetEntityTags replaces an entity's tag set.
func (s *Service) SetEntityTags(ctx context.Context, id string, tags []string) error {
	return s.db.SetEntityTags(ctx, id, tags)
}

// DeleteEntities deletes entities with their tags and relationships.
func (s *Service) DeleteEntities(ctx context.Context, ids []string) error {
	return s.db.DeleteEntities(ctx, ids)
}

// CreateRelationships inserts relationships and returns their minted ids.
func (s *Service) CreateRelationships(ctx context.Context, rels []apptype.RelationshipInput) ([]string, error) {
	return s.db.CreateRelationships(ctx, rels)
}

// ListRelationshipsFor returns every relationship touching an entity.
func (s *Service) ListRelationshipsFor(ctx context.Context, id string) ([]apptype.Relationship, error) {
	return s.db.ListRelationshipsFor(ctx, id)
}

// ListRelationships returns relationships matching the admin filter.
func (s *Service) ListRelationships(ctx context.Context, filter database.ListRelationshipsFilter) ([]apptype.Relationship, error) {
	return s.db.ListRelationships(ctx, filter)
}

// UpdateRelationship changes a relationship's type.
func (s *Service) UpdateRelationship(ctx context.Context, id, relationshipType string) error {
	return s.db.UpdateRelationship(ctx, id, relationshipType)
}

// DeleteRelationship deletes one relationship by id.
func (s *Service) DeleteRelationship(ctx context.Context, id string) error {
	return s.db.DeleteRelationship(ctx, id)
}

// DeleteRelationshipsBetween deletes all links between two entities.
func (s *Service) DeleteRelationshipsBetween(ctx context.Context, a, b string) (int64, error) {
	return s.db.DeleteRelationshipsBetween(ctx, a, b)
}

// AddTag registers a tag in the vocabulary.
func (s *Service) AddTag(ctx context.Context, name string) error {
	return s.db.AddTag(ctx, name)
}

// ListTags returns the tag vocabulary with usage counts.
func (s *Service) ListTags(ctx context.Context) ([]apptype.TagCount, error) {
	return s.db.ListTags(ctx)
}

// ReadGraph returns the full catalog graph.
func (s *Service) ReadGraph(ctx context.Context) ([]apptype.Entity, []apptype.Relationship, error) {
	entities, err := s.db.ListEntities(ctx, database.ListEntitiesFilter{})
	if err != nil {
		return nil, nil, err
	}
	relationships, err := s.db.ListAllRelationships(ctx)
	if err != nil {
		return nil, nil, err
	}
	return entities, relationships, nil
}

// Suggest ranks candidate entities for new relationships from a source entity.
func (s *Service) Suggest(ctx context.Context, sourceID string) ([]apptype.Suggestion, error) {
	return s.engine.Suggest(ctx, sourceID)
}

// CreateAdmin hashes the password and stores an active admin record.
func (s *Service) CreateAdmin(ctx context.Context, username, password, role string) error {
	return s.auth.CreateAdmin(ctx, username, password, role)
}

// Login verifies admin credentials.
func (s *Service) Login(ctx context.Context, username, password string) (*apptype.Admin, error) {
	return s.auth.Login(ctx, username, password)
}

// AuditLog returns recent admin actions, newest first.
func (s *Service) AuditLog(ctx context.Context, action string, limit int) ([]apptype.AuditEntry, error) {
	return s.db.ListAuditLog(ctx, action, limit)
}
