package apptype

import (
	"encoding/json"
	"time"
)

// Entity types form a closed vocabulary; anything else is rejected on create.
const (
	EntityTypeCapability = "Capability"
	EntityTypeUseCase    = "Use Case"
	EntityTypeTool       = "Tool"
	EntityTypeProduct    = "Product"
)

// EntityTypes lists the valid entity types in display order.
var EntityTypes = []string{
	EntityTypeCapability,
	EntityTypeUseCase,
	EntityTypeTool,
	EntityTypeProduct,
}

// ValidEntityType reports whether t is one of the known entity types.
func ValidEntityType(t string) bool {
	for _, known := range EntityTypes {
		if t == known {
			return true
		}
	}
	return false
}

// RelationshipTypes is the standard relationship vocabulary. Free-text types
// are tolerated everywhere; this list only drives pickers and seeding.
var RelationshipTypes = []string{
	"enables",
	"implemented by",
	"uses",
	"supports",
	"powered by",
	"delivers",
}

// Entity represents a cataloged architecture element.
//
// Metadata is schema-less JSON: an object mapping string keys to scalar or
// list values. It is carried raw so that malformed values stored by older
// writers degrade a single entity's scoring instead of failing a request.
type Entity struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Description string          `json:"description,omitempty"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	CreatedAt   time.Time       `json:"created_at,omitempty"`
}

// DecodeMetadata parses the entity's metadata object. A nil or empty payload
// yields an empty map; a payload that is not a JSON object is an error.
func (e *Entity) DecodeMetadata() (map[string]any, error) {
	if len(e.Metadata) == 0 {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(e.Metadata, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

// Relationship is a directed, typed link between two entities. Both endpoints
// see it as a "related" entry regardless of direction.
type Relationship struct {
	ID        string    `json:"id"`
	SourceID  string    `json:"source_id"`
	TargetID  string    `json:"target_id"`
	Type      string    `json:"relationship_type"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Other returns the endpoint opposite to the given entity id, and whether the
// given id is one of the endpoints at all.
func (r Relationship) Other(id string) (string, bool) {
	switch id {
	case r.SourceID:
		return r.TargetID, true
	case r.TargetID:
		return r.SourceID, true
	}
	return "", false
}

// Tag is a free-form label attachable to entities. Names are case-sensitive
// and matched exactly.
type Tag struct {
	Name string `json:"name"`
}

// TagCount is a tag together with how many entities carry it.
type TagCount struct {
	Name        string `json:"name"`
	EntityCount int    `json:"entity_count"`
}

// EntityRef is the compact entity reference carried inside suggestions.
type EntityRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Suggestion is one ranked candidate for a new relationship. ScoreBreakdown
// holds the raw normalized sub-scores keyed by factor name; Score is their
// fixed weighted sum. SuggestedRelationshipType is nil when no historical
// type dominates, which tells the caller to ask for a free-text type.
type Suggestion struct {
	Target                    EntityRef          `json:"target"`
	Score                     float64            `json:"score"`
	ScoreBreakdown            map[string]float64 `json:"score_breakdown"`
	Reasons                   []string           `json:"reasons"`
	SuggestedRelationshipType *string            `json:"suggested_relationship_type"`
}

// AuditEntry is one recorded admin action.
type AuditEntry struct {
	ID         int64           `json:"id"`
	Username   string          `json:"username"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type,omitempty"`
	EntityID   string          `json:"entity_id,omitempty"`
	Details    json.RawMessage `json:"details,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Admin is a credentialed catalog administrator.
type Admin struct {
	Username         string     `json:"username"`
	PasswordHash     string     `json:"-"`
	Role             string     `json:"role"`
	LoginAttempts    int        `json:"-"`
	LastLoginAttempt *time.Time `json:"-"`
	LastLogin        *time.Time `json:"last_login,omitempty"`
	IsActive         bool       `json:"is_active"`
}
