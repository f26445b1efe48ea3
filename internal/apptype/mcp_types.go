package apptype

import "encoding/json"

// ActorArgs carries the acting admin for audit logging. Mutating tools accept
// it; when empty the action is recorded as unattributed.
type ActorArgs struct {
	Actor string `json:"actor,omitempty" jsonschema:"Username of the acting admin, recorded in the audit log."`
}

// EntityInput is the create-time shape of an entity. The id is minted by the
// catalog; metadata must be a JSON object when present.
type EntityInput struct {
	Name        string          `json:"name" jsonschema:"Unique display name."`
	Type        string          `json:"type" jsonschema:"One of: Capability, Use Case, Tool, Product."`
	Description string          `json:"description,omitempty" jsonschema:"Free-text description."`
	Metadata    json.RawMessage `json:"metadata,omitempty" jsonschema:"JSON object of string keys to scalar or list values."`
	Tags        []string        `json:"tags,omitempty" jsonschema:"Tag names to attach."`
}

// CreateEntitiesArgs represents the arguments for the create_entities tool
type CreateEntitiesArgs struct {
	ActorArgs
	Entities []EntityInput `json:"entities" jsonschema:"A list of entities to create."`
}

// CreateEntitiesResult returns the ids minted for the created entities.
type CreateEntitiesResult struct {
	IDs []string `json:"ids"`
}

// GetEntityArgs represents the arguments for the get_entity tool
type GetEntityArgs struct {
	ID string `json:"id" jsonschema:"Entity id to fetch."`
}

// EntityDetails is the full per-entity payload: the entity with its tags plus
// every relationship touching it, in either direction.
type EntityDetails struct {
	Entity        Entity         `json:"entity"`
	Relationships []Relationship `json:"relationships"`
}

// ListEntitiesArgs represents the arguments for the list_entities tool
type ListEntitiesArgs struct {
	Type     string   `json:"type,omitempty" jsonschema:"Filter by entity type."`
	Search   string   `json:"search,omitempty" jsonschema:"Substring to search for."`
	SearchIn string   `json:"searchIn,omitempty" jsonschema:"Where to search: name, description, or all (default name)."`
	Tags     []string `json:"tags,omitempty" jsonschema:"Only entities carrying at least one of these tags."`
}

// EntityListResult is the result for entity listing tools.
type EntityListResult struct {
	Entities []Entity `json:"entities"`
}

// UpdateEntityArgs represents the arguments for the update_entity tool.
// Nil fields are left unchanged.
type UpdateEntityArgs struct {
	ActorArgs
	ID          string          `json:"id" jsonschema:"Entity id to update."`
	Description *string         `json:"description,omitempty" jsonschema:"New description."`
	Metadata    json.RawMessage `json:"metadata,omitempty" jsonschema:"Replacement metadata object."`
}

// SetEntityTagsArgs represents the arguments for the set_entity_tags tool.
// The given set replaces the entity's tags entirely.
type SetEntityTagsArgs struct {
	ActorArgs
	ID   string   `json:"id" jsonschema:"Entity id."`
	Tags []string `json:"tags" jsonschema:"Full replacement tag set (may be empty)."`
}

// DeleteEntitiesArgs represents the arguments for the delete_entities tool
type DeleteEntitiesArgs struct {
	ActorArgs
	IDs []string `json:"ids" jsonschema:"Entity ids to delete."`
}

// RelationshipInput is the create-time shape of a relationship.
type RelationshipInput struct {
	SourceID string `json:"source_id" jsonschema:"Source entity id."`
	TargetID string `json:"target_id" jsonschema:"Target entity id."`
	Type     string `json:"relationship_type" jsonschema:"Relationship type; standard vocabulary or free text."`
}

// CreateRelationshipsArgs represents the arguments for the create_relationships tool
type CreateRelationshipsArgs struct {
	ActorArgs
	Relationships []RelationshipInput `json:"relationships" jsonschema:"Relationships to create."`
}

// UpdateRelationshipArgs represents the arguments for the update_relationship tool
type UpdateRelationshipArgs struct {
	ActorArgs
	ID   string `json:"id" jsonschema:"Relationship id."`
	Type string `json:"relationship_type" jsonschema:"New relationship type."`
}

// DeleteRelationshipArgs deletes by id, or by endpoint pair when id is empty
// (both orientations, matching the admin form's behavior).
type DeleteRelationshipArgs struct {
	ActorArgs
	ID       string `json:"id,omitempty" jsonschema:"Relationship id to delete."`
	SourceID string `json:"source_id,omitempty" jsonschema:"Endpoint pair deletion: one entity id."`
	TargetID string `json:"target_id,omitempty" jsonschema:"Endpoint pair deletion: the other entity id."`
}

// ListTagsArgs represents the arguments for the list_tags tool
type ListTagsArgs struct{}

// TagListResult is the result for list_tags.
type TagListResult struct {
	Tags []TagCount `json:"tags"`
}

// ReadGraphArgs represents the arguments for the read_graph tool
type ReadGraphArgs struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of recent entities to return (0 for all)."`
}

// GraphResult represents the result for graph-shaped tools.
type GraphResult struct {
	Entities      []Entity       `json:"entities"`
	Relationships []Relationship `json:"relationships"`
}

// SuggestRelationshipsArgs represents the arguments for the suggest_relationships tool
type SuggestRelationshipsArgs struct {
	ID string `json:"id" jsonschema:"Source entity id to compute suggestions for."`
}

// SuggestionsResult is the ordered suggestion list for one source entity.
type SuggestionsResult struct {
	Suggestions []Suggestion `json:"suggestions"`
}

// AdminLoginArgs represents the arguments for the admin_login tool
type AdminLoginArgs struct {
	Username string `json:"username" jsonschema:"Admin username."`
	Password string `json:"password" jsonschema:"Admin password."`
}

// AdminLoginResult reports the outcome of a login attempt. On lockout,
// RetryAfterSeconds carries the remaining lockout time.
type AdminLoginResult struct {
	OK                bool   `json:"ok"`
	Role              string `json:"role,omitempty"`
	RetryAfterSeconds int    `json:"retryAfterSeconds,omitempty"`
}

// AuditLogArgs represents the arguments for the audit_log tool
type AuditLogArgs struct {
	Action string `json:"action,omitempty" jsonschema:"Filter by action type."`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum entries to return (default 50)."`
}

// AuditLogResult is the result for audit_log.
type AuditLogResult struct {
	Entries []AuditEntry `json:"entries"`
}

// HealthArgs represents the arguments for the health_check tool
type HealthArgs struct{}

// HealthResult reports server and configuration information.
type HealthResult struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Revision  string `json:"revision"`
	BuildDate string `json:"buildDate"`
	Entities  int    `json:"entities"`
}
