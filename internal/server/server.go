package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/entarch/archcat-go/internal/apptype"
	"github.com/entarch/archcat-go/internal/auth"
	"github.com/entarch/archcat-go/internal/buildinfo"
	"github.com/entarch/archcat-go/internal/database"
	"github.com/entarch/archcat-go/internal/metrics"
	"github.com/entarch/archcat-go/internal/suggest"
)

// MCPServer handles MCP protocol communication
type MCPServer struct {
	server *mcp.Server
	db     *database.DBManager
	engine *suggest.Engine
	auth   *auth.Manager
	log    *zap.Logger
}

// NewMCPServer creates a new MCP server over the catalog database.
func NewMCPServer(db *database.DBManager, engine *suggest.Engine, authMgr *auth.Manager, log *zap.Logger) *MCPServer {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "archcat-go",
		Version: buildinfo.Version,
	}, nil)

	mcpServer := &MCPServer{
		server: server,
		db:     db,
		engine: engine,
		auth:   authMgr,
		log:    log,
	}

	// initialize metrics from env (no-op if disabled)
	metrics.InitFromEnv()
	mcpServer.setupToolHandlers()
	return mcpServer
}

func mustSchema[T any](name string) *jsonschema.Schema {
	schema, err := jsonschema.For[T]()
	if err != nil {
		panic(fmt.Sprintf("failed to create schema for %s: %v", name, err))
	}
	return schema
}

// setupToolHandlers registers all MCP tools
func (s *MCPServer) setupToolHandlers() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:         "create_entities",
		Title:        "Create Entities",
		Description:  "Create catalog entities with optional tags and metadata.",
		InputSchema:  mustSchema[apptype.CreateEntitiesArgs]("CreateEntitiesArgs"),
		OutputSchema: mustSchema[apptype.CreateEntitiesResult]("CreateEntitiesResult"),
	}, s.handleCreateEntities)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:         "get_entity",
		Title:        "Get Entity",
		Description:  "Fetch one entity with its tags and relationships.",
		InputSchema:  mustSchema[apptype.GetEntityArgs]("GetEntityArgs"),
		OutputSchema: mustSchema[apptype.EntityDetails]("EntityDetails"),
	}, s.handleGetEntity)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:         "list_entities",
		Title:        "List Entities",
		Description:  "List entities filtered by type, search text, or tags.",
		InputSchema:  mustSchema[apptype.ListEntitiesArgs]("ListEntitiesArgs"),
		OutputSchema: mustSchema[apptype.EntityListResult]("EntityListResult"),
	}, s.handleListEntities)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "update_entity",
		Title:       "Update Entity",
		Description: "Update an entity's description or metadata.",
		InputSchema: mustSchema[apptype.UpdateEntityArgs]("UpdateEntityArgs"),
	}, s.handleUpdateEntity)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "set_entity_tags",
		Title:       "Set Entity Tags",
		Description: "Replace the full tag set of an entity.",
		InputSchema: mustSchema[apptype.SetEntityTagsArgs]("SetEntityTagsArgs"),
	}, s.handleSetEntityTags)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_entities",
		Title:       "Delete Entities",
		Description: "Delete entities together with their tags and relationships.",
		InputSchema: mustSchema[apptype.DeleteEntitiesArgs]("DeleteEntitiesArgs"),
	}, s.handleDeleteEntities)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:         "create_relationships",
		Title:        "Create Relationships",
		Description:  "Create typed relationships between existing entities.",
		InputSchema:  mustSchema[apptype.CreateRelationshipsArgs]("CreateRelationshipsArgs"),
		OutputSchema: mustSchema[apptype.CreateEntitiesResult]("CreateEntitiesResult (relationships)"),
	}, s.handleCreateRelationships)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "update_relationship",
		Title:       "Update Relationship",
		Description: "Change the type of an existing relationship.",
		InputSchema: mustSchema[apptype.UpdateRelationshipArgs]("UpdateRelationshipArgs"),
	}, s.handleUpdateRelationship)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_relationship",
		Title:       "Delete Relationship",
		Description: "Delete a relationship by id, or every link between two entities.",
		InputSchema: mustSchema[apptype.DeleteRelationshipArgs]("DeleteRelationshipArgs"),
	}, s.handleDeleteRelationship)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:         "list_tags",
		Title:        "List Tags",
		Description:  "List the tag vocabulary with usage counts.",
		InputSchema:  mustSchema[apptype.ListTagsArgs]("ListTagsArgs"),
		OutputSchema: mustSchema[apptype.TagListResult]("TagListResult"),
	}, s.handleListTags)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:         "read_graph",
		Title:        "Read Graph",
		Description:  "Get entities and relationships for the whole catalog.",
		InputSchema:  mustSchema[apptype.ReadGraphArgs]("ReadGraphArgs"),
		OutputSchema: mustSchema[apptype.GraphResult]("GraphResult"),
	}, s.handleReadGraph)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:         "suggest_relationships",
		Title:        "Suggest Relationships",
		Description:  "Rank candidate entities for new relationships from a source entity.",
		InputSchema:  mustSchema[apptype.SuggestRelationshipsArgs]("SuggestRelationshipsArgs"),
		OutputSchema: mustSchema[apptype.SuggestionsResult]("SuggestionsResult"),
	}, s.handleSuggestRelationships)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:         "admin_login",
		Title:        "Admin Login",
		Description:  "Verify administrator credentials.",
		InputSchema:  mustSchema[apptype.AdminLoginArgs]("AdminLoginArgs"),
		OutputSchema: mustSchema[apptype.AdminLoginResult]("AdminLoginResult"),
	}, s.handleAdminLogin)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:         "audit_log",
		Title:        "Audit Log",
		Description:  "Read recent admin actions, newest first.",
		InputSchema:  mustSchema[apptype.AuditLogArgs]("AuditLogArgs"),
		OutputSchema: mustSchema[apptype.AuditLogResult]("AuditLogResult"),
	}, s.handleAuditLog)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:         "health_check",
		Title:        "Health Check",
		Description:  "Returns server and catalog information.",
		InputSchema:  mustSchema[apptype.HealthArgs]("HealthArgs"),
		OutputSchema: mustSchema[apptype.HealthResult]("HealthResult"),
	}, s.handleHealth)
}

// audit records an admin action. Audit failures never fail the tool call.
func (s *MCPServer) audit(ctx context.Context, actor, action, entityType, entityID string, details any) {
	username := actor
	if username == "" {
		username = "anonymous"
	}
	var payload json.RawMessage
	if details != nil {
		if b, err := json.Marshal(details); err == nil {
			payload = b
		}
	}
	if err := s.db.LogAction(ctx, username, action, entityType, entityID, payload); err != nil {
		s.log.Warn("audit write failed", zap.String("action", action), zap.Error(err))
	}
}

// handleCreateEntities handles the create_entities tool call
func (s *MCPServer) handleCreateEntities(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.CreateEntitiesArgs],
) (*mcp.CallToolResultFor[apptype.CreateEntitiesResult], error) {
	done := metrics.TimeTool("create_entities")
	var success bool
	defer func() { done(success) }()

	entities := params.Arguments.Entities
	if len(entities) == 0 {
		return nil, fmt.Errorf("no entities given")
	}
	ids, err := s.db.CreateEntities(ctx, entities)
	if err != nil {
		return nil, fmt.Errorf("failed to create entities: %w", err)
	}
	success = true

	for i, id := range ids {
		s.audit(ctx, params.Arguments.Actor, "create_entity", entities[i].Type, id,
			map[string]string{"name": entities[i].Name})
	}
	return &mcp.CallToolResultFor[apptype.CreateEntitiesResult]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("Created %d entities", len(ids))},
		},
		StructuredContent: apptype.CreateEntitiesResult{IDs: ids},
	}, nil
}

// handleGetEntity handles the get_entity tool call
func (s *MCPServer) handleGetEntity(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.GetEntityArgs],
) (*mcp.CallToolResultFor[apptype.EntityDetails], error) {
	done := metrics.TimeTool("get_entity")
	var success bool
	defer func() { done(success) }()

	entity, err := s.db.GetEntity(ctx, params.Arguments.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}
	relationships, err := s.db.ListRelationshipsFor(ctx, entity.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get relationships: %w", err)
	}
	success = true

	return &mcp.CallToolResultFor[apptype.EntityDetails]{
		Content: []mcp.Content{&mcp.TextContent{Text: entity.Name}},
		StructuredContent: apptype.EntityDetails{
			Entity:        *entity,
			Relationships: relationships,
		},
	}, nil
}

// handleListEntities handles the list_entities tool call
func (s *MCPServer) handleListEntities(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.ListEntitiesArgs],
) (*mcp.CallToolResultFor[apptype.EntityListResult], error) {
	done := metrics.TimeTool("list_entities")
	var success bool
	defer func() { done(success) }()

	entities, err := s.db.ListEntities(ctx, database.ListEntitiesFilter{
		Type:     params.Arguments.Type,
		Search:   params.Arguments.Search,
		SearchIn: params.Arguments.SearchIn,
		Tags:     params.Arguments.Tags,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	success = true

	return &mcp.CallToolResultFor[apptype.EntityListResult]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("%d entities", len(entities))},
		},
		StructuredContent: apptype.EntityListResult{Entities: entities},
	}, nil
}

// handleUpdateEntity handles the update_entity tool call
func (s *MCPServer) handleUpdateEntity(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.UpdateEntityArgs],
) (*mcp.CallToolResultFor[any], error) {
	done := metrics.TimeTool("update_entity")
	var success bool
	defer func() { done(success) }()

	id := params.Arguments.ID
	if err := s.db.UpdateEntity(ctx, id, params.Arguments.Description, params.Arguments.Metadata); err != nil {
		return nil, fmt.Errorf("failed to update entity: %w", err)
	}
	success = true

	s.audit(ctx, params.Arguments.Actor, "update_entity", "", id, nil)
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("Updated entity %s", id)},
		},
	}, nil
}

// handleSetEntityTags handles the set_entity_tags tool call
func (s *MCPServer) handleSetEntityTags(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.SetEntityTagsArgs],
) (*mcp.CallToolResultFor[any], error) {
	done := metrics.TimeTool("set_entity_tags")
	var success bool
	defer func() { done(success) }()

	id := params.Arguments.ID
	if err := s.db.SetEntityTags(ctx, id, params.Arguments.Tags); err != nil {
		return nil, fmt.Errorf("failed to set tags: %w", err)
	}
	success = true

	s.audit(ctx, params.Arguments.Actor, "set_entity_tags", "", id,
		map[string][]string{"tags": params.Arguments.Tags})
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("Set %d tags on entity %s", len(params.Arguments.Tags), id)},
		},
	}, nil
}

// handleDeleteEntities handles the delete_entities tool call
func (s *MCPServer) handleDeleteEntities(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.DeleteEntitiesArgs],
) (*mcp.CallToolResultFor[any], error) {
	done := metrics.TimeTool("delete_entities")
	var success bool
	defer func() { done(success) }()

	ids := params.Arguments.IDs
	if err := s.db.DeleteEntities(ctx, ids); err != nil {
		return nil, fmt.Errorf("failed to delete entities: %w", err)
	}
	success = true

	for _, id := range ids {
		s.audit(ctx, params.Arguments.Actor, "delete_entity", "", id, nil)
	}
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("Deleted %d entities", len(ids))},
		},
	}, nil
}

// handleCreateRelationships handles the create_relationships tool call
func (s *MCPServer) handleCreateRelationships(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.CreateRelationshipsArgs],
) (*mcp.CallToolResultFor[apptype.CreateEntitiesResult], error) {
	done := metrics.TimeTool("create_relationships")
	var success bool
	defer func() { done(success) }()

	relationships := params.Arguments.Relationships
	if len(relationships) == 0 {
		return nil, fmt.Errorf("no relationships given")
	}
	ids, err := s.db.CreateRelationships(ctx, relationships)
	if err != nil {
		return nil, fmt.Errorf("failed to create relationships: %w", err)
	}
	success = true

	for i, id := range ids {
		s.audit(ctx, params.Arguments.Actor, "create_relationship", "", id,
			map[string]string{
				"source_id":         relationships[i].SourceID,
				"target_id":         relationships[i].TargetID,
				"relationship_type": relationships[i].Type,
			})
	}
	return &mcp.CallToolResultFor[apptype.CreateEntitiesResult]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("Created %d relationships", len(ids))},
		},
		StructuredContent: apptype.CreateEntitiesResult{IDs: ids},
	}, nil
}

// handleUpdateRelationship handles the update_relationship tool call
func (s *MCPServer) handleUpdateRelationship(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.UpdateRelationshipArgs],
) (*mcp.CallToolResultFor[any], error) {
	done := metrics.TimeTool("update_relationship")
	var success bool
	defer func() { done(success) }()

	id := params.Arguments.ID
	if err := s.db.UpdateRelationship(ctx, id, params.Arguments.Type); err != nil {
		return nil, fmt.Errorf("failed to update relationship: %w", err)
	}
	success = true

	s.audit(ctx, params.Arguments.Actor, "update_relationship", "", id,
		map[string]string{"relationship_type": params.Arguments.Type})
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("Updated relationship %s", id)},
		},
	}, nil
}

// handleDeleteRelationship handles the delete_relationship tool call
func (s *MCPServer) handleDeleteRelationship(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.DeleteRelationshipArgs],
) (*mcp.CallToolResultFor[any], error) {
	done := metrics.TimeTool("delete_relationship")
	var success bool
	defer func() { done(success) }()

	args := params.Arguments
	var text string
	switch {
	case args.ID != "":
		if err := s.db.DeleteRelationship(ctx, args.ID); err != nil {
			return nil, fmt.Errorf("failed to delete relationship: %w", err)
		}
		s.audit(ctx, args.Actor, "delete_relationship", "", args.ID, nil)
		text = fmt.Sprintf("Deleted relationship %s", args.ID)
	case args.SourceID != "" && args.TargetID != "":
		n, err := s.db.DeleteRelationshipsBetween(ctx, args.SourceID, args.TargetID)
		if err != nil {
			return nil, fmt.Errorf("failed to delete relationships: %w", err)
		}
		s.audit(ctx, args.Actor, "delete_relationship", "", "",
			map[string]string{"source_id": args.SourceID, "target_id": args.TargetID})
		text = fmt.Sprintf("Deleted %d relationships between %s and %s", n, args.SourceID, args.TargetID)
	default:
		return nil, fmt.Errorf("either id or both source_id and target_id are required")
	}
	success = true

	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil
}

// handleListTags handles the list_tags tool call
func (s *MCPServer) handleListTags(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.ListTagsArgs],
) (*mcp.CallToolResultFor[apptype.TagListResult], error) {
	done := metrics.TimeTool("list_tags")
	var success bool
	defer func() { done(success) }()

	tags, err := s.db.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	success = true

	return &mcp.CallToolResultFor[apptype.TagListResult]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("%d tags", len(tags))},
		},
		StructuredContent: apptype.TagListResult{Tags: tags},
	}, nil
}

// handleReadGraph handles the read_graph tool call
func (s *MCPServer) handleReadGraph(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.ReadGraphArgs],
) (*mcp.CallToolResultFor[apptype.GraphResult], error) {
	done := metrics.TimeTool("read_graph")
	var success bool
	defer func() { done(success) }()

	entities, err := s.db.ListEntities(ctx, database.ListEntitiesFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	if limit := params.Arguments.Limit; limit > 0 && len(entities) > limit {
		entities = entities[:limit]
	}
	relationships, err := s.db.ListAllRelationships(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list relationships: %w", err)
	}
	success = true

	return &mcp.CallToolResultFor[apptype.GraphResult]{
		Content: []mcp.Content{&mcp.TextContent{Text: "Graph read successfully"}},
		StructuredContent: apptype.GraphResult{
			Entities:      entities,
			Relationships: relationships,
		},
	}, nil
}

// handleSuggestRelationships handles the suggest_relationships tool call
func (s *MCPServer) handleSuggestRelationships(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.SuggestRelationshipsArgs],
) (*mcp.CallToolResultFor[apptype.SuggestionsResult], error) {
	done := metrics.TimeTool("suggest_relationships")
	var success bool
	defer func() { done(success) }()

	suggestions, err := s.engine.Suggest(ctx, params.Arguments.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute suggestions: %w", err)
	}
	success = true

	return &mcp.CallToolResultFor[apptype.SuggestionsResult]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("%d suggestions", len(suggestions))},
		},
		StructuredContent: apptype.SuggestionsResult{Suggestions: suggestions},
	}, nil
}

// handleAdminLogin handles the admin_login tool call
func (s *MCPServer) handleAdminLogin(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.AdminLoginArgs],
) (*mcp.CallToolResultFor[apptype.AdminLoginResult], error) {
	done := metrics.TimeTool("admin_login")
	var success bool
	defer func() { done(success) }()

	username := strings.TrimSpace(params.Arguments.Username)
	admin, err := s.auth.Login(ctx, username, params.Arguments.Password)
	if err != nil {
		var locked *auth.LockedError
		switch {
		case errors.As(err, &locked):
			success = true
			return &mcp.CallToolResultFor[apptype.AdminLoginResult]{
				Content: []mcp.Content{&mcp.TextContent{Text: "account locked"}},
				StructuredContent: apptype.AdminLoginResult{
					RetryAfterSeconds: int(locked.RetryAfter.Seconds()) + 1,
				},
			}, nil
		case errors.Is(err, auth.ErrInvalidCredentials):
			success = true
			s.audit(ctx, username, "login_failed", "", "", nil)
			return &mcp.CallToolResultFor[apptype.AdminLoginResult]{
				Content:           []mcp.Content{&mcp.TextContent{Text: "invalid credentials"}},
				StructuredContent: apptype.AdminLoginResult{},
			}, nil
		}
		return nil, fmt.Errorf("login failed: %w", err)
	}
	success = true

	s.audit(ctx, admin.Username, "login", "", "", nil)
	return &mcp.CallToolResultFor[apptype.AdminLoginResult]{
		Content: []mcp.Content{&mcp.TextContent{Text: "ok"}},
		StructuredContent: apptype.AdminLoginResult{
			OK:   true,
			Role: admin.Role,
		},
	}, nil
}

// handleAuditLog handles the audit_log tool call
func (s *MCPServer) handleAuditLog(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.AuditLogArgs],
) (*mcp.CallToolResultFor[apptype.AuditLogResult], error) {
	done := metrics.TimeTool("audit_log")
	var success bool
	defer func() { done(success) }()

	entries, err := s.db.ListAuditLog(ctx, params.Arguments.Action, params.Arguments.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}
	success = true

	return &mcp.CallToolResultFor[apptype.AuditLogResult]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("%d audit entries", len(entries))},
		},
		StructuredContent: apptype.AuditLogResult{Entries: entries},
	}, nil
}

// handleHealth returns basic server health information
func (s *MCPServer) handleHealth(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[apptype.HealthArgs],
) (*mcp.CallToolResultFor[apptype.HealthResult], error) {
	done := metrics.TimeTool("health_check")
	defer func() { done(true) }()

	entities, err := s.db.CountEntities(ctx)
	if err != nil {
		return nil, fmt.Errorf("health check failed: %w", err)
	}
	res := apptype.HealthResult{
		Name:      "archcat-go",
		Version:   buildinfo.Version,
		Revision:  buildinfo.Revision,
		BuildDate: buildinfo.BuildDate,
		Entities:  entities,
	}
	return &mcp.CallToolResultFor[apptype.HealthResult]{
		Content:           []mcp.Content{&mcp.TextContent{Text: "ok"}},
		StructuredContent: res,
	}, nil
}

// Run starts the MCP server with stdio transport
func (s *MCPServer) Run(ctx context.Context) error {
	transport := mcp.NewStdioTransport()
	return s.server.Run(ctx, transport)
}

// RunSSE starts the MCP server over SSE at the given address and endpoint
func (s *MCPServer) RunSSE(ctx context.Context, addr string, endpoint string) error {
	handler := mcp.NewSSEHandler(func(r *http.Request) *mcp.Server { return s.server })
	mux := http.NewServeMux()
	mux.Handle(endpoint, handler)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 0)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("SSE MCP server listening", zap.String("addr", addr), zap.String("endpoint", endpoint))
	return srv.ListenAndServe()
}
