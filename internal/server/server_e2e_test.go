package server

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entarch/archcat-go/internal/auth"
	"github.com/entarch/archcat-go/internal/database"
	"github.com/entarch/archcat-go/internal/suggest"
	"github.com/entarch/archcat-go/pkg/logger"
)

// pickFreePort tries to get a free TCP port on 127.0.0.1
func pickFreePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

func newTestServer(t *testing.T) *MCPServer {
	cfg := database.NewConfig()
	cfg.URL = "file:test-e2e?mode=memory&cache=shared"
	dbm, err := database.NewDBManager(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbm.Close() })

	engine, err := suggest.NewEngine(dbm.SuggestStore(), suggest.DefaultConfig())
	require.NoError(t, err)

	return NewMCPServer(dbm, engine, auth.NewManager(dbm), logger.Get())
}

func TestSSEServer_ListTools(t *testing.T) {
	srv := newTestServer(t)

	port, err := pickFreePort()
	require.NoError(t, err)
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	endpoint := "/sse"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// start SSE server
	go func() { _ = srv.RunSSE(ctx, addr, endpoint) }()

	// wait briefly for server to bind
	time.Sleep(150 * time.Millisecond)

	// connect with MCP SSE client
	client := mcp.NewClient(&mcp.Implementation{Name: "e2e-client", Version: "test"}, nil)
	transport := mcp.NewSSEClientTransport("http://"+addr+endpoint, nil)

	// retry connect a few times to avoid flakes
	var session *mcp.ClientSession
	for i := 0; i < 5; i++ {
		session, err = client.Connect(ctx, transport)
		if err == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	require.NoError(t, err)
	defer session.Close()

	tools, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	require.NoError(t, err)
	require.NotEmpty(t, tools.Tools)

	names := make(map[string]bool, len(tools.Tools))
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{
		"create_entities", "get_entity", "list_entities", "update_entity",
		"set_entity_tags", "delete_entities", "create_relationships",
		"update_relationship", "delete_relationship", "list_tags",
		"read_graph", "suggest_relationships", "admin_login", "audit_log",
		"health_check",
	} {
		assert.True(t, names[want], want)
	}
}
