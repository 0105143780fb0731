package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	apppublic "hilo-casino/internal/app/public"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server exposes the read-only public API as MCP tools.
type Server struct {
	publicSvc *apppublic.Service

	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
}

func New(publicSvc *apppublic.Service) *Server {
	mcpSrv := server.NewMCPServer(
		"hilo-casino",
		"0.1.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
		server.WithResourceRecovery(),
	)
	s := &Server{
		publicSvc:  publicSvc,
		mcpServer:  mcpSrv,
		httpServer: server.NewStreamableHTTPServer(mcpSrv, server.WithStateLess(true), server.WithDisableStreaming(true)),
	}
	s.registerPublicTools()
	s.registerResources()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer
}

func (s *Server) registerResources() {
	s.mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"room://{room_id}/snapshot",
			"room_snapshot",
			mcp.WithTemplateDescription("Current snapshot of a live room"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			raw := request.Params.URI
			if !strings.HasPrefix(raw, "room://") || !strings.HasSuffix(raw, "/snapshot") {
				return nil, nil
			}
			roomID := strings.TrimSuffix(strings.TrimPrefix(raw, "room://"), "/snapshot")
			if roomID == "" {
				return nil, nil
			}
			snap, err := s.publicSvc.Room(roomID)
			if err != nil {
				return nil, err
			}
			payload, err := json.Marshal(snap)
			if err != nil {
				return nil, err
			}
			return []mcp.ResourceContents{
				mcp.TextResourceContents{
					URI:      raw,
					MIMEType: "application/json",
					Text:     string(payload),
				},
			}, nil
		},
	)
}
