package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPublicTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_rooms",
			mcp.WithDescription("List live rooms, busiest first"),
		),
		s.handleListRooms,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_room",
			mcp.WithDescription("Get the current snapshot of a room"),
			mcp.WithString("room_id", mcp.Required(), mcp.Description("Room id")),
		),
		s.handleGetRoom,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_leaderboard",
			mcp.WithDescription("Get the top 20 of a room by net winnings"),
			mcp.WithString("room_id", mcp.Required(), mcp.Description("Room id")),
		),
		s.handleGetLeaderboard,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_rounds",
			mcp.WithDescription("List settled rounds of a room, newest first"),
			mcp.WithString("room_id", mcp.Required(), mcp.Description("Room id")),
			mcp.WithNumber("limit", mcp.Description("Page size, default 20, max 100")),
			mcp.WithNumber("offset", mcp.Description("Page offset, default 0")),
		),
		s.handleListRounds,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"verify_round",
			mcp.WithDescription("Check that sha256(seed) equals a round commitment"),
			mcp.WithString("seed", mcp.Required(), mcp.Description("Revealed seed, hex")),
			mcp.WithString("commit", mcp.Required(), mcp.Description("Commitment published at round start, hex")),
		),
		s.handleVerifyRound,
	)
}

func (s *Server) handleListRooms(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return toolResult(s.publicSvc.Rooms()), nil
}

func (s *Server) handleGetRoom(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.publicSvc.Room(request.GetString("room_id", ""))
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(snap), nil
}

func (s *Server) handleGetLeaderboard(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := s.publicSvc.Leaderboard(request.GetString("room_id", ""))
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleListRounds(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit, offset := clampPagination(request.GetInt("limit", defaultRoundsLimit), request.GetInt("offset", 0), maxRoundsLimit)
	resp, err := s.publicSvc.Rounds(ctx, request.GetString("room_id", ""), limit, offset)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleVerifyRound(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := s.publicSvc.Verify(ctx, request.GetString("seed", ""), request.GetString("commit", ""))
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}
