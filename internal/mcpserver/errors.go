package mcpserver

import (
	"errors"
	"fmt"

	apppublic "hilo-casino/internal/app/public"

	"github.com/mark3labs/mcp-go/mcp"
)

func toolResult(data any) *mcp.CallToolResult {
	return mcp.NewToolResultStructuredOnly(data)
}

func toolError(code, message string) *mcp.CallToolResult {
	result := mcp.NewToolResultStructured(
		map[string]any{
			"error": map[string]any{
				"code":    code,
				"message": message,
			},
		},
		fmt.Sprintf("%s: %s", code, message),
	)
	result.IsError = true
	return result
}

func mapDomainError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return toolError("internal_error", "unknown error")
	case errors.Is(err, apppublic.ErrInvalidRequest):
		return toolError("invalid_request", err.Error())
	case errors.Is(err, apppublic.ErrRoomNotFound):
		return toolError("room_not_found", err.Error())
	case errors.Is(err, apppublic.ErrArchiveDisabled):
		return toolError("archive_disabled", err.Error())
	default:
		return toolError("internal_error", err.Error())
	}
}
