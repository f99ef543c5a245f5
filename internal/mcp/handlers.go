package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/mediagate/internal/tool"
)

// Output is the structured result attached to every call.
type Output struct {
	InvocationID string `json:"invocation_id"`
	Data         any    `json:"data,omitempty"`
}

// handleInvoke never returns a Go error; failures are tool results with
// IsError set so the agent sees the message.
func (s *Server) handleInvoke(ctx context.Context, req *mcpsdk.CallToolRequest, input tool.Params) (*mcpsdk.CallToolResult, Output, error) {
	res := s.tool.Invoke(ctx, input)
	return toCallResult(res), Output{InvocationID: res.InvocationID, Data: res.Data}, nil
}

func toCallResult(res tool.Result) *mcpsdk.CallToolResult {
	content := []mcpsdk.Content{&mcpsdk.TextContent{Text: res.Text}}
	for _, m := range res.Media {
		content = append(content, &mcpsdk.ImageContent{Data: m.Data, MIMEType: m.MIMEType})
	}
	return &mcpsdk.CallToolResult{Content: content, IsError: res.IsError}
}
