package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ToolBuildVariabilityModel is the name of the model building tool
const ToolBuildVariabilityModel = "build_variability_model"

// RegisterTools registers all variscan MCP tools with the server
func RegisterTools(s *server.MCPServer, deps *Dependencies) {
	h := NewHandlerSet(deps)

	s.AddTool(mcp.NewTool(ToolBuildVariabilityModel,
		mcp.WithDescription("Compare a base and a derived Java variant and build their variability model of variation points"),
		mcp.WithString("left_path",
			mcp.Required(),
			mcp.Description("Path to the base variant (directory, Java file or AST document)")),
		mcp.WithString("right_path",
			mcp.Required(),
			mcp.Description("Path to the derived variant (directory, Java file or AST document)")),
		mcp.WithArray("classifier_normalization",
			mcp.Description("Classifier name patterns with one '*', e.g. \"*Custom\". Default: from configuration")),
		mcp.WithBoolean("cleanup_derived_copies",
			mcp.Description("Remove derived copies of base classifiers before comparing (default: from configuration)")),
		mcp.WithBoolean("emit_moves",
			mcp.Description("Report reordered statements as MOVE differences (default: false)")),
		mcp.WithNumber("structural_threshold",
			mcp.Description("Minimum similarity for statements to correspond, in (0, 1] (default: 0.5)")),
		mcp.WithString("cost_model",
			mcp.Description("Tree edit costs for statement correspondence. Options: uniform, java (default: from configuration)")),
		mcp.WithString("format",
			mcp.Description("Result format. Options: json, yaml, text (default: json)")),
		mcp.WithBoolean("snapshot_fragments",
			mcp.Description("Attach source snapshots to the model elements (default: false)")),
	), h.HandleBuildVariabilityModel)
}
