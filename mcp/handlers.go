package mcp

import (
	"context"
	"fmt"
	"os"

	"github.com/ludo-technologies/variscan/domain"
	"github.com/ludo-technologies/variscan/internal/constants"
	"github.com/ludo-technologies/variscan/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// HandlerSet exposes MCP tool handlers with shared dependencies.
type HandlerSet struct {
	deps *Dependencies
}

// NewHandlerSet constructs a handler set.
func NewHandlerSet(deps *Dependencies) *HandlerSet {
	if deps == nil {
		deps = NewDependencies(nil, "", nil)
	}
	return &HandlerSet{deps: deps}
}

// HandleBuildVariabilityModel handles the build_variability_model tool
func (h *HandlerSet) HandleBuildVariabilityModel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	req, errMsg := h.requestFromArgs(args)
	if errMsg != "" {
		return mcp.NewToolResultError(errMsg), nil
	}

	uc, err := h.deps.BuildDiffUseCase()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create diff use case: %v", err)), nil
	}

	response, err := uc.Build(ctx, *req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("build failed: %v", err)), nil
	}

	text, err := service.NewDiffFormatter().Format(response, req.OutputFormat)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to format result: %v", err)), nil
	}
	return mcp.NewToolResultText(text), nil
}

// requestFromArgs starts from the configured settings and applies the tool
// arguments on top
func (h *HandlerSet) requestFromArgs(args map[string]interface{}) (*domain.DiffRequest, string) {
	leftPath, ok := args["left_path"].(string)
	if !ok || leftPath == "" {
		return nil, "left_path parameter is required and must be a string"
	}
	rightPath, ok := args["right_path"].(string)
	if !ok || rightPath == "" {
		return nil, "right_path parameter is required and must be a string"
	}
	for _, path := range []string{leftPath, rightPath} {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Sprintf("path does not exist: %s", path)
		}
	}

	req := h.deps.Config().ToDiffRequest(nil)
	req.LeftPath = leftPath
	req.RightPath = rightPath
	req.ConfigPath = h.deps.ConfigPath()
	req.OutputFormat = domain.OutputFormatJSON

	if raw, ok := args["classifier_normalization"].([]interface{}); ok {
		patterns := make([]string, 0, len(raw))
		for _, p := range raw {
			if str, ok := p.(string); ok {
				patterns = append(patterns, str)
			}
		}
		req.ClassifierNormalization = patterns
	}
	if v, ok := args["cleanup_derived_copies"].(bool); ok {
		req.CleanupDerivedCopies = v
	}
	if v, ok := args["emit_moves"].(bool); ok {
		req.EmitMoves = v
	}
	if v, ok := args["snapshot_fragments"].(bool); ok {
		req.SnapshotFragments = v
	}
	if v, ok := args["structural_threshold"].(float64); ok {
		if v <= 0 || v > 1 {
			return nil, "structural_threshold must be in (0, 1]"
		}
		req.StructuralThreshold = v
	}
	if v, ok := args["cost_model"].(string); ok && v != "" {
		switch v {
		case constants.CostModelUniform, constants.CostModelJava:
			req.CostModel = v
		default:
			return nil, fmt.Sprintf("unsupported cost model: %s", v)
		}
	}
	if v, ok := args["format"].(string); ok && v != "" {
		switch domain.OutputFormat(v) {
		case domain.OutputFormatJSON, domain.OutputFormatYAML, domain.OutputFormatText:
			req.OutputFormat = domain.OutputFormat(v)
		default:
			return nil, fmt.Sprintf("unsupported format: %s", v)
		}
	}
	return req, ""
}
