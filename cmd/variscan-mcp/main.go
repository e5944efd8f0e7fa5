package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ludo-technologies/variscan/internal/config"
	"github.com/ludo-technologies/variscan/internal/version"
	"github.com/ludo-technologies/variscan/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/pflag"
)

const serverName = "variscan"

func main() {
	configPath := pflag.String("config", "", "Configuration file path (default: discover .variscan.toml)")
	pflag.Parse()

	// MCP uses stdout for JSON-RPC
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Warn("ignoring configuration, using defaults", "error", err)
		cfg = config.DefaultConfig()
	}

	server := mcpserver.NewMCPServer(
		serverName,
		version.Short(),
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithLogging(),
	)

	mcp.RegisterTools(server, mcp.NewDependencies(cfg, *configPath, logger))

	logger.Info("starting MCP server", "name", serverName, "version", version.Short(),
		"tools", []string{mcp.ToolBuildVariabilityModel})

	// Blocks until the client disconnects
	if err := mcpserver.ServeStdio(server); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
