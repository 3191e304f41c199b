// Command mcpserverd is the reference binary for the MCP server framework: it wires one
// demo prompt, one demo tool, and one demo resource over the stdio transport.
// file: cmd/mcpserverd/main.go
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mcpkit/server/internal/config"
	"github.com/mcpkit/server/internal/corectx"
	"github.com/mcpkit/server/internal/logging"
	"github.com/mcpkit/server/internal/registry"
	"github.com/mcpkit/server/internal/server"
	urlutil "github.com/mcpkit/server/pkg/util/url"
)

func main() {
	logging.InitLogging(slog.LevelInfo, os.Stderr)
	logger := logging.GetLogger("mcpserverd")

	cfg := config.Load()
	logger.Info("starting mcpserverd", "disableDefaultTransport", cfg.DisableDefaultTransport)

	b := server.NewBuilder().WithLogger(logger).WithConfig(cfg)

	if err := registerDemoPrompt(b); err != nil {
		logger.Error("failed to register demo prompt", "error", err)
		os.Exit(1)
	}
	if err := registerDemoTool(b); err != nil {
		logger.Error("failed to register demo tool", "error", err)
		os.Exit(1)
	}
	if err := registerDemoResource(b); err != nil {
		logger.Error("failed to register demo resource", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := b.Listen(ctx)
	if err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx, "signal"); err != nil {
		logger.Error("error during shutdown", "error", err)
		os.Exit(1)
	}
}

// registerDemoPrompt registers a "greeting" prompt that renders a fixed template with a
// required "name" argument.
func registerDemoPrompt(b *server.Builder) error {
	return b.RegisterPrompt(registry.PromptDefinition{
		Name:        "greeting",
		Description: "Produces a short greeting for the given name.",
		Arguments: []registry.Argument{
			{Name: "name", Required: true, Type: "string"},
		},
		Handler: func(_ context.Context, args map[string]interface{}, _ *corectx.RequestContext) (registry.PromptResult, error) {
			name, _ := args["name"].(string)
			return registry.UnaryPromptResult("Hello, " + name + "! Welcome to the MCP Server Framework."), nil
		},
	})
}

// registerDemoTool registers an "echo" tool that returns its "message" parameter unchanged.
func registerDemoTool(b *server.Builder) error {
	return b.RegisterTool(registry.ToolDefinition{
		Name:        "echo",
		Description: "Echoes the given message back to the caller.",
		Parameters: []registry.Argument{
			{Name: "message", Required: true, Type: "string"},
		},
		Handler: func(_ context.Context, args map[string]interface{}, _ *corectx.RequestContext) (interface{}, error) {
			return map[string]interface{}{"echo": args["message"]}, nil
		},
	})
}

// registerDemoResource registers an in-memory "demo://" resource tree with two entries.
func registerDemoResource(b *server.Builder) error {
	items := []registry.ResourceContent{
		{URI: "demo://welcome", MimeType: "text/plain", Data: "Welcome to the MCP Server Framework."},
		{URI: "demo://version", MimeType: "text/plain", Data: "1.0.0"},
	}
	descriptors := []registry.Descriptor{
		{Name: "welcome", Description: "A welcome message."},
		{Name: "version", Description: "The server version string."},
	}
	provider := registry.NewInMemoryResourceProvider(items, descriptors)

	return b.RegisterResource(registry.ResourceDefinition{
		URIPattern:  "demo://",
		Name:        "demo",
		Description: "Demo in-memory resource tree.",
		MimeType:    "text/plain",
		Provider:    provider,
		ValidateURI: urlutil.ValidateResourceURI,
	})
}
