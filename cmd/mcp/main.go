// The mcp command runs one improv session as an MCP stdio server. The
// conversational orchestrator (the voice/LLM layer) connects over stdio
// and drives the show through the registered function tools.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jwebster45206/improv-engine/internal/config"
	"github.com/jwebster45206/improv-engine/internal/mcptools"
	"github.com/jwebster45206/improv-engine/pkg/scenario"
	"github.com/jwebster45206/improv-engine/pkg/session"
	"github.com/jwebster45206/improv-engine/pkg/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// Logs go to stderr; stdout belongs to the MCP transport.
	logr := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	catalog, err := scenario.LoadCatalog(cfg.ScenariosPath)
	if err != nil {
		logr.Error("Failed to load scenario catalog", "path", cfg.ScenariosPath, "error", err)
		os.Exit(1)
	}

	seed := time.Now().UnixNano()
	if cfg.SelectionSeed != nil {
		seed = *cfg.SelectionSeed
	}

	ctrl, err := session.NewController(catalog, os.Getenv("PLAYER_NAME"), cfg.MaxRounds, seed)
	if err != nil {
		logr.Error("Failed to create session", "error", err)
		os.Exit(1)
	}

	sessionStore, err := store.NewFileStore(cfg.SessionsDir, logr)
	if err != nil {
		logr.Error("Failed to create session store", "dir", cfg.SessionsDir, "error", err)
		os.Exit(1)
	}

	server := mcp.NewServer(&mcp.Implementation{Name: "improv-engine", Version: "0.1.0"}, nil)
	mcptools.Register(server, ctrl, sessionStore)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logr.Info("MCP server starting on stdio", "max_rounds", cfg.MaxRounds, "scenarios", catalog.Len())
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		logr.Error("MCP server stopped", "error", err)
		os.Exit(1)
	}
}
