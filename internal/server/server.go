// Package server wires the labos components and creates the MCP server.
//
// This is the composition root: it creates the concrete clients, stores and
// indexes and injects them into the terminal, the tools, the prompt and the
// resource that depend on them. No business logic lives here, only wiring.
package server

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/server"

	"github.com/HendryAvila/labos/internal/assemble"
	"github.com/HendryAvila/labos/internal/chat"
	"github.com/HendryAvila/labos/internal/command"
	"github.com/HendryAvila/labos/internal/config"
	"github.com/HendryAvila/labos/internal/corpus"
	"github.com/HendryAvila/labos/internal/knowledge"
	"github.com/HendryAvila/labos/internal/logger"
	"github.com/HendryAvila/labos/internal/mcptools"
	"github.com/HendryAvila/labos/internal/router"
	"github.com/HendryAvila/labos/internal/session"
	"github.com/HendryAvila/labos/internal/terminal"
	"github.com/HendryAvila/labos/internal/tools"
	"github.com/HendryAvila/labos/internal/verify"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Runtime holds the shared, long-lived components of one process.
type Runtime struct {
	Config      *config.Config
	Logger      logger.Logger
	Corpus      *corpus.Corpus
	Index       *knowledge.Index
	Interpreter *command.Interpreter
	Router      *router.Router
	Builder     *assemble.Builder
	Chat        chat.Completer
	Tools       *tools.Dispatcher
	// Store is nil when persistence could not be initialized.
	Store *session.Store
}

// NewRuntime loads the corpus, builds the index and creates the clients
// described by cfg. The returned cleanup function closes the session store
// and is always non-nil.
func NewRuntime(ctx context.Context, cfg *config.Config, log logger.Logger) (*Runtime, func(), error) {
	c, err := loadCorpus(cfg.Corpus)
	if err != nil {
		return nil, noop, err
	}
	idx, err := knowledge.Build(c)
	if err != nil {
		return nil, noop, fmt.Errorf("server: build index: %w", err)
	}
	interp, err := command.New(command.ContentFrom(c, idx.Stats()))
	if err != nil {
		return nil, noop, fmt.Errorf("server: %w", err)
	}

	rt := &Runtime{
		Config:      cfg,
		Logger:      log,
		Corpus:      c,
		Index:       idx,
		Interpreter: interp,
		Router:      router.New(),
		Builder:     assemble.NewBuilder(c),
		Tools:       tools.NewDispatcher(idx, c, verify.New(cfg.VerifyClient())),
	}
	if cfg.Chat.APIKey != "" {
		rt.Chat = chat.New(cfg.ChatClient())
	} else {
		log.Warn("chat API key not set; ask mode is disabled")
	}

	// Persistence is optional: without it the terminal keeps state in memory.
	cleanup := noop
	store, err := session.NewStore(cfg.Store())
	if err != nil {
		log.Warn("session store disabled", "err", err)
	} else {
		rt.Store = store
		cleanup = func() {
			if err := store.Close(); err != nil {
				log.Warn("session store close", "err", err)
			}
		}
	}

	log.Debug("runtime ready", "entries", idx.Len(), "chunks", len(c.Chunks))
	return rt, cleanup, nil
}

func loadCorpus(cfg config.CorpusConfig) (*corpus.Corpus, error) {
	var (
		c   *corpus.Corpus
		err error
	)
	if cfg.Path != "" {
		c, err = corpus.Load(cfg.Path)
	} else {
		c, err = corpus.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	chunks, err := corpus.LoadChunks(cfg.ChunksDir)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	c.Chunks = append(c.Chunks, chunks...)
	return c, nil
}

// NewTerminal creates a terminal session on the runtime. An empty id uses
// the configured session id, or a fresh one.
func (rt *Runtime) NewTerminal(id string) (*terminal.Terminal, error) {
	if id == "" {
		id = rt.Config.Terminal.SessionID
	}
	deps := terminal.Deps{
		Corpus:      rt.Corpus,
		Index:       rt.Index,
		Interpreter: rt.Interpreter,
		Router:      rt.Router,
		Builder:     rt.Builder,
		Completer:   rt.Chat,
		Tools:       rt.Tools,
		Logger:      rt.Logger,
		SessionID:   id,
		SettingsKey: rt.Config.Terminal.SettingsKey,
	}
	// A nil *session.Store must not become a non-nil interface.
	if rt.Store != nil {
		deps.Store = rt.Store
	}
	return terminal.New(deps, terminal.WithVerifyCap(rt.Config.Verify.SessionCap))
}

// New creates the MCP server with every tool, prompt and resource
// registered. terminal_exec runs on its own server-side session.
func New(rt *Runtime) (*server.MCPServer, error) {
	term, err := rt.NewTerminal("")
	if err != nil {
		return nil, fmt.Errorf("server: create terminal: %w", err)
	}

	s := server.NewMCPServer(
		"labos",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions(rt.Corpus.Profile.Name)),
	)

	// --- Tool-call interface ---
	for _, tool := range mcptools.NewCallTools(rt.Tools) {
		s.AddTool(tool.Definition(), tool.Handle)
	}

	// --- Terminal & knowledge ---
	execTool := mcptools.NewTerminalExecTool(term)
	s.AddTool(execTool.Definition(), execTool.Handle)

	expandTool := mcptools.NewExpandTool(rt.Index)
	s.AddTool(expandTool.Definition(), expandTool.Handle)

	// --- Prompts & resources ---
	brief := mcptools.NewBriefPrompt(rt.Index, rt.Builder)
	s.AddPrompt(brief.Definition(), brief.Handle)

	stats := mcptools.NewStatsResource(rt.Index)
	s.AddResource(stats.Definition(), stats.Handle)

	rt.Logger.Info("mcp server ready", "version", Version, "session", term.SessionID())
	return s, nil
}

// noop is the cleanup function used when no store was opened.
func noop() {}

func serverInstructions(name string) string {
	return fmt.Sprintf(`labos serves the %[1]s portfolio knowledge base and terminal.

Use local_context to search what is known about %[1]s (profile, projects, notes, network),
knowledge_expand to follow relations from an entry id, list_projects for the project list
and web_verify when a claim needs external citations.

terminal_exec runs a line exactly as a visitor would type it in the terminal; "help" lists
its commands. The labos-brief prompt returns the grounded context for a question.
The labos://knowledge/stats resource reports the index size.`, name)
}
