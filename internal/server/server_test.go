package server

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/HendryAvila/labos/internal/config"
	"github.com/HendryAvila/labos/internal/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.Chat.APIKey = ""
	return &cfg
}

func newTestRuntime(t *testing.T, cfg *config.Config) *Runtime {
	t.Helper()
	rt, cleanup, err := NewRuntime(context.Background(), cfg, logger.Nop())
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	t.Cleanup(cleanup)
	return rt
}

// ─── Runtime ─────────────────────────────────────────────────────────────────

func TestNewRuntime_Defaults(t *testing.T) {
	rt := newTestRuntime(t, testConfig(t))

	if rt.Index.Len() == 0 {
		t.Error("index is empty for the default corpus")
	}
	if rt.Chat != nil {
		t.Error("chat client created without an API key")
	}
	if rt.Store == nil {
		t.Fatal("store not opened in a writable data dir")
	}
	if rt.Tools == nil || rt.Builder == nil || rt.Router == nil || rt.Interpreter == nil {
		t.Error("runtime component missing")
	}
}

func TestNewRuntime_WithAPIKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.Chat.APIKey = "sk-test"
	rt := newTestRuntime(t, cfg)

	if rt.Chat == nil {
		t.Error("chat client not created with an API key")
	}
}

func TestNewRuntime_MissingCorpus(t *testing.T) {
	cfg := testConfig(t)
	cfg.Corpus.Path = filepath.Join(t.TempDir(), "missing.yaml")

	rt, cleanup, err := NewRuntime(context.Background(), cfg, logger.Nop())
	if err == nil {
		t.Fatal("expected error for a missing corpus file")
	}
	if rt != nil {
		t.Error("runtime returned alongside an error")
	}
	if cleanup == nil {
		t.Error("cleanup must never be nil")
	}
	if !strings.HasPrefix(err.Error(), "server: ") {
		t.Errorf("error = %q, want server: prefix", err)
	}
}

func TestNewTerminal_SessionID(t *testing.T) {
	cfg := testConfig(t)
	cfg.Terminal.SessionID = "configured"
	rt := newTestRuntime(t, cfg)

	term, err := rt.NewTerminal("")
	if err != nil {
		t.Fatalf("NewTerminal: %v", err)
	}
	if term.SessionID() != "configured" {
		t.Errorf("SessionID = %q, want configured", term.SessionID())
	}

	term, err = rt.NewTerminal("explicit")
	if err != nil {
		t.Fatalf("NewTerminal: %v", err)
	}
	if term.SessionID() != "explicit" {
		t.Errorf("SessionID = %q, want explicit", term.SessionID())
	}
}

func TestNewTerminal_WithoutStore(t *testing.T) {
	rt := newTestRuntime(t, testConfig(t))
	rt.Store = nil

	term, err := rt.NewTerminal("memory-only")
	if err != nil {
		t.Fatalf("NewTerminal: %v", err)
	}
	out := term.Submit(context.Background(), "help")
	if len(out.Entries) < 2 {
		t.Errorf("help produced %d entries, want output after the echo", len(out.Entries))
	}
}

// ─── MCP server ──────────────────────────────────────────────────────────────

func TestNew_CreatesServer(t *testing.T) {
	rt := newTestRuntime(t, testConfig(t))

	s, err := New(rt)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s == nil {
		t.Fatal("New returned nil server")
	}
}

func TestServerInstructions(t *testing.T) {
	got := serverInstructions("DG-Labs")
	for _, want := range []string{"DG-Labs portfolio", "terminal_exec", "labos-brief", "labos://knowledge/stats"} {
		if !strings.Contains(got, want) {
			t.Errorf("instructions missing %q", want)
		}
	}
}
