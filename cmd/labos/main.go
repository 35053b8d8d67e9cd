// labos: portfolio terminal brain
//
// Runs the DG-Labs pseudo-terminal query pipeline locally: an interactive
// terminal, one-shot command execution and an MCP server exposing the same
// tools to AI hosts.
//
// Usage:
//
//	labos terminal       # Interactive terminal
//	labos exec <line>    # Run one line and print the output
//	labos serve          # Start MCP server (stdio transport)
//	labos sessions       # List recent persisted sessions
//	labos version        # Print the version (--check for updates)
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/HendryAvila/labos/internal/config"
	"github.com/HendryAvila/labos/internal/logger"
	labserver "github.com/HendryAvila/labos/internal/server"
	"github.com/HendryAvila/labos/internal/tui"
	"github.com/HendryAvila/labos/internal/updater"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type rootFlags struct {
	logLevel string
	logJSON  bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "labos",
		Short:         "DG-Labs OS terminal brain",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error, disabled")
	root.PersistentFlags().BoolVar(&flags.logJSON, "log-json", false, "log as JSON")

	root.AddCommand(
		newServeCmd(flags),
		newTerminalCmd(flags),
		newExecCmd(flags),
		newSessionsCmd(flags),
		newVersionCmd(),
	)
	return root
}

// runtime loads configuration, applies flag overrides and builds the shared
// components.
func runtime(cmd *cobra.Command, flags *rootFlags) (*labserver.Runtime, func(), error) {
	ctx := cmd.Context()
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if cmd.Flags().Changed("log-json") {
		cfg.Log.JSON = flags.logJSON
	}
	log := logger.NewLogger(cfg.Logger())
	return labserver.NewRuntime(logger.ContextWithLogger(ctx, log), cfg, log)
}

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, cleanup, err := runtime(cmd, flags)
			if err != nil {
				return err
			}
			defer cleanup()

			s, err := labserver.New(rt)
			if err != nil {
				return fmt.Errorf("creating server: %w", err)
			}
			return server.ServeStdio(s)
		},
	}
}

func newTerminalCmd(flags *rootFlags) *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "terminal",
		Short: "Open the interactive terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// The TUI owns the screen; keep logs quiet unless asked for.
			if flags.logLevel == "" {
				flags.logLevel = "disabled"
			}
			rt, cleanup, err := runtime(cmd, flags)
			if err != nil {
				return err
			}
			defer cleanup()

			term, err := rt.NewTerminal(sessionID)
			if err != nil {
				return err
			}
			return tui.Run(cmd.Context(), term)
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "resume a persisted session id")
	return cmd
}

func newExecCmd(flags *rootFlags) *cobra.Command {
	var (
		sessionID string
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "exec <line>",
		Short: "Run one terminal line and print its output",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, cleanup, err := runtime(cmd, flags)
			if err != nil {
				return err
			}
			defer cleanup()

			term, err := rt.NewTerminal(sessionID)
			if err != nil {
				return err
			}
			out := term.Submit(cmd.Context(), strings.Join(args, " "))

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			for _, e := range out.Entries {
				fmt.Fprintln(w, e.Text)
			}
			if out.Action.Href != "" {
				fmt.Fprintf(w, "-> %s %s\n", out.Action.Kind, out.Action.Href)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "run in a persisted session id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw output as JSON")
	return cmd
}

func newSessionsCmd(flags *rootFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recent persisted sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, cleanup, err := runtime(cmd, flags)
			if err != nil {
				return err
			}
			defer cleanup()
			if rt.Store == nil {
				return fmt.Errorf("session store is unavailable")
			}

			sessions, err := rt.Store.RecentSessions(limit)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(w, "No sessions yet.")
				return nil
			}
			for _, s := range sessions {
				fmt.Fprintf(w, "%s  llm=%d verify=%d turns=%d  updated %s\n", s.ID, s.LLM, s.Verify, s.Turns, s.UpdatedAt)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "max sessions to list")
	return cmd
}

func newVersionCmd() *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "labos v%s\n", labserver.Version)
			if !check {
				return nil
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			res := updater.New("").Check(ctx, labserver.Version)
			switch {
			case res.UpdateAvailable:
				fmt.Fprintf(w, "Update available: v%s -> v%s\nRelease: %s\n", res.CurrentVersion, res.LatestVersion, res.ReleaseURL)
			case res.LatestVersion == "":
				fmt.Fprintln(w, "Could not check for updates.")
			default:
				fmt.Fprintln(w, "Already at the latest version.")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "check GitHub for a newer release")
	return cmd
}
