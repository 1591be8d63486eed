package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pgelua [dir | file.lua]",
	Short: "Run Lua games against a fixed-timestep host loop",
	Long: `pgelua - Drive a Lua game script from a real-time host loop.

A game is a directory holding game.lua (or any module named with --main).
The script defines its entry points on the PGE table and draws through
PGE.graphics. pgelua runs it against a headless surface, so it can be
exercised in CI or from a terminal without a window.`,
	Args:         cobra.MaximumNArgs(1),
	RunE:         runRun, // Default to run command behavior
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("profile", "", "Launch profile (default: <dir>/"+ProfileName+" if present)")

	// Add run-specific flags to root (for default command)
	addRunFlags(rootCmd)
}

func newLogger(level string, w io.Writer) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q (expected debug, info, warn or error)", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}
