package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/caffeineduck/pgelua/app"
	"github.com/caffeineduck/pgelua/headless"
	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "repl [dir | file.lua]",
	Short: "Interactive REPL inside a running game",
	Long: `Boot and create a game, then evaluate Lua in its interpreter.

Features:
  - Command history (up/down arrows)
  - Line editing (left/right, backspace, delete)
  - Multi-line input (end line with \)

Commands:
  :frame [dt]   advance one frame (default: one target step)
  :stats        print loop counters
  :calls        print and clear the surface calls since the last :calls

Type 'exit' or 'quit' to end the session, or press Ctrl+D.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRepl,
}

func init() {
	addBootFlags(replCmd)
	replCmd.Flags().String("history", "", "History file path (default: ~/.pgelua_history)")
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) error {
	historyFile, _ := cmd.Flags().GetString("history")
	if historyFile == "" {
		home, _ := os.UserHomeDir()
		historyFile = filepath.Join(home, ".pgelua_history")
	}

	a, _, err := bootApp(cmd, args)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.Config()
	surface := headless.New(cfg.ScreenWidth, cfg.ScreenHeight, headless.WithMaxCalls(256))
	if err := a.Create(surface); err != nil {
		return err
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     historyFile,
		HistoryLimit:    1000,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	fmt.Fprintf(cmd.ErrOrStderr(), "pgelua REPL for %q (type 'exit' to quit, Ctrl+D to exit)\n", cfg.Title)

	r := &repl{app: a, surface: surface, out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}
	var multiLine strings.Builder
	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				multiLine.Reset()
				rl.SetPrompt("> ")
				continue
			}
			if err != io.EOF {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error reading input: %v\n", err)
			}
			return nil
		}

		if strings.HasSuffix(line, "\\") {
			multiLine.WriteString(strings.TrimSuffix(line, "\\"))
			multiLine.WriteString("\n")
			rl.SetPrompt(">> ")
			continue
		}
		if multiLine.Len() > 0 {
			multiLine.WriteString(line)
			line = multiLine.String()
			multiLine.Reset()
			rl.SetPrompt("> ")
		}

		if !r.handle(line) {
			return nil
		}
	}
}

type repl struct {
	app     *app.App
	surface *headless.Surface
	out     io.Writer
	errOut  io.Writer
}

// handle runs one input line. It returns false when the session should end.
func (r *repl) handle(line string) bool {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return true
	case line == "exit" || line == "quit":
		return false
	case strings.HasPrefix(line, ":"):
		r.command(strings.Fields(line[1:]))
		return true
	}

	results, err := r.app.Eval(line)
	if err != nil {
		fmt.Fprintf(r.errOut, "Error: %v\n", err)
		return true
	}
	if len(results) > 0 {
		parts := make([]string, len(results))
		for i, v := range results {
			parts[i] = fmt.Sprint(v)
		}
		fmt.Fprintln(r.out, strings.Join(parts, "\t"))
	}
	return true
}

func (r *repl) command(fields []string) {
	if len(fields) == 0 {
		fmt.Fprintln(r.errOut, "Error: empty command")
		return
	}
	switch fields[0] {
	case "frame":
		dt := r.app.Config().TargetFrameTime()
		if len(fields) > 1 {
			v, err := strconv.ParseFloat(fields[1], 64)
			if err != nil || v < 0 {
				fmt.Fprintf(r.errOut, "Error: invalid dt %q\n", fields[1])
				return
			}
			dt = v
		}
		ran, err := r.app.Frame(dt)
		if err != nil {
			fmt.Fprintf(r.errOut, "Error: %v\n", err)
			return
		}
		r.surface.EndFrame()
		fmt.Fprintf(r.out, "updates=%d\n", ran)
	case "stats":
		s := r.app.Stats()
		fmt.Fprintf(r.out, "frames=%d updates=%d dropped=%d errors=%d sprites=%d decals=%d\n",
			s.Frames, s.Updates, s.Dropped, s.ScriptErrors, s.LiveSprites, s.LiveDecals)
	case "calls":
		for _, c := range r.surface.Calls() {
			fmt.Fprintln(r.out, c)
		}
		r.surface.ResetCalls()
	default:
		fmt.Fprintf(r.errOut, "Error: unknown command %q\n", fields[0])
	}
}
