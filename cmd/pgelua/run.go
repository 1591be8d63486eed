package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/caffeineduck/pgelua/app"
	"github.com/caffeineduck/pgelua/headless"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [dir | file.lua]",
	Short: "Run a game against the headless surface",
	Long: `Boot a game, create it on a headless surface and drive PGE.update.

The loop runs until interrupted, or for --frames real frames. With --dt
every frame reports the same elapsed time, which makes runs reproducible:
  pgelua run ./mygame --frames 60 --dt 0.016`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	addBootFlags(cmd)
	cmd.Flags().Int("frames", 0, "Number of frames to run (0 runs until interrupted)")
	cmd.Flags().Float64("dt", 0, "Fixed elapsed seconds per frame (0 uses wall time)")
}

func addBootFlags(cmd *cobra.Command) {
	cmd.Flags().String("main", app.DefaultMain, "Module required as the game script")
	cmd.Flags().Int("max-catchup", 8, "Max logical steps per frame (0 is unbounded)")
	cmd.Flags().String("marshal", "strict", "Argument checking: strict, permissive")
	cmd.Flags().Bool("sandbox", false, "Open only safe libraries (no io, os, dofile)")
}

// bootApp resolves the launch settings and boots the game without creating it.
func bootApp(cmd *cobra.Command, args []string) (*app.App, launch, error) {
	l, err := resolveLaunch(cmd, args)
	if err != nil {
		return nil, l, err
	}
	logger, err := newLogger(l.logLevel, cmd.ErrOrStderr())
	if err != nil {
		return nil, l, err
	}

	opts := []app.Option{
		app.WithScriptDir(l.dir),
		app.WithMain(l.main),
		app.WithMarshalMode(l.mode),
		app.WithMaxCatchUp(l.maxCatchUp),
		app.WithLogger(logger),
		app.WithStdout(cmd.OutOrStdout()),
	}
	if l.sandbox {
		opts = append(opts, app.WithSandbox())
	}
	a, err := app.New(opts...)
	return a, l, err
}

func runRun(cmd *cobra.Command, args []string) error {
	a, l, err := bootApp(cmd, args)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.Config()
	surface := headless.New(cfg.ScreenWidth, cfg.ScreenHeight, headless.WithMaxCalls(1024))
	if err := a.Create(surface); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if err := loop(ctx, a, surface, l, cfg.TargetFrameTime()); err != nil {
		return err
	}
	if err := a.Close(); err != nil {
		return err
	}

	s := a.Stats()
	fmt.Fprintf(cmd.OutOrStdout(), "frames=%d updates=%d dropped=%d errors=%d\n",
		s.Frames, s.Updates, s.Dropped, s.ScriptErrors)
	return nil
}

// loop feeds frames until ctx is done or the frame budget is spent.
func loop(ctx context.Context, a *app.App, surface *headless.Surface, l launch, step float64) error {
	frame := func(elapsed float64) error {
		if _, err := a.Frame(elapsed); err != nil {
			return err
		}
		surface.EndFrame()
		return nil
	}

	if l.dt > 0 {
		for i := 0; l.frames == 0 || i < l.frames; i++ {
			if ctx.Err() != nil {
				return nil
			}
			if err := frame(l.dt); err != nil {
				return err
			}
		}
		return nil
	}

	ticker := time.NewTicker(time.Duration(step * float64(time.Second)))
	defer ticker.Stop()
	last := time.Now()
	for i := 0; l.frames == 0 || i < l.frames; i++ {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if err := frame(now.Sub(last).Seconds()); err != nil {
				return err
			}
			last = now
		}
	}
	return nil
}
