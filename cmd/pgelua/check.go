package main

import (
	"fmt"

	"github.com/caffeineduck/pgelua/app"
	"github.com/caffeineduck/pgelua/hostfunc"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var checkCmd = &cobra.Command{
	Use:   "check [dir | file.lua]",
	Short: "Boot a game and print its validated config",
	Long: `Load the runtime and the game script, call PGE.config once and print
the validated result as YAML. Nothing is created and PGE.load never runs.
A config problem makes the command fail with every problem listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	addBootFlags(checkCmd)
	rootCmd.AddCommand(checkCmd)
}

type checkReport struct {
	Main    string     `yaml:"main"`
	Config  app.Config `yaml:"config"`
	Marshal string     `yaml:"marshal"`
	Modules []string   `yaml:"modules"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	a, l, err := bootApp(cmd, args)
	if err != nil {
		return err
	}
	defer a.Close()

	report := checkReport{
		Main:    l.main,
		Config:  a.Config(),
		Marshal: l.mode.String(),
		Modules: hostfunc.Builtin().List(),
	}
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return enc.Close()
}
