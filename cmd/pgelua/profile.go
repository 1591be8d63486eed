package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caffeineduck/pgelua/app"
	"github.com/caffeineduck/pgelua/marshal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ProfileName is the launch profile looked up in the game directory.
const ProfileName = "pgelua.yaml"

// Profile holds launch settings kept next to a game. Command line flags
// override it.
type Profile struct {
	Main       string  `yaml:"main"`
	MaxCatchUp *int    `yaml:"max_catchup"`
	Marshal    string  `yaml:"marshal"`
	Sandbox    bool    `yaml:"sandbox"`
	LogLevel   string  `yaml:"log_level"`
	Frames     int     `yaml:"frames"`
	DT         float64 `yaml:"dt"`
}

// loadProfile reads path. A missing file is an error only when required.
func loadProfile(path string, required bool) (Profile, error) {
	var p Profile
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return p, nil
		}
		return p, fmt.Errorf("read profile: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return p, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return p, nil
}

// launch is the resolved set of settings for one run.
type launch struct {
	dir        string
	main       string
	maxCatchUp int
	mode       marshal.Mode
	sandbox    bool
	logLevel   string
	frames     int
	dt         float64
}

// resolveLaunch merges defaults, the profile and explicitly set flags, in
// that order.
func resolveLaunch(cmd *cobra.Command, args []string) (launch, error) {
	l := launch{
		dir:  ".",
		main: app.DefaultMain,
	}
	fileMain := false
	if len(args) > 0 {
		target := args[0]
		if strings.EqualFold(filepath.Ext(target), ".lua") {
			l.dir = filepath.Dir(target)
			l.main = strings.TrimSuffix(filepath.Base(target), filepath.Ext(target))
			fileMain = true
		} else {
			l.dir = target
		}
	}

	profilePath, _ := cmd.Flags().GetString("profile")
	required := profilePath != ""
	if !required {
		profilePath = filepath.Join(l.dir, ProfileName)
	}
	p, err := loadProfile(profilePath, required)
	if err != nil {
		return l, err
	}

	flags := cmd.Flags()
	l.maxCatchUp, _ = flags.GetInt("max-catchup")
	l.logLevel, _ = flags.GetString("log-level")
	l.frames, _ = flags.GetInt("frames")
	l.dt, _ = flags.GetFloat64("dt")
	l.sandbox, _ = flags.GetBool("sandbox")
	mode, _ := flags.GetString("marshal")

	switch {
	case flags.Changed("main"):
		l.main, _ = flags.GetString("main")
	case p.Main != "" && !fileMain:
		l.main = p.Main
	}
	if p.MaxCatchUp != nil && !flags.Changed("max-catchup") {
		l.maxCatchUp = *p.MaxCatchUp
	}
	if p.Marshal != "" && !flags.Changed("marshal") {
		mode = p.Marshal
	}
	if p.Sandbox && !flags.Changed("sandbox") {
		l.sandbox = true
	}
	if p.LogLevel != "" && !flags.Changed("log-level") {
		l.logLevel = p.LogLevel
	}
	if p.Frames != 0 && !flags.Changed("frames") {
		l.frames = p.Frames
	}
	if p.DT != 0 && !flags.Changed("dt") {
		l.dt = p.DT
	}

	if l.mode, err = marshal.ParseMode(mode); err != nil {
		return l, err
	}
	if l.maxCatchUp < 0 {
		return l, fmt.Errorf("max-catchup must not be negative, got %d", l.maxCatchUp)
	}
	if l.frames < 0 || l.dt < 0 {
		return l, fmt.Errorf("frames and dt must not be negative")
	}
	return l, nil
}
