package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

const noManifestMessage = "no flowtrace.toml found\nplease specify the script explicitly, e.g.:\n  flowtrace run path/to/script.flow"

type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Package packageConfig `toml:"package"`
	Run     runConfig     `toml:"run"`
	Trace   traceConfig   `toml:"trace"`
}

type packageConfig struct {
	Name string `toml:"name"`
}

type runConfig struct {
	Main string `toml:"main"`
}

type traceConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	Output string `toml:"output"`
	Mode   string `toml:"mode"`
	Handle string `toml:"handle"`
}

func findManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "flowtrace.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadManifest(startDir string) (*projectManifest, bool, error) {
	path, ok, err := findManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}

	var cfg projectConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, true, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return &projectManifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, true, nil
}

// resolveScript returns the script to run: the explicit argument when
// given, otherwise the manifest's run.main relative to the manifest root.
func resolveScript(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	manifest, ok, err := loadManifest(".")
	if err != nil {
		return "", err
	}
	if !ok || manifest.Config.Run.Main == "" {
		return "", errors.New(noManifestMessage)
	}
	return filepath.Join(manifest.Root, manifest.Config.Run.Main), nil
}

// applyManifestTrace overlays manifest [trace] settings onto unset flags.
func applyManifestTrace(cmd *cobra.Command) error {
	manifest, ok, err := loadManifest(".")
	if err != nil || !ok {
		return err
	}

	flags := cmd.Root().PersistentFlags()
	tc := manifest.Config.Trace
	set := func(name, value string) error {
		if value == "" || flags.Changed(name) {
			return nil
		}
		return flags.Set(name, value)
	}
	if err := set("trace-level", tc.Level); err != nil {
		return err
	}
	if err := set("trace-format", tc.Format); err != nil {
		return err
	}
	if err := set("trace", tc.Output); err != nil {
		return err
	}
	if err := set("trace-mode", tc.Mode); err != nil {
		return err
	}
	if traceHandle == "" {
		traceHandle = tc.Handle
	}
	return nil
}
