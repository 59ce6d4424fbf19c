package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cpcf/loom/archive"
	"github.com/cpcf/loom/config"
	"github.com/cpcf/loom/engine"
	"github.com/cpcf/loom/plan"
	"github.com/cpcf/loom/postprocess"
	"github.com/cpcf/loom/processors"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

type app struct {
	verbosity    int
	settingsFile string
	logger       *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "loom",
		Short: "Generate a project from an archetype",
		Long: `loom renders templates and copies files from an archetype, a directory
or zip archive, into an output directory as described by a plan file.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.logger = newLogger(cmd.ErrOrStderr(), a.verbosity)
			a.logger.Debug("command started", "command", cmd.Name())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG)")
	root.PersistentFlags().StringVar(&a.settingsFile, "settings", "", "settings file (.yaml or .toml, default $XDG_CONFIG_HOME/loom/settings.yaml)")

	root.AddCommand(a.generateCmd(), a.pathsCmd(), a.checkCmd(), versionCmd())
	return root
}

func newLogger(w io.Writer, verbosity int) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case verbosity >= 2:
		level = slog.LevelDebug
	case verbosity == 1:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "loom version %s\n", version)
		},
	}
}

// bindFlags registers the flags shared by generate and paths. The returned
// function collects the flags that were set, keyed like config.Settings.
func bindFlags(cmd *cobra.Command) func() map[string]any {
	flags := cmd.Flags()
	flags.String("plan", "", "plan file (.yaml or .toml)")
	flags.String("archive", "", "archetype directory or .zip file")
	flags.String("files-root", engine.DefaultFilesRoot, "leading directory dropped from set targets")

	return func() map[string]any {
		overrides := make(map[string]any)
		cmd.LocalNonPersistentFlags().Visit(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			switch v := f.Value.(type) {
			case pflag.SliceValue:
				overrides[key] = v.GetSlice()
			default:
				overrides[key] = f.Value.String()
			}
		})
		return overrides
	}
}

// settings loads the --settings file, falling back to the one in the XDG
// config directory.
func (a *app) settings(overrides map[string]any) (*config.Settings, error) {
	path := a.settingsFile
	if path == "" {
		path = config.DefaultSettingsFile()
		if path != "" {
			a.logger.Debug("using settings file", "path", path)
		}
	}
	return config.LoadSettings(path, overrides)
}

// openArchive opens a zip file or a directory. The returned close function
// is never nil.
func openArchive(path string) (archive.Archive, func() error, error) {
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		z, err := archive.OpenZip(path)
		if err != nil {
			return nil, nil, err
		}
		return z, z.Close, nil
	}
	d, err := archive.OpenDir(path)
	if err != nil {
		return nil, nil, err
	}
	return d, func() error { return nil }, nil
}

// newEngine loads the plan against the archive and builds an engine
// configured from s.
func (a *app) newEngine(s *config.Settings, arc archive.Archive) (*engine.Engine, error) {
	p, err := plan.Load(s.Plan)
	if err != nil {
		return nil, err
	}
	result, err := p.Result(arc)
	if err != nil {
		return nil, err
	}

	opts := []engine.Option{
		engine.WithLogger(a.logger),
		engine.WithFilesRoot(s.FilesRoot),
		engine.WithAtomicWrites(s.Atomic),
		engine.WithManifest(s.Manifest),
	}
	if s.GoImports {
		opts = append(opts, engine.WithPostProcessor(processors.NewGoImports()))
	}
	if s.GoFumpt {
		opts = append(opts, engine.WithPostProcessor(processors.NewGoFumpt()))
	}
	for _, pattern := range s.TrimSpace {
		opts = append(opts, engine.WithPostProcessor(postprocess.ForPattern(pattern, processors.NewTrimTrailingSpace())))
	}
	return engine.New(result, opts...)
}

func describe(r engine.FileRecord) string {
	verb := "copy"
	if r.Rendered {
		verb = "render"
	}
	return fmt.Sprintf("%-9s %-6s %s -> %s", r.Kind, verb, r.Source, r.Target)
}
