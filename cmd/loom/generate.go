package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the output tree of a plan",
		Example: `  loom generate --plan plan.yaml --archive archetype.zip --out ./demo
  LOOM_MANIFEST=true loom generate --settings loom.toml`,
		Args: cobra.NoArgs,
	}

	overrides := bindFlags(cmd)
	cmd.Flags().String("out", ".", "output directory")
	cmd.Flags().Bool("manifest", false, "record generated files in .loom.manifest.json")
	cmd.Flags().Bool("atomic", false, "write files through a temporary file and rename")
	cmd.Flags().Bool("goimports", false, "run goimports on generated Go files")
	cmd.Flags().Bool("gofumpt", false, "run gofumpt on generated Go files")
	cmd.Flags().StringSlice("trim-space", nil, "glob patterns of generated files to strip trailing whitespace from")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		s, err := a.settings(overrides())
		if err != nil {
			return err
		}

		arc, closeArchive, err := openArchive(s.Archive)
		if err != nil {
			return err
		}
		defer closeArchive()

		e, err := a.newEngine(s, arc)
		if err != nil {
			return err
		}

		report, err := e.Generate(s.Out)
		if err != nil {
			return err
		}

		for _, f := range report.Files {
			a.logger.Debug("generated", "file", describe(f))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d files to %s\n", len(report.Files), s.Out)
		return nil
	}
	return cmd
}
