package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Render a plan without writing and report every failure",
		Long: `check renders every directive of the plan without writing anything and
reports all failures at once. When the output directory holds a manifest
from an earlier run, files edited or deleted since then are listed too.`,
		Args: cobra.NoArgs,
	}

	overrides := bindFlags(cmd)
	cmd.Flags().String("out", ".", "output directory compared against its manifest")

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
		if err := e.Check(); err != nil {
			return err
		}

		modified, err := e.Modified(s.Out)
		if err != nil {
			return err
		}
		for _, p := range modified {
			fmt.Fprintf(cmd.OutOrStdout(), "modified %s\n", p)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "ok")
		return nil
	}
	return cmd
}
