package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) pathsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "List the files a plan would generate without writing them",
		Args:  cobra.NoArgs,
	}

	overrides := bindFlags(cmd)

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

		records, err := e.Preview()
		if err != nil {
			return err
		}
		for _, r := range records {
			fmt.Fprintln(cmd.OutOrStdout(), describe(r))
		}
		return nil
	}
	return cmd
}
