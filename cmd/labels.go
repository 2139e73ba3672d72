package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/cutoff/internal/config"
	"github.com/zjrosen/cutoff/internal/livelabel"
)

var errNoLabelsFile = errors.New("no labels file: pass --labels or set labels_file in the config")

func newAddCmd(c *cli) *cobra.Command {
	flags := &labelFlags{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add or replace a label in the labels file",
		Example: `  cutoff add --labels labels.yaml --name "Release freeze" --when 2026-11-01T17:00:00Z --warn-at 86400`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.cfg.LabelsFile == "" {
				return errNoLabelsFile
			}
			l := flags.label(cmd, "")

			// Reject cut-offs the board could only show as a placeholder.
			parser := livelabel.NewParser(livelabel.ParserConfig{CacheTTL: -1})
			if _, err := parser.Parse(l.When); err != nil {
				return err
			}

			if err := config.AddLabel(c.cfg.LabelsFile, l); err != nil {
				return fmt.Errorf("adding label: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %q to %s\n", l.Name, c.cfg.LabelsFile)
			return nil
		},
	}
	flags.register(cmd, "")
	_ = cmd.MarkFlagRequired("when")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newRemoveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "remove NAME",
		Aliases: []string{"rm"},
		Short:   "Remove a label from the labels file",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.LabelsFile == "" {
				return errNoLabelsFile
			}
			if err := config.RemoveLabel(c.cfg.LabelsFile, args[0]); err != nil {
				return fmt.Errorf("removing label: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %q from %s\n", args[0], c.cfg.LabelsFile)
			return nil
		},
	}
}
