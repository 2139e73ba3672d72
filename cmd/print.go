package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/cutoff/internal/livelabel"
	"github.com/zjrosen/cutoff/internal/ui/countdown"
)

func newPrintCmd(c *cli) *cobra.Command {
	flags := &labelFlags{}
	var absolute bool

	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print a label once and exit",
		Example: `  cutoff print --when 2026-11-01T17:00:00Z
  cutoff print --when 2026-12-31 --before Ends --after Ended --absolute`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runPrint(cmd, flags, absolute)
		},
	}
	flags.register(cmd, "Label")
	cmd.Flags().BoolVar(&absolute, "absolute", false, "also print the absolute cut-off")
	_ = cmd.MarkFlagRequired("when")
	return cmd
}

func (c *cli) runPrint(cmd *cobra.Command, flags *labelFlags, absolute bool) error {
	cleanup, err := c.initLogging("cutoff-print")
	if err != nil {
		return err
	}
	defer cleanup()

	l := flags.label(cmd, "Label")
	phrases := l.PhrasesOver(c.cfg.Phrases)

	ctrl := livelabel.New(livelabel.Config{
		Name:       l.Name,
		Phrases:    phrases,
		Thresholds: l.ThresholdsOver(c.cfg.Thresholds),
		Parser:     livelabel.NewParser(livelabel.ParserConfig{CacheTTL: -1}),
	})
	defer ctrl.Close()

	view := countdown.New(ctrl, countdown.Spec{
		Prefix:       l.Prefix,
		Suffix:       l.Suffix,
		DateLayout:   c.cfg.UI.DateLayoutOrDefault(),
		ShowAbsolute: true,
	}).Present(l.When, phrases)
	defer view.Close()

	if err := ctrl.LastError(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, view.Text())
	if absolute {
		fmt.Fprintln(out, view.AbsoluteDate())
	}
	return nil
}
