package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/cutoff/internal/config"
)

// labelFlags are the per-label options shared by the root, print and add
// commands.
type labelFlags struct {
	name     string
	when     string
	before   string
	after    string
	start    string
	end      string
	prefix   string
	suffix   string
	warnAt   int64
	noticeAt int64
}

func (f *labelFlags) register(cmd *cobra.Command, defaultName string) {
	nameUsage := "label name"
	if defaultName != "" {
		nameUsage += " (default: " + defaultName + ")"
	}

	fs := cmd.Flags()
	fs.StringVarP(&f.when, "when", "w", "", "cut-off instant, e.g. 2026-11-01T17:00:00Z or 2026-11-01")
	fs.StringVarP(&f.name, "name", "n", "", nameUsage)
	fs.StringVar(&f.before, "before", "", "direction word before the cut-off (default: Expires)")
	fs.StringVar(&f.after, "after", "", "direction word after the cut-off (default: Expired)")
	fs.StringVar(&f.start, "start", "", "connector before the amount while the cut-off is ahead (default: in)")
	fs.StringVar(&f.end, "end", "", "connector after the amount once it has passed (default: ago)")
	fs.StringVar(&f.prefix, "prefix", "", "text placed before the label")
	fs.StringVar(&f.suffix, "suffix", "", "text placed after the label")
	fs.Int64Var(&f.warnAt, "warn-at", 0, "seconds before the cut-off at which the label turns to warning (-1 disables)")
	fs.Int64Var(&f.noticeAt, "notice-at", 0, "seconds before the cut-off at which the label turns to notice (-1 disables)")
}

// label converts the flags into a label definition. Thresholds are only
// overridden when their flag was given.
func (f *labelFlags) label(cmd *cobra.Command, defaultName string) config.LabelConfig {
	l := config.LabelConfig{
		Name:   f.name,
		When:   f.when,
		Before: f.before,
		After:  f.after,
		Start:  f.start,
		End:    f.end,
		Prefix: f.prefix,
		Suffix: f.suffix,
	}
	if l.Name == "" {
		l.Name = defaultName
	}
	if cmd.Flags().Changed("warn-at") {
		v := f.warnAt
		l.WarnAt = &v
	}
	if cmd.Flags().Changed("notice-at") {
		v := f.noticeAt
		l.NoticeAt = &v
	}
	return l
}
