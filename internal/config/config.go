// Package config provides configuration types and defaults for cutoff.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/zjrosen/cutoff/internal/livelabel"
	"github.com/zjrosen/cutoff/internal/log"
	"github.com/zjrosen/cutoff/internal/reltime"
	"github.com/zjrosen/cutoff/internal/tracing"
)

// DefaultDateLayout renders the absolute cut-off under each label.
const DefaultDateLayout = "Jan 2, 2006 at 3:04 PM"

// Config holds all configuration options for cutoff.
type Config struct {
	Phrases       reltime.Phrases      `mapstructure:"phrases"`
	Thresholds    livelabel.Thresholds `mapstructure:"thresholds"`
	UI            UIConfig             `mapstructure:"ui"`
	Labels        []LabelConfig        `mapstructure:"labels"`
	LabelsFile    string               `mapstructure:"labels_file"`     // YAML file watched for label changes
	ParseCacheTTL time.Duration        `mapstructure:"parse_cache_ttl"` // negative disables the cache
	Tracing       tracing.Config       `mapstructure:"tracing"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	DateLayout   string      `mapstructure:"date_layout"`   // Go time layout for the absolute cut-off
	ShowAbsolute bool        `mapstructure:"show_absolute"` // Show the absolute cut-off under each label
	Colors       ColorConfig `mapstructure:"colors"`
}

// ColorConfig overrides the colors of each urgency level. Hex strings, e.g. "#FF8787".
type ColorConfig struct {
	Muted   string `mapstructure:"muted"` // expired labels, dates, borders
	Notice  string `mapstructure:"notice"`
	Warning string `mapstructure:"warning"`
}

// LabelConfig defines one label on the board. Empty phrase fields and nil
// thresholds inherit the top-level settings.
type LabelConfig struct {
	Name     string `mapstructure:"name" yaml:"name"`
	When     string `mapstructure:"when" yaml:"when"`
	Before   string `mapstructure:"before" yaml:"before,omitempty"`
	After    string `mapstructure:"after" yaml:"after,omitempty"`
	Start    string `mapstructure:"start" yaml:"start,omitempty"`
	End      string `mapstructure:"end" yaml:"end,omitempty"`
	Prefix   string `mapstructure:"prefix" yaml:"prefix,omitempty"`
	Suffix   string `mapstructure:"suffix" yaml:"suffix,omitempty"`
	WarnAt   *int64 `mapstructure:"warn_at" yaml:"warn_at,omitempty"`
	NoticeAt *int64 `mapstructure:"notice_at" yaml:"notice_at,omitempty"`
}

// PhrasesOver returns base with the label's non-empty phrases applied.
func (l LabelConfig) PhrasesOver(base reltime.Phrases) reltime.Phrases {
	p := base
	if l.Before != "" {
		p.Before = l.Before
	}
	if l.After != "" {
		p.After = l.After
	}
	if l.Start != "" {
		p.Start = l.Start
	}
	if l.End != "" {
		p.End = l.End
	}
	return p
}

// ThresholdsOver returns base with the label's thresholds applied.
func (l LabelConfig) ThresholdsOver(base livelabel.Thresholds) livelabel.Thresholds {
	t := base
	if l.WarnAt != nil {
		t.WarnAt = *l.WarnAt
	}
	if l.NoticeAt != nil {
		t.NoticeAt = *l.NoticeAt
	}
	return t
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/cutoff/traces/traces.jsonl or empty string if home dir unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "cutoff", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	tr := tracing.DefaultConfig()
	tr.FilePath = DefaultTracesFilePath()

	return Config{
		Phrases:    reltime.DefaultPhrases(),
		Thresholds: livelabel.DefaultThresholds(),
		UI: UIConfig{
			DateLayout:   DefaultDateLayout,
			ShowAbsolute: true,
		},
		ParseCacheTTL: livelabel.DefaultParseCacheTTL,
		Tracing:       tr,
	}
}

// Validate checks the whole configuration, naming the offending field.
func Validate(c Config) error {
	if err := ValidateLabels(c.Labels); err != nil {
		return err
	}
	if err := ValidateUI(c.UI); err != nil {
		return err
	}
	return ValidateTracing(c.Tracing)
}

// ValidateLabels checks label definitions for errors.
// The cut-off string itself is not parsed here; a bad value shows up as a
// placeholder on the board instead of refusing to start.
func ValidateLabels(labels []LabelConfig) error {
	seen := make(map[string]int, len(labels))
	for i, l := range labels {
		if l.Name == "" {
			return fmt.Errorf("label %d: name is required", i)
		}
		if l.When == "" {
			return fmt.Errorf("label %d (%s): when is required", i, l.Name)
		}
		if prev, dup := seen[l.Name]; dup {
			return fmt.Errorf("label %d (%s): duplicate name, first used by label %d", i, l.Name, prev)
		}
		seen[l.Name] = i
	}
	return nil
}

// ValidateUI checks the date layout renders something distinct from its input
// and that colors are hex values.
func ValidateUI(ui UIConfig) error {
	if ui.DateLayout != "" {
		probe := time.Date(2001, time.February, 3, 4, 5, 6, 0, time.UTC)
		if probe.Format(ui.DateLayout) == ui.DateLayout {
			return fmt.Errorf("ui.date_layout %q contains no layout elements", ui.DateLayout)
		}
	}

	for name, c := range map[string]string{
		"muted":   ui.Colors.Muted,
		"notice":  ui.Colors.Notice,
		"warning": ui.Colors.Warning,
	} {
		if c != "" && !hexColor.MatchString(c) {
			return fmt.Errorf("ui.colors.%s must be a hex color like \"#FF8787\", got %q", name, c)
		}
	}
	return nil
}

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tr tracing.Config) error {
	if tr.SampleRate < 0.0 || tr.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tr.SampleRate)
	}

	if tr.Exporter != "" {
		switch tr.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tr.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if tr.Enabled {
		if tr.Exporter == "file" && tr.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tr.Exporter == "otlp" && tr.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// DateLayoutOrDefault returns the configured layout or DefaultDateLayout.
func (u UIConfig) DateLayoutOrDefault() string {
	if u.DateLayout == "" {
		return DefaultDateLayout
	}
	return u.DateLayout
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Cutoff Configuration

# Wording used on either side of the cut-off:
#   "<before> <start> 3 hours"  e.g. "Expires in 3 hours"
#   "<after> 2 days <end>"      e.g. "Expired 2 days ago"
phrases:
  before: Expires
  after: Expired
  start: in
  end: ago

# Seconds before the cut-off at which a label escalates.
# Set to -1 (or 0) to disable a level. Warning wins when both apply.
thresholds:
  warn_at: -1     # e.g. 3600 turns labels red in the last hour
  notice_at: -1   # e.g. 86400 turns labels yellow in the last day

# UI settings
ui:
  date_layout: "Jan 2, 2006 at 3:04 PM"  # Go time layout for the absolute date
  show_absolute: true                     # Show the absolute date under each label
  # colors:
  #   muted: "#696969"    # Expired labels, dates and borders
  #   notice: "#FECA57"   # Labels inside notice_at
  #   warning: "#FF8787"  # Labels inside warn_at

# How long parsed cut-off strings are remembered (negative disables)
parse_cache_ttl: 10m

# Labels shown on the board
# labels:
#   - name: Release freeze
#     when: "2026-11-01T17:00:00Z"
#     warn_at: 86400
#
#   - name: Coupon
#     when: "2026-12-31"
#     before: Ends
#     after: Ended
#     prefix: "Offer: "
#
# Label options:
#   name: Display name (required, unique)
#   when: ISO-8601 cut-off (required), e.g. 2026-11-01T17:00:00Z,
#         2026-11-01T17:00 (local time) or 2026-11-01 (midnight UTC)
#   before/after/start/end: Override the phrases above
#   prefix/suffix: Text placed around the rendered label
#   warn_at/notice_at: Override the thresholds above

# A YAML file with a top-level "labels:" list, reloaded whenever it changes
# labels_file: ./labels.yaml

# Distributed tracing of label refreshes
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/cutoff/traces/traces.jsonl  # Output file for file exporter
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
