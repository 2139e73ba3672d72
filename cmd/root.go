package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/cutoff/internal/app"
	"github.com/zjrosen/cutoff/internal/config"
	"github.com/zjrosen/cutoff/internal/log"
	"github.com/zjrosen/cutoff/internal/tracing"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

const (
	envPrefix         = "CUTOFF"
	localConfigPath   = ".cutoff/config.yaml"
	defaultLogPath    = "debug.log"
	tracingShutdownIn = 5 * time.Second
)

var version = "dev"

// cli holds the state shared by the command tree: global flags and the
// configuration resolved before any command runs.
type cli struct {
	v          *viper.Viper
	cfgFile    string
	labelsFile string
	debug      bool
	logFile    string
	cfg        config.Config
}

// NewRootCmd builds the command tree with its own viper instance.
func NewRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}
	flags := &labelFlags{}

	root := &cobra.Command{
		Use:   "cutoff",
		Short: "Live countdown labels for deadlines",
		Long: `cutoff shows labels such as "Expires in 3 hours" or "Expired 2 days ago"
that update themselves as time passes. Labels come from flags, the config
file, or a labels file that is reloaded whenever it changes.`,
		Version:       version,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          func(cmd *cobra.Command, _ []string) error { return c.runApp(cmd, flags) },
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.initConfig(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&c.cfgFile, "config", "c", "",
		"config file (default: .cutoff/config.yaml or ~/.config/cutoff/config.yaml)")
	pf.StringVarP(&c.labelsFile, "labels", "l", "",
		"YAML file with a labels list, reloaded on change")
	pf.BoolVarP(&c.debug, "debug", "d", false,
		"enable debug logging (also CUTOFF_DEBUG)")
	pf.StringVar(&c.logFile, "log-file", "",
		"debug log path (default: debug.log, also CUTOFF_LOG)")

	flags.register(root, "Label")

	root.AddCommand(newPrintCmd(c), newAddCmd(c), newRemoveCmd(c))
	return root
}

// initConfig resolves the config file, environment and flags into c.cfg.
func (c *cli) initConfig(cmd *cobra.Command) error {
	v := c.v
	setDefaults(v, config.Defaults())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlag("labels_file", cmd.Root().PersistentFlags().Lookup("labels")); err != nil {
		return fmt.Errorf("binding labels flag: %w", err)
	}

	if c.cfgFile != "" {
		v.SetConfigFile(c.cfgFile)
	} else {
		// Config lookup order:
		// 1. .cutoff/config.yaml (current directory)
		// 2. ~/.config/cutoff/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			v.SetConfigFile(localConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			v.AddConfigPath(filepath.Join(home, ".config", "cutoff"))
			v.SetConfigName("config")
			v.SetConfigType("yaml")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
		// No config file found anywhere - create default at .cutoff/config.yaml
		if writeErr := config.WriteDefaultConfig(localConfigPath); writeErr == nil {
			v.SetConfigFile(localConfigPath)
			_ = v.ReadInConfig()
		}
		// If write fails, just continue with defaults (no config file)
	}

	cfg := config.Defaults()
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	c.cfg = cfg
	return nil
}

// setDefaults registers every scalar key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d config.Config) {
	v.SetDefault("phrases.before", d.Phrases.Before)
	v.SetDefault("phrases.after", d.Phrases.After)
	v.SetDefault("phrases.start", d.Phrases.Start)
	v.SetDefault("phrases.end", d.Phrases.End)
	v.SetDefault("thresholds.warn_at", d.Thresholds.WarnAt)
	v.SetDefault("thresholds.notice_at", d.Thresholds.NoticeAt)
	v.SetDefault("ui.date_layout", d.UI.DateLayout)
	v.SetDefault("ui.show_absolute", d.UI.ShowAbsolute)
	v.SetDefault("ui.colors.muted", d.UI.Colors.Muted)
	v.SetDefault("ui.colors.notice", d.UI.Colors.Notice)
	v.SetDefault("ui.colors.warning", d.UI.Colors.Warning)
	v.SetDefault("labels_file", d.LabelsFile)
	v.SetDefault("parse_cache_ttl", d.ParseCacheTTL)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
}

// initLogging turns on the file logger when debug mode is enabled via flag
// or env var. The returned cleanup is always safe to call.
func (c *cli) initLogging(prefix string) (func(), error) {
	if !c.debug && os.Getenv("CUTOFF_DEBUG") == "" {
		return func() {}, nil
	}

	logPath := c.logFile
	if logPath == "" {
		logPath = os.Getenv("CUTOFF_LOG")
	}
	if logPath == "" {
		logPath = defaultLogPath
	}

	cleanup, err := log.InitWithTeaLog(logPath, prefix)
	if err != nil {
		return nil, fmt.Errorf("initializing logging: %w", err)
	}
	log.Info(log.CatConfig, "cutoff starting", "debug", true, "logPath", logPath,
		"config", c.v.ConfigFileUsed())
	return cleanup, nil
}

func (c *cli) runApp(cmd *cobra.Command, flags *labelFlags) error {
	cleanup, err := c.initLogging("cutoff")
	if err != nil {
		return err
	}
	defer cleanup()

	labels := c.cfg.Labels
	if flags.when != "" {
		labels = upsertLabel(labels, flags.label(cmd, "Label"))
	}

	provider, err := tracing.NewProvider(c.cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), tracingShutdownIn)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatTrace, "Tracing shutdown failed", err)
		}
	}()

	model := app.New(app.Options{
		Config:     c.cfg,
		Labels:     labels,
		LabelsFile: c.cfg.LabelsFile,
		Watch:      true,
		Tracer:     provider.Tracer(),
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	final, err := p.Run()

	// The final model owns every controller still on the board.
	closer := model
	if m, ok := final.(app.Model); ok {
		closer = m
	}
	if closeErr := closer.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// upsertLabel replaces the label named l.Name or appends l.
func upsertLabel(labels []config.LabelConfig, l config.LabelConfig) []config.LabelConfig {
	out := make([]config.LabelConfig, 0, len(labels)+1)
	replaced := false
	for _, existing := range labels {
		if existing.Name == l.Name {
			out = append(out, l)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, l)
	}
	return out
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
}
