// Package app contains the root application model.
package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/cutoff/internal/config"
	"github.com/zjrosen/cutoff/internal/keys"
	"github.com/zjrosen/cutoff/internal/livelabel"
	"github.com/zjrosen/cutoff/internal/log"
	"github.com/zjrosen/cutoff/internal/pubsub"
	"github.com/zjrosen/cutoff/internal/ui/countdown"
	"github.com/zjrosen/cutoff/internal/ui/styles"
	"github.com/zjrosen/cutoff/internal/watcher"
)

// Options configures the board.
type Options struct {
	Config config.Config
	// Labels from flags and the config file. Labels in LabelsFile override
	// these by name.
	Labels     []config.LabelConfig
	LabelsFile string
	// Watch reloads LabelsFile whenever it changes.
	Watch    bool
	Clock    clockwork.Clock
	Tracer   trace.Tracer
	Location *time.Location
}

// labelsChangedMsg is sent when the labels file should be re-read.
type labelsChangedMsg struct{}

type entry struct {
	label config.LabelConfig
	ctrl  *livelabel.Controller
	view  countdown.Model
}

// Model is the root application state.
type Model struct {
	opts    Options
	parser  *livelabel.Parser
	entries []entry
	cursor  int

	keys keys.KeyMap
	help help.Model

	width  int
	height int

	// File watcher for the labels file
	watcher   *watcher.Watcher
	changes   <-chan struct{}
	reloadErr error
}

// New builds one controller and countdown per label and presents each cut-off.
func New(opts Options) Model {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	m := Model{
		opts: opts,
		parser: livelabel.NewParser(livelabel.ParserConfig{
			Location: opts.Location,
			CacheTTL: opts.Config.ParseCacheTTL,
		}),
		keys: keys.DefaultKeyMap(),
		help: help.New(),
	}

	colors := opts.Config.UI.Colors
	styles.ApplyTheme(colors.Muted, colors.Notice, colors.Warning)

	labels := opts.Labels
	if opts.LabelsFile != "" {
		fileLabels, err := config.LoadLabels(opts.LabelsFile)
		if err != nil {
			log.ErrorErr(log.CatConfig, "Failed to load labels file", err, "path", opts.LabelsFile)
			m.reloadErr = err
		}
		labels = mergeLabels(opts.Labels, fileLabels)

		if opts.Watch {
			m.watcher, m.changes = startWatcher(opts.LabelsFile)
		}
	}

	for _, l := range labels {
		m.entries = append(m.entries, m.newEntry(l))
	}
	m.layout()
	log.Info(log.CatUI, "Board created", "labels", len(m.entries), "watching", m.watcher != nil)

	return m
}

// startWatcher returns nils when the file cannot be watched; the board
// works without live reload.
func startWatcher(path string) (*watcher.Watcher, <-chan struct{}) {
	w, err := watcher.New(watcher.DefaultConfig(path))
	if err != nil {
		log.Warn(log.CatWatcher, "Failed to create watcher", "error", err)
		return nil, nil
	}
	ch, err := w.Start()
	if err != nil {
		log.Warn(log.CatWatcher, "Failed to start watcher", "error", err)
		_ = w.Stop()
		return nil, nil
	}
	return w, ch
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.entries)+1)
	for _, e := range m.entries {
		cmds = append(cmds, e.view.Init())
	}
	cmds = append(cmds, waitForChange(m.changes))
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.layout()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			m.layout()
			return m, nil
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}
			m.layout()
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			log.Debug(log.CatUI, "Refreshing all labels", "count", len(m.entries))
			for _, e := range m.entries {
				e.ctrl.Refresh()
			}
			return m, nil
		case key.Matches(msg, m.keys.Reload):
			return m.reload()
		}

	case pubsub.Event[livelabel.State]:
		for i := range m.entries {
			if m.entries[i].ctrl.ID() == msg.Payload.LabelID {
				var cmd tea.Cmd
				m.entries[i].view, cmd = m.entries[i].view.Update(msg)
				return m, cmd
			}
		}
		return m, nil

	case labelsChangedMsg:
		log.Debug(log.CatWatcher, "Labels file changed", "path", m.opts.LabelsFile)
		next, cmd := m.reload()
		return next, tea.Batch(cmd, waitForChange(m.changes))
	}

	return m, nil
}

// reload re-reads the labels file: existing names are re-presented, new
// names get controllers and removed names are disposed.
func (m Model) reload() (Model, tea.Cmd) {
	if m.opts.LabelsFile == "" {
		return m, nil
	}

	fileLabels, err := config.LoadLabels(m.opts.LabelsFile)
	if err != nil {
		log.ErrorErr(log.CatConfig, "Failed to reload labels file", err, "path", m.opts.LabelsFile)
		m.reloadErr = err
		return m, nil
	}
	m.reloadErr = nil

	cmd := m.apply(mergeLabels(m.opts.Labels, fileLabels))
	return m, cmd
}

// apply reconciles the board with labels.
func (m *Model) apply(labels []config.LabelConfig) tea.Cmd {
	existing := make(map[string]entry, len(m.entries))
	for _, e := range m.entries {
		existing[e.label.Name] = e
	}

	var (
		cmds               []tea.Cmd
		added, kept, total int
	)
	next := make([]entry, 0, len(labels))
	for _, l := range labels {
		if e, ok := existing[l.Name]; ok {
			delete(existing, l.Name)
			e.label = l
			e.ctrl.SetThresholds(l.ThresholdsOver(m.opts.Config.Thresholds))
			e.view = e.view.SetSpec(m.specFor(l)).Present(l.When, l.PhrasesOver(m.opts.Config.Phrases))
			next = append(next, e)
			kept++
			continue
		}
		e := m.newEntry(l)
		cmds = append(cmds, e.view.Init())
		next = append(next, e)
		added++
	}

	for name, e := range existing {
		log.Debug(log.CatUI, "Removing label", "label", name)
		e.view.Close()
		e.ctrl.Close()
	}
	total = len(next)

	m.entries = next
	if m.cursor >= len(m.entries) {
		m.cursor = max(0, len(m.entries)-1)
	}
	m.layout()

	log.Info(log.CatConfig, "Applied labels", "total", total, "added", added, "kept", kept, "removed", len(existing))
	return tea.Batch(cmds...)
}

func (m Model) newEntry(l config.LabelConfig) entry {
	phrases := l.PhrasesOver(m.opts.Config.Phrases)
	ctrl := livelabel.New(livelabel.Config{
		Name:       l.Name,
		Phrases:    phrases,
		Thresholds: l.ThresholdsOver(m.opts.Config.Thresholds),
		Clock:      m.opts.Clock,
		Parser:     m.parser,
		Tracer:     m.opts.Tracer,
	})
	view := countdown.New(ctrl, m.specFor(l)).Present(l.When, phrases)
	return entry{label: l, ctrl: ctrl, view: view}
}

func (m Model) specFor(l config.LabelConfig) countdown.Spec {
	return countdown.Spec{
		Prefix:       l.Prefix,
		Suffix:       l.Suffix,
		DateLayout:   m.opts.Config.UI.DateLayoutOrDefault(),
		ShowAbsolute: m.opts.Config.UI.ShowAbsolute,
		Location:     m.opts.Location,
	}
}

// layout pushes width and focus down to the countdowns.
func (m *Model) layout() {
	inner := 0
	if m.width > 0 {
		inner = max(1, m.width-4) // border and padding
	}
	for i := range m.entries {
		m.entries[i].view = m.entries[i].view.SetWidth(inner).SetFocused(i == m.cursor)
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("cutoff"))
	if summary := m.summary(); summary != "" {
		b.WriteString(styles.StatusBarStyle.Render(summary))
	}
	b.WriteString("\n")

	var body string
	if len(m.entries) == 0 {
		body = styles.PlaceholderStyle.Render("No labels. Pass --when, or add labels to the config or labels file.")
	} else {
		views := make([]string, len(m.entries))
		for i, e := range m.entries {
			views[i] = e.view.View()
		}
		body = strings.Join(views, "\n\n")
	}

	panel := styles.PanelStyle
	if m.width > 2 {
		panel = panel.Width(m.width - 2)
	}
	b.WriteString(panel.Render(body))
	b.WriteString("\n")

	if m.reloadErr != nil {
		msg := m.reloadErr.Error()
		if m.width > 2 {
			msg = styles.TruncateString(msg, m.width-2)
		}
		b.WriteString(styles.ErrorStyle.Render(msg))
		b.WriteString("\n")
	}

	b.WriteString(lipgloss.NewStyle().PaddingLeft(1).Render(m.help.View(m.keys)))
	return b.String()
}

// summary counts labels per urgency, e.g. "3 labels · 1 warning · 1 expired".
func (m Model) summary() string {
	if len(m.entries) == 0 {
		return ""
	}

	counts := map[livelabel.Urgency]int{}
	for _, e := range m.entries {
		if st := e.view.State(); st.Valid() {
			counts[st.Urgency]++
		}
	}

	noun := "labels"
	if len(m.entries) == 1 {
		noun = "label"
	}
	parts := []string{fmt.Sprintf("%d %s", len(m.entries), noun)}
	for _, u := range []livelabel.Urgency{livelabel.UrgencyNotice, livelabel.UrgencyWarning, livelabel.UrgencyExpired} {
		if n := counts[u]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, u))
		}
	}
	return strings.Join(parts, " · ")
}

// Names returns the label names in board order.
func (m Model) Names() []string {
	names := make([]string, len(m.entries))
	for i, e := range m.entries {
		names[i] = e.label.Name
	}
	return names
}

// Close disposes every controller and stops the watcher.
func (m Model) Close() error {
	for _, e := range m.entries {
		e.view.Close()
		e.ctrl.Close()
	}
	if m.watcher != nil {
		if err := m.watcher.Stop(); err != nil {
			return fmt.Errorf("stopping watcher: %w", err)
		}
	}
	return nil
}

// mergeLabels returns base with labels from override replacing those of the
// same name and new names appended.
func mergeLabels(base, override []config.LabelConfig) []config.LabelConfig {
	byName := make(map[string]int, len(base))
	out := make([]config.LabelConfig, 0, len(base)+len(override))
	for _, l := range base {
		byName[l.Name] = len(out)
		out = append(out, l)
	}
	for _, l := range override {
		if i, ok := byName[l.Name]; ok {
			out[i] = l
			continue
		}
		byName[l.Name] = len(out)
		out = append(out, l)
	}
	return out
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return labelsChangedMsg{}
	}
}
