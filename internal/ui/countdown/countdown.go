// Package countdown renders one live label on the board.
package countdown

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/cutoff/internal/livelabel"
	"github.com/zjrosen/cutoff/internal/log"
	"github.com/zjrosen/cutoff/internal/pubsub"
	"github.com/zjrosen/cutoff/internal/reltime"
	"github.com/zjrosen/cutoff/internal/ui/styles"
)

// Placeholder stands in for the label text until a cut-off parses.
const Placeholder = "—"

// Spec holds presentation settings that do not affect the computation.
type Spec struct {
	Prefix       string
	Suffix       string
	DateLayout   string
	ShowAbsolute bool
	// Location for the absolute date. Defaults to time.Local.
	Location *time.Location
}

// Model displays the latest state of one controller.
type Model struct {
	ctrl     *livelabel.Controller
	spec     Spec
	state    livelabel.State
	raw      string // last string handed to Present, valid or not
	invalid  bool
	width    int
	focused  bool
	ctx      context.Context
	cancel   context.CancelFunc
	listener *pubsub.ContinuousListener[livelabel.State]
}

// New creates a view bound to ctrl. The subscription lives until Close.
func New(ctrl *livelabel.Controller, spec Spec) Model {
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		ctrl:     ctrl,
		spec:     spec,
		state:    ctrl.State(),
		invalid:  ctrl.LastError() != nil,
		ctx:      ctx,
		cancel:   cancel,
		listener: pubsub.NewContinuousListener[livelabel.State](ctx, ctrl.Broker()),
	}
}

// Init starts listening for state changes.
func (m Model) Init() tea.Cmd {
	return m.listener.Listen()
}

// Update consumes state events addressed to this label. Events for other
// labels are ignored without re-listening, since they belong to another
// subscription. Events left over from a replaced session are skipped.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	ev, ok := msg.(pubsub.Event[livelabel.State])
	if !ok || ev.Payload.LabelID != m.ctrl.ID() {
		return m, nil
	}
	if current := m.ctrl.State().SessionID; ev.Payload.SessionID != current {
		log.Debug(log.CatUI, "stale label state", "label", ev.Payload.Name,
			"session", ev.Payload.SessionID, "current", current)
		return m, m.listener.Listen()
	}

	m.state = ev.Payload
	m.invalid = m.ctrl.LastError() != nil
	log.Debug(log.CatUI, "label state", "label", ev.Payload.Name, "event", ev.Type,
		"text", ev.Payload.Result.Text)
	return m, m.listener.Listen()
}

// Present hands a (possibly new) cut-off to the controller and records
// whether it was accepted. The resulting state arrives through Update.
func (m Model) Present(raw string, p reltime.Phrases) Model {
	m.ctrl.Present(raw, p)
	m.raw = raw
	m.state = m.ctrl.State()
	m.invalid = m.ctrl.LastError() != nil
	return m
}

// SetSpec replaces the presentation settings.
func (m Model) SetSpec(spec Spec) Model {
	m.spec = spec
	return m
}

// SetWidth constrains each rendered line.
func (m Model) SetWidth(width int) Model {
	m.width = width
	return m
}

// SetFocused marks the label as selected.
func (m Model) SetFocused(focused bool) Model {
	m.focused = focused
	return m
}

// State returns the last state received.
func (m Model) State() livelabel.State { return m.state }

// Close ends the subscription.
func (m Model) Close() {
	if m.cancel != nil {
		m.cancel()
	}
}

// Text returns the unstyled label line: prefix, sentence and suffix.
func (m Model) Text() string {
	if !m.state.Valid() {
		return m.spec.Prefix + Placeholder + m.spec.Suffix
	}
	return m.spec.Prefix + m.state.Result.Sentence() + m.spec.Suffix
}

// AbsoluteDate formats the cut-off with the configured layout, or "" when
// there is nothing to show.
func (m Model) AbsoluteDate() string {
	if !m.spec.ShowAbsolute || !m.state.Valid() {
		return ""
	}
	loc := m.spec.Location
	if loc == nil {
		loc = time.Local
	}
	layout := m.spec.DateLayout
	if layout == "" {
		layout = time.RFC1123
	}
	return m.state.Cutoff.In(loc).Format(layout)
}

// View renders the name, the label and optionally the absolute date.
func (m Model) View() string {
	indicator := "  "
	if m.focused {
		indicator = styles.SelectionIndicatorStyle.Render("> ")
	}

	lines := []string{indicator + styles.LabelNameStyle.Render(m.ctrl.Name())}

	var body string
	if m.state.Valid() {
		body = styles.UrgencyStyle(m.state.Urgency).Render(m.Text())
	} else {
		body = styles.PlaceholderStyle.Render(m.Text())
	}
	if m.invalid {
		body += " " + styles.InvalidCutoffStyle.Render("(invalid cut-off: "+m.rawOrState()+")")
	}
	lines = append(lines, "  "+body)

	if date := m.AbsoluteDate(); date != "" {
		lines = append(lines, "  "+styles.AbsoluteDateStyle.Render(date))
	}

	if m.width > 0 {
		for i, l := range lines {
			lines[i] = styles.TruncateString(l, m.width)
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) rawOrState() string {
	if m.raw != "" {
		return m.raw
	}
	return m.state.Raw
}
