package countdown

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/jonboulle/clockwork"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/cutoff/internal/livelabel"
	"github.com/zjrosen/cutoff/internal/pubsub"
	"github.com/zjrosen/cutoff/internal/reltime"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newView(t *testing.T, name string, spec Spec) (Model, *livelabel.Controller) {
	t.Helper()
	ctrl := livelabel.New(livelabel.Config{
		Name:       name,
		Phrases:    reltime.DefaultPhrases(),
		Thresholds: livelabel.Thresholds{WarnAt: 3600, NoticeAt: 7200},
		Clock:      clockwork.NewFakeClockAt(base),
		Parser:     livelabel.NewParser(livelabel.ParserConfig{Location: time.UTC}),
	})
	m := New(ctrl, spec)
	t.Cleanup(func() {
		m.Close()
		ctrl.Close()
	})
	return m, ctrl
}

func at(d time.Duration) string {
	return base.Add(d).Format(time.RFC3339)
}

func TestView_PlaceholderBeforePresent(t *testing.T) {
	m, _ := newView(t, "Launch", Spec{ShowAbsolute: true})

	require.Equal(t, Placeholder, m.Text())
	require.Empty(t, m.AbsoluteDate())

	view := ansi.Strip(m.View())
	require.Contains(t, view, "Launch")
	require.Contains(t, view, Placeholder)
	require.NotContains(t, view, "invalid")
}

func TestView_PresentValid(t *testing.T) {
	m, _ := newView(t, "Deal", Spec{Prefix: "Deal: ", Suffix: "!"})

	m = m.Present(at(3*time.Hour), reltime.DefaultPhrases())

	require.Equal(t, "Deal: Expires in 3 hours!", m.Text())
	require.Contains(t, ansi.Strip(m.View()), "Deal: Expires in 3 hours!")
}

func TestView_FirstPresentInvalid(t *testing.T) {
	m, _ := newView(t, "Broken", Spec{ShowAbsolute: true})

	m = m.Present("next tuesday", reltime.DefaultPhrases())

	view := ansi.Strip(m.View())
	require.Contains(t, view, Placeholder)
	require.Contains(t, view, "(invalid cut-off: next tuesday)")
	require.False(t, m.State().Valid())
}

func TestView_InvalidAfterValidKeepsLabel(t *testing.T) {
	m, _ := newView(t, "Launch", Spec{})

	m = m.Present(at(30*time.Minute), reltime.DefaultPhrases())
	m = m.Present("oops", reltime.DefaultPhrases())

	view := ansi.Strip(m.View())
	require.Contains(t, view, "Expires in 30 minutes")
	require.Contains(t, view, "(invalid cut-off: oops)")

	m = m.Present(at(90*time.Minute), reltime.DefaultPhrases())
	require.NotContains(t, ansi.Strip(m.View()), "invalid")
}

func TestView_RevertAfterInvalidClearsMarker(t *testing.T) {
	m, _ := newView(t, "Launch", Spec{})
	good := at(2 * time.Hour)

	m = m.Present(good, reltime.DefaultPhrases())
	m = m.Present("garbage", reltime.DefaultPhrases())
	require.Contains(t, ansi.Strip(m.View()), "(invalid cut-off: garbage)")

	m = m.Present(good, reltime.DefaultPhrases())
	view := ansi.Strip(m.View())
	require.Contains(t, view, "Expires in 2 hours")
	require.NotContains(t, view, "invalid")
}

func TestUpdate_SkipsReplacedSession(t *testing.T) {
	m, ctrl := newView(t, "Launch", Spec{})

	m = m.Present(at(5*time.Hour), reltime.DefaultPhrases())
	old := ctrl.State()

	m = m.Present(at(2*time.Hour), reltime.DefaultPhrases())
	require.Equal(t, "Expires in 2 hours", m.Text())

	m, cmd := m.Update(pubsub.Event[livelabel.State]{Type: pubsub.RefreshedEvent, Payload: old})
	require.NotNil(t, cmd, "still listening after a stale event")
	require.Equal(t, "Expires in 2 hours", m.Text())
	require.Equal(t, ctrl.State().SessionID, m.State().SessionID)
}

func TestView_PastLabel(t *testing.T) {
	m, _ := newView(t, "Trial", Spec{})

	m = m.Present(at(-50*time.Hour), reltime.Phrases{Before: "Ends", After: "Ended", Start: "in", End: "ago"})

	require.Equal(t, "Ended 2 days ago", m.Text())
	require.Equal(t, livelabel.UrgencyExpired, m.State().Urgency)
}

func TestAbsoluteDate(t *testing.T) {
	m, _ := newView(t, "Launch", Spec{
		ShowAbsolute: true,
		DateLayout:   "Jan 2, 2006 at 3:04 PM",
		Location:     time.UTC,
	})
	m = m.Present(at(2*time.Hour+30*time.Minute), reltime.DefaultPhrases())

	require.Equal(t, "Mar 1, 2026 at 2:30 PM", m.AbsoluteDate())
	require.Contains(t, ansi.Strip(m.View()), "Mar 1, 2026 at 2:30 PM")

	m = m.SetSpec(Spec{ShowAbsolute: false})
	require.Empty(t, m.AbsoluteDate())
}

func TestUpdate_OwnAndForeignEvents(t *testing.T) {
	m, ctrl := newView(t, "Mine", Spec{})
	ctrl.Present(at(5*time.Hour), reltime.DefaultPhrases())

	foreign := pubsub.Event[livelabel.State]{
		Type:    pubsub.RefreshedEvent,
		Payload: livelabel.State{LabelID: "someone-else", SessionID: "x"},
	}
	m2, cmd := m.Update(foreign)
	require.Nil(t, cmd, "foreign events do not re-listen")
	require.False(t, m2.State().Valid())

	own := pubsub.Event[livelabel.State]{Type: pubsub.RefreshedEvent, Payload: ctrl.State()}
	m3, cmd := m.Update(own)
	require.NotNil(t, cmd, "own events re-listen")
	require.Equal(t, "Expires in 5 hours", m3.Text())
}

func TestInit_ReceivesPublishedState(t *testing.T) {
	m, ctrl := newView(t, "Replay", Spec{})
	ctrl.Present(at(4*time.Hour), reltime.DefaultPhrases())

	msg := m.Init()()
	ev, ok := msg.(pubsub.Event[livelabel.State])
	require.True(t, ok, "expected a state event, got %T", msg)

	m, _ = m.Update(ev)
	require.Equal(t, "Expires in 4 hours", m.Text())
}

func TestView_UrgencyText(t *testing.T) {
	m, _ := newView(t, "Soon", Spec{})

	m = m.Present(at(20*time.Minute), reltime.DefaultPhrases())
	require.Equal(t, livelabel.UrgencyWarning, m.State().Urgency)

	m = m.Present(at(100*time.Minute), reltime.DefaultPhrases())
	require.Equal(t, livelabel.UrgencyNotice, m.State().Urgency)
}

func TestView_WidthAndFocus(t *testing.T) {
	m, _ := newView(t, "A rather long label name", Spec{ShowAbsolute: true, Location: time.UTC})
	m = m.Present(at(3*time.Hour), reltime.DefaultPhrases())

	m = m.SetWidth(14).SetFocused(true)
	view := m.View()

	for _, line := range strings.Split(view, "\n") {
		require.LessOrEqual(t, ansi.StringWidth(line), 14, "line %q too wide", line)
	}
	require.True(t, strings.HasPrefix(ansi.Strip(view), "> "))

	unfocused := ansi.Strip(m.SetFocused(false).View())
	require.True(t, strings.HasPrefix(unfocused, "  "))
}
