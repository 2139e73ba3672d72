// Package styles contains Lip Gloss style definitions.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/cutoff/internal/livelabel"
)

var (
	// Semantic color names - Text hierarchy
	TextPrimaryColor     = lipgloss.AdaptiveColor{Light: "#1F1F1F", Dark: "#CCCCCC"} // Main/primary text
	TextSecondaryColor   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"} // Label names
	TextMutedColor       = lipgloss.AdaptiveColor{Light: "#8C8C8C", Dark: "#696969"} // Hints, absolute dates
	TextPlaceholderColor = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#777777"} // Invalid cut-off placeholder

	// Semantic color names - Border
	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"}

	// Semantic color names - Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	// Selection indicator color (used for ">" prefix in lists)
	SelectionIndicatorColor = lipgloss.AdaptiveColor{Light: "#1F1F1F", Dark: "#FFFFFF"}

	// Selection indicator style (used for ">" prefix on the focused label)
	SelectionIndicatorStyle = lipgloss.NewStyle().Bold(true).Foreground(SelectionIndicatorColor)

	// Label parts
	LabelNameStyle     = lipgloss.NewStyle().Bold(true).Foreground(TextSecondaryColor)
	AbsoluteDateStyle  = lipgloss.NewStyle().Foreground(TextMutedColor)
	PlaceholderStyle   = lipgloss.NewStyle().Foreground(TextPlaceholderColor).Italic(true)
	InvalidCutoffStyle = lipgloss.NewStyle().Foreground(StatusErrorColor)

	// Urgency levels
	UrgencyNormalStyle  = lipgloss.NewStyle().Foreground(TextPrimaryColor)
	UrgencyNoticeStyle  = lipgloss.NewStyle().Foreground(StatusWarningColor)
	UrgencyWarningStyle = lipgloss.NewStyle().Foreground(StatusErrorColor).Bold(true)
	UrgencyExpiredStyle = lipgloss.NewStyle().Foreground(TextMutedColor).Strikethrough(true)

	// Board chrome
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextPrimaryColor).
			PaddingLeft(1)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderDefaultColor).
			Padding(0, 1)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMutedColor).
			Padding(0, 1)

	// Error display
	ErrorStyle = lipgloss.NewStyle().
			Foreground(StatusErrorColor).
			Bold(true).
			Padding(0, 1)
)

// UrgencyStyle returns the style for rendering a label at urgency u.
func UrgencyStyle(u livelabel.Urgency) lipgloss.Style {
	switch u {
	case livelabel.UrgencyNotice:
		return UrgencyNoticeStyle
	case livelabel.UrgencyWarning:
		return UrgencyWarningStyle
	case livelabel.UrgencyExpired:
		return UrgencyExpiredStyle
	default:
		return UrgencyNormalStyle
	}
}

// ApplyTheme overrides colors from configuration, named by the urgency they
// paint. Empty strings are ignored, keeping the default values.
func ApplyTheme(muted, notice, warning string) {
	if muted != "" {
		TextMutedColor = lipgloss.AdaptiveColor{Light: muted, Dark: muted}
		BorderDefaultColor = lipgloss.AdaptiveColor{Light: muted, Dark: muted}
		AbsoluteDateStyle = AbsoluteDateStyle.Foreground(TextMutedColor)
		UrgencyExpiredStyle = UrgencyExpiredStyle.Foreground(TextMutedColor)
		PanelStyle = PanelStyle.BorderForeground(BorderDefaultColor)
		StatusBarStyle = StatusBarStyle.Foreground(TextMutedColor)
	}
	if notice != "" {
		StatusWarningColor = lipgloss.AdaptiveColor{Light: notice, Dark: notice}
		UrgencyNoticeStyle = UrgencyNoticeStyle.Foreground(StatusWarningColor)
	}
	if warning != "" {
		StatusErrorColor = lipgloss.AdaptiveColor{Light: warning, Dark: warning}
		UrgencyWarningStyle = UrgencyWarningStyle.Foreground(StatusErrorColor)
		InvalidCutoffStyle = InvalidCutoffStyle.Foreground(StatusErrorColor)
		ErrorStyle = ErrorStyle.Foreground(StatusErrorColor)
	}
}
