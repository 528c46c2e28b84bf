// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Color palette - shared hex colors for consistent theming across all CLI output.
// These colors are designed for dark terminal backgrounds with good contrast.
const (
	// ColorPrimary is purple - used for titles and headers.
	ColorPrimary = lipgloss.Color("#7C3AED")

	// ColorMuted is gray - used for subtitles and de-emphasized content.
	ColorMuted = lipgloss.Color("#6B7280")

	// ColorSuccess is green - used for clean results and positive outcomes.
	ColorSuccess = lipgloss.Color("#10B981")

	// ColorError is red - used for errors and failed modules.
	ColorError = lipgloss.Color("#EF4444")

	// ColorWarning is amber - used for warnings and duplicates.
	ColorWarning = lipgloss.Color("#F59E0B")

	// ColorHighlight is blue - used for callable names, paths, and commands.
	ColorHighlight = lipgloss.Color("#3B82F6")
)

// Base styles - reusable lipgloss styles built from the color palette.
var (
	// TitleStyle is for primary headers and section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary headers and descriptions.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle is for success messages and positive indicators.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle is for error messages and failure indicators.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle is for warning messages and caution indicators.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// CmdStyle is for command names, paths, and callable names.
	CmdStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)
)

// reportStyles are the styles of the text report. They are bound to the
// report's writer so that a file destination gets no color sequences.
type reportStyles struct {
	title     lipgloss.Style
	section   lipgloss.Style
	canonical lipgloss.Style
	duplicate lipgloss.Style
	digest    lipgloss.Style
	failure   lipgloss.Style
	warning   lipgloss.Style
	success   lipgloss.Style
	muted     lipgloss.Style
}

func newReportStyles(w io.Writer) reportStyles {
	r := lipgloss.NewRenderer(w)
	return reportStyles{
		title:     r.NewStyle().Bold(true).Foreground(ColorPrimary),
		section:   r.NewStyle().Bold(true).Foreground(ColorMuted).MarginTop(1),
		canonical: r.NewStyle().Bold(true).Foreground(ColorHighlight),
		duplicate: r.NewStyle().Foreground(ColorWarning),
		digest:    r.NewStyle().Foreground(ColorMuted),
		failure:   r.NewStyle().Foreground(ColorError),
		warning:   r.NewStyle().Foreground(ColorWarning),
		success:   r.NewStyle().Foreground(ColorSuccess),
		muted:     r.NewStyle().Foreground(ColorMuted),
	}
}
