// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/clonescan/clonescan/internal/analysis"
	"github.com/clonescan/clonescan/internal/config"
	"github.com/clonescan/clonescan/internal/fingerprint"
)

// renderReport writes the report in the requested format.
func renderReport(w io.Writer, report *analysis.Report, format config.OutputFormat) error {
	switch format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(normalizeReport(report))
	case config.FormatTOML:
		enc := toml.NewEncoder(w)
		enc.SetIndentTables(true)
		return enc.Encode(normalizeReport(report))
	case config.FormatText:
		return renderText(w, report)
	default:
		return format.Validate()
	}
}

// normalizeReport replaces nil collections with empty ones so that machine
// formats always carry every key.
func normalizeReport(report *analysis.Report) *analysis.Report {
	out := *report
	if out.Duplicates == nil {
		out.Duplicates = []fingerprint.Duplicate{}
	}
	if out.Failures == nil {
		out.Failures = []analysis.Failure{}
	}
	if out.Unresolved == nil {
		out.Unresolved = []analysis.Unresolved{}
	}
	if out.ExtractionWarnings == nil {
		out.ExtractionWarnings = []analysis.ExtractionWarning{}
	}
	return &out
}

func renderText(w io.Writer, report *analysis.Report) error {
	s := newReportStyles(w)
	var b strings.Builder

	title := "clonescan report"
	if report.Workspace != "" {
		title += ": " + report.Workspace
	}
	b.WriteString(s.title.Render(title))
	b.WriteString("\n")

	if groups := report.DuplicateGroups(); len(groups) > 0 {
		b.WriteString(s.section.Render(fmt.Sprintf("Duplicates (%d)", len(report.Duplicates))))
		b.WriteString("\n")
		for _, g := range groups {
			fmt.Fprintf(&b, "  %s %s\n", s.canonical.Render(g.Canonical), s.digest.Render(g.Digest.String()))
			for _, d := range g.Duplicates {
				fmt.Fprintf(&b, "    = %s\n", s.duplicate.Render(d))
			}
		}
	}

	if len(report.Failures) > 0 {
		b.WriteString(s.section.Render(fmt.Sprintf("Failed modules (%d)", len(report.Failures))))
		b.WriteString("\n")
		for _, f := range report.Failures {
			fmt.Fprintf(&b, "  %s %s: %s\n", s.failure.Render("✗"), f.Module, f.Reason)
		}
	}

	if len(report.Unresolved) > 0 {
		b.WriteString(s.section.Render(fmt.Sprintf("Unresolved references (%d)", len(report.Unresolved))))
		b.WriteString("\n")
		for _, u := range report.Unresolved {
			fmt.Fprintf(&b, "  %s %s -> %s %s: %s\n", s.warning.Render("!"), u.Module, u.Library, u.Version, u.Reason)
			if u.Detail != "" {
				fmt.Fprintf(&b, "      %s\n", s.muted.Render(u.Detail))
			}
		}
	}

	if len(report.ExtractionWarnings) > 0 {
		b.WriteString(s.section.Render(fmt.Sprintf("Extraction warnings (%d)", len(report.ExtractionWarnings))))
		b.WriteString("\n")
		for _, x := range report.ExtractionWarnings {
			fmt.Fprintf(&b, "  %s %s: %s: %s\n", s.warning.Render("!"), x.Module, x.Type, x.Reason)
		}
	}

	st := report.Stats
	b.WriteString(s.section.Render("Summary"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %d/%d modules compiled, %d callables (%d without body), %d unique bodies\n",
		st.Compiled, st.Modules, st.Callables, st.Absent, st.Unique)
	if report.HasDuplicates() {
		fmt.Fprintf(&b, "  %s\n", s.duplicate.Render(fmt.Sprintf("%d duplicate callables", st.Duplicates)))
	} else {
		fmt.Fprintf(&b, "  %s\n", s.success.Render("✓ No duplicate callables found"))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
