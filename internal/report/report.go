// Package report renders the outcome of a pipeline run.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/district-etl/internal/clean"
	"github.com/sells-group/district-etl/internal/export"
	"github.com/sells-group/district-etl/internal/merge"
	"github.com/sells-group/district-etl/internal/summary"
)

// Format is a report rendering.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a configured report format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatJSON, FormatYAML:
		return Format(s), nil
	case "":
		return FormatText, nil
	}
	return "", eris.Errorf("report: unknown format %q", s)
}

// Input is one loaded source file.
type Input struct {
	Source string `json:"source" yaml:"source"`
	Path   string `json:"path" yaml:"path"`
}

// Report describes one run.
type Report struct {
	RunID      string              `json:"run_id" yaml:"run_id"`
	StartedAt  time.Time           `json:"started_at" yaml:"started_at"`
	DurationMs int64               `json:"duration_ms" yaml:"duration_ms"`
	Inputs     []Input             `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Sources    []clean.Stats       `json:"sources,omitempty" yaml:"sources,omitempty"`
	Merge      *merge.Report       `json:"merge,omitempty" yaml:"merge,omitempty"`
	Summary    *summary.Summary    `json:"summary,omitempty" yaml:"summary,omitempty"`
	Output     string              `json:"output,omitempty" yaml:"output,omitempty"`
	Encoding   export.Encoding     `json:"encoding,omitempty" yaml:"encoding,omitempty"`
	Sinks      []export.SinkResult `json:"sinks,omitempty" yaml:"sinks,omitempty"`
}

// Render writes r to w in the given format.
func Render(w io.Writer, r *Report, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(r), "report: encode json")
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return eris.Wrap(err, "report: encode yaml")
		}
		return eris.Wrap(enc.Close(), "report: encode yaml")
	case FormatText:
		_, err := io.WriteString(w, FormatTextReport(r))
		return eris.Wrap(err, "report: write text")
	}
	return eris.Errorf("report: unknown format %q", f)
}

// FormatTextReport renders r for a terminal.
func FormatTextReport(r *Report) string {
	var b strings.Builder

	if r.RunID != "" {
		fmt.Fprintf(&b, "# District ETL Run %s\n", r.RunID)
		fmt.Fprintf(&b, "Duration: %dms\n\n", r.DurationMs)
	}

	if len(r.Inputs) > 0 {
		b.WriteString("## Inputs\n")
		for _, in := range r.Inputs {
			fmt.Fprintf(&b, "- %s: %s\n", in.Source, in.Path)
		}
		b.WriteString("\n")
	}

	if len(r.Sources) > 0 {
		b.WriteString("## Sources\n")
		rows := [][]string{{"source", "read", "kept", "dropped", "malformed"}}
		for _, s := range r.Sources {
			rows = append(rows, []string{
				s.Source,
				humanize.Comma(int64(s.RowsRead)),
				humanize.Comma(int64(s.RowsKept)),
				formatDrops(s.Dropped),
				humanize.Comma(int64(s.MalformedCells)),
			})
		}
		writeTable(&b, rows)
		for _, s := range r.Sources {
			for _, m := range s.Metrics {
				fmt.Fprintf(&b, "- %s %s: %s", s.Source, m.Name, formatNumber(m.Value))
				if m.Label != "" {
					fmt.Fprintf(&b, " (%s)", m.Label)
				}
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}

	if m := r.Merge; m != nil {
		b.WriteString("## Merge\n")
		rows := [][]string{{"join", "kind", "left", "right", "matched", "result"}}
		for _, j := range m.Joins {
			rows = append(rows, []string{
				j.Right, string(j.Kind),
				humanize.Comma(int64(j.LeftRows)),
				humanize.Comma(int64(j.RightRows)),
				humanize.Comma(int64(j.Matched)),
				humanize.Comma(int64(j.ResultRows)),
			})
		}
		writeTable(&b, rows)
		fmt.Fprintf(&b, "Final table: %d rows x %d columns\n", m.Rows, m.Columns)

		if len(m.Excluded) > 0 {
			b.WriteString("Excluded districts:\n")
			for _, e := range m.Excluded {
				fmt.Fprintf(&b, "- %s: %s votes (%.3f%%)\n", e.District, formatNumber(e.TotalVotes), e.SharePct)
			}
		}
		if len(m.UnexpectedExclusions) > 0 {
			fmt.Fprintf(&b, "WARNING: unexpected exclusions: %s\n", strings.Join(m.UnexpectedExclusions, ", "))
		}
		if len(m.UnexcludedExpected) > 0 {
			fmt.Fprintf(&b, "WARNING: expected exclusions still present: %s\n", strings.Join(m.UnexcludedExpected, ", "))
		}
		if len(m.RevenueUnmatched) > 0 {
			fmt.Fprintf(&b, "WARNING: revenue districts without votes: %s\n", strings.Join(m.RevenueUnmatched, ", "))
		}
		if len(m.Missing) > 0 {
			b.WriteString("Missing values:\n")
			for _, c := range m.Missing {
				fmt.Fprintf(&b, "- %s: %d\n", c.Column, c.Count)
			}
		}
		b.WriteString("\n")
	}

	if s := r.Summary; s != nil {
		b.WriteString(FormatSummary(s))
		b.WriteString("\n")
	}

	if r.Output != "" {
		b.WriteString("## Outputs\n")
		fmt.Fprintf(&b, "- csv: %s (%s)\n", r.Output, r.Encoding)
		for _, s := range r.Sinks {
			fmt.Fprintf(&b, "- %s: %s (%s rows)\n", s.Sink, s.Target, humanize.Comma(s.Rows))
		}
	}

	return b.String()
}

// FormatSummary renders the summary section alone.
func FormatSummary(s *summary.Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Summary (%d districts)\n", s.Districts)
	rows := [][]string{{"candidate", "districts won"}}
	for _, w := range s.Wins {
		rows = append(rows, []string{w.Candidate, humanize.Comma(int64(w.Districts))})
	}
	writeTable(&b, rows)

	if len(s.Means) > 0 {
		rows = [][]string{{"column", "mean", "n"}}
		for _, m := range s.Means {
			rows = append(rows, []string{m.Column, formatNumber(m.Mean), humanize.Comma(int64(m.N))})
		}
		writeTable(&b, rows)
	}

	if s.IncomeStdDev != nil {
		fmt.Fprintf(&b, "Income std dev: %s\n", formatNumber(*s.IncomeStdDev))
	}
	return b.String()
}

// writeTable writes rows as left-aligned columns sized by display width so
// CJK district names line up.
func writeTable(b *strings.Builder, rows [][]string) {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	for _, row := range rows {
		var line strings.Builder
		for i, cell := range row {
			if i > 0 {
				line.WriteString("  ")
			}
			if i == len(row)-1 {
				line.WriteString(cell)
				continue
			}
			line.WriteString(runewidth.FillRight(cell, widths[i]))
		}
		b.WriteString(line.String())
		b.WriteString("\n")
	}
}

func formatDrops(d map[clean.DropReason]int) string {
	if len(d) == 0 {
		return "0"
	}
	reasons := make([]string, 0, len(d))
	for r := range d {
		reasons = append(reasons, string(r))
	}
	sort.Strings(reasons)

	parts := make([]string, len(reasons))
	for i, r := range reasons {
		parts[i] = fmt.Sprintf("%s=%d", r, d[clean.DropReason(r)])
	}
	return strings.Join(parts, " ")
}

// formatNumber prints integers with thousands separators and everything
// else with two decimals.
func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return humanize.Comma(int64(f))
	}
	return humanize.CommafWithDigits(math.Round(f*100)/100, 2)
}
