package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kurahaupo/libxstr/diag"
	"github.com/kurahaupo/libxstr/internal/scenario"
)

type styles struct {
	title      lipgloss.Style
	checkpoint lipgloss.Style
	op         lipgloss.Style
	fatal      lipgloss.Style
	stats      lipgloss.Style
	site       lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{title: plain, checkpoint: plain, op: plain, fatal: plain, stats: plain, site: plain}
	}
	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1),
		checkpoint: lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")),
		op:         lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98")),
		fatal:      lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
		stats:      lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
		site:       lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
	}
}

func (st styles) header(res *scenario.Result, backend string) string {
	return st.title.Render(res.Name) + " on " + backend
}

// lines renders each record of res as one line.
func (st styles) lines(res *scenario.Result) []string {
	out := make([]string, 0, len(res.Records))
	for _, r := range res.Records {
		line := scenario.Describe(r)
		if r.Op == scenario.Checkpoint {
			out = append(out, st.checkpoint.Render(line))
			continue
		}
		if r.Site != "" {
			line = st.site.Render(r.Site) + " " + st.op.Render(line)
		} else {
			line = st.op.Render(line)
		}
		out = append(out, "  "+line)
	}
	return out
}

func (st styles) footer(res *scenario.Result) string {
	var b strings.Builder
	if res.Fatal != nil {
		b.WriteString(st.fatal.Render(diag.FatalLine(res.Fatal)))
		b.WriteByte('\n')
	}
	s := res.Stats
	b.WriteString(st.stats.Render(fmt.Sprintf(
		"allocs=%d frees=%d failures=%d live=%d peak=%dB",
		s.Allocs, s.Frees, s.Failures, s.LiveBlocks, s.PeakBytes)))
	return b.String()
}

func (st styles) render(res *scenario.Result, backend string) string {
	var b strings.Builder
	b.WriteString(st.header(res, backend))
	b.WriteByte('\n')
	for _, l := range st.lines(res) {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	b.WriteString(st.footer(res))
	b.WriteByte('\n')
	return b.String()
}
