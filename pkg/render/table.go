// Package render draws the results table and run summary on the terminal.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/ts"

	"github.com/domainsweep/domainsweep/pkg/candidate"
	"github.com/domainsweep/domainsweep/pkg/checker"
)

var (
	headerStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	availableStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	unknownStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	registeredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func statusStyle(status checker.Status) lipgloss.Style {
	switch status {
	case checker.StatusAvailable:
		return availableStyle
	case checker.StatusRegistered:
		return registeredStyle
	default:
		return unknownStyle
	}
}

// Summary tallies results by status.
type Summary struct {
	Total      int
	Available  int
	Unknown    int
	Registered int
}

// Summarize counts results per status.
func Summarize(results []checker.Result) Summary {
	s := Summary{Total: len(results)}
	for _, result := range results {
		switch result.Status {
		case checker.StatusAvailable:
			s.Available++
		case checker.StatusRegistered:
			s.Registered++
		default:
			s.Unknown++
		}
	}
	return s
}

// Table writes the sorted results table followed by a summary line. Type and
// visual-reading columns appear only when the candidate set contains domain
// hacks.
func Table(w io.Writer, results []checker.Result, meta map[string]candidate.Candidate) {
	sorted := make([]checker.Result, len(results))
	copy(sorted, results)
	checker.SortResults(sorted)

	hasHacks := false
	for _, c := range meta {
		if c.Kind == candidate.KindHack {
			hasHacks = true
			break
		}
	}

	headers := []string{"Domain", "Status", "Method"}
	if hasHacks {
		headers = append(headers, "Type", "Visual")
	}

	rows := make([][]string, 0, len(sorted))
	for _, result := range sorted {
		row := []string{result.Domain, result.Status.String(), string(result.Method)}
		if hasHacks {
			c := meta[result.Domain]
			kind := string(c.Kind)
			if kind == "" {
				kind = string(candidate.KindExact)
			}
			row = append(row, kind, c.Visual)
		}
		rows = append(rows, row)
	}

	widths := columnWidths(headers, rows, terminalWidth())

	var header []string
	for i, h := range headers {
		header = append(header, headerStyle.Render(pad(h, widths[i])))
	}
	fmt.Fprintln(w, strings.Join(header, "  "))
	fmt.Fprintln(w, dimStyle.Render(strings.Repeat("─", totalWidth(widths))))

	for i, result := range sorted {
		style := statusStyle(result.Status)
		cells := []string{
			style.Render(pad(clip(rows[i][0], widths[0]), widths[0])),
			style.Render(pad(rows[i][1], widths[1])),
			pad(rows[i][2], widths[2]),
		}
		for j := 3; j < len(rows[i]); j++ {
			cells = append(cells, dimStyle.Render(pad(clip(rows[i][j], widths[j]), widths[j])))
		}
		fmt.Fprintln(w, strings.Join(cells, "  "))
	}

	s := Summarize(results)
	fmt.Fprintf(w, "\nTotal: %d | %s | %s | %s\n",
		s.Total,
		availableStyle.Render(fmt.Sprintf("Available: %d", s.Available)),
		registeredStyle.Render(fmt.Sprintf("Registered: %d", s.Registered)),
		unknownStyle.Render(fmt.Sprintf("Unknown: %d", s.Unknown)),
	)
}

// terminalWidth returns the terminal width, or 0 when it cannot be measured
// (pipes, tests).
func terminalWidth() int {
	size, err := ts.GetSize()
	if err != nil {
		return 0
	}
	return size.Col()
}

// columnWidths sizes each column to its widest cell, shrinking the first
// column when the table would overflow the terminal.
func columnWidths(headers []string, rows [][]string, limit int) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	if limit > 0 {
		for totalWidth(widths) > limit && widths[0] > len(headers[0]) {
			widths[0]--
		}
	}
	return widths
}

func totalWidth(widths []int) int {
	total := 2 * (len(widths) - 1)
	for _, w := range widths {
		total += w
	}
	return total
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func clip(s string, width int) string {
	if len(s) <= width || width < 1 {
		return s
	}
	if width == 1 {
		return "…"
	}
	return s[:width-1] + "…"
}
