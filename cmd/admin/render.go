package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	scoringservice "github.com/Black-And-White-Club/advent-board/app/modules/scoring/application"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const (
	minNameWidth = 8
	maxNameWidth = 32
	// Pos, Score, Stars, G, S, B plus separators.
	fixedWidth = 4 + 7 + 6 + 4 + 4 + 4 + 6
)

// theme holds the table styles. The zero theme renders plain text.
type theme struct {
	header lipgloss.Style
	title  lipgloss.Style
	muted  lipgloss.Style
	medals [3]lipgloss.Style
}

func newTheme(color bool) theme {
	if !color {
		plain := lipgloss.NewStyle()
		return theme{header: plain, title: plain, muted: plain, medals: [3]lipgloss.Style{plain, plain, plain}}
	}
	return theme{
		header: lipgloss.NewStyle().Bold(true).Underline(true),
		title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00CC00")),
		muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("#777777")),
		medals: [3]lipgloss.Style{
			lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true),
			lipgloss.NewStyle().Foreground(lipgloss.Color("#C0C0C0")),
			lipgloss.NewStyle().Foreground(lipgloss.Color("#CD7F32")),
		},
	}
}

// isTTYWriter reports whether w is a terminal.
func isTTYWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// termWidth returns the terminal width for w, defaulting to 80.
func termWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if tw, _, err := term.GetSize(int(f.Fd())); err == nil && tw > 0 {
			return tw
		}
	}
	return 80
}

// cell truncates s to width display columns and pads it on the right.
func cell(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}

// rcell right-aligns s in width display columns.
func rcell(s string, width int) string {
	return runewidth.FillLeft(runewidth.Truncate(s, width, ""), width)
}

func nameWidth(total int) int {
	return min(max(total-fixedWidth, minNameWidth), maxNameWidth)
}

// RenderStandings writes the year standings as an aligned table.
func RenderStandings(w io.Writer, title string, standings []scoringservice.Standing, width int, color bool) {
	th := newTheme(color)
	nw := nameWidth(width)

	fmt.Fprintln(w, th.title.Render(title))
	header := strings.Join([]string{
		rcell("#", 4), cell("Name", nw), rcell("Score", 7), rcell("Stars", 6),
		rcell("G", 4), rcell("S", 4), rcell("B", 4),
	}, " ")
	fmt.Fprintln(w, th.header.Render(header))

	if len(standings) == 0 {
		fmt.Fprintln(w, th.muted.Render("no users"))
		return
	}

	for _, s := range standings {
		row := strings.Join([]string{
			rcell(strconv.Itoa(s.Position), 4),
			cell(s.Name, nw),
			rcell(strconv.Itoa(s.Score), 7),
			rcell(strconv.Itoa(s.Stars), 6),
			rcell(strconv.Itoa(s.Golds), 4),
			rcell(strconv.Itoa(s.Silvers), 4),
			rcell(strconv.Itoa(s.Bronzes), 4),
		}, " ")
		if s.Stars == 0 {
			row = th.muted.Render(row)
		}
		fmt.Fprintln(w, row)
	}
}

// RenderDay writes one day's entries. Ranked entries are medal-colored.
func RenderDay(w io.Writer, title string, entries []scoringservice.DayEntry, width int, color bool) {
	th := newTheme(color)
	nw := nameWidth(width)

	fmt.Fprintln(w, th.title.Render(title))
	header := strings.Join([]string{
		rcell("#", 4), cell("Name", nw), rcell("Star", 4), rcell("Time", 12),
	}, " ")
	fmt.Fprintln(w, th.header.Render(header))

	if len(entries) == 0 {
		fmt.Fprintln(w, th.muted.Render("no completions"))
		return
	}

	for _, e := range entries {
		rank := "-"
		if e.Rank >= 0 {
			rank = strconv.Itoa(e.Rank + 1)
		}
		row := strings.Join([]string{
			rcell(rank, 4),
			cell(e.Name, nw),
			rcell(strconv.Itoa(e.Star), 4),
			rcell(scoringservice.FormatDuration(e.Duration), 12),
		}, " ")
		if e.Rank >= 0 && e.Rank < len(th.medals) {
			row = th.medals[e.Rank].Render(row)
		}
		fmt.Fprintln(w, row)
	}
}
