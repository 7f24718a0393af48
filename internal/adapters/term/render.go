// Package term renders leaderboards, matchup cards, and rank deltas for
// the interactive judge. It works only with data handed to it by the
// engine and holds no ranking or elimination logic. Styling is carried by
// an explicit Renderer value rather than package-level toggles.
package term

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/okian/duelo/internal/domain/model"
)

const probBarWidth = 20

// ResultRow is one line of the winner ordering handed over for display.
type ResultRow struct {
	Path         string
	Elo          float64
	Record       string
	EliminatedAt *time.Time
}

// RankChange describes an entrant's leaderboard movement after a bout.
type RankChange struct {
	Path string
	Old  int
	New  int
}

// Renderer writes styled output for the judge.
type Renderer struct {
	w io.Writer

	title  lipgloss.Style
	label  lipgloss.Style
	good   lipgloss.Style
	bad    lipgloss.Style
	warn   lipgloss.Style
	dim    lipgloss.Style
	barOn  lipgloss.Style
	barOff lipgloss.Style
}

// RendererOption applies a configuration option to the Renderer.
type RendererOption func(*Renderer)

// WithColor enables or disables ANSI styling.
func WithColor(enabled bool) RendererOption {
	return func(r *Renderer) {
		if !enabled {
			plain := lipgloss.NewStyle()
			r.title, r.label, r.good, r.bad, r.warn = plain, plain, plain, plain, plain
			r.dim, r.barOn, r.barOff = plain, plain, plain
		}
	}
}

// NewRenderer builds a Renderer writing to w.
func NewRenderer(w io.Writer, opts ...RendererOption) *Renderer {
	r := &Renderer{
		w:      w,
		title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		label:  lipgloss.NewStyle().Bold(true),
		good:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		bad:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		warn:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		dim:    lipgloss.NewStyle().Faint(true),
		barOn:  lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		barOff: lipgloss.NewStyle().Faint(true),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Welcome prints the mode banner.
func (r *Renderer) Welcome(knockout bool) {
	if knockout {
		fmt.Fprintln(r.w, r.title.Render("Knockout mode: losers are eliminated until one winner remains."))
	} else {
		fmt.Fprintln(r.w, r.title.Render("Ladder mode: ratings evolve indefinitely."))
	}
	fmt.Fprintln(r.w)
}

// Matchup prints the bout card for A vs B.
func (r *Renderer) Matchup(a, b model.Entrant, rankA, rankB int, probA float64) {
	fmt.Fprintf(r.w, "%s  %s\n", r.label.Render("[A]"), display(a.Path))
	fmt.Fprintf(r.w, "     elo %.0f  rank #%d  %s\n", a.Elo, rankA, r.dim.Render(a.Record()))
	fmt.Fprintf(r.w, "%s  %s\n", r.label.Render("[B]"), display(b.Path))
	fmt.Fprintf(r.w, "     elo %.0f  rank #%d  %s\n", b.Elo, rankB, r.dim.Render(b.Record()))
	fmt.Fprintf(r.w, "     %s %s\n\n", r.probBar(probA), r.dim.Render(favorite(probA)))
}

// probBar renders the A-side win probability as a fixed-width bar.
func (r *Renderer) probBar(probA float64) string {
	on := int(probA*probBarWidth + 0.5)
	if on < 0 {
		on = 0
	}
	if on > probBarWidth {
		on = probBarWidth
	}
	return r.barOn.Render(strings.Repeat("█", on)) +
		r.barOff.Render(strings.Repeat("░", probBarWidth-on))
}

// favorite formats the win probability from the favorite's side, always
// at least 50%.
func favorite(probA float64) string {
	if probA >= 0.5 {
		return fmt.Sprintf("%.0f%% A", probA*100)
	}
	return fmt.Sprintf("%.0f%% B", (1-probA)*100)
}

// Leaderboard prints entries in the order given.
func (r *Renderer) Leaderboard(entries []model.Entrant) {
	fmt.Fprintln(r.w, r.title.Render("Leaderboard"))
	for i, e := range entries {
		fmt.Fprintf(r.w, "%3d. %-40s %6.0f  %s\n", i+1, display(e.Path), e.Elo, r.dim.Render(e.Record()))
	}
	fmt.Fprintln(r.w)
}

// RankChanges prints movement arrows for the bout participants.
func (r *Renderer) RankChanges(changes []RankChange) {
	for _, c := range changes {
		switch {
		case c.New < c.Old:
			fmt.Fprintf(r.w, "  %s %s  #%d -> #%d\n", r.good.Render("▲"), display(c.Path), c.Old, c.New)
		case c.New > c.Old:
			fmt.Fprintf(r.w, "  %s %s  #%d -> #%d\n", r.bad.Render("▼"), display(c.Path), c.Old, c.New)
		default:
			fmt.Fprintf(r.w, "  %s %s  #%d\n", r.dim.Render("="), display(c.Path), c.New)
		}
	}
	fmt.Fprintln(r.w)
}

// WinnerScreen prints the completed-tournament ordering, winner first.
func (r *Renderer) WinnerScreen(rows []ResultRow) {
	fmt.Fprintln(r.w, r.title.Render(strings.Repeat("=", 24)+" KNOCKOUT COMPLETE "+strings.Repeat("=", 24)))
	for i, row := range rows {
		at := r.good.Render("Winner")
		if row.EliminatedAt != nil {
			at = r.dim.Render("out " + row.EliminatedAt.Format(time.DateTime))
		}
		fmt.Fprintf(r.w, "%3d. %-40s %6.0f  %-12s %s\n", i+1, display(row.Path), row.Elo, row.Record, at)
	}
	fmt.Fprintln(r.w)
}

// Remaining prints the number of still-active entrants.
func (r *Renderer) Remaining(n int) {
	fmt.Fprintf(r.w, "Players remaining: %d\n\n", n)
}

// Successf prints a highlighted positive message.
func (r *Renderer) Successf(format string, args ...any) {
	fmt.Fprintln(r.w, r.good.Render(fmt.Sprintf(format, args...)))
}

// Warnf prints a highlighted warning message.
func (r *Renderer) Warnf(format string, args ...any) {
	fmt.Fprintln(r.w, r.warn.Render(fmt.Sprintf(format, args...)))
}

// Infof prints a plain message.
func (r *Renderer) Infof(format string, args ...any) {
	fmt.Fprintf(r.w, format+"\n", args...)
}

// display trims the extension for compact listings, keeping multi-dot
// names readable ("file.tar.gz" -> "file.tar").
func display(path string) string {
	if i := strings.LastIndex(path, "."); i > 0 {
		return path[:i]
	}
	return path
}
