package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mesh-intelligence/forage/pkg/types"
)

var (
	green = lipgloss.Color("#00C832")
	muted = lipgloss.Color("#6C6C6C")
)

// tableColumns are the headers printed by renderTable.
var tableColumns = []string{"ID", "NAME", "ADDRESS", "SEASON", "NOTES"}

func seasonLabel(inSeason bool) string {
	if inSeason {
		return "in season"
	}
	return "-"
}

// renderTable writes fs as aligned columns. Colors apply only when w is a
// terminal.
func renderTable(w io.Writer, fs []types.Forageable) {
	r := lipgloss.NewRenderer(w)
	header := r.NewStyle().Bold(true)
	inSeason := r.NewStyle().Foreground(green)
	dim := r.NewStyle().Foreground(muted)

	if len(fs) == 0 {
		fmt.Fprintln(w, dim.Render("no forageables"))
		return
	}

	rows := make([][]string, 0, len(fs))
	for _, f := range fs {
		rows = append(rows, []string{
			strconv.FormatInt(f.ID, 10),
			f.Name,
			f.Address,
			seasonLabel(f.InSeason),
			f.Notes,
		})
	}

	widths := make([]int, len(tableColumns))
	for i, c := range tableColumns {
		widths[i] = lipgloss.Width(c)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	line := func(cells []string, style func(col int, cell string) lipgloss.Style) string {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			s := style(i, cell).Width(widths[i])
			if i < len(cells)-1 {
				s = s.PaddingRight(2).Width(widths[i] + 2)
			}
			parts[i] = s.Render(cell)
		}
		return strings.TrimRight(lipgloss.JoinHorizontal(lipgloss.Top, parts...), " ")
	}

	fmt.Fprintln(w, line(tableColumns, func(int, string) lipgloss.Style { return header }))
	for i, row := range rows {
		f := fs[i]
		fmt.Fprintln(w, line(row, func(col int, _ string) lipgloss.Style {
			if col == 3 && f.InSeason {
				return inSeason
			}
			return r.NewStyle()
		}))
	}
}

// renderDetail writes one forageable as labelled lines.
func renderDetail(w io.Writer, f types.Forageable) {
	r := lipgloss.NewRenderer(w)
	label := r.NewStyle().Bold(true).Width(10)
	fmt.Fprintln(w, label.Render("ID")+strconv.FormatInt(f.ID, 10))
	fmt.Fprintln(w, label.Render("Name")+f.Name)
	fmt.Fprintln(w, label.Render("Address")+f.Address)
	fmt.Fprintln(w, label.Render("Season")+seasonLabel(f.InSeason))
	if f.Notes != "" {
		fmt.Fprintln(w, label.Render("Notes")+f.Notes)
	}
}
