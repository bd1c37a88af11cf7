package shell

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"projecttracker/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("46"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

func title(out io.Writer, s string) {
	fmt.Fprintln(out, titleStyle.Render(s))
}

func label(out io.Writer, name string, value any) {
	fmt.Fprintf(out, "%s %v\n", labelStyle.Render(name+":"), value)
}

func success(out io.Writer, format string, args ...any) {
	fmt.Fprintln(out, okStyle.Render(fmt.Sprintf(format, args...)))
}

func failure(out io.Writer, err error) {
	fmt.Fprintln(out, errorStyle.Render("error: "+err.Error()))
}

// records renders recs as a table with the id column first.
func records(out io.Writer, c model.Category, recs []model.Record) {
	if len(recs) == 0 {
		fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("no %s records", c)))
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(append([]string{"id"}, model.Columns(c)...)...)
	for _, r := range recs {
		row := []string{strconv.FormatInt(r.Identity(), 10)}
		for _, f := range model.Fields(r) {
			row = append(row, f.Value)
		}
		t.Row(row...)
	}
	fmt.Fprintln(out, t.Render())
}

// rows renders a plain table of precomputed cells.
func rows(out io.Writer, headers []string, cells [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(cells...)
	fmt.Fprintln(out, t.Render())
}
