package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"habits/internal/tracker"
)

// barScale converts a bar magnitude to terminal cells.
const barScale = 10

type printer struct {
	w io.Writer
}

func (p printer) Dashboard(d tracker.Dashboard) {
	title := color.New(color.Bold, color.Underline)
	faint := color.New(color.Faint)

	_, _ = fmt.Fprintln(p.w, title.Sprint(string(d.User)))
	_, _ = fmt.Fprintf(p.w, "%s %s\n\n", p.progressBar(d.Progress), faint.Sprintf("%d of %d done (%d%%)", d.Completed, d.Total, d.Progress))
	p.Habits(d.Habits)
	_, _ = fmt.Fprintln(p.w)
	p.History(d.History)
}

func (p printer) Habits(habits []tracker.Habit) {
	if len(habits) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = fmt.Fprintln(p.w, f.Sprint(" no habits yet, add one with `habits add <name>`"))
		return
	}

	bold := color.New(color.Bold)
	done := color.New(color.FgGreen)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("ID"), bold.Sprint(" "), bold.Sprint("Habit"))
	for _, h := range habits {
		mark, name := "[ ]", h.Name
		if h.Completed {
			mark, name = done.Sprint("[x]"), done.Sprint(h.Name)
		}
		tbl.AddRow(h.ID, mark, name)
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(p.w, tbl)
}

func (p printer) History(bars []tracker.Bar) {
	bold := color.New(color.Bold)
	fill := color.New(color.FgCyan)
	faint := color.New(color.Faint)

	_, _ = fmt.Fprintln(p.w, bold.Sprintf("Last %d days", len(bars)))
	tbl := uitable.New()
	tbl.Separator = " "
	for _, b := range bars {
		if b.Label == "" {
			tbl.AddRow(b.Day, faint.Sprint("▏"), "")
			continue
		}
		tbl.AddRow(b.Day, fill.Sprint(strings.Repeat("█", max(b.Width/barScale, 1))), b.Label)
	}
	_, _ = fmt.Fprintln(p.w, tbl)
}

func (p printer) progressBar(percent int) string {
	const width = 20
	n := percent * width / 100
	return "[" + color.GreenString(strings.Repeat("#", n)) + strings.Repeat("-", width-n) + "]"
}

func (p printer) Celebrate() {
	c := color.New(color.FgHiYellow, color.Bold)
	_, _ = fmt.Fprintln(p.w, c.Sprint("*** Every habit done today. Well played! ***"))
}

func (p printer) Line(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}
