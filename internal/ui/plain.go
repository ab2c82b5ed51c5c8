package ui

import (
	"fmt"
	"io"

	"github.com/Makepad-fr/tasklist/internal/model"
)

// Row is a task with the 1-based position it has in the full listing.
type Row struct {
	N    int
	Task model.Task
}

// Rows numbers tasks 1..n.
func Rows(tasks []model.Task) []Row {
	rows := make([]Row, len(tasks))
	for i, t := range tasks {
		rows[i] = Row{N: i + 1, Task: t}
	}
	return rows
}

// PrintList writes tasks as numbered lines. Numbers are 1-based positions in
// tasks, so they stay valid for done/rm/edit even when grouped.
func PrintList(w io.Writer, theme Theme, tasks []model.Task, group bool) {
	if !group {
		PrintRows(w, theme, Rows(tasks))
		return
	}
	st := theme.StylesFor(w)
	if len(tasks) == 0 {
		fmt.Fprintln(w, st.Muted.Render("no tasks"))
		return
	}

	var pending, done []string
	for _, r := range Rows(tasks) {
		if r.Task.Completed {
			done = append(done, line(theme, st, r))
		} else {
			pending = append(pending, line(theme, st, r))
		}
	}
	lines := []string{header(theme, st, tasks), theme.ProgressBar(len(done), len(tasks), 28), ""}
	if len(pending) > 0 {
		lines = append(lines, st.Pending.Render("Pending"))
		lines = append(lines, pending...)
	}
	if len(done) > 0 {
		if len(pending) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, st.Success.Render("Done"))
		lines = append(lines, done...)
	}
	fmt.Fprintln(w, st.Frame(lines))
}

// PrintRows writes one line per row, keeping the row's own number.
func PrintRows(w io.Writer, theme Theme, rows []Row) {
	st := theme.StylesFor(w)
	if len(rows) == 0 {
		fmt.Fprintln(w, st.Muted.Render("no tasks"))
		return
	}
	for _, r := range rows {
		fmt.Fprintln(w, line(theme, st, r))
	}
}

func line(theme Theme, st Styles, r Row) string {
	box, title := st.Muted.Render(theme.BoxUnchecked), r.Task.Title
	if r.Task.Completed {
		box, title = st.Success.Render(theme.BoxChecked), st.Done.Render(r.Task.Title)
	}
	return fmt.Sprintf("%3d. %s %s  %s", r.N, box, title, st.Muted.Render(r.Task.FormattedDate()))
}

// PrintTask writes one task with its content.
func PrintTask(w io.Writer, theme Theme, t model.Task) {
	st := theme.StylesFor(w)
	state := st.Pending.Render("pending")
	if t.Completed {
		state = st.Success.Render("completed")
	}
	fmt.Fprintln(w, st.Frame([]string{
		st.Title.Render(t.Title),
		st.Muted.Render(t.FormattedDate()) + "  " + state,
		"",
		t.Content,
	}))
}
