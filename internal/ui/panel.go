package ui

import (
	"fmt"
	"io"
	"strings"
)

// ProgressBar renders a bar with percentage using the theme's glyphs.
func (t Theme) ProgressBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 5 {
		width = 5
	}
	filled := int(float64(done) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	bar := strings.Repeat(t.Bar, filled) + strings.Repeat(t.BarEmpty, width-filled)
	pct := int(float64(done) / float64(total) * 100)
	return fmt.Sprintf("%s %3d%%", bar, pct)
}

// Frame draws lines inside the theme border.
func (s Styles) Frame(lines []string) string {
	return s.Panel.Render(strings.Join(lines, "\n"))
}

// OK prints a success line.
func (s Styles) OK(w io.Writer, msg string) {
	fmt.Fprintln(w, s.Success.Render("✔ "+msg))
}

// Fail prints a failure line.
func (s Styles) Fail(w io.Writer, msg string) {
	fmt.Fprintln(w, s.Error.Render("✖ "+msg))
}
