package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme bundles palette + symbols + box border.
type Theme struct {
	Name                                          string
	Title, Muted, Accent, Success, Error, Pending lipgloss.TerminalColor
	BoxUnchecked, BoxChecked                      string
	SymDone, SymPending                           string
	Border                                        lipgloss.Border
	Bar, BarEmpty                                 string
}

var themes = map[string]Theme{
	"classic": {
		Name:  "classic",
		Title: lipgloss.NoColor{}, Muted: lipgloss.Color("8"), Accent: lipgloss.Color("12"),
		Success: lipgloss.Color("42"), Error: lipgloss.Color("9"), Pending: lipgloss.Color("214"),
		BoxUnchecked: "☐", BoxChecked: "☑",
		SymDone: "✔", SymPending: "•",
		Border: lipgloss.RoundedBorder(),
		Bar:    "█", BarEmpty: "░",
	},
	"neon": {
		Name:  "neon",
		Title: lipgloss.Color("13"), Muted: lipgloss.Color("8"), Accent: lipgloss.Color("14"),
		Success: lipgloss.Color("10"), Error: lipgloss.Color("9"), Pending: lipgloss.Color("11"),
		BoxUnchecked: "◻", BoxChecked: "◼",
		SymDone: "✔", SymPending: "•",
		Border: lipgloss.ThickBorder(),
		Bar:    "█", BarEmpty: "░",
	},
	"mono": {
		Name:  "mono",
		Title: lipgloss.NoColor{}, Muted: lipgloss.NoColor{}, Accent: lipgloss.NoColor{},
		Success: lipgloss.NoColor{}, Error: lipgloss.NoColor{}, Pending: lipgloss.NoColor{},
		BoxUnchecked: "[ ]", BoxChecked: "[x]",
		SymDone: "x", SymPending: "-",
		Border: lipgloss.ASCIIBorder(),
		Bar:    "#", BarEmpty: ".",
	},
}

// ThemeNames lists the accepted theme names.
func ThemeNames() []string { return []string{"classic", "neon", "mono"} }

// LookupTheme resolves a theme by name, case-insensitively.
func LookupTheme(name string) (Theme, error) {
	t, ok := themes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Theme{}, fmt.Errorf("unknown theme %q (want one of %s)", name, strings.Join(ThemeNames(), ", "))
	}
	return t, nil
}

// Styles are the lipgloss styles derived from a theme.
type Styles struct {
	Title, Success, Pending, Accent, Muted, Error lipgloss.Style
	Selected, Done, Help                          lipgloss.Style
	Panel                                         lipgloss.Style
}

// Styles renders for the process's stdout.
func (t Theme) Styles() Styles { return t.styles(lipgloss.DefaultRenderer()) }

// StylesFor renders for w: plain text unless w is a color terminal.
func (t Theme) StylesFor(w io.Writer) Styles { return t.styles(lipgloss.NewRenderer(w)) }

func (t Theme) styles(r *lipgloss.Renderer) Styles {
	return Styles{
		Title:    r.NewStyle().Bold(true).Foreground(t.Title),
		Success:  r.NewStyle().Foreground(t.Success),
		Pending:  r.NewStyle().Foreground(t.Pending),
		Accent:   r.NewStyle().Foreground(t.Accent),
		Muted:    r.NewStyle().Faint(true).Foreground(t.Muted),
		Error:    r.NewStyle().Bold(true).Foreground(t.Error),
		Selected: r.NewStyle().Bold(true).Reverse(true),
		Done:     r.NewStyle().Faint(true).Strikethrough(true),
		Help:     r.NewStyle().Faint(true),
		Panel: r.NewStyle().
			Border(t.Border).
			BorderForeground(t.Muted).
			Padding(0, 1),
	}
}
