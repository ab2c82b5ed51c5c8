// Package cli is the todo command line: cobra commands over the list presenter.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tasklist/internal/config"
	"github.com/Makepad-fr/tasklist/internal/ui"
)

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	msg  string
	hint string
}

func (e *exitErr) Error() string { return e.msg }

func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

// usage is exit code 2 with a pointer to `todo ls`.
func usage(format string, args ...any) error {
	return &exitErr{code: 2, msg: fmt.Sprintf(format, args...), hint: "Hint: run `todo ls` to see valid indexes"}
}

// Run executes the command line and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if args == nil {
		args = []string{}
	}
	root := newRoot(stdout)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	fail := mustTheme(config.DefaultTheme).StylesFor(stderr)
	var ee *exitErr
	if errors.As(err, &ee) {
		fail.Fail(stderr, ee.msg)
		if ee.hint != "" {
			fmt.Fprintln(stderr, fail.Muted.Render(ee.hint))
		}
		return ee.code
	}
	// flag and argument errors from cobra itself
	fail.Fail(stderr, err.Error())
	fmt.Fprintln(stderr, fail.Muted.Render("Run `todo --help` for usage."))
	return 2
}

func newRoot(stdout io.Writer) *cobra.Command {
	v := config.New()
	root := &cobra.Command{
		Use:   "todo",
		Short: "A small todo list with a terminal UI",
		Long: `todo keeps a list of tasks in a local SQLite database. On first launch the
list is seeded from a remote JSON endpoint.`,
		Example: `  todo add "Buy milk"
  todo ls
  todo done 2
  todo edit 1 --content "two litres"
  todo rm 3`,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Help()
			return codeError(2, "missing subcommand")
		},
	}

	pf := root.PersistentFlags()
	pf.String("data-dir", config.DefaultDataDir, "directory holding the database and settings")
	pf.String("seed-url", config.DefaultSeedURL, "endpoint used to seed the list on first launch")
	pf.Duration("timeout", config.DefaultTimeout, "HTTP timeout for the seed request")
	pf.String("theme", config.DefaultTheme, "color theme: classic, neon or mono")
	pf.String("log-file", "", "append diagnostics to this file")

	root.AddCommand(
		newListCmd(v, stdout),
		newAddCmd(v, stdout),
		newDoneCmd(v, stdout),
		newShowCmd(v, stdout),
		newRemoveCmd(v, stdout),
		newEditCmd(v, stdout),
		newSearchCmd(v, stdout),
	)
	return root
}

// parseIndex validates a 1-based index argument against n tasks.
func parseIndex(arg string, n int) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil {
		return 0, codeError(2, "not a number: %s", arg)
	}
	if i < 1 || i > n {
		return 0, usage("index out of range: have %d, got %d", n, i)
	}
	return i - 1, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func mustTheme(name string) ui.Theme {
	t, err := ui.LookupTheme(name)
	if err != nil {
		panic(err)
	}
	return t
}
