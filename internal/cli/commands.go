package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Makepad-fr/tasklist/internal/model"
	"github.com/Makepad-fr/tasklist/internal/presenter"
	"github.com/Makepad-fr/tasklist/internal/ui"
)

func newListCmd(v *viper.Viper, stdout io.Writer) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List tasks (interactive on a terminal)",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !plain && isTerminal(stdout) {
				d := ui.NewDispatcher()
				a, err := openApp(cmd, v, d)
				if err != nil {
					return err
				}
				defer a.Close()
				if err := ui.Run(cmd.Context(), a.list, d, a.theme); err != nil {
					a.log.Errorf("tui: %v", err)
					return codeError(1, "tui: %s", err)
				}
				return nil
			}

			a, err := openApp(cmd, v, presenter.Inline{})
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			ui.PrintList(stdout, a.theme, a.list.Todos(), a.cfg.Group)
			return nil
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print the list instead of opening the interactive view")
	cmd.Flags().Bool("group", false, "group by pending/done with a progress bar")
	return cmd
}

func newAddCmd(v *viper.Viper, stdout io.Writer) *cobra.Command {
	var content string
	cmd := &cobra.Command{
		Use:   "add [title...]",
		Short: "Add a task (a placeholder when no title is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, v, presenter.Inline{})
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()
			if err := a.load(ctx); err != nil {
				return err
			}

			title := strings.TrimSpace(strings.Join(args, " "))
			body := content
			if !cmd.Flags().Changed("content") {
				body = model.DefaultContent
			}
			if title == "" {
				a.list.AddNewItem(ctx)
			} else {
				a.list.AddItem(ctx, model.NewTask(title, body, time.Now()))
			}
			if err := a.failure("add"); err != nil {
				return err
			}
			top, _ := a.list.Todo(0)
			a.theme.StylesFor(stdout).OK(stdout, "added: "+top.Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&content, "content", "", "task details (default: a note prompt)")
	return cmd
}

func newDoneCmd(v *viper.Viper, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "done <index>",
		Short: "Toggle completion of the task at a 1-based index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, i, err := openAt(cmd, v, args[0])
			if err != nil {
				return err
			}
			defer a.Close()

			a.list.ToggleCompleted(cmd.Context(), i)
			if err := a.failure("toggle"); err != nil {
				return err
			}
			t, _ := a.list.Todo(i)
			msg := "reopened: "
			if t.Completed {
				msg = "done: "
			}
			a.theme.StylesFor(stdout).OK(stdout, msg+t.Title)
			return nil
		},
	}
}

func newShowCmd(v *viper.Viper, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "show <index>",
		Short: "Print the task at a 1-based index with its content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, i, err := openAt(cmd, v, args[0])
			if err != nil {
				return err
			}
			defer a.Close()

			t, _ := a.list.Todo(i)
			ui.PrintTask(stdout, a.theme, t)
			return nil
		},
	}
}

func newRemoveCmd(v *viper.Viper, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <index>",
		Aliases: []string{"remove"},
		Short:   "Delete the task at a 1-based index",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, i, err := openAt(cmd, v, args[0])
			if err != nil {
				return err
			}
			defer a.Close()

			t, _ := a.list.Todo(i)
			a.list.DeleteTodo(cmd.Context(), i)
			if err := a.failure("delete"); err != nil {
				return err
			}
			a.theme.StylesFor(stdout).OK(stdout, "removed: "+t.Title)
			return nil
		},
	}
}

func newEditCmd(v *viper.Viper, stdout io.Writer) *cobra.Command {
	var title, content string
	cmd := &cobra.Command{
		Use:   "edit <index>",
		Short: "Change the title or content of a pending task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			titleSet, contentSet := cmd.Flags().Changed("title"), cmd.Flags().Changed("content")
			if !titleSet && !contentSet {
				return codeError(2, "edit: nothing to change (use --title or --content)")
			}
			if titleSet && strings.TrimSpace(title) == "" {
				return codeError(2, "edit: title cannot be empty")
			}

			a, i, err := openAt(cmd, v, args[0])
			if err != nil {
				return err
			}
			defer a.Close()

			d, _ := a.list.Detail(i)
			before := d.Todo()
			newTitle, newContent := before.Title, before.Content
			if titleSet {
				newTitle = strings.TrimSpace(title)
			}
			if contentSet {
				newContent = content
			}
			if err := d.UpdateItem(cmd.Context(), newTitle, newContent); err != nil {
				if errors.Is(err, presenter.ErrCompleted) {
					return codeError(1, "edit: %s", err)
				}
				return runtimeError(err)
			}
			if err := a.failure("edit"); err != nil {
				return err
			}

			st := a.theme.StylesFor(stdout)
			st.OK(stdout, "updated: "+newTitle)
			if newContent != before.Content {
				fmt.Fprintln(stdout, contentDiff(before.Content, newContent, isTerminal(stdout)))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&content, "content", "", "new content")
	return cmd
}

func newSearchCmd(v *viper.Viper, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query...>",
		Short: "List tasks whose title or content contains the query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return codeError(2, "search: empty query")
			}
			a, err := openApp(cmd, v, presenter.Inline{})
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()
			if err := a.load(ctx); err != nil {
				return err
			}

			// keep the numbers of the full listing so they work with done/rm/edit
			pos := make(map[uuid.UUID]int, a.list.Count())
			for i, t := range a.list.Todos() {
				if _, ok := pos[t.ID]; !ok {
					pos[t.ID] = i + 1
				}
			}

			a.list.SearchItems(ctx, query)
			if err := a.failure("search"); err != nil {
				return err
			}
			var rows []ui.Row
			for _, t := range a.list.Todos() {
				rows = append(rows, ui.Row{N: pos[t.ID], Task: t})
			}
			ui.PrintRows(stdout, a.theme, rows)
			return nil
		},
	}
}

// openAt opens the app, loads the list and resolves a 1-based index.
func openAt(cmd *cobra.Command, v *viper.Viper, arg string) (*app, int, error) {
	a, err := openApp(cmd, v, presenter.Inline{})
	if err != nil {
		return nil, 0, err
	}
	if err := a.load(cmd.Context()); err != nil {
		a.Close()
		return nil, 0, err
	}
	i, err := parseIndex(arg, a.list.Count())
	if err != nil {
		a.Close()
		return nil, 0, err
	}
	return a, i, nil
}

// contentDiff renders the change between two texts. Without color, insertions are
// marked {+like this+} and deletions [-like this-].
func contentDiff(before, after string, color bool) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(before, after, false))
	if color {
		return dmp.DiffPrettyText(diffs)
	}
	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			b.WriteString("{+" + d.Text + "+}")
		case diffmatchpatch.DiffDelete:
			b.WriteString("[-" + d.Text + "-]")
		default:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}
