package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tasklist/internal/model"
	"github.com/Makepad-fr/tasklist/internal/presenter"
)

type screen int

const (
	listScreen screen = iota
	detailScreen
)

type loadMsg struct{}

// viewState is what the list presenter sees as its View. The presenter only
// calls it from Main (inside Update), and Update folds it into the model.
type viewState struct {
	dirty       bool
	loading     bool
	clearSearch bool
	err         error
}

func (s *viewState) Refresh(int) {
	s.dirty = true
	s.loading = false
}

func (s *viewState) ShowError(err error) {
	s.err = err
	s.loading = false
}

func (s *viewState) ClearSearch() { s.clearSearch = true }

// listItem adapts a task to bubbles/list.Item
type listItem struct {
	task model.Task
}

func (i listItem) Title() string       { return i.task.Title }
func (i listItem) Description() string { return i.task.FormattedDate() }
func (i listItem) FilterValue() string { return i.task.Title }

// single-line rows: selection marker, check box, title, date
type itemDelegate struct {
	theme  Theme
	styles Styles
}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	box := d.styles.Muted.Render(d.theme.BoxUnchecked)
	text := it.task.Title
	if it.task.Completed {
		box = d.styles.Success.Render(d.theme.BoxChecked)
		text = d.styles.Done.Render(text)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = d.styles.Selected.Render("> ")
	}
	fmt.Fprintf(w, "%s%s %s  %s", prefix, box, text, d.styles.Muted.Render(it.task.FormattedDate()))
}

type keyMap struct {
	Toggle, Add, Open, Delete, Undo, Search, Reload key.Binding
	Confirm, Back, Save, NextField, Quit, ForceQuit key.Binding
}

var keys = keyMap{
	Toggle:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "done")),
	Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	Open:      key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("e", "edit")),
	Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Undo:      key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
	Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Reload:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Confirm:   key.NewBinding(key.WithKeys("enter")),
	Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Save:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
	NextField: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
	Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
}

// Model is the Bubble Tea view over a ListPresenter.
type Model struct {
	ctx    context.Context
	list   *presenter.ListPresenter
	state  *viewState
	theme  Theme
	styles Styles

	items     list.Model
	spinner   spinner.Model
	search    textinput.Model
	searching bool

	screen    screen
	detail    *presenter.DetailPresenter
	title     textinput.Model
	body      textarea.Model
	bodyFocus bool
	detailErr string

	// Undo support (single-level)
	undo *model.Task
}

func NewModel(ctx context.Context, lp *presenter.ListPresenter, theme Theme) Model {
	st := theme.Styles()

	l := list.New(nil, itemDelegate{theme: theme, styles: st}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.Styles.Title = st.Title
	l.Styles.HelpStyle = st.Help
	l.Styles.PaginationStyle = st.Help
	l.SetStatusBarItemName("task", "tasks")
	extra := func() []key.Binding {
		return []key.Binding{keys.Toggle, keys.Add, keys.Open, keys.Delete, keys.Undo, keys.Search}
	}
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra
	l.Title = header(theme, st, nil)

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "Search tasks..."
	search.CharLimit = 200

	title := textinput.New()
	title.Prompt = "> "
	title.Placeholder = "Title"
	title.CharLimit = 200

	body := textarea.New()
	body.Placeholder = "Details..."
	body.ShowLineNumbers = false
	body.CharLimit = 4000

	state := &viewState{loading: true}
	lp.SetView(state)

	m := Model{
		ctx:     ctx,
		list:    lp,
		state:   state,
		theme:   theme,
		styles:  st,
		items:   l,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(st.Accent)),
		search:  search,
		title:   title,
		body:    body,
	}
	m.resize(80, 24)
	return m
}

// Run starts the interactive list and blocks until the user quits.
func Run(ctx context.Context, lp *presenter.ListPresenter, d *Dispatcher, theme Theme) error {
	p := tea.NewProgram(NewModel(ctx, lp, theme), tea.WithAltScreen(), tea.WithContext(ctx))
	d.bind(p)
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, func() tea.Msg { return loadMsg{} })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case loadMsg:
		m.state.loading = true
		m.list.LoadTodos(m.ctx)
	case applyMsg:
		msg.f()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	case tea.KeyMsg:
		var cmd tea.Cmd
		if m.screen == detailScreen {
			m, cmd = m.updateDetail(msg)
		} else {
			m, cmd = m.updateList(msg)
		}
		cmds = append(cmds, cmd)
	default:
		cmds = append(cmds, m.forward(msg))
	}
	cmds = append(cmds, m.sync())
	return m, tea.Batch(cmds...)
}

func (m Model) updateList(msg tea.KeyMsg) (Model, tea.Cmd) {
	m.state.err = nil

	if m.searching {
		switch {
		case key.Matches(msg, keys.Confirm):
			m.searching = false
			m.search.Blur()
			return m, nil
		case key.Matches(msg, keys.Back):
			m.searching = false
			m.search.SetValue("")
			m.search.Blur()
			m.list.SearchItems(m.ctx, "")
			return m, nil
		case key.Matches(msg, keys.ForceQuit):
			return m, tea.Quit
		}
		before := m.search.Value()
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		if q := m.search.Value(); q != before {
			m.list.SearchItems(m.ctx, strings.TrimSpace(q))
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, keys.Quit), key.Matches(msg, keys.ForceQuit):
		return m, tea.Quit
	case key.Matches(msg, keys.Back):
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.list.SearchItems(m.ctx, "")
			return m, nil
		}
		return m, tea.Quit
	case key.Matches(msg, keys.Toggle):
		m.list.ToggleCompleted(m.ctx, m.items.Index())
		return m, nil
	case key.Matches(msg, keys.Add):
		m.items.Select(0)
		m.list.AddNewItem(m.ctx)
		return m, nil
	case key.Matches(msg, keys.Delete):
		i := m.items.Index()
		if t, ok := m.list.Todo(i); ok {
			m.undo = &t
			m.list.DeleteTodo(m.ctx, i)
		}
		return m, nil
	case key.Matches(msg, keys.Undo):
		if m.undo != nil {
			m.list.AddItem(m.ctx, *m.undo)
			m.undo = nil
		}
		return m, nil
	case key.Matches(msg, keys.Search):
		m.searching = true
		return m, m.search.Focus()
	case key.Matches(msg, keys.Reload):
		m.state.loading = true
		m.list.SearchItems(m.ctx, strings.TrimSpace(m.search.Value()))
		return m, nil
	case key.Matches(msg, keys.Open):
		return m.openDetail(m.items.Index())
	}

	var cmd tea.Cmd
	m.items, cmd = m.items.Update(msg)
	return m, cmd
}

func (m Model) openDetail(i int) (Model, tea.Cmd) {
	d, ok := m.list.Detail(i)
	if !ok {
		return m, nil
	}
	t := d.Todo()
	m.detail = d
	m.screen = detailScreen
	m.detailErr = ""
	m.bodyFocus = false
	m.title.SetValue(t.Title)
	m.title.CursorEnd()
	m.body.SetValue(t.Content)
	m.body.Blur()
	if !d.Editable() {
		m.title.Blur()
		return m, nil
	}
	return m, m.title.Focus()
}

func (m *Model) closeDetail() {
	m.screen = listScreen
	m.detail = nil
	m.detailErr = ""
	m.title.Blur()
	m.body.Blur()
}

func (m Model) updateDetail(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.ForceQuit):
		return m, tea.Quit
	case key.Matches(msg, keys.Back):
		m.closeDetail()
		return m, nil
	case key.Matches(msg, keys.Save):
		title := strings.TrimSpace(m.title.Value())
		if title == "" {
			m.detailErr = "Title cannot be empty"
			return m, nil
		}
		if err := m.detail.UpdateItem(m.ctx, title, m.body.Value()); err != nil {
			m.detailErr = err.Error()
			return m, nil
		}
		m.closeDetail()
		return m, nil
	}

	if !m.detail.Editable() {
		return m, nil
	}
	if key.Matches(msg, keys.NextField) {
		m.bodyFocus = !m.bodyFocus
		if m.bodyFocus {
			m.title.Blur()
			return m, m.body.Focus()
		}
		m.body.Blur()
		return m, m.title.Focus()
	}

	var cmd tea.Cmd
	if m.bodyFocus {
		m.body, cmd = m.body.Update(msg)
	} else {
		m.title, cmd = m.title.Update(msg)
	}
	return m, cmd
}

// forward hands non-key messages (cursor blinks) to whichever input has focus.
func (m *Model) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case m.screen == detailScreen && m.bodyFocus:
		m.body, cmd = m.body.Update(msg)
	case m.screen == detailScreen:
		m.title, cmd = m.title.Update(msg)
	case m.searching:
		m.search, cmd = m.search.Update(msg)
	}
	return cmd
}

// sync folds presenter notifications into the widgets.
func (m *Model) sync() tea.Cmd {
	if m.state.clearSearch {
		m.state.clearSearch = false
		m.searching = false
		m.search.SetValue("")
		m.search.Blur()
	}
	if !m.state.dirty {
		return nil
	}
	m.state.dirty = false
	todos := m.list.Todos()
	items := make([]list.Item, 0, len(todos))
	for _, t := range todos {
		items = append(items, listItem{task: t})
	}
	m.items.Title = header(m.theme, m.styles, todos)
	cmd := m.items.SetItems(items)
	// keep the cursor on a real row when the list shrinks
	if n := len(items); n > 0 && m.items.Index() >= n {
		m.items.Select(n - 1)
	}
	return cmd
}

func (m *Model) resize(w, h int) {
	// panel border + padding, search line, status line
	listHeight := h - 5
	if listHeight < 3 {
		listHeight = 3
	}
	m.items.SetSize(w-4, listHeight)
	m.search.Width = w - 10
	m.title.Width = w - 10
	m.body.SetWidth(w - 6)
	m.body.SetHeight(max(3, h-12))
}

func (m Model) View() string {
	if m.screen == detailScreen && m.detail != nil {
		return m.detailView()
	}
	var b strings.Builder
	b.WriteString(m.items.View())
	if m.searching || m.search.Value() != "" {
		b.WriteString("\n" + m.search.View())
	}
	b.WriteString("\n" + m.statusLine())
	return m.styles.Panel.Render(b.String())
}

func (m Model) statusLine() string {
	switch {
	case m.state.err != nil:
		return m.styles.Error.Render("✖ " + m.state.err.Error())
	case m.state.loading:
		return m.spinner.View() + m.styles.Muted.Render(" loading...")
	default:
		return m.styles.Muted.Render(fmt.Sprintf("%d tasks", m.list.Count()))
	}
}

func (m Model) detailView() string {
	t := m.detail.Todo()
	state := m.styles.Pending.Render("pending")
	help := "ctrl+s save • tab next field • esc back"
	if t.Completed {
		state = m.styles.Success.Render("completed")
		help = "esc back • completed tasks are read-only"
	}
	lines := []string{
		m.styles.Title.Render("Task"),
		m.title.View(),
		m.styles.Muted.Render(t.FormattedDate()) + "  " + state,
		"",
		m.body.View(),
		"",
	}
	if m.detailErr != "" {
		lines = append(lines, m.styles.Error.Render("✖ "+m.detailErr))
	}
	lines = append(lines, m.styles.Help.Render(help))
	return m.styles.Frame(lines)
}

// header line with live counts
func header(theme Theme, st Styles, todos []model.Task) string {
	done, pending := stats(todos)
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		st.Title.Render("Todos"),
		st.Success.Render(theme.SymDone), done,
		st.Pending.Render(theme.SymPending), pending,
		st.Accent.Render("Total"), len(todos),
	)
}

func stats(todos []model.Task) (done, pending int) {
	for _, t := range todos {
		if t.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}
