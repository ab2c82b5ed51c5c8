// Package presenter holds the displayed task list and turns interactor
// results into view updates.
package presenter

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Makepad-fr/tasklist/internal/model"
)

// View is what the presenter drives.
type View interface {
	Refresh(count int)
	ShowError(err error)
	ClearSearch()
}

// UseCases is the interactor surface the list screen calls.
type UseCases interface {
	FetchItems(ctx context.Context)
	AddItem(ctx context.Context, t model.Task)
	UpdateItem(ctx context.Context, t model.Task)
	DeleteItem(ctx context.Context, id uuid.UUID)
	SearchItems(ctx context.Context, query string)
}

type ListPresenter struct {
	interactor UseCases
	dispatch   Dispatcher
	view       View
	now        func() time.Time

	todos []model.Task
	// query is the latest search asked for, "" for the full list. Set by the
	// caller and read in Main; both run on the UI goroutine.
	query string
}

func NewList(uc UseCases, d Dispatcher) *ListPresenter {
	if d == nil {
		d = Inline{}
	}
	return &ListPresenter{interactor: uc, dispatch: d, now: time.Now}
}

func (p *ListPresenter) SetView(v View) { p.view = v }

func (p *ListPresenter) Count() int { return len(p.todos) }

// Todo returns the task at index i of the displayed list.
func (p *ListPresenter) Todo(i int) (model.Task, bool) {
	if i < 0 || i >= len(p.todos) {
		return model.Task{}, false
	}
	return p.todos[i], true
}

// Todos returns a copy of the displayed list.
func (p *ListPresenter) Todos() []model.Task {
	out := make([]model.Task, len(p.todos))
	copy(out, p.todos)
	return out
}

func (p *ListPresenter) LoadTodos(ctx context.Context) {
	p.query = ""
	p.dispatch.Background(func() { p.interactor.FetchItems(ctx) })
}

// AddNewItem clears any search, reloads the full list and inserts the
// placeholder task at the top.
func (p *ListPresenter) AddNewItem(ctx context.Context) {
	if p.view != nil {
		p.view.ClearSearch()
	}
	p.query = ""
	task := model.Placeholder(p.now())
	p.dispatch.Background(func() {
		p.interactor.FetchItems(ctx)
		p.interactor.AddItem(ctx, task)
	})
}

// AddItem stores t as is, keeping its id.
func (p *ListPresenter) AddItem(ctx context.Context, t model.Task) {
	p.dispatch.Background(func() { p.interactor.AddItem(ctx, t) })
}

func (p *ListPresenter) ToggleCompleted(ctx context.Context, i int) {
	t, ok := p.Todo(i)
	if !ok {
		return
	}
	t.ToggleCompleted()
	p.UpdateItem(ctx, t)
}

func (p *ListPresenter) UpdateItem(ctx context.Context, t model.Task) {
	p.dispatch.Background(func() { p.interactor.UpdateItem(ctx, t) })
}

func (p *ListPresenter) DeleteTodo(ctx context.Context, i int) {
	t, ok := p.Todo(i)
	if !ok {
		return
	}
	p.dispatch.Background(func() { p.interactor.DeleteItem(ctx, t.ID) })
}

// SearchItems filters through storage; an empty query reloads everything.
// Results of earlier searches that finish late are dropped.
func (p *ListPresenter) SearchItems(ctx context.Context, query string) {
	if query == "" {
		p.LoadTodos(ctx)
		return
	}
	p.query = query
	p.dispatch.Background(func() { p.interactor.SearchItems(ctx, query) })
}

// Detail opens the detail presenter for the task at index i. Saved edits come
// back through DidUpdateItem.
func (p *ListPresenter) Detail(i int) (*DetailPresenter, bool) {
	t, ok := p.Todo(i)
	if !ok {
		return nil, false
	}
	return NewDetail(t, p), true
}

// interactor.Output

func (p *ListPresenter) DidFetchTodos(todos []model.Task) {
	p.replace("", todos)
}

func (p *ListPresenter) DidSearchTodos(query string, todos []model.Task) {
	p.replace(query, todos)
}

func (p *ListPresenter) replace(query string, todos []model.Task) {
	p.dispatch.Main(func() {
		if query != p.query {
			return
		}
		p.todos = sortNewestFirst(todos)
		p.refresh()
	})
}

// DidAddTodo inserts t at its place in the newest-first order, after any
// task with the same date.
func (p *ListPresenter) DidAddTodo(t model.Task) {
	p.dispatch.Main(func() {
		i := sort.Search(len(p.todos), func(i int) bool { return p.todos[i].Date.Before(t.Date) })
		p.todos = append(p.todos, model.Task{})
		copy(p.todos[i+1:], p.todos[i:])
		p.todos[i] = t
		p.refresh()
	})
}

func (p *ListPresenter) DidUpdateTodo(t model.Task) {
	p.dispatch.Main(func() {
		i := p.indexOf(t.ID)
		if i < 0 {
			return
		}
		p.todos[i] = t
		p.refresh()
	})
}

func (p *ListPresenter) DidDeleteTodo(id uuid.UUID) {
	p.dispatch.Main(func() {
		i := p.indexOf(id)
		if i < 0 {
			return
		}
		p.todos = append(p.todos[:i], p.todos[i+1:]...)
		p.refresh()
	})
}

func (p *ListPresenter) DidFail(err error) {
	p.dispatch.Main(func() {
		if p.view != nil {
			p.view.ShowError(err)
		}
	})
}

// DetailOutput

func (p *ListPresenter) DidUpdateItem(ctx context.Context, t model.Task) {
	p.UpdateItem(ctx, t)
}

func (p *ListPresenter) refresh() {
	if p.view != nil {
		p.view.Refresh(len(p.todos))
	}
}

func (p *ListPresenter) indexOf(id uuid.UUID) int {
	for i, t := range p.todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func sortNewestFirst(todos []model.Task) []model.Task {
	out := make([]model.Task, len(todos))
	copy(out, todos)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}
