// Package interactor forwards list use cases to the repository and relays
// the outcome to an Output.
package interactor

import (
	"context"

	"github.com/google/uuid"

	"github.com/Makepad-fr/tasklist/internal/model"
)

type Repository interface {
	GetAll(ctx context.Context) ([]model.Task, error)
	Add(ctx context.Context, t model.Task) error
	Update(ctx context.Context, t model.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string) ([]model.Task, error)
}

// Output receives the result of every use case. Exactly one method is called
// per use case: the matching Did* on success, DidFail otherwise.
type Output interface {
	DidFetchTodos(todos []model.Task)
	DidAddTodo(todo model.Task)
	DidUpdateTodo(todo model.Task)
	DidDeleteTodo(id uuid.UUID)
	DidSearchTodos(query string, todos []model.Task)
	DidFail(err error)
}

type Interactor struct {
	repo Repository
	out  Output
}

func New(repo Repository) *Interactor {
	return &Interactor{repo: repo}
}

// SetOutput binds the receiver of results. Results are dropped while unset.
func (i *Interactor) SetOutput(out Output) { i.out = out }

func (i *Interactor) FetchItems(ctx context.Context) {
	todos, err := i.repo.GetAll(ctx)
	i.relay(err, func() { i.out.DidFetchTodos(todos) })
}

func (i *Interactor) AddItem(ctx context.Context, t model.Task) {
	err := i.repo.Add(ctx, t)
	i.relay(err, func() { i.out.DidAddTodo(t) })
}

func (i *Interactor) UpdateItem(ctx context.Context, t model.Task) {
	err := i.repo.Update(ctx, t)
	i.relay(err, func() { i.out.DidUpdateTodo(t) })
}

func (i *Interactor) DeleteItem(ctx context.Context, id uuid.UUID) {
	err := i.repo.Delete(ctx, id)
	i.relay(err, func() { i.out.DidDeleteTodo(id) })
}

func (i *Interactor) SearchItems(ctx context.Context, query string) {
	todos, err := i.repo.Search(ctx, query)
	i.relay(err, func() { i.out.DidSearchTodos(query, todos) })
}

func (i *Interactor) relay(err error, onSuccess func()) {
	if i.out == nil {
		return
	}
	if err != nil {
		i.out.DidFail(err)
		return
	}
	onSuccess()
}
