package presenter

import (
	"context"
	"errors"
	"time"

	"github.com/Makepad-fr/tasklist/internal/model"
)

// ErrCompleted is returned when editing a completed task.
var ErrCompleted = errors.New("completed tasks are read-only")

// DetailOutput receives edits saved on the detail screen.
type DetailOutput interface {
	DidUpdateItem(ctx context.Context, t model.Task)
}

type DetailPresenter struct {
	todo model.Task
	out  DetailOutput
	now  func() time.Time
}

func NewDetail(t model.Task, out DetailOutput) *DetailPresenter {
	return &DetailPresenter{todo: t, out: out, now: time.Now}
}

func (d *DetailPresenter) Todo() model.Task { return d.todo }

// Editable reports whether title and content may change.
func (d *DetailPresenter) Editable() bool { return !d.todo.Completed }

// UpdateItem applies the edit and hands the task to the output.
func (d *DetailPresenter) UpdateItem(ctx context.Context, title, content string) error {
	if !d.Editable() {
		return ErrCompleted
	}
	d.todo.Edit(title, content, d.now())
	if d.out != nil {
		d.out.DidUpdateItem(ctx, d.todo)
	}
	return nil
}
