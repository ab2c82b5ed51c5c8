package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Placeholder text for tasks created locally or imported from the seed endpoint.
const (
	NewTitle       = "New task"
	NewContent     = "This is your new note. You can use it to jot down thoughts, ideas, and tasks. Edit the text, add details, and use it to plan your day or store important ideas."
	DefaultContent = "Add a detailed note description"
)

// DateLayout renders task dates as dd/MM/yyyy.
const DateLayout = "02/01/2006"

// Task is the domain model for a todo entry.
type Task struct {
	ID        uuid.UUID
	Title     string
	Content   string
	Completed bool
	Date      time.Time
}

// NewTask builds a pending task with a fresh id.
func NewTask(title, content string, now time.Time) Task {
	return Task{
		ID:      uuid.New(),
		Title:   title,
		Content: content,
		Date:    now,
	}
}

// Placeholder is the task the "add" action inserts before the user edits it.
func Placeholder(now time.Time) Task {
	return NewTask(NewTitle, NewContent, now)
}

// ToggleCompleted flips the completion flag. The date is left alone.
func (t *Task) ToggleCompleted() {
	t.Completed = !t.Completed
}

// Edit replaces title and content and stamps the modification time.
func (t *Task) Edit(title, content string, now time.Time) {
	t.Title = title
	t.Content = content
	t.Date = now
}

// FormattedDate is the short date shown next to a task.
func (t Task) FormattedDate() string {
	return t.Date.Format(DateLayout)
}

// TodosResponse is the seed endpoint envelope. Decoding mints an id, the
// default content and one shared timestamp for every record.
type TodosResponse struct {
	Todos []Task
}

type wireTodo struct {
	Todo      *string `json:"todo"`
	Completed *bool   `json:"completed"`
}

var errMissingField = errors.New("missing field")

func (r *TodosResponse) UnmarshalJSON(b []byte) error {
	var env struct {
		Todos *[]wireTodo `json:"todos"`
	}
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	if env.Todos == nil {
		return fmt.Errorf("todos: %w", errMissingField)
	}
	now := time.Now()
	tasks := make([]Task, 0, len(*env.Todos))
	for i, w := range *env.Todos {
		if w.Todo == nil {
			return fmt.Errorf("todos[%d].todo: %w", i, errMissingField)
		}
		if w.Completed == nil {
			return fmt.Errorf("todos[%d].completed: %w", i, errMissingField)
		}
		t := NewTask(*w.Todo, DefaultContent, now)
		t.Completed = *w.Completed
		tasks = append(tasks, t)
	}
	r.Todos = tasks
	return nil
}
