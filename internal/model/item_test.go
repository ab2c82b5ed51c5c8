package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTodosResponse_DecodesSeedPayload(t *testing.T) {
	payload := `{"todos":[{"id":1,"todo":"Buy milk","completed":false,"userId":5},{"id":2,"todo":"Call mom","completed":true,"userId":7}],"total":2,"skip":0,"limit":30}`

	var r TodosResponse
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(r.Todos) != 2 {
		t.Fatalf("got %d todos, want 2", len(r.Todos))
	}
	first, second := r.Todos[0], r.Todos[1]
	if first.Title != "Buy milk" || first.Completed {
		t.Errorf("first = %+v", first)
	}
	if second.Title != "Call mom" || !second.Completed {
		t.Errorf("second = %+v", second)
	}
	if first.Content != DefaultContent {
		t.Errorf("content = %q, want default", first.Content)
	}
	if first.ID == second.ID {
		t.Error("decoded tasks share an id")
	}
	if !first.Date.Equal(second.Date) {
		t.Error("decoded tasks should share one timestamp")
	}
}

func TestTodosResponse_MissingKeys(t *testing.T) {
	cases := map[string]string{
		"no envelope":  `{"items":[]}`,
		"no todo":      `{"todos":[{"completed":true}]}`,
		"no completed": `{"todos":[{"todo":"x"}]}`,
		"wrong type":   `{"todos":[{"todo":1,"completed":true}]}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			var r TodosResponse
			if err := json.Unmarshal([]byte(payload), &r); err == nil {
				t.Errorf("expected error for %s", payload)
			}
		})
	}
}

func TestTodosResponse_EmptyList(t *testing.T) {
	var r TodosResponse
	if err := json.Unmarshal([]byte(`{"todos":[]}`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r.Todos == nil || len(r.Todos) != 0 {
		t.Errorf("want empty non-nil list, got %#v", r.Todos)
	}
}

func TestTask_EditRefreshesDateToggleDoesNot(t *testing.T) {
	created := time.Date(2025, 9, 22, 10, 0, 0, 0, time.UTC)
	task := NewTask("a", "b", created)

	task.ToggleCompleted()
	if !task.Completed || !task.Date.Equal(created) {
		t.Errorf("toggle: %+v", task)
	}
	task.ToggleCompleted()
	if task.Completed {
		t.Error("second toggle should reopen the task")
	}

	edited := created.Add(time.Hour)
	task.Edit("title", "content", edited)
	if task.Title != "title" || task.Content != "content" || !task.Date.Equal(edited) {
		t.Errorf("edit: %+v", task)
	}
}

func TestTask_FormattedDate(t *testing.T) {
	task := NewTask("a", "b", time.Date(2025, 10, 3, 0, 0, 0, 0, time.UTC))
	if got := task.FormattedDate(); got != "03/10/2025" {
		t.Errorf("FormattedDate = %q", got)
	}
}

func TestPlaceholder(t *testing.T) {
	p := Placeholder(time.Now())
	if p.Title != NewTitle || p.Content != NewContent || p.Completed {
		t.Errorf("placeholder = %+v", p)
	}
}
