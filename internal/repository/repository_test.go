package repository

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Makepad-fr/tasklist/internal/model"
	"github.com/Makepad-fr/tasklist/internal/network"
	"github.com/Makepad-fr/tasklist/internal/settings"
	"github.com/Makepad-fr/tasklist/internal/store/jsonstore"
	"github.com/Makepad-fr/tasklist/internal/store/sqlstore"
)

type fakeNetwork struct {
	calls int
	body  string
	err   error
}

func (f *fakeNetwork) Get(_ context.Context, _ string, v any) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.body), v)
}

type fakeStorage struct {
	addManyCalls int
	allCalls     int
	added        []model.Task
	stored       []model.Task
	updated      []model.Task
	deleted      []uuid.UUID
	queries      []string
	addManyErr   error
	err          error
}

func (f *fakeStorage) Add(_ context.Context, t model.Task) error {
	if f.err != nil {
		return f.err
	}
	f.added = append(f.added, t)
	return nil
}

func (f *fakeStorage) AddMany(_ context.Context, tasks []model.Task) error {
	f.addManyCalls++
	if f.addManyErr != nil {
		return f.addManyErr
	}
	f.added = append(f.added, tasks...)
	return nil
}

func (f *fakeStorage) All(context.Context) ([]model.Task, error) {
	f.allCalls++
	return f.stored, nil
}

func (f *fakeStorage) Update(_ context.Context, t model.Task) error {
	f.updated = append(f.updated, t)
	return f.err
}

func (f *fakeStorage) Delete(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeStorage) Search(_ context.Context, q string) ([]model.Task, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	return f.stored, nil
}

type fakeLaunches struct {
	launched bool
}

func (f *fakeLaunches) LaunchedBefore() (bool, error) { return f.launched, nil }

const seedBody = `{"todos":[{"todo":"one","completed":false},{"todo":"two","completed":true}]}`

func TestGetAll_FirstLaunchFetchesAndStores(t *testing.T) {
	net := &fakeNetwork{body: seedBody}
	store := &fakeStorage{}
	repo := New(net, store, &fakeLaunches{launched: false}, "https://example.com/todos", nil)

	got, err := repo.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if net.calls != 1 {
		t.Errorf("network called %d times, want 1", net.calls)
	}
	if store.addManyCalls != 1 {
		t.Errorf("AddMany called %d times, want 1", store.addManyCalls)
	}
	if store.allCalls != 0 {
		t.Errorf("storage fetch should not run on first launch")
	}
	if len(got) != 2 || got[0].Title != "one" || !got[1].Completed {
		t.Errorf("returned %+v", got)
	}
	if len(store.added) != 2 || store.added[0].ID != got[0].ID {
		t.Errorf("stored tasks differ from returned tasks")
	}
}

func TestGetAll_LaterLaunchReadsStorageOnly(t *testing.T) {
	net := &fakeNetwork{body: seedBody}
	stored := []model.Task{model.NewTask("local", "", time.Now())}
	store := &fakeStorage{stored: stored}
	repo := New(net, store, &fakeLaunches{launched: true}, "https://example.com/todos", nil)

	got, err := repo.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if net.calls != 0 {
		t.Errorf("network called %d times, want 0", net.calls)
	}
	if store.allCalls != 1 || store.addManyCalls != 0 {
		t.Errorf("storage calls: all=%d addMany=%d", store.allCalls, store.addManyCalls)
	}
	if len(got) != 1 || got[0].ID != stored[0].ID {
		t.Errorf("returned %+v", got)
	}
}

func TestGetAll_NetworkErrorPropagates(t *testing.T) {
	boom := errors.New("offline")
	store := &fakeStorage{}
	repo := New(&fakeNetwork{err: boom}, store, &fakeLaunches{}, "u", nil)

	if _, err := repo.GetAll(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("want offline error, got %v", err)
	}
	if store.addManyCalls != 0 {
		t.Error("storage written despite network failure")
	}
}

func TestGetAll_StorageErrorPropagates(t *testing.T) {
	boom := errors.New("disk full")
	repo := New(&fakeNetwork{body: seedBody}, &fakeStorage{addManyErr: boom}, &fakeLaunches{}, "u", nil)

	if _, err := repo.GetAll(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("want disk full error, got %v", err)
	}
}

// End to end over a real SQLite file, a JSON settings file and an HTTP server.
func TestGetAll_SeedsOnceAcrossRuns(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(seedBody)) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	open := func() (*Repository, func()) {
		store, err := sqlstore.Open(filepath.Join(dir, sqlstore.FileName), nil)
		if err != nil {
			t.Fatalf("open store: %v", err)
		}
		repo := New(network.New(time.Second), store, settings.New(jsonstore.Open(dir)), srv.URL, nil)
		return repo, func() { store.Close() }
	}
	ctx := context.Background()

	repo, closeFirst := open()
	first, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("first GetAll: %v", err)
	}
	added := model.NewTask("mine", "", time.Now())
	if err := repo.Add(ctx, added); err != nil {
		t.Fatal(err)
	}
	closeFirst()

	repo, closeSecond := open()
	defer closeSecond()
	second, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("second GetAll: %v", err)
	}

	if n := hits.Load(); n != 1 {
		t.Errorf("seed endpoint hit %d times, want 1", n)
	}
	if len(second) != len(first)+1 {
		t.Fatalf("second run sees %d tasks, want %d", len(second), len(first)+1)
	}
	for i, task := range first {
		if second[i].ID != task.ID {
			t.Errorf("task %d id changed between runs", i)
		}
	}
	if second[len(second)-1].ID != added.ID {
		t.Error("locally added task missing")
	}
}

func TestWrites_GoStraightToStorage(t *testing.T) {
	net := &fakeNetwork{body: seedBody}
	task := model.NewTask("milk", "", time.Now())
	store := &fakeStorage{stored: []model.Task{task}}
	repo := New(net, store, &fakeLaunches{}, "u", nil)
	ctx := context.Background()

	if err := repo.Add(ctx, task); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := repo.Update(ctx, task); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := repo.Delete(ctx, task.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err := repo.Search(ctx, "mil")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(store.added) != 1 || len(store.updated) != 1 || len(store.deleted) != 1 {
		t.Errorf("storage calls: added=%d updated=%d deleted=%d", len(store.added), len(store.updated), len(store.deleted))
	}
	if store.deleted[0] != task.ID {
		t.Errorf("deleted %v, want %v", store.deleted[0], task.ID)
	}
	if len(store.queries) != 1 || store.queries[0] != "mil" || len(got) != 1 {
		t.Errorf("search queries=%v results=%v", store.queries, got)
	}
	if net.calls != 0 {
		t.Errorf("network called %d times", net.calls)
	}
}

func TestWrites_WrapStorageErrors(t *testing.T) {
	boom := errors.New("locked")
	repo := New(&fakeNetwork{}, &fakeStorage{err: boom}, &fakeLaunches{}, "u", nil)
	ctx := context.Background()
	task := model.NewTask("x", "", time.Now())

	cases := map[string]func() error{
		"add":    func() error { return repo.Add(ctx, task) },
		"update": func() error { return repo.Update(ctx, task) },
		"delete": func() error { return repo.Delete(ctx, task.ID) },
		"search": func() error { _, err := repo.Search(ctx, "x"); return err },
	}
	for op, call := range cases {
		t.Run(op, func(t *testing.T) {
			err := call()
			if !errors.Is(err, boom) {
				t.Fatalf("err = %v, want wrapped %v", err, boom)
			}
			if !strings.HasPrefix(err.Error(), op+": ") {
				t.Errorf("err = %q, want %q prefix", err, op+": ")
			}
		})
	}
}
