package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/mattn/go-sqlite3"

	"github.com/Makepad-fr/tasklist/internal/model"
	"github.com/Makepad-fr/tasklist/internal/store/sqlstore"
)

const seedBody = `{"todos":[
	{"id":1,"todo":"Do something nice for someone you care about","completed":false,"userId":152},
	{"id":2,"todo":"Memorize a poem","completed":true,"userId":13}
],"total":2,"skip":0,"limit":2}`

type harness struct {
	t    *testing.T
	hits *atomic.Int32
}

func newHarness(t *testing.T, status int, body string) *harness {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	t.Setenv("TODO_DATA_DIR", t.TempDir())
	t.Setenv("TODO_SEED_URL", srv.URL+"/todos")
	t.Setenv("TODO_THEME", "mono")
	return &harness{t: t, hits: &hits}
}

func (h *harness) run(args ...string) (int, string, string) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	code := Run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	code, out, errOut := h.run(args...)
	if code != 0 {
		h.t.Fatalf("todo %s: exit %d\nstdout: %s\nstderr: %s", strings.Join(args, " "), code, out, errOut)
	}
	return out
}

func TestRun_ListSeedsOnlyOnFirstLaunch(t *testing.T) {
	h := newHarness(t, http.StatusOK, seedBody)

	first := h.mustRun("ls")
	for _, want := range []string{"1. [ ] Do something nice", "2. [x] Memorize a poem"} {
		if !strings.Contains(first, want) {
			t.Fatalf("ls missing %q:\n%s", want, first)
		}
	}
	second := h.mustRun("ls")
	if second != first {
		t.Fatalf("second listing differs:\n%s\nvs\n%s", first, second)
	}
	if got := h.hits.Load(); got != 1 {
		t.Fatalf("seed requests = %d, want 1", got)
	}
}

func TestRun_AddDoneRemove(t *testing.T) {
	h := newHarness(t, http.StatusOK, seedBody)

	if out := h.mustRun("add", "Buy", "milk"); !strings.Contains(out, "added: Buy milk") {
		t.Fatalf("add output = %q", out)
	}
	if out := h.mustRun("ls"); !strings.Contains(out, "1. [ ] Buy milk") {
		t.Fatalf("new task should list first:\n%s", out)
	}

	if out := h.mustRun("done", "1"); !strings.Contains(out, "done: Buy milk") {
		t.Fatalf("done output = %q", out)
	}
	if out := h.mustRun("ls"); !strings.Contains(out, "1. [x] Buy milk") {
		t.Fatalf("task not completed:\n%s", out)
	}
	if out := h.mustRun("done", "1"); !strings.Contains(out, "reopened: Buy milk") {
		t.Fatalf("second done should reopen, got %q", out)
	}

	if out := h.mustRun("rm", "1"); !strings.Contains(out, "removed: Buy milk") {
		t.Fatalf("rm output = %q", out)
	}
	out := h.mustRun("ls")
	if strings.Contains(out, "Buy milk") {
		t.Fatalf("removed task still listed:\n%s", out)
	}
	if !strings.Contains(out, "1. [ ] Do something nice") {
		t.Fatalf("seeded tasks should remain:\n%s", out)
	}
}

func TestRun_AddUsesDefaultContent(t *testing.T) {
	h := newHarness(t, http.StatusOK, seedBody)
	h.mustRun("add", "Buy milk")
	h.mustRun("add", "Call mom", "--content", "about sunday")

	if out := h.mustRun("show", "2"); !strings.Contains(out, model.DefaultContent) {
		t.Fatalf("task added without --content should get the default note:\n%s", out)
	}
	out := h.mustRun("show", "1")
	if !strings.Contains(out, "Call mom") || !strings.Contains(out, "about sunday") || !strings.Contains(out, "pending") {
		t.Fatalf("show output:\n%s", out)
	}
}

func TestRun_ShowCompleted(t *testing.T) {
	h := newHarness(t, http.StatusOK, seedBody)
	out := h.mustRun("show", "2")
	if !strings.Contains(out, "Memorize a poem") || !strings.Contains(out, "completed") {
		t.Fatalf("show output:\n%s", out)
	}
	if code, _, _ := h.run("show", "3"); code != 2 {
		t.Fatalf("show out of range: exit %d, want 2", code)
	}
}

func TestRun_AddPlaceholder(t *testing.T) {
	h := newHarness(t, http.StatusOK, seedBody)
	if out := h.mustRun("add"); !strings.Contains(out, "added: New task") {
		t.Fatalf("add output = %q", out)
	}
	if out := h.mustRun("ls"); !strings.Contains(out, "1. [ ] New task") {
		t.Fatalf("placeholder not listed first:\n%s", out)
	}
}

func TestRun_Edit(t *testing.T) {
	h := newHarness(t, http.StatusOK, seedBody)
	h.mustRun("ls")

	out := h.mustRun("edit", "1", "--content", "Add a short note")
	if !strings.Contains(out, "updated: Do something nice") {
		t.Fatalf("edit output = %q", out)
	}
	if !strings.Contains(out, "[-") || !strings.Contains(out, "{+") {
		t.Fatalf("edit should print a diff:\n%s", out)
	}

	h.mustRun("edit", "1", "--title", "Call mom")
	if out := h.mustRun("search", "mom"); !strings.Contains(out, "1. [ ] Call mom") {
		t.Fatalf("title not updated:\n%s", out)
	}

	code, _, errOut := h.run("edit", "2", "--title", "Learn a song")
	if code != 1 || !strings.Contains(errOut, "read-only") {
		t.Fatalf("editing a completed task: exit %d, stderr %q", code, errOut)
	}
}

func TestRun_SearchKeepsListingNumbers(t *testing.T) {
	h := newHarness(t, http.StatusOK, seedBody)

	out := h.mustRun("search", "POEM")
	if !strings.Contains(out, "2. [x] Memorize a poem") {
		t.Fatalf("search output:\n%s", out)
	}
	if strings.Contains(out, "Do something nice") {
		t.Fatalf("search matched too much:\n%s", out)
	}
	if out := h.mustRun("search", "nothing-like-this"); !strings.Contains(out, "no tasks") {
		t.Fatalf("empty search output = %q", out)
	}
}

func TestRun_GroupedList(t *testing.T) {
	h := newHarness(t, http.StatusOK, seedBody)
	out := h.mustRun("ls", "--group")
	for _, want := range []string{"Pending", "Done", "50%"} {
		if !strings.Contains(out, want) {
			t.Fatalf("grouped output missing %q:\n%s", want, out)
		}
	}
}

func TestRun_UsageErrors(t *testing.T) {
	h := newHarness(t, http.StatusOK, seedBody)
	cases := []struct {
		name string
		args []string
		want string
	}{
		{"no subcommand", nil, "missing subcommand"},
		{"unknown subcommand", []string{"frobnicate"}, "unknown command"},
		{"done without index", []string{"done"}, "arg"},
		{"done not a number", []string{"done", "abc"}, "not a number"},
		{"done out of range", []string{"done", "99"}, "index out of range: have 2, got 99"},
		{"rm zero", []string{"rm", "0"}, "index out of range"},
		{"edit without flags", []string{"edit", "1"}, "nothing to change"},
		{"edit empty title", []string{"edit", "1", "--title", " "}, "title cannot be empty"},
		{"unknown theme", []string{"ls", "--theme", "sepia"}, "unknown theme"},
		{"bad seed url", []string{"ls", "--seed-url", "ftp://x/todos"}, "http(s)"},
		{"unknown flag", []string{"ls", "--nope"}, "unknown flag"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, _, errOut := h.run(tc.args...)
			if code != 2 {
				t.Fatalf("exit = %d, want 2 (stderr %q)", code, errOut)
			}
			if !strings.Contains(errOut, tc.want) {
				t.Fatalf("stderr = %q, want it to contain %q", errOut, tc.want)
			}
		})
	}
}

func TestRun_OutOfRangeHint(t *testing.T) {
	h := newHarness(t, http.StatusOK, seedBody)
	_, _, errOut := h.run("rm", "5")
	if !strings.Contains(errOut, "todo ls") {
		t.Fatalf("missing hint: %q", errOut)
	}
}

func TestRun_SeedFailure(t *testing.T) {
	h := newHarness(t, http.StatusInternalServerError, `{"message":"down"}`)

	code, _, errOut := h.run("ls")
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !strings.Contains(errOut, "HTTP 500") {
		t.Fatalf("stderr = %q", errOut)
	}

	// the launch flag is already set, so the next run reads the empty store
	if out := h.mustRun("ls"); !strings.Contains(out, "no tasks") {
		t.Fatalf("second run output = %q", out)
	}
	if got := h.hits.Load(); got != 1 {
		t.Fatalf("seed requests = %d, want 1", got)
	}
}

func TestContentDiff(t *testing.T) {
	if got := contentDiff("buy milk", "buy oat milk", false); got != "buy {+oat +}milk" {
		t.Fatalf("diff = %q", got)
	}
	if got := contentDiff("same", "same", false); got != "same" {
		t.Fatalf("diff = %q", got)
	}
}

func TestRuntimeError_BusyHint(t *testing.T) {
	busy := &sqlstore.Error{Op: "add", Err: sqlite3.Error{Code: sqlite3.ErrBusy}}
	ee, ok := runtimeError(busy).(*exitErr)
	if !ok || ee.code != 1 || ee.hint == "" {
		t.Fatalf("busy error = %+v", ee)
	}
	other := &sqlstore.Error{Op: "add", Err: sqlite3.Error{Code: sqlite3.ErrConstraint}}
	if ee := runtimeError(other).(*exitErr); ee.hint != "" {
		t.Fatalf("unexpected hint for %v", other)
	}
}
