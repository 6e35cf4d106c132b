package runner

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/rlch/cyq"
)

func TestDotsFormatter_Format(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	f := NewDotsFormatter(&buf)

	_ = f.Format(Event{Action: ActionRun}, nil)
	_ = f.Format(Event{Action: ActionBuilt, Output: "MATCH"}, nil)

	if buf.Len() != 0 {
		t.Error("Non-terminal should produce no output")
	}

	_ = f.Format(Event{Action: ActionPass}, nil)
	_ = f.Format(Event{Action: ActionFail}, nil)
	_ = f.Format(Event{Action: ActionSkip}, nil)
	_ = f.Format(Event{Action: ActionError}, nil)

	if got := buf.String(); got != ".FSE" {
		t.Errorf("got %q, want %q", got, ".FSE")
	}
}

func TestDotsFormatter_Summary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	f := NewDotsFormatter(&buf)

	result := NewResult()
	result.Add(Event{Action: ActionPass, Path: []string{"Plan1"}})
	result.Add(Event{Action: ActionFail, Path: []string{"Plan2"}, Field: "count == 1", Expected: true, Actual: false})
	result.Finish()

	_ = f.Summary(result)

	got := buf.String()

	if !bytes.Contains(buf.Bytes(), []byte("FAIL Plan2")) {
		t.Errorf("missing 'FAIL Plan2' in:\n%s", got)
	}

	if !bytes.Contains(buf.Bytes(), []byte("count == 1:")) {
		t.Errorf("missing failing expectation in:\n%s", got)
	}

	if !bytes.Contains(buf.Bytes(), []byte("2 plans, 1 passed, 1 failed")) {
		t.Errorf("missing summary counts in:\n%s", got)
	}
}

func TestVerboseFormatter_Format(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	f := NewVerboseFormatter(&buf)

	_ = f.Format(Event{Action: ActionRun, Path: []string{"Plan1"}}, nil)

	if got, want := buf.String(), "=== RUN   Plan1\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	buf.Reset()

	_ = f.Format(Event{Action: ActionBuilt, Path: []string{"Plan1"}, Output: "MATCH\n(n)"}, nil)

	if got, want := buf.String(), "    MATCH\n    (n)\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	buf.Reset()

	_ = f.Format(Event{Action: ActionPass, Path: []string{"Plan1"}, Elapsed: 10 * time.Millisecond, Rows: 2}, nil)

	if got, want := buf.String(), "--- PASS: Plan1 (10ms, 2 rows)\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	buf.Reset()

	_ = f.Format(Event{Action: ActionFail, Path: []string{"Plan1"}, Field: "count > 0", Expected: true, Actual: false}, nil)

	want := `--- FAIL: Plan1 (0s)
    count > 0:
        expected: true
        actual:   false
`
	if got := buf.String(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestJSONFormatter_Format(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	f := NewJSONFormatter(&buf)

	fixedTime := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	_ = f.Format(Event{
		Time:    fixedTime,
		RunID:   "run-1",
		Action:  ActionPass,
		Suite:   "movies.cyq.yaml",
		Path:    []string{"heat"},
		Elapsed: 50 * time.Millisecond,
		Rows:    3,
	}, nil)

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if got["action"] != "passed" {
		t.Errorf("action = %v, want passed", got["action"])
	}

	if got["path"] != "heat" {
		t.Errorf("path = %v, want heat", got["path"])
	}

	if got["run_id"] != "run-1" {
		t.Errorf("run_id = %v, want run-1", got["run_id"])
	}

	if rows, ok := got["rows"].(float64); !ok || rows != 3 {
		t.Errorf("rows = %v, want 3", got["rows"])
	}
}

func TestJSONFormatter_Built(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	f := NewJSONFormatter(&buf)

	q := cyq.Query{Text: "MATCH\n(n)\nRETURN\nn", Params: cyq.Params{"where_n_name": "Alice"}}

	_ = f.Format(Event{Action: ActionBuilt, Path: []string{"p"}, Query: &q, Output: q.Text}, nil)

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if got["query"] != q.Text {
		t.Errorf("query = %v, want %q", got["query"], q.Text)
	}

	params, ok := got["params"].(map[string]any)
	if !ok || params["where_n_name"] != "Alice" {
		t.Errorf("params = %v", got["params"])
	}

	if _, ok := got["output"]; ok {
		t.Error("built event should carry the query, not output")
	}
}

func TestJSONFormatter_Summary(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	f := NewJSONFormatter(&buf)

	result := NewResult()
	result.Add(Event{Action: ActionPass, Path: []string{"Plan1"}})
	result.Add(Event{Action: ActionFail, Path: []string{"Plan2"}})
	result.Finish()

	_ = f.Summary(result)

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if got["action"] != "summary" {
		t.Errorf("action = %v, want summary", got["action"])
	}

	total, ok := got["total"].(float64)
	if !ok || total != 2 {
		t.Errorf("total = %v, want 2", got["total"])
	}

	okVal, ok := got["ok"].(bool)
	if !ok || okVal {
		t.Errorf("ok = %v, want false", got["ok"])
	}
}

func TestNewFormatter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	if _, ok := NewFormatter("verbose", &buf).(*VerboseFormatter); !ok {
		t.Error("verbose should build a VerboseFormatter")
	}

	if _, ok := NewFormatter("json", &buf).(*JSONFormatter); !ok {
		t.Error("json should build a JSONFormatter")
	}

	if _, ok := NewFormatter("", &buf).(*DotsFormatter); !ok {
		t.Error("default should be DotsFormatter")
	}
}
