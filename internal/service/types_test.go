package service

import (
	"encoding/json"
	"testing"
)

func TestParseStatus(t *testing.T) {
	for in, want := range map[string]Status{
		"pending":       StatusPending,
		" In-Progress ": StatusInProgress,
		"COMPLETED":     StatusCompleted,
	} {
		got, err := ParseStatus(in)
		if err != nil || got != want {
			t.Errorf("ParseStatus(%q) = %q, %v", in, got, err)
		}
	}
	for _, in := range []string{"", "done", "in progress"} {
		if _, err := ParseStatus(in); err == nil {
			t.Errorf("ParseStatus(%q): expected error", in)
		}
	}
}

func TestStatus_Cycle(t *testing.T) {
	s := StatusPending
	seen := []Status{s}
	for i := 0; i < 3; i++ {
		s = s.Next()
		seen = append(seen, s)
	}
	if seen[1] != StatusInProgress || seen[2] != StatusCompleted || seen[3] != StatusPending {
		t.Errorf("Next cycle = %v", seen)
	}
	if StatusPending.Prev() != StatusCompleted {
		t.Errorf("Prev(pending) = %q", StatusPending.Prev())
	}
	if Status("").Next() != StatusPending {
		t.Error("unknown status should cycle back to pending")
	}
	if StatusInProgress.Label() != "in progress" {
		t.Errorf("Label = %q", StatusInProgress.Label())
	}
}

func TestTask_Unmarshal(t *testing.T) {
	raw := `[
		{"id": 5, "title": "a", "description": null, "status": "completed", "due_date": "2025-01-02"},
		{"id": "abc", "title": "b", "due_date": null},
		{"id": 7, "title": "c", "status": null}
	]`
	var tasks []Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []Task{
		{ID: "5", Title: "a", Status: StatusCompleted, DueDate: "2025-01-02"},
		{ID: "abc", Title: "b", Status: StatusPending},
		{ID: "7", Title: "c", Status: StatusPending},
	}
	for i := range want {
		if tasks[i] != want[i] {
			t.Errorf("task %d = %+v, want %+v", i, tasks[i], want[i])
		}
	}
}

func TestTask_UnmarshalRejectsUnknownStatus(t *testing.T) {
	var task Task
	if err := json.Unmarshal([]byte(`{"id":1,"title":"x","status":"archived"}`), &task); err == nil {
		t.Error("expected error for status outside the closed set")
	}
}

func TestID_Unmarshal(t *testing.T) {
	for raw, want := range map[string]ID{
		`12`:       "12",
		`"12"`:     "12",
		`"a-b"`:    "a-b",
		`null`:     "",
		`12345678`: "12345678",
	} {
		var id ID
		if err := json.Unmarshal([]byte(raw), &id); err != nil || id != want {
			t.Errorf("unmarshal %s = %q, %v", raw, id, err)
		}
	}
	var id ID
	if err := json.Unmarshal([]byte(`{}`), &id); err == nil {
		t.Error("expected error for object id")
	}
}

func TestTask_Due(t *testing.T) {
	if _, ok := (Task{}).Due(); ok {
		t.Error("empty due date should not parse")
	}
	d, ok := Task{DueDate: "2025-06-30"}.Due()
	if !ok || d.Year() != 2025 || d.Month() != 6 || d.Day() != 30 {
		t.Errorf("Due = %v, %v", d, ok)
	}
	if _, ok := (Task{DueDate: "soon"}).Due(); ok {
		t.Error("garbage should not parse")
	}
}

func TestFields_Marshal(t *testing.T) {
	b, err := json.Marshal(Fields{Title: "t", Status: StatusInProgress})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"title":"t","description":"","status":"in-progress","due_date":""}`
	if string(b) != want {
		t.Errorf("got %s, want %s", b, want)
	}
}
