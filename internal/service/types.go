// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a task.
type Status string

// The closed set of task statuses understood by the service.
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// ParseStatus returns the status named by s (case-insensitive, trimmed).
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, nil
	case StatusInProgress:
		return StatusInProgress, nil
	case StatusCompleted:
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("unknown status: %q", s)
}

// Label is the human form of the status: the hyphen becomes a space.
func (s Status) Label() string {
	return strings.ReplaceAll(string(s), "-", " ")
}

// Next returns the status after s, wrapping around.
func (s Status) Next() Status {
	for i, st := range Statuses {
		if st == s {
			return Statuses[(i+1)%len(Statuses)]
		}
	}
	return StatusPending
}

// Prev returns the status before s, wrapping around.
func (s Status) Prev() Status {
	for i, st := range Statuses {
		if st == s {
			return Statuses[(i+len(Statuses)-1)%len(Statuses)]
		}
	}
	return StatusPending
}

// UnmarshalJSON rejects statuses outside the closed set. null leaves s empty.
func (s *Status) UnmarshalJSON(b []byte) error {
	if string(bytes.TrimSpace(b)) == "null" {
		return nil
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	st, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// ID is a server-assigned identifier. The service may send it as a JSON
// number or a string; it is kept as its decimal/string form.
type ID string

// UnmarshalJSON accepts both numeric and string identifiers.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid id: %s", b)
	}
	*id = ID(n.String())
	return nil
}

// DateLayout is the wire layout of a due date.
const DateLayout = "2006-01-02"

// Task represents a single task item.
type Task struct {
	ID          ID     `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      Status `json:"status"`
	DueDate     string `json:"due_date"` // "" when absent
}

// UnmarshalJSON tolerates a null description or due date. A missing
// status reads as pending.
func (t *Task) UnmarshalJSON(b []byte) error {
	var wire struct {
		ID          ID      `json:"id"`
		Title       string  `json:"title"`
		Description *string `json:"description"`
		Status      Status  `json:"status"`
		DueDate     *string `json:"due_date"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	*t = Task{ID: wire.ID, Title: wire.Title, Status: wire.Status}
	if t.Status == "" {
		t.Status = StatusPending
	}
	if wire.Description != nil {
		t.Description = *wire.Description
	}
	if wire.DueDate != nil {
		t.DueDate = *wire.DueDate
	}
	return nil
}

// Fields returns the editable fields of the task.
func (t Task) Fields() Fields {
	return Fields{
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		DueDate:     t.DueDate,
	}
}

// Due parses the due date. ok is false when it is absent or unparseable.
// Both a bare date and an RFC 3339 timestamp are accepted.
func (t Task) Due() (time.Time, bool) {
	s := strings.TrimSpace(t.DueDate)
	if s == "" {
		return time.Time{}, false
	}
	if d, err := time.Parse(DateLayout, s); err == nil {
		return d, true
	}
	if d, err := time.Parse(time.RFC3339, s); err == nil {
		return d, true
	}
	return time.Time{}, false
}

// Fields are the client-writable attributes of a task, sent on create and update.
type Fields struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      Status `json:"status"`
	DueDate     string `json:"due_date"`
}

// User is the authenticated identity.
type User struct {
	ID       ID     `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// Credentials are submitted on login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Profile is submitted on registration.
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned by login and registration.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
