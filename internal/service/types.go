// Package service defines the backend-agnostic interface for task and
// profile operations.
package service

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Priority is a task priority level.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority parses a priority string.
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return Priority(s), nil
	}
	return "", fmt.Errorf("invalid priority: %s (want low, medium or high)", s)
}

// Task represents a single task item. Tasks are owned by the remote service;
// the client holds a possibly-stale copy.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	Priority    Priority   `json:"priority"`
	Category    string     `json:"category"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Draft is the payload for creating a task.
type Draft struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	Priority    Priority   `json:"priority"`
	Category    string     `json:"category"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

// Patch is a partial task update. Nil fields are left unchanged.
type Patch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
	Category    *string    `json:"category,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

// Filters narrows a task listing. Zero values mean "no filter".
type Filters struct {
	Category  string
	Priority  Priority
	Completed *bool
	Search    string
}

// Query encodes the filters as URL query parameters.
func (f Filters) Query() url.Values {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Priority != "" {
		q.Set("priority", string(f.Priority))
	}
	if f.Completed != nil {
		q.Set("completed", strconv.FormatBool(*f.Completed))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	return q
}

// Onboarding is the additional profile information collected after first
// login.
type Onboarding struct {
	Phone    string `json:"phone,omitempty"`
	Company  string `json:"company,omitempty"`
	JobTitle string `json:"jobTitle,omitempty"`
}
