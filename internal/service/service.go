package service

import (
	"context"

	"ktodo/internal/auth"
)

// Service defines the interface for task backend operations.
// All remote API calls go through this interface; commands never import the
// HTTP backend directly.
type Service interface {
	// ListTasks returns tasks matching the filters, most recent first.
	ListTasks(ctx context.Context, filters Filters) ([]Task, error)

	// CreateTask creates a task and returns the server's copy.
	CreateTask(ctx context.Context, draft Draft) (Task, error)

	// UpdateTask applies a partial update and returns the server's copy.
	UpdateTask(ctx context.Context, id string, patch Patch) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id string) error

	// ToggleTask flips a task's completion state on the server and
	// returns the server's copy. The caller must reflect the returned
	// state, not assume local toggle semantics.
	ToggleTask(ctx context.Context, id string) (Task, error)

	// Profile returns the current user's profile from the task API.
	Profile(ctx context.Context) (*auth.UserProfile, error)

	// CompleteProfile submits onboarding information and returns the
	// replacement profile.
	CompleteProfile(ctx context.Context, info Onboarding) (*auth.UserProfile, error)
}
