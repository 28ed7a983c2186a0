// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ktodo/internal/auth"
	"ktodo/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu      sync.RWMutex
	tasks   []service.Task
	profile *auth.UserProfile

	// Error injection for testing
	ListTasksErr       error
	CreateTaskErr      error
	UpdateTaskErr      error
	DeleteTaskErr      error
	ToggleTaskErr      error
	ProfileErr         error
	CompleteProfileErr error
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		profile: &auth.UserProfile{
			ID:       "user-1",
			Username: "alice",
			Email:    "alice@example.com",
		},
	}
}

// AddTask seeds a task and returns its ID.
func (f *FakeService) AddTask(title string, priority service.Priority, completed bool) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.NewString()
	now := time.Now()
	f.tasks = append(f.tasks, service.Task{
		ID:        id,
		Title:     title,
		Priority:  priority,
		Completed: completed,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return id
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, filters service.Filters) ([]service.Task, error) {
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	var result []service.Task
	for _, t := range f.tasks {
		if filters.Category != "" && t.Category != filters.Category {
			continue
		}
		if filters.Priority != "" && t.Priority != filters.Priority {
			continue
		}
		if filters.Completed != nil && t.Completed != *filters.Completed {
			continue
		}
		if filters.Search != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(filters.Search)) {
			continue
		}
		result = append(result, t)
	}
	return result, nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, draft service.Draft) (service.Task, error) {
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	task := service.Task{
		ID:          uuid.NewString(),
		Title:       draft.Title,
		Description: draft.Description,
		Priority:    draft.Priority,
		Category:    draft.Category,
		DueDate:     draft.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.tasks = append(f.tasks, task)
	return task, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id string, patch service.Patch) (service.Task, error) {
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID != id {
			continue
		}
		t := &f.tasks[i]
		if patch.Title != nil {
			t.Title = *patch.Title
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.Priority != nil {
			t.Priority = *patch.Priority
		}
		if patch.Category != nil {
			t.Category = *patch.Category
		}
		if patch.DueDate != nil {
			t.DueDate = patch.DueDate
		}
		t.UpdatedAt = time.Now()
		return *t, nil
	}
	return service.Task{}, notFound(id)
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id string) error {
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return notFound(id)
}

// ToggleTask implements service.Service.
func (f *FakeService) ToggleTask(ctx context.Context, id string) (service.Task, error) {
	if f.ToggleTaskErr != nil {
		return service.Task{}, f.ToggleTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].Completed = !f.tasks[i].Completed
			f.tasks[i].UpdatedAt = time.Now()
			return f.tasks[i], nil
		}
	}
	return service.Task{}, notFound(id)
}

// Profile implements service.Service.
func (f *FakeService) Profile(ctx context.Context) (*auth.UserProfile, error) {
	if f.ProfileErr != nil {
		return nil, f.ProfileErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	copy := *f.profile
	return &copy, nil
}

// CompleteProfile implements service.Service.
func (f *FakeService) CompleteProfile(ctx context.Context, ob service.Onboarding) (*auth.UserProfile, error) {
	if f.CompleteProfileErr != nil {
		return nil, f.CompleteProfileErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	copy := *f.profile
	return &copy, nil
}

func notFound(id string) error {
	return &service.RequestError{Status: http.StatusNotFound}
}
