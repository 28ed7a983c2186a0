package commands

import (
	"context"
	"errors"
	"testing"

	"ktodo/internal/service"
	"ktodo/internal/testutil"
)

func TestParseListNumber(t *testing.T) {
	cases := []struct {
		in string
		n  int
		ok bool
	}{
		{"1", 1, true},
		{"42", 42, true},
		{"0", 0, true},
		{"", 0, true},
		{"1a", 0, false},
		{"abc-123", 0, false},
		{"-1", 0, false},
	}
	for _, tc := range cases {
		n, ok := parseListNumber(tc.in)
		if ok != tc.ok || (ok && n != tc.n) {
			t.Errorf("parseListNumber(%q) = %d, %v; want %d, %v", tc.in, n, ok, tc.n, tc.ok)
		}
	}
}

func TestResolveTaskByNumber(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("first", service.PriorityLow, false)
	id := svc.AddTask("second", service.PriorityLow, false)

	task, err := resolveTask(context.Background(), svc, "2")
	if err != nil {
		t.Fatal(err)
	}
	if task.ID != id {
		t.Errorf("expected %s, got %s", id, task.ID)
	}
}

func TestResolveTaskOutOfRange(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("only", service.PriorityLow, false)

	_, err := resolveTask(context.Background(), svc, "3")
	if !errors.Is(err, errBadRef) {
		t.Errorf("expected bad reference error, got %v", err)
	}
}

func TestResolveTaskByID(t *testing.T) {
	svc := testutil.NewFakeService()

	task, err := resolveTask(context.Background(), svc, "abc-123")
	if err != nil {
		t.Fatal(err)
	}
	if task.ID != "abc-123" {
		t.Errorf("expected raw ID passthrough, got %s", task.ID)
	}
}
