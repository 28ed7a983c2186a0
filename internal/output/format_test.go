package output_test

import (
	"bytes"
	"testing"
	"time"

	"ktodo/internal/auth"
	"ktodo/internal/output"
	"ktodo/internal/service"
	"ktodo/internal/testutil"
)

func TestFormatTaskList(t *testing.T) {
	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	tasks := []service.Task{
		{Title: "Pay rent", Priority: service.PriorityHigh, Category: "bills", DueDate: &due},
		{Title: "Buy milk", Priority: service.PriorityMedium, Completed: true},
		{Title: "", Priority: service.PriorityLow},
		{Title: "Call\nmom", Priority: service.PriorityLow},
	}

	var buf bytes.Buffer
	for i, task := range tasks {
		output.FormatTask(&buf, i+1, task)
	}

	testutil.GoldenString(t, "tasklist", buf.String())
}

func TestFormatProfile(t *testing.T) {
	var buf bytes.Buffer
	output.FormatProfile(&buf, &auth.UserProfile{
		Username:      "alice",
		DisplayName:   "Alice Example",
		Email:         "alice@example.com",
		EmailVerified: true,
	})

	testutil.GoldenString(t, "profile", buf.String())
}

func TestFormatProfileMinimal(t *testing.T) {
	var buf bytes.Buffer
	output.FormatProfile(&buf, &auth.UserProfile{Username: "bob"})

	if buf.String() != "bob\n" {
		t.Errorf("expected bare username, got %q", buf.String())
	}
}
