package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"ktodo/internal/exitcode"
	"ktodo/internal/service"
)

// errBadRef marks reference errors that are usage mistakes, not backend
// failures.
var errBadRef = errors.New("bad task reference")

// resolveTask turns a positional task reference into a task. A reference that
// is all digits is treated as a 1-based position in the default listing, the
// same numbering `list` prints. Anything else is taken as a task ID.
func resolveTask(ctx context.Context, svc service.Service, ref string) (service.Task, error) {
	if ref == "" {
		return service.Task{}, fmt.Errorf("task reference required")
	}

	if n, ok := parseListNumber(ref); ok {
		tasks, err := svc.ListTasks(ctx, service.Filters{})
		if err != nil {
			return service.Task{}, err
		}
		if n < 1 || n > len(tasks) {
			return service.Task{}, fmt.Errorf("%w: no task number %d (list has %d)", errBadRef, n, len(tasks))
		}
		return tasks[n-1], nil
	}

	return service.Task{ID: ref}, nil
}

// failResolve reports a resolveTask error: reference mistakes are usage
// errors, everything else went over the wire.
func failResolve(errOut io.Writer, err error) int {
	if errors.Is(err, errBadRef) {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return failBackend(errOut, err)
}

func parseListNumber(s string) (int, bool) {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
		if n > 1<<20 {
			return 0, false
		}
	}
	return n, true
}
