package commands

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"ktodo/internal/exitcode"
	"ktodo/internal/service"
)

// failBackend reports a task-service error and picks the matching exit code.
func failBackend(errOut io.Writer, err error) int {
	var reqErr *service.RequestError
	if errors.As(err, &reqErr) {
		fmt.Fprintf(errOut, "error: %v\n", err)
		if reqErr.Status == http.StatusUnauthorized || reqErr.Status == http.StatusForbidden {
			return exitcode.AuthError
		}
		return exitcode.BackendError
	}
	fmt.Fprintf(errOut, "error: %v\n", err)
	return exitcode.BackendError
}
