package service

import "fmt"

// RequestError is a non-2xx response from the task API.
type RequestError struct {
	Status int
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed with status %d", e.Status)
}
