// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"ktodo/internal/auth"
	"ktodo/internal/service"
)

// FormatTask formats a task line.
// Format: "{N:>4}  [{x| }] {PRIORITY:<6} {TITLE}[ #CATEGORY][ (due DATE)]\n"
func FormatTask(w io.Writer, num int, task service.Task) {
	mark := " "
	if task.Completed {
		mark = "x"
	}

	line := fmt.Sprintf("%4d  [%s] %-6s %s", num, mark, task.Priority, normalizeTitle(task.Title))
	if task.Category != "" {
		line += " #" + task.Category
	}
	if task.DueDate != nil {
		line += " (due " + task.DueDate.Format("2006-01-02") + ")"
	}
	fmt.Fprintln(w, line)
}

// FormatProfile formats a user profile.
func FormatProfile(w io.Writer, user *auth.UserProfile) {
	fmt.Fprintln(w, user.Username)
	if user.DisplayName != "" {
		fmt.Fprintf(w, "name:  %s\n", user.DisplayName)
	}
	if user.Email != "" {
		verified := ""
		if user.EmailVerified {
			verified = " (verified)"
		}
		fmt.Fprintf(w, "email: %s%s\n", user.Email, verified)
	}
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
