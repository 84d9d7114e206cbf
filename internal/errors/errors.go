package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/habitual/internal/api"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/store"
)

// reported marks an error the user has already seen as a notification.
type reported struct {
	err error
}

func (r *reported) Error() string { return r.err.Error() }

func (r *reported) Unwrap() error { return r.err }

// Reported wraps err so Format does not repeat its message.
func Reported(err error) error {
	if err == nil {
		return nil
	}
	return &reported{err: err}
}

// IsReported reports whether err was wrapped with Reported.
func IsReported(err error) bool {
	var r *reported
	return stderrors.As(err, &r)
}

// Format formats an error message with a consistent "Error: " prefix.
// Backend failures are reduced to the message the server sent, followed by a
// hint line when the user can do something about it. Reported errors yield
// only the hint.
func Format(err error) string {
	if err == nil {
		return ""
	}
	if IsReported(err) {
		return Hint(err)
	}
	msg := fmt.Sprintf("Error: %v", err)
	if hint := Hint(err); hint != "" {
		msg += "\n       " + hint
	}
	return msg
}

// Hint returns a one-line suggestion for well known failure classes.
func Hint(err error) string {
	var apiErr *api.Error
	switch {
	case stderrors.Is(err, store.ErrNoSession), api.IsUnauthorized(err):
		return "You are not signed in. Run 'habitual login' first."
	case stderrors.As(err, &apiErr) && apiErr.Status == 0:
		return "Could not reach the server. Check --api-url or HABITUAL_API_URL."
	}
	return ""
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		if msg := Format(err); msg != "" {
			fmt.Fprintf(os.Stderr, "%s\n", msg)
		}
		os.Exit(1)
	}
}
