// Package validation checks user input before it is sent to the backend.
// The backend stays the authority; these checks only catch obvious typos
// early with a readable message.
package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
)

const (
	MaxHabitNameLen = 100
	MaxStatsDays    = 365
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// IssueField names the input an Issue refers to
type IssueField string

const (
	FieldName     IssueField = "name"
	FieldColor    IssueField = "color"
	FieldEmail    IssueField = "email"
	FieldPassword IssueField = "password"
	FieldDate     IssueField = "date"
)

// Issue is one problem found in user input
type Issue struct {
	Field       IssueField
	Description string
}

// Result collects every issue found in one input
type Result struct {
	Issues []Issue
}

func (r *Result) add(field IssueField, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Field: field, Description: fmt.Sprintf(format, args...)})
}

// HasIssues returns true if any check failed
func (r Result) HasIssues() bool {
	return len(r.Issues) > 0
}

// Err returns the issues as a single error, or nil.
func (r Result) Err() error {
	if !r.HasIssues() {
		return nil
	}
	parts := make([]string, len(r.Issues))
	for i, issue := range r.Issues {
		parts[i] = issue.Description
	}
	return fmt.Errorf("invalid input: %s", strings.Join(parts, "; "))
}

// FormatReport returns a human-readable list of issues
func (r Result) FormatReport() string {
	if !r.HasIssues() {
		return "No issues found."
	}
	var b strings.Builder
	b.WriteString("Invalid input:\n")
	for _, issue := range r.Issues {
		fmt.Fprintf(&b, "- %s\n", issue.Description)
	}
	return b.String()
}

// HabitInput checks a new habit.
func HabitInput(in models.HabitInput) Result {
	var r Result
	checkName(&r, in.Name)
	if in.Color != "" && !hexColor.MatchString(in.Color) {
		r.add(FieldColor, "color %q must look like #RRGGBB", in.Color)
	}
	return r
}

// HabitUpdate checks only the fields being changed.
func HabitUpdate(upd models.HabitUpdate) Result {
	var r Result
	if upd.Name != nil {
		checkName(&r, *upd.Name)
	}
	if upd.Color != nil && *upd.Color != "" && !hexColor.MatchString(*upd.Color) {
		r.add(FieldColor, "color %q must look like #RRGGBB", *upd.Color)
	}
	return r
}

func checkName(r *Result, name string) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		r.add(FieldName, "habit name is required")
	case len([]rune(name)) > MaxHabitNameLen:
		r.add(FieldName, "habit name must be at most %d characters", MaxHabitNameLen)
	}
}

// Credentials checks sign-in or sign-up input.
func Credentials(email, password string) Result {
	r := Email(email)
	if password == "" {
		r.add(FieldPassword, "password is required")
	}
	return r
}

// Email checks a bare email address.
func Email(email string) Result {
	var r Result
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != strings.TrimSpace(email) {
		r.add(FieldEmail, "%q is not a valid email address", email)
	}
	return r
}

// Color reports whether s is a #RRGGBB color.
func Color(s string) bool {
	return hexColor.MatchString(s)
}

// ResolveDate turns user input into a YYYY-MM-DD day relative to now.
// Empty input and "today" resolve to now's date; "yesterday" to the day before.
func ResolveDate(input string, now time.Time) (string, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "today":
		return now.Format(constants.DateFormat), nil
	case "yesterday":
		return now.AddDate(0, 0, -1).Format(constants.DateFormat), nil
	}
	t, err := time.ParseInLocation(constants.DateFormat, strings.TrimSpace(input), now.Location())
	if err != nil {
		return "", fmt.Errorf("invalid date %q (expected YYYY-MM-DD, today or yesterday)", input)
	}
	if t.After(now) {
		return "", fmt.Errorf("date %s is in the future", input)
	}
	return t.Format(constants.DateFormat), nil
}

// ParseMonth parses "YYYY-MM". Empty input yields now's month.
func ParseMonth(input string, now time.Time) (int, time.Month, error) {
	if strings.TrimSpace(input) == "" {
		return now.Year(), now.Month(), nil
	}
	t, err := time.Parse(constants.MonthFormat, strings.TrimSpace(input))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q (expected YYYY-MM)", input)
	}
	return t.Year(), t.Month(), nil
}

// Days checks a stats window length.
func Days(n int) error {
	if n < 1 || n > MaxStatsDays {
		return fmt.Errorf("days must be between 1 and %d, got %d", MaxStatsDays, n)
	}
	return nil
}
