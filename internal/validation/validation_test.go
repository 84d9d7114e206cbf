package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/habitual/internal/models"
)

func TestHabitInput(t *testing.T) {
	tests := []struct {
		name       string
		in         models.HabitInput
		wantFields []IssueField
	}{
		{"valid", models.HabitInput{Name: "Water", Color: "#3B82F6"}, nil},
		{"default color", models.HabitInput{Name: "Water"}, nil},
		{"blank name", models.HabitInput{Name: "   "}, []IssueField{FieldName}},
		{"long name", models.HabitInput{Name: strings.Repeat("x", MaxHabitNameLen+1)}, []IssueField{FieldName}},
		{"bad color", models.HabitInput{Name: "Water", Color: "blue"}, []IssueField{FieldColor}},
		{"both", models.HabitInput{Color: "#12345"}, []IssueField{FieldName, FieldColor}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := HabitInput(tt.in)
			if len(r.Issues) != len(tt.wantFields) {
				t.Fatalf("issues = %+v, want fields %v", r.Issues, tt.wantFields)
			}
			for i, f := range tt.wantFields {
				if r.Issues[i].Field != f {
					t.Errorf("issue %d field = %s, want %s", i, r.Issues[i].Field, f)
				}
			}
			if (r.Err() != nil) != r.HasIssues() {
				t.Errorf("Err() = %v disagrees with HasIssues()", r.Err())
			}
		})
	}
}

func TestHabitUpdateChecksOnlyChangedFields(t *testing.T) {
	if r := HabitUpdate(models.HabitUpdate{}); r.HasIssues() {
		t.Errorf("empty update flagged: %+v", r.Issues)
	}
	empty := ""
	if r := HabitUpdate(models.HabitUpdate{Name: &empty}); !r.HasIssues() {
		t.Error("blank name not flagged")
	}
	bad := "#zzzzzz"
	if r := HabitUpdate(models.HabitUpdate{Color: &bad}); !r.HasIssues() {
		t.Error("bad color not flagged")
	}
}

func TestCredentials(t *testing.T) {
	if r := Credentials("ana@example.com", "pw"); r.HasIssues() {
		t.Errorf("valid credentials flagged: %s", r.FormatReport())
	}
	r := Credentials("ana", "")
	if len(r.Issues) != 2 {
		t.Fatalf("issues = %+v, want email and password", r.Issues)
	}
	if !strings.Contains(r.FormatReport(), "password is required") {
		t.Errorf("report = %q", r.FormatReport())
	}
}

func TestEmailRejectsDisplayNames(t *testing.T) {
	for _, in := range []string{"Ana <ana@example.com>", "ana", ""} {
		if !Email(in).HasIssues() {
			t.Errorf("Email(%q) should be rejected", in)
		}
	}
	if Email("ana@example.com").HasIssues() {
		t.Error("plain address should pass")
	}
}

func TestResolveDate(t *testing.T) {
	now := time.Date(2025, time.March, 1, 8, 0, 0, 0, time.Local)
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"", "2025-03-01", false},
		{"today", "2025-03-01", false},
		{"Yesterday", "2025-02-28", false},
		{"2025-02-14", "2025-02-14", false},
		{"2025-03-02", "", true},
		{"14/02/2025", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ResolveDate(tt.input, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveDate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ResolveDate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseMonth(t *testing.T) {
	now := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	year, month, err := ParseMonth("", now)
	if err != nil || year != 2025 || month != time.June {
		t.Errorf("ParseMonth(\"\") = %d, %v, %v", year, month, err)
	}
	year, month, err = ParseMonth("2024-12", now)
	if err != nil || year != 2024 || month != time.December {
		t.Errorf("ParseMonth(2024-12) = %d, %v, %v", year, month, err)
	}
	if _, _, err := ParseMonth("2024-13", now); err == nil {
		t.Error("month 13 accepted")
	}
}

func TestDays(t *testing.T) {
	for _, n := range []int{1, 30, MaxStatsDays} {
		if err := Days(n); err != nil {
			t.Errorf("Days(%d) = %v", n, err)
		}
	}
	for _, n := range []int{0, -1, MaxStatsDays + 1} {
		if err := Days(n); err == nil {
			t.Errorf("Days(%d) accepted", n)
		}
	}
}

func TestColor(t *testing.T) {
	if !Color("#a1B2c3") || Color("a1b2c3") || Color("#a1b2c") {
		t.Error("Color() misclassified input")
	}
}
