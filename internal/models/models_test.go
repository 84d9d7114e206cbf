package models

import (
	"encoding/json"
	"testing"
)

func TestIDAcceptsNumbersAndStrings(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ID
		out  string
	}{
		{name: "number", in: `{"id":1}`, want: "1", out: `{"id":1}`},
		{name: "string", in: `{"id":"abc-123"}`, want: "abc-123", out: `{"id":"abc-123"}`},
		{name: "numeric string", in: `{"id":"42"}`, want: "42", out: `{"id":42}`},
		{name: "null", in: `{"id":null}`, want: "", out: `{"id":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v struct {
				ID ID `json:"id"`
			}
			if err := json.Unmarshal([]byte(tt.in), &v); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if v.ID != tt.want {
				t.Errorf("ID = %q, want %q", v.ID, tt.want)
			}
			out, err := json.Marshal(v)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(out) != tt.out {
				t.Errorf("Marshal() = %s, want %s", out, tt.out)
			}
		})
	}
}

func TestIDRejectsGarbage(t *testing.T) {
	var id ID
	if err := id.UnmarshalJSON([]byte(`{}`)); err == nil {
		t.Error("expected error for object id")
	}
}

func TestHabitDecodesBackendShape(t *testing.T) {
	raw := `{"id":1,"name":"Water","emoji":"💧","category":"Health","color":"#3B82F6","current_streak":2,"longest_streak":5,"is_active":true}`
	var h Habit
	if err := json.Unmarshal([]byte(raw), &h); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if h.ID != "1" || h.Name != "Water" || h.CurrentStreak != 2 || h.LongestStreak != 5 || !h.IsActive {
		t.Errorf("unexpected habit: %+v", h)
	}
}

func TestHabitUpdateOmitsNilFields(t *testing.T) {
	name := "Read"
	out, err := json.Marshal(HabitUpdate{Name: &name})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"name":"Read"}` {
		t.Errorf("Marshal() = %s", out)
	}
	if (HabitUpdate{}).Empty() != true {
		t.Error("zero update should be empty")
	}
}

func TestStatusForDay(t *testing.T) {
	records := []ProgressRecord{
		{HabitID: "1", Date: "2024-03-01", Completed: true},
		{HabitID: "2", Date: "2024-03-01", Completed: true},
		{HabitID: "1", Date: "2024-03-02", Completed: true},
		{HabitID: "2", Date: "2024-03-02", Completed: false},
		{HabitID: "1", Date: "2024-03-03", Completed: false},
	}

	tests := []struct {
		day  string
		want DayStatus
	}{
		{"2024-03-01", DayComplete},
		{"2024-03-02", DayPartial},
		{"2024-03-03", DayMissed},
		{"2024-03-04", DayNone},
	}
	for _, tt := range tests {
		if got := StatusForDay(records, tt.day); got != tt.want {
			t.Errorf("StatusForDay(%s) = %s, want %s", tt.day, got, tt.want)
		}
	}
}

func TestSettingsApplyDefaults(t *testing.T) {
	s := Settings{DefaultCategory: "Mind"}
	in := s.ApplyDefaults(HabitInput{Name: "Meditate", Color: "#000000"})
	if in.Category != "Mind" {
		t.Errorf("Category = %q, want Mind", in.Category)
	}
	if in.Emoji != "✅" {
		t.Errorf("Emoji = %q, want default", in.Emoji)
	}
	if in.Color != "#000000" {
		t.Errorf("Color should be preserved, got %q", in.Color)
	}
	if got := s.WithDefaults().StatsDays; got != 30 {
		t.Errorf("StatsDays = %d, want 30", got)
	}
}
