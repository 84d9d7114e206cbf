package storage

import (
	"testing"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
)

func TestSettingsPairsScanBack(t *testing.T) {
	want := models.Settings{
		APIURL:          "http://localhost:5000/api",
		DefaultEmoji:    "📚",
		DefaultCategory: "Learning",
		DefaultColor:    "#F59E0B",
		StatsDays:       14,
	}
	rows := map[string]string{}
	for _, kv := range SettingsPairs(want) {
		rows[kv[0]] = kv[1]
	}
	got, err := ScanSettings(rows)
	if err != nil {
		t.Fatalf("ScanSettings failed: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestScanSettingsRejectsBadDays(t *testing.T) {
	_, err := ScanSettings(map[string]string{constants.SettingStatsDays: "weekly"})
	if err == nil {
		t.Error("expected error for non-numeric stats_days")
	}
}

func TestScanSettingsIgnoresUnknownKeys(t *testing.T) {
	got, err := ScanSettings(map[string]string{"day_start": "07:00", constants.SettingDefaultEmoji: "🔥"})
	if err != nil {
		t.Fatal(err)
	}
	if got.DefaultEmoji != "🔥" {
		t.Errorf("DefaultEmoji = %q", got.DefaultEmoji)
	}
}
