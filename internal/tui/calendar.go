package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
)

var dayGlyphs = map[models.DayStatus]string{
	models.DayNone:     " ",
	models.DayMissed:   "✗",
	models.DayPartial:  "◐",
	models.DayComplete: "✓",
}

var dayStyles = map[models.DayStatus]lipgloss.Style{
	models.DayNone:     lipgloss.NewStyle(),
	models.DayMissed:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	models.DayPartial:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	models.DayComplete: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
}

// RenderCalendar draws a month grid, weeks starting on Monday, marking every
// day with the status of its progress records. today (YYYY-MM-DD) is
// highlighted when it falls in the month.
func RenderCalendar(year int, month time.Month, records []models.ProgressRecord, today string) string {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()

	var b strings.Builder
	title := first.Format("January 2006")
	width := 7*4 - 1
	fmt.Fprintf(&b, "%s\n", lipgloss.PlaceHorizontal(width, lipgloss.Center, calendarTitleStyle.Render(title)))
	b.WriteString("Mo  Tu  We  Th  Fr  Sa  Su\n")

	offset := (int(first.Weekday()) + 6) % 7
	cells := make([]string, 0, offset+days)
	for i := 0; i < offset; i++ {
		cells = append(cells, "   ")
	}
	for d := 1; d <= days; d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, time.UTC).Format(constants.DateFormat)
		status := models.StatusForDay(records, date)
		cell := dayStyles[status].Render(fmt.Sprintf("%2d%s", d, dayGlyphs[status]))
		if date == today {
			cell = todayStyle.Render(cell)
		}
		cells = append(cells, cell)
	}

	for i := 0; i < len(cells); i += 7 {
		end := min(i+7, len(cells))
		b.WriteString(strings.TrimRight(strings.Join(cells[i:end], " "), " "))
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render("✓ complete  ◐ partial  ✗ missed"))
	return b.String()
}
