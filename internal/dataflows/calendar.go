package dataflows

import (
	"time"

	"github.com/aletheia-intel/aletheia/models"
)

// calendarTemplate describes one recurring release relative to now.
// There is no free machine-readable calendar feed, so upcoming events
// are approximated from the typical release cadence.
type calendarTemplate struct {
	daysAhead  int
	clock      string
	event      string
	country    string
	importance string
}

var calendarTemplates = []calendarTemplate{
	{1, "08:30", "Initial Jobless Claims", "US", "Medium"},
	{2, "10:00", "Consumer Sentiment (UMich)", "US", "Medium"},
	{5, "08:30", "Consumer Price Index (CPI)", "US", "High"},
	{7, "08:30", "Producer Price Index (PPI)", "US", "Medium"},
	{9, "14:00", "FOMC Rate Decision", "US", "High"},
	{12, "08:30", "Retail Sales", "US", "Medium"},
	{16, "08:30", "Nonfarm Payrolls", "US", "High"},
	{19, "08:30", "GDP (Advance Estimate)", "US", "High"},
	{23, "10:00", "ISM Manufacturing PMI", "US", "Medium"},
	{27, "08:30", "Core PCE Price Index", "US", "High"},
}

// GetMarketCalendar returns approximate upcoming economic releases
// within the next daysAhead days.
func GetMarketCalendar(daysAhead int) []*models.CalendarEvent {
	if daysAhead <= 0 {
		daysAhead = 14
	}
	now := time.Now().UTC().Truncate(24 * time.Hour)

	events := make([]*models.CalendarEvent, 0, len(calendarTemplates))
	for _, tmpl := range calendarTemplates {
		if tmpl.daysAhead > daysAhead {
			continue
		}
		events = append(events, &models.CalendarEvent{
			Date:       now.AddDate(0, 0, tmpl.daysAhead),
			Time:       tmpl.clock,
			Event:      tmpl.event,
			Country:    tmpl.country,
			Importance: tmpl.importance,
		})
	}
	return events
}
