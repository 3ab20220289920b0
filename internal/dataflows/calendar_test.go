package dataflows

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMarketCalendarWindow(t *testing.T) {
	events := GetMarketCalendar(7)
	require.NotEmpty(t, events)

	cutoff := time.Now().UTC().AddDate(0, 0, 8)
	for _, ev := range events {
		assert.True(t, ev.Date.Before(cutoff), "event %s outside window", ev.Event)
		assert.NotEmpty(t, ev.Importance)
	}

	full := GetMarketCalendar(30)
	assert.Greater(t, len(full), len(events))
}

func TestGetMarketCalendarDefaultsTwoWeeks(t *testing.T) {
	events := GetMarketCalendar(0)
	require.NotEmpty(t, events)
	cutoff := time.Now().UTC().AddDate(0, 0, 15)
	for _, ev := range events {
		assert.True(t, ev.Date.Before(cutoff))
	}
}
