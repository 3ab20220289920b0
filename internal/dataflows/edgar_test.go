package dataflows

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEdgarRecentRowsUsesShortestList(t *testing.T) {
	recent := edgarRecent{
		Form:            []string{"10-K", "10-Q", "8-K"},
		AccessionNumber: []string{"0001-24-000001", "0001-24-000002"},
		PrimaryDocument: []string{"a.htm", "b.htm", "c.htm"},
		FilingDate:      []string{"2026-02-01", "2026-05-01", "2026-08-01"},
	}
	assert.Equal(t, 2, recent.rows())
}

func TestEdgarRecentRowsEqualLists(t *testing.T) {
	recent := edgarRecent{
		Form:            []string{"10-K"},
		AccessionNumber: []string{"0001-24-000001"},
		PrimaryDocument: []string{"a.htm"},
		FilingDate:      []string{"2026-02-01"},
	}
	assert.Equal(t, 1, recent.rows())
	assert.Zero(t, edgarRecent{}.rows())
}
