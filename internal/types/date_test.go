package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want int
	}{
		{"february non leap", Date(2025, time.February, 10), 28},
		{"february leap", Date(2024, time.February, 10), 29},
		{"april", Date(2025, time.April, 30), 30},
		{"december", Date(2025, time.December, 1), 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysInMonth(tt.date))
		})
	}
}

func TestDaysInclusive(t *testing.T) {
	assert.Equal(t, 1, DaysInclusive(Date(2025, time.March, 1), Date(2025, time.March, 1)))
	assert.Equal(t, 31, DaysInclusive(Date(2025, time.March, 1), Date(2025, time.March, 31)))
	assert.Equal(t, 0, DaysInclusive(Date(2025, time.March, 2), Date(2025, time.March, 1)))

	// time of day is ignored
	start := time.Date(2025, time.March, 1, 23, 59, 0, 0, time.UTC)
	end := time.Date(2025, time.March, 2, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 2, DaysInclusive(start, end))
}

func TestAddClampedDate(t *testing.T) {
	assert.Equal(t, Date(2025, time.February, 28), AddClampedDate(Date(2025, time.January, 31), 0, 1, 0))
	assert.Equal(t, Date(2024, time.February, 29), AddClampedDate(Date(2024, time.January, 31), 0, 1, 0))
	assert.Equal(t, Date(2026, time.January, 15), AddClampedDate(Date(2025, time.November, 15), 0, 2, 0))
	assert.Equal(t, Date(2024, time.December, 31), AddClampedDate(Date(2025, time.January, 31), 0, -1, 0))
}
