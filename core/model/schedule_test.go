package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDriveTime(t *testing.T) {
	cases := map[int]string{0: "0m", 45: "45m", 60: "1h 0m", 65: "1h 5m", 110: "1h 50m"}
	for in, want := range cases {
		assert.Equal(t, want, FormatDriveTime(in), "minutes=%d", in)
	}
}

func TestWeekdayName(t *testing.T) {
	assert.Equal(t, "Monday", WeekdayName(1))
	assert.Equal(t, "Friday", WeekdayName(5))
	assert.Equal(t, "Day 6", WeekdayName(6))
	assert.False(t, ValidWeekday(0))
	assert.True(t, ValidWeekday(3))
}

func TestAddressString(t *testing.T) {
	a := Address{Street: "123 Pine St", City: "San Francisco", State: "CA", Zip: "94109"}
	assert.Equal(t, "123 Pine St, San Francisco, CA", a.String())
	assert.Equal(t, "Oakland", Address{City: "Oakland"}.String())
}

func TestDefaultAvailabilities(t *testing.T) {
	av := DefaultAvailabilities()
	if assert.Len(t, av, 5) {
		assert.Equal(t, 1, av[0].Day)
		assert.Equal(t, 5, av[4].Day)
		assert.Equal(t, "09:00", av[2].Start)
		assert.Equal(t, "17:00", av[2].End)
	}
}
