// Package timecalc converts a start/end time-of-day pair into decimal hours.
package timecalc

import (
	"time"

	"github.com/shopspring/decimal"
)

var secondsPerHour = decimal.NewFromInt(3600)

// Hours returns the elapsed time between two times of day as decimal hours,
// rounded to two places (half away from zero). Only the hour, minute and
// second components are considered; both times are assumed to fall on the
// same calendar day, so crossing midnight yields a negative result that
// callers must reject. The two-place rounding makes the smallest non-zero
// resolution about 18 seconds.
func Hours(start, end time.Time) decimal.Decimal {
	delta := secondsOfDay(end) - secondsOfDay(start)
	return decimal.NewFromInt(delta).Div(secondsPerHour).Round(2)
}

func secondsOfDay(t time.Time) int64 {
	return int64(t.Hour())*3600 + int64(t.Minute())*60 + int64(t.Second())
}
