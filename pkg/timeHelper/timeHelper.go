package timehelper

import "time"

const DateLayout = "2006-01-02"

// GetTodaysDateString is today's DateKey in loc.
func GetTodaysDateString(loc *time.Location) string {
	return DateKey(time.Now(), loc)
}

// DateKey formats t as 'YYYY-MM-DD' in loc. A nil loc means UTC.
func DateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

// StartOfDay returns midnight of t's day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
