// utils/dates.go - Date presentation helpers
package utils

import "time"

// FormatCalendarDate renders a timestamp at calendar-date precision, the
// granularity used for reviewer due dates.
func FormatCalendarDate(t time.Time) string {
	return t.Format("2006-01-02")
}
