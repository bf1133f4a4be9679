package utils

import (
	"testing"
	"time"
)

func TestFormatCalendarDate(t *testing.T) {
	ts := time.Date(2025, 3, 7, 23, 59, 59, 0, time.UTC)
	if got := FormatCalendarDate(ts); got != "2025-03-07" {
		t.Fatalf("FormatCalendarDate = %q", got)
	}
}
