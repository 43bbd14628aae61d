package engine

import (
	"fmt"
	"time"
)

// Urgency classifies how close a desk is to finishing. It drives display
// color only and never feeds arithmetic.
type Urgency int

const (
	UrgencyGreen Urgency = iota
	UrgencyAmber
	UrgencyRed
)

// FormatClockTime renders a wall-clock instant as 12-hour "H:MM AM/PM".
func FormatClockTime(epochMs int64) string {
	t := time.UnixMilli(epochMs).Local()
	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}
	meridiem := "AM"
	if t.Hour() >= 12 {
		meridiem = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", hour, t.Minute(), meridiem)
}

// FormatCountdown renders a duration as "MM:SS", switching to "H:MM:SS" once
// it reaches an hour. Negative input is clamped to zero.
func FormatCountdown(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	totalSeconds := ms / 1000
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if ms >= 3600000 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// ClassifyUrgency maps remaining time to a traffic-light band: green above
// 30 minutes, amber between 10 and 30 inclusive, red below (including done).
func ClassifyUrgency(remainingMs int64) Urgency {
	switch {
	case remainingMs > 30*60000:
		return UrgencyGreen
	case remainingMs >= 10*60000:
		return UrgencyAmber
	default:
		return UrgencyRed
	}
}

// IsFinished reports whether a countdown has run out.
func IsFinished(remainingMs int64) bool {
	return remainingMs <= 0
}
