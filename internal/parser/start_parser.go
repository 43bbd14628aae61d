package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParseStartTime parses the scheduled start of a session.
// Supported formats:
// - HH:MM 24-hour (e.g., "09:30", "14:00") — today's date
// - H:MMam / H:MMpm (e.g., "9:30am", "2:00 pm") — today's date
// - dd/mm/yyyy HH:MM (e.g., "15/06/2026 09:30")
// An empty input means "start now".
func ParseStartTime(input string, now time.Time) (time.Time, error) {
	if strings.TrimSpace(input) == "" {
		return now, nil
	}

	input = strings.TrimSpace(input)

	if start, err := parseDateTime(input, now); err == nil {
		return start, nil
	}
	if start, err := parseMeridiemTime(input, now); err == nil {
		return start, nil
	}
	if start, err := parseClockTime(input, now); err == nil {
		return start, nil
	}

	return time.Time{}, fmt.Errorf("invalid start time. Use: HH:MM, H:MMam/pm, or dd/mm/yyyy HH:MM")
}

// parseClockTime parses 24-hour HH:MM on today's date
func parseClockTime(input string, now time.Time) (time.Time, error) {
	clockRegex := regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	matches := clockRegex.FindStringSubmatch(input)
	if len(matches) != 3 {
		return time.Time{}, fmt.Errorf("invalid time format")
	}

	hour, _ := strconv.Atoi(matches[1])
	minute, _ := strconv.Atoi(matches[2])
	if hour > 23 {
		return time.Time{}, fmt.Errorf("hour must be between 0 and 23")
	}
	if minute > 59 {
		return time.Time{}, fmt.Errorf("minute must be between 0 and 59")
	}

	return time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location()), nil
}

// parseMeridiemTime parses H:MMam / H:MMpm on today's date
func parseMeridiemTime(input string, now time.Time) (time.Time, error) {
	meridiemRegex := regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*([aApP][mM])$`)
	matches := meridiemRegex.FindStringSubmatch(input)
	if len(matches) != 4 {
		return time.Time{}, fmt.Errorf("invalid time format")
	}

	hour, _ := strconv.Atoi(matches[1])
	minute, _ := strconv.Atoi(matches[2])
	if hour < 1 || hour > 12 {
		return time.Time{}, fmt.Errorf("hour must be between 1 and 12")
	}
	if minute > 59 {
		return time.Time{}, fmt.Errorf("minute must be between 0 and 59")
	}

	hour = hour % 12
	if strings.EqualFold(matches[3], "pm") {
		hour += 12
	}

	return time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location()), nil
}

// parseDateTime parses dd/mm/yyyy HH:MM
func parseDateTime(input string, now time.Time) (time.Time, error) {
	dateTimeRegex := regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})\s+(\d{1,2}):(\d{2})$`)
	matches := dateTimeRegex.FindStringSubmatch(input)
	if len(matches) != 6 {
		return time.Time{}, fmt.Errorf("invalid date format")
	}

	day, _ := strconv.Atoi(matches[1])
	month, _ := strconv.Atoi(matches[2])
	year, _ := strconv.Atoi(matches[3])
	hour, _ := strconv.Atoi(matches[4])
	minute, _ := strconv.Atoi(matches[5])

	if day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("day must be between 1 and 31")
	}
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("month must be between 1 and 12")
	}
	if hour > 23 || minute > 59 {
		return time.Time{}, fmt.Errorf("invalid time of day")
	}

	start := time.Date(year, time.Month(month), day, hour, minute, 0, 0, now.Location())

	// Check the date is real (handles leap years, short months)
	if start.Day() != day || start.Month() != time.Month(month) || start.Year() != year {
		return time.Time{}, fmt.Errorf("invalid date")
	}

	return start, nil
}
