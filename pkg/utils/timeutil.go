package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"wanderlust-service/internal/domain/errs"
)

const (
	DateLayout          = "2006-01-02"
	LocalDateTimeLayout = "2006-01-02T15:04"
	TimeOfDayLayout     = "15:04"
)

var (
	clockRegex = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
	dateRegex  = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)
)

// ParseDate parses an ISO calendar date
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", errs.ErrInvalidInput, s)
	}
	return d, nil
}

// ParseDateRange parses optional from/to dates. Empty strings yield nil.
// A to-date before the from-date fails with errs.ErrRange.
func ParseDateRange(from, to string) (*time.Time, *time.Time, error) {
	var fromDate, toDate *time.Time
	if strings.TrimSpace(from) != "" {
		d, err := ParseDate(from)
		if err != nil {
			return nil, nil, err
		}
		fromDate = &d
	}
	if strings.TrimSpace(to) != "" {
		d, err := ParseDate(to)
		if err != nil {
			return nil, nil, err
		}
		toDate = &d
	}
	if fromDate != nil && toDate != nil && toDate.Before(*fromDate) {
		return nil, nil, fmt.Errorf("%w: %s before %s", errs.ErrRange, to, from)
	}
	return fromDate, toDate, nil
}

// ParseLocalDateTime parses "YYYY-MM-DDTHH:MM" (seconds optional) as a
// wall-clock time without zone.
func ParseLocalDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{LocalDateTimeLayout, "2006-01-02T15:04:05", "2006-01-02 15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: local time %q must be YYYY-MM-DDTHH:MM", errs.ErrInvalidInput, s)
}

// TimeOfDay extracts the local "HH:MM" from an upstream timestamp. It
// accepts bare clock values ("6:35", "06:35:00") as well as full local
// timestamps ("2024-01-25 08:30+05:30", "2021-11-10T06:35:00.000"); any
// zone suffix is ignored.
func TimeOfDay(raw string) (string, error) {
	m := clockRegex.FindStringSubmatch(raw)
	if len(m) < 3 {
		return "", fmt.Errorf("%w: no time of day in %q", errs.ErrInvalidInput, raw)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return "", fmt.Errorf("%w: time of day out of range in %q", errs.ErrInvalidInput, raw)
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// DateOf returns the calendar date carried by an upstream timestamp, if any
func DateOf(raw string) (time.Time, bool) {
	m := dateRegex.FindString(raw)
	if m == "" {
		return time.Time{}, false
	}
	d, err := time.Parse(DateLayout, m)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// DayOffset computes how many days after departure the arrival falls.
// When both raw timestamps carry dates the date difference is used,
// otherwise an arrival at or before the departure clock time is taken
// as the next day.
func DayOffset(depRaw, arrRaw, dep, arr string) int {
	depDate, depOK := DateOf(depRaw)
	arrDate, arrOK := DateOf(arrRaw)
	if depOK && arrOK {
		return int(arrDate.Sub(depDate).Hours() / 24)
	}
	if arr <= dep {
		return 1
	}
	return 0
}

// ParseDurationMinutes converts "HH:MM" or "HH:MM:SS" into minutes
func ParseDurationMinutes(raw string) (int, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: duration %q must be HH:MM", errs.ErrInvalidInput, raw)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return 0, fmt.Errorf("%w: duration hours in %q", errs.ErrInvalidInput, raw)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("%w: duration minutes in %q", errs.ErrInvalidInput, raw)
	}
	return hours*60 + minutes, nil
}
