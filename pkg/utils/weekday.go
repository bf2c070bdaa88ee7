package utils

import (
	"fmt"
	"sort"
	"strings"

	"wanderlust-service/internal/domain/errs"
)

var weekdayCodes = map[string]byte{
	"mon": '1', "monday": '1',
	"tue": '2', "tues": '2', "tuesday": '2',
	"wed": '3', "wednesday": '3',
	"thu": '4', "thur": '4', "thurs": '4', "thursday": '4',
	"fri": '5', "friday": '5',
	"sat": '6', "saturday": '6',
	"sun": '7', "sunday": '7',
}

// NormalizeWeekdays maps day abbreviations to the operating-day encoding:
// ascending digits 1 (Monday) to 7 (Sunday) without separators or
// duplicates. {"Wed","Mon","Fri"} becomes "135".
func NormalizeWeekdays(days []string) (string, error) {
	seen := make(map[byte]bool, 7)
	digits := make([]byte, 0, 7)
	for _, day := range days {
		code, ok := weekdayCodes[strings.ToLower(strings.TrimSpace(day))]
		if !ok {
			return "", fmt.Errorf("%w: %q", errs.ErrUnknownWeekday, day)
		}
		if !seen[code] {
			seen[code] = true
			digits = append(digits, code)
		}
	}
	sort.Slice(digits, func(i, j int) bool { return digits[i] < digits[j] })
	return string(digits), nil
}
