package planner

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// SlotMinutes is the width of one backend slot.
const SlotMinutes = 30

// EndTime adds minutes to an "HH:mm" start label. Minute overflow carries into
// the hour. Unless wrapMidnight is set the hour is not reduced modulo 24, so
// "23:30" + 45 yields "24:15".
func EndTime(start string, minutes int, wrapMidnight bool) (string, error) {
	hour, minute, err := parseClock(start)
	if err != nil {
		return "", err
	}
	if minutes < 0 {
		return "", errors.New("duration must not be negative")
	}
	total := hour*60 + minute + minutes
	endHour := total / 60
	endMinute := total % 60
	if wrapMidnight {
		endHour %= 24
	}
	return fmt.Sprintf("%02d:%02d", endHour, endMinute), nil
}

// UnitsFor returns how many consecutive slots a booking of minutes occupies.
func UnitsFor(minutes int) int {
	units := (minutes + SlotMinutes - 1) / SlotMinutes
	if units < 1 {
		return 1
	}
	return units
}

// NormalizeClock renders a "H:mm" or "HH:mm:ss" label as "HH:mm".
func NormalizeClock(label string) (string, error) {
	hour, minute, err := parseClock(label)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

func parseClock(label string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(label), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, fmt.Errorf("invalid time %q", label)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", label)
	}
	minute, ok := sexagesimal(parts[1])
	if !ok {
		return 0, 0, fmt.Errorf("invalid minute in %q", label)
	}
	if len(parts) == 3 {
		if _, ok := sexagesimal(parts[2]); !ok {
			return 0, 0, fmt.Errorf("invalid second in %q", label)
		}
	}
	return hour, minute, nil
}

// sexagesimal parses a two-digit 00-59 minute or second field.
func sexagesimal(field string) (int, bool) {
	if len(field) != 2 || field[0] < '0' || field[0] > '5' || field[1] < '0' || field[1] > '9' {
		return 0, false
	}
	return int(field[0]-'0')*10 + int(field[1]-'0'), true
}
