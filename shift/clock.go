package shift

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MinutesPerDay is the length of a calendar day on the wall clock.
const MinutesPerDay = 24 * 60

// ClockTime is a wall-clock time of day, in minutes since midnight.
type ClockTime int

// NewClockTime builds a ClockTime from hour and minute.
func NewClockTime(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

// ParseClockTime accepts "15:04" and "15:04:05". Seconds must be zero;
// schedules are minute-granular.
func ParseClockTime(s string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid clock time %q (use HH:MM)", s)
	}
	fields := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || len(p) != 2 {
			return 0, fmt.Errorf("invalid clock time %q (use HH:MM)", s)
		}
		fields[i] = n
	}
	if fields[0] > 23 || fields[1] > 59 || (len(fields) == 3 && fields[2] != 0) {
		return 0, fmt.Errorf("clock time %q out of range", s)
	}
	return NewClockTime(fields[0], fields[1]), nil
}

// MustParseClockTime is ParseClockTime for literals.
func MustParseClockTime(s string) ClockTime {
	c, err := ParseClockTime(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c ClockTime) Hour() int   { return int(c) / 60 }
func (c ClockTime) Minute() int { return int(c) % 60 }

// Valid reports whether c lies in [00:00, 23:59].
func (c ClockTime) Valid() bool { return c >= 0 && c < MinutesPerDay }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// Duration converts c to an offset from midnight.
func (c ClockTime) Duration() time.Duration {
	return time.Duration(c) * time.Minute
}

func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ClockTime) UnmarshalText(b []byte) error {
	parsed, err := ParseClockTime(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// spanMinutes is the length of [start, end) on the wall clock, wrapping past
// midnight when end <= start. start == end is a full day.
func spanMinutes(start, end ClockTime) int {
	if end <= start {
		return int(end) + MinutesPerDay - int(start)
	}
	return int(end - start)
}
