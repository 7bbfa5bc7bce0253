package term

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	weekdayNames = [7]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

	errInvalidWeekday = errors.New("invalid weekday")
)

// Weekdays is the set of days of the week on which progress may be recorded.
// Bit i is set when time.Weekday(i) is allowed.
type Weekdays uint8

// NewWeekdays returns the set holding exactly days.
func NewWeekdays(days ...time.Weekday) Weekdays {
	var w Weekdays
	for _, d := range days {
		w = w.With(d)
	}
	return w
}

// SchoolDays is monday to friday.
var SchoolDays = NewWeekdays(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday)

func (w Weekdays) Has(d time.Weekday) bool {
	return d >= time.Sunday && d <= time.Saturday && w&(1<<uint(d)) != 0
}

func (w Weekdays) With(d time.Weekday) Weekdays {
	if d < time.Sunday || d > time.Saturday {
		return w
	}
	return w | 1<<uint(d)
}

// Days returns the allowed days, sunday first.
func (w Weekdays) Days() []time.Weekday {
	days := make([]time.Weekday, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if w.Has(d) {
			days = append(days, d)
		}
	}
	return days
}

// Names returns the lower-case english names of the allowed days, sunday first.
func (w Weekdays) Names() []string {
	days := w.Days()
	names := make([]string, 0, len(days))
	for _, d := range days {
		names = append(names, weekdayNames[d])
	}
	return names
}

func (w Weekdays) String() string {
	return strings.Join(w.Names(), ",")
}

// ParseWeekday accepts a 0-6 index (0 = sunday) or a lower-case english day name.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if i, err := strconv.Atoi(s); err == nil {
		if i < 0 || i > 6 {
			return 0, errors.Wrapf(errInvalidWeekday, "%d", i)
		}
		return time.Weekday(i), nil
	}
	for i, name := range weekdayNames {
		if name == s {
			return time.Weekday(i), nil
		}
	}
	return 0, errors.Wrapf(errInvalidWeekday, "%q", s)
}

// ParseWeekdays builds a fresh set from day identifiers (see ParseWeekday).
// Days not listed are not allowed.
func ParseWeekdays(days ...string) (Weekdays, error) {
	var w Weekdays
	for _, s := range days {
		d, err := ParseWeekday(s)
		if err != nil {
			return 0, err
		}
		w = w.With(d)
	}
	return w, nil
}

func (w Weekdays) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.Names())
}

// UnmarshalJSON accepts a list mixing day indexes and day names, eg. `[1, "tuesday"]`.
func (w *Weekdays) UnmarshalJSON(data []byte) error {
	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	days := make([]string, 0, len(raw))
	for _, v := range raw {
		days = append(days, fmt.Sprint(v))
	}
	parsed, err := ParseWeekdays(days...)
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// Scan implements the sql.Scanner interface.
func (w *Weekdays) Scan(value interface{}) error {
	switch v := value.(type) {
	case int64:
		*w = Weekdays(v)
	case nil:
		*w = 0
	default:
		return fmt.Errorf("term.Weekdays: cannot scan %T", value)
	}
	return nil
}

// Value implements the driver.Valuer interface.
func (w Weekdays) Value() (driver.Value, error) {
	return int64(w), nil
}
