package attendance

import "strings"

const (
	DaysPerWeek   = 5
	WeeksPerMonth = 4
)

// Mark is one day's attendance value. The zero value is Unset, which is never counted.
type Mark string

const (
	Unset    Mark = ""
	Present  Mark = "present"
	Late     Mark = "late"
	VeryLate Mark = "very_late"
	Absent   Mark = "absent"
)

// CountedMarks are the marks that appear in MonthlyTotals.
var CountedMarks = [...]Mark{Present, Late, VeryLate, Absent}

func (m Mark) Valid() bool {
	switch m {
	case Unset, Present, Late, VeryLate, Absent:
		return true
	}
	return false
}

func ParseMark(s string) (Mark, error) {
	m := Mark(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return Unset, ErrInvalidMark
	}
	return m, nil
}

// Weekday is a teaching day. The institute week runs Sunday to Thursday.
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
)

var (
	Weekdays     = [DaysPerWeek]Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday}
	weekdayNames = [DaysPerWeek]string{"sun", "mon", "tue", "wed", "thu"}
)

func (d Weekday) Valid() bool {
	return d >= Sunday && d <= Thursday
}

func (d Weekday) String() string {
	if !d.Valid() {
		return ""
	}
	return weekdayNames[d]
}

// ParseWeekday accepts short ("sun") or long ("sunday") day names, in any case.
func ParseWeekday(s string) (Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) >= 3 {
		for i, name := range weekdayNames {
			if strings.HasPrefix(s, name) && (len(s) == 3 || strings.HasPrefix(fullWeekdayNames[i], s)) {
				return Weekday(i), nil
			}
		}
	}
	return 0, ErrInvalidWeekday
}

var fullWeekdayNames = [DaysPerWeek]string{"sunday", "monday", "tuesday", "wednesday", "thursday"}

func validWeek(week int) bool {
	return week >= 1 && week <= WeeksPerMonth
}
