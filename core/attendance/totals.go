package attendance

// MonthlyTotals are the counts of each countable mark across the four weeks of a month.
type MonthlyTotals struct {
	Present  int `json:"present_count"`
	Late     int `json:"late_count"`
	VeryLate int `json:"very_late_count"`
	Absent   int `json:"absent_count"`
}

// Aggregate counts the 20 day marks of the month. Unset marks are left out of every count.
func Aggregate(weeks [WeeksPerMonth]WeeklyRecord) MonthlyTotals {
	var t MonthlyTotals
	for _, wr := range weeks {
		for _, m := range wr.Days {
			switch m {
			case Present:
				t.Present++
			case Late:
				t.Late++
			case VeryLate:
				t.VeryLate++
			case Absent:
				t.Absent++
			}
		}
	}
	return t
}

// Recorded is the number of days carrying a mark other than Unset.
func (t MonthlyTotals) Recorded() int {
	return t.Present + t.Late + t.VeryLate + t.Absent
}

// AttendanceRate is the share of recorded days the student attended, late arrivals included.
// It is 0 when nothing has been recorded yet.
func (t MonthlyTotals) AttendanceRate() float64 {
	rec := t.Recorded()
	if rec == 0 {
		return 0
	}
	return float64(t.Present+t.Late+t.VeryLate) / float64(rec)
}
