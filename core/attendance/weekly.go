package attendance

import (
	"encoding/json"
	"math"

	"github.com/pkg/errors"
)

// WeeklyRecord holds the five day marks of one week plus the optional weekly assessment score.
type WeeklyRecord struct {
	Week       int
	Days       [DaysPerWeek]Mark
	Assessment *float64
}

func NewWeeklyRecord(week int) WeeklyRecord {
	return WeeklyRecord{Week: week}
}

func (wr WeeklyRecord) Mark(day Weekday) Mark {
	if !day.Valid() {
		return Unset
	}
	return wr.Days[day]
}

type weeklyRecordJSON struct {
	Week       int             `json:"week"`
	Days       map[string]Mark `json:"days"`
	Assessment *float64        `json:"weekly_assessment"`
}

// MarshalJSON always emits the five day keys, Unset marks included.
func (wr WeeklyRecord) MarshalJSON() ([]byte, error) {
	days := make(map[string]Mark, DaysPerWeek)
	for _, d := range Weekdays {
		days[d.String()] = wr.Days[d]
	}
	return json.Marshal(weeklyRecordJSON{Week: wr.Week, Days: days, Assessment: wr.Assessment})
}

// UnmarshalJSON treats missing day keys as Unset.
func (wr *WeeklyRecord) UnmarshalJSON(data []byte) error {
	var raw weeklyRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !validWeek(raw.Week) {
		return ErrInvalidWeek
	}

	var days [DaysPerWeek]Mark
	for key, m := range raw.Days {
		d, err := ParseWeekday(key)
		if err != nil {
			return errors.Wrapf(err, "day %q", key)
		}
		if !m.Valid() {
			return errors.Wrapf(ErrInvalidMark, "day %q", key)
		}
		days[d] = m
	}
	if raw.Assessment != nil && !isFinite(*raw.Assessment) {
		return ErrNotFinite
	}

	wr.Week = raw.Week
	wr.Days = days
	wr.Assessment = raw.Assessment
	return nil
}

// EmptyWeeks returns the four weeks of a month with every day Unset.
func EmptyWeeks() [WeeksPerMonth]WeeklyRecord {
	var weeks [WeeksPerMonth]WeeklyRecord
	for i := range weeks {
		weeks[i] = NewWeeklyRecord(i + 1)
	}
	return weeks
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
