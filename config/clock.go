package config

import (
	"time"

	"presensi/domain"
)

type schoolClock struct {
	loc *time.Location
}

// NewSchoolClock builds the Clock every "today"/"now" derivation goes
// through. The zone comes from SCHOOL_TZ so the host machine's
// timezone never leaks into attendance dates.
func NewSchoolClock() (domain.Clock, error) {
	loc, err := time.LoadLocation(GetSchoolTimezone())
	if err != nil {
		return nil, err
	}
	return &schoolClock{loc: loc}, nil
}

func (c *schoolClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *schoolClock) Today() time.Time {
	now := c.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, c.loc)
}

// DayOfWeek returns ISO numbering, 1=Monday through 7=Sunday.
func (c *schoolClock) DayOfWeek(t time.Time) int {
	wd := int(t.In(c.loc).Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
