package nga

import "time"

// Clock actions. The unix device exposes the same list after its own.
const (
	clockTime = iota
	clockDay
	clockMonth
	clockYear
	clockHour
	clockMinute
	clockSecond
	clockDayUTC
	clockMonthUTC
	clockYearUTC
	clockHourUTC
	clockMinuteUTC
	clockSecondUTC
)

func (v *VM[C]) devClock() {
	v.clockAction(v.action())
}

func (v *VM[C]) clockAction(a int64) {
	now := v.now()
	if a == clockTime {
		v.push(C(now.Unix()))
		return
	}
	if a < clockTime || a > clockSecondUTC {
		v.trap(IllegalAction)
	}
	t := now.Local()
	if a >= clockDayUTC {
		t = now.UTC()
		a -= clockDayUTC - clockDay
	}
	v.push(C(datePart(t, a)))
}

func datePart(t time.Time, a int64) int {
	switch a {
	case clockDay:
		return t.Day()
	case clockMonth:
		return int(t.Month())
	case clockYear:
		return t.Year()
	case clockHour:
		return t.Hour()
	case clockMinute:
		return t.Minute()
	}
	return t.Second()
}
