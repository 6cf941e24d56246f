package market

import (
	"fmt"
	"time"
)

// Trading window: 09:30–16:00 local exchange time, Monday through Friday.
const (
	openMinute  = 9*60 + 30
	closeMinute = 16 * 60
)

// Status reports whether a market is open at a given moment.
type Status struct {
	IsOpen      bool
	CurrentTime string
	Timezone    string
}

// StatusAt projects now into the given timezone and reports whether the
// market is open there. It is a pure function of (timezone, now); an unknown
// timezone yields a closed UTC status.
func StatusAt(timezone string, now time.Time) Status {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return Status{IsOpen: false, CurrentTime: "", Timezone: "UTC"}
	}

	local := now.In(loc)
	minutes := local.Hour()*60 + local.Minute()

	wd := local.Weekday()
	isWeekday := wd >= time.Monday && wd <= time.Friday
	isOpen := isWeekday && minutes >= openMinute && minutes < closeMinute

	return Status{
		IsOpen:      isOpen,
		CurrentTime: fmt.Sprintf("%02d:%02d", local.Hour(), local.Minute()),
		Timezone:    timezone,
	}
}
