package energy

import "time"

// Window is a half-open interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// DayWindow returns the calendar day containing t in loc. The day is built
// with AddDate so DST transitions yield 23 or 25 hour windows.
func DayWindow(t time.Time, loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

// Previous returns the calendar day before w.
func (w Window) Previous() Window {
	return Window{Start: w.Start.AddDate(0, 0, -1), End: w.Start}
}

// Date formats the window's first day as YYYY-MM-DD.
func (w Window) Date() string {
	return w.Start.Format(time.DateOnly)
}
