package library

import "time"

var _ Clocker = (*Clock)(nil) // ensure Clock implements Clocker.

// DefaultLoanPeriod is how long an issued book may stay out.
const DefaultLoanPeriod = 14 * 24 * time.Hour

// dueDateLayout is the zero-padded YYYY-MM-DD form stored in Book.DueDate.
const dueDateLayout = "2006-01-02"

// Clocker is an interface for getting current real time.
type Clocker interface {
	Now() time.Time
}

// Clock implements the Clocker interface in the local timezone.
type Clock struct {
	tz *time.Location
}

// NewClock returns a ready to use Clock. A nil location means time.Local.
func NewClock(tz *time.Location) *Clock {
	if tz == nil {
		tz = time.Local
	}
	return &Clock{tz}
}

// Now provides current clock time.
func (ck *Clock) Now() time.Time {
	return time.Now().In(ck.tz)
}

// DueDate adds whole calendar days to the date part of now. time.Date
// normalizes month and year overflow.
func DueDate(now time.Time, loan time.Duration) string {
	days := int(loan / (24 * time.Hour))
	y, m, d := now.Date()
	return time.Date(y, m, d+days, 0, 0, 0, 0, now.Location()).Format(dueDateLayout)
}

func validDueDate(s string) bool {
	_, err := time.Parse(dueDateLayout, s)
	return err == nil
}
