/*
calendar.go - Business-day date arithmetic (the SLA calculator)

PURPOSE:
  Deadlines in this system are expressed in business days: Saturdays and
  Sundays never count against an SLA. This file provides the Date type
  (day granularity, UTC) and the arithmetic used to compute due dates
  from a clock start and a policy.

BUSINESS-DAY SEMANTICS:
  AddBusinessDays(start, n) advances start by n weekday-only increments.
  The result is always itself a weekday. Example with n=3:

    Thu -> Fri, Mon, Tue        (weekend skipped)
    Fri -> Mon, Tue, Wed

  No public-holiday calendar is applied by default: the source material
  specifies none. The HolidayCalendar hook exists so one can be plugged
  in later without touching the arithmetic.

SEE ALSO:
  - statemachine.go: Compares due dates against the sweep date
  - escalate.go: Resets the clock and recomputes due dates
*/
package grievance

import "time"

// =============================================================================
// DATE - Day-granularity point in time
// =============================================================================

// Date is a calendar day in UTC. All SLA math happens at day granularity;
// intraday times only appear on audit timestamps.
type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its UTC calendar day.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return NewDate(u.Year(), u.Month(), u.Day())
}

func Today() Date { return DateOf(time.Now()) }

// Comparison
func (d Date) Before(other Date) bool        { return d.Time.Before(other.Time) }
func (d Date) After(other Date) bool         { return d.Time.After(other.Time) }
func (d Date) Equal(other Date) bool         { return d.Time.Equal(other.Time) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) IsZero() bool                  { return d.Time.IsZero() }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{Time: d.Time.AddDate(0, 0, n)} }

// DaysUntil returns the number of calendar days from d to other
// (negative if other is in the past).
func (d Date) DaysUntil(other Date) int {
	return int(other.Time.Sub(d.Time).Hours() / 24)
}

// Properties
func (d Date) Weekday() time.Weekday { return d.Time.Weekday() }
func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
func (d Date) IsBusinessDay() bool { return !d.IsWeekend() }

func (d Date) String() string { return d.Time.Format("2006-01-02") }

// =============================================================================
// HOLIDAY CALENDAR - Pluggable non-working days
// =============================================================================

// HolidayCalendar reports project-specific non-working days on top of the
// weekend rule. The engine ships with the no-op calendar only; see the
// design notes on the open holiday question.
type HolidayCalendar interface {
	IsHoliday(projectID ProjectID, date Date) bool
}

// NoHolidays is the default calendar: weekends only.
type NoHolidays struct{}

func (NoHolidays) IsHoliday(ProjectID, Date) bool { return false }

// =============================================================================
// BUSINESS-DAY ARITHMETIC
// =============================================================================

// AddBusinessDays advances start by n weekday increments, skipping
// Saturdays and Sundays. The result is always a weekday. n must be
// non-negative; n == 0 returns start unchanged.
func AddBusinessDays(start Date, n int) Date {
	return AddBusinessDaysWithCalendar(start, n, "", NoHolidays{})
}

// AddBusinessDaysWithCalendar is AddBusinessDays with holidays excluded
// as well.
func AddBusinessDaysWithCalendar(start Date, n int, project ProjectID, cal HolidayCalendar) Date {
	d := start
	for remaining := n; remaining > 0; {
		d = d.AddDays(1)
		if d.IsWeekend() || cal.IsHoliday(project, d) {
			continue
		}
		remaining--
	}
	return d
}

// BusinessDaysBetween counts the weekdays in (from, to]. Returns 0 when
// to is not after from.
func BusinessDaysBetween(from, to Date) int {
	count := 0
	for d := from.AddDays(1); d.BeforeOrEqual(to); d = d.AddDays(1) {
		if d.IsBusinessDay() {
			count++
		}
	}
	return count
}

// =============================================================================
// DUE-DATE INITIALIZATION
// =============================================================================

// InitializeDueDates sets both lane due dates from the case's clock start
// using the given policy. The policy must be the one resolved from the
// case's current region; callers re-resolve it after every region change.
func InitializeDueDates(c *Case, policy SLAPolicy) {
	c.AckDue = AddBusinessDays(c.ClockStart, policy.AckDays)
	c.ResolutionDue = AddBusinessDays(c.ClockStart, policy.ResolutionDays)
}
