package types

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	ierr "github.com/flexprice/leasebill/internal/errors"
)

// Period is an inclusive range of calendar days [Start, End]
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewPeriod builds a period truncated to whole days
func NewPeriod(start, end time.Time) Period {
	return Period{Start: TruncateToDay(start), End: TruncateToDay(end)}
}

func (p Period) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() {
		return ierr.NewError("period start and end are required").
			WithHint("Please provide both a period start and end").
			Mark(ierr.ErrValidation)
	}
	if p.End.Before(p.Start) {
		return ierr.NewError("period end is before period start").
			WithHint("Period end must not be before period start").
			WithReportableDetails(map[string]any{
				"start": p.Start,
				"end":   p.End,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Days returns the number of calendar days in the period
func (p Period) Days() int {
	return DaysInclusive(p.Start, p.End)
}

// Contains reports whether the day of t lies in the period
func (p Period) Contains(t time.Time) bool {
	d := TruncateToDay(t)
	return !d.Before(p.Start) && !d.After(p.End)
}

// Overlap returns the intersection of two periods
func (p Period) Overlap(other Period) (Period, bool) {
	o := Period{Start: MaxTime(p.Start, other.Start), End: MinTime(p.End, other.End)}
	if o.End.Before(o.Start) {
		return Period{}, false
	}
	return o, true
}

// ClampOpen intersects the period with [start, end] where a nil end is open-ended
func (p Period) ClampOpen(start time.Time, end *time.Time) (Period, bool) {
	other := Period{Start: TruncateToDay(start), End: p.End}
	if end != nil {
		other.End = TruncateToDay(*end)
	}
	return p.Overlap(other)
}

func (p Period) String() string {
	return fmt.Sprintf("%s..%s", p.Start.Format(time.DateOnly), p.End.Format(time.DateOnly))
}

// PeriodKey names the period an invoice run bills: YYYY-MM for a calendar
// month or YYYY-Www for an ISO week.
type PeriodKey string

var (
	monthlyKeyPattern = regexp.MustCompile(`^(\d{4})-(0[1-9]|1[0-2])$`)
	weeklyKeyPattern  = regexp.MustCompile(`^(\d{4})-W(0[1-9]|[1-4]\d|5[0-3])$`)
)

// ParsePeriodKey validates the key format
func ParsePeriodKey(s string) (PeriodKey, error) {
	if monthlyKeyPattern.MatchString(s) {
		return PeriodKey(s), nil
	}
	if m := weeklyKeyPattern.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		week, _ := strconv.Atoi(m[2])
		// week 53 only exists in long ISO years
		if _, last := Date(year, time.December, 28).ISOWeek(); week > last {
			return "", invalidPeriodKey(s)
		}
		return PeriodKey(s), nil
	}
	return "", invalidPeriodKey(s)
}

func invalidPeriodKey(s string) error {
	return ierr.NewErrorf("invalid period key %q", s).
		WithHint("Period key must look like 2025-03 or 2025-W10").
		WithReportableDetails(map[string]any{
			"period_key": s,
		}).
		Mark(ierr.ErrValidation)
}

// MonthlyPeriodKey returns the YYYY-MM key of the month containing t
func MonthlyPeriodKey(t time.Time) PeriodKey {
	return PeriodKey(t.UTC().Format("2006-01"))
}

// WeeklyPeriodKey returns the YYYY-Www key of the ISO week containing t
func WeeklyPeriodKey(t time.Time) PeriodKey {
	year, week := t.UTC().ISOWeek()
	return PeriodKey(fmt.Sprintf("%04d-W%02d", year, week))
}

func (k PeriodKey) String() string {
	return string(k)
}

func (k PeriodKey) Validate() error {
	_, err := ParsePeriodKey(string(k))
	return err
}

func (k PeriodKey) IsMonthly() bool {
	return monthlyKeyPattern.MatchString(string(k))
}

func (k PeriodKey) IsWeekly() bool {
	return weeklyKeyPattern.MatchString(string(k))
}

// MonthStart returns the first day of a monthly key
func (k PeriodKey) MonthStart() (time.Time, error) {
	if !k.IsMonthly() {
		return time.Time{}, invalidPeriodKey(string(k))
	}
	t, err := time.Parse("2006-01", string(k))
	if err != nil {
		return time.Time{}, invalidPeriodKey(string(k))
	}
	return t.UTC(), nil
}

// Window returns the calendar range named by the key: the whole month for
// a monthly key, Monday through Sunday for a weekly key.
func (k PeriodKey) Window() (Period, error) {
	if k.IsMonthly() {
		start, err := k.MonthStart()
		if err != nil {
			return Period{}, err
		}
		return Period{Start: start, End: start.AddDate(0, 1, -1)}, nil
	}

	m := weeklyKeyPattern.FindStringSubmatch(string(k))
	if m == nil {
		return Period{}, invalidPeriodKey(string(k))
	}
	year, _ := strconv.Atoi(m[1])
	week, _ := strconv.Atoi(m[2])

	// Jan 4 always falls in ISO week 1
	jan4 := Date(year, time.January, 4)
	offset := (int(jan4.Weekday()) + 6) % 7
	monday := jan4.AddDate(0, 0, -offset+(week-1)*7)
	return Period{Start: monday, End: monday.AddDate(0, 0, 6)}, nil
}

// BillingPeriod returns [Y-M-day, Y-M-day + 1 month - 1 day] for a monthly key.
// billingDay is limited to 1..28 so the range never needs clamping.
func (k PeriodKey) BillingPeriod(billingDay int) (Period, error) {
	start, err := k.MonthStart()
	if err != nil {
		return Period{}, err
	}
	if billingDay < 1 || billingDay > 28 {
		return Period{}, ierr.NewErrorf("billing day %d out of range", billingDay).
			WithHint("Billing day must be between 1 and 28").
			Mark(ierr.ErrValidation)
	}
	start = start.AddDate(0, 0, billingDay-1)
	return Period{Start: start, End: start.AddDate(0, 1, -1)}, nil
}

// Previous returns the key immediately before this one
func (k PeriodKey) Previous() (PeriodKey, error) {
	w, err := k.Window()
	if err != nil {
		return "", err
	}
	if k.IsMonthly() {
		return MonthlyPeriodKey(w.Start.AddDate(0, -1, 0)), nil
	}
	return WeeklyPeriodKey(w.Start.AddDate(0, 0, -7)), nil
}

// Next returns the key immediately after this one
func (k PeriodKey) Next() (PeriodKey, error) {
	w, err := k.Window()
	if err != nil {
		return "", err
	}
	if k.IsMonthly() {
		return MonthlyPeriodKey(w.Start.AddDate(0, 1, 0)), nil
	}
	return WeeklyPeriodKey(w.Start.AddDate(0, 0, 7)), nil
}
