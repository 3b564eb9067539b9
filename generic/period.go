package generic

// =============================================================================
// DATE RANGE - Reporting window
// =============================================================================

// DateRange is a closed interval of days [Start, End].
//
// Examples:
//   - January 2025: 2025-01-01 .. 2025-01-31
//   - A single day: Start == End
type DateRange struct {
	Start Date
	End   Date
}

// NewDateRange returns ErrInvalidArgument when end is before start.
func NewDateRange(start, end Date) (DateRange, error) {
	r := DateRange{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

func (r DateRange) Validate() error {
	if r.End.Before(r.Start) {
		return &ArgumentError{Field: "end_date", Value: r.End.String(), Reason: "before start_date " + r.Start.String()}
	}
	return nil
}

// Contains returns true if the day is within [Start, End], both ends inclusive.
func (r DateRange) Contains(d Date) bool {
	return d.AfterOrEqual(r.Start) && d.BeforeOrEqual(r.End)
}

// Days returns the number of days covered, counting both ends.
func (r DateRange) Days() int {
	return DaysBetween(r.Start, r.End) + 1
}

func (r DateRange) String() string {
	return "[" + r.Start.String() + ", " + r.End.String() + "]"
}

// MonthRange returns the range covering the whole calendar month of d.
func MonthRange(d Date) DateRange {
	start := NewDate(d.Year(), d.Month(), 1)
	return DateRange{Start: start, End: start.AddMonths(1).AddDays(-1)}
}
