package amortization

import (
	"strings"

	"github.com/warp/lending-engine/generic"
)

// Frequency is the repayment cadence of a simple-interest schedule.
type Frequency string

const (
	Daily    Frequency = "daily"
	Weekly   Frequency = "weekly"
	Biweekly Frequency = "biweekly"
	Monthly  Frequency = "monthly"
)

// Frequencies lists the recognized values in display order.
var Frequencies = []Frequency{Daily, Weekly, Biweekly, Monthly}

// IntervalDays is the number of calendar days between two due dates.
// Unrecognized values behave as Monthly.
func (f Frequency) IntervalDays() int {
	switch f {
	case Daily:
		return 1
	case Weekly:
		return 7
	case Biweekly:
		return 14
	default:
		return 30
	}
}

// Plan returns the installment count and the spacing in days for a term.
// Every cadence except daily rounds the count up so the final partial
// interval still gets an installment.
func (f Frequency) Plan(termDays int) (installments, intervalDays int) {
	intervalDays = f.IntervalDays()
	if intervalDays == 1 {
		return termDays, 1
	}
	return ceilDiv(termDays, intervalDays), intervalDays
}

func (f Frequency) IsKnown() bool {
	switch f {
	case Daily, Weekly, Biweekly, Monthly:
		return true
	}
	return false
}

// ParseFrequency is the strict parser used at the API and CLI edges.
// BuildPaymentSchedule itself accepts any value and falls back to monthly.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	if !f.IsKnown() {
		return "", &generic.ArgumentError{Field: "frequency", Value: s, Reason: "expected daily, weekly, biweekly or monthly"}
	}
	return f, nil
}

// ceilDiv rounds a/b up without forming a+b, which can overflow.
func ceilDiv(a, b int) int {
	q := a / b
	if a%b != 0 {
		q++
	}
	return q
}
