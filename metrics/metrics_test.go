package metrics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/warp/lending-engine/generic"
)

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "invalid_argument", ErrorKind(generic.RequirePositive("term_days", 0)))
	assert.Equal(t, "no_applicable_tier", ErrorKind(fmt.Errorf("calc: %w", generic.ErrNoApplicableTier)))
	assert.Equal(t, "not_found", ErrorKind(generic.ErrNotFound))
	assert.Equal(t, "conflict", ErrorKind(generic.ErrConflict))
	assert.Equal(t, "internal", ErrorKind(errors.New("disk full")))
}

func TestObserve(t *testing.T) {
	before := testutil.ToFloat64(Calculations.WithLabelValues(OpCommission))
	Observe(OpCommission, nil)
	assert.Equal(t, before+1, testutil.ToFloat64(Calculations.WithLabelValues(OpCommission)))

	errCounter := CalculationErrors.WithLabelValues(OpCommission, "no_applicable_tier")
	before = testutil.ToFloat64(errCounter)
	Observe(OpCommission, generic.ErrNoApplicableTier)
	assert.Equal(t, before+1, testutil.ToFloat64(errCounter))
}
