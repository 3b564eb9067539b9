package factory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/lending-engine/commission"
	"github.com/warp/lending-engine/factory"
	"github.com/warp/lending-engine/generic"
)

func TestParseRateTable_StringsNumbersAndNull(t *testing.T) {
	// GIVEN: A table mixing string and numeric amounts and an unbounded tier
	input := `{
		"id": "promo",
		"name": "Promo",
		"tiers": [
			{"min": "0", "max": "1000", "fixed_amount": "25"},
			{"min": 1000, "max": 10000, "rate": 4.5},
			{"min": "10000", "max": null, "rate": "2"}
		]
	}`

	// WHEN: Parsing it
	rj, table, err := factory.NewRateTableFactory().ParseRateTable(input)

	// THEN: Every tier is carried over and the table is usable
	require.NoError(t, err)
	assert.Equal(t, "promo", rj.ID)
	require.Len(t, table, 3)
	require.NotNil(t, table[0].FixedAmount)
	assert.True(t, table[2].Unbounded())
	assert.True(t, table.Covers())

	result, err := commission.Calculate(generic.MustParseDecimal("500"), table)
	require.NoError(t, err)
	assert.Equal(t, "25", result.CommissionAmount.String())

	result, err = commission.Calculate(generic.MustParseDecimal("2000"), table)
	require.NoError(t, err)
	assert.Equal(t, "90", result.CommissionAmount.String())
}

func TestParseRateTable_Rejects(t *testing.T) {
	tests := map[string]string{
		"malformed json": `{"tiers": [`,
		"no tiers":       `{"id": "x", "tiers": []}`,
		"overlap":        `{"id": "x", "tiers": [{"min": 0, "max": 100, "rate": 1}, {"min": 50, "rate": 1}]}`,
		"bad decimal":    `{"id": "x", "tiers": [{"min": "zero", "rate": 1}]}`,
	}

	f := factory.NewRateTableFactory()
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := f.ParseRateTable(input)
			assert.Error(t, err)
		})
	}

	_, _, err := f.ParseRateTable(`{"id": "x", "tiers": [{"min": 0, "max": 100, "rate": 1}, {"min": 50, "rate": 1}]}`)
	assert.ErrorIs(t, err, generic.ErrInvalidArgument)
}

func TestRateTable_RoundTrip(t *testing.T) {
	f := factory.NewRateTableFactory()

	_, table, err := f.ParseRateTable(factory.DefaultRateTableJSON())
	require.NoError(t, err)
	require.Len(t, table, 5)

	want := commission.DefaultRateTable()
	for i := range want {
		assert.True(t, want[i].Min.Equal(table[i].Min), "tier %d min", i)
		assert.True(t, want[i].RatePercent.Equal(table[i].RatePercent), "tier %d rate", i)
		if want[i].Max == nil {
			assert.Nil(t, table[i].Max)
		} else {
			require.NotNil(t, table[i].Max)
			assert.True(t, want[i].Max.Equal(*table[i].Max), "tier %d max", i)
		}
	}
}
