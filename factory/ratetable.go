/*
Package factory provides JSON to Go rate table conversion.

PURPOSE:
  Converts JSON rate table definitions into commission.RateTable values.
  Commission schedules can then be changed without code changes: an admin
  posts JSON, the factory validates it and the engine uses it per call.

JSON SCHEMA:
  {
    "id": "standard-2025",
    "name": "Standard origination fees",
    "tiers": [
      {"min": "0",      "max": "50000",  "rate": "3.0"},
      {"min": "50000",  "max": "100000", "rate": "2.5"},
      {"min": "100000", "max": null,     "rate": "1.0"},
      {"min": "0",      "max": "1000",   "fixed_amount": "25"}
    ]
  }

  Amounts may be JSON strings or numbers; strings are preferred because
  they never pass through float64. "max": null (or omitted) means
  unbounded. "fixed_amount" overrides "rate".

KEY FEATURES:
  - Validates structure (ordering, overlap, negative values)
  - Round-trips: ToJSON(FromJSON(x)) preserves every tier

USAGE:
  f := factory.NewRateTableFactory()
  table, err := f.ParseRateTable(jsonString)
  result, err := commission.Calculate(amount, table)

SEE ALSO:
  - commission/tier.go: RateTable and Validate
  - store/sqlite/sqlite.go: persists the JSON form
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/lending-engine/commission"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// RateTableJSON is the JSON representation of a rate table.
type RateTableJSON struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Tiers []TierJSON `json:"tiers"`
}

// TierJSON represents one tier. decimal.Decimal accepts both "2.5" and 2.5.
type TierJSON struct {
	Min         decimal.Decimal  `json:"min"`
	Max         *decimal.Decimal `json:"max"`
	Rate        decimal.Decimal  `json:"rate"`
	FixedAmount *decimal.Decimal `json:"fixed_amount,omitempty"`
}

// =============================================================================
// RATE TABLE FACTORY
// =============================================================================

// RateTableFactory converts JSON rate tables to commission.RateTable.
type RateTableFactory struct{}

// NewRateTableFactory creates a new rate table factory.
func NewRateTableFactory() *RateTableFactory {
	return &RateTableFactory{}
}

// ParseRateTable parses a JSON string into its definition and a validated
// RateTable.
func (f *RateTableFactory) ParseRateTable(jsonStr string) (RateTableJSON, commission.RateTable, error) {
	var rj RateTableJSON
	if err := json.Unmarshal([]byte(jsonStr), &rj); err != nil {
		return RateTableJSON{}, nil, fmt.Errorf("failed to parse rate table JSON: %w", err)
	}

	table, err := f.FromJSON(rj)
	if err != nil {
		return RateTableJSON{}, nil, err
	}
	return rj, table, nil
}

// FromJSON converts RateTableJSON to a validated commission.RateTable.
func (f *RateTableFactory) FromJSON(rj RateTableJSON) (commission.RateTable, error) {
	table := make(commission.RateTable, 0, len(rj.Tiers))
	for _, tj := range rj.Tiers {
		table = append(table, commission.RateTier{
			Min:         tj.Min,
			Max:         copyDecimal(tj.Max),
			RatePercent: tj.Rate,
			FixedAmount: copyDecimal(tj.FixedAmount),
		})
	}

	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("rate table %q: %w", rj.ID, err)
	}
	return table, nil
}

// ToJSON converts a RateTable to its JSON representation.
func (f *RateTableFactory) ToJSON(id, name string, table commission.RateTable) RateTableJSON {
	rj := RateTableJSON{ID: id, Name: name, Tiers: make([]TierJSON, 0, len(table))}
	for _, tier := range table {
		rj.Tiers = append(rj.Tiers, TierJSON{
			Min:         tier.Min,
			Max:         copyDecimal(tier.Max),
			Rate:        tier.RatePercent,
			FixedAmount: copyDecimal(tier.FixedAmount),
		})
	}
	return rj
}

// MarshalRateTable serializes a table for storage.
func (f *RateTableFactory) MarshalRateTable(id, name string, table commission.RateTable) (string, error) {
	data, err := json.Marshal(f.ToJSON(id, name, table))
	if err != nil {
		return "", fmt.Errorf("failed to marshal rate table: %w", err)
	}
	return string(data), nil
}

// DefaultRateTableJSON is the default table in JSON form, used to seed
// a fresh database.
func DefaultRateTableJSON() string {
	out, _ := NewRateTableFactory().MarshalRateTable("default", "Default origination fees", commission.DefaultRateTable())
	return out
}

func copyDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
