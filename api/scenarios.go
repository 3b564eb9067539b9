/*
scenarios.go - Demo loan books for testing and demonstrations

PURPOSE:

	Provides pre-built loan books that populate the database with realistic
	data for dashboard demos. Every loan goes through the same origination
	path as POST /api/loans, so commissions are priced by the real engine.

AVAILABLE SCENARIOS:

	agent-month:     Two agents, a month of disbursements, one pending loan
	tier-boundaries: Loans exactly on tier boundaries (first match wins)
	promo-table:     Custom table with a fixed-fee tier for micro loans

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Re-seed the default rate table
 3. Create any extra rate tables via factory
 4. Originate loans, disbursed relative to the current month

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "agent-month"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx)
 3. Add case to LoadScenario handler

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: originate, shared with CreateLoan
  - factory/ratetable.go: Rate table JSON definitions
*/
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/warp/lending-engine/amortization"
	"github.com/warp/lending-engine/commission"
	"github.com/warp/lending-engine/generic"
	"github.com/warp/lending-engine/store/sqlite"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "agent-month",
		Name:        "Agent Month",
		Description: "Two agents with a month of disbursed loans and one pending origination",
	},
	{
		ID:          "tier-boundaries",
		Name:        "Tier Boundaries",
		Description: "Loans exactly on 50k/100k/200k/500k; the lower tier wins each boundary",
	},
	{
		ID:          "promo-table",
		Name:        "Promo Table",
		Description: "Custom rate table with a fixed 25.00 fee for micro loans",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the database and loads a predefined loan book.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var load func(context.Context) error
	switch req.ScenarioID {
	case "agent-month":
		load = h.loadAgentMonthScenario
	case "tier-boundaries":
		load = h.loadTierBoundariesScenario
	case "promo-table":
		load = h.loadPromoTableScenario
	default:
		h.fail(w, "Unknown scenario", &generic.ArgumentError{Field: "scenario_id", Value: req.ScenarioID, Reason: "not a known scenario"})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := r.Context()
	h.currentScenario = ""
	if err := h.reset(ctx); err != nil {
		h.fail(w, "Failed to reset database", err)
		return
	}
	if err := load(ctx); err != nil {
		h.fail(w, fmt.Sprintf("Failed to load scenario %s", req.ScenarioID), err)
		return
	}
	h.currentScenario = req.ScenarioID

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all loans and rate tables, then re-seeds the default
// table.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.currentScenario = ""
	if err := h.reset(r.Context()); err != nil {
		h.fail(w, "Failed to reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) reset(ctx context.Context) error {
	if err := h.Store.Reset(ctx); err != nil {
		return err
	}
	return h.SeedDefaultRateTable(ctx)
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// monthDay returns day n of the current month, for disbursement dates that
// fall inside the default aggregation window.
func (h *Handler) monthDay(n int) string {
	return generic.MonthRange(h.Today()).Start.AddDays(n - 1).String()
}

func (h *Handler) loadAgentMonthScenario(ctx context.Context) error {
	lastMonth := generic.MonthRange(h.Today()).Start.AddDays(-10).String()

	loans := []CreateLoanRequest{
		demoLoan("agent-ana", "Lucia Ortega", "30000", 180, amortization.Monthly, h.monthDay(2)),
		demoLoan("agent-ana", "Tomas Ruiz", "75000", 360, amortization.Monthly, h.monthDay(9)),
		demoLoan("agent-ana", "Grace Okafor", "150000", 720, amortization.Biweekly, h.monthDay(16)),
		demoLoan("agent-ana", "Ivan Petrov", "12000", 90, amortization.Weekly, ""),
		demoLoan("agent-ben", "Maya Chen", "20000", 120, amortization.Weekly, h.monthDay(5)),
		demoLoan("agent-ben", "Omar Haddad", "250000", 1080, amortization.Monthly, lastMonth),
	}
	return h.originateAll(ctx, loans)
}

func (h *Handler) loadTierBoundariesScenario(ctx context.Context) error {
	disbursed := h.monthDay(1)
	var loans []CreateLoanRequest
	for i, amount := range []string{"49999.99", "50000", "100000", "200000", "500000", "500000.01"} {
		loans = append(loans, demoLoan("agent-edge", fmt.Sprintf("Boundary client %d", i+1),
			amount, 360, amortization.Monthly, disbursed))
	}
	return h.originateAll(ctx, loans)
}

func (h *Handler) loadPromoTableScenario(ctx context.Context) error {
	promo := commission.RateTable{
		{Min: decimal.Zero, Max: commission.Bound(1_000), FixedAmount: commission.Bound(25)},
		{Min: decimal.NewFromInt(1_000), Max: commission.Bound(10_000), RatePercent: generic.MustParseDecimal("4.5")},
		{Min: decimal.NewFromInt(10_000), Max: nil, RatePercent: generic.MustParseDecimal("2")},
	}
	configJSON, err := h.Factory.MarshalRateTable("promo", "Micro-loan promo", promo)
	if err != nil {
		return err
	}
	if err := h.Store.SaveRateTable(ctx, sqlite.RateTableRecord{
		ID:         "promo",
		Name:       "Micro-loan promo",
		ConfigJSON: configJSON,
	}); err != nil {
		return err
	}

	loans := []CreateLoanRequest{
		demoLoan("agent-cruz", "Street vendor", "800", 28, amortization.Daily, h.monthDay(3)),
		demoLoan("agent-cruz", "Bakery", "4500", 84, amortization.Weekly, h.monthDay(7)),
		demoLoan("agent-cruz", "Workshop", "18000", 180, amortization.Biweekly, h.monthDay(14)),
		demoLoan("agent-cruz", "Food cart", "950", 28, amortization.Daily, ""),
	}
	for i := range loans {
		loans[i].RateTableID = "promo"
	}
	return h.originateAll(ctx, loans)
}

func (h *Handler) originateAll(ctx context.Context, loans []CreateLoanRequest) error {
	for _, req := range loans {
		if _, err := h.originate(ctx, req); err != nil {
			return fmt.Errorf("loan for %s: %w", req.ClientName, err)
		}
	}
	return nil
}

func demoLoan(agent, client, amount string, termDays int, freq amortization.Frequency, disbursedAt string) CreateLoanRequest {
	return CreateLoanRequest{
		AgentID:      agent,
		ClientName:   client,
		Amount:       generic.MustParseDecimal(amount),
		InterestRate: generic.MustParseDecimal("18"),
		TermDays:     termDays,
		Frequency:    string(freq),
		DisbursedAt:  disbursedAt,
	}
}
