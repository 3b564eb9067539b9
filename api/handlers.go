/*
handlers.go - HTTP API handlers for the lending engine

PURPOSE:
  Exposes the amortization and commission engines via REST API. Handles
  HTTP request/response, JSON serialization, and delegates to domain logic.
  The engines are pure; the store and cache only exist at this layer.

ENDPOINTS:
  Amortization:
    POST   /api/amortization/payment           Fixed monthly installment
    POST   /api/amortization/schedule          Simple-interest schedule (cached)
    POST   /api/amortization/annuity-schedule  Annuity breakdown

  Commissions:
    POST   /api/commissions/calculate          Tiered commission + split
    POST   /api/commissions/projection         Agent commission over the term
    GET    /api/agents/{id}/commissions        Aggregate over ?from=&to=

  Rate tables:
    GET    /api/rate-tables                    List stored tables
    POST   /api/rate-tables                    Create or replace a table
    GET    /api/rate-tables/{id}               Get one table
    DELETE /api/rate-tables/{id}               Delete a table

  Loans:
    GET    /api/loans                          List loans (?agent_id=)
    POST   /api/loans                          Originate a loan
    GET    /api/loans/{id}                     Get one loan
    POST   /api/loans/{id}/disburse            Set the disbursement date

  Scenarios:
    GET    /api/scenarios                      List demo loan books
    GET    /api/scenarios/current              Currently loaded demo
    POST   /api/scenarios/load                 Reset and load a demo
    POST   /api/scenarios/reset                Clear all data

ERROR HANDLING:
  Errors are returned as JSON with an HTTP status derived from the error:
  - 400: generic.ErrInvalidArgument, malformed body
  - 404: generic.ErrNotFound
  - 409: generic.ErrConflict
  - 422: generic.ErrNoApplicableTier
  - 500: everything else (logged)

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo loan book loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/lending-engine/amortization"
	"github.com/warp/lending-engine/cache"
	"github.com/warp/lending-engine/commission"
	"github.com/warp/lending-engine/factory"
	"github.com/warp/lending-engine/generic"
	"github.com/warp/lending-engine/metrics"
	"github.com/warp/lending-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Factory *factory.RateTableFactory
	Cache   cache.Cache

	// CacheTTL bounds how long computed schedules stay cached.
	CacheTTL time.Duration

	// Today supplies default dates; replaced in tests.
	Today func() generic.Date

	// Track currently loaded scenario
	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a handler. A nil cache disables schedule caching.
func NewHandler(store *sqlite.Store, c cache.Cache, ttl time.Duration) *Handler {
	return &Handler{
		Store:    store,
		Factory:  factory.NewRateTableFactory(),
		Cache:    c,
		CacheTTL: ttl,
		Today:    generic.Today,
	}
}

// SeedDefaultRateTable stores the built-in table under DefaultRateTableID
// unless a table with that id already exists.
func (h *Handler) SeedDefaultRateTable(ctx context.Context) error {
	_, err := h.Store.GetRateTable(ctx, DefaultRateTableID)
	if err == nil {
		return nil
	}
	if !generic.IsNotFound(err) {
		return err
	}
	return h.Store.SaveRateTable(ctx, sqlite.RateTableRecord{
		ID:         DefaultRateTableID,
		Name:       "Default",
		ConfigJSON: factory.DefaultRateTableJSON(),
	})
}

// DefaultRateTableID names the seeded built-in table.
const DefaultRateTableID = "default"

// =============================================================================
// AMORTIZATION HANDLERS
// =============================================================================

// CalculatePayment returns the fixed installment and totals of an annuity loan.
func (h *Handler) CalculatePayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	payment, err := amortization.InstallmentPayment(req.Principal, req.AnnualRate, req.TermMonths)
	metrics.Observe(metrics.OpInstallmentPayment, err)
	if err != nil {
		h.fail(w, "Failed to calculate payment", err)
		return
	}
	total, err := amortization.TotalRepayment(req.Principal, req.AnnualRate, req.TermMonths)
	if err != nil {
		h.fail(w, "Failed to calculate total repayment", err)
		return
	}
	interest, err := amortization.TotalInterest(req.Principal, req.AnnualRate, req.TermMonths)
	if err != nil {
		h.fail(w, "Failed to calculate total interest", err)
		return
	}

	writeJSON(w, http.StatusOK, PaymentDTO{
		InstallmentPayment: money(payment),
		TotalRepayment:     money(total),
		TotalInterest:      money(interest),
	})
}

// PaymentSchedule returns a simple-interest schedule. Results are cached
// under their normalized inputs.
func (h *Handler) PaymentSchedule(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	freq := amortization.Monthly
	if req.Frequency != "" {
		var err error
		if freq, err = amortization.ParseFrequency(req.Frequency); err != nil {
			h.fail(w, "Invalid frequency", err)
			return
		}
	}
	first, err := h.dateOrToday("first_payment_date", req.FirstPaymentDate)
	if err != nil {
		h.fail(w, "Invalid first payment date", err)
		return
	}

	key := cache.Key("schedule",
		req.Principal.String(), req.InterestRate.String(),
		strconv.Itoa(req.TermDays), string(freq), first.String())
	if cached, ok := h.cacheGet(r.Context(), key); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "HIT")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(cached))
		return
	}

	schedule, err := amortization.BuildPaymentSchedule(req.Principal, req.InterestRate, req.TermDays, freq, first)
	metrics.Observe(metrics.OpPaymentSchedule, err)
	if err != nil {
		h.fail(w, "Failed to build schedule", err)
		return
	}
	metrics.ScheduleInstallments.Observe(float64(schedule.Len()))

	dto := toScheduleDTO(freq, schedule)
	if data, err := json.Marshal(dto); err == nil {
		h.cacheSet(r.Context(), key, string(data))
	}
	w.Header().Set("X-Cache", "MISS")
	writeJSON(w, http.StatusOK, dto)
}

// AnnuitySchedule returns the month-by-month breakdown of an annuity loan.
func (h *Handler) AnnuitySchedule(w http.ResponseWriter, r *http.Request) {
	var req AnnuityScheduleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	first, err := h.dateOrToday("first_payment_date", req.FirstPaymentDate)
	if err != nil {
		h.fail(w, "Invalid first payment date", err)
		return
	}

	result, err := amortization.AnnuitySchedule(req.Principal, req.AnnualRate, req.TermMonths, first)
	metrics.Observe(metrics.OpAnnuitySchedule, err)
	if err != nil {
		h.fail(w, "Failed to build annuity schedule", err)
		return
	}
	metrics.ScheduleInstallments.Observe(float64(len(result.Rows)))

	writeJSON(w, http.StatusOK, toAnnuityDTO(result))
}

// =============================================================================
// COMMISSION HANDLERS
// =============================================================================

// CalculateCommission applies the tiered rate table to a loan amount.
func (h *Handler) CalculateCommission(w http.ResponseWriter, r *http.Request) {
	var req CommissionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	table, err := h.rateTable(r.Context(), req.RateTableID)
	if err != nil {
		h.fail(w, "Failed to load rate table", err)
		return
	}

	result, err := commission.Calculate(req.LoanAmount, table)
	metrics.Observe(metrics.OpCommission, err)
	if err != nil {
		h.fail(w, "Failed to calculate commission", err)
		return
	}

	writeJSON(w, http.StatusOK, toCommissionDTO(result))
}

// ProjectCommission spreads the agent's commission over the loan term.
func (h *Handler) ProjectCommission(w http.ResponseWriter, r *http.Request) {
	var req ProjectionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	table, err := h.rateTable(r.Context(), req.RateTableID)
	if err != nil {
		h.fail(w, "Failed to load rate table", err)
		return
	}

	projection, err := commission.Project(req.LoanAmount, req.TermMonths, table)
	metrics.Observe(metrics.OpProjection, err)
	if err != nil {
		h.fail(w, "Failed to project commission", err)
		return
	}

	writeJSON(w, http.StatusOK, ProjectionDTO{
		UpfrontCommission: money(projection.UpfrontCommission),
		MonthlyProjection: money(projection.MonthlyProjection),
		TotalProjection:   money(projection.TotalProjection),
	})
}

// AgentCommissions aggregates an agent's disbursed loans. The window
// defaults to the current calendar month.
func (h *Handler) AgentCommissions(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "id")

	window := generic.MonthRange(h.Today())
	if from := r.URL.Query().Get("from"); from != "" {
		d, err := generic.ParseDate(from)
		if err != nil {
			h.fail(w, "Invalid from date", err)
			return
		}
		window.Start = d
	}
	if to := r.URL.Query().Get("to"); to != "" {
		d, err := generic.ParseDate(to)
		if err != nil {
			h.fail(w, "Invalid to date", err)
			return
		}
		window.End = d
	}

	records, err := h.Store.ListLoansByAgent(r.Context(), agentID)
	if err != nil {
		h.fail(w, "Failed to list loans", err)
		return
	}
	loans := make([]commission.DisbursedLoan, len(records))
	for i, rec := range records {
		loans[i] = rec.Disbursed()
	}

	summary, err := commission.AggregateAgentCommissions(loans, window.Start, window.End)
	metrics.Observe(metrics.OpAggregate, err)
	if err != nil {
		h.fail(w, "Failed to aggregate commissions", err)
		return
	}

	writeJSON(w, http.StatusOK, AgentSummaryDTO{
		AgentID:               agentID,
		From:                  window.Start.String(),
		To:                    window.End.String(),
		TotalLoans:            summary.TotalLoans,
		TotalLoanAmount:       money(summary.TotalLoanAmount),
		TotalCommission:       money(summary.TotalCommission),
		AverageCommissionRate: money(summary.AverageCommissionRate),
	})
}

// =============================================================================
// RATE TABLE HANDLERS
// =============================================================================

// ListRateTables returns all stored rate tables.
func (h *Handler) ListRateTables(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListRateTables(r.Context())
	if err != nil {
		h.fail(w, "Failed to list rate tables", err)
		return
	}

	dtos := make([]RateTableDTO, 0, len(records))
	for _, rec := range records {
		cfg, table, err := h.Factory.ParseRateTable(rec.ConfigJSON)
		if err != nil {
			log.Printf("Skipping invalid rate table %s: %v", rec.ID, err)
			continue
		}
		dtos = append(dtos, toRateTableDTO(rec, cfg, table))
	}

	writeJSON(w, http.StatusOK, dtos)
}

// CreateRateTable validates and stores a rate table. Posting an existing id
// replaces it and bumps its version.
func (h *Handler) CreateRateTable(w http.ResponseWriter, r *http.Request) {
	var req factory.RateTableJSON
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ID == "" {
		h.fail(w, "Invalid rate table", &generic.ArgumentError{Field: "id", Reason: "required"})
		return
	}

	table, err := h.Factory.FromJSON(req)
	if err != nil {
		h.fail(w, "Invalid rate table", err)
		return
	}
	configJSON, err := h.Factory.MarshalRateTable(req.ID, req.Name, table)
	if err != nil {
		h.fail(w, "Failed to encode rate table", err)
		return
	}

	if err := h.Store.SaveRateTable(r.Context(), sqlite.RateTableRecord{
		ID:         req.ID,
		Name:       req.Name,
		ConfigJSON: configJSON,
	}); err != nil {
		h.fail(w, "Failed to save rate table", err)
		return
	}

	rec, err := h.Store.GetRateTable(r.Context(), req.ID)
	if err != nil {
		h.fail(w, "Failed to reload rate table", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRateTableDTO(*rec, h.Factory.ToJSON(req.ID, req.Name, table), table))
}

// GetRateTable returns a single rate table.
func (h *Handler) GetRateTable(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := h.Store.GetRateTable(r.Context(), id)
	if err != nil {
		h.fail(w, "Rate table not found", err)
		return
	}
	cfg, table, err := h.Factory.ParseRateTable(rec.ConfigJSON)
	if err != nil {
		h.fail(w, "Stored rate table is invalid", err)
		return
	}

	writeJSON(w, http.StatusOK, toRateTableDTO(*rec, cfg, table))
}

// DeleteRateTable removes a rate table. Loans keep the commission they were
// originated with.
func (h *Handler) DeleteRateTable(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Store.DeleteRateTable(r.Context(), id); err != nil {
		h.fail(w, "Failed to delete rate table", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// LOAN HANDLERS
// =============================================================================

// ListLoans returns all loans, or one agent's loans with ?agent_id=.
func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	var (
		records []sqlite.LoanRecord
		err     error
	)
	if agentID := r.URL.Query().Get("agent_id"); agentID != "" {
		records, err = h.Store.ListLoansByAgent(r.Context(), agentID)
	} else {
		records, err = h.Store.ListLoans(r.Context())
	}
	if err != nil {
		h.fail(w, "Failed to list loans", err)
		return
	}

	dtos := make([]LoanDTO, len(records))
	for i, rec := range records {
		dtos[i] = toLoanDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateLoan originates a loan. Its commission is computed here, once, and
// stored; later rate table changes do not affect it.
func (h *Handler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req CreateLoanRequest
	if !decodeBody(w, r, &req) {
		return
	}

	loan, err := h.originate(r.Context(), req)
	if err != nil {
		h.fail(w, "Failed to create loan", err)
		return
	}

	writeJSON(w, http.StatusCreated, toLoanDTO(loan))
}

// originate validates a loan request, prices its commission and stores it.
// Shared by CreateLoan and the demo scenarios.
func (h *Handler) originate(ctx context.Context, req CreateLoanRequest) (sqlite.LoanRecord, error) {
	if req.AgentID == "" {
		return sqlite.LoanRecord{}, &generic.ArgumentError{Field: "agent_id", Reason: "required"}
	}
	freq := amortization.Monthly
	if req.Frequency != "" {
		var err error
		if freq, err = amortization.ParseFrequency(req.Frequency); err != nil {
			return sqlite.LoanRecord{}, err
		}
	}
	terms := amortization.LoanTerms{
		Principal:         req.Amount,
		AnnualRatePercent: req.InterestRate,
		TermDays:          req.TermDays,
		Frequency:         freq,
	}
	if err := terms.Validate(); err != nil {
		return sqlite.LoanRecord{}, err
	}
	if err := generic.RequireTerm("term_days", req.TermDays, amortization.MaxTermDays); err != nil {
		return sqlite.LoanRecord{}, err
	}

	var disbursedAt *generic.Date
	if req.DisbursedAt != "" {
		d, err := generic.ParseDate(req.DisbursedAt)
		if err != nil {
			return sqlite.LoanRecord{}, err
		}
		disbursedAt = &d
	}

	table, err := h.rateTable(ctx, req.RateTableID)
	if err != nil {
		return sqlite.LoanRecord{}, err
	}
	result, err := commission.Calculate(req.Amount, table)
	metrics.Observe(metrics.OpCommission, err)
	if err != nil {
		return sqlite.LoanRecord{}, err
	}

	return h.Store.SaveLoan(ctx, sqlite.LoanRecord{
		ID:               req.ID,
		AgentID:          req.AgentID,
		ClientName:       req.ClientName,
		Amount:           req.Amount,
		InterestRate:     req.InterestRate,
		TermDays:         req.TermDays,
		Frequency:        string(freq),
		RateTableID:      req.RateTableID,
		CommissionAmount: result.CommissionAmount,
		DisbursedAt:      disbursedAt,
	})
}

// GetLoan returns a single loan.
func (h *Handler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loan, err := h.Store.GetLoan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "Loan not found", err)
		return
	}
	writeJSON(w, http.StatusOK, toLoanDTO(*loan))
}

// DisburseLoan sets the disbursement date; the loan then counts toward its
// agent's aggregate.
func (h *Handler) DisburseLoan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req DisburseRequest
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}
	on, err := h.dateOrToday("date", req.Date)
	if err != nil {
		h.fail(w, "Invalid disbursement date", err)
		return
	}

	if err := h.Store.MarkDisbursed(r.Context(), id, on); err != nil {
		h.fail(w, "Failed to disburse loan", err)
		return
	}
	loan, err := h.Store.GetLoan(r.Context(), id)
	if err != nil {
		h.fail(w, "Failed to reload loan", err)
		return
	}
	writeJSON(w, http.StatusOK, toLoanDTO(*loan))
}

// Health pings the database.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "Database unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

// rateTable resolves a stored table. An empty id yields nil, which the
// engine treats as the default table.
func (h *Handler) rateTable(ctx context.Context, id string) (commission.RateTable, error) {
	if id == "" {
		return nil, nil
	}
	rec, err := h.Store.GetRateTable(ctx, id)
	if err != nil {
		return nil, err
	}
	_, table, err := h.Factory.ParseRateTable(rec.ConfigJSON)
	return table, err
}

func (h *Handler) dateOrToday(field, s string) (generic.Date, error) {
	if s == "" {
		return h.Today(), nil
	}
	d, err := generic.ParseDate(s)
	if err != nil {
		var argErr *generic.ArgumentError
		if errors.As(err, &argErr) {
			argErr.Field = field
		}
		return generic.Date{}, err
	}
	return d, nil
}

// Cache failures degrade to recomputation.
func (h *Handler) cacheGet(ctx context.Context, key string) (string, bool) {
	if h.Cache == nil {
		return "", false
	}
	value, ok, err := h.Cache.Get(ctx, key)
	if err != nil {
		log.Printf("Cache get %s: %v", key, err)
		return "", false
	}
	if ok {
		metrics.CacheHit()
	} else {
		metrics.CacheMiss()
	}
	return value, ok
}

func (h *Handler) cacheSet(ctx context.Context, key, value string) {
	if h.Cache == nil {
		return
	}
	if err := h.Cache.Set(ctx, key, value, h.CacheTTL); err != nil {
		log.Printf("Cache set %s: %v", key, err)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

// statusFor maps engine and store errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, generic.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, generic.ErrNoApplicableTier):
		return http.StatusUnprocessableEntity
	case errors.Is(err, generic.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, generic.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(w http.ResponseWriter, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s: %v", message, err)
	}
	writeError(w, status, message, err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
