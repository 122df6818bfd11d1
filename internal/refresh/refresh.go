// Package refresh runs one full refresh cycle: fetch all source tables,
// normalize them, compute the reconciliation summaries and audit record
// completeness. Each cycle produces an immutable Result; a source that
// fails to fetch degrades to an empty dataset and is reported as a
// warning, never as a failed cycle.
package refresh

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/dairyops/dairytrack-go/internal/aggregate"
	"github.com/dairyops/dairytrack-go/internal/audit"
	"github.com/dairyops/dairytrack-go/internal/conf"
	"github.com/dairyops/dairytrack-go/internal/logging"
	"github.com/dairyops/dairytrack-go/internal/observability/metrics"
	"github.com/dairyops/dairytrack-go/internal/reconcile"
	"github.com/dairyops/dairytrack-go/internal/records"
)

// Package-level logger specific to the refresh service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "refresh.log")
	serviceLevelVar.Set(slog.LevelDebug)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "refresh", serviceLevelVar)
	if err != nil {
		log.Printf("FATAL: Failed to initialize refresh file logger at %s: %v. Service logging disabled.", logFilePath, err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "refresh")
		closeLogger = func() error { return nil }
	}
}

// TableFetcher retrieves one raw source table. Satisfied by sheets.Client;
// tests substitute their own.
type TableFetcher interface {
	FetchTable(ctx context.Context, src conf.SheetSource) (records.Table, error)
	Flush()
}

// Service runs refresh cycles against a fetcher and the configured sources.
type Service struct {
	settings *conf.Settings
	fetcher  TableFetcher
	metrics  *metrics.DairyMetrics
}

// NewService creates a refresh service.
func NewService(settings *conf.Settings, fetcher TableFetcher, dairyMetrics *metrics.DairyMetrics) *Service {
	return &Service{
		settings: settings,
		fetcher:  fetcher,
		metrics:  dairyMetrics,
	}
}

// Summary holds the named scalar metrics of one window.
type Summary struct {
	Produced    float64                `json:"produced"`
	Distributed float64                `json:"distributed"`
	Remaining   float64                `json:"remaining"`
	Ledgers     reconcile.LedgerTotals `json:"ledgers"`
	Funds       map[string]float64     `json:"funds"`
}

// Result is the complete output of one refresh cycle.
type Result struct {
	CycleID         uuid.UUID              `json:"cycle_id"`
	GeneratedAt     time.Time              `json:"generated_at"`
	Today           time.Time              `json:"today"`
	ValidationStart time.Time              `json:"validation_start"`
	Lifetime        Summary                `json:"lifetime"`
	CurrentMonth    Summary                `json:"current_month"`
	EntityTotals    []aggregate.GroupTotal `json:"entity_totals"`
	DaysRecorded    int                    `json:"days_recorded"`
	Daily           []reconcile.DailyRow   `json:"daily"`
	Gaps            []audit.Gap            `json:"gaps"`
	RecentExpenses  []records.Row          `json:"recent_expenses"`
	RecentPayments  []records.Row          `json:"recent_payments"`
	Warnings        []string               `json:"warnings,omitempty"`
	Elapsed         time.Duration          `json:"elapsed"`
}

// recentEntryLimit bounds the recent-entries listing in reports.
const recentEntryLimit = 5

// Run executes one refresh cycle. The reference day is passed in
// explicitly so windowed computations and the audit are deterministic.
// Run never fails: missing or broken sources yield zero-filled partial
// results with warnings.
func (s *Service) Run(ctx context.Context, today time.Time) *Result {
	start := time.Now()
	today = records.Day(today)

	result := &Result{
		CycleID:         uuid.New(),
		GeneratedAt:     start,
		Today:           today,
		ValidationStart: s.settings.ValidationStart(),
	}

	src := &s.settings.Sheets
	ledgerHints := records.Hints{Metric: "Amount"}

	production := s.fetchDataset(ctx, "production", src.Production, records.Hints{}, result)
	morning := s.fetchDataset(ctx, "distribution_morning", src.DistributionMorning, records.Hints{}, result)
	evening := s.fetchDataset(ctx, "distribution_evening", src.DistributionEvening, records.Hints{}, result)
	expense := s.fetchDataset(ctx, "expense", src.Expense, ledgerHints, result)
	payment := s.fetchDataset(ctx, "payment", src.Payment, ledgerHints, result)
	investment := s.fetchDataset(ctx, "investment", src.Investment, ledgerHints, result)

	calc := &reconcile.Calculator{
		Production:      production,
		Morning:         morning,
		Evening:         evening,
		Expense:         expense,
		Payment:         payment,
		Investment:      investment,
		TimestampColumn: src.TimestampColumn,
	}

	// Every computation of the cycle is bounded below by the validation
	// start; rows dated before it never reach any output.
	lifetime := aggregate.Lifetime(result.ValidationStart)
	month := aggregate.Month(today.Year(), today.Month()).From(result.ValidationStart)

	result.Lifetime = s.summarize(calc, lifetime)
	result.CurrentMonth = s.summarize(calc, month)
	result.EntityTotals = aggregate.GroupedSum(production, production.Roles.Entity, production.Roles.Metric, lifetime)
	result.DaysRecorded = aggregate.DistinctDays(production, lifetime)
	result.Daily = calc.DailyComparison(lifetime)
	result.RecentExpenses = latestEntries(expense, lifetime, recentEntryLimit)
	result.RecentPayments = latestEntries(payment, lifetime, recentEntryLimit)

	channels := []audit.Channel{
		{Name: "morning distribution", Shift: audit.ShiftMorning, Data: morning},
		{Name: "evening distribution", Shift: audit.ShiftEvening, Data: evening},
	}
	result.Gaps = audit.FindGaps(production, channels, result.ValidationStart, today)

	entityGaps, channelGaps := 0, 0
	for _, g := range result.Gaps {
		if g.Kind == audit.KindEntityShift {
			entityGaps++
		} else {
			channelGaps++
		}
	}
	s.metrics.RecordGapsFound(string(audit.KindEntityShift), entityGaps)
	s.metrics.RecordGapsFound(string(audit.KindChannelDay), channelGaps)

	result.Elapsed = time.Since(start)
	status := "success"
	if len(result.Warnings) > 0 {
		status = "degraded"
	}
	s.metrics.RecordRefresh(status, result.Elapsed)

	logger.Info("refresh cycle complete",
		"cycle_id", result.CycleID,
		"status", status,
		"gaps", len(result.Gaps),
		"warnings", len(result.Warnings),
		"elapsed", result.Elapsed)

	return result
}

// Flush drops cached source snapshots so the next Run refetches everything.
func (s *Service) Flush() {
	s.fetcher.Flush()
}

func (s *Service) fetchDataset(ctx context.Context, name string, src conf.SheetSource, hints records.Hints, result *Result) *records.Dataset {
	table, err := s.fetcher.FetchTable(ctx, src)
	if err != nil {
		warning := fmt.Sprintf("source %q unavailable, continuing with empty dataset: %v", name, err)
		result.Warnings = append(result.Warnings, warning)
		logger.Warn("source degraded to empty dataset", "source", name, "error", err)
		return records.Normalize(records.Table{}, hints)
	}
	return records.Normalize(table, hints)
}

func (s *Service) summarize(calc *reconcile.Calculator, w aggregate.Window) Summary {
	funds := make(map[string]float64, len(s.settings.Validation.Parties))
	for _, party := range s.settings.Validation.Parties {
		funds[party] = calc.Fund(party, w)
	}
	return Summary{
		Produced:    calc.Produced(w),
		Distributed: calc.Distributed(w),
		Remaining:   calc.Remaining(w),
		Ledgers:     calc.Ledgers(w),
		Funds:       funds,
	}
}

// latestEntries returns up to limit in-window dated rows, newest first.
// Rows without a parseable date are left out.
func latestEntries(ds *records.Dataset, w aggregate.Window, limit int) []records.Row {
	type dated struct {
		row  records.Row
		date time.Time
	}
	var rows []dated
	for i := range ds.Table.Rows {
		if d, ok := ds.Date(i); ok && w.Contains(d) {
			rows = append(rows, dated{row: ds.Table.Rows[i], date: d})
		}
	}
	// Stable so same-day entries keep source order.
	for i := 1; i < len(rows); i++ {
		for j := i; j > 0 && rows[j].date.After(rows[j-1].date); j-- {
			rows[j], rows[j-1] = rows[j-1], rows[j]
		}
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([]records.Row, len(rows))
	for i, r := range rows {
		out[i] = r.row
	}
	return out
}
