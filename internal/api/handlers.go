package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dairyops/dairytrack-go/internal/aggregate"
	"github.com/dairyops/dairytrack-go/internal/audit"
	"github.com/dairyops/dairytrack-go/internal/reconcile"
	"github.com/dairyops/dairytrack-go/internal/refresh"
)

// SummaryResponse carries the windowed reconciliation summaries.
type SummaryResponse struct {
	CycleID         string          `json:"cycle_id"`
	Today           string          `json:"today"`
	ValidationStart string          `json:"validation_start"`
	Lifetime        refresh.Summary `json:"lifetime"`
	CurrentMonth    refresh.Summary `json:"current_month"`
	Warnings        []string        `json:"warnings,omitempty"`
}

// EntitiesResponse lists per-entity production totals.
type EntitiesResponse struct {
	Entities     []aggregate.GroupTotal `json:"entities"`
	DaysRecorded int                    `json:"days_recorded"`
	Warnings     []string               `json:"warnings,omitempty"`
}

// DailyResponse lists the day-by-day production/distribution comparison.
type DailyResponse struct {
	Days     []reconcile.DailyRow `json:"days"`
	Warnings []string             `json:"warnings,omitempty"`
}

// FundsResponse carries per-party fund balances for both windows.
type FundsResponse struct {
	Lifetime     map[string]float64 `json:"lifetime"`
	CurrentMonth map[string]float64 `json:"current_month"`
	Warnings     []string           `json:"warnings,omitempty"`
}

// GapsResponse lists missing expected records.
type GapsResponse struct {
	Gaps     []audit.Gap `json:"gaps"`
	Total    int         `json:"total"`
	Warnings []string    `json:"warnings,omitempty"`
}

// RefreshResponse acknowledges a manual refresh.
type RefreshResponse struct {
	CycleID  string   `json:"cycle_id"`
	Elapsed  string   `json:"elapsed"`
	Warnings []string `json:"warnings,omitempty"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// GetSummary handles GET /api/v1/summary
func (c *Controller) GetSummary(ctx echo.Context) error {
	r := c.result(ctx)
	return ctx.JSON(http.StatusOK, SummaryResponse{
		CycleID:         r.CycleID.String(),
		Today:           r.Today.Format("2006-01-02"),
		ValidationStart: r.ValidationStart.Format("2006-01-02"),
		Lifetime:        r.Lifetime,
		CurrentMonth:    r.CurrentMonth,
		Warnings:        r.Warnings,
	})
}

// GetDaily handles GET /api/v1/daily
func (c *Controller) GetDaily(ctx echo.Context) error {
	r := c.result(ctx)
	return ctx.JSON(http.StatusOK, DailyResponse{
		Days:     r.Daily,
		Warnings: r.Warnings,
	})
}

// GetEntities handles GET /api/v1/entities
func (c *Controller) GetEntities(ctx echo.Context) error {
	r := c.result(ctx)
	return ctx.JSON(http.StatusOK, EntitiesResponse{
		Entities:     r.EntityTotals,
		DaysRecorded: r.DaysRecorded,
		Warnings:     r.Warnings,
	})
}

// GetFunds handles GET /api/v1/funds
func (c *Controller) GetFunds(ctx echo.Context) error {
	r := c.result(ctx)
	return ctx.JSON(http.StatusOK, FundsResponse{
		Lifetime:     r.Lifetime.Funds,
		CurrentMonth: r.CurrentMonth.Funds,
		Warnings:     r.Warnings,
	})
}

// GetGaps handles GET /api/v1/gaps
func (c *Controller) GetGaps(ctx echo.Context) error {
	r := c.result(ctx)
	gaps := r.Gaps
	if kind := ctx.QueryParam("kind"); kind != "" {
		filtered := make([]audit.Gap, 0, len(gaps))
		for _, g := range gaps {
			if string(g.Kind) == kind {
				filtered = append(filtered, g)
			}
		}
		gaps = filtered
	}
	return ctx.JSON(http.StatusOK, GapsResponse{
		Gaps:     gaps,
		Total:    len(gaps),
		Warnings: r.Warnings,
	})
}

// PostRefresh handles POST /api/v1/refresh: it drops the snapshot cache
// and runs a fresh cycle immediately.
func (c *Controller) PostRefresh(ctx echo.Context) error {
	c.service.Flush()
	r := c.result(ctx)
	logger.Info("manual refresh completed", "cycle_id", r.CycleID, "elapsed", r.Elapsed)
	return ctx.JSON(http.StatusOK, RefreshResponse{
		CycleID:  r.CycleID.String(),
		Elapsed:  r.Elapsed.Round(time.Millisecond).String(),
		Warnings: r.Warnings,
	})
}

// GetHealth handles GET /api/v1/health. It does not touch the sources;
// it only confirms the process is serving.
func (c *Controller) GetHealth(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
		Name:   c.settings.Main.Name,
	})
}
