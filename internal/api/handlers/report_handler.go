package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/almoxops/replen/internal/domain"
	"github.com/almoxops/replen/internal/engine"
	"github.com/almoxops/replen/internal/export"
	"github.com/almoxops/replen/internal/service"
)

type ReportHandler struct {
	service  *service.ReportService
	defaults engine.Params
}

func NewReportHandler(svc *service.ReportService, defaults engine.Params) *ReportHandler {
	return &ReportHandler{service: svc, defaults: defaults}
}

// GetReport returns the full recommendation table. Query parameters
// override the configured defaults per request.
func (h *ReportHandler) GetReport(c *gin.Context) {
	params, err := h.parseParams(c)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.service.Report(c.Request.Context(), params)
	if err != nil {
		abortForError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetAlerts returns only rows needing attention, worst coverage first.
func (h *ReportHandler) GetAlerts(c *gin.Context) {
	params, err := h.parseParams(c)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	alerts, err := h.service.Alerts(c.Request.Context(), params)
	if err != nil {
		abortForError(c, err)
		return
	}

	if raw := strings.TrimSpace(c.Query("tier")); raw != "" {
		tier, ok := domain.ParseTier(raw)
		if !ok {
			errorResponse(c, http.StatusBadRequest, fmt.Sprintf("unknown tier %q", raw))
			return
		}
		filtered := alerts[:0:0]
		for _, row := range alerts {
			if row.Tier == tier {
				filtered = append(filtered, row)
			}
		}
		alerts = filtered
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "count": len(alerts)})
}

// GetRankings returns the top consumers by daily rate.
func (h *ReportHandler) GetRankings(c *gin.Context) {
	params, err := h.parseParams(c)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	limit := 20
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil && v > 0 {
		limit = v
	}

	ranked, err := h.service.Rankings(c.Request.Context(), params, limit)
	if err != nil {
		abortForError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rankings": ranked, "count": len(ranked)})
}

// GetHistory returns the per-item movement rollup.
func (h *ReportHandler) GetHistory(c *gin.Context) {
	summaries, err := h.service.History(c.Request.Context())
	if err != nil {
		abortForError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": summaries, "count": len(summaries)})
}

// ExportReport streams the report as CSV, or as an order workbook for
// one horizon when format=xlsx.
func (h *ReportHandler) ExportReport(c *gin.Context) {
	params, err := h.parseParams(c)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.service.Report(c.Request.Context(), params)
	if err != nil {
		abortForError(c, err)
		return
	}

	switch c.DefaultQuery("format", "csv") {
	case "csv":
		c.Header("Content-Disposition", `attachment; filename="replenishment_report.csv"`)
		c.Header("Content-Type", "text/csv")
		if err := export.WriteReportCSV(c.Writer, report); err != nil {
			log.Error().Err(err).Msg("report csv export failed")
		}
	case "xlsx":
		horizon, err := strconv.Atoi(c.DefaultQuery("horizon", "15"))
		if err != nil || horizon <= 0 {
			errorResponse(c, http.StatusBadRequest, "horizon must be a positive integer")
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="material_order_%dd.xlsx"`, horizon))
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := export.WriteOrderXLSX(c.Writer, report, horizon, ""); err != nil {
			errorResponse(c, http.StatusBadRequest, err.Error())
		}
	default:
		errorResponse(c, http.StatusBadRequest, "format must be csv or xlsx")
	}
}

// parseParams merges query overrides onto the configured defaults.
func (h *ReportHandler) parseParams(c *gin.Context) (engine.Params, error) {
	params := h.defaults

	if mode := strings.TrimSpace(c.Query("mode")); mode != "" {
		params.Mode = engine.ClassifierMode(mode)
	}

	if raw := strings.TrimSpace(c.Query("horizons")); raw != "" {
		var horizons []int
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			h, err := strconv.Atoi(part)
			if err != nil {
				return params, fmt.Errorf("invalid horizon %q", part)
			}
			horizons = append(horizons, h)
		}
		params.Horizons = horizons
	}

	if raw := c.Query("trailing_days"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return params, fmt.Errorf("invalid trailing_days %q", raw)
		}
		params.Window.TrailingDays = v
	}

	var err error
	if params.Window.Start, err = dateParam(c, "window_start"); err != nil {
		return params, err
	}
	if params.Window.End, err = dateParam(c, "window_end"); err != nil {
		return params, err
	}
	if params.NextOrderDate, err = dateParam(c, "next_order_date"); err != nil {
		return params, err
	}

	if raw := c.Query("warning_days"); raw != "" {
		if params.WarningDays, err = strconv.ParseFloat(raw, 64); err != nil {
			return params, fmt.Errorf("invalid warning_days %q", raw)
		}
	}
	if raw := c.Query("critical_coverage_days"); raw != "" {
		if params.CriticalCoverageDays, err = strconv.ParseFloat(raw, 64); err != nil {
			return params, fmt.Errorf("invalid critical_coverage_days %q", raw)
		}
	}
	if raw := c.Query("high_variability_pct"); raw != "" {
		if params.HighVariabilityPct, err = strconv.ParseFloat(raw, 64); err != nil {
			return params, fmt.Errorf("invalid high_variability_pct %q", raw)
		}
	}
	if raw := c.Query("min_history"); raw != "" {
		if params.MinHistoryCount, err = strconv.Atoi(raw); err != nil {
			return params, fmt.Errorf("invalid min_history %q", raw)
		}
	}
	if raw := c.Query("reorder_point"); raw != "" {
		if params.ReorderPoints.Default, err = strconv.ParseFloat(raw, 64); err != nil {
			return params, fmt.Errorf("invalid reorder_point %q", raw)
		}
	}
	if raw := c.Query("safety_margin"); raw != "" {
		if params.SafetyMargin, err = strconv.ParseFloat(raw, 64); err != nil {
			return params, fmt.Errorf("invalid safety_margin %q", raw)
		}
	}

	return params, nil
}

func dateParam(c *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q, expected YYYY-MM-DD", name, raw)
	}
	return &t, nil
}

// abortForError maps configuration errors to 400 and everything else,
// source failures included, to 500.
func abortForError(c *gin.Context, err error) {
	if errors.Is(err, engine.ErrInvalidConfig) {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	errorResponse(c, http.StatusInternalServerError, err.Error())
}

func errorResponse(c *gin.Context, statusCode int, message string) {
	log.Error().Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
}
