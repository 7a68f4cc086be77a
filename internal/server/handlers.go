package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/fundwatch/fundwatch/internal/fund"
	"github.com/fundwatch/fundwatch/internal/returns"
)

// Handlers provides HTTP handlers for the returns API
type Handlers struct {
	repo *returns.Repository
	log  zerolog.Logger
}

// NewHandlers creates the API handlers
func NewHandlers(repo *returns.Repository, log zerolog.Logger) *Handlers {
	return &Handlers{
		repo: repo,
		log:  log.With().Str("handler", "returns").Logger(),
	}
}

// GetDates returns all report dates, newest first
func (h *Handlers) GetDates(w http.ResponseWriter, r *http.Request) {
	dates, err := h.repo.AvailableDates()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load report dates")
		respondError(w, http.StatusInternalServerError, "failed to load report dates")
		return
	}
	if dates == nil {
		dates = []string{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"dates": dates})
}

// GetReturns returns ranked fund returns for one report date.
// Query params: date (defaults to the latest), top (defaults to all).
func (h *Handlers) GetReturns(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		latest, err := h.latestDate()
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to resolve latest report date")
			respondError(w, http.StatusInternalServerError, "failed to resolve latest report date")
			return
		}
		if latest == "" {
			respondError(w, http.StatusNotFound, "no report dates available")
			return
		}
		date = latest
	}

	top := queryInt(r, "top", 0)

	rows, err := h.repo.ReturnsForDate(date, top)
	if err != nil {
		h.log.Error().Err(err).Str("date", date).Msg("Failed to load returns")
		respondError(w, http.StatusInternalServerError, "failed to load returns")
		return
	}
	if rows == nil {
		rows = []returns.StoredReturn{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"report_date": date,
		"funds":       rows,
	})
}

// GetComparison returns a side-by-side 3-year ROI view across report dates.
// Query params: dates (comma-separated, required), top (default 200),
// union (default true).
func (h *Handlers) GetComparison(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("dates")
	if raw == "" {
		respondError(w, http.StatusBadRequest, "dates parameter is required")
		return
	}
	var dates []string
	for _, d := range strings.Split(raw, ",") {
		if d = strings.TrimSpace(d); d != "" {
			dates = append(dates, d)
		}
	}
	if len(dates) == 0 {
		respondError(w, http.StatusBadRequest, "dates parameter is required")
		return
	}

	top := queryInt(r, "top", 200)
	union := true
	if v := r.URL.Query().Get("union"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			union = parsed
		}
	}

	rows, err := h.repo.Comparison(dates, top, union)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build comparison")
		respondError(w, http.StatusInternalServerError, "failed to build comparison")
		return
	}
	if rows == nil {
		rows = []returns.ComparisonRow{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"dates": dates,
		"funds": rows,
	})
}

// GetCategorySummary aggregates the latest report date's funds by category
func (h *Handlers) GetCategorySummary(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		latest, err := h.latestDate()
		if err != nil || latest == "" {
			respondError(w, http.StatusNotFound, "no report dates available")
			return
		}
		date = latest
	}

	rows, err := h.repo.ReturnsForDate(date, 0)
	if err != nil {
		h.log.Error().Err(err).Str("date", date).Msg("Failed to load returns")
		respondError(w, http.StatusInternalServerError, "failed to load returns")
		return
	}

	results := make([]fund.ReturnResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, fund.ReturnResult{
			FundName:  row.FundName,
			FundHouse: row.FundHouse,
			Category:  row.Category,
			ROI1Y:     row.ROI1Y,
			ROI2Y:     row.ROI2Y,
			ROI3Y:     row.ROI3Y,
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"report_date": date,
		"categories":  returns.SummarizeByCategory(results),
	})
}

func (h *Handlers) latestDate() (string, error) {
	dates, err := h.repo.AvailableDates()
	if err != nil {
		return "", err
	}
	if len(dates) == 0 {
		return "", nil
	}
	return dates[0], nil
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
