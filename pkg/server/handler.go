package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/guorui-lawtech/tmscan/pkg/analysis"
	"github.com/guorui-lawtech/tmscan/pkg/config"
	"github.com/guorui-lawtech/tmscan/pkg/data"
	"github.com/guorui-lawtech/tmscan/pkg/export"
	"github.com/guorui-lawtech/tmscan/pkg/score"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ReportIDHeader carries the id written into the export summary.
const ReportIDHeader = "X-Report-ID"

var (
	assessmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tmscan_assessments_total",
		Help: "Registrations scored through the API by band.",
	}, []string{"band"})

	exportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tmscan_exports_total",
		Help: "Export archives produced by data format.",
	}, []string{"format"})
)

// Settings is the public dashboard configuration.
type Settings struct {
	Title          string           `json:"title"`
	Locale         string           `json:"locale"`
	Dashboard      config.Dashboard `json:"dashboard"`
	Classes        []string         `json:"classes"`
	DefaultClasses []string         `json:"default_classes"`
	Source         string           `json:"source"`
	Axes           []string         `json:"axes"`
	Columns        []string         `json:"columns"`
}

// ScanResult is the batch analysis response.
type ScanResult struct {
	Count int             `json:"count"`
	Items []*analysis.Row `json:"items"`
}

// Handler serves the API over one registration source.
type Handler struct {
	cfg *config.Config
	src data.Source
	now func() time.Time
}

func NewHandler(cfg *config.Config, src data.Source) *Handler {
	return &Handler{cfg: cfg, src: src, now: time.Now}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// locale returns the ?locale= override or the configured locale.
func (h *Handler) locale(r *http.Request) string {
	if v := r.URL.Query().Get("locale"); v != "" {
		return score.NormalizeLocale(v)
	}
	return score.NormalizeLocale(h.cfg.Locale)
}

func (h *Handler) evaluator(r *http.Request) *score.Evaluator {
	ev := score.NewEvaluator(h.locale(r))
	ev.Now = h.now
	return ev
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) settings(w http.ResponseWriter, r *http.Request) {
	loc := h.locale(r)
	writeJSON(w, http.StatusOK, &Settings{
		Title:          h.cfg.Title,
		Locale:         loc,
		Dashboard:      h.cfg.Dashboard,
		Classes:        h.cfg.Classes,
		DefaultClasses: h.cfg.DefaultClasses,
		Source:         h.src.Name(),
		Axes:           score.AxisLabels(loc),
		Columns:        analysis.Columns(loc),
	})
}

func (h *Handler) evaluate(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if strings.TrimSpace(date) == "" {
		writeError(w, http.StatusBadRequest, "date parameter required")
		return
	}

	a := h.evaluator(r).Evaluate(date)
	assessmentsTotal.WithLabelValues(string(a.Band)).Inc()
	writeJSON(w, http.StatusOK, a)
}

func (h *Handler) trademarks(w http.ResponseWriter, r *http.Request) {
	c, err := parseCriteria(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := analysis.Scan(r.Context(), h.src, h.evaluator(r), c)
	if err != nil {
		slog.Error("failed to scan registrations", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to scan registrations")
		return
	}

	countAssessments(rows)
	writeJSON(w, http.StatusOK, &ScanResult{Count: len(rows), Items: rows})
}

func (h *Handler) trademark(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	d, err := analysis.Diagnose(r.Context(), h.src, h.evaluator(r), id)
	if errors.Is(err, data.ErrNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("registration %s not found", id))
		return
	}
	if err != nil {
		slog.Error("failed to diagnose registration", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to diagnose registration")
		return
	}

	assessmentsTotal.WithLabelValues(string(d.Assessment.Band)).Inc()
	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	c, err := parseCriteria(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	loc := h.locale(r)
	rows, err := analysis.Scan(r.Context(), h.src, h.evaluator(r), c)
	if err != nil {
		slog.Error("failed to scan registrations", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to scan registrations")
		return
	}

	ex := export.NewExporter(h.cfg.Report.Name, h.cfg.Report.Spreadsheet, loc)
	ex.Now = h.now

	b, err := ex.Export(analysis.ToTable(rows, loc))
	if errors.Is(err, export.ErrEmptyTable) {
		writeError(w, http.StatusNotFound, "no registrations match the criteria")
		return
	}
	if err != nil {
		slog.Error("failed to export report", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to export report")
		return
	}

	exportsTotal.WithLabelValues(b.Format).Inc()

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", b.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(b.Data)))
	w.Header().Set(ReportIDHeader, b.ID)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(b.Data); err != nil {
		slog.Error("failed to write export", "id", b.ID, "error", err)
	}
}

func countAssessments(rows []*analysis.Row) {
	for _, r := range rows {
		if r == nil || r.Assessment == nil {
			continue
		}
		assessmentsTotal.WithLabelValues(string(r.Assessment.Band)).Inc()
	}
}

// parseCriteria reads class (repeated or comma separated), from, to
// and limit query parameters.
func parseCriteria(r *http.Request) (*data.Criteria, error) {
	q := r.URL.Query()

	var classes []string
	for _, v := range q["class"] {
		classes = append(classes, strings.Split(v, ",")...)
	}

	c := &data.Criteria{
		Classes: data.NormalizeClasses(classes),
		From:    q.Get("from"),
		To:      q.Get("to"),
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid limit %q", v)
		}
		c.Limit = n
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
