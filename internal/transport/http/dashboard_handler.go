package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "bidash/internal/errors"
	"bidash/internal/services"
	"bidash/pkg/contracts/domain"
)

// DashboardHandler serves the derived-table API behind the dashboard.
type DashboardHandler struct {
	service      *services.DashboardService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
}

// NewDashboardHandler creates the handler.
func NewDashboardHandler(service *services.DashboardService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		logger:       logger,
		errorHandler: errorHandler,
		validate:     validator.New(),
	}
}

// Routes returns the dashboard API router.
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/summary", h.GetSummary)
	r.Get("/daily", h.GetDaily)
	r.Get("/combined", h.GetCombined)
	r.Get("/insights", h.GetInsights)
	r.Get("/campaigns", h.GetTopCampaigns)
	r.Post("/reload", h.Reload)
	return r
}

// filterRequest carries the query-string filter parameters.
type filterRequest struct {
	From      string   `validate:"omitempty,datetime=2006-01-02"`
	To        string   `validate:"omitempty,datetime=2006-01-02"`
	Platforms []string `validate:"dive,required"`
	Dimension string   `validate:"omitempty,oneof=platform tactic campaign state date week weekday"`
	SortBy    string   `validate:"omitempty,oneof=impressions clicks spend attributed_revenue ctr cpc cpm roas conversion_rate"`
	Desc      bool
	Limit     int `validate:"omitempty,min=1,max=500"`
}

// parseFilter reads and validates the filter query parameters.
func (h *DashboardHandler) parseFilter(r *http.Request) (services.Filter, filterRequest, error) {
	q := r.URL.Query()
	req := filterRequest{
		From:      q.Get("from"),
		To:        q.Get("to"),
		Platforms: q["platform"],
		Dimension: q.Get("dimension"),
		SortBy:    q.Get("sort_by"),
		Desc:      q.Get("order") != "asc",
	}
	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			return services.Filter{}, req, apierrors.ErrValidation("limit", "must be an integer")
		}
		req.Limit = n
	}

	if err := h.validate.Struct(req); err != nil {
		return services.Filter{}, req, apierrors.InvalidRequestWithError(err)
	}

	var f services.Filter
	if req.From != "" {
		f.From, _ = time.Parse("2006-01-02", req.From)
		f.From = f.From.UTC()
	}
	if req.To != "" {
		f.To, _ = time.Parse("2006-01-02", req.To)
		f.To = f.To.UTC()
	}
	for _, p := range req.Platforms {
		platform, err := domain.ParsePlatform(p)
		if err != nil {
			return services.Filter{}, req, apierrors.ErrValidation("platform", err.Error())
		}
		f.Platforms = append(f.Platforms, platform)
	}
	if err := f.Validate(); err != nil {
		return services.Filter{}, req, apierrors.ErrValidation("from/to", err.Error())
	}
	return f, req, nil
}

// GetSummary returns the marketing summary for a grouping dimension
// (default: platform), optionally sorted by a metric.
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	f, req, err := h.parseFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	dim := domain.ByPlatform
	if req.Dimension != "" {
		dim, _ = domain.ParseDimension(req.Dimension)
	}

	rows, err := h.service.Summary(r.Context(), f, dim)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if req.SortBy != "" {
		if err := sortSummary(rows, req.SortBy, req.Desc); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("sort_by", err.Error()))
			return
		}
	}
	render.JSON(w, r, rows)
}

// GetDaily returns the per-date marketing summary.
func (h *DashboardHandler) GetDaily(w http.ResponseWriter, r *http.Request) {
	f, _, err := h.parseFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	rows, err := h.service.Daily(r.Context(), f)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, rows)
}

// GetCombined returns the outer-joined daily marketing/business table.
func (h *DashboardHandler) GetCombined(w http.ResponseWriter, r *http.Request) {
	f, _, err := h.parseFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	rows, err := h.service.Combined(r.Context(), f)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, rows)
}

// GetInsights returns the insight bundle for the filtered window.
func (h *DashboardHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	f, _, err := h.parseFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	ins, err := h.service.Insights(r.Context(), f)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, ins)
}

// GetTopCampaigns returns the top campaigns by ROAS (default 10).
func (h *DashboardHandler) GetTopCampaigns(w http.ResponseWriter, r *http.Request) {
	f, req, err := h.parseFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	limit := req.Limit
	if limit == 0 {
		limit = 10
	}
	rows, err := h.service.TopCampaigns(r.Context(), f, limit)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, rows)
}

// Reload re-reads the input files and swaps in a fresh snapshot.
func (h *DashboardHandler) Reload(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "reload requested")

	if err := h.service.Load(r.Context()); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.LoadFailedError(err))
		return
	}

	ds, err := h.service.Snapshot()
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"success":           true,
		"loaded_at":         ds.LoadedAt,
		"marketing_records": len(ds.Marketing),
		"business_records":  len(ds.Business),
		"skipped_rows":      ds.SkippedRows,
	})
}
