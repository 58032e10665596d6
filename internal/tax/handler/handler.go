package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"taxcalc/internal/platform/middleware"
	"taxcalc/internal/tax/models"
	"taxcalc/internal/tax/orchestrator"
	"taxcalc/internal/tax/ratetable"
	"taxcalc/internal/tax/service"
	dErrors "taxcalc/pkg/domain-errors"
	"taxcalc/pkg/platform/httputil"
)

// Service defines the tax operations exposed over HTTP.
type Service interface {
	CalculateIndividual(ctx context.Context, in orchestrator.IndividualInput) (*models.Calculation[models.IndividualResult], error)
	CalculateBusiness(ctx context.Context, in orchestrator.BusinessInput) (*models.Calculation[models.BusinessResult], error)
	BusinessExemption(ctx context.Context, in service.ExemptionInput) (*models.BusinessExemption, error)
	Rates(ctx context.Context, year int) (*ratetable.Table, error)
	Years() []int
}

// Handler serves the tax calculation endpoints.
type Handler struct {
	logger *slog.Logger
	tax    Service
}

func New(tax Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, tax: tax}
}

// Register registers the tax routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/v1/tax", func(r chi.Router) {
		r.Post("/individual", h.handleIndividual)
		r.Post("/business", h.handleBusiness)
		r.Post("/exemption/business", h.handleBusinessExemption)
		r.Get("/rates", h.handleRates)
		r.Get("/rates/{year}", h.handleRates)
	})
}

func (h *Handler) handleIndividual(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[IndividualRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.tax.CalculateIndividual(ctx, req.input())
	if err != nil {
		h.fail(ctx, w, "individual tax calculation failed", requestID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleBusiness(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[BusinessRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.tax.CalculateBusiness(ctx, req.input())
	if err != nil {
		h.fail(ctx, w, "business tax calculation failed", requestID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleBusinessExemption(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ExemptionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.tax.BusinessExemption(ctx, req.input())
	if err != nil {
		h.fail(ctx, w, "business exemption check failed", requestID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// handleRates serves the schedule for {year}, or the default schedule when the
// year is omitted.
func (h *Handler) handleRates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	year := 0
	if raw := chi.URLParam(r, "year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "year must be a positive integer"))
			return
		}
		year = parsed
	}

	table, err := h.tax.Rates(ctx, year)
	if err != nil {
		h.fail(ctx, w, "rate table lookup failed", requestID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, formatRates(table, h.tax.Years()))
}

// fail logs caller mistakes at warn and everything else at error.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg, requestID string, err error) {
	if dErrors.IsValidation(err) || dErrors.HasCode(err, dErrors.CodeNotFound) {
		h.logger.WarnContext(ctx, msg, "request_id", requestID, "error", err)
	} else {
		h.logger.ErrorContext(ctx, msg, "request_id", requestID, "error", err)
	}
	httputil.WriteError(w, err)
}
