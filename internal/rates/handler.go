package rates

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/botica-erp/botica-erp/internal/platform/httpx"
)

// RefreshEnqueuer submits refresh tasks to the background queue.
type RefreshEnqueuer interface {
	EnqueueRatesRefresh(ctx context.Context, reason string) error
}

// Handler exposes the rate endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	enqueuer RefreshEnqueuer
}

// NewHandler constructs Handler. A nil enqueuer makes the refresh endpoint
// fetch the external rate synchronously instead of queueing it.
func NewHandler(logger *slog.Logger, service *Service, enqueuer RefreshEnqueuer) *Handler {
	return &Handler{logger: logger, service: service, enqueuer: enqueuer}
}

// MountRoutes attaches the three rate route groups.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/exchange-rates", func(r chi.Router) {
		r.Get("/current", h.exchangeCurrent)
		r.Get("/history", h.exchangeHistory)
		r.Post("/update", h.exchangeUpdate)
		r.Post("/refresh", h.exchangeRefresh)
		r.Delete("/current", h.exchangeClear)
	})
	r.Route("/shipping-rates", func(r chi.Router) {
		r.Get("/current", h.shippingCurrent)
		r.Get("/history", h.shippingHistory)
		r.Post("/update", h.shippingUpdate)
		r.Post("/calculate", h.shippingCalculate)
		r.Delete("/current", h.shippingClear)
	})
	r.Route("/utility-rates", func(r chi.Router) {
		r.Get("/current", h.utilityCurrent)
		r.Get("/history", h.utilityHistory)
		r.Post("/update", h.utilityUpdate)
		r.Delete("/current", h.utilityClear)
	})
}

func (h *Handler) exchangeCurrent(w http.ResponseWriter, r *http.Request) {
	rate, err := h.service.CurrentExchange(r.Context(), r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		h.respondError(w, "current exchange rate", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rate)
}

func (h *Handler) exchangeHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	history, err := h.service.ExchangeHistory(r.Context(), q.Get("from"), q.Get("to"), queryDays(r))
	if err != nil {
		h.respondError(w, "exchange history", err)
		return
	}
	httpx.JSON(w, http.StatusOK, history)
}

func (h *Handler) exchangeUpdate(w http.ResponseWriter, r *http.Request) {
	var in ExchangeInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	rate, err := h.service.SetExchange(r.Context(), in)
	if err != nil {
		h.respondError(w, "update exchange rate", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rate)
}

func (h *Handler) exchangeRefresh(w http.ResponseWriter, r *http.Request) {
	if h.enqueuer != nil {
		if err := h.enqueuer.EnqueueRatesRefresh(r.Context(), "manual"); err != nil {
			h.logger.Error("enqueue exchange refresh failed", "error", err)
			httpx.Problem(w, http.StatusServiceUnavailable, "Queue Unavailable", "could not schedule the refresh")
			return
		}
		httpx.JSON(w, http.StatusAccepted, map[string]any{"ok": true, "status": "queued"})
		return
	}
	rate, err := h.service.RefreshExchange(r.Context())
	if err != nil {
		h.logger.Error("exchange refresh failed", "error", err)
		httpx.Problem(w, http.StatusBadGateway, "Provider Unavailable", "could not fetch the external rate")
		return
	}
	httpx.JSON(w, http.StatusOK, rate)
}

func (h *Handler) exchangeClear(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if err := h.service.ClearExchange(r.Context(), q.Get("from"), q.Get("to")); err != nil {
		h.respondError(w, "clear exchange rate", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) shippingCurrent(w http.ResponseWriter, r *http.Request) {
	rate, err := h.service.CurrentShipping(r.Context())
	if err != nil {
		h.respondError(w, "current shipping rate", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rate)
}

func (h *Handler) shippingHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.service.ShippingHistory(r.Context(), queryDays(r))
	if err != nil {
		h.respondError(w, "shipping history", err)
		return
	}
	httpx.JSON(w, http.StatusOK, history)
}

func (h *Handler) shippingUpdate(w http.ResponseWriter, r *http.Request) {
	var in ShippingInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	rate, err := h.service.SetShipping(r.Context(), in)
	if err != nil {
		h.respondError(w, "update shipping rate", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rate)
}

type calculateRequest struct {
	WeightKg float64 `json:"weight_kg"`
	Type     string  `json:"type"`
}

func (h *Handler) shippingCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	quote, err := h.service.CalculateShipping(r.Context(), req.WeightKg, req.Type)
	if err != nil {
		h.respondError(w, "calculate shipping", err)
		return
	}
	httpx.JSON(w, http.StatusOK, quote)
}

func (h *Handler) shippingClear(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearShipping(r.Context()); err != nil {
		h.respondError(w, "clear shipping rate", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) utilityCurrent(w http.ResponseWriter, r *http.Request) {
	rate, err := h.service.CurrentUtility(r.Context())
	if err != nil {
		h.respondError(w, "current utility rate", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rate)
}

func (h *Handler) utilityHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.service.UtilityHistory(r.Context(), queryDays(r))
	if err != nil {
		h.respondError(w, "utility history", err)
		return
	}
	httpx.JSON(w, http.StatusOK, history)
}

func (h *Handler) utilityUpdate(w http.ResponseWriter, r *http.Request) {
	var in UtilityInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	rate, err := h.service.SetUtility(r.Context(), in)
	if err != nil {
		h.respondError(w, "update utility rate", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rate)
}

func (h *Handler) utilityClear(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearUtility(r.Context()); err != nil {
		h.respondError(w, "clear utility rate", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func queryDays(r *http.Request) int {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	return days
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNoActiveRate):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "no active rate is configured")
	case errors.Is(err, ErrInvalidRate), errors.Is(err, ErrInvalidPair),
		errors.Is(err, ErrInvalidWeight), errors.Is(err, ErrInvalidType),
		errors.Is(err, ErrDomesticAbove):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error(op+" failed", "error", err)
		httpx.RespondError(w, err)
	}
}
