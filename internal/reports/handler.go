package reports

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/botica-erp/botica-erp/internal/platform/httpx"
)

// Handler exposes the report endpoints.
type Handler struct {
	logger *slog.Logger
	repo   Repository
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, repo Repository) *Handler {
	return &Handler{logger: logger, repo: repo}
}

// MountRoutes attaches report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/low-stock", h.lowStock)
	r.Get("/top-customers", h.topCustomers)
	r.Get("/stock", h.stock)
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	rows, err := h.repo.LowStock(r.Context())
	if err != nil {
		h.logger.Error("low-stock report failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *Handler) topCustomers(w http.ResponseWriter, r *http.Request) {
	rows, err := h.repo.TopCustomers(r.Context())
	if err != nil {
		h.logger.Error("top-customers report failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *Handler) stock(w http.ResponseWriter, r *http.Request) {
	rows, err := h.repo.Stock(r.Context())
	if err != nil {
		h.logger.Error("stock report failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}
