package ledger

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/botica-erp/botica-erp/internal/auth"
	"github.com/botica-erp/botica-erp/internal/platform/httpx"
	"github.com/botica-erp/botica-erp/internal/shared"
)

// Handler exposes the receipt and sale endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

type createRequest struct {
	SupplierID int64       `json:"supplierId"`
	CustomerID int64       `json:"customerId"`
	Date       string      `json:"date" validate:"required"`
	Notes      *string     `json:"notes"`
	Items      []ItemInput `json:"items" validate:"required,min=1,dive"`
}

type updateRequest struct {
	SupplierID *int64      `json:"supplierId"`
	CustomerID *int64      `json:"customerId"`
	Date       *string     `json:"date"`
	Notes      *string     `json:"notes"`
	Items      []ItemInput `json:"items" validate:"required,min=1,dive"`
}

func (h *Handler) create(kind DocKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
			return
		}
		if err := h.validate.Struct(req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		date, err := ParseDate(req.Date)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}

		partyID := req.SupplierID
		if kind == KindSale {
			partyID = req.CustomerID
		}
		id, err := h.service.Create(r.Context(), kind, CreateInput{
			PartyID:        partyID,
			Date:           date,
			Notes:          req.Notes,
			Items:          req.Items,
			ActorID:        auth.ActorID(r.Context()),
			IdempotencyKey: r.Header.Get("Idempotency-Key"),
		})
		if err != nil {
			h.respondError(w, kind, "create", err)
			return
		}
		httpx.JSON(w, http.StatusCreated, map[string]any{"ok": true, "id": id})
	}
}

func (h *Handler) update(kind DocKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid document id")
			return
		}
		var req updateRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
			return
		}
		if err := h.validate.Struct(req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}

		in := UpdateInput{Notes: req.Notes, Items: req.Items, ActorID: auth.ActorID(r.Context())}
		if kind == KindSale {
			in.PartyID = req.CustomerID
		} else {
			in.PartyID = req.SupplierID
		}
		if req.Date != nil {
			date, err := ParseDate(*req.Date)
			if err != nil {
				httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
				return
			}
			in.Date = &date
		}

		if err := h.service.Update(r.Context(), kind, id, in); err != nil {
			h.respondError(w, kind, "update", err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

func (h *Handler) delete(kind DocKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid document id")
			return
		}
		if err := h.service.Delete(r.Context(), kind, id, auth.ActorID(r.Context())); err != nil {
			h.respondError(w, kind, "delete", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type listEntry struct {
	ID        int64     `json:"id"`
	Date      string    `json:"date"`
	Notes     *string   `json:"notes"`
	CreatedAt string    `json:"created_at"`
	Supplier  *PartyRef `json:"supplier,omitempty"`
	Customer  *PartyRef `json:"customer,omitempty"`
	Items     []Item    `json:"items"`
}

func (h *Handler) list(kind DocKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := ListFilter{
			Day:   q.Get("day"),
			Week:  q.Get("week"),
			Month: q.Get("month"),
			From:  q.Get("from"),
			To:    q.Get("to"),
			Query: q.Get("q"),
		}
		partyParam := "supplierId"
		if kind == KindSale {
			partyParam = "customerId"
		}
		if raw := q.Get(partyParam); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid "+partyParam)
				return
			}
			filter.PartyID = id
		}

		docs, err := h.service.List(r.Context(), kind, filter)
		if err != nil {
			h.respondError(w, kind, "list", err)
			return
		}

		entries := make([]listEntry, 0, len(docs))
		for _, d := range docs {
			entry := listEntry{
				ID:        d.ID,
				Date:      d.Date.Format(dateLayout),
				Notes:     d.Notes,
				CreatedAt: d.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
				Items:     d.Items,
			}
			party := d.Party
			if kind == KindSale {
				entry.Customer = &party
			} else {
				entry.Supplier = &party
			}
			if entry.Items == nil {
				entry.Items = []Item{}
			}
			entries = append(entries, entry)
		}
		httpx.JSON(w, http.StatusOK, entries)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, kind DocKind, op string, err error) {
	switch {
	case errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrStockWouldGoNegative):
		httpx.Problem(w, http.StatusConflict, "Stock Conflict", err.Error())
	case errors.Is(err, shared.ErrIdempotencyConflict):
		httpx.Problem(w, http.StatusConflict, "Duplicate Request", err.Error())
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrNoItems), errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrValidationFailed), errors.Is(err, ErrMedicineNotFound):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("ledger operation failed", slog.String("kind", string(kind)), slog.String("op", op), slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
