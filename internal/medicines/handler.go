package medicines

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"

	"github.com/botica-erp/botica-erp/internal/platform/httpx"
)

// Handler exposes the catalog endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

type medicineRequest struct {
	Code           string  `json:"code" validate:"required,max=50"`
	CommercialName string  `json:"commercial_name" validate:"required,max=200"`
	GenericName    string  `json:"generic_name" validate:"max=200"`
	DosageForm     string  `json:"dosage_form"`
	Concentration  string  `json:"concentration"`
	Packaging      string  `json:"packaging"`
	ExpiresAt      *string `json:"expires_at"`
	UnitWeightKg   float64 `json:"unit_weight_kg" validate:"gte=0"`
}

type priceRequest struct {
	PurchasePrice float64  `json:"purchase_price" validate:"gte=0"`
	MarginPct     float64  `json:"margin_pct" validate:"gte=0,lt=100"`
	DiscountFloor *float64 `json:"discount_floor" validate:"omitempty,gte=0"`
}

type paramsRequest struct {
	MinStock        int `json:"min_stock"`
	ExpiryAlertDays int `json:"expiry_alert_days"`
	IdleAlertDays   int `json:"idle_alert_days"`
}

// MountRoutes attaches catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/prices", h.addPrice)
	r.Put("/{id}/params", h.setParams)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	meds, err := h.service.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.logger.Error("list medicines failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if meds == nil {
		meds = []Medicine{}
	}
	httpx.JSON(w, http.StatusOK, meds)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	med, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "medicine not found")
			return
		}
		h.respondError(w, "get", err)
		return
	}
	httpx.JSON(w, http.StatusOK, med)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	med, ok := h.decodeMedicine(w, r)
	if !ok {
		return
	}
	created, err := h.service.Create(r.Context(), med)
	if err != nil {
		h.respondError(w, "create", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	med, ok := h.decodeMedicine(w, r)
	if !ok {
		return
	}
	if err := h.service.Update(r.Context(), id, med); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "medicine not found")
			return
		}
		h.respondError(w, "update", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "medicine not found")
			return
		}
		if httpx.IsForeignKeyViolation(err) {
			httpx.Problem(w, http.StatusConflict, "In Use", "the medicine has receipts or sales attached")
			return
		}
		h.respondError(w, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req priceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	price, err := h.service.AddPrice(r.Context(), id, req.PurchasePrice, req.MarginPct, req.DiscountFloor)
	if err != nil {
		h.respondError(w, "add price", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, price)
}

func (h *Handler) setParams(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req paramsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	params, err := h.service.SetParams(r.Context(), id, req.MinStock, req.ExpiryAlertDays, req.IdleAlertDays)
	if err != nil {
		h.respondError(w, "set params", err)
		return
	}
	httpx.JSON(w, http.StatusOK, params)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid medicine id")
		return 0, false
	}
	return id, true
}

func (h *Handler) decodeMedicine(w http.ResponseWriter, r *http.Request) (Medicine, bool) {
	var req medicineRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return Medicine{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return Medicine{}, false
	}
	med := Medicine{
		Code:           req.Code,
		CommercialName: req.CommercialName,
		GenericName:    req.GenericName,
		DosageForm:     req.DosageForm,
		Concentration:  req.Concentration,
		Packaging:      req.Packaging,
		UnitWeightKg:   req.UnitWeightKg,
	}
	if req.ExpiresAt != nil && *req.ExpiresAt != "" {
		expires, err := time.Parse("2006-01-02", *req.ExpiresAt)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid expires_at date")
			return Medicine{}, false
		}
		med.ExpiresAt = &expires
	}
	return med, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrCodeRequired), errors.Is(err, ErrNameRequired),
		errors.Is(err, ErrInvalidPrice), errors.Is(err, ErrInvalidID):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("medicine operation failed", slog.String("op", op), slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
