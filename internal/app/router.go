package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/botica-erp/botica-erp/internal/auth"
	"github.com/botica-erp/botica-erp/internal/ledger"
	"github.com/botica-erp/botica-erp/internal/masterdata/customers"
	"github.com/botica-erp/botica-erp/internal/masterdata/suppliers"
	"github.com/botica-erp/botica-erp/internal/medicines"
	"github.com/botica-erp/botica-erp/internal/observability"
	"github.com/botica-erp/botica-erp/internal/rates"
	"github.com/botica-erp/botica-erp/internal/reports"
	"github.com/botica-erp/botica-erp/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Tokens           *auth.TokenManager
	AuthHandler      *auth.Handler
	LedgerHandler    *ledger.Handler
	MedicinesHandler *medicines.Handler
	SuppliersHandler *suppliers.Handler
	CustomersHandler *customers.Handler
	RatesHandler     *rates.Handler
	ReportsHandler   *reports.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router. Everything under /api except
// /api/auth/login requires a bearer token.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", params.AuthHandler.MountRoutes)

		api.Group(func(protected chi.Router) {
			protected.Use(params.Tokens.Middleware)

			params.LedgerHandler.MountRoutes(protected)
			protected.Route("/medicines", params.MedicinesHandler.MountRoutes)
			protected.Route("/suppliers", params.SuppliersHandler.MountRoutes)
			protected.Route("/customers", params.CustomersHandler.MountRoutes)
			params.RatesHandler.MountRoutes(protected)
			protected.Route("/reports", params.ReportsHandler.MountRoutes)
			if params.JobHandler != nil {
				protected.Route("/jobs", params.JobHandler.MountRoutes)
			}
		})
	})

	return r
}
