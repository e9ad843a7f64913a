package ledger

import "github.com/go-chi/chi/v5"

// MountRoutes attaches receipt and sale endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/receipts", func(r chi.Router) {
		r.Get("/", h.list(KindReceipt))
		r.Post("/", h.create(KindReceipt))
		r.Put("/{id}", h.update(KindReceipt))
		r.Delete("/{id}", h.delete(KindReceipt))
	})
	r.Route("/sales", func(r chi.Router) {
		r.Get("/", h.list(KindSale))
		r.Post("/", h.create(KindSale))
		r.Put("/{id}", h.update(KindSale))
		r.Delete("/{id}", h.delete(KindSale))
	})
}
