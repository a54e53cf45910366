package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter registers the inventory engine's HTTP routes and middleware
// stack. Centralizing routes here keeps auth and error behavior consistent
// across endpoints.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { writeSuccess(w, http.StatusOK, "ok", nil) })
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) { writeSuccess(w, http.StatusOK, "ready", nil) })

	r.Route("/inventory/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/deals/{deal_id}/lots", handler.addLot)
			r.Get("/deals/{deal_id}/lots", handler.listLots)
			r.Post("/deals/{deal_id}/holds", handler.placeHold)
			r.Get("/holds/{reservation_id}", handler.getReservation)
			r.Post("/holds/{reservation_id}/release", handler.releaseHold)
			r.Post("/holds/{reservation_id}/finalize", handler.finalizeHold)
			r.Get("/allocations/{allocation_id}", handler.getAllocation)
			r.Get("/deals/{deal_id}/allocations", handler.listAllocations)
			r.Get("/deals/{deal_id}/summary", handler.dealSummary)
		})
	})

	return r
}
