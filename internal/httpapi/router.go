package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"garageflow/internal/api"
	"garageflow/internal/portal"
	"garageflow/internal/workflow"
	"garageflow/pkg/config"
	"garageflow/pkg/logger"
)

type Dependencies struct {
	Cfg       config.Config
	Log       logger.Logger
	Bookings  *workflow.Service
	Mechanics Directory
}

func NewRouter(deps Dependencies) http.Handler {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()
	r.Use(api.Recoverer(log))
	r.Use(api.RequestLogger(log))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	h := Handlers{
		Bookings:  deps.Bookings,
		Mechanics: deps.Mechanics,
		Portal:    deps.Cfg.Portal,
	}

	// v1
	r.Route("/v1", func(r chi.Router) {
		// Shop staff APIs. Authentication is supplied by the deployment's
		// gateway; the workflow engine does not model it.
		r.Get("/statuses", h.ListStatuses)
		r.Get("/mechanics", h.ListMechanics)
		r.Patch("/mechanics/{id}/availability", h.SetMechanicAvailability)

		r.Post("/bookings", h.CreateBooking)
		r.Get("/bookings", h.ListBookings)
		r.Get("/bookings/{id}", h.GetBooking)

		r.Post("/bookings/{id}/assign", h.AssignMechanic)
		r.Post("/bookings/{id}/inspection/start", h.StartInspection)
		r.Post("/bookings/{id}/inspection", h.SubmitInspection)
		r.Post("/bookings/{id}/quotation", h.GenerateQuotation)
		r.Post("/bookings/{id}/approval", h.RecordApproval)
		r.Post("/bookings/{id}/progress", h.UpdateProgress)
		r.Post("/bookings/{id}/expenses", h.AddExpense)
		r.Post("/bookings/{id}/invoice", h.GenerateInvoice)
		r.Post("/bookings/{id}/payment", h.RecordPayment)
		r.Post("/bookings/{id}/cancel", h.CancelBooking)
		r.Post("/bookings/{id}/notify", h.SendNotification)
		r.Post("/bookings/{id}/portal-link", h.CreatePortalLink)

		// Portal: public, token-based endpoints used by the customer-facing
		// frontend on a separate domain.
		r.Route("/portal", func(r chi.Router) {
			r.Use(api.CORSMiddleware(api.CORSOptions{
				AllowedOrigins: deps.Cfg.Portal.AllowedOrigins,
				AllowedMethods: []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders: []string{"Content-Type"},
				MaxAgeSeconds:  600,
			}))

			portalHandlers := portal.Handlers{Bookings: deps.Bookings, Cfg: deps.Cfg.Portal}
			r.Get("/{token}", portalHandlers.View)
			r.Post("/{token}/approve", portalHandlers.Approve)
			r.Post("/{token}/reject", portalHandlers.Reject)
		})
	})

	return r
}
