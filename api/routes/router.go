package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bidboard/bidboard-backend/api/controllers"
	"github.com/bidboard/bidboard-backend/api/middleware"
	"github.com/bidboard/bidboard-backend/internal/bids"
	"github.com/bidboard/bidboard-backend/pkg/config"
	"github.com/bidboard/bidboard-backend/pkg/logger"
	pkgredis "github.com/bidboard/bidboard-backend/pkg/redis"
)

// NewRouter wires the HTTP surface. The idempotency store may be nil in
// tests; creation routes then skip replay protection.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	healthDeps map[string]controllers.Pinger,
	idempotencyStore pkgredis.IdempotencyStore,
	bidService bids.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, healthDeps))
	})

	r.Route("/api/v1", func(r chi.Router) {
		if idempotencyStore != nil {
			r.Use(middleware.Idempotency(idempotencyStore, logg))
		}

		r.Route("/bids", func(r chi.Router) {
			r.Get("/", controllers.ListBids(bidService, logg))
			r.Post("/", controllers.CreateBid(bidService, logg))
			r.Route("/{bidId}", func(r chi.Router) {
				r.Get("/", controllers.GetBid(bidService, logg))
				r.Post("/doors", controllers.CreateDoor(bidService, logg))
				r.Put("/save-changes", controllers.SaveChanges(bidService, logg))
				r.Put("/auto-save", controllers.AutoSaveBid(bidService, logg))
			})
		})

		r.Route("/doors/{doorId}", func(r chi.Router) {
			r.Post("/duplicate", controllers.DuplicateDoor(bidService, logg))
			r.Delete("/", controllers.DeleteDoor(bidService, logg))
			r.Route("/line-items", func(r chi.Router) {
				r.Post("/", controllers.CreateLineItem(bidService, logg))
				r.Put("/{itemId}", controllers.UpdateLineItem(bidService, logg))
				r.Delete("/{itemId}", controllers.DeleteLineItem(bidService, logg))
			})
		})
	})

	return r
}
