package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avaloza-dev/marketstall-backend/api/controllers"
	"github.com/avaloza-dev/marketstall-backend/api/middleware"
	"github.com/avaloza-dev/marketstall-backend/internal/events"
	"github.com/avaloza-dev/marketstall-backend/internal/inventory"
	"github.com/avaloza-dev/marketstall-backend/internal/stores"
	"github.com/avaloza-dev/marketstall-backend/internal/trading"
	"github.com/avaloza-dev/marketstall-backend/pkg/config"
	"github.com/avaloza-dev/marketstall-backend/pkg/db"
	"github.com/avaloza-dev/marketstall-backend/pkg/logger"
	pkgredis "github.com/avaloza-dev/marketstall-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs. MetricsHandler and
// IdempotencyStore may be nil; the matching routes degrade gracefully.
type Deps struct {
	Config           *config.Config
	Logger           *logger.Logger
	DB               db.Pinger
	Redis            *pkgredis.Client
	IdempotencyStore pkgredis.IdempotencyStore
	MetricsHandler   http.Handler

	Stores    stores.Service
	Inventory inventory.Service
	Trading   trading.Service
	Events    events.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	var cache db.Pinger
	if deps.Redis != nil {
		cache = deps.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, cache))
	})

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	capability := middleware.Capability(cfg.Capability, logg)
	idempotency := middleware.Idempotency(deps.IdempotencyStore, logg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/stores", func(r chi.Router) {
			r.With(idempotency).Post("/", controllers.StoreCreate(deps.Stores, logg))

			r.Route("/{storeID}", func(r chi.Router) {
				r.Get("/", controllers.StoreGet(deps.Stores, logg))
				r.Get("/events", controllers.StoreEvents(deps.Events, logg))

				r.With(capability, idempotency).Post("/withdrawals", controllers.StoreWithdraw(deps.Stores, logg))
				r.With(capability, idempotency).Post("/items", controllers.ItemAdd(deps.Inventory, logg))

				r.Route("/items/{itemID}", func(r chi.Router) {
					r.Get("/", controllers.ItemGet(deps.Inventory, logg))
					r.With(capability, idempotency).Post("/unlist", controllers.ItemUnlist(deps.Inventory, logg))

					r.With(idempotency).Post("/purchase", controllers.Purchase(deps.Trading, logg))
					r.With(idempotency).Post("/delivery", controllers.DeliveryInitiate(deps.Trading, logg))
					r.With(idempotency).Post("/delivery/confirm", controllers.DeliveryConfirm(deps.Trading, logg))
					r.With(idempotency).Post("/refund", controllers.Refund(deps.Trading, logg))
					r.With(idempotency).Post("/ratings", controllers.Rate(deps.Trading, logg))
				})
			})
		})

		r.Get("/holdings", controllers.Holdings(deps.Trading, logg))
	})

	return r
}
