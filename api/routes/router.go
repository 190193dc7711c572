package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/stockroom-backend/api/controllers"
	"github.com/angelmondragon/stockroom-backend/api/middleware"
	"github.com/angelmondragon/stockroom-backend/internal/bulk"
	"github.com/angelmondragon/stockroom-backend/internal/transfers"
	"github.com/angelmondragon/stockroom-backend/pkg/config"
	"github.com/angelmondragon/stockroom-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/stockroom-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DBPinger    controllers.Pinger
	RedisPinger controllers.Pinger
	Idempotency pkgredis.IdempotencyStore
	Transfers   transfers.Service
	Importer    *bulk.Importer
	Exporter    *bulk.Exporter
	Registry    *prometheus.Registry
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Actor(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DBPinger, deps.RedisPinger))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	maxBodyBytes := int64(cfg.Import.MaxBodyMB) << 20

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", controllers.PrivatePing())

		r.Route("/transfers", func(r chi.Router) {
			r.Get("/", controllers.TransferList(deps.Transfers, logg))
			r.Post("/", controllers.TransferCreate(deps.Transfers, logg))
			r.Get("/export", controllers.TransferExport(deps.Exporter, logg))
			r.Get("/number/{transferNumber}", controllers.TransferGetByNumber(deps.Transfers, logg))
			r.With(middleware.Idempotency(deps.Idempotency, logg)).
				Post("/import", controllers.TransferImport(deps.Importer, logg, maxBodyBytes))

			r.Route("/{transferID}", func(r chi.Router) {
				r.Get("/", controllers.TransferGet(deps.Transfers, logg))
				r.Post("/send", controllers.TransferSend(deps.Transfers, logg))
				r.Post("/complete", controllers.TransferComplete(deps.Transfers, logg))
				r.Post("/cancel", controllers.TransferCancel(deps.Transfers, logg))
				r.Post("/items", controllers.TransferAddItem(deps.Transfers, logg))
				r.Route("/items/{itemID}", func(r chi.Router) {
					r.Delete("/", controllers.TransferRemoveItem(deps.Transfers, logg))
					r.Patch("/shipped", controllers.TransferUpdateShipped(deps.Transfers, logg))
					r.Patch("/received", controllers.TransferUpdateReceived(deps.Transfers, logg))
				})
			})
		})
	})

	return r
}
