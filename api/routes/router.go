package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/propdesk/fundedpay/api/controllers"
	sessioncontrollers "github.com/propdesk/fundedpay/api/controllers/sessions"
	webhookcontrollers "github.com/propdesk/fundedpay/api/controllers/webhooks"
	"github.com/propdesk/fundedpay/api/middleware"
	gatewaywebhook "github.com/propdesk/fundedpay/internal/webhooks/gateway"
	"github.com/propdesk/fundedpay/pkg/config"
	"github.com/propdesk/fundedpay/pkg/db"
	"github.com/propdesk/fundedpay/pkg/logger"
)

type redisClient interface {
	Ping(context.Context) error
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient redisClient,
	sessionService sessioncontrollers.Service,
	gatewayWebhookService webhookcontrollers.GatewayWebhookService,
	gatewayWebhookGuard *gatewaywebhook.IdempotencyGuard,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	sessionPolicy := middleware.NewRateLimitPolicy(
		"session",
		cfg.RateLimit.SessionWindow,
		cfg.RateLimit.SessionLimit,
	)
	identity := middleware.Identity()

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg,
			controllers.Dependency{Name: "database", Pinger: dbP},
			controllers.Dependency{Name: "redis", Pinger: redisClient},
		))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/gateway", webhookcontrollers.GatewayWebhook(gatewayWebhookService, cfg.Gateway.IPNSecret, gatewayWebhookGuard, logg))
	})

	r.Route("/api/v1/payments", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Auth, logg))

		r.Route("/{orderId}/session", func(r chi.Router) {
			r.With(middleware.RateLimit(sessionPolicy, redisClient, logg)).Post("/", sessioncontrollers.Open(sessionService, identity, logg))
			r.Get("/", sessioncontrollers.Get(sessionService, identity, logg))
			r.Delete("/", sessioncontrollers.Close(sessionService, identity, logg))
		})
	})

	return r
}
