package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reclaimhq/reclaim-backend/api/controllers"
	"github.com/reclaimhq/reclaim-backend/api/middleware"
	"github.com/reclaimhq/reclaim-backend/internal/auth"
	"github.com/reclaimhq/reclaim-backend/internal/items"
	"github.com/reclaimhq/reclaim-backend/internal/notifications"
	"github.com/reclaimhq/reclaim-backend/pkg/config"
	"github.com/reclaimhq/reclaim-backend/pkg/db"
	"github.com/reclaimhq/reclaim-backend/pkg/enums"
	"github.com/reclaimhq/reclaim-backend/pkg/logger"
	"github.com/reclaimhq/reclaim-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
	authService auth.Service,
	itemsService items.Service,
	notificationsService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	// A missing redis client disables throttling rather than failing closed,
	// and drops redis from the readiness probe.
	var limiterStore middleware.RateLimiterStore
	var redisPinger redis.Pinger
	if redisClient != nil {
		limiterStore = redisClient
		redisPinger = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, limiterStore, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, limiterStore, logg)).Post("/register", controllers.AuthRegister(authService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/items", func(r chi.Router) {
			r.Post("/", controllers.ReportItem(itemsService, logg))
			r.Get("/", controllers.ListItems(itemsService, logg))
			r.Get("/{itemId}", controllers.GetItem(itemsService, logg))
			r.Post("/{itemId}/claim", controllers.ClaimItem(itemsService, logg))
			r.Delete("/{itemId}", controllers.DeleteItem(itemsService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))
				r.Post("/{itemId}/approve", controllers.AdminApproveItem(itemsService, logg))
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
		})
	})

	return r
}
