package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vehicle-alert/internal/config"
	"vehicle-alert/internal/delivery/http/handler"
	"vehicle-alert/internal/identity"
	"vehicle-alert/internal/infrastructure/database/postgres"
	"vehicle-alert/internal/logger"
	"vehicle-alert/internal/middleware"
	"vehicle-alert/internal/notify"
	"vehicle-alert/internal/usecase/alertsvc"
	"vehicle-alert/internal/usecase/pushsvc"
	"vehicle-alert/internal/usecase/ratelimit"
	"vehicle-alert/internal/usecase/reaper"
	"vehicle-alert/internal/usecase/registry"
	"vehicle-alert/internal/usecase/trust"
)

// Services bundles the wired use-case layer so main can run background
// jobs against the same instances the handlers use.
type Services struct {
	Registry *registry.Service
	Alerts   *alertsvc.Service
	Push     *pushsvc.Service
	Reaper   *reaper.Service
}

// SetupRoutes wires repositories, services and handlers onto a gin
// engine.
func SetupRoutes(cfg *config.Config, db *postgres.DB, notifier notify.Notifier) (*gin.Engine, *Services, error) {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware in order: recovery, request ID, logging, security
	// headers, CORS, request size limit, general per-IP rate limit.
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(middleware.DefaultMaxRequestSize))
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst))

	router.GET("/health", func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	})

	hasher, err := identity.NewHasher(cfg.Security.DevicePepper, cfg.Security.VehiclePepper, config.MinPepperLength)
	if err != nil {
		return nil, nil, err
	}

	deviceRepo := postgres.NewDeviceRepository(db)
	vehicleRepo := postgres.NewVehicleRepository(db)
	alertRepo := postgres.NewAlertRepository(db)
	pushTokenRepo := postgres.NewPushTokenRepository(db)
	metricRepo := postgres.NewAbuseMetricRepository(db)
	windowRepo := postgres.NewRateLimitRepository(db)

	limiter := ratelimit.NewService(windowRepo, metricRepo)
	trustSvc := trust.NewService(deviceRepo, metricRepo)
	pushSvc := pushsvc.NewService(pushTokenRepo, alertRepo, notifier, cfg.Push.FailureThreshold)
	registrySvc := registry.NewService(deviceRepo, vehicleRepo, hasher, limiter, cfg)
	alertSvc := alertsvc.NewService(alertRepo, vehicleRepo, limiter, trustSvc, pushSvc, cfg)
	reaperSvc := reaper.NewService(alertRepo, deviceRepo, metricRepo, windowRepo)

	deviceHandler := handler.NewDeviceHandler(registrySvc)
	vehicleHandler := handler.NewVehicleHandler(registrySvc)
	alertHandler := handler.NewAlertHandler(alertSvc)
	pushHandler := handler.NewPushHandler(pushSvc)

	v1 := router.Group("/api/v1")
	{
		// Registration is the only unauthenticated endpoint and carries
		// a tighter per-IP limit than the general guard.
		public := v1.Group("")
		public.Use(middleware.RateLimitMiddleware(
			float64(cfg.RateLimit.DeviceRegisterPerMinute)/60.0,
			cfg.RateLimit.DeviceRegisterPerMinute,
		))
		{
			deviceHandler.RegisterPublicRoutes(public)
		}

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			deviceHandler.RegisterRoutes(protected)
			vehicleHandler.RegisterRoutes(protected)
			alertHandler.RegisterRoutes(protected)
			pushHandler.RegisterRoutes(protected)
		}
	}

	logger.Info("All routes initialized")

	services := &Services{
		Registry: registrySvc,
		Alerts:   alertSvc,
		Push:     pushSvc,
		Reaper:   reaperSvc,
	}
	return router, services, nil
}
