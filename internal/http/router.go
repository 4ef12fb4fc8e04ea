package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/cache"
	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/http/handlers"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps carries the wired collaborators. Handlers only see the interfaces, so
// tests swap in memory repos or fakes.
type Deps struct {
	Users handlers.UserStore
	Tasks handlers.TaskStore
	JWT   *auth.Manager

	Redis     *redis.Client // optional, backs the shared rate limiter
	PingStore func() error  // optional, readiness probe
	Prom      *observability.Prom
	Registry  *prometheus.Registry
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if cfg.Env != "dev" && cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.HandleMethodNotAllowed = true

	// middleware

	r.Use(gin.CustomRecovery(func(c *gin.Context, _ any) {
		handlers.RespondInternal(c, "Unexpected server error")
		c.Abort()
	}))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(otelgin.Middleware("taskhub"))

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())

	// health + ops

	pingRedis := func() error { return nil }
	if deps.Redis != nil {
		pingRedis = func() error {
			ctx, cancel := config.WithTimeout(1 * time.Second)
			defer cancel()
			return deps.Redis.Ping(ctx).Err()
		}
	}

	h := handlers.NewHealthHandler(deps.PingStore, pingRedis)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	r.GET("/swagger", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)

	// credentials endpoints are the brute-force target, keep them limited

	var authLimiter gin.HandlerFunc
	if deps.Redis != nil {
		authLimiter = middlewares.NewRedisRateLimiter(deps.Redis, cfg.AuthRateLimit, cfg.AuthRateWindow).
			RateLimiterMiddleware(middlewares.KeyByIP)
	} else {
		authLimiter = middlewares.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow).
			RateLimiterMiddleware(middlewares.KeyByIP)
	}

	authHandler := handlers.NewAuthHandler(deps.Users, deps.JWT)
	tasksHandler := handlers.NewTasksHandler(deps.Tasks)

	authMw := middlewares.NewAuthMiddleware(deps.JWT, deps.Users, cache.New(30*time.Second))

	api := r.Group("/api")

	authGroup := api.Group("/auth", authLimiter)
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	tasks := api.Group("/tasks", authMw.RequireAuth())
	tasks.GET("", tasksHandler.ListTasks)
	tasks.POST("", tasksHandler.CreateTask)
	tasks.GET("/:id", tasksHandler.GetTaskByID)
	tasks.PUT("/:id", tasksHandler.UpdateTask)
	tasks.PUT("/:id/status", tasksHandler.UpdateTaskStatus)
	tasks.PATCH("/:id/complete", tasksHandler.MarkTaskCompleted)
	tasks.DELETE("/:id", tasksHandler.DeleteTask)

	r.NoRoute(func(c *gin.Context) {
		handlers.RespondNotFound(c, "Resource not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.RespondError(c, http.StatusMethodNotAllowed, "Method Not Allowed", "Method not allowed")
	})

	return r
}
