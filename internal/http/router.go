package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"userhub/internal/auth"
	"userhub/internal/cache"
	"userhub/internal/config"
	"userhub/internal/http/handlers"
	"userhub/internal/http/middlewares"
	"userhub/internal/observability"
	"userhub/internal/repo/postgres"
	"userhub/internal/security"
)

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(middlewares.DefaultMaxBodyBytes))
	r.Use(middlewares.RequireJSON())

	if cfg.OtelEnabled {
		r.Use(otelgin.Middleware("userhub"))
	}

	// metrics on a per-router registry so tests can build routers freely
	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)
	r.Use(prom.GinHandleMiddleware())
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	r.GET("/", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "Main Page")
	})

	// wire up repositories and services

	usersRepo := postgres.NewUsersRepo(pool, prom)
	listCache := cache.New(30 * time.Second)
	hasher := security.NewHasher(cfg.BcryptCost)
	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL())

	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, hasher, jwtManager, listCache, log)
	usersHandler := handlers.NewUsersHandler(usersRepo, listCache, log)
	authMW := middlewares.NewAuthMiddleware(jwtManager)

	r.POST("/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)

	// every user route sits behind the bearer gate
	protected := r.Group("")
	protected.Use(authMW.RequireAuth())
	protected.GET("/user/:id", usersHandler.GetUserByID)
	protected.GET("/users", usersHandler.ListUsers)
	protected.PUT("/user/:id", usersHandler.UpdateUser)
	protected.DELETE("/user/:id", usersHandler.DeleteUser)

	return r
}
