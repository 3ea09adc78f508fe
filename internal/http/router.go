package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/txnhub/txnhub/internal/auth"
	"github.com/txnhub/txnhub/internal/config"
	"github.com/txnhub/txnhub/internal/domain/user"
	"github.com/txnhub/txnhub/internal/http/handlers"
	"github.com/txnhub/txnhub/internal/http/middlewares"
	"github.com/txnhub/txnhub/internal/observability"
	"github.com/txnhub/txnhub/internal/repo/postgres"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20 // 1 MiB

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config, metrics *observability.Prom, registry *prometheus.Registry) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	// single top-level boundary: anything unanticipated becomes the generic
	// 500 body, full detail stays in the server log
	r.Use(gin.CustomRecovery(func(c *gin.Context, err any) {
		log.Error("panic recovered", "err", err, "route", c.FullPath())
		handlers.RespondInternal(c)
		c.Abort()
	}))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(otelgin.Middleware("txnhub"))

	if len(cfg.AllowedOrigins) > 0 {
		r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	}

	if metrics != nil {
		r.Use(metrics.GinHandleMiddleware())
	}

	if registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	health := handlers.NewHealthHandler(ping)
	r.GET("/health", health.Health)
	r.GET("/readyz", health.Ready)

	// wire up repositories

	usersRepo := postgres.NewUsersRepo(pool, metrics)
	transactionsRepo := postgres.NewTransactionsRepo(pool, metrics)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL())
	authMW := middlewares.NewAuthMiddleware(jwtManager, usersRepo)

	authHandler := handlers.NewAuthHandler(usersRepo, jwtManager, metrics)
	usersHandler := handlers.NewUsersHandler(usersRepo)
	transactionsHandler := handlers.NewTransactionsHandler(transactionsRepo)

	// auth: the token endpoint takes a form body, so no JSON enforcement here
	r.POST("/token", authHandler.Login)
	r.GET("/whoami", authMW.RequireAuth(), authHandler.Whoami)

	users := r.Group("/users")
	users.Use(authMW.RequireAuth(), middlewares.RequireJSON())
	users.POST("/", authMW.RequireRole(user.RoleAdmin), usersHandler.CreateUser)
	users.GET("/me", usersHandler.Me)

	transactions := r.Group("/transactions")
	transactions.Use(authMW.RequireAuth(), middlewares.RequireJSON())
	transactions.POST("/", transactionsHandler.CreateTransaction)
	transactions.GET("/", transactionsHandler.ListTransactions)
	transactions.GET("/:id", transactionsHandler.GetTransaction)
	transactions.PUT("/:id", transactionsHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionsHandler.DeleteTransaction)

	return r
}
