package main

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/svrforum/ContactHatch/api/config"
	"github.com/svrforum/ContactHatch/api/database"
	_ "github.com/svrforum/ContactHatch/api/docs"
	"github.com/svrforum/ContactHatch/api/handlers"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			handlers.InitLogger(cfg.Development())

			// Database connection
			db, err := database.Connect(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(db); err != nil {
				return err
			}

			// Shared infrastructure
			cache := handlers.InitUserCache(handlers.UserCacheConfig{
				RedisAddr:  cfg.RedisAddr,
				RedisPass:  cfg.RedisPassword,
				KeyPrefix:  "ch:user:",
				DefaultTTL: 5 * time.Minute,
			})

			guardConfig := handlers.DefaultLoginGuardConfig()
			guardConfig.RedisAddr = cfg.RedisAddr
			guardConfig.RedisPass = cfg.RedisPassword
			handlers.InitLoginGuard(guardConfig)

			accessTTL := time.Duration(cfg.JWTExpirationSeconds) * time.Second
			mailer, err := handlers.NewMailer(handlers.MailerConfig{
				Server:        cfg.Mail.Server,
				Port:          cfg.Mail.Port,
				Username:      cfg.Mail.Username,
				Password:      cfg.Mail.Password,
				From:          cfg.Mail.From,
				FromName:      cfg.Mail.FromName,
				StartTLS:      cfg.Mail.StartTLS,
				SSLTLS:        cfg.Mail.SSLTLS,
				ResetTokenTTL: accessTTL,
			})
			if err != nil {
				return err
			}

			avatars, err := handlers.NewAvatarStore(cfg.DataRoot)
			if err != nil {
				return err
			}

			// Stores and handlers
			users := handlers.NewUserStore(db)
			contacts := handlers.NewContactStore(db)

			h := handlers.NewHandler(db)
			authHandler := handlers.NewAuthHandler(users, cache, mailer, cfg.JWTSecret, accessTTL)
			contactHandler := handlers.NewContactHandler(contacts)
			userHandler := handlers.NewUserHandler(users, cache, avatars)

			// Initialize Echo
			e := echo.New()
			e.HideBanner = true

			// Middleware
			e.Use(handlers.RequestLogger())
			e.Use(middleware.Recover())
			e.Use(handlers.MetricsMiddleware())
			e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
				AllowOrigins: []string{"*"},
				AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodHead, http.MethodOptions},
				AllowHeaders: []string{"*", "Authorization", "Content-Type"},
			}))
			e.Use(middleware.BodyLimit("5M"))

			// Routes
			e.GET("/healthchecker", h.HealthCheck)
			e.GET("/api/healthchecker", h.HealthCheck)
			e.GET("/docs", func(c echo.Context) error {
				return c.Redirect(http.StatusMovedPermanently, "/docs/index.html")
			})
			e.GET("/docs/*", echoSwagger.WrapHandler)
			e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
			e.Static("/avatars", avatars.Dir())

			// API group
			api := e.Group("/api")

			// Auth routes (public)
			api.POST("/auth/register", authHandler.Register)
			api.POST("/auth/login", authHandler.Login)
			api.GET("/auth/confirmed_email/:token", authHandler.ConfirmedEmail)
			api.POST("/auth/request_email", authHandler.RequestEmail)
			api.POST("/auth/reset_password", authHandler.ResetPassword)
			api.GET("/auth/confirm_reset_password/:token", authHandler.ConfirmResetPassword)

			// Contact routes (protected)
			authApi := api.Group("")
			authApi.Use(authHandler.JWTMiddleware)
			authApi.GET("/contacts", contactHandler.List)
			authApi.POST("/contacts", contactHandler.Create)
			authApi.GET("/contacts/birthdays", contactHandler.UpcomingBirthdays)
			authApi.GET("/contacts/:id", contactHandler.Get)
			authApi.PUT("/contacts/:id", contactHandler.Update)
			authApi.DELETE("/contacts/:id", contactHandler.Delete)

			// User routes (protected)
			authApi.GET("/users/me", userHandler.Me, meRateLimiter())

			// Admin routes (protected + admin only)
			adminApi := authApi.Group("")
			adminApi.Use(authHandler.AdminMiddleware)
			adminApi.PATCH("/users/avatar", userHandler.UpdateAvatar)

			// Start server
			handlers.LogInfo("Starting server", "port", cfg.Port, "env", cfg.Env, "version", Version)
			if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}
}

// meRateLimiter allows ten profile requests per minute per client address.
func meRateLimiter() echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(10.0 / 60.0),
			Burst:     10,
			ExpiresIn: 3 * time.Minute,
		}),
		ErrorHandler: func(c echo.Context, err error) error {
			return handlers.RespondError(c, handlers.ErrRateLimited())
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return handlers.RespondError(c, handlers.ErrRateLimited())
		},
	})
}
