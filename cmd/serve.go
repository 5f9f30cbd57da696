package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/vibast-solutions/ms-go-contacts/app/cache"
	"github.com/vibast-solutions/ms-go-contacts/app/controller"
	"github.com/vibast-solutions/ms-go-contacts/app/entity"
	"github.com/vibast-solutions/ms-go-contacts/app/mailer"
	"github.com/vibast-solutions/ms-go-contacts/app/middleware"
	"github.com/vibast-solutions/ms-go-contacts/app/repository"
	"github.com/vibast-solutions/ms-go-contacts/app/service"
	"github.com/vibast-solutions/ms-go-contacts/app/storage"
	"github.com/vibast-solutions/ms-go-contacts/config"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the HTTP (Echo) server and the periodic password reset token reaper.`,
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

type application struct {
	userAuthService service.UserAuthService
	contactService  *service.ContactService
	guard           *service.Guard
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, db, err := openDB()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialise service")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	identityCache, closeCache := newIdentityCache(ctx, cfg)
	defer closeCache()

	avatars, err := storage.NewS3(ctx, cfg.Avatar)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to configure avatar storage")
	}

	userRepo := repository.NewUserRepository(db)
	resetTokenRepo := repository.NewPasswordResetTokenRepository(db)
	contactRepo := repository.NewContactRepository(db)

	hasher := service.NewPasswordHasher(cfg.Password.HashCost)
	tokens := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)

	app := &application{
		userAuthService: service.NewUserAuthService(
			db, userRepo, resetTokenRepo, hasher, tokens, identityCache,
			mailer.NewSMTP(cfg.SMTP), avatars, cfg,
		),
		contactService: service.NewContactService(contactRepo),
		guard:          service.NewGuard(tokens, userRepo, identityCache, cfg.Cache.TTL),
	}

	go runResetTokenReaper(ctx, app.userAuthService, cfg.Tokens.ReapInterval)

	startHTTPServer(ctx, cfg, app)
}

// newIdentityCache prefers Redis and falls back to the in-process cache when
// no cache host is configured.
func newIdentityCache(ctx context.Context, cfg *config.Config) (service.IdentityCache, func()) {
	if !cfg.Cache.Enabled() {
		logrus.Warn("CACHE_HOST not set, using in-process identity cache")
		return cache.NewMemory(nil), func() {}
	}

	client, err := cache.NewClient(ctx, cfg.Cache)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to identity cache")
	}
	logrus.WithField("addr", cfg.Cache.Addr()).Info("Connected to identity cache")

	return cache.NewRedis(client), func() { _ = client.Close() }
}

func runResetTokenReaper(ctx context.Context, svc service.UserAuthService, interval time.Duration) {
	if interval <= 0 {
		logrus.Warn("Reset token reaper disabled")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := svc.ReapExpiredResetTokens(ctx)
			if err != nil {
				logrus.WithError(err).Error("Failed to reap expired reset tokens")
				continue
			}
			if removed > 0 {
				logrus.WithField("removed", removed).Info("Reaped expired reset tokens")
			}
		}
	}
}

func newEcho(cfg *config.Config, app *application) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.ContextTimeout(cfg.HTTP.RequestTimeout))

	userAuthController := controller.NewUserAuthController(app.userAuthService)
	contactController := controller.NewContactController(app.contactService)
	authMiddleware := middleware.NewAuthMiddleware(app.guard)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	auth := e.Group("/auth")
	auth.POST("/signup", userAuthController.Signup, rateLimiter.Middleware)
	auth.POST("/login", userAuthController.Login, rateLimiter.Middleware)
	auth.POST("/request-password-reset", userAuthController.RequestPasswordReset, rateLimiter.Middleware)
	auth.POST("/reset-password", userAuthController.ResetPassword, rateLimiter.Middleware)
	auth.POST("/change-password", userAuthController.ChangePassword, authMiddleware.RequireAuth)

	users := e.Group("/users", authMiddleware.RequireAuth)
	users.GET("/me", userAuthController.Me)
	users.PATCH("/avatar", userAuthController.UpdateAvatar)

	admin := e.Group("/admin", authMiddleware.RequireAuth, authMiddleware.RequireRole(entity.RoleAdmin))
	admin.PUT("/users/role", userAuthController.SetRole)

	contacts := e.Group("/contacts", authMiddleware.RequireAuth)
	contacts.GET("", contactController.List)
	contacts.POST("", contactController.Create)
	contacts.GET("/search", contactController.Search)
	contacts.GET("/birthdays", contactController.UpcomingBirthdays)
	contacts.GET("/:id", contactController.Get)
	contacts.PUT("/:id", contactController.Update)
	contacts.DELETE("/:id", contactController.Delete)

	return e
}

func startHTTPServer(ctx context.Context, cfg *config.Config, app *application) {
	e := newEcho(cfg, app)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Error("Failed to shut down HTTP server")
		}
	}()

	httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
	logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
	if err := e.Start(httpAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logrus.WithError(err).Fatal("Failed to start HTTP server")
	}
	logrus.Info("HTTP server stopped")
}
