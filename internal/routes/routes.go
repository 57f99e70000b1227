package routes

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/medikart/medikart/internal/address"
	"github.com/medikart/medikart/internal/auth"
	"github.com/medikart/medikart/internal/category"
	"github.com/medikart/medikart/internal/config"
	"github.com/medikart/medikart/internal/mail"
	"github.com/medikart/medikart/internal/middleware"
	"github.com/medikart/medikart/internal/order"
	"github.com/medikart/medikart/internal/product"
	"github.com/medikart/medikart/internal/upload"
	"github.com/medikart/medikart/internal/user"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	// Plain text access log: [HH:MM:SS] 200 -  145ms METHOD /path
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	RegisterHealthRoutes(app, d)

	// Repositories
	var (
		userRepo     user.Repository
		productRepo  product.Repository
		categoryRepo category.Repository
		orderRepo    order.Repository
		addressRepo  address.Repository
	)
	if d.DB != nil {
		userRepo = user.NewPostgresRepository(d.DB)
		productRepo = product.NewPostgresRepository(d.DB)
		categoryRepo = category.NewPostgresRepository(d.DB)
		orderRepo = order.NewPostgresRepository(d.DB)
		addressRepo = address.NewPostgresRepository(d.DB)
	} else {
		userRepo = user.NewMemoryRepository()
		productRepo = product.NewMemoryRepository()
		categoryRepo = category.NewMemoryRepository()
		orderRepo = order.NewMemoryRepository()
		addressRepo = address.NewMemoryRepository()
	}

	// Mail transport is constructed once and shared across operations.
	var sender mail.Sender
	if d.Cfg.MailConfigured() {
		sender = mail.NewMailer(d.Cfg.SMTPHost, d.Cfg.SMTPPort, d.Cfg.SMTPUsername,
			d.Cfg.SMTPPassword, d.Cfg.MailFrom, d.Cfg.AppName)
	} else {
		sender = mail.NewLogSender(d.Logger)
	}

	uploads, err := upload.NewStore(d.Cfg.UploadDir)
	if err != nil {
		return err
	}

	tokens := auth.NewTokenIssuer(d.Cfg.JWTSecret, d.Cfg.RefreshSecret,
		d.Cfg.AccessTokenTTL, d.Cfg.RefreshTokenTTL)
	authSvc := auth.NewService(userRepo, sender, tokens, auth.Options{
		OTPTTL:      d.Cfg.OTPTTL,
		ResendTTL:   d.Cfg.OTPResendTTL,
		MailTimeout: d.Cfg.MailTimeout,
	}, d.Logger)

	authHandler := auth.NewHandler(authSvc, uploads, d.Cfg.IsProduction())
	userHandler := user.NewHandler(userRepo)
	productHandler := product.NewHandler(productRepo)
	categoryHandler := category.NewHandler(categoryRepo)
	orderHandler := order.NewHandler(orderRepo)
	addressHandler := address.NewHandler(addressRepo)

	api := app.Group("/api/v1")

	authed := middleware.Auth(tokens)
	adminOnly := middleware.RequireRoles(user.RoleAdmin)

	RegisterAuthRoutes(api, authHandler, authed, d.Cache)
	RegisterUserRoutes(api, userHandler, authed, adminOnly)
	RegisterProductRoutes(api, productHandler, authed, adminOnly)
	RegisterCategoryRoutes(api, categoryHandler, authed, adminOnly)
	RegisterOrderRoutes(api, orderHandler, authed, adminOnly, d)
	RegisterAddressRoutes(api, addressHandler, authed)

	return nil
}
