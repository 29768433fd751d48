package main // Entry point package

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/venuora/venue-reservation/internal/config"
	"github.com/venuora/venue-reservation/internal/database"
	"github.com/venuora/venue-reservation/internal/handler"
	"github.com/venuora/venue-reservation/internal/lifecycle"
	"github.com/venuora/venue-reservation/internal/lock"
	"github.com/venuora/venue-reservation/internal/notify"
	"github.com/venuora/venue-reservation/internal/queue"
	"github.com/venuora/venue-reservation/internal/repository"
	"github.com/venuora/venue-reservation/internal/router"
)

func main() {
	_ = godotenv.Load() // optional .env for local development
	cfg := config.Load()
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.Open(database.Config{
		User: cfg.DBUser,
		Pass: cfg.DBPass,
		Host: cfg.DBHost,
		Port: cfg.DBPort,
		Name: cfg.DBName,

		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	// Redis is optional: a nil client disables locking and rate
	// limiting rather than failing startup.
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn().Msg("redis unavailable, lock and rate limit disabled")
	}

	reservationRepo := repository.NewReservationRepo(db)
	notificationRepo := repository.NewNotificationRepo(db)
	userRepo := repository.NewUserRepo(db)

	sender := notify.NewMailerSendSender(cfg.MailerSendAPIKey, cfg.MailFromName, cfg.MailFromEmail)
	dispatcher := notify.NewDispatcher(sender, notificationRepo, notify.PlainTextRenderer{},
		notify.DefaultTimeout, logger)
	coordinator := lifecycle.NewCoordinator(dispatcher, logger)

	// The admin recipient may be supplied fully via env, or by user id
	// alone with the address resolved from the users table.
	var admin *notify.Recipient
	if cfg.AdminUserID != 0 {
		admin = &notify.Recipient{UserID: cfg.AdminUserID, Email: cfg.AdminEmail, Name: cfg.AdminName}
		if admin.Email == "" {
			u, err := userRepo.GetByID(context.Background(), cfg.AdminUserID)
			if err != nil {
				log.Fatalf("admin recipient %d: %v", cfg.AdminUserID, err)
			}
			admin.Email = u.Email
			admin.Name = u.FullName
		}
	}

	h := router.Handlers{
		Auth: handler.NewAuthHandler(userRepo, cfg.JWTSecret, cfg.AccessTTLMin, cfg.BcryptCost),
		Reservations: handler.NewReservationHandler(
			reservationRepo,
			coordinator,
			lock.NewLocker(rdb, 0),
			queue.Publisher{},
			admin,
		),
		Notifications: handler.NewNotificationHandler(notificationRepo),
	}

	// Background consumer auditing lifecycle events from the broker.
	go queue.StartLifecycleConsumer(logger)

	e := echo.New()
	router.RegisterRoutes(e, h, cfg.JWTSecret, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
