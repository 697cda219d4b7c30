package main // Entry point package

import (
	"context"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/kachapon/seminar-registration/internal/config"
	"github.com/kachapon/seminar-registration/internal/database"
	"github.com/kachapon/seminar-registration/internal/handler"
	"github.com/kachapon/seminar-registration/internal/lock"
	"github.com/kachapon/seminar-registration/internal/mailer"
	appmw "github.com/kachapon/seminar-registration/internal/middleware"
	"github.com/kachapon/seminar-registration/internal/queue"
	"github.com/kachapon/seminar-registration/internal/queue_publisher"
	"github.com/kachapon/seminar-registration/internal/repository"
	"github.com/kachapon/seminar-registration/internal/router"
	"github.com/kachapon/seminar-registration/internal/service"
	"github.com/kachapon/seminar-registration/internal/wizard"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("database: open failed")
	}
	defer db.Close()

	// Redis is optional: sessions and ticket locks fall back to
	// in-process implementations, caching and rate limiting switch off.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn().Msg("redis: unavailable, using in-process sessions and locks")
	}

	registrants := repository.NewRegistrantRepo(db)
	references := repository.NewReferenceRepo(db)
	staff := repository.NewStaffRepo(db)
	tokens := repository.NewTokenRepo(db)

	// Reference tables change rarely; one load at boot is enough.
	refCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	refData, err := references.LoadAll(refCtx)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("reference: load failed")
	}
	refs := wizard.NewLookup(*refData)

	locks := lock.New(rdb, cfg.TicketLockTTL)
	sessions := wizard.NewSessionStore(rdb, cfg.SessionTTL)

	regSvc := service.NewRegistrationService(registrants, refs, queue_publisher.PublishRegistrantNotify, log)
	ledger := service.NewLedgerService(registrants, locks, queue_publisher.PublishRegistrantNotify, log)

	// Mail goes out through the queue consumer, not the request path.
	smtp := mailer.SMTPConfig{Host: cfg.SMTPHost, Port: cfg.SMTPPort, From: cfg.SMTPFrom, Pass: cfg.SMTPPass}
	go func() {
		if err := queue.StartNotifyConsumer(log, smtp); err != nil {
			log.Error().Err(err).Msg("queue: notify consumer stopped")
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(appmw.NewRedisCache(config.LoadCacheConfig(), rdb))

	authH := handler.NewAuthHandler(cfg, staff, tokens)
	regH := handler.NewRegistrationHandler(regSvc, references)
	wizH := handler.NewWizardHandler(sessions, registrants, regSvc)
	staffH := handler.NewStaffHandler(ledger)
	scanH := handler.NewScanHandler(ledger)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, regH, wizH)
	router.RegisterStaff(e, staffH, scanH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
	if err := e.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
