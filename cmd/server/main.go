package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/booking-ledger/internal/config"
	"github.com/iliyamo/booking-ledger/internal/database"
	"github.com/iliyamo/booking-ledger/internal/handler"
	"github.com/iliyamo/booking-ledger/internal/middleware"
	"github.com/iliyamo/booking-ledger/internal/notification"
	"github.com/iliyamo/booking-ledger/internal/queue"
	"github.com/iliyamo/booking-ledger/internal/repository"
	"github.com/iliyamo/booking-ledger/internal/router"
	"github.com/iliyamo/booking-ledger/internal/service"
)

const serviceName = "booking-ledger"

func main() {
	cfg := config.Load()
	setupLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.XRayEnabled {
		if err := xray.Configure(xray.Config{ServiceVersion: "1.0.0"}); err != nil {
			slog.Warn("x-ray configuration failed, tracing with defaults", "error", err)
		}
		os.Setenv("AWS_XRAY_CONTEXT_MISSING", "LOG_ERROR")
	}

	db, err := database.Open(ctx, cfg.DB, database.Options{Tracing: cfg.XRayEnabled})
	if err != nil {
		slog.Error("open database", "driver", cfg.DB.Driver, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		slog.Error("migrate database", "error", err)
		os.Exit(1)
	}

	var events service.EventPublisher
	if cfg.EventsEnabled {
		pub := queue.NewPublisher(cfg.RabbitMQURL, queue.DefaultPublishTimeout)
		defer pub.Close()
		events = pub
		startConsumer(ctx, cfg)
	}

	authz := service.ContextAuthorizer{}
	listings := service.NewListingService(repository.NewListingRepo(db), authz, nil)
	bookings := service.NewBookingService(repository.NewReservationRepo(db), listings, authz, events, nil)
	reviews := service.NewReviewService(repository.NewReviewRepo(db), bookings, listings, authz, nil)

	rdb := config.NewRedisClient(ctx)
	if rdb != nil {
		defer rdb.Close()
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(slog.Default()))
	if cfg.XRayEnabled {
		e.Use(middleware.Tracing(serviceName))
	}
	router.Register(e, router.Handlers{
		Health:   handler.NewHealthHandler(db),
		Bookings: handler.NewBookingHandler(bookings),
		Listings: handler.NewListingHandler(listings),
		Reviews:  handler.NewReviewHandler(reviews),
	}, router.Guards{
		JWTSecret: cfg.JWTSecret,
		Cache:     middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	})

	addr := ":" + cfg.Port
	go func() {
		slog.Info("listening", "addr", addr, "env", cfg.Env, "driver", cfg.DB.Driver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("bye")
}

// setupLogger installs a JSON handler in production and a text handler
// elsewhere.
func setupLogger(env string) {
	var h slog.Handler
	if env == "prod" {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(h))
}

// startConsumer drains booking events into logs/booking.log and Telegram.
func startConsumer(ctx context.Context, cfg config.Config) {
	c := newConsumer(cfg)
	go func() {
		if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("booking consumer stopped", "error", err)
		}
	}()
}

// newConsumer builds the event consumer.  When the Telegram bot cannot be
// reached events are still written to the log, just not forwarded.
func newConsumer(cfg config.Config) *queue.Consumer {
	c := &queue.Consumer{URL: cfg.RabbitMQURL, LogDir: "logs"}
	notifier, err := notification.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		slog.Warn("telegram notifier unavailable, events are only logged", "error", err)
		return c
	}
	c.Notifier = notifier
	return c
}
