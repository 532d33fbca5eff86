package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/atelier-booking/internal/config"
	"github.com/iliyamo/atelier-booking/internal/database"
	"github.com/iliyamo/atelier-booking/internal/handler"
	"github.com/iliyamo/atelier-booking/internal/jobs"
	"github.com/iliyamo/atelier-booking/internal/notify"
	"github.com/iliyamo/atelier-booking/internal/queue"
	"github.com/iliyamo/atelier-booking/internal/repository"
	"github.com/iliyamo/atelier-booking/internal/resume"
	"github.com/iliyamo/atelier-booking/internal/router"
	"github.com/iliyamo/atelier-booking/internal/service"
	"github.com/iliyamo/atelier-booking/internal/upload"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("env: %v", err)
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := database.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer closeStore()

	profiles := repository.NewProfileRepo(store)
	resources := repository.NewResourceRepo(store)
	bookingRepo := repository.NewBookingRepo(store)
	base := service.Base{Store: store, Guard: service.Guard{Profiles: profiles}}

	bookings := service.NewBookingService(base, resources, bookingRepo, cfg.SeatPolicies)
	uploadCfg := config.LoadUploadConfig()
	bookings.ProofFolder = uploadCfg.Folder
	uploader, err := upload.NewS3Uploader(ctx, uploadCfg)
	if err != nil {
		log.Fatalf("upload: %v", err)
	}
	if uploader != nil {
		bookings.Uploader = uploader
	} else {
		log.Printf("upload: no S3_BUCKET; only payment proof URLs are accepted")
	}

	if cfg.AMQPURL != "" {
		bookings.Notifier = queue.NewPublisher(cfg.AMQPURL)
		handlers := []queue.Handler{queue.NewJournal(cfg.LogDir)}
		mailer, err := notify.NewMailer(config.LoadMailConfig())
		if err != nil {
			log.Fatalf("mail: %v", err)
		}
		if mailer != nil {
			handlers = append(handlers, mailer)
		}
		go func() {
			if err := queue.StartBookingConsumer(ctx, cfg.AMQPURL, handlers...); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("booking-consumer: stopped: %v", err)
			}
		}()
	} else {
		log.Printf("rabbitmq: no AMQP_URL; booking notifications disabled")
	}

	if cfg.Store.AuditInterval > 0 {
		sched, err := jobs.Start(&jobs.SeatAudit{Resources: resources, Bookings: bookingRepo, Policies: cfg.SeatPolicies}, cfg.Store.AuditInterval)
		if err != nil {
			log.Fatalf("seat-audit: %v", err)
		}
		defer func() { _ = sched.Shutdown() }()
	}

	rdb := config.NewRedisClient()
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(echomw.BodyLimit("6M"))

	router.Register(e, router.Handlers{
		Health:     &handler.HealthHandler{Redis: rdb},
		Auth:       handler.NewAuthHandler(service.NewAuthService(profiles, cfg.JWTSecret, cfg.AccessTTLMin), base.Guard),
		Resources:  handler.NewResourceHandler(service.NewResourceService(base, resources)),
		Bookings:   handler.NewBookingHandler(bookings, resume.New(rdb, cfg.Store.ResumeTTL)),
		Inquiries:  handler.NewInquiryHandler(service.NewInquiryService(base, repository.NewInquiryRepo(store))),
		Categories: handler.NewCategoryHandler(service.NewCategoryService(base, repository.NewCategoryRepo(store))),
	}, router.Options{
		JWTSecret: cfg.JWTSecret,
		Redis:     rdb,
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     config.LoadCacheConfig(),
	})

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s, store=%s)", addr, cfg.Env, cfg.StoreBackend)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
