package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agama-events/internal/auth"
	"agama-events/internal/broadcast"
	broadcast_api "agama-events/internal/broadcast/api"
	broadcast_db "agama-events/internal/broadcast/db"
	"agama-events/internal/catalog"
	catalog_api "agama-events/internal/catalog/api"
	catalog_db "agama-events/internal/catalog/db"
	"agama-events/internal/config"
	"agama-events/internal/database/migrations"
	"agama-events/internal/kafka"
	"agama-events/internal/logger"
	"agama-events/internal/media"
	media_api "agama-events/internal/media/api"
	media_db "agama-events/internal/media/db"
	"agama-events/internal/notify"
	"agama-events/internal/payments"
	"agama-events/internal/qr"
	"agama-events/internal/rsvp"
	rsvp_api "agama-events/internal/rsvp/api"
	rsvp_db "agama-events/internal/rsvp/db"
	"agama-events/internal/sse"
	"agama-events/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func main() {
	_ = godotenv.Load()

	log := logger.NewLogger("events-service")
	defer log.Close()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("CONFIG", err.Error())
	}

	// --- Database ---
	sqldb, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("DATABASE", "failed to open database: "+err.Error())
	}
	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	bunDB := bun.NewDB(sqldb, pgdialect.New())
	if err := bunDB.Ping(); err != nil {
		log.Fatal("DATABASE", "failed to ping database: "+err.Error())
	}
	log.Info("DATABASE", "connected to postgres")

	runner := migrations.NewRunner(bunDB, migrations.DefaultOptions(), log)
	if err := runner.Up(); err != nil {
		log.Fatal("DATABASE", "migrations failed: "+err.Error())
	}
	runner.Close()

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Warn("REDIS", "redis unavailable, catalog cache disabled: "+err.Error())
		rdb = nil
	}

	var cache catalog.TicketTypeCache
	if rdb != nil {
		cache = catalog.NewRedisTicketTypeCache(rdb, cfg.Redis.CacheTTL, log)
	}

	// --- Kafka ---
	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		topics := []string{
			cfg.Kafka.Topics.ReservationConfirmed,
			cfg.Kafka.Topics.ReservationFailed,
			cfg.Kafka.Topics.BroadcastSent,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, topics); err != nil {
			log.Warn("KAFKA", "failed to ensure topics: "+err.Error())
		}
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics)
		defer producer.Close()
	} else {
		log.Warn("KAFKA", "kafka disabled, lifecycle events will not be published")
	}

	// --- Layers ---
	catalogDB := &catalog_db.DB{Bun: bunDB}
	attendeeDB := &rsvp_db.DB{Bun: bunDB}
	broadcastDB := &broadcast_db.DB{Bun: bunDB}
	mediaDB := &media_db.DB{Bun: bunDB}

	catalogSvc := catalog.NewService(catalogDB, cache, log)

	mailer := notify.NewResendMailer(cfg.Email.ResendAPIKey, cfg.Email.FromAddress, log)
	gateway := payments.NewStripeGateway(cfg.Stripe.SecretKey)

	var publisher rsvp.EventPublisher
	var broadcastPublisher broadcast.Publisher
	if producer != nil {
		publisher = producer
		broadcastPublisher = producer
	}

	rsvpSvc := rsvp.NewService(attendeeDB, catalogSvc, catalogDB, gateway, mailer, publisher, log, cfg.AppURL)
	broadcastSvc := broadcast.NewService(catalogSvc, attendeeDB, broadcastDB, notify.NewCourierSender(cfg.SMS.CourierToken), broadcastPublisher, log)

	var mediaSvc *media.Service
	if cfg.Storage.Endpoint != "" {
		store, err := storage.NewR2Store(context.Background(), cfg.Storage.Endpoint, cfg.Storage.Bucket, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.PublicURL)
		if err != nil {
			log.Fatal("STORAGE", "failed to initialize object store: "+err.Error())
		}
		mediaSvc = media.NewService(catalogSvc, mediaDB, store, log)
	} else {
		log.Warn("STORAGE", "R2_ENDPOINT not set, media uploads disabled")
	}

	// --- SSE fan-out from kafka ---
	emitter := sse.NewReservationEmitter()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Kafka.Enabled {
		// A dedicated group per instance so every replica sees every event.
		streamGroup := fmt.Sprintf("%s-sse-%d", cfg.Kafka.GroupID, os.Getpid())
		for _, topic := range []string{cfg.Kafka.Topics.ReservationConfirmed, cfg.Kafka.Topics.ReservationFailed} {
			consumer := kafka.NewConsumer(cfg.Kafka.Brokers, topic, streamGroup)
			defer consumer.Close()
			go consumer.Start(ctx, emitter.Emit)
		}
	}

	// --- Auth ---
	authMW, err := auth.NewMiddleware(context.Background(), cfg.Auth.OIDCIssuer, cfg.Auth.DevMode, log)
	if err != nil {
		log.Fatal("AUTH", err.Error())
	}

	// --- Handlers ---
	catalogHandler := catalog_api.NewHandler(catalogSvc, attendeeDB, log)
	rsvpHandler := rsvp_api.NewHandler(rsvpSvc, log)
	broadcastHandler := broadcast_api.NewHandler(broadcastSvc, log)
	sseHandler := sse.NewHandler(emitter)
	qrGen := qr.NewGenerator(cfg.AppURL)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Route("/api/v1", func(r chi.Router) {
		// Public
		r.Get("/public/events", catalogHandler.ListPublicEvents)
		r.Get("/public/events/{eventID}", catalogHandler.GetPublicEvent)
		r.Post("/events/{eventID}/reservations", rsvpHandler.CreateReservation)
		r.Get("/reservations/{attendeeID}", rsvpHandler.GetReservation)
		r.Get("/reservations/{attendeeID}/stream", sseHandler.StreamAttendee)
		r.Get("/events/{eventID}/qr", qrGen.ServeEventQR)
		if mediaSvc != nil {
			mediaHandler := media_api.NewHandler(mediaSvc, log)
			r.Post("/events/{eventID}/media/sign", mediaHandler.SignUpload)
			r.Post("/events/{eventID}/media/complete", mediaHandler.CompleteUpload)
			r.Get("/events/{eventID}/media", mediaHandler.ListMedia)
		}

		// Organizer
		r.Group(func(r chi.Router) {
			r.Use(authMW.Require)
			r.Post("/events", catalogHandler.CreateEvent)
			r.Get("/events", catalogHandler.ListEvents)
			r.Get("/events/{eventID}", catalogHandler.GetEvent)
			r.Delete("/events/{eventID}", catalogHandler.DeleteEvent)
			r.Put("/events/{eventID}/ticket-types", catalogHandler.ReplaceTicketTypes)
			r.Get("/events/{eventID}/attendees", catalogHandler.ListAttendees)
			r.Get("/events/{eventID}/stream", sseHandler.StreamEvent)
			r.Post("/events/{eventID}/broadcasts", broadcastHandler.SendBroadcast)
			r.Get("/events/{eventID}/broadcasts", broadcastHandler.ListBroadcasts)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		// No write timeout: SSE connections stay open indefinitely.
		WriteTimeout: 0,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("SERVER", "events-service listening on "+cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", err.Error())
		}
	}()

	<-ctx.Done()
	log.Info("SERVER", "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("SERVER", "shutdown error: "+err.Error())
	}
}

// requestLogger mirrors chi's logger but routes through the service logger.
func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.LogAPI(r.Method, r.URL.Path, fmt.Sprintf("%d", ww.Status()), time.Since(start).String())
		})
	}
}
