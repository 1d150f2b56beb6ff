package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalog_db "agama-events/internal/catalog/db"
	"agama-events/internal/config"
	"agama-events/internal/kafka"
	"agama-events/internal/logger"
	"agama-events/internal/payments"
	payments_api "agama-events/internal/payments/api"
	rsvp_db "agama-events/internal/rsvp/db"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func main() {
	_ = godotenv.Load()

	log := logger.NewLogger("webhook-service")
	defer log.Close()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("CONFIG", err.Error())
	}

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

	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics)
		defer producer.Close()
	} else {
		log.Warn("KAFKA", "kafka disabled, confirmations will not reach notification workers")
	}

	attendeeDB := &rsvp_db.DB{Bun: bunDB}
	catalogDB := &catalog_db.DB{Bun: bunDB}

	var publisher payments.Publisher
	if producer != nil {
		publisher = producer
	}
	reconciler := payments.NewReconciler(attendeeDB, catalogDB, catalogDB, publisher, log, cfg.Stripe.WebhookSecret, cfg.Stripe.VerifyWebhooks)
	handler := payments_api.NewWebhookHandler(reconciler, log)

	if cfg.Profile == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	router.POST("/webhooks/stripe", handler.HandleStripeWebhook)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	port := os.Getenv("WEBHOOK_PORT")
	if port == "" {
		port = ":8081"
	}

	srv := &http.Server{
		Addr:         port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("SERVER", "webhook-service listening on "+port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", err.Error())
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	log.Info("SERVER", "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("SERVER", "shutdown error: "+err.Error())
	}
}
