package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"agama-events/internal/config"
	"agama-events/internal/kafka"
	"agama-events/internal/logger"
	"agama-events/internal/models"
	"agama-events/internal/notify"

	"github.com/joho/godotenv"
)

// notify-worker consumes confirmed reservations off kafka and sends the
// confirmation email. Free reservations are emailed inline by the events
// service; only paid confirmations flow through here, because they settle
// asynchronously via webhook.
func main() {
	_ = godotenv.Load()

	log := logger.NewLogger("notify-worker")
	defer log.Close()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("CONFIG", err.Error())
	}
	if !cfg.Kafka.Enabled {
		log.Fatal("KAFKA", "notify-worker requires kafka, set KAFKA_ENABLED=true")
	}

	mailer := notify.NewResendMailer(cfg.Email.ResendAPIKey, cfg.Email.FromAddress, log)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.ReservationConfirmed, cfg.Kafka.GroupID+"-notify")
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("WORKER", "consuming "+cfg.Kafka.Topics.ReservationConfirmed)
	consumer.Start(ctx, func(ev models.ReservationEvent) {
		// Free confirmations were already emailed at reservation time.
		if ev.Attendee.PricePaid.IsZero() {
			return
		}

		err := mailer.SendReservationConfirmation(ctx, notify.ConfirmationParams{
			To:            ev.Attendee.Email,
			Name:          ev.Attendee.Name,
			EventTitle:    ev.EventTitle,
			EventDate:     ev.EventDate,
			EventLocation: ev.EventLocation,
			TicketType:    ev.Attendee.TicketTypeName,
			Price:         ev.Attendee.PricePaid,
			IsFree:        false,
		})
		if err != nil {
			log.Error("EMAIL", fmt.Sprintf("confirmation for attendee %s failed: %v", ev.Attendee.ID, err))
		}
	})

	log.Info("WORKER", "shut down")
}
