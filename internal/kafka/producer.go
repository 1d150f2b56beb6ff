package kafka

import (
	"context"
	"encoding/json"
	"time"

	"agama-events/internal/config"
	"agama-events/internal/models"

	"github.com/segmentio/kafka-go"
)

// Producer streams reservation lifecycle and broadcast audit events, one
// writer per topic.
type Producer struct {
	confirmed *kafka.Writer
	failed    *kafka.Writer
	broadcast *kafka.Writer
}

func NewProducer(brokers []string, topics config.TopicConfig) *Producer {
	newWriter := func(topic string) *kafka.Writer {
		return kafka.NewWriter(kafka.WriterConfig{
			Brokers: brokers,
			Topic:   topic,
		})
	}
	return &Producer{
		confirmed: newWriter(topics.ReservationConfirmed),
		failed:    newWriter(topics.ReservationFailed),
		broadcast: newWriter(topics.BroadcastSent),
	}
}

func (p *Producer) PublishReservationConfirmed(ev models.ReservationEvent) error {
	ev.Type = models.ReservationConfirmed
	return publish(p.confirmed, ev.Attendee.ID, ev)
}

func (p *Producer) PublishReservationFailed(ev models.ReservationEvent) error {
	ev.Type = models.ReservationFailed
	return publish(p.failed, ev.Attendee.ID, ev)
}

func (p *Producer) PublishBroadcastSent(ev models.BroadcastEvent) error {
	return publish(p.broadcast, ev.Broadcast.ID, ev)
}

func publish(w *kafka.Writer, key string, payload interface{}) error {
	msgBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: msgBytes,
	})
}

func (p *Producer) Close() error {
	for _, w := range []*kafka.Writer{p.confirmed, p.failed, p.broadcast} {
		if err := w.Close(); err != nil {
			return err
		}
	}
	return nil
}
