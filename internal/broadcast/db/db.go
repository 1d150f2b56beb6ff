package db

import (
	"context"

	"agama-events/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateBroadcast(ctx context.Context, b models.Broadcast) error {
	_, err := d.Bun.NewInsert().Model(&b).Exec(ctx)
	return err
}

func (d *DB) ListBroadcastsForEvent(ctx context.Context, eventID string) ([]models.Broadcast, error) {
	var broadcasts []models.Broadcast
	err := d.Bun.NewSelect().
		Model(&broadcasts).
		Where("event_id = ?", eventID).
		Order("sent_at DESC").
		Scan(ctx)
	return broadcasts, err
}
