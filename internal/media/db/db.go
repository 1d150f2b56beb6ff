package db

import (
	"context"

	"agama-events/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateMediaAsset(ctx context.Context, asset models.MediaAsset) error {
	_, err := d.Bun.NewInsert().Model(&asset).Exec(ctx)
	return err
}

func (d *DB) ListMediaForEvent(ctx context.Context, eventID string) ([]models.MediaAsset, error) {
	var assets []models.MediaAsset
	err := d.Bun.NewSelect().
		Model(&assets).
		Where("event_id = ?", eventID).
		Order("uploaded_at DESC").
		Scan(ctx)
	return assets, err
}
