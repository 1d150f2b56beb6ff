package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"agama-events/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- EVENTS ----------------

func (d *DB) CreateEvent(ctx context.Context, event models.Event) error {
	_, err := d.Bun.NewInsert().Model(&event).Exec(ctx)
	return err
}

func (d *DB) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// GetEventForOrganizer scopes the lookup to the owner so a foreign event
// behaves exactly like a missing one.
func (d *DB) GetEventForOrganizer(ctx context.Context, id, organizerID string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Where("organizer_id = ?", organizerID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (d *DB) ListEventsByOrganizer(ctx context.Context, organizerID string) ([]models.Event, error) {
	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Where("organizer_id = ?", organizerID).
		Order("date ASC").
		Scan(ctx)
	return events, err
}

func (d *DB) ListUpcomingEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Where("date >= ?", time.Now()).
		Order("date ASC").
		Scan(ctx)
	return events, err
}

// DeleteEvent removes the event and all dependents in one transaction.
// The child deletes are explicit rather than relying on cascade alone so
// the operation behaves the same on stores without FK enforcement.
func (d *DB) DeleteEvent(ctx context.Context, id string) error {
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*models.MediaAsset)(nil)).Where("event_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*models.Broadcast)(nil)).Where("event_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*models.Attendee)(nil)).Where("event_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*models.TicketType)(nil)).Where("event_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewDelete().Model((*models.Event)(nil)).Where("id = ?", id).Exec(ctx)
		return err
	})
}

// ---------------- TICKET TYPES ----------------

func (d *DB) GetTicketType(ctx context.Context, id string) (*models.TicketType, error) {
	var tt models.TicketType
	err := d.Bun.NewSelect().
		Model(&tt).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tt, nil
}

func (d *DB) ActiveTicketTypes(ctx context.Context, eventID string) ([]models.TicketType, error) {
	var set []models.TicketType
	err := d.Bun.NewSelect().
		Model(&set).
		Where("event_id = ?", eventID).
		Where("is_active = ?", true).
		Order("display_order ASC").
		Scan(ctx)
	return set, err
}

// ReplaceTicketTypes deletes the event's existing set and inserts the new
// one inside a single transaction. Attendee references to deleted rows are
// nulled first, mirroring ON DELETE SET NULL for stores that don't enforce it.
func (d *DB) ReplaceTicketTypes(ctx context.Context, eventID string, set []models.TicketType) error {
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewUpdate().
			Model((*models.Attendee)(nil)).
			Set("ticket_type_id = NULL").
			Where("event_id = ?", eventID).
			Where("ticket_type_id IS NOT NULL").
			Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().
			Model((*models.TicketType)(nil)).
			Where("event_id = ?", eventID).
			Exec(ctx); err != nil {
			return err
		}
		if len(set) == 0 {
			return nil
		}
		_, err := tx.NewInsert().Model(&set).Exec(ctx)
		return err
	})
}
