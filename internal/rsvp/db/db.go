package db

import (
	"context"
	"database/sql"
	"errors"

	"agama-events/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateAttendee(ctx context.Context, attendee models.Attendee) error {
	_, err := d.Bun.NewInsert().Model(&attendee).Exec(ctx)
	return err
}

func (d *DB) GetAttendeeByID(ctx context.Context, id string) (*models.Attendee, error) {
	var attendee models.Attendee
	err := d.Bun.NewSelect().
		Model(&attendee).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attendee, nil
}

func (d *DB) UpdatePaymentStatus(ctx context.Context, attendeeID, status string) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Attendee)(nil)).
		Set("payment_status = ?", status).
		Where("id = ?", attendeeID).
		Exec(ctx)
	return err
}

func (d *DB) SetExternalOrderID(ctx context.Context, attendeeID, orderID string) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Attendee)(nil)).
		Set("external_order_id = ?", orderID).
		Where("id = ?", attendeeID).
		Exec(ctx)
	return err
}

// MarkPaidByOrderID flips the attendee matched by checkout order id to paid.
// The status guard makes replayed notifications no-ops: the second delivery
// matches zero rows and the caller sees applied=false.
func (d *DB) MarkPaidByOrderID(ctx context.Context, orderID, paymentID string) (*models.Attendee, bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Attendee)(nil)).
		Set("payment_status = ?", models.PaymentPaid).
		Set("external_payment_id = ?", paymentID).
		Where("external_order_id = ?", orderID).
		Where("payment_status != ?", models.PaymentPaid).
		Exec(ctx)
	if err != nil {
		return nil, false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}

	attendee, err := d.getByOrderID(ctx, orderID)
	if err != nil {
		return nil, false, err
	}
	return attendee, rows > 0, nil
}

// MarkFailedByOrderID records a failed or expired payment. A paid attendee is
// never demoted.
func (d *DB) MarkFailedByOrderID(ctx context.Context, orderID string) (*models.Attendee, bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Attendee)(nil)).
		Set("payment_status = ?", models.PaymentFailed).
		Where("external_order_id = ?", orderID).
		Where("payment_status != ?", models.PaymentPaid).
		Exec(ctx)
	if err != nil {
		return nil, false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}

	attendee, err := d.getByOrderID(ctx, orderID)
	if err != nil {
		return nil, false, err
	}
	return attendee, rows > 0, nil
}

func (d *DB) getByOrderID(ctx context.Context, orderID string) (*models.Attendee, error) {
	var attendee models.Attendee
	err := d.Bun.NewSelect().
		Model(&attendee).
		Where("external_order_id = ?", orderID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attendee, nil
}

func (d *DB) ListPaidAttendees(ctx context.Context, eventID string) ([]models.Attendee, error) {
	var attendees []models.Attendee
	err := d.Bun.NewSelect().
		Model(&attendees).
		Where("event_id = ?", eventID).
		Where("payment_status = ?", models.PaymentPaid).
		Order("created_at ASC").
		Scan(ctx)
	return attendees, err
}

func (d *DB) ListAttendeesForEvent(ctx context.Context, eventID string) ([]models.Attendee, error) {
	var attendees []models.Attendee
	err := d.Bun.NewSelect().
		Model(&attendees).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Scan(ctx)
	return attendees, err
}
