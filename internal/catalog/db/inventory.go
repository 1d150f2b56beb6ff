package db

import (
	"context"

	"agama-events/internal/models"
)

// TryIncrementQuantitySold bumps the sold counter for a ticket type with a
// single conditional UPDATE. The quantity check lives inside the statement,
// so two concurrent confirmations can never push quantity_sold past the
// cap. A nil quantity means unlimited. Returns false when the cap has been
// reached.
func (d *DB) TryIncrementQuantitySold(ctx context.Context, ticketTypeID string) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.TicketType)(nil)).
		Set("quantity_sold = COALESCE(quantity_sold, 0) + 1").
		Where("id = ?", ticketTypeID).
		Where("quantity IS NULL OR COALESCE(quantity_sold, 0) < quantity").
		Exec(ctx)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}
