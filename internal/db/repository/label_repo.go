package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/szytools/discount-label-service/internal/models"
)

const maxHistoryLimit = 500

// LabelRepository handles print history data access
type LabelRepository struct {
	db *sqlx.DB
}

// NewLabelRepository creates a new label repository
func NewLabelRepository(db *sqlx.DB) *LabelRepository {
	return &LabelRepository{db: db}
}

// Insert stores a printed label
func (r *LabelRepository) Insert(ctx context.Context, rec models.PrintRecord) error {
	query := `
		INSERT INTO print_records (
			id, item_code, internal, product_name, barcode, unit_label, outlet,
			normal_price, discount_price, device_id, printer_address, printed_at
		) VALUES (
			:id, :item_code, :internal, :product_name, :barcode, :unit_label, :outlet,
			:normal_price, :discount_price, :device_id, :printer_address, :printed_at
		)
	`

	if _, err := r.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("failed to insert print record: %w", err)
	}

	return nil
}

// ListRecent retrieves the latest printed labels, newest first. An empty
// outlet lists every outlet.
func (r *LabelRepository) ListRecent(ctx context.Context, outlet string, limit int) ([]models.PrintRecord, error) {
	if limit <= 0 || limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	query := `
		SELECT id, item_code, internal, product_name, barcode, unit_label, outlet,
		       normal_price, discount_price, device_id, printer_address, printed_at
		FROM print_records
		WHERE ($1 = '' OR outlet = $1)
		ORDER BY printed_at DESC
		LIMIT $2
	`

	records := []models.PrintRecord{}
	if err := r.db.SelectContext(ctx, &records, query, outlet, limit); err != nil {
		return nil, fmt.Errorf("failed to list print records: %w", err)
	}

	return records, nil
}
