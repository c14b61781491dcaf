package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/spiritstitch/atelier/internal/domain"
)

type chargeRepository struct {
	db *sql.DB
}

// NewChargeRepository создаёт PostgreSQL-реализацию ChargeRepository.
func NewChargeRepository(store *Store) domain.ChargeRepository {
	return &chargeRepository{db: store.DB()}
}

func (r *chargeRepository) Create(charge domain.Charge) (domain.Charge, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if charge.SalonID == "" {
		return domain.Charge{}, domain.ErrSalonRequired
	}
	if charge.IncurredAt.IsZero() {
		charge.IncurredAt = time.Now().UTC()
	}
	if charge.CreatedAt.IsZero() {
		charge.CreatedAt = time.Now().UTC()
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO charges (salon_id, libelle, montant, date_charge, created_at)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id
	`, charge.SalonID, charge.Label, charge.Amount, charge.IncurredAt, charge.CreatedAt).Scan(&charge.ID)
	if err != nil {
		return domain.Charge{}, fmt.Errorf("insert charge: %w", err)
	}

	return charge, nil
}

func (r *chargeRepository) ListBySalon(salonID string) ([]domain.Charge, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, salon_id, libelle, montant, date_charge, created_at
		FROM charges
		WHERE salon_id = $1
		ORDER BY date_charge DESC, id DESC
	`, salonID)
	if err != nil {
		return nil, fmt.Errorf("list charges: %w", err)
	}
	defer rows.Close()

	charges := make([]domain.Charge, 0)
	for rows.Next() {
		var charge domain.Charge
		if err := rows.Scan(
			&charge.ID, &charge.SalonID, &charge.Label,
			&charge.Amount, &charge.IncurredAt, &charge.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan charge: %w", err)
		}
		charges = append(charges, charge)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate charges: %w", err)
	}

	return charges, nil
}

var _ domain.ChargeRepository = (*chargeRepository)(nil)
