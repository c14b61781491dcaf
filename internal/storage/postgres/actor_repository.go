package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spiritstitch/atelier/internal/domain"
)

type actorRepository struct {
	db *sql.DB
}

// NewActorRepository создаёт PostgreSQL-реализацию ActorRepository.
func NewActorRepository(store *Store) domain.ActorRepository {
	return &actorRepository{db: store.DB()}
}

func (r *actorRepository) GetByCode(code string) (domain.Actor, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var actor domain.Actor
	var role string
	var salonID sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT id, code, prenom, nom, role, salon_id, password_hash, created_at
		FROM couturiers
		WHERE code = $1
	`, code).Scan(
		&actor.ID, &actor.Code, &actor.FirstName, &actor.LastName,
		&role, &salonID, &actor.PasswordHash, &actor.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Actor{}, domain.ErrActorNotFound
		}
		return domain.Actor{}, fmt.Errorf("select actor: %w", err)
	}

	actor.Role = domain.NormalizeRole(role)
	if salonID.Valid {
		actor.SalonID = salonID.String
	}

	return actor, nil
}

var _ domain.ActorRepository = (*actorRepository)(nil)
