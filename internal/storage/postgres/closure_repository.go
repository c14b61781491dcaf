package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spiritstitch/atelier/internal/domain"
)

type closureLedger struct {
	db *sql.DB
}

// NewClosureLedger создаёт PostgreSQL-реализацию ClosureLedger.
func NewClosureLedger(store *Store) domain.ClosureLedger {
	return &closureLedger{db: store.DB()}
}

func (r *closureLedger) Append(req domain.ClosureRequest) (domain.ClosureRequest, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if errs := req.ValidateInvariants(); len(errs) > 0 {
		return domain.ClosureRequest{}, errs[0]
	}
	if req.ActionType == "" {
		req.ActionType = domain.ActionClosureRequest
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO demandes_validation (commande_id, couturier_id, type_action, created_at)
		VALUES ($1,$2,$3,$4)
		RETURNING id
	`, req.OrderID, req.TailorID, req.ActionType, req.CreatedAt).Scan(&req.ID)
	if err != nil {
		return domain.ClosureRequest{}, fmt.Errorf("insert closure request: %w", err)
	}

	return req, nil
}

// ListPending возвращает все просьбы системы. Порядок created_at ASC, id ASC
// фиксирован: от него зависит детерминизм last-write-wins у потребителей.
func (r *closureLedger) ListPending() ([]domain.ClosureRequest, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, commande_id, couturier_id, type_action, created_at
		FROM demandes_validation
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list closure requests: %w", err)
	}
	defer rows.Close()

	requests := make([]domain.ClosureRequest, 0)
	for rows.Next() {
		var req domain.ClosureRequest
		if err := rows.Scan(&req.ID, &req.OrderID, &req.TailorID, &req.ActionType, &req.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan closure request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate closure requests: %w", err)
	}

	return requests, nil
}

func (r *closureLedger) CountByOrders(tailorID int64, orderIDs []int64) (map[int64]domain.ClosureStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	stats := make(map[int64]domain.ClosureStats, len(orderIDs))
	if len(orderIDs) == 0 {
		return stats, nil
	}

	args := []any{tailorID, domain.ActionClosureRequest}
	placeholders := make([]string, 0, len(orderIDs))
	for _, id := range orderIDs {
		args = append(args, id)
		placeholders = append(placeholders, "$"+strconv.Itoa(len(args)))
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT commande_id, COUNT(*), MAX(created_at)
		FROM demandes_validation
		WHERE couturier_id = $1
		  AND type_action = $2
		  AND commande_id IN (`+strings.Join(placeholders, ",")+`)
		GROUP BY commande_id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("count closure requests: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID int64
		var st domain.ClosureStats
		if err := rows.Scan(&orderID, &st.Count, &st.LastRequestedAt); err != nil {
			return nil, fmt.Errorf("scan closure stats: %w", err)
		}
		stats[orderID] = st
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate closure stats: %w", err)
	}

	return stats, nil
}

func (r *closureLedger) CountForOrder(orderID, tailorID int64) (domain.ClosureStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var st domain.ClosureStats
	var last sql.NullTime
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), MAX(created_at)
		FROM demandes_validation
		WHERE commande_id = $1
		  AND couturier_id = $2
		  AND type_action = $3
	`, orderID, tailorID, domain.ActionClosureRequest).Scan(&st.Count, &last)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return domain.ClosureStats{}, fmt.Errorf("count closure requests for order: %w", err)
	}
	if last.Valid {
		st.LastRequestedAt = last.Time
	}

	return st, nil
}

var _ domain.ClosureLedger = (*closureLedger)(nil)
