package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/spiritstitch/atelier/internal/domain"
)

const (
	opTimeout = 5 * time.Second
)

const orderColumns = `id, client_id, salon_id, couturier_id, prix_total, avance, reste, statut, created_at, updated_at`

type orderLedger struct {
	db *sql.DB
}

// NewOrderLedger создаёт PostgreSQL-реализацию OrderLedger.
func NewOrderLedger(store *Store) domain.OrderLedger {
	return &orderLedger{db: store.DB()}
}

func (r *orderLedger) Create(order domain.Order) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if errs := order.ValidateInvariants(); len(errs) > 0 {
		return domain.Order{}, errs[0]
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO commandes (
			client_id, salon_id, couturier_id, prix_total, avance, reste, statut, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id
	`,
		order.ClientID, order.SalonID, order.TailorID,
		order.PrixTotal, order.Avance, order.Reste,
		string(order.Status), order.CreatedAt, order.UpdatedAt,
	).Scan(&order.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Order{}, fmt.Errorf("insert order: duplicate: %w", err)
		}
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}

	return order, nil
}

func (r *orderLedger) Get(id int64) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM commandes
		WHERE id = $1
	`, id)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}

	return order, nil
}

func (r *orderLedger) ListWithBalance(tailorID int64, salonID string, from, to *time.Time) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query := `
		SELECT ` + orderColumns + `
		FROM commandes
		WHERE couturier_id = $1
		  AND salon_id = $2
		  AND reste > 0
	`
	args := []any{tailorID, salonID}
	query, args = appendDateWindow(query, args, from, to)
	query += ` ORDER BY created_at DESC, id DESC`

	return r.queryOrders(ctx, query, args...)
}

// UpdatePricing перезаписывает платёжные поля одной командой.
// Остаток сверяется с формулой prix_total - avance до обращения к базе:
// значение от вызывающего считается рекомендательным и при расхождении
// отклоняется с ErrResteMismatch.
func (r *orderLedger) UpdatePricing(orderID int64, prixTotal, avance, reste decimal.Decimal) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if prixTotal.Sign() < 0 {
		return domain.ErrPrixNegative
	}
	if avance.Sign() < 0 {
		return domain.ErrAvanceNegative
	}
	computed := domain.ComputeReste(prixTotal, avance)
	if !reste.Equal(computed) {
		return domain.ErrResteMismatch
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE commandes
		SET prix_total = $1,
		    avance = $2,
		    reste = $3,
		    updated_at = NOW()
		WHERE id = $4
	`, prixTotal, avance, computed, orderID)
	if err != nil {
		return fmt.Errorf("update order pricing: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrOrderNotFound
	}

	return nil
}

func (r *orderLedger) MarkTerminated(orderID int64) error {
	return r.transition(orderID, domain.OrderStatusOpen, domain.OrderStatusTerminated)
}

func (r *orderLedger) MarkDeliveredPaid(orderID int64) error {
	return r.transition(orderID, domain.OrderStatusTerminated, domain.OrderStatusDeliveredPaid)
}

// transition выполняет охраняемый переход статуса from -> to.
// Ноль затронутых строк разбирается отдельно: заказ уже в целевом статусе —
// успешный no-op, заказ отсутствует — ErrOrderNotFound, иначе переход
// нарушает однонаправленный жизненный цикл.
func (r *orderLedger) transition(orderID int64, from, to domain.OrderStatus) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE commandes
		SET statut = $1,
		    updated_at = NOW()
		WHERE id = $2
		  AND statut = $3
	`, string(to), orderID, string(from))
	if err != nil {
		return fmt.Errorf("transition order status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	var current string
	err = r.db.QueryRowContext(ctx, `SELECT statut FROM commandes WHERE id = $1`, orderID).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrOrderNotFound
		}
		return fmt.Errorf("check order status: %w", err)
	}

	if domain.OrderStatus(current) == to {
		return nil
	}
	if to == domain.OrderStatusDeliveredPaid && domain.OrderStatus(current) == domain.OrderStatusOpen {
		return domain.ErrOrderNotTerminated
	}
	return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStatusTransition, current, to)
}

func (r *orderLedger) ListTerminated(salonID string, tailorID *int64, from, to *time.Time, status domain.OrderStatus) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if status == "" {
		status = domain.OrderStatusTerminated
	}

	query := `
		SELECT ` + orderColumns + `
		FROM commandes
		WHERE salon_id = $1
		  AND statut = $2
	`
	args := []any{salonID, string(status)}
	if tailorID != nil {
		args = append(args, *tailorID)
		query += ` AND couturier_id = $` + strconv.Itoa(len(args))
	}
	query, args = appendDateWindow(query, args, from, to)
	query += ` ORDER BY updated_at DESC, id DESC`

	return r.queryOrders(ctx, query, args...)
}

func (r *orderLedger) queryOrders(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, nil
}

// rowScanner покрывает *sql.Row и *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var order domain.Order
	var status string
	if err := row.Scan(
		&order.ID, &order.ClientID, &order.SalonID, &order.TailorID,
		&order.PrixTotal, &order.Avance, &order.Reste,
		&status, &order.CreatedAt, &order.UpdatedAt,
	); err != nil {
		return domain.Order{}, err
	}
	order.Status = domain.OrderStatus(status)
	return order, nil
}

// appendDateWindow добавляет опциональное полуоткрытое окно [from, to) по created_at.
func appendDateWindow(query string, args []any, from, to *time.Time) (string, []any) {
	if from != nil {
		args = append(args, *from)
		query += ` AND created_at >= $` + strconv.Itoa(len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += ` AND created_at < $` + strconv.Itoa(len(args))
	}
	return query, args
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ domain.OrderLedger = (*orderLedger)(nil)
