package memory

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spiritstitch/atelier/internal/domain"
)

// orderLedgerInMemory — простая in-memory реализация OrderLedger.
type orderLedgerInMemory struct {
	mu     sync.RWMutex
	items  map[int64]domain.Order
	nextID int64
}

// NewOrderLedger возвращает in-memory реестр для локальной разработки и тестов.
func NewOrderLedger() domain.OrderLedger {
	return &orderLedgerInMemory{
		items:  make(map[int64]domain.Order),
		nextID: 1,
	}
}

// Create сохраняет новый заказ и выдаёт ему идентификатор.
func (r *orderLedgerInMemory) Create(order domain.Order) (domain.Order, error) {
	if errs := order.ValidateInvariants(); len(errs) > 0 {
		return domain.Order{}, errs[0]
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == 0 {
		order.ID = r.nextID
	}
	if order.ID >= r.nextID {
		r.nextID = order.ID + 1
	}
	// Сохраняем копию, чтобы избежать непредсказуемых мутаций извне.
	r.items[order.ID] = order
	return order, nil
}

// Get возвращает заказ или ErrOrderNotFound, если его нет.
func (r *orderLedgerInMemory) Get(id int64) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

func (r *orderLedgerInMemory) ListWithBalance(tailorID int64, salonID string, from, to *time.Time) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0)
	for _, order := range r.items {
		if order.TailorID != tailorID || order.SalonID != salonID {
			continue
		}
		if order.Reste.Sign() <= 0 {
			continue
		}
		if !inWindow(order.CreatedAt, from, to) {
			continue
		}
		result = append(result, order)
	}
	sortNewestFirst(result)

	return result, nil
}

func (r *orderLedgerInMemory) UpdatePricing(orderID int64, prixTotal, avance, reste decimal.Decimal) error {
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

	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.items[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	order.PrixTotal = prixTotal
	order.Avance = avance
	order.Reste = computed
	order.UpdatedAt = time.Now().UTC()
	r.items[orderID] = order
	return nil
}

func (r *orderLedgerInMemory) MarkTerminated(orderID int64) error {
	return r.transition(orderID, domain.OrderStatusOpen, domain.OrderStatusTerminated)
}

func (r *orderLedgerInMemory) MarkDeliveredPaid(orderID int64) error {
	return r.transition(orderID, domain.OrderStatusTerminated, domain.OrderStatusDeliveredPaid)
}

func (r *orderLedgerInMemory) transition(orderID int64, from, to domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.items[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	// Повторный перевод в уже достигнутый статус — no-op.
	if order.Status == to {
		return nil
	}
	if order.Status != from {
		if to == domain.OrderStatusDeliveredPaid && order.Status == domain.OrderStatusOpen {
			return domain.ErrOrderNotTerminated
		}
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStatusTransition, order.Status, to)
	}

	order.Status = to
	order.UpdatedAt = time.Now().UTC()
	r.items[orderID] = order
	return nil
}

func (r *orderLedgerInMemory) ListTerminated(salonID string, tailorID *int64, from, to *time.Time, status domain.OrderStatus) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if status == "" {
		status = domain.OrderStatusTerminated
	}

	result := make([]domain.Order, 0)
	for _, order := range r.items {
		if order.SalonID != salonID || order.Status != status {
			continue
		}
		if tailorID != nil && order.TailorID != *tailorID {
			continue
		}
		if !inWindow(order.CreatedAt, from, to) {
			continue
		}
		result = append(result, order)
	}
	sortNewestFirst(result)

	return result, nil
}

// inWindow проверяет попадание в полуоткрытое окно [from, to).
func inWindow(ts time.Time, from, to *time.Time) bool {
	if from != nil && ts.Before(*from) {
		return false
	}
	if to != nil && !ts.Before(*to) {
		return false
	}
	return true
}

func sortNewestFirst(orders []domain.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID > orders[j].ID
	})
}

var _ domain.OrderLedger = (*orderLedgerInMemory)(nil)
