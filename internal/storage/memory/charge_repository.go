package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/spiritstitch/atelier/internal/domain"
)

// chargeRepositoryInMemory — in-memory реестр расходов салона.
type chargeRepositoryInMemory struct {
	mu     sync.RWMutex
	items  []domain.Charge
	nextID int64
}

// NewChargeRepository возвращает in-memory реализацию ChargeRepository.
func NewChargeRepository() domain.ChargeRepository {
	return &chargeRepositoryInMemory{nextID: 1}
}

func (r *chargeRepositoryInMemory) Create(charge domain.Charge) (domain.Charge, error) {
	if charge.SalonID == "" {
		return domain.Charge{}, domain.ErrSalonRequired
	}
	now := time.Now().UTC()
	if charge.IncurredAt.IsZero() {
		charge.IncurredAt = now
	}
	if charge.CreatedAt.IsZero() {
		charge.CreatedAt = now
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	charge.ID = r.nextID
	r.nextID++
	r.items = append(r.items, charge)
	return charge, nil
}

func (r *chargeRepositoryInMemory) ListBySalon(salonID string) ([]domain.Charge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Charge, 0)
	for _, charge := range r.items {
		if charge.SalonID == salonID {
			result = append(result, charge)
		}
	}

	// Порядок как у SQL-реализации: свежие расходы первыми.
	sort.Slice(result, func(i, j int) bool {
		if !result[i].IncurredAt.Equal(result[j].IncurredAt) {
			return result[i].IncurredAt.After(result[j].IncurredAt)
		}
		return result[i].ID > result[j].ID
	})

	return result, nil
}

var _ domain.ChargeRepository = (*chargeRepositoryInMemory)(nil)
