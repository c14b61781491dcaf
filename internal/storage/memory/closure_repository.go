package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/spiritstitch/atelier/internal/domain"
)

// closureLedgerInMemory — in-memory журнал просьб о закрытии.
type closureLedgerInMemory struct {
	mu     sync.RWMutex
	items  []domain.ClosureRequest
	nextID int64
}

// NewClosureLedger возвращает in-memory реализацию ClosureLedger.
func NewClosureLedger() domain.ClosureLedger {
	return &closureLedgerInMemory{nextID: 1}
}

func (r *closureLedgerInMemory) Append(req domain.ClosureRequest) (domain.ClosureRequest, error) {
	if errs := req.ValidateInvariants(); len(errs) > 0 {
		return domain.ClosureRequest{}, errs[0]
	}
	if req.ActionType == "" {
		req.ActionType = domain.ActionClosureRequest
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	req.ID = r.nextID
	r.nextID++
	r.items = append(r.items, req)
	return req, nil
}

func (r *closureLedgerInMemory) ListPending() ([]domain.ClosureRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.ClosureRequest, len(r.items))
	copy(result, r.items)

	// Порядок как у SQL-реализации: created_at ASC, id ASC.
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

func (r *closureLedgerInMemory) CountByOrders(tailorID int64, orderIDs []int64) (map[int64]domain.ClosureStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[int64]bool, len(orderIDs))
	for _, id := range orderIDs {
		wanted[id] = true
	}

	stats := make(map[int64]domain.ClosureStats, len(orderIDs))
	for _, req := range r.items {
		if req.TailorID != tailorID || req.ActionType != domain.ActionClosureRequest {
			continue
		}
		if !wanted[req.OrderID] {
			continue
		}
		st := stats[req.OrderID]
		st.Count++
		if req.CreatedAt.After(st.LastRequestedAt) {
			st.LastRequestedAt = req.CreatedAt
		}
		stats[req.OrderID] = st
	}

	return stats, nil
}

func (r *closureLedgerInMemory) CountForOrder(orderID, tailorID int64) (domain.ClosureStats, error) {
	stats, err := r.CountByOrders(tailorID, []int64{orderID})
	if err != nil {
		return domain.ClosureStats{}, err
	}
	return stats[orderID], nil
}

var _ domain.ClosureLedger = (*closureLedgerInMemory)(nil)
