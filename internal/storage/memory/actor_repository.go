package memory

import (
	"sync"

	"github.com/spiritstitch/atelier/internal/domain"
)

// actorRepositoryInMemory — in-memory каталог сотрудников для тестов.
type actorRepositoryInMemory struct {
	mu     sync.RWMutex
	byCode map[string]domain.Actor
}

// NewActorRepository возвращает in-memory реализацию ActorRepository.
func NewActorRepository(actors ...domain.Actor) domain.ActorRepository {
	byCode := make(map[string]domain.Actor, len(actors))
	for _, actor := range actors {
		byCode[actor.Code] = actor
	}
	return &actorRepositoryInMemory{byCode: byCode}
}

func (r *actorRepositoryInMemory) GetByCode(code string) (domain.Actor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	actor, ok := r.byCode[code]
	if !ok {
		return domain.Actor{}, domain.ErrActorNotFound
	}
	return actor, nil
}

var _ domain.ActorRepository = (*actorRepositoryInMemory)(nil)
