package identity

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu        sync.RWMutex
	byName    map[string]Principal
	byAddress map[string]Principal
}

// NewMemoryRepository builds an in-memory principal store for tests and
// database-less development runs.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		byName:    make(map[string]Principal),
		byAddress: make(map[string]Principal),
	}
}

func (r *memoryRepository) Create(_ context.Context, principal Principal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[principal.Name]; exists {
		return ErrNameTaken
	}
	r.byName[principal.Name] = principal
	r.byAddress[principal.Address] = principal
	return nil
}

func (r *memoryRepository) FindByName(_ context.Context, name string) (Principal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	principal, ok := r.byName[name]
	if !ok {
		return Principal{}, ErrNotFound
	}
	return principal, nil
}

func (r *memoryRepository) FindByAddress(_ context.Context, address string) (Principal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	principal, ok := r.byAddress[address]
	if !ok {
		return Principal{}, ErrNotFound
	}
	return principal, nil
}
