package repository

import (
	"context"
	"strings"
	"sync"
)

// MemoryCredentialRepo holds the key for the lifetime of the process.
type MemoryCredentialRepo struct {
	mu    sync.RWMutex
	value string
}

func NewMemoryCredentialRepo(initial string) *MemoryCredentialRepo {
	return &MemoryCredentialRepo{value: strings.TrimSpace(initial)}
}

func (r *MemoryCredentialRepo) Load(_ context.Context) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value, nil
}

func (r *MemoryCredentialRepo) Save(_ context.Context, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return ErrEmptyCredential
	}
	r.mu.Lock()
	r.value = value
	r.mu.Unlock()
	return nil
}
