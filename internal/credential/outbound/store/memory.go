package store

import (
	"context"
	"sync"

	"github.com/shandysiswandi/authgate/internal/credential/entity"
	"github.com/shandysiswandi/authgate/internal/pkg/goerror"
)

// Memory is a process-local Store. Accounts are lost on restart.
type Memory struct {
	mu       sync.RWMutex
	accounts map[string]entity.Account
}

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{accounts: make(map[string]entity.Account)}
}

// Lookup returns a copy of the account stored under identifier.
func (m *Memory) Lookup(_ context.Context, identifier string) (*entity.Account, error) {
	m.mu.RLock()
	acc, ok := m.accounts[identifier]
	m.mu.RUnlock()

	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &acc, nil
}

// Insert stores account unless its identifier is already taken.
func (m *Memory) Insert(_ context.Context, account entity.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[account.Identifier]; ok {
		return entity.ErrDuplicateIdentifier
	}
	m.accounts[account.Identifier] = account
	return nil
}
