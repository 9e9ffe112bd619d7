// Package memory implements key-vault persistence in process memory. Data is
// lost on exit; it backs tests and the "memory" store driver.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
)

type keyVault struct {
	keys    []cryptoDomain.DataKey
	indexed bool
}

// KeyVaultRepository keeps one key vault per namespace.
type KeyVaultRepository struct {
	mu     sync.RWMutex
	vaults map[string]*keyVault
}

// NewKeyVaultRepository creates an empty repository.
func NewKeyVaultRepository() *KeyVaultRepository {
	return &KeyVaultRepository{vaults: make(map[string]*keyVault)}
}

func (r *KeyVaultRepository) Drop(ctx context.Context, ns cryptoDomain.Namespace) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.vaults, ns.String())
	return nil
}

func (r *KeyVaultRepository) EnsureAltNameIndex(ctx context.Context, ns cryptoDomain.Namespace) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	vault := r.vault(ns)
	seen := make(map[string]bool)
	for _, key := range vault.keys {
		for _, name := range key.KeyAltNames {
			if seen[name] {
				return cryptoDomain.ErrDataKeyAltNameTaken
			}
			seen[name] = true
		}
	}
	vault.indexed = true
	return nil
}

func (r *KeyVaultRepository) Create(
	ctx context.Context,
	ns cryptoDomain.Namespace,
	dataKey *cryptoDomain.DataKey,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	vault := r.vault(ns)
	for _, existing := range vault.keys {
		if existing.ID == dataKey.ID {
			return cryptoDomain.ErrDataKeyExists
		}
		if !vault.indexed {
			continue
		}
		for _, name := range dataKey.KeyAltNames {
			if existing.HasAltName(name) {
				return cryptoDomain.ErrDataKeyAltNameTaken
			}
		}
	}
	vault.keys = append(vault.keys, cloneDataKey(*dataKey))
	return nil
}

func (r *KeyVaultRepository) Get(
	ctx context.Context,
	ns cryptoDomain.Namespace,
	id uuid.UUID,
) (*cryptoDomain.DataKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	vault, ok := r.vaults[ns.String()]
	if !ok {
		return nil, cryptoDomain.ErrDataKeyNotFound
	}
	for _, key := range vault.keys {
		if key.ID == id {
			found := cloneDataKey(key)
			return &found, nil
		}
	}
	return nil, cryptoDomain.ErrDataKeyNotFound
}

func (r *KeyVaultRepository) GetByAltName(
	ctx context.Context,
	ns cryptoDomain.Namespace,
	altName string,
) (*cryptoDomain.DataKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	vault, ok := r.vaults[ns.String()]
	if !ok {
		return nil, cryptoDomain.ErrDataKeyNotFound
	}
	for _, key := range vault.keys {
		if key.HasAltName(altName) {
			found := cloneDataKey(key)
			return &found, nil
		}
	}
	return nil, cryptoDomain.ErrDataKeyNotFound
}

func (r *KeyVaultRepository) Count(ctx context.Context, ns cryptoDomain.Namespace) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	vault, ok := r.vaults[ns.String()]
	if !ok {
		return 0, nil
	}
	return int64(len(vault.keys)), nil
}

// vault returns the vault for ns, creating it. Callers hold the write lock.
func (r *KeyVaultRepository) vault(ns cryptoDomain.Namespace) *keyVault {
	vault, ok := r.vaults[ns.String()]
	if !ok {
		vault = &keyVault{}
		r.vaults[ns.String()] = vault
	}
	return vault
}

func cloneDataKey(key cryptoDomain.DataKey) cryptoDomain.DataKey {
	key.KeyMaterial = append([]byte(nil), key.KeyMaterial...)
	key.KeyAltNames = append([]string(nil), key.KeyAltNames...)
	return key
}
