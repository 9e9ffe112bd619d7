// Package memory implements secret and activation persistence in process
// memory. Data is lost on exit; it backs tests and the "memory" store driver.
package memory

import (
	"context"
	"sync"

	secretsDomain "github.com/allisson/bluegreen/internal/secrets/domain"
)

type collection struct {
	order []string
	docs  map[string][]byte
}

// SecretRepository keeps one collection per color. Iteration follows insertion order.
type SecretRepository struct {
	mu          sync.RWMutex
	collections map[secretsDomain.Color]*collection
}

// NewSecretRepository creates an empty repository.
func NewSecretRepository() *SecretRepository {
	return &SecretRepository{collections: make(map[secretsDomain.Color]*collection)}
}

func (r *SecretRepository) Upsert(ctx context.Context, color secretsDomain.Color, secret *secretsDomain.Secret) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.collection(color)
	if _, ok := c.docs[secret.ID]; !ok {
		c.order = append(c.order, secret.ID)
	}
	c.docs[secret.ID] = append([]byte(nil), secret.Ciphertext...)
	return nil
}

func (r *SecretRepository) Create(ctx context.Context, color secretsDomain.Color, secret *secretsDomain.Secret) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.collection(color)
	if _, ok := c.docs[secret.ID]; ok {
		return secretsDomain.ErrSecretExists
	}
	c.order = append(c.order, secret.ID)
	c.docs[secret.ID] = append([]byte(nil), secret.Ciphertext...)
	return nil
}

func (r *SecretRepository) Get(ctx context.Context, color secretsDomain.Color, id string) (*secretsDomain.Secret, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.collections[color]
	if !ok {
		return nil, secretsDomain.ErrSecretNotFound
	}
	ciphertext, ok := c.docs[id]
	if !ok {
		return nil, secretsDomain.ErrSecretNotFound
	}
	return &secretsDomain.Secret{ID: id, Ciphertext: append([]byte(nil), ciphertext...)}, nil
}

// Iterate works on a snapshot taken under the lock, so fn may write to the repository.
func (r *SecretRepository) Iterate(
	ctx context.Context,
	color secretsDomain.Color,
	fn func(*secretsDomain.Secret) error,
) error {
	for _, secret := range r.snapshot(color) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(secret); err != nil {
			return err
		}
	}
	return nil
}

func (r *SecretRepository) Count(ctx context.Context, color secretsDomain.Color) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.collections[color]
	if !ok {
		return 0, nil
	}
	return int64(len(c.docs)), nil
}

func (r *SecretRepository) Drop(ctx context.Context, color secretsDomain.Color) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.collections, color)
	return nil
}

func (r *SecretRepository) snapshot(color secretsDomain.Color) []*secretsDomain.Secret {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.collections[color]
	if !ok {
		return nil
	}
	secrets := make([]*secretsDomain.Secret, 0, len(c.order))
	for _, id := range c.order {
		secrets = append(secrets, &secretsDomain.Secret{ID: id, Ciphertext: append([]byte(nil), c.docs[id]...)})
	}
	return secrets
}

// collection returns the collection of color, creating it. Callers hold the write lock.
func (r *SecretRepository) collection(color secretsDomain.Color) *collection {
	c, ok := r.collections[color]
	if !ok {
		c = &collection{docs: make(map[string][]byte)}
		r.collections[color] = c
	}
	return c
}
