package memory

import (
	"context"
	"sync"

	secretsDomain "github.com/allisson/bluegreen/internal/secrets/domain"
)

// MetadataRepository holds the activation record.
type MetadataRepository struct {
	mu     sync.RWMutex
	active secretsDomain.Color
}

// NewMetadataRepository creates a repository without an activation record.
func NewMetadataRepository() *MetadataRepository {
	return &MetadataRepository{}
}

func (r *MetadataRepository) GetActive(ctx context.Context) (secretsDomain.Color, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.active == "" {
		return "", secretsDomain.ErrMetadataMissing
	}
	return r.active, nil
}

func (r *MetadataRepository) SetActive(ctx context.Context, color secretsDomain.Color) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.active = color
	return nil
}
