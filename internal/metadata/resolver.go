package metadata

import (
	"context"
	"fmt"

	"github.com/azizikri/streak-rewards/internal/domain"
	"github.com/gosimple/slug"
)

// Resolver maps a milestone and year to the metadata URL a badge asset points at.
// Published editions win; other years get generated metadata in the store.
type Resolver struct {
	store *Store
}

// NewResolver accepts a nil store, in which case only published editions resolve.
func NewResolver(store *Store) *Resolver {
	return &Resolver{store: store}
}

func (r *Resolver) Resolve(ctx context.Context, milestone, year int) (string, error) {
	badge, ok := BadgeFor(milestone)
	if !ok {
		return "", fmt.Errorf("%w: no badge for milestone %d", domain.ErrMetadataUnavailable, milestone)
	}
	if e, ok := badge.Edition(year); ok && e.MetadataURL != "" {
		return e.MetadataURL, nil
	}
	if r.store == nil {
		return "", fmt.Errorf("%w: %s has no %d edition and no asset store is configured",
			domain.ErrMetadataUnavailable, badge.Key, year)
	}

	key := MetadataKey(badge, year)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrMetadataUnavailable, err)
	}
	if exists {
		return r.store.URL(key), nil
	}

	url, err := r.store.PutJSON(ctx, key, GenerateMetadata(badge, year))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrMetadataUnavailable, err)
	}
	return url, nil
}

func MetadataKey(b Badge, year int) string {
	return fmt.Sprintf("badges/%d/%s.json", year, slug.Make(b.Name))
}
