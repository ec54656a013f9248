// Package access caches per-category read restrictions.
package access

import (
	"context"
	"sync"
	"time"

	"github.com/itchan-dev/postmove/shared/domain"
	"github.com/itchan-dev/postmove/shared/logger"
)

type Storage interface {
	GetCategoriesWithPermissions(ctx context.Context) (map[domain.CategoryId][]string, error)
}

// CategoryAccess maps a category to the email domains allowed to read it.
// Categories without an entry are public.
type CategoryAccess struct {
	data map[domain.CategoryId][]string
	mu   sync.RWMutex
}

func New() *CategoryAccess {
	return &CategoryAccess{
		data: make(map[domain.CategoryId][]string),
	}
}

func (c *CategoryAccess) Update(ctx context.Context, s Storage) error {
	permissions, err := s.GetCategoriesWithPermissions(ctx)
	if err != nil {
		return err
	}
	if permissions == nil {
		permissions = make(map[domain.CategoryId][]string)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Replace the whole map so revoked restrictions do not linger.
	c.data = permissions

	return nil
}

func (c *CategoryAccess) AllowedDomains(category domain.CategoryId) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data[category]
}

// StartBackgroundUpdate refreshes the cache every interval until ctx is done.
func (c *CategoryAccess) StartBackgroundUpdate(ctx context.Context, interval time.Duration, s Storage) {
	ticker := time.NewTicker(interval)
	logger.Log.Info("started category access background update", "interval", interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := c.Update(ctx, s); err != nil {
					logger.Log.Error("failed to update category access rules", "error", err)
				}
			}
		}
	}()
}
