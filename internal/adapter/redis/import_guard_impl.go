package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Birgy1002/rezept-pwa/pkg/utils"
)

const importedURLPrefix = "imported:"

// ImportGuardRepoImpl implements repository.ImportGuardRepository with expiring redis keys.
type ImportGuardRepoImpl struct {
	client *redis.Client
}

// NewImportGuardRepo creates a new instance of ImportGuardRepoImpl.
func NewImportGuardRepo(client *redis.Client) *ImportGuardRepoImpl {
	return &ImportGuardRepoImpl{client: client}
}

// generateKey creates a consistent Redis key for a given URL by hashing it.
func (r *ImportGuardRepoImpl) generateKey(url string) string {
	return fmt.Sprintf("%s%s", importedURLPrefix, utils.HashURL(url))
}

// MarkImported sets the URL's key with an expiry equal to the dedup window.
func (r *ImportGuardRepoImpl) MarkImported(ctx context.Context, url string, window time.Duration) error {
	return r.client.SetEx(ctx, r.generateKey(url), "1", window).Err()
}

// IsImported checks for the existence of the URL's key.
func (r *ImportGuardRepoImpl) IsImported(ctx context.Context, url string) (bool, error) {
	val, err := r.client.Exists(ctx, r.generateKey(url)).Result()
	if err != nil {
		return false, err
	}
	return val == 1, nil
}

// Forget removes the URL's key, used for forced re-imports.
func (r *ImportGuardRepoImpl) Forget(ctx context.Context, url string) error {
	return r.client.Del(ctx, r.generateKey(url)).Err()
}

func (r *ImportGuardRepoImpl) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
