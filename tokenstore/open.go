package tokenstore

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jrsteele09/acservice-dashboard/internal/config"
)

// Open builds the Store selected by configuration
func Open(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.GetTokenStore() {
	case config.TokenStoreFile:
		return OpenFileStore(filepath.Join(cfg.GetDataFolder(), DefaultFileName))
	case config.TokenStoreRedis:
		return OpenRedisStore(ctx, cfg.GetRedisURL(), cfg.GetRedisPrefix())
	case config.TokenStoreMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("[tokenstore] unknown token store %q", cfg.GetTokenStore())
	}
}
