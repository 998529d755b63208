package storage

import (
	"context"
	"fmt"

	"github.com/jaki95/lyrics-relay/config"
)

// New builds the result store selected by cfg.Type.
func New(ctx context.Context, cfg config.StorageConfig) (ResultStore, error) {
	switch cfg.Type {
	case "", config.StorageLocal:
		return NewLocalResultStore(cfg.ResultFile)
	case config.StorageGCS:
		return NewGCSResultStore(ctx, cfg.Bucket, cfg.Object, cfg.CredentialsFile)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
