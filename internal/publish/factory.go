package publish

import (
	"context"
	"fmt"

	"tuto-go/internal/config"
	"tuto-go/internal/tuto"
)

// NewPublisherFromConfig creates the Publisher selected by cfg.Type.
func NewPublisherFromConfig(ctx context.Context, cfg config.PublishConfig) (tuto.Publisher, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryPublisher(), nil
	case "s3":
		p, err := NewS3Publisher(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "filesystem":
		if cfg.Root == "" {
			return nil, fmt.Errorf("filesystem publisher requires root to be set")
		}
		p, err := NewFileSystemPublisher(cfg.Root)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "":
		return nil, fmt.Errorf("no publisher configured: set publish.type")
	default:
		return nil, fmt.Errorf("unknown publish type: %s", cfg.Type)
	}
}
