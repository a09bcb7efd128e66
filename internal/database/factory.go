package database

import (
	"fmt"
	"os"
	"path/filepath"

	"tuto-go/internal/config"
	"tuto-go/internal/model"
	"tuto-go/internal/tuto"
)

// FileName is the database file created in the data directory.
const FileName = "tuto.db"

// NewRunStoreFromConfig creates the RunStore selected by cfg.Type.
func NewRunStoreFromConfig(cfg config.DatabaseConfig) (tuto.RunStore, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		return openSQLite(filepath.Join(cfg.DataDir, FileName))
	case "memory":
		return openSQLite(":memory:")
	case "none":
		return NopRunStore{}, nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}

// openSQLite avoids handing a typed nil store back through the interface.
func openSQLite(path string) (tuto.RunStore, error) {
	store, err := NewSQLiteRunStore(path)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// NopRunStore keeps no history. Its runs carry ID -1.
type NopRunStore struct{}

var _ tuto.RunStore = NopRunStore{}

func (NopRunStore) CreateRun(runID, operation, parameters string) (*model.Run, error) {
	return &model.Run{ID: -1, RunID: runID, Operation: operation, Parameters: parameters, Status: StatusRunning}, nil
}

func (NopRunStore) FinishRun(int64, string) error      { return nil }
func (NopRunStore) ListRuns(int) ([]*model.Run, error) { return nil, nil }
func (NopRunStore) Close() error                       { return nil }
