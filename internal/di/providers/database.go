package providers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/secretshows/secretshows-server/internal/api"
	"github.com/secretshows/secretshows-server/internal/config"
	"github.com/secretshows/secretshows-server/internal/logger"
	"github.com/secretshows/secretshows-server/internal/session"
	"github.com/secretshows/secretshows-server/internal/store"
	"github.com/secretshows/secretshows-server/internal/store/sqlite"
)

// StoreHandle wraps the durable session storage selected by configuration.
type StoreHandle struct {
	// Factory opens the repository of one browser profile.
	Factory session.RepositoryFactory
	// Database is nil for in-memory storage.
	Database api.Pinger

	close  func() error
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	if h.cancel != nil {
		h.cancel()
	}
	if h.close != nil {
		return h.close()
	}
	return nil
}

// ProvideStore provides the session storage.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	switch cfg.Data.StorageDriver {
	case config.StorageMemory:
		log.Warn("Session storage is in memory; sessions are lost on restart")
		return &StoreHandle{Factory: session.NewMemoryFactory().Open}, nil

	case config.StorageSQLite:
		if err := os.MkdirAll(cfg.Data.BasePath, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		dbPath := filepath.Join(cfg.Data.BasePath, "sessions.db")
		db, err := sqlite.Open(dbPath, log.Logger)
		if err != nil {
			return nil, err
		}
		logProfiles(log, db)
		return &StoreHandle{Factory: db.Repository, Database: db, close: db.Close}, nil

	default:
		dbPath := filepath.Join(cfg.Data.BasePath, "db")
		db, err := store.New(dbPath, log.Logger)
		if err != nil {
			return nil, err
		}
		logProfiles(log, db)

		ctx, cancel := context.WithCancel(context.Background())
		go db.RunGC(ctx, valueLogGCInterval)

		return &StoreHandle{Factory: db.Repository, Database: db, close: db.Close, cancel: cancel}, nil
	}
}

type profileLister interface {
	Profiles(ctx context.Context) ([]string, error)
}

func logProfiles(log *logger.Logger, db profileLister) {
	profiles, err := db.Profiles(context.Background())
	if err != nil {
		log.Warn("Failed to count stored profiles", "error", err)
		return
	}
	log.Info("Session storage ready", "profiles", len(profiles))
}

// ProvideSlogLogger provides access to the underlying slog.Logger for packages that need it.
func ProvideSlogLogger(i do.Injector) (*slog.Logger, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return log.Logger, nil
}
