package providers

import (
	"github.com/samber/do/v2"

	"github.com/secretshows/secretshows-server/internal/catalog"
	"github.com/secretshows/secretshows-server/internal/config"
	"github.com/secretshows/secretshows-server/internal/logger"
)

// CatalogHandle wraps the catalog source with shutdown capability.
type CatalogHandle struct {
	*catalog.Source
}

// Shutdown implements do.Shutdownable.
func (h *CatalogHandle) Shutdown() error {
	return h.Close()
}

// ProvideCatalog provides the catalog, reloading it on change when it comes from a file.
func ProvideCatalog(i do.Injector) (*CatalogHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	m := do.MustInvoke[*MetricsHandle](i)

	src, err := catalog.NewSource(log, cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}

	src.OnReload(func(*catalog.Catalog) { m.Collector.RecordCatalogReload(true) })
	src.OnReloadError(func(error) { m.Collector.RecordCatalogReload(false) })

	if cfg.Catalog.Watch && cfg.Catalog.Path != "" {
		if err := src.Watch(catalogSettleDelay); err != nil {
			log.Warn("Catalog file watch unavailable, changes need a restart", "error", err)
		} else {
			log.Info("Watching catalog file", "path", cfg.Catalog.Path)
		}
	}

	return &CatalogHandle{Source: src}, nil
}
