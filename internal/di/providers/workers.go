package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/secretshows/secretshows-server/internal/config"
	"github.com/secretshows/secretshows-server/internal/logger"
	"github.com/secretshows/secretshows-server/internal/metrics"
	"github.com/secretshows/secretshows-server/internal/session"
)

// SessionManagerHandle wraps the session manager and its eviction job.
type SessionManagerHandle struct {
	*session.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SessionManagerHandle) Shutdown() error {
	h.cancel()
	return nil
}

// ProvideSessionManager provides the per-profile session stores and starts idle eviction.
func ProvideSessionManager(i do.Injector) (*SessionManagerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	m := do.MustInvoke[*MetricsHandle](i)

	manager := session.NewManager(session.ManagerConfig{
		Factory: storeHandle.Factory,
		IdleTTL: cfg.Session.IdleTTL,
		Logger:  log,
		StoreOptions: []session.Option{
			session.WithAuthDelay(cfg.Session.AuthDelay),
		},
		OnEvict: m.Collector.RecordEvictions,
	})

	metrics.RegisterGauge(m.Registry, "secretshows_sessions_active",
		"Browser profiles with a session store in memory.",
		func() float64 { return float64(manager.Len()) })

	ctx, cancel := context.WithCancel(context.Background())
	go manager.RunEviction(ctx, evictionInterval)

	log.Info("Session manager started", "idle_ttl", cfg.Session.IdleTTL)

	return &SessionManagerHandle{Manager: manager, cancel: cancel}, nil
}
