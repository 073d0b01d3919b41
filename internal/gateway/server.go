// Package gateway composes the Tenant Registry, LLM Provider Abstraction,
// Dispatcher, and the three domain agents behind a single Gin-based HTTP
// surface, following the same Config → Complete → New module-composition
// pattern used throughout this codebase.
package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kiosk404/hivegate/internal/gateway/agent/fallback"
	"github.com/kiosk404/hivegate/internal/gateway/agent/knowledge"
	"github.com/kiosk404/hivegate/internal/gateway/agent/postgres"
	"github.com/kiosk404/hivegate/internal/gateway/config"
	"github.com/kiosk404/hivegate/internal/gateway/dispatch"
	"github.com/kiosk404/hivegate/internal/gateway/llm"
	"github.com/kiosk404/hivegate/internal/gateway/llm/cache"
	"github.com/kiosk404/hivegate/internal/gateway/llm/entity"
	"github.com/kiosk404/hivegate/internal/gateway/metrics"
	"github.com/kiosk404/hivegate/internal/gateway/store/boltstore"
	"github.com/kiosk404/hivegate/internal/gateway/tenant"
	"github.com/kiosk404/hivegate/internal/gateway/tracing"
	"github.com/kiosk404/hivegate/internal/pkg/logger"
	genericapiserver "github.com/kiosk404/hivegate/internal/pkg/server"
	"github.com/kiosk404/hivegate/internal/pkg/shutdown"
	"github.com/kiosk404/hivegate/internal/pkg/shutdown/posixsignal"
)

// Version is overridden at build time via -ldflags.
var Version = "dev"

type apiServer struct {
	gs               *shutdown.GracefulShutdown
	genericAPIServer *genericapiserver.GenericAPIServer
	registry         *tenant.Registry
	cfg              *config.Config
	tracingProvider  *tracing.Provider
	durableStore     *boltstore.Store
}

type preparedAPIServer struct {
	*apiServer
}

func createAPIServer(cfg *config.Config) (*apiServer, error) {
	gs := shutdown.New()
	gs.AddShutdownManager(posixsignal.NewPosixSignalManager())

	genericConfig := genericapiserver.NewConfig()
	if err := cfg.Options.ApplyTo(genericConfig); err != nil {
		return nil, err
	}
	genericServer, err := genericConfig.Complete().New()
	if err != nil {
		return nil, err
	}

	registry := tenant.NewRegistry()
	if err := registry.LoadFile(cfg.TenantOptions.ConfigFile); err != nil {
		return nil, fmt.Errorf("load tenant config %q: %w", cfg.TenantOptions.ConfigFile, err)
	}
	logger.Infof("tenant registry loaded from %s", cfg.TenantOptions.ConfigFile)

	tracingProvider, err := tracing.Setup(tracing.Config{
		Enabled:        cfg.TracingOptions.Enabled,
		ServiceVersion: Version,
		OTLPEndpoint:   cfg.TracingOptions.OTLPEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("set up tracing: %w", err)
	}

	durableStore, err := boltstore.Open(cfg.StoreOptions.BoltPath)
	if err != nil {
		return nil, fmt.Errorf("open durable cache %q: %w", cfg.StoreOptions.BoltPath, err)
	}

	return &apiServer{
		gs:               gs,
		genericAPIServer: genericServer,
		registry:         registry,
		cfg:              cfg,
		tracingProvider:  tracingProvider,
		durableStore:     durableStore,
	}, nil
}

func (s *apiServer) PrepareRun() preparedAPIServer {
	policy := s.registry.Policy()
	retryCount := policy.RetryCount
	if retryCount <= 0 {
		retryCount = s.cfg.TenantOptions.RetryCount
	}
	manager := llm.NewManager(retryCount)

	routing := cache.NewRoutingCache(10*time.Minute, nil)
	routeRef := entity.ModelRef{Provider: "openai", Model: "gpt-4o-mini"}
	classifier := dispatch.NewClassifier(manager, routing, routeRef)

	knowledgeClient := knowledge.NewClientWithStore(s.cfg.KnowledgeBaseOptions.BaseURL, s.durableStore)

	dispatcher := dispatch.NewDispatcher(
		classifier,
		postgres.NewWithStore(s.registry, manager, s.durableStore),
		knowledge.New(manager, knowledgeClient),
		fallback.New(manager),
	)

	metricsRegistry := metrics.NewRegistry()
	initRouter(s.genericAPIServer.Engine, newRouterDeps(s.registry, dispatcher, s.cfg.Options, Version, metricsRegistry))

	watcher := s.watchTenantConfig()

	s.gs.AddShutdownCallback(shutdown.Func(func(string) error {
		if watcher != nil {
			_ = watcher.Close()
		}
		if err := s.tracingProvider.Shutdown(context.Background()); err != nil {
			logger.Warnf("tracing shutdown: %v", err)
		}
		if err := s.durableStore.Close(); err != nil {
			logger.Warnf("durable cache shutdown: %v", err)
		}
		s.genericAPIServer.Close()
		return nil
	}))

	return preparedAPIServer{s}
}

// watchTenantConfig watches the tenant document for writes and triggers a
// hot reload (§4.1 generation swap), matching the spec's fsnotify-driven
// reload path. A watch failure is logged and treated as non-fatal: the
// registry still serves its already-loaded generation, and operators can
// fall back to POST /admin/reload.
func (s *apiServer) watchTenantConfig() *fsnotify.Watcher {
	path := s.cfg.TenantOptions.ConfigFile
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warnf("tenant config watcher unavailable: %v", err)
		return nil
	}
	if err := watcher.Add(path); err != nil {
		logger.Warnf("watch tenant config %s: %v", path, err)
		_ = watcher.Close()
		return nil
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if err := s.registry.ReloadFile(path); err != nil {
					logger.Warnf("reload tenant config %s: %v", path, err)
					continue
				}
				logger.Infof("tenant config reloaded from %s", path)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warnf("tenant config watcher error: %v", err)
			}
		}
	}()

	return watcher
}

func (s preparedAPIServer) Run() error {
	if err := s.gs.Start(); err != nil {
		return fmt.Errorf("start shutdown manager: %w", err)
	}
	return s.genericAPIServer.Run()
}
