package waggle

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ravenhall/waggle/internal/waggle/config"
	"github.com/ravenhall/waggle/internal/waggle/service/daemon"
	"github.com/ravenhall/waggle/internal/waggle/service/hooks"
	"github.com/ravenhall/waggle/internal/waggle/service/hooks/builtin"
	"github.com/ravenhall/waggle/internal/waggle/service/learning"
	"github.com/ravenhall/waggle/internal/waggle/service/learning/sqlite"
	"github.com/ravenhall/waggle/internal/waggle/service/swarm"
	"github.com/ravenhall/waggle/pkg/logger"
)

type daemonServer struct {
	cfg *config.Config

	patterns     learning.Store // nil when no learning store configured
	swarmModule  *swarm.Module
	daemonModule *daemon.Module
	hooksModule  *hooks.Module

	engine  *gin.Engine
	watcher *PolicyWatcher
}

type preparedDaemonServer struct {
	*daemonServer
}

func createDaemonServer(cfg *config.Config) (*daemonServer, error) {
	logger.SetLevel(cfg.LogLevel)

	var patterns learning.Store
	if cfg.LearningDBPath != "" {
		store, err := sqlite.Open(cfg.LearningDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open learning store: %w", err)
		}
		patterns = store
		logger.Info("[Waggled] learning store at %s", cfg.LearningDBPath)
	}

	swarmCfg := &swarm.Config{
		AgentID:    cfg.AgentID,
		AgentName:  cfg.AgentName,
		StoreType:  cfg.StoreType,
		BoltDBPath: cfg.BoltDBPath,
		QuorumRule: cfg.QuorumRule,
	}
	swarmModule, err := swarmCfg.Complete().New(context.Background(), swarm.Dependencies{
		Patterns: patterns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Swarm module: %w", err)
	}
	logger.Info("[Waggled] Swarm module initialized successfully")

	daemonCfg := &daemon.Config{
		MaxWorkers:            cfg.MaxWorkers,
		Admission:             cfg.Admission,
		QueueSize:             cfg.QueueSize,
		MetricsInterval:       cfg.MetricsInterval,
		ConsolidationInterval: cfg.ConsolidationInterval,
	}
	daemonModule, err := daemonCfg.Complete().New(context.Background(), daemon.Dependencies{
		Bus:      swarmModule.Bus,
		AgentID:  cfg.AgentID,
		Patterns: patterns,
	})
	if err != nil {
		swarmModule.Close()
		return nil, fmt.Errorf("failed to create Daemon module: %w", err)
	}
	logger.Info("[Waggled] Daemon module initialized successfully")

	hooksModule := (&hooks.Config{HandlerTimeout: cfg.HandlerTimeout}).Complete().New()
	err = builtin.RegisterAll(hooksModule.Registry, builtin.Deps{
		Bus:        swarmModule.Bus,
		AgentID:    cfg.AgentID,
		Patterns:   patterns,
		Dispatcher: daemonModule.Dispatcher,
	})
	if err != nil {
		daemonModule.Close()
		swarmModule.Close()
		return nil, err
	}
	policy, err := hooks.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		logger.Warn("[Waggled] ignoring unreadable policy file: %v", err)
	} else {
		policy.Apply(hooksModule.Registry)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	return &daemonServer{
		cfg:          cfg,
		patterns:     patterns,
		swarmModule:  swarmModule,
		daemonModule: daemonModule,
		hooksModule:  hooksModule,
		engine:       engine,
	}, nil
}

func (s *daemonServer) PrepareRun() preparedDaemonServer {
	initRouter(s.engine, &routerDeps{
		agentID:    s.cfg.AgentID,
		swarm:      s.swarmModule,
		dispatcher: s.daemonModule.Dispatcher,
		registry:   s.hooksModule.Registry,
	})

	if s.cfg.PolicyFile != "" {
		watcher, err := NewPolicyWatcher(s.cfg.PolicyFile, s.hooksModule.Registry)
		if err != nil {
			logger.Warn("[Waggled] policy watcher disabled: %v", err)
		} else {
			s.watcher = watcher
		}
	}
	return preparedDaemonServer{s}
}

func (s preparedDaemonServer) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if s.watcher != nil {
		go s.watcher.Run(ctx)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.BindAddress, s.cfg.BindPort),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("[Waggled] status server listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.shutdown()
		return err
	case <-ctx.Done():
	}

	logger.Info("[Waggled] shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("[Waggled] status server shutdown: %v", err)
	}
	s.shutdown()
	return nil
}

func (s *daemonServer) shutdown() {
	if s.watcher != nil {
		s.watcher.Close()
	}
	if s.daemonModule != nil {
		s.daemonModule.Close()
	}
	if s.swarmModule != nil {
		s.swarmModule.Close()
	}
	if s.patterns != nil {
		s.patterns.Close()
	}
}
