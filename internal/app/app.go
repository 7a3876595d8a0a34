package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/bringolino/bringolino/internal/config"
	"github.com/bringolino/bringolino/internal/domain/dectlock"
	"github.com/bringolino/bringolino/internal/domain/department"
	"github.com/bringolino/bringolino/internal/domain/task"
	"github.com/bringolino/bringolino/internal/infrastructure/realtime"
	"github.com/bringolino/bringolino/internal/infrastructure/repository/memory"
	"github.com/bringolino/bringolino/internal/infrastructure/repository/postgres"
	"github.com/bringolino/bringolino/internal/interfaces/httpapi"
	"github.com/bringolino/bringolino/internal/platform/cache"
	idgen "github.com/bringolino/bringolino/internal/platform/id"
	"github.com/bringolino/bringolino/internal/platform/identity"
	"github.com/bringolino/bringolino/internal/platform/logging"
	"github.com/bringolino/bringolino/internal/platform/resilience"
	"github.com/bringolino/bringolino/internal/usecase"
)

// Application bundles the wired services plus the handles main needs to
// run and tear the process down.
type Application struct {
	Config   config.Config
	Logger   *logging.Logger
	Identity identity.Identity

	Server      *http.Server
	SyncService *usecase.SyncService
	LockService *usecase.LockService

	db           *sqlx.DB
	hub          *realtime.Hub
	unsubscribes []func()
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Application, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	ids := idgen.NewRandomGenerator()

	identityPath := cfg.IdentityPath
	if identityPath == "" {
		identityPath = identity.DefaultPath()
	}
	ident, err := identity.Load(identityPath, ids)
	if err != nil {
		return nil, fmt.Errorf("load client identity: %w", err)
	}
	logger.Info("client identity loaded", "device_id", ident.DeviceID, "user_id", ident.UserID)

	a := &Application{
		Config:   cfg,
		Logger:   logger,
		Identity: ident,
	}

	var (
		taskRepo task.Repository
		deptRepo department.Repository
		lockRepo dectlock.Repository
		prober   usecase.StoreProber
	)

	if cfg.DBURL != "" {
		db, err := openDB(cfg)
		if err != nil {
			return nil, err
		}
		a.db = db

		taskRepo = postgres.NewTaskRepository(db, ids)
		deptRepo = postgres.NewDepartmentRepository(db)
		lockRepo = postgres.NewDECTLockRepository(db)
		prober = usecase.ProbeFunc(db.PingContext)

		// Seeding needs the store; an unreachable database at boot is not
		// fatal, the sync monitor takes over from there.
		if err := postgres.BootstrapSeed(ctx, db); err != nil {
			logger.Warn("bootstrap seed skipped", "error", err)
		}

		if cfg.RealtimeEnabled {
			hub, err := realtime.NewHub(cfg.DBURL, logger)
			if err != nil {
				return nil, fmt.Errorf("build realtime hub: %w", err)
			}
			a.hub = hub
		}
	} else {
		logger.Info("no DB_URL configured, using in-memory repositories")
		taskRepo = memory.NewTaskRepository(memory.SeedTasks(), ids)
		deptRepo = memory.NewDepartmentRepository()
		lockRepo = memory.NewDECTLockRepository()
		prober = usecase.ProbeFunc(func(context.Context) error { return nil })
	}

	var notifier usecase.Notifier
	if a.hub != nil {
		notifier = a.hub
	}

	syncSvc := usecase.NewSyncService(deptRepo, prober, notifier, logger, usecase.SyncServiceConfig{
		ProbeTimeout:    cfg.SyncProbeTimeout,
		MonitorInterval: cfg.SyncMonitorInterval,
		MaxAttempts:     cfg.SyncMaxAttempts,
		Backoff: resilience.Backoff{
			Base: cfg.SyncBackoffBase,
			Cap:  cfg.SyncBackoffCap,
		},
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.StoreCircuitEnabled,
			FailureThreshold: cfg.StoreCircuitFailureCount,
			OpenTimeout:      cfg.StoreCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.StoreCircuitHalfOpenMaxReq,
		},
	})
	a.SyncService = syncSvc

	lockSvc := usecase.NewLockService(lockRepo, logger)
	a.LockService = lockSvc
	taskSvc := usecase.NewTaskService(taskRepo)

	cacheTTL := cfg.CacheTTL
	if !cfg.CacheEnabled {
		cacheTTL = -1
	}
	dashboardSvc := usecase.NewDashboardService(deptRepo, lockRepo, cache.NewStore(cacheTTL))

	syncSvc.Initialize(ctx)
	if err := lockSvc.Refresh(ctx); err != nil {
		logger.Warn("initial lock refresh failed", "error", err)
	}

	if notifier != nil {
		unsubLocks, err := syncSvc.ListenLocks(lockSvc.ApplyChange)
		if err != nil {
			return nil, fmt.Errorf("subscribe lock changes: %w", err)
		}
		a.unsubscribes = append(a.unsubscribes, unsubLocks)

		unsubDepts, err := syncSvc.ListenDepartments(func(s department.Snapshot) {
			dashboardSvc.Invalidate(ctx, s.Date)
		})
		if err != nil {
			return nil, fmt.Errorf("subscribe department changes: %w", err)
		}
		a.unsubscribes = append(a.unsubscribes, unsubDepts)
	}

	handler := httpapi.NewHandler(syncSvc, lockSvc, taskSvc, dashboardSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if a.Server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return a, nil
}

// RunBackground starts the sync monitor and, when configured, the
// realtime hub. Both exit when ctx is cancelled.
func (a *Application) RunBackground(ctx context.Context) {
	go func() {
		if err := a.SyncService.RunMonitor(ctx); err != nil && ctx.Err() == nil {
			a.Logger.Error("sync monitor stopped", "error", err)
		}
	}()

	if a.hub != nil {
		go func() {
			if err := a.hub.Run(ctx); err != nil && ctx.Err() == nil {
				a.Logger.Error("realtime hub stopped", "error", err)
			}
		}()
	}
}

// Close releases subscriptions and connections. Safe to call once after
// the HTTP server has shut down.
func (a *Application) Close() error {
	for _, unsub := range a.unsubscribes {
		unsub()
	}
	a.unsubscribes = nil

	if a.hub != nil {
		if err := a.hub.Close(); err != nil {
			a.Logger.Warn("close realtime hub", "error", err)
		}
	}
	if a.db != nil {
		return a.db.Close()
	}

	return nil
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinaryResult)

	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}
