package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/panjf2000/ants/v2"

	"github.com/bringolino/bringolino/internal/domain/dectlock"
	"github.com/bringolino/bringolino/internal/domain/department"
	syncdomain "github.com/bringolino/bringolino/internal/domain/sync"
	"github.com/bringolino/bringolino/internal/domain/task"
	"github.com/bringolino/bringolino/internal/platform/logging"
	"github.com/bringolino/bringolino/internal/platform/resilience"
)

const (
	defaultProbeTimeout    = 5 * time.Second
	defaultMonitorInterval = 2 * time.Second
	defaultMaxAttempts     = 8
	drainWorkerCount       = 4
)

// StoreProber answers whether the remote store is reachable right now.
type StoreProber interface {
	Probe(ctx context.Context) error
}

// ProbeFunc adapts a function to StoreProber.
type ProbeFunc func(ctx context.Context) error

func (f ProbeFunc) Probe(ctx context.Context) error { return f(ctx) }

// Notifier delivers change payloads for a named channel. Subscribe returns
// the handler's unsubscribe function.
type Notifier interface {
	Subscribe(channel string, fn func(payload string)) (func(), error)
}

// SyncStatus is the externally visible state of the sync core.
type SyncStatus struct {
	Connected     bool
	Initialized   bool
	PendingWrites int
	DeadLetters   int
	LastProbeAt   time.Time
}

type SyncServiceConfig struct {
	ProbeTimeout    time.Duration
	MonitorInterval time.Duration
	MaxAttempts     int
	Backoff         resilience.Backoff
	CircuitBreaker  resilience.CircuitBreakerConfig
}

// SyncService owns connectivity state and the offline write buffer. Writes
// that cannot reach the store are queued in memory and replayed when the
// monitor observes connectivity again; the caller only ever learns "synced
// remotely or not", never an error.
type SyncService struct {
	deptRepo department.Repository
	prober   StoreProber
	notifier Notifier
	logger   *logging.Logger

	probeTimeout    time.Duration
	monitorInterval time.Duration
	maxAttempts     int
	backoff         resilience.Backoff
	breaker         *resilience.CircuitBreaker
	breakerEnabled  bool

	now func() time.Time

	mu          sync.Mutex
	initialized bool
	connected   bool
	lastProbeAt time.Time
	queue       []syncdomain.QueueEntry
	deadLetters []syncdomain.DeadLetter
}

func NewSyncService(deptRepo department.Repository, prober StoreProber, notifier Notifier, logger *logging.Logger, cfg SyncServiceConfig) *SyncService {
	if logger == nil {
		logger = logging.NewNop()
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = defaultProbeTimeout
	}
	if cfg.MonitorInterval <= 0 {
		cfg.MonitorInterval = defaultMonitorInterval
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.Backoff.Base <= 0 {
		cfg.Backoff = resilience.DefaultBackoff()
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &SyncService{
		deptRepo:        deptRepo,
		prober:          prober,
		notifier:        notifier,
		logger:          logger,
		probeTimeout:    cfg.ProbeTimeout,
		monitorInterval: cfg.MonitorInterval,
		maxAttempts:     cfg.MaxAttempts,
		backoff:         cfg.Backoff,
		breaker:         resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		breakerEnabled:  breakerCfg.Enabled,
		now:             time.Now,
	}
}

// Initialize probes the store once and records the result. Calling it
// again is a no-op; the monitor keeps the state current afterwards.
func (s *SyncService) Initialize(ctx context.Context) bool {
	s.mu.Lock()
	if s.initialized {
		connected := s.connected
		s.mu.Unlock()
		return connected
	}
	s.mu.Unlock()

	connected := s.probe(ctx)

	s.mu.Lock()
	if !s.initialized {
		s.initialized = true
		s.connected = connected
		s.lastProbeAt = s.now()
	}
	connected = s.connected
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "sync initialized", "connected", connected)
	return connected
}

func (s *SyncService) probe(ctx context.Context) bool {
	if s.prober == nil {
		return false
	}

	probeCtx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()

	if err := s.prober.Probe(probeCtx); err != nil {
		s.logger.DebugContext(ctx, "store probe failed", "error", err)
		return false
	}
	return true
}

// IsConnected reports the last observed connectivity.
func (s *SyncService) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Status returns a snapshot of the sync core's state.
func (s *SyncService) Status() SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SyncStatus{
		Connected:     s.connected,
		Initialized:   s.initialized,
		PendingWrites: len(s.queue),
		DeadLetters:   len(s.deadLetters),
		LastProbeAt:   s.lastProbeAt,
	}
}

// SaveSnapshot persists the snapshot remotely, queueing it on any failure.
// The returned bool means "reached the store", not "saved": a queued write
// is safe and will be replayed. Points are recomputed before the write so
// a client can never store a score that disagrees with its completion sets.
func (s *SyncService) SaveSnapshot(ctx context.Context, snapshot department.Snapshot) bool {
	return s.writeSnapshot(ctx, snapshot, false)
}

// UpdateSnapshot is SaveSnapshot for subsequent syncs of an existing row.
func (s *SyncService) UpdateSnapshot(ctx context.Context, snapshot department.Snapshot) bool {
	return s.writeSnapshot(ctx, snapshot, true)
}

func (s *SyncService) writeSnapshot(ctx context.Context, snapshot department.Snapshot, isUpdate bool) bool {
	snapshot.Points = department.ComputePoints(snapshot, task.TemplatesFor(snapshot.Department))
	if snapshot.LastUpdate == 0 {
		snapshot.LastUpdate = s.now().UnixMilli()
	}

	if err := snapshot.Validate(); err != nil {
		s.logger.WarnContext(ctx, "dropping invalid snapshot", "error", err, "department", snapshot.Department)
		return false
	}

	if !s.IsConnected() {
		s.enqueue(snapshot, isUpdate)
		return false
	}

	// Connectivity is owned by the probe; a failed write only queues.
	// The circuit breaker covers a dead store between probes.
	if err := s.upsert(ctx, snapshot); err != nil {
		s.logger.WarnContext(ctx, "snapshot write failed, queueing",
			"department", snapshot.Department, "date", snapshot.Date, "error", err)
		s.enqueue(snapshot, isUpdate)
		return false
	}

	return true
}

func (s *SyncService) upsert(ctx context.Context, snapshot department.Snapshot) error {
	if s.breakerEnabled {
		if err := s.breaker.Allow(); err != nil {
			return fmt.Errorf("store temporarily unavailable: %w", err)
		}
	}

	if err := s.deptRepo.Upsert(ctx, snapshot); err != nil {
		s.breaker.RecordFailure()
		return err
	}
	s.breaker.RecordSuccess()
	return nil
}

func (s *SyncService) enqueue(snapshot department.Snapshot, isUpdate bool) {
	entry := syncdomain.QueueEntry{
		Table:      "department_data",
		Snapshot:   snapshot,
		IsUpdate:   isUpdate,
		EnqueuedAt: s.now(),
	}

	s.mu.Lock()
	s.queue = append(s.queue, entry)
	pending := len(s.queue)
	s.mu.Unlock()

	s.logger.Info("queued offline write", "department", snapshot.Department, "pending", pending)
}

// GetSnapshot reads one worker's snapshot for a department and day.
func (s *SyncService) GetSnapshot(ctx context.Context, dept, date, userID string) (department.Snapshot, bool, error) {
	dept = strings.TrimSpace(dept)
	if dept == "" {
		return department.Snapshot{}, false, fmt.Errorf("%w: department is required", ErrInvalidInput)
	}
	if date == "" {
		return department.Snapshot{}, false, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if userID == "" {
		return department.Snapshot{}, false, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	snapshot, ok, err := s.deptRepo.Get(ctx, dept, date, userID)
	if err != nil {
		return department.Snapshot{}, false, fmt.Errorf("get department snapshot: %w", err)
	}
	return snapshot, ok, nil
}

// ToggleTask flips one shift-plan task in the user's snapshot for the day
// and writes the result through. A missing snapshot starts empty. The
// returned bool carries SaveSnapshot's "reached the store" meaning.
func (s *SyncService) ToggleTask(ctx context.Context, dept, date, deviceID, userID string, taskID int) (department.Snapshot, bool, error) {
	snapshot, ok, err := s.GetSnapshot(ctx, dept, date, userID)
	if err != nil {
		return department.Snapshot{}, false, err
	}
	if !ok {
		snapshot = department.Snapshot{
			Department:          dept,
			Date:                date,
			CompletedTaskIDs:    map[int]struct{}{},
			DocumentationChecks: map[string]bool{},
			ApothekeChecks:      map[string]bool{},
			DeviceID:            deviceID,
			UserID:              userID,
		}
	}

	next := s.now().UnixMilli()
	if next <= snapshot.LastUpdate {
		// keep last_update strictly increasing so rapid toggles from the
		// same device are not discarded by the store's freshness guard
		next = snapshot.LastUpdate + 1
	}

	snapshot = snapshot.Toggle(taskID)
	snapshot.DeviceID = deviceID
	snapshot.LastUpdate = next

	synced := s.writeSnapshot(ctx, snapshot, ok)
	return snapshot, synced, nil
}

// RetryPendingWrites drains the queue once. The queue is snapshotted and
// cleared up front so writes racing in during the drain land in a fresh
// queue instead of being replayed twice. Entries are grouped per logical
// row and rows drain concurrently; within a row the enqueue order holds.
func (s *SyncService) RetryPendingWrites(ctx context.Context) {
	s.mu.Lock()
	if len(s.queue) == 0 {
		s.mu.Unlock()
		return
	}
	pending := s.queue
	s.queue = nil
	s.mu.Unlock()

	now := s.now()
	var due, deferred []syncdomain.QueueEntry
	for _, entry := range pending {
		if entry.NextAttemptAt.After(now) {
			deferred = append(deferred, entry)
			continue
		}
		due = append(due, entry)
	}
	if len(deferred) > 0 {
		s.requeue(deferred)
	}
	if len(due) == 0 {
		return
	}

	s.logger.InfoContext(ctx, "draining offline queue", "due", len(due), "deferred", len(deferred))

	groups := groupByRow(due)

	pool, err := ants.NewPool(drainWorkerCount)
	if err != nil {
		s.logger.ErrorContext(ctx, "create drain pool failed, draining inline", "error", err)
		for _, group := range groups {
			s.drainRow(ctx, group)
		}
		return
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, group := range groups {
		group := group
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			s.drainRow(ctx, group)
		}); err != nil {
			workers.Done()
			s.drainRow(ctx, group)
		}
	}
	workers.Wait()
}

// drainRow replays one row's entries in order. The first failure stops the
// row: later entries would only clobber the queue's ordering guarantees.
func (s *SyncService) drainRow(ctx context.Context, entries []syncdomain.QueueEntry) {
	for i, entry := range entries {
		if err := s.upsert(ctx, entry.Snapshot); err != nil {
			s.logger.WarnContext(ctx, "queued write replay failed",
				"department", entry.Snapshot.Department, "attempts", entry.Attempts+1, "error", err)
			s.retryOrDrop(entries[i:], err)
			return
		}
	}
}

// retryOrDrop re-queues failed entries with backoff, dead-lettering the
// head entry when its attempts are exhausted.
func (s *SyncService) retryOrDrop(entries []syncdomain.QueueEntry, cause error) {
	now := s.now()

	head := entries[0]
	head.Attempts++
	if head.Attempts >= s.maxAttempts {
		s.mu.Lock()
		s.deadLetters = append(s.deadLetters, syncdomain.DeadLetter{
			Entry:     head,
			Reason:    cause.Error(),
			DroppedAt: now,
		})
		s.mu.Unlock()
		s.logger.Error("dead-lettered queued write",
			"department", head.Snapshot.Department, "attempts", head.Attempts)
		if len(entries) > 1 {
			s.requeue(entries[1:])
		}
		return
	}
	head.NextAttemptAt = now.Add(s.backoff.Delay(head.Attempts))

	requeued := append([]syncdomain.QueueEntry{head}, entries[1:]...)
	s.requeue(requeued)
}

func (s *SyncService) requeue(entries []syncdomain.QueueEntry) {
	s.mu.Lock()
	s.queue = append(s.queue, entries...)
	s.mu.Unlock()
}

// DeadLetters returns the writes given up on, oldest first.
func (s *SyncService) DeadLetters() []syncdomain.DeadLetter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]syncdomain.DeadLetter(nil), s.deadLetters...)
}

// RunMonitor probes connectivity on a fixed cadence until ctx is
// cancelled. An offline-to-online edge triggers a queue drain.
func (s *SyncService) RunMonitor(ctx context.Context) error {
	ticker := time.NewTicker(s.monitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.CheckConnection(ctx)
		}
	}
}

// CheckConnection runs one probe cycle: refresh connectivity and drain the
// queue when the store just came back.
func (s *SyncService) CheckConnection(ctx context.Context) bool {
	connected := s.probe(ctx)

	s.mu.Lock()
	wasConnected := s.connected
	s.connected = connected
	s.lastProbeAt = s.now()
	hasPending := len(s.queue) > 0
	s.mu.Unlock()

	if connected && !wasConnected {
		s.logger.InfoContext(ctx, "store connectivity restored", "pending", hasPending)
	}
	if connected && hasPending {
		s.RetryPendingWrites(ctx)
	}

	return connected
}

// departmentRowPayload mirrors the row JSON raised by the department_data
// trigger.
type departmentRowPayload struct {
	Department          string          `json:"department"`
	Date                string          `json:"date"`
	CompletedTaskIDs    []int           `json:"completed_task_ids"`
	DocumentationChecks map[string]bool `json:"documentation_checks"`
	ApothekeChecks      map[string]bool `json:"apotheke_checks"`
	Points              int             `json:"points"`
	LastUpdate          int64           `json:"last_update"`
	DeviceID            string          `json:"device_id"`
	UserID              string          `json:"user_id"`
}

// dectLockRowPayload mirrors the row JSON raised by the dect_locks
// trigger. Deleted is set for unlock notifications.
type dectLockRowPayload struct {
	DECTCode string `json:"dect_code"`
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	LockTime int64  `json:"lock_time"`
	LockDate string `json:"lock_date"`
	Deleted  bool   `json:"deleted"`
}

// ListenDepartments invokes fn for every remote snapshot change. Without a
// notifier (store-less mode) it is a no-op returning a no-op unsubscribe.
func (s *SyncService) ListenDepartments(fn func(department.Snapshot)) (func(), error) {
	if s.notifier == nil || fn == nil {
		return func() {}, nil
	}

	return s.notifier.Subscribe("department_data_changed", func(payload string) {
		var row departmentRowPayload
		if err := sonic.UnmarshalString(payload, &row); err != nil {
			s.logger.Warn("discarding malformed department notification", "error", err)
			return
		}

		completed := make(map[int]struct{}, len(row.CompletedTaskIDs))
		for _, id := range row.CompletedTaskIDs {
			completed[id] = struct{}{}
		}
		fn(department.Snapshot{
			Department:          row.Department,
			Date:                row.Date,
			CompletedTaskIDs:    completed,
			DocumentationChecks: row.DocumentationChecks,
			ApothekeChecks:      row.ApothekeChecks,
			Points:              row.Points,
			LastUpdate:          row.LastUpdate,
			DeviceID:            row.DeviceID,
			UserID:              row.UserID,
		})
	})
}

// ListenLocks invokes fn for every remote lock change; deleted reports an
// unlock.
func (s *SyncService) ListenLocks(fn func(lock dectlock.Lock, deleted bool)) (func(), error) {
	if s.notifier == nil || fn == nil {
		return func() {}, nil
	}

	return s.notifier.Subscribe("dect_locks_changed", func(payload string) {
		var row dectLockRowPayload
		if err := sonic.UnmarshalString(payload, &row); err != nil {
			s.logger.Warn("discarding malformed lock notification", "error", err)
			return
		}
		fn(dectlock.Lock{
			DECTCode: row.DECTCode,
			UserID:   row.UserID,
			UserName: row.UserName,
			LockTime: row.LockTime,
			LockDate: row.LockDate,
		}, row.Deleted)
	})
}

type rowKey struct {
	department string
	date       string
	userID     string
}

// groupByRow splits entries per logical row, preserving enqueue order both
// within each group and across group heads.
func groupByRow(entries []syncdomain.QueueEntry) [][]syncdomain.QueueEntry {
	index := make(map[rowKey]int, len(entries))
	groups := make([][]syncdomain.QueueEntry, 0, len(entries))

	for _, entry := range entries {
		key := rowKey{
			department: entry.Snapshot.Department,
			date:       entry.Snapshot.Date,
			userID:     entry.Snapshot.UserID,
		}
		if at, ok := index[key]; ok {
			groups[at] = append(groups[at], entry)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, []syncdomain.QueueEntry{entry})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i][0].EnqueuedAt.Before(groups[j][0].EnqueuedAt)
	})

	return groups
}
