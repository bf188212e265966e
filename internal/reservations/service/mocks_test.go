package service

import (
	"context"
	"sync"
	"time"

	reservationerrors "roomtime/internal/reservations/errors"
	"roomtime/pkg/config"
	mongotx "roomtime/pkg/db/mongo"
	"roomtime/pkg/logger"
	"roomtime/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type mockReservationRepository struct {
	CreateFunc                 func(ctx context.Context, reservation *model.Reservation) error
	FindByIDFunc               func(ctx context.Context, id string) (*model.Reservation, error)
	FindOverlappingFunc        func(ctx context.Context, resourceID string, interval model.Interval, states []model.Status) ([]*model.Reservation, error)
	UpdateStateFunc            func(ctx context.Context, id string, expected, next model.Status) error
	FindByOwnerFunc            func(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Reservation, error)
	CountByOwnerFunc           func(ctx context.Context, ownerID string) (int64, error)
	FindByResourceAndRangeFunc func(ctx context.Context, resourceID string, interval model.Interval) ([]*model.Reservation, error)
	FindExpiredPendingFunc     func(ctx context.Context, before time.Time, limit int) ([]*model.Reservation, error)
	ExecuteTransactionFunc     func(ctx context.Context, fn mongotx.TransactionFunc) error
}

func (m *mockReservationRepository) Create(ctx context.Context, reservation *model.Reservation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, reservation)
	}
	reservation.ID = "665f1c2b8a9d4e00aabbccdd"
	return nil
}

func (m *mockReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, reservationerrors.ErrNotFound
}

func (m *mockReservationRepository) FindOverlapping(ctx context.Context, resourceID string, interval model.Interval, states []model.Status) ([]*model.Reservation, error) {
	if m.FindOverlappingFunc != nil {
		return m.FindOverlappingFunc(ctx, resourceID, interval, states)
	}
	return nil, nil
}

func (m *mockReservationRepository) UpdateState(ctx context.Context, id string, expected, next model.Status) error {
	if m.UpdateStateFunc != nil {
		return m.UpdateStateFunc(ctx, id, expected, next)
	}
	return nil
}

func (m *mockReservationRepository) FindByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Reservation, error) {
	if m.FindByOwnerFunc != nil {
		return m.FindByOwnerFunc(ctx, ownerID, limit, offset)
	}
	return nil, nil
}

func (m *mockReservationRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	if m.CountByOwnerFunc != nil {
		return m.CountByOwnerFunc(ctx, ownerID)
	}
	return 0, nil
}

func (m *mockReservationRepository) FindByResourceAndRange(ctx context.Context, resourceID string, interval model.Interval) ([]*model.Reservation, error) {
	if m.FindByResourceAndRangeFunc != nil {
		return m.FindByResourceAndRangeFunc(ctx, resourceID, interval)
	}
	return nil, nil
}

func (m *mockReservationRepository) FindExpiredPending(ctx context.Context, before time.Time, limit int) ([]*model.Reservation, error) {
	if m.FindExpiredPendingFunc != nil {
		return m.FindExpiredPendingFunc(ctx, before, limit)
	}
	return nil, nil
}

func (m *mockReservationRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	if m.ExecuteTransactionFunc != nil {
		return m.ExecuteTransactionFunc(ctx, fn)
	}
	var sessCtx mongo.SessionContext
	return fn(sessCtx)
}

// mockLockRepository serializes like the real advisory lock: at most one
// holder per resource at a time.
type mockLockRepository struct {
	TryAcquireFunc func(ctx context.Context, resourceID string) (*model.ResourceLock, error)
	ReleaseFunc    func(ctx context.Context, lockID string) error

	mu   sync.Mutex
	held map[string]bool
}

func newMockLockRepository() *mockLockRepository {
	return &mockLockRepository{held: make(map[string]bool)}
}

func (m *mockLockRepository) TryAcquire(ctx context.Context, resourceID string) (*model.ResourceLock, error) {
	if m.TryAcquireFunc != nil {
		return m.TryAcquireFunc(ctx, resourceID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[resourceID] {
		return nil, reservationerrors.ErrLockHeld
	}
	m.held[resourceID] = true
	return &model.ResourceLock{ID: "resource_lock_" + resourceID, ResourceID: resourceID}, nil
}

func (m *mockLockRepository) Release(ctx context.Context, lockID string) error {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, lockID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for resourceID, held := range m.held {
		if held && "resource_lock_"+resourceID == lockID {
			delete(m.held, resourceID)
		}
	}
	return nil
}

type mockResourceDirectory struct {
	ExistsAndActiveFunc func(ctx context.Context, resourceID string) (bool, error)
}

func (m *mockResourceDirectory) ExistsAndActive(ctx context.Context, resourceID string) (bool, error) {
	if m.ExistsAndActiveFunc != nil {
		return m.ExistsAndActiveFunc(ctx, resourceID)
	}
	return true, nil
}

type recordedEvent struct {
	Actor    string
	Action   string
	EntityID string
	Meta     map[string]any
}

type mockAuditSink struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (m *mockAuditSink) Record(ctx context.Context, actor, action, entityID string, meta map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, recordedEvent{Actor: actor, Action: action, EntityID: entityID, Meta: meta})
}

func (m *mockAuditSink) Events() []recordedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]recordedEvent, len(m.events))
	copy(out, m.events)
	return out
}

type mockInvalidator struct {
	InvalidateFunc func(ctx context.Context, resourceID string, day time.Time) error

	mu    sync.Mutex
	calls int
}

func (m *mockInvalidator) Invalidate(ctx context.Context, resourceID string, day time.Time) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.InvalidateFunc != nil {
		return m.InvalidateFunc(ctx, resourceID, day)
	}
	return nil
}

func (m *mockInvalidator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   logger.ERROR,
			Format:  logger.TEXT,
			Service: "reservations-test",
		}),
		AdmissionPolicy:    config.PolicyHold,
		HoldTTL:            15 * time.Minute,
		ReclaimInterval:    time.Minute,
		ReclaimBatch:       100,
		LockTTL:            30 * time.Second,
		LockAcquireTimeout: 200 * time.Millisecond,
		LockRetryInterval:  10 * time.Millisecond,
	}
}
