package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	reservationerrors "roomtime/internal/reservations/errors"
	"roomtime/internal/reservations/validator"
	"roomtime/pkg/config"
	mongotx "roomtime/pkg/db/mongo"
	apperrors "roomtime/pkg/errors"
	"roomtime/pkg/model"
)

const testResourceID = "665f1c2b8a9d4e0012345678"

func newTestService(
	repo *mockReservationRepository,
	locks *mockLockRepository,
	directory *mockResourceDirectory,
	sink *mockAuditSink,
	invalidator *mockInvalidator,
	cfg *config.Config,
) ReservationService {
	return NewReservationService(
		repo,
		locks,
		validator.NewReservationValidator(cfg.Log),
		directory,
		sink,
		invalidator,
		cfg,
	)
}

func validRequest() *model.BookingRequest {
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	return &model.BookingRequest{
		ResourceID: testResourceID,
		OwnerID:    "owner-1",
		StartsAt:   start,
		EndsAt:     start.Add(time.Hour),
	}
}

func TestRequestBooking_Admits(t *testing.T) {
	repo := &mockReservationRepository{}
	sink := &mockAuditSink{}
	invalidator := &mockInvalidator{}
	svc := newTestService(repo, newMockLockRepository(), &mockResourceDirectory{}, sink, invalidator, testConfig())

	reservation, err := svc.RequestBooking(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("RequestBooking() error = %v", err)
	}

	if reservation.ID == "" {
		t.Error("expected reservation ID to be assigned")
	}
	if reservation.Status != model.StatusPending {
		t.Errorf("status = %q, want %q under hold policy", reservation.Status, model.StatusPending)
	}

	events := sink.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 audit event, got %d", len(events))
	}
	if events[0].Action != model.AuditActionAdmitted {
		t.Errorf("audit action = %q, want %q", events[0].Action, model.AuditActionAdmitted)
	}
	if invalidator.Calls() == 0 {
		t.Error("expected availability cache invalidation")
	}
}

func TestRequestBooking_ConfirmPolicy(t *testing.T) {
	cfg := testConfig()
	cfg.AdmissionPolicy = config.PolicyConfirm
	svc := newTestService(&mockReservationRepository{}, newMockLockRepository(), &mockResourceDirectory{}, &mockAuditSink{}, &mockInvalidator{}, cfg)

	reservation, err := svc.RequestBooking(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("RequestBooking() error = %v", err)
	}
	if reservation.Status != model.StatusConfirmed {
		t.Errorf("status = %q, want %q under confirm policy", reservation.Status, model.StatusConfirmed)
	}
}

func TestRequestBooking_InvalidInterval(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(req *model.BookingRequest)
	}{
		{
			name:   "zero length",
			mutate: func(req *model.BookingRequest) { req.EndsAt = req.StartsAt },
		},
		{
			name:   "inverted",
			mutate: func(req *model.BookingRequest) { req.StartsAt, req.EndsAt = req.EndsAt, req.StartsAt },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			overlapChecked := false
			repo := &mockReservationRepository{
				FindOverlappingFunc: func(ctx context.Context, resourceID string, interval model.Interval, states []model.Status) ([]*model.Reservation, error) {
					overlapChecked = true
					return nil, nil
				},
			}
			svc := newTestService(repo, newMockLockRepository(), &mockResourceDirectory{}, &mockAuditSink{}, &mockInvalidator{}, testConfig())

			req := validRequest()
			tt.mutate(req)

			_, err := svc.RequestBooking(context.Background(), req)
			if !apperrors.IsCode(err, apperrors.CodeInvalidInterval) {
				t.Fatalf("error code = %v, want %s", err, apperrors.CodeInvalidInterval)
			}
			// A malformed interval is rejected before any overlap query.
			if overlapChecked {
				t.Error("overlap check ran for an invalid interval")
			}
		})
	}
}

func TestRequestBooking_ValidationFailure(t *testing.T) {
	svc := newTestService(&mockReservationRepository{}, newMockLockRepository(), &mockResourceDirectory{}, &mockAuditSink{}, &mockInvalidator{}, testConfig())

	req := validRequest()
	req.OwnerID = "   "

	_, err := svc.RequestBooking(context.Background(), req)
	if !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Fatalf("error code = %v, want %s", err, apperrors.CodeValidation)
	}
}

func TestRequestBooking_ResourceUnavailable(t *testing.T) {
	directory := &mockResourceDirectory{
		ExistsAndActiveFunc: func(ctx context.Context, resourceID string) (bool, error) {
			return false, nil
		},
	}
	svc := newTestService(&mockReservationRepository{}, newMockLockRepository(), directory, &mockAuditSink{}, &mockInvalidator{}, testConfig())

	_, err := svc.RequestBooking(context.Background(), validRequest())
	if !apperrors.IsCode(err, apperrors.CodeResourceUnavailable) {
		t.Fatalf("error code = %v, want %s", err, apperrors.CodeResourceUnavailable)
	}
}

func TestRequestBooking_Conflict(t *testing.T) {
	existing := validRequest()
	repo := &mockReservationRepository{
		FindOverlappingFunc: func(ctx context.Context, resourceID string, interval model.Interval, states []model.Status) ([]*model.Reservation, error) {
			return []*model.Reservation{{
				ID:         "665f1c2b8a9d4e00ffffffff",
				ResourceID: resourceID,
				OwnerID:    existing.OwnerID,
				StartsAt:   existing.StartsAt,
				EndsAt:     existing.EndsAt,
				Status:     model.StatusConfirmed,
			}}, nil
		},
	}
	sink := &mockAuditSink{}
	svc := newTestService(repo, newMockLockRepository(), &mockResourceDirectory{}, sink, &mockInvalidator{}, testConfig())

	req := validRequest()
	req.StartsAt = existing.StartsAt.Add(30 * time.Minute)
	req.EndsAt = existing.EndsAt.Add(30 * time.Minute)

	_, err := svc.RequestBooking(context.Background(), req)
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Fatalf("error code = %v, want %s", err, apperrors.CodeConflict)
	}
	if len(sink.Events()) != 0 {
		t.Error("rejected admission must not emit audit events")
	}
}

func TestRequestBooking_AdjacentDoesNotConflict(t *testing.T) {
	existing := validRequest()
	repo := &mockReservationRepository{
		// The store query is inclusive enough that the service-side check
		// decides; return the neighbour and let Conflicts() rule it out.
		FindOverlappingFunc: func(ctx context.Context, resourceID string, interval model.Interval, states []model.Status) ([]*model.Reservation, error) {
			return nil, nil
		},
	}
	svc := newTestService(repo, newMockLockRepository(), &mockResourceDirectory{}, &mockAuditSink{}, &mockInvalidator{}, testConfig())

	req := validRequest()
	req.StartsAt = existing.EndsAt
	req.EndsAt = existing.EndsAt.Add(time.Hour)

	if _, err := svc.RequestBooking(context.Background(), req); err != nil {
		t.Fatalf("RequestBooking() error = %v, adjacent interval must be admitted", err)
	}
}

func TestRequestBooking_BusyTimeout(t *testing.T) {
	locks := newMockLockRepository()
	locks.TryAcquireFunc = func(ctx context.Context, resourceID string) (*model.ResourceLock, error) {
		return nil, reservationerrors.ErrLockHeld
	}
	svc := newTestService(&mockReservationRepository{}, locks, &mockResourceDirectory{}, &mockAuditSink{}, &mockInvalidator{}, testConfig())

	start := time.Now()
	_, err := svc.RequestBooking(context.Background(), validRequest())
	elapsed := time.Since(start)

	if !apperrors.IsCode(err, apperrors.CodeBusyTimeout) {
		t.Fatalf("error code = %v, want %s", err, apperrors.CodeBusyTimeout)
	}
	if elapsed > time.Second {
		t.Errorf("lock acquisition blocked for %s, want bounded wait", elapsed)
	}
}

func TestRequestBooking_LockReleasedAfterAdmission(t *testing.T) {
	locks := newMockLockRepository()
	released := make(chan string, 1)
	locks.ReleaseFunc = func(ctx context.Context, lockID string) error {
		released <- lockID
		return nil
	}
	svc := newTestService(&mockReservationRepository{}, locks, &mockResourceDirectory{}, &mockAuditSink{}, &mockInvalidator{}, testConfig())

	if _, err := svc.RequestBooking(context.Background(), validRequest()); err != nil {
		t.Fatalf("RequestBooking() error = %v", err)
	}

	select {
	case lockID := <-released:
		if lockID != "resource_lock_"+testResourceID {
			t.Errorf("released lock %q, want resource-scoped lock", lockID)
		}
	case <-time.After(time.Second):
		t.Fatal("lock was not released after admission")
	}
}

// Concurrent admissions for the same slot: the advisory lock serializes
// them and the overlap check admits exactly one.
func TestRequestBooking_ConcurrentWriters(t *testing.T) {
	var mu sync.Mutex
	var admitted []*model.Reservation

	repo := &mockReservationRepository{
		FindOverlappingFunc: func(ctx context.Context, resourceID string, interval model.Interval, states []model.Status) ([]*model.Reservation, error) {
			mu.Lock()
			defer mu.Unlock()
			var overlapping []*model.Reservation
			for _, r := range admitted {
				if r.Interval().Overlaps(interval) {
					overlapping = append(overlapping, r)
				}
			}
			return overlapping, nil
		},
		CreateFunc: func(ctx context.Context, reservation *model.Reservation) error {
			mu.Lock()
			defer mu.Unlock()
			reservation.ID = fmt.Sprintf("665f1c2b8a9d4e00%08x", len(admitted))
			admitted = append(admitted, reservation)
			return nil
		},
	}

	svc := newTestService(repo, newMockLockRepository(), &mockResourceDirectory{}, &mockAuditSink{}, &mockInvalidator{}, testConfig())

	const writers = 8
	var wg sync.WaitGroup
	results := make([]error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			req := validRequest()
			req.OwnerID = fmt.Sprintf("owner-%d", n)
			_, results[n] = svc.RequestBooking(context.Background(), req)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case apperrors.IsCode(err, apperrors.CodeConflict):
		case apperrors.IsCode(err, apperrors.CodeBusyTimeout):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("%d admissions succeeded, want exactly 1", succeeded)
	}
}

func TestConfirm_Transitions(t *testing.T) {
	tests := []struct {
		name     string
		status   model.Status
		wantCode string
	}{
		{name: "pending confirms", status: model.StatusPending},
		{name: "confirmed cannot confirm again", status: model.StatusConfirmed, wantCode: apperrors.CodeInvalidTransition},
		{name: "cancelled cannot confirm", status: model.StatusCancelled, wantCode: apperrors.CodeInvalidTransition},
		{name: "expired cannot confirm", status: model.StatusExpired, wantCode: apperrors.CodeInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockReservationRepository{
				FindByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
					return &model.Reservation{ID: id, ResourceID: testResourceID, Status: tt.status,
						StartsAt: time.Now().UTC(), EndsAt: time.Now().UTC().Add(time.Hour)}, nil
				},
			}
			sink := &mockAuditSink{}
			svc := newTestService(repo, newMockLockRepository(), &mockResourceDirectory{}, sink, &mockInvalidator{}, testConfig())

			reservation, err := svc.Confirm(context.Background(), "665f1c2b8a9d4e00aabbccdd", "owner-1")

			if tt.wantCode != "" {
				if !apperrors.IsCode(err, tt.wantCode) {
					t.Fatalf("error code = %v, want %s", err, tt.wantCode)
				}
				return
			}

			if err != nil {
				t.Fatalf("Confirm() error = %v", err)
			}
			if reservation.Status != model.StatusConfirmed {
				t.Errorf("status = %q, want %q", reservation.Status, model.StatusConfirmed)
			}
			events := sink.Events()
			if len(events) != 1 || events[0].Action != model.AuditActionConfirmed {
				t.Errorf("audit events = %+v, want one %s", events, model.AuditActionConfirmed)
			}
		})
	}
}

func TestCancel_Transitions(t *testing.T) {
	tests := []struct {
		name     string
		status   model.Status
		wantCode string
	}{
		{name: "pending cancels", status: model.StatusPending},
		{name: "confirmed cancels", status: model.StatusConfirmed},
		{name: "cancelled cannot cancel again", status: model.StatusCancelled, wantCode: apperrors.CodeInvalidTransition},
		{name: "expired cannot cancel", status: model.StatusExpired, wantCode: apperrors.CodeInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockReservationRepository{
				FindByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
					return &model.Reservation{ID: id, ResourceID: testResourceID, Status: tt.status,
						StartsAt: time.Now().UTC(), EndsAt: time.Now().UTC().Add(time.Hour)}, nil
				},
			}
			svc := newTestService(repo, newMockLockRepository(), &mockResourceDirectory{}, &mockAuditSink{}, &mockInvalidator{}, testConfig())

			reservation, err := svc.Cancel(context.Background(), "665f1c2b8a9d4e00aabbccdd", "owner-1")

			if tt.wantCode != "" {
				if !apperrors.IsCode(err, tt.wantCode) {
					t.Fatalf("error code = %v, want %s", err, tt.wantCode)
				}
				return
			}

			if err != nil {
				t.Fatalf("Cancel() error = %v", err)
			}
			if reservation.Status != model.StatusCancelled {
				t.Errorf("status = %q, want %q", reservation.Status, model.StatusCancelled)
			}
		})
	}
}

func TestTransition_LosesRace(t *testing.T) {
	repo := &mockReservationRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*model.Reservation, error) {
			return &model.Reservation{ID: id, ResourceID: testResourceID, Status: model.StatusPending,
				StartsAt: time.Now().UTC(), EndsAt: time.Now().UTC().Add(time.Hour)}, nil
		},
		UpdateStateFunc: func(ctx context.Context, id string, expected, next model.Status) error {
			return reservationerrors.ErrStateMismatch
		},
	}
	svc := newTestService(repo, newMockLockRepository(), &mockResourceDirectory{}, &mockAuditSink{}, &mockInvalidator{}, testConfig())

	_, err := svc.Confirm(context.Background(), "665f1c2b8a9d4e00aabbccdd", "owner-1")
	if !apperrors.IsCode(err, apperrors.CodeInvalidTransition) {
		t.Fatalf("error code = %v, want %s", err, apperrors.CodeInvalidTransition)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	svc := newTestService(&mockReservationRepository{}, newMockLockRepository(), &mockResourceDirectory{}, &mockAuditSink{}, &mockInvalidator{}, testConfig())

	_, err := svc.GetByID(context.Background(), "665f1c2b8a9d4e00aabbccdd")
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("error code = %v, want %s", err, apperrors.CodeNotFound)
	}
}

func TestListForOwner(t *testing.T) {
	repo := &mockReservationRepository{
		CountByOwnerFunc: func(ctx context.Context, ownerID string) (int64, error) {
			return 3, nil
		},
		FindByOwnerFunc: func(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Reservation, error) {
			return []*model.Reservation{{ID: "a"}, {ID: "b"}}, nil
		},
	}
	svc := newTestService(repo, newMockLockRepository(), &mockResourceDirectory{}, &mockAuditSink{}, &mockInvalidator{}, testConfig())

	reservations, total, err := svc.ListForOwner(context.Background(), "owner-1", 2, 0)
	if err != nil {
		t.Fatalf("ListForOwner() error = %v", err)
	}
	if len(reservations) != 2 {
		t.Errorf("got %d reservations, want 2", len(reservations))
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
}

func TestListForOwner_EmptyOwner(t *testing.T) {
	svc := newTestService(&mockReservationRepository{}, newMockLockRepository(), &mockResourceDirectory{}, &mockAuditSink{}, &mockInvalidator{}, testConfig())

	_, _, err := svc.ListForOwner(context.Background(), "", 10, 0)
	if !apperrors.IsCode(err, apperrors.CodeInvalidInput) {
		t.Fatalf("error code = %v, want %s", err, apperrors.CodeInvalidInput)
	}
}

func TestGetBusyIntervals(t *testing.T) {
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	repo := &mockReservationRepository{
		FindOverlappingFunc: func(ctx context.Context, resourceID string, interval model.Interval, states []model.Status) ([]*model.Reservation, error) {
			if !interval.StartsAt.Equal(day) || interval.Duration() != 24*time.Hour {
				t.Errorf("queried window %s, want the full UTC day", interval)
			}
			return []*model.Reservation{{
				StartsAt: day.Add(10 * time.Hour),
				EndsAt:   day.Add(11 * time.Hour),
				Status:   model.StatusConfirmed,
			}}, nil
		},
	}
	svc := newTestService(repo, newMockLockRepository(), &mockResourceDirectory{}, &mockAuditSink{}, &mockInvalidator{}, testConfig())

	availability, err := svc.GetBusyIntervals(context.Background(), testResourceID, day.Add(15*time.Hour))
	if err != nil {
		t.Fatalf("GetBusyIntervals() error = %v", err)
	}

	if availability.Available {
		t.Error("expected day to be marked unavailable")
	}
	if len(availability.BusySlots) != 1 {
		t.Fatalf("got %d busy slots, want 1", len(availability.BusySlots))
	}
	if availability.Date != "2026-09-01" {
		t.Errorf("date = %q, want 2026-09-01", availability.Date)
	}
}

func TestGetBusyIntervals_EmptyDay(t *testing.T) {
	svc := newTestService(&mockReservationRepository{}, newMockLockRepository(), &mockResourceDirectory{}, &mockAuditSink{}, &mockInvalidator{}, testConfig())

	availability, err := svc.GetBusyIntervals(context.Background(), testResourceID, time.Now().UTC())
	if err != nil {
		t.Fatalf("GetBusyIntervals() error = %v", err)
	}
	if !availability.Available {
		t.Error("expected empty day to be available")
	}
	if len(availability.BusySlots) != 0 {
		t.Errorf("got %d busy slots, want 0", len(availability.BusySlots))
	}
}

func TestRequestBooking_CacheFailureDoesNotBlock(t *testing.T) {
	invalidator := &mockInvalidator{
		InvalidateFunc: func(ctx context.Context, resourceID string, day time.Time) error {
			return fmt.Errorf("redis down")
		},
	}
	svc := newTestService(&mockReservationRepository{}, newMockLockRepository(), &mockResourceDirectory{}, &mockAuditSink{}, invalidator, testConfig())

	if _, err := svc.RequestBooking(context.Background(), validRequest()); err != nil {
		t.Fatalf("RequestBooking() error = %v, cache failure must not fail admission", err)
	}
}

func TestRequestBooking_StorageErrorSurfaced(t *testing.T) {
	repo := &mockReservationRepository{
		ExecuteTransactionFunc: func(ctx context.Context, fn mongotx.TransactionFunc) error {
			return fmt.Errorf("connection reset")
		},
	}
	svc := newTestService(repo, newMockLockRepository(), &mockResourceDirectory{}, &mockAuditSink{}, &mockInvalidator{}, testConfig())

	_, err := svc.RequestBooking(context.Background(), validRequest())
	if err == nil {
		t.Fatal("expected error from failed transaction")
	}
	if apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Error("storage failure must not masquerade as a conflict")
	}
}
