package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"roomtime/internal/reservations/audit"
	reservationerrors "roomtime/internal/reservations/errors"
	"roomtime/internal/reservations/repository"
	"roomtime/internal/reservations/validator"
	"roomtime/pkg/cache"
	"roomtime/pkg/config"
	apperrors "roomtime/pkg/errors"
	"roomtime/pkg/model"
	"roomtime/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

// ResourceDirectory answers whether a resource exists and is active.
// Resource lifecycle is owned by an external service.
type ResourceDirectory interface {
	ExistsAndActive(ctx context.Context, resourceID string) (bool, error)
}

type ReservationService interface {
	// RequestBooking atomically validates and admits a reservation request.
	// At most one of any set of concurrent overlapping requests for the same
	// resource succeeds.
	RequestBooking(ctx context.Context, req *model.BookingRequest) (*model.Reservation, error)
	Confirm(ctx context.Context, id, actorID string) (*model.Reservation, error)
	Cancel(ctx context.Context, id, actorID string) (*model.Reservation, error)
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	ListForOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Reservation, int64, error)
	ListForResource(ctx context.Context, resourceID string, interval model.Interval) ([]*model.Reservation, error)
	// GetBusyIntervals returns the pending and confirmed slots touching the
	// UTC day containing date, ordered by start time.
	GetBusyIntervals(ctx context.Context, resourceID string, date time.Time) (*model.Availability, error)
}

type reservationService struct {
	repo      repository.ReservationRepository
	lockRepo  repository.ResourceLockRepository
	validator *validator.ReservationValidator
	resources ResourceDirectory
	auditSink audit.Sink
	cache     cache.Invalidator
	cfg       *config.Config
}

func NewReservationService(
	repo repository.ReservationRepository,
	lockRepo repository.ResourceLockRepository,
	validator *validator.ReservationValidator,
	resources ResourceDirectory,
	auditSink audit.Sink,
	invalidator cache.Invalidator,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:      repo,
		lockRepo:  lockRepo,
		validator: validator,
		resources: resources,
		auditSink: auditSink,
		cache:     invalidator,
		cfg:       cfg,
	}
}

func (s *reservationService) RequestBooking(ctx context.Context, req *model.BookingRequest) (*model.Reservation, error) {
	req.ResourceID = sanitizer.NormalizeObjectID(req.ResourceID)
	req.OwnerID = sanitizer.NormalizeOwnerID(req.OwnerID)

	interval := req.Interval()
	if !interval.IsValid() {
		return nil, apperrors.InvalidInterval("ends_at must be after starts_at")
	}

	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Booking request validation failed", "error", err)
		return nil, apperrors.Validation("Invalid booking request", map[string]any{"error": err.Error()})
	}

	active, err := s.resources.ExistsAndActive(ctx, req.ResourceID)
	if err != nil {
		return nil, apperrors.Internal("Failed to check resource directory", err)
	}
	if !active {
		return nil, apperrors.ResourceUnavailable(req.ResourceID)
	}

	// Serialize admissions per resource: without the lock, two concurrent
	// requests could both pass the overlap check before either commits.
	lock, err := s.acquireResourceLock(ctx, req.ResourceID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.lockRepo.Release(context.WithoutCancel(ctx), lock.ID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release resource lock", "lock_id", lock.ID, "error", releaseErr)
		}
	}()

	reservation := &model.Reservation{
		ResourceID: req.ResourceID,
		OwnerID:    req.OwnerID,
		StartsAt:   req.StartsAt,
		EndsAt:     req.EndsAt,
		Status:     s.initialStatus(),
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifyNoOverlap(sessCtx, req.ResourceID, interval); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, reservation); err != nil {
			if errors.Is(err, reservationerrors.ErrDuplicate) {
				return apperrors.Conflict("Reservation ID collision, retry the request")
			}
			return apperrors.Storage("Failed to create reservation", err)
		}
		return nil
	})
	if err != nil {
		if !apperrors.IsCode(err, apperrors.CodeConflict) {
			s.cfg.Log.Error("Failed to admit reservation", "resource_id", req.ResourceID, "error", err)
		}
		return nil, err
	}

	s.auditSink.Record(ctx, req.OwnerID, model.AuditActionAdmitted, reservation.ID, map[string]any{
		"resource_id": reservation.ResourceID,
		"starts_at":   reservation.StartsAt,
		"ends_at":     reservation.EndsAt,
		"status":      reservation.Status,
	})
	s.invalidateAvailability(ctx, reservation.ResourceID, interval)

	s.cfg.Log.Info("Reservation admitted",
		"id", reservation.ID,
		"resource_id", reservation.ResourceID,
		"owner_id", reservation.OwnerID,
		"status", reservation.Status,
		"starts_at", reservation.StartsAt,
		"ends_at", reservation.EndsAt,
	)
	return reservation, nil
}

func (s *reservationService) Confirm(ctx context.Context, id, actorID string) (*model.Reservation, error) {
	return s.transition(ctx, id, actorID, model.StatusConfirmed, model.AuditActionConfirmed)
}

func (s *reservationService) Cancel(ctx context.Context, id, actorID string) (*model.Reservation, error) {
	return s.transition(ctx, id, actorID, model.StatusCancelled, model.AuditActionCancelled)
}

// transition applies an explicit state change using the store's conditional
// update as the guard against racing transitions.
func (s *reservationService) transition(ctx context.Context, id, actorID string, next model.Status, action string) (*model.Reservation, error) {
	reservation, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	current := reservation.Status
	if !current.CanTransitionTo(next) {
		return nil, apperrors.InvalidTransition(string(current), string(next))
	}

	if err := s.repo.UpdateState(ctx, id, current, next); err != nil {
		switch {
		case errors.Is(err, reservationerrors.ErrStateMismatch):
			// Lost a race with a concurrent transition; the expected state
			// is gone, so this transition is no longer legal.
			return nil, apperrors.InvalidTransition(string(current), string(next))
		case errors.Is(err, reservationerrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Reservation", id)
		default:
			return nil, apperrors.Storage("Failed to update reservation state", err)
		}
	}
	reservation.Status = next

	s.auditSink.Record(ctx, actorID, action, id, map[string]any{
		"resource_id": reservation.ResourceID,
		"from":        current,
		"to":          next,
	})
	s.invalidateAvailability(ctx, reservation.ResourceID, reservation.Interval())

	s.cfg.Log.Info("Reservation state changed",
		"id", id,
		"from", current,
		"to", next,
		"actor", actorID,
	)
	return reservation, nil
}

func (s *reservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		if errors.Is(err, reservationerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid reservation ID format")
		}
		return nil, apperrors.Storage("Failed to retrieve reservation", err)
	}

	return reservation, nil
}

func (s *reservationService) ListForOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Reservation, int64, error) {
	if ownerID == "" {
		return nil, 0, apperrors.InvalidInput("Owner ID cannot be empty")
	}

	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByOwner(ctx, ownerID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count reservations by owner", "owner_id", ownerID, "error", errCount)
			errCount = apperrors.Storage("Failed to count reservations", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		reservations, errFind = s.repo.FindByOwner(ctx, ownerID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list reservations by owner", "owner_id", ownerID, "error", errFind)
			errFind = apperrors.Storage("Failed to retrieve reservations", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return reservations, count, nil
}

func (s *reservationService) ListForResource(ctx context.Context, resourceID string, interval model.Interval) ([]*model.Reservation, error) {
	if resourceID == "" {
		return nil, apperrors.InvalidInput("Resource ID cannot be empty")
	}
	if !interval.IsValid() {
		return nil, apperrors.InvalidInterval("'from' must be before 'to'")
	}

	reservations, err := s.repo.FindByResourceAndRange(ctx, resourceID, interval)
	if err != nil {
		s.cfg.Log.Error("Failed to list reservations by resource", "resource_id", resourceID, "error", err)
		return nil, apperrors.Storage("Failed to retrieve reservations", err)
	}

	return reservations, nil
}

func (s *reservationService) GetBusyIntervals(ctx context.Context, resourceID string, date time.Time) (*model.Availability, error) {
	if resourceID == "" {
		return nil, apperrors.InvalidInput("Resource ID cannot be empty")
	}

	active, err := s.resources.ExistsAndActive(ctx, resourceID)
	if err != nil {
		return nil, apperrors.Internal("Failed to check resource directory", err)
	}
	if !active {
		return nil, apperrors.ResourceUnavailable(resourceID)
	}

	window := model.DayWindow(date)
	reservations, err := s.repo.FindOverlapping(ctx, resourceID, window, model.BlockingStatuses)
	if err != nil {
		return nil, apperrors.Storage("Failed to query busy intervals", err)
	}

	busy := make([]model.BusySlot, 0, len(reservations))
	for _, r := range reservations {
		busy = append(busy, model.BusySlot{
			StartsAt: r.StartsAt,
			EndsAt:   r.EndsAt,
			Status:   r.Status,
		})
	}

	return &model.Availability{
		ResourceID: resourceID,
		Date:       window.StartsAt.Format("2006-01-02"),
		Available:  len(busy) == 0,
		BusySlots:  busy,
	}, nil
}

// --- Helpers ---

func (s *reservationService) initialStatus() model.Status {
	if s.cfg.AdmissionPolicy == config.PolicyConfirm {
		return model.StatusConfirmed
	}
	return model.StatusPending
}

// verifyNoOverlap runs inside the admission transaction, after the resource
// lock is held. Only pending and confirmed reservations block.
func (s *reservationService) verifyNoOverlap(ctx context.Context, resourceID string, interval model.Interval) error {
	existing, err := s.repo.FindOverlapping(ctx, resourceID, interval, model.BlockingStatuses)
	if err != nil {
		return apperrors.Storage("Failed to check existing reservations", err)
	}

	intervals := make([]model.Interval, 0, len(existing))
	for _, r := range existing {
		intervals = append(intervals, r.Interval())
	}

	if model.Conflicts(interval, intervals) {
		first := existing[0]
		return apperrors.Conflict(fmt.Sprintf(
			"Resource already reserved for an overlapping interval (%s - %s)",
			first.StartsAt.Format(time.RFC3339),
			first.EndsAt.Format(time.RFC3339),
		))
	}
	return nil
}

// acquireResourceLock retries the advisory lock insert until it succeeds or
// the acquire timeout elapses. Blocked attempts surface BusyTimeout rather
// than waiting indefinitely.
func (s *reservationService) acquireResourceLock(ctx context.Context, resourceID string) (*model.ResourceLock, error) {
	deadline := time.Now().Add(s.cfg.LockAcquireTimeout)

	for {
		lock, err := s.lockRepo.TryAcquire(ctx, resourceID)
		if err == nil {
			return lock, nil
		}
		if !errors.Is(err, reservationerrors.ErrLockHeld) {
			return nil, apperrors.Storage("Failed to acquire resource lock", err)
		}
		if time.Now().Add(s.cfg.LockRetryInterval).After(deadline) {
			return nil, apperrors.BusyTimeout(resourceID)
		}

		select {
		case <-ctx.Done():
			return nil, apperrors.BusyTimeout(resourceID)
		case <-time.After(s.cfg.LockRetryInterval):
		}
	}
}

// invalidateAvailability drops the cached view for every UTC day the
// interval touches. Readers tolerate the brief staleness window.
func (s *reservationService) invalidateAvailability(ctx context.Context, resourceID string, interval model.Interval) {
	for _, day := range interval.Days() {
		if err := s.cache.Invalidate(context.WithoutCancel(ctx), resourceID, day); err != nil {
			s.cfg.Log.Warn("Availability cache invalidation failed",
				"resource_id", resourceID,
				"day", day.Format("2006-01-02"),
				"error", err,
			)
		}
	}
}
