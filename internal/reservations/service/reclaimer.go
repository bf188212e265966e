package service

import (
	"context"
	"errors"
	"time"

	"roomtime/internal/reservations/audit"
	reservationerrors "roomtime/internal/reservations/errors"
	"roomtime/internal/reservations/repository"
	"roomtime/pkg/cache"
	"roomtime/pkg/config"
	"roomtime/pkg/model"
)

// Reclaimer is the background sweep that expires stale holds: pending
// reservations older than the hold TTL transition to expired and stop
// blocking their resource. It runs independently of live admission traffic
// and shares nothing with it beyond the store's conditional update.
type Reclaimer struct {
	repo      repository.ReservationRepository
	auditSink audit.Sink
	cache     cache.Invalidator
	cfg       *config.Config

	cancel context.CancelFunc
	done   chan struct{}
}

func NewReclaimer(
	repo repository.ReservationRepository,
	auditSink audit.Sink,
	invalidator cache.Invalidator,
	cfg *config.Config,
) *Reclaimer {
	return &Reclaimer{
		repo:      repo,
		auditSink: auditSink,
		cache:     invalidator,
		cfg:       cfg,
		done:      make(chan struct{}),
	}
}

// Start launches the sweep loop. Call Stop to shut it down.
func (rc *Reclaimer) Start(ctx context.Context) {
	ctx, rc.cancel = context.WithCancel(ctx)

	go func() {
		defer close(rc.done)

		ticker := time.NewTicker(rc.cfg.ReclaimInterval)
		defer ticker.Stop()

		rc.cfg.Log.Info("Hold reclaimer started",
			"hold_ttl", rc.cfg.HoldTTL,
			"interval", rc.cfg.ReclaimInterval,
		)

		for {
			select {
			case <-ctx.Done():
				rc.cfg.Log.Info("Hold reclaimer stopped")
				return
			case <-ticker.C:
				if _, err := rc.SweepOnce(ctx); err != nil {
					rc.cfg.Log.Error("Reclaim sweep failed", "error", err)
				}
			}
		}
	}()
}

// Stop cancels the sweep loop and waits for it to exit.
func (rc *Reclaimer) Stop() {
	if rc.cancel != nil {
		rc.cancel()
	}
	<-rc.done
}

// SweepOnce expires one batch of stale holds and returns how many it
// retired. A conditional-update mismatch on an individual reservation means
// it was confirmed or cancelled in the interim; those are skipped, not
// retried. Storage failures abort the sweep and are surfaced to the caller.
func (rc *Reclaimer) SweepOnce(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-rc.cfg.HoldTTL)

	stale, err := rc.repo.FindExpiredPending(ctx, cutoff, rc.cfg.ReclaimBatch)
	if err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	expired := 0
	for _, reservation := range stale {
		err := rc.repo.UpdateState(ctx, reservation.ID, model.StatusPending, model.StatusExpired)
		if err != nil {
			if errors.Is(err, reservationerrors.ErrStateMismatch) || errors.Is(err, reservationerrors.ErrNotFound) {
				// No longer pending: someone confirmed or cancelled it
				// between the scan and the update. Not eligible anymore.
				rc.cfg.Log.Debug("Skipping reservation no longer pending", "id", reservation.ID)
				continue
			}
			return expired, err
		}

		expired++
		rc.auditSink.Record(ctx, audit.ReclaimerActor, model.AuditActionExpired, reservation.ID, map[string]any{
			"resource_id": reservation.ResourceID,
			"created_at":  reservation.CreatedAt,
			"hold_ttl":    rc.cfg.HoldTTL.String(),
		})
		rc.invalidateAvailability(ctx, reservation)
	}

	if expired > 0 {
		rc.cfg.Log.Info("Reclaimed stale holds", "expired", expired, "scanned", len(stale))
	}
	return expired, nil
}

func (rc *Reclaimer) invalidateAvailability(ctx context.Context, reservation *model.Reservation) {
	for _, day := range reservation.Interval().Days() {
		if err := rc.cache.Invalidate(ctx, reservation.ResourceID, day); err != nil {
			rc.cfg.Log.Warn("Availability cache invalidation failed",
				"resource_id", reservation.ResourceID,
				"day", day.Format("2006-01-02"),
				"error", err,
			)
		}
	}
}
