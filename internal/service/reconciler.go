package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/classline/live-api/internal/domain/room"
	"github.com/classline/live-api/internal/domain/session"
	apperrors "github.com/classline/live-api/internal/errors"
	"github.com/classline/live-api/internal/ports"
)

// DefaultReconcileInterval is how often the sweep runs when not configured.
const DefaultReconcileInterval = time.Minute

// ReconcilerServiceOptions groups dependencies for ReconcilerService.
type ReconcilerServiceOptions struct {
	Registry ports.ClassRegistry // Required: class registry
	Joins    ports.JoinStore     // Required: join session store
	Rooms    *RoomService        // Required: room lifecycle service
	Interval time.Duration       // Optional: sweep interval
	Logger   *slog.Logger        // Optional: structured logger
}

// ReconcilerService sweeps the SFU for rooms the broker no longer has a live
// class for and tears them down. It covers the crash window between a room
// being provisioned and the registry recording it, and classes completed
// behind the broker's back.
type ReconcilerService struct {
	registry ports.ClassRegistry
	joins    ports.JoinStore
	rooms    *RoomService
	interval time.Duration
	grace    time.Duration
	logger   *slog.Logger
}

// NewReconcilerService constructs a new ReconcilerService.
func NewReconcilerService(opts ReconcilerServiceOptions) (*ReconcilerService, error) {
	if opts.Registry == nil {
		return nil, errors.New("ClassRegistry is required")
	}
	if opts.Joins == nil {
		return nil, errors.New("JoinStore is required")
	}
	if opts.Rooms == nil {
		return nil, errors.New("RoomService is required")
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultReconcileInterval
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "reconciler_service")
		logger.Debug("ReconcilerService initialized", "interval", interval)
	}

	return &ReconcilerService{
		registry: opts.Registry,
		joins:    opts.Joins,
		rooms:    opts.Rooms,
		interval: interval,
		grace:    2 * interval,
		logger:   logger,
	}, nil
}

// Run starts the sweep loop and runs until the context is cancelled.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (s *ReconcilerService) Run(ctx context.Context) error {
	if s.logger != nil {
		s.logger.InfoContext(ctx, "starting reconciler service", "interval", s.interval)
	}

	// Add jitter to prevent thundering herd if multiple instances start together
	s.waitWithJitter(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if err := s.Sweep(ctx); err != nil {
		s.logSweepError(err, "initial sweep")
	}

	for {
		select {
		case <-ctx.Done():
			if s.logger != nil {
				s.logger.InfoContext(ctx, "reconciler service stopping", "reason", ctx.Err())
			}
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				s.logSweepError(err, "sweep")
				// Continue running despite errors
			}
		}
	}
}

// waitWithJitter adds a random delay up to 10% of the interval.
func (s *ReconcilerService) waitWithJitter(ctx context.Context) {
	maxJitter := int64(s.interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		}
		return
	}

	jitterNanos := binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter)
	jitter := time.Duration(int64(jitterNanos)) // #nosec G115 - bounded by maxJitter which is int64

	select {
	case <-time.After(jitter):
	case <-ctx.Done():
	}
}

// Sweep lists SFU rooms and tears down any broker-managed room whose class is
// gone or no longer live. Rooms outside the broker's naming scheme are skipped.
func (s *ReconcilerService) Sweep(ctx context.Context) error {
	rooms, err := s.rooms.sfu.ListRooms(ctx)
	if err != nil {
		return fmt.Errorf("list rooms: %w", err)
	}

	var errs []error
	var torn int
	for _, rm := range rooms {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		orphan, err := s.isOrphan(ctx, rm)
		if err != nil {
			errs = append(errs, fmt.Errorf("inspect room %q: %w", rm.Name, err))
			continue
		}
		if !orphan {
			continue
		}

		if err := s.teardown(ctx, rm.Name); err != nil {
			errs = append(errs, fmt.Errorf("tear down room %q: %w", rm.Name, err))
			continue
		}
		torn++
	}

	if torn > 0 && s.logger != nil {
		s.logger.InfoContext(ctx, "orphan rooms torn down", "count", torn)
	}
	if len(errs) > 0 {
		return fmt.Errorf("sweep failed: %w", errors.Join(errs...))
	}
	return nil
}

func (s *ReconcilerService) isOrphan(ctx context.Context, rm room.Room) (bool, error) {
	classID, ok := session.ClassIDForRoom(rm.Name)
	if !ok {
		return false, nil
	}

	// A room younger than the grace window may belong to a create still in
	// flight: the room exists but the registry has not recorded the class as
	// live yet. Leave it for a later sweep.
	if time.Since(rm.CreatedAt) < s.grace {
		return false, nil
	}

	class, err := s.registry.GetClass(ctx, classID)
	switch {
	case apperrors.IsNotFound(err):
		return true, nil
	case err != nil:
		return false, err
	}
	return class.Status != session.StatusLive, nil
}

func (s *ReconcilerService) teardown(ctx context.Context, roomName string) error {
	if err := s.rooms.Delete(ctx, roomName); err != nil && !apperrors.IsNotFound(err) {
		return err
	}
	if err := s.joins.DeleteRoom(ctx, roomName); err != nil {
		return fmt.Errorf("purge join sessions: %w", err)
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "orphan room deleted", "room", roomName)
	}
	return nil
}

func (s *ReconcilerService) logSweepError(err error, label string) {
	if err == nil || s.logger == nil {
		return
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		s.logger.Debug(label+" cancelled by context", "error", err)
		return
	}
	s.logger.Error(label+" failed", "error", err)
}
