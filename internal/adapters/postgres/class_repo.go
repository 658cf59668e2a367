package postgres

// Package postgres adapts the shared class registry tables to the
// ports.ClassRegistry interface. The registry schema is owned by the class
// platform; this adapter only reads class rows and advances the live-session
// columns.

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classline/live-api/internal/domain/session"
	apperrors "github.com/classline/live-api/internal/errors"
	"github.com/classline/live-api/internal/ports"
)

// Ensure compile-time conformance to the port.
var _ ports.ClassRegistry = (*ClassRepo)(nil)

// ClassRepo provides registry operations backed by Postgres.
type ClassRepo struct {
	pool *pgxpool.Pool
}

// NewClassRepo creates a new ClassRepo.
func NewClassRepo(pool *pgxpool.Pool) *ClassRepo {
	if pool == nil {
		panic("pgx pool is required")
	}
	return &ClassRepo{pool: pool}
}

func (r *ClassRepo) GetClass(ctx context.Context, classID string) (session.ClassSession, error) {
	if classID == "" {
		return session.ClassSession{}, apperrors.ValidationField("class_id", "class_id is required")
	}

	var (
		class    session.ClassSession
		roomName *string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, instructor_id, room_name, status FROM classes WHERE id = $1`,
		classID,
	).Scan(&class.ClassID, &class.InstructorID, &roomName, &class.Status)
	if err != nil {
		mapped := apperrors.MapDBError(err)
		if apperrors.IsNotFound(mapped) {
			return session.ClassSession{}, apperrors.NotFoundf("class %q not found", classID)
		}
		return session.ClassSession{}, fmt.Errorf("query class: %w", mapped)
	}
	if roomName != nil {
		class.RoomName = *roomName
	}
	if !class.Status.Valid() {
		return session.ClassSession{}, apperrors.Upstreamf(
			"class %q has unknown status %q", classID, class.Status)
	}
	return class, nil
}

func (r *ClassRepo) SetRoomName(ctx context.Context, classID, roomName string) error {
	if classID == "" {
		return apperrors.ValidationField("class_id", "class_id is required")
	}
	if roomName == "" {
		return apperrors.ValidationField("room_name", "room_name is required")
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE classes SET room_name = $2 WHERE id = $1`,
		classID, roomName,
	)
	if err != nil {
		mapped := apperrors.MapDBError(err)
		if apperrors.IsConflict(mapped) {
			return apperrors.Conflictf("room %q is already recorded for another class", roomName)
		}
		return fmt.Errorf("update room name: %w", mapped)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFoundf("class %q not found", classID)
	}
	return nil
}

// SetStatus advances the class through the session state machine. The update
// is optimistic: the row only changes if it still holds the status we read,
// so two brokers racing the same transition produce exactly one winner.
func (r *ClassRepo) SetStatus(ctx context.Context, classID string, status session.Status) error {
	if classID == "" {
		return apperrors.ValidationField("class_id", "class_id is required")
	}
	if !status.Valid() {
		return apperrors.ValidationField("status", fmt.Sprintf("unknown status %q", status))
	}

	current, err := r.GetClass(ctx, classID)
	if err != nil {
		return err
	}
	if !current.Status.CanTransition(status) {
		return apperrors.Conflictf("class %q cannot move from %s to %s",
			classID, current.Status, status)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE classes SET status = $3 WHERE id = $1 AND status = $2`,
		classID, current.Status, status,
	)
	if err != nil {
		return fmt.Errorf("update status: %w", apperrors.MapDBError(err))
	}
	if tag.RowsAffected() == 0 {
		return apperrors.Conflictf("class %q changed status concurrently", classID)
	}
	return nil
}
