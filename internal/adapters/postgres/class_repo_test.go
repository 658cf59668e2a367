package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classline/live-api/internal/domain/session"
	apperrors "github.com/classline/live-api/internal/errors"
	"github.com/classline/live-api/internal/testutil"
)

// setupRepo connects to the test database; tests are skipped when Postgres is
// not available.
func setupRepo(t *testing.T) (*ClassRepo, *pgxpool.Pool) {
	t.Helper()
	pool := testutil.SetupTestPool(t)
	return NewClassRepo(pool), pool
}

func seedClass(t *testing.T, pool *pgxpool.Pool, classID, instructorID string, status session.Status) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO classes (id, instructor_id, status) VALUES ($1, $2, $3)`,
		classID, instructorID, status,
	)
	require.NoError(t, err)
}

func TestClassRepo_GetClass(t *testing.T) {
	repo, pool := setupRepo(t)
	ctx := context.Background()

	seedClass(t, pool, "101", "instructor-1", session.StatusScheduled)

	t.Run("returns the class", func(t *testing.T) {
		class, err := repo.GetClass(ctx, "101")
		require.NoError(t, err)
		assert.Equal(t, "101", class.ClassID)
		assert.Equal(t, "instructor-1", class.InstructorID)
		assert.Equal(t, session.StatusScheduled, class.Status)
		assert.Empty(t, class.RoomName)
	})

	t.Run("unknown class is not found", func(t *testing.T) {
		_, err := repo.GetClass(ctx, "999")
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("empty id is a validation error", func(t *testing.T) {
		_, err := repo.GetClass(ctx, "")
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestClassRepo_SetRoomName(t *testing.T) {
	repo, pool := setupRepo(t)
	ctx := context.Background()

	seedClass(t, pool, "101", "instructor-1", session.StatusScheduled)
	seedClass(t, pool, "102", "instructor-2", session.StatusScheduled)

	t.Run("records the room name", func(t *testing.T) {
		require.NoError(t, repo.SetRoomName(ctx, "101", "class-101"))

		class, err := repo.GetClass(ctx, "101")
		require.NoError(t, err)
		assert.Equal(t, "class-101", class.RoomName)
	})

	t.Run("recording the same name again is fine", func(t *testing.T) {
		assert.NoError(t, repo.SetRoomName(ctx, "101", "class-101"))
	})

	t.Run("duplicate room name across classes is a conflict", func(t *testing.T) {
		err := repo.SetRoomName(ctx, "102", "class-101")
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("unknown class is not found", func(t *testing.T) {
		err := repo.SetRoomName(ctx, "999", "class-999")
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestClassRepo_SetStatus(t *testing.T) {
	repo, pool := setupRepo(t)
	ctx := context.Background()

	seedClass(t, pool, "101", "instructor-1", session.StatusScheduled)

	t.Run("walks the state machine forward", func(t *testing.T) {
		require.NoError(t, repo.SetStatus(ctx, "101", session.StatusLive))
		require.NoError(t, repo.SetStatus(ctx, "101", session.StatusCompleted))

		class, err := repo.GetClass(ctx, "101")
		require.NoError(t, err)
		assert.Equal(t, session.StatusCompleted, class.Status)
	})

	t.Run("backward transitions are conflicts", func(t *testing.T) {
		err := repo.SetStatus(ctx, "101", session.StatusLive)
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("repeating a transition is a conflict", func(t *testing.T) {
		err := repo.SetStatus(ctx, "101", session.StatusCompleted)
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("unknown status is a validation error", func(t *testing.T) {
		err := repo.SetStatus(ctx, "101", session.Status("paused"))
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("unknown class is not found", func(t *testing.T) {
		err := repo.SetStatus(ctx, "999", session.StatusLive)
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})
}
