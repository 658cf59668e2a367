package errors

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapDBError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, MapDBError(nil))
	})

	t.Run("deadline exceeded", func(t *testing.T) {
		err := MapDBError(context.DeadlineExceeded)
		assert.True(t, IsTimeout(err))
	})

	t.Run("canceled", func(t *testing.T) {
		err := MapDBError(context.Canceled)
		assert.True(t, IsCanceled(err))
	})

	t.Run("no rows", func(t *testing.T) {
		err := MapDBError(pgx.ErrNoRows)
		assert.True(t, IsNotFound(err))
	})

	t.Run("unique violation with column name", func(t *testing.T) {
		err := MapDBError(&pgconn.PgError{
			Code:       pgerrcode.UniqueViolation,
			ColumnName: "room_name",
		})
		assert.True(t, IsConflict(err))
		assert.Equal(t, "room_name", GetField(err))
	})

	t.Run("unique violation with detail only", func(t *testing.T) {
		err := MapDBError(&pgconn.PgError{
			Code:   pgerrcode.UniqueViolation,
			Detail: `Key (room_name)=(class-42) already exists.`,
		})
		assert.True(t, IsConflict(err))
		assert.Equal(t, "room_name", GetField(err))
	})

	t.Run("other pg error becomes internal", func(t *testing.T) {
		err := MapDBError(&pgconn.PgError{Code: pgerrcode.SerializationFailure})
		assert.True(t, IsInternal(err))
	})

	t.Run("unrecognized error passes through", func(t *testing.T) {
		cause := errors.New("broken pipe")
		assert.Equal(t, cause, MapDBError(cause))
	})
}
