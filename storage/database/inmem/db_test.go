package inmemdb

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/roster"
)

func TestTransactor_RunInTx(t *testing.T) {
	ctx := context.Background()
	db := Open()
	repo := NewRosterRepository(db)
	tx := NewTransactor(db)
	errBoom := errors.New("boom")

	t.Run("commit", func(t *testing.T) {
		err := tx.RunInTx(ctx, func(exec core.DBExecutor) error {
			_, err := repo.CreateUser(ctx, roster.User{ID: "u1", Name: "Awe"}, exec)
			return err
		})
		require.NoError(t, err)
		_, err = repo.GetUser(ctx, "u1")
		assert.NoError(t, err)
	})

	t.Run("rollback on error", func(t *testing.T) {
		err := tx.RunInTx(ctx, func(exec core.DBExecutor) error {
			if _, err := repo.CreateUser(ctx, roster.User{ID: "u2", Name: "Lol"}, exec); err != nil {
				return err
			}
			if _, err := repo.CreateClassroom(ctx, roster.Classroom{ID: "c1"}, exec); err != nil {
				return err
			}
			return errBoom
		})
		assert.Equal(t, errBoom, err)

		_, err = repo.GetUser(ctx, "u2")
		assert.Equal(t, roster.ErrUserNotFound, err)
		_, err = repo.GetClassroom(ctx, "c1")
		assert.Equal(t, roster.ErrClassroomNotFound, err)
		_, err = repo.GetUser(ctx, "u1")
		assert.NoError(t, err, "earlier commits are kept")
	})

	t.Run("rollback on panic", func(t *testing.T) {
		assert.Panics(t, func() {
			_ = tx.RunInTx(ctx, func(exec core.DBExecutor) error {
				_, _ = repo.CreateUser(ctx, roster.User{ID: "u3"}, exec)
				panic("boom")
			})
		})
		_, err := repo.GetUser(ctx, "u3")
		assert.Equal(t, roster.ErrUserNotFound, err)

		// the lock was released
		_, err = repo.CreateUser(ctx, roster.User{ID: "u4"})
		assert.NoError(t, err)
	})

	t.Run("canceled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		called := false
		err := tx.RunInTx(cctx, func(core.DBExecutor) error {
			called = true
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, called)
	})
}
