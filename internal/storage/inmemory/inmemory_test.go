package inmemory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andymarkow/zapbank/internal/domain/users"
	"github.com/andymarkow/zapbank/internal/storage"
)

func mustCreateUser(t *testing.T, s *Storage, login string) *users.User {
	t.Helper()

	usr, err := users.CreateUser(login, "pw1")
	require.NoError(t, err)

	created, err := s.CreateUser(context.Background(), usr)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID())

	return created
}

func TestStorage_CreateUser(t *testing.T) {
	t.Parallel()

	s := NewStorage()
	ctx := context.Background()

	created := mustCreateUser(t, s, "alice")
	assert.Equal(t, "alice", created.Login())
	assert.Zero(t, created.Zaps())

	usr, err := users.CreateUser("alice", "pw2")
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, usr)
	assert.ErrorIs(t, err, storage.ErrUserAlreadyExists)
}

func TestStorage_GetUser(t *testing.T) {
	t.Parallel()

	s := NewStorage()
	ctx := context.Background()

	created := mustCreateUser(t, s, "alice")

	byLogin, err := s.GetUserByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID(), byLogin.ID())

	byID, err := s.GetUserByID(ctx, created.ID())
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Login())

	_, err = s.GetUserByLogin(ctx, "bob")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)

	_, err = s.GetUserByID(ctx, "no-such-id")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestStorage_IncrementBalance(t *testing.T) {
	t.Parallel()

	s := NewStorage()
	ctx := context.Background()

	mustCreateUser(t, s, "alice")

	usr, err := s.IncrementBalance(ctx, "alice", 50)
	require.NoError(t, err)
	assert.Equal(t, int64(50), usr.Zaps())

	// Negative deltas are accepted.
	usr, err = s.IncrementBalance(ctx, "alice", -20)
	require.NoError(t, err)
	assert.Equal(t, int64(30), usr.Zaps())

	_, err = s.IncrementBalance(ctx, "bob", 1)
	assert.ErrorIs(t, err, storage.ErrUserNotFound)

	// A failed donation must not provision the account.
	_, err = s.GetUserByLogin(ctx, "bob")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestStorage_IncrementBalance_Concurrent(t *testing.T) {
	t.Parallel()

	s := NewStorage()
	ctx := context.Background()

	mustCreateUser(t, s, "alice")

	const donations = 50

	var wg sync.WaitGroup

	for i := 0; i < donations; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := s.IncrementBalance(ctx, "alice", 1)
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	usr, err := s.GetUserByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(donations), usr.Zaps())
}

func TestStorage_ListUsers(t *testing.T) {
	t.Parallel()

	s := NewStorage()
	ctx := context.Background()

	mustCreateUser(t, s, "bob")
	mustCreateUser(t, s, "alice")

	list, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "alice", list[0].Login())
	assert.Equal(t, "bob", list[1].Login())
}
