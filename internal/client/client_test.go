package client_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andymarkow/zapbank/internal/client"
	"github.com/andymarkow/zapbank/internal/server/router"
	"github.com/andymarkow/zapbank/internal/storage"
	"github.com/andymarkow/zapbank/internal/storage/inmemory"
)

const testAdminKey = "test-admin-key"

func newTestClient(t *testing.T) *client.Client {
	t.Helper()

	r := router.NewRouter(storage.NewStorage(inmemory.NewStorage()),
		router.WithUserSecret([]byte("test-user-secret")),
		router.WithAdminSecret([]byte("test-admin-secret")),
		router.WithAdminKey(testAdminKey),
	)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return client.New(srv.URL, client.WithRetryCount(0))
}

func TestClient_LoginAndMe(t *testing.T) {
	t.Parallel()

	api := newTestClient(t)
	ctx := context.Background()

	session, err := api.Login(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.True(t, session.Created)
	require.NotEmpty(t, session.Token)

	me, err := api.Me(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)
	assert.Zero(t, me.Zaps)

	session, err = api.Login(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.False(t, session.Created)
}

func TestClient_AdminLogin_WrongKey(t *testing.T) {
	t.Parallel()

	api := newTestClient(t)

	_, err := api.AdminLogin(context.Background(), "wrong-key")
	assert.ErrorIs(t, err, client.ErrUnauthorized)
}

func TestClient_DonateFlow(t *testing.T) {
	t.Parallel()

	api := newTestClient(t)
	ctx := context.Background()

	_, err := api.Login(ctx, "alice", "pw1")
	require.NoError(t, err)

	token, err := api.AdminLogin(ctx, testAdminKey)
	require.NoError(t, err)

	result, err := api.Donate(ctx, token, "alice", 50)
	require.NoError(t, err)
	assert.Equal(t, int64(50), result.Zaps)

	userList, err := api.ListUsers(ctx, token)
	require.NoError(t, err)
	require.Len(t, userList, 1)
	assert.Equal(t, "alice", userList[0].Username)
	assert.Equal(t, int64(50), userList[0].Zaps)
}

func TestClient_Donate_UnknownUser(t *testing.T) {
	t.Parallel()

	api := newTestClient(t)
	ctx := context.Background()

	token, err := api.AdminLogin(ctx, testAdminKey)
	require.NoError(t, err)

	_, err = api.Donate(ctx, token, "ghost", 1)
	assert.ErrorIs(t, err, client.ErrUserNotFound)
}

func TestClient_Donate_UserTokenRejected(t *testing.T) {
	t.Parallel()

	api := newTestClient(t)
	ctx := context.Background()

	session, err := api.Login(ctx, "alice", "pw1")
	require.NoError(t, err)

	_, err = api.Donate(ctx, session.Token, "alice", 1)
	assert.ErrorIs(t, err, client.ErrUnauthorized)
}
