package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserToken_RoundTrip(t *testing.T) {
	t.Parallel()

	a := NewJWTAuth([]byte("user-secret"), WithTokenTTL(UserTokenTTL))

	token, err := a.CreateUserToken("account-id-1", "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := a.VerifyUserToken(token)
	require.NoError(t, err)

	assert.Equal(t, "account-id-1", claims.UserID)
	assert.Equal(t, "alice", claims.Subject)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(UserTokenTTL), claims.ExpiresAt.Time, time.Minute)
}

func TestCreateAdminToken_RoundTrip(t *testing.T) {
	t.Parallel()

	a := NewJWTAuth([]byte("admin-secret"), WithTokenTTL(AdminTokenTTL))

	token, err := a.CreateAdminToken()
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := a.VerifyAdminToken(token)
	require.NoError(t, err)

	assert.True(t, claims.Admin)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(AdminTokenTTL), claims.ExpiresAt.Time, time.Minute)
}

func TestVerify_CrossSecretRejected(t *testing.T) {
	t.Parallel()

	userAuth := NewJWTAuth([]byte("user-secret"))
	adminAuth := NewJWTAuth([]byte("admin-secret"))

	userToken, err := userAuth.CreateUserToken("account-id-1", "alice")
	require.NoError(t, err)

	adminToken, err := adminAuth.CreateAdminToken()
	require.NoError(t, err)

	// A user token never satisfies the admin domain and vice versa.
	_, err = adminAuth.VerifyAdminToken(userToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = userAuth.VerifyUserToken(adminToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_ExpiredToken(t *testing.T) {
	t.Parallel()

	a := NewJWTAuth([]byte("user-secret"), WithTokenTTL(-time.Minute))

	token, err := a.CreateUserToken("account-id-1", "alice")
	require.NoError(t, err)

	_, err = a.VerifyUserToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_MalformedToken(t *testing.T) {
	t.Parallel()

	a := NewJWTAuth([]byte("user-secret"))

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := a.VerifyUserToken(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)

		_, err = a.VerifyAdminToken(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	}
}
