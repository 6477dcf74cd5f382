package pgstorage

import (
	"errors"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetry_NonRetryableError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("integrity constraint violation")
	calls := 0

	err := WithRetry(func() error {
		calls++

		return wantErr
	})

	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_RetryableErrorRecovers(t *testing.T) {
	t.Parallel()

	calls := 0
	rows := make([]string, 0)

	err := WithRetry(func() error {
		calls++

		// Mirrors the row-scan accumulation pattern: each attempt
		// must start from a clean slate.
		rows = rows[:0]
		rows = append(rows, "alice")

		if calls == 1 {
			return syscall.ECONNREFUSED
		}

		rows = append(rows, "bob")

		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []string{"alice", "bob"}, rows)
}
