package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	t.rolledBack = true
	return nil
}

type fakeBeginner struct {
	txs []*fakeTx
}

func (b *fakeBeginner) BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error) {
	tx := &fakeTx{}
	b.txs = append(b.txs, tx)
	return tx, nil
}

func serializationFailure() error {
	return fmt.Errorf("update inventory: %w", &pgconn.PgError{Code: "40001"})
}

func TestWithTxRetriesSerializationFailure(t *testing.T) {
	pool := &fakeBeginner{}
	calls := 0

	err := WithTx(context.Background(), pool, func(pgx.Tx) error {
		calls++
		if calls == 1 {
			return serializationFailure()
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, calls)
	require.Len(t, pool.txs, 2)
	require.False(t, pool.txs[0].committed)
	require.True(t, pool.txs[0].rolledBack)
	require.True(t, pool.txs[1].committed)
}

func TestWithTxRetriesDeadlock(t *testing.T) {
	pool := &fakeBeginner{}
	calls := 0

	err := WithTx(context.Background(), pool, func(pgx.Tx) error {
		calls++
		if calls == 1 {
			return fmt.Errorf("lock row: %w", &pgconn.PgError{Code: "40P01"})
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestWithTxDoesNotRetryDomainErrors(t *testing.T) {
	pool := &fakeBeginner{}
	calls := 0
	boom := errors.New("insufficient stock")

	err := WithTx(context.Background(), pool, func(pgx.Tx) error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, calls)
	require.Len(t, pool.txs, 1)
	require.False(t, pool.txs[0].committed)
}

func TestWithTxGivesUpAfterMaxAttempts(t *testing.T) {
	pool := &fakeBeginner{}
	calls := 0

	err := WithTx(context.Background(), pool, func(pgx.Tx) error {
		calls++
		return serializationFailure()
	})
	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	require.Equal(t, "40001", pgErr.Code)
	require.Equal(t, maxTxAttempts, calls)
	for _, tx := range pool.txs {
		require.False(t, tx.committed)
	}
}

func TestWithTxStopsRetryingWhenContextCancelled(t *testing.T) {
	pool := &fakeBeginner{}
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	err := WithTx(ctx, pool, func(pgx.Tx) error {
		calls++
		cancel()
		return serializationFailure()
	})
	require.Error(t, err)
	require.Equal(t, 1, calls)
}
