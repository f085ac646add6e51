// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
TestApplyDefaults keeps DSN overrides and fills the rest.
*/
func TestApplyDefaults(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		config, err := pgxpool.ParseConfig("postgres://u:p@localhost:5432/books")
		require.NoError(t, err)

		applyDefaults(config, false)

		assert.GreaterOrEqual(t, config.MaxConns, int32(defaultMaxConns))
		assert.Equal(t, int32(defaultMinConns), config.MinConns)
		assert.Equal(t, "30000", config.ConnConfig.RuntimeParams["statement_timeout"])
	})

	t.Run("dsn_overrides", func(t *testing.T) {
		config, err := pgxpool.ParseConfig("postgres://u:p@localhost:5432/books?pool_max_conns=5&pool_min_conns=1&statement_timeout=1000")
		require.NoError(t, err)

		applyDefaults(config, true)

		assert.Equal(t, int32(5), config.MaxConns)
		assert.Equal(t, int32(1), config.MinConns)
		assert.Equal(t, "1000", config.ConnConfig.RuntimeParams["statement_timeout"])
	})
}

// fakeTx records how a transaction ended. Methods it does not override
// panic through the nil embedded interface.
type fakeTx struct {
	pgx.Tx
	committed, rolledBack bool
	commitErr             error
}

func (tx *fakeTx) Commit(context.Context) error {
	tx.committed = true
	return tx.commitErr
}

func (tx *fakeTx) Rollback(context.Context) error {
	tx.rolledBack = true
	return nil
}

type fakeBeginner struct {
	tx  *fakeTx
	err error
}

func (b fakeBeginner) Begin(context.Context) (pgx.Tx, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.tx, nil
}

/*
TestInTx covers commit, rollback and begin failures.
*/
func TestInTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commit", func(t *testing.T) {
		tx := &fakeTx{}
		require.NoError(t, InTx(ctx, fakeBeginner{tx: tx}, func(pgx.Tx) error { return nil }))
		assert.True(t, tx.committed)
		assert.False(t, tx.rolledBack)
	})

	t.Run("rollback_keeps_error", func(t *testing.T) {
		tx := &fakeTx{}
		sentinel := errors.New("duplicate")
		err := InTx(ctx, fakeBeginner{tx: tx}, func(pgx.Tx) error { return sentinel })
		assert.ErrorIs(t, err, sentinel)
		assert.True(t, tx.rolledBack)
		assert.False(t, tx.committed)
	})

	t.Run("commit_failure", func(t *testing.T) {
		tx := &fakeTx{commitErr: errors.New("serialization")}
		err := InTx(ctx, fakeBeginner{tx: tx}, func(pgx.Tx) error { return nil })
		assert.ErrorContains(t, err, "commit")
	})

	t.Run("begin_failure", func(t *testing.T) {
		err := InTx(ctx, fakeBeginner{err: errors.New("no conn")}, func(pgx.Tx) error {
			t.Fatal("fn must not run")
			return nil
		})
		assert.ErrorContains(t, err, "begin")
	})
}
