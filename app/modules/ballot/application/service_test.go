package ballotservice

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func TestRunInTxWithoutDatabase(t *testing.T) {
	service := newTestService(NewFakeBallotRepository(), NewFakeEventBus())

	called := false
	err := service.runInTx(context.Background(), func(ctx context.Context, tx bun.IDB) error {
		called = true
		assert.Nil(t, tx)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestRunInTxPropagatesError(t *testing.T) {
	service := newTestService(NewFakeBallotRepository(), NewFakeEventBus())

	sentinel := errors.New("constraint violation")
	err := service.runInTx(context.Background(), func(ctx context.Context, tx bun.IDB) error {
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
}
