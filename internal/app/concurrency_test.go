package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallel_CollectsAllResults(t *testing.T) {
	results, err := Parallel(context.Background(),
		func(context.Context) (int, error) { return 1, nil },
		func(context.Context) (int, error) { return 2, nil },
		func(context.Context) (int, error) { return 3, nil },
	)

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, results)
}

func TestParallel_FirstErrorWins(t *testing.T) {
	boom := errors.New("boom")

	_, err := Parallel(context.Background(),
		func(context.Context) (int, error) { return 1, nil },
		func(context.Context) (int, error) { return 0, boom },
	)

	require.ErrorIs(t, err, boom)
}

func TestParallel2_DifferentTypes(t *testing.T) {
	n, s, err := Parallel2(context.Background(),
		func(context.Context) (int, error) { return 42, nil },
		func(context.Context) (string, error) { return "ok", nil },
	)

	require.NoError(t, err)
	assert.Equal(t, 42, n)
	assert.Equal(t, "ok", s)
}

func TestParallelPartial_KeepsPartialFailures(t *testing.T) {
	boom := errors.New("boom")

	results := ParallelPartial(context.Background(),
		func(context.Context) (string, error) { return "a", nil },
		func(context.Context) (string, error) { return "", boom },
		func(context.Context) (string, error) { return "c", nil },
	)

	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].Value)
	require.ErrorIs(t, results[1].Err, boom)
	assert.Equal(t, "c", results[2].Value)
}
