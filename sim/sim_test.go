package sim

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grid-snake/ai"
	"grid-snake/game"
	"grid-snake/stats"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunRecordsEveryRound(t *testing.T) {
	store := stats.NewStore("")
	r := NewRunner(Options{
		Game:     game.DefaultOptions(),
		Workers:  3,
		MaxSteps: 300,
		Seed:     42,
	}, store, quietLogger())

	sum, err := r.Run(context.Background(), 12)
	require.NoError(t, err)

	assert.Equal(t, 12, sum.Games)
	assert.Equal(t, 12, store.GamesPlayed())
	assert.Equal(t, sum.Best, store.MaxScore())
	assert.Positive(t, sum.Best)
	assert.InDelta(t, store.AverageScore(), sum.Mean, 1e-9)
}

func TestRunIsReproducible(t *testing.T) {
	opts := Options{Game: game.DefaultOptions(), Workers: 2, MaxSteps: 200, Seed: 7}

	a, err := NewRunner(opts, nil, quietLogger()).Run(context.Background(), 4)
	require.NoError(t, err)
	b, err := NewRunner(opts, nil, quietLogger()).Run(context.Background(), 4)
	require.NoError(t, err)

	assert.Equal(t, a.Best, b.Best)
	assert.Equal(t, a.Mean, b.Mean)
}

func TestRunStepCap(t *testing.T) {
	store := stats.NewStore("")
	r := NewRunner(Options{Game: game.DefaultOptions(), Workers: 1, MaxSteps: 1, Seed: 1}, store, quietLogger())

	sum, err := r.Run(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Capped)
	for _, rec := range store.Records() {
		assert.Equal(t, CauseCapped, rec.Cause)
		assert.Equal(t, 1, rec.Steps)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sum, err := NewRunner(Options{Game: game.DefaultOptions()}, nil, quietLogger()).Run(ctx, 5)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, sum.Games)
}

func TestRunRejectsBadOptions(t *testing.T) {
	opts := game.DefaultOptions()
	opts.Width = 1
	_, err := NewRunner(Options{Game: opts}, nil, quietLogger()).Run(context.Background(), 1)
	assert.ErrorIs(t, err, game.ErrInvalidGrid)
}

func TestPlayMarksCancelledRounds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(Options{Game: game.DefaultOptions(), MaxSteps: 100, Seed: 3}, nil, quietLogger())
	res, err := r.play(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, CauseCancelled, res.Cause)
	assert.Zero(t, res.Steps)
	assert.False(t, res.EndTime.IsZero())
}

func TestRunWaitsForRoundsOnSubmitError(t *testing.T) {
	store := stats.NewStore("")
	r := NewRunner(Options{Game: game.DefaultOptions(), MaxSteps: 50, Seed: 9}, store, quietLogger())

	errFull := errors.New("pool full")
	calls := 0
	r.submit = func(_ *ants.Pool, task func()) error {
		calls++
		if calls > 1 {
			return errFull
		}
		go func() {
			time.Sleep(50 * time.Millisecond)
			task()
		}()
		return nil
	}

	_, err := r.Run(context.Background(), 3)
	assert.ErrorIs(t, err, errFull)
	assert.Equal(t, 1, store.GamesPlayed(), "the submitted round finishes before Run returns")
}

func TestRunTrainsQPilot(t *testing.T) {
	opts := game.DefaultOptions()
	opts.Width, opts.Height = 10, 10
	r := NewRunner(Options{
		Game:     opts,
		Workers:  2,
		MaxSteps: 200,
		Seed:     11,
		Pilot:    ai.KindQ,
	}, nil, quietLogger())
	require.NotNil(t, r.Agent())

	sum, err := r.Run(context.Background(), 20)
	require.NoError(t, err)
	assert.Equal(t, 20, sum.Games)
	assert.Equal(t, 20, r.Agent().Episodes())
	assert.Positive(t, r.Agent().States())
	assert.Less(t, r.Agent().Epsilon(), ai.DefaultQParams().Epsilon)
}

func TestRunRejectsUnknownPilot(t *testing.T) {
	_, err := NewRunner(Options{Game: game.DefaultOptions(), Pilot: "random"}, nil, quietLogger()).Run(context.Background(), 1)
	assert.ErrorIs(t, err, ai.ErrUnknownPilot)
}
