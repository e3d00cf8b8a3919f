// Package sim plays autopilot rounds without a window, several at a time.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/exp/rand"

	"grid-snake/ai"
	"grid-snake/game"
	"grid-snake/stats"
)

// Causes for rounds that ended without a collision.
const (
	CauseCapped    = "capped"
	CauseCancelled = "cancelled"
)

type Options struct {
	Game     game.Options
	Workers  int
	MaxSteps int
	// Seed 0 picks a time based seed. Round i uses Seed+i.
	Seed uint64
	// Pilot is ai.KindGreedy (default) or ai.KindQ.
	Pilot string
	// Agent is trained by q pilots. A fresh one is made when nil.
	Agent *ai.QAgent
}

type Summary struct {
	Games     int
	Best      int
	Mean      float64
	Capped    int
	Cancelled int
	Won       int
	Duration  time.Duration
}

type Runner struct {
	opts  Options
	store *stats.Store
	log   *slog.Logger
	// submit hands a round to the pool; replaced in tests.
	submit func(pool *ants.Pool, task func()) error
}

// NewRunner records every finished round in store, which may be nil.
func NewRunner(opts Options, store *stats.Store, log *slog.Logger) *Runner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Pilot == "" {
		opts.Pilot = ai.KindGreedy
	}
	if opts.Pilot == ai.KindQ && opts.Agent == nil {
		opts.Agent = ai.NewQAgent(ai.DefaultQParams())
	}
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		opts:  opts,
		store: store,
		log:   log,
		submit: func(pool *ants.Pool, task func()) error {
			return pool.Submit(task)
		},
	}
}

// Agent is the Q agent trained by this runner, nil for greedy runs.
func (r *Runner) Agent() *ai.QAgent {
	return r.opts.Agent
}

// Run plays games rounds and waits for all of them. Cancelling ctx stops
// the rounds in flight; they are still recorded.
func (r *Runner) Run(ctx context.Context, games int) (Summary, error) {
	if err := r.opts.Game.Validate(); err != nil {
		return Summary{}, err
	}
	if _, err := ai.New(r.opts.Pilot, r.opts.Agent, nil); err != nil {
		return Summary{}, err
	}
	pool, err := ants.NewPool(r.opts.Workers)
	if err != nil {
		return Summary{}, fmt.Errorf("create pool: %w", err)
	}
	defer pool.Release()

	seed := r.opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		sum   Summary
		total int
	)
	start := time.Now()
	for i := 0; i < games; i++ {
		if ctx.Err() != nil {
			break
		}
		roundSeed := seed + uint64(i)
		wg.Add(1)
		err := r.submit(pool, func() {
			defer wg.Done()
			res, err := r.play(ctx, roundSeed)
			if err != nil {
				r.log.Error("round failed", "seed", roundSeed, "err", err)
				return
			}
			if r.store != nil {
				r.store.Add(res)
			}

			mu.Lock()
			defer mu.Unlock()
			sum.Games++
			total += res.Score
			sum.Best = max(sum.Best, res.Score)
			switch res.Cause {
			case CauseCapped:
				sum.Capped++
			case CauseCancelled:
				sum.Cancelled++
			case game.Won.String():
				sum.Won++
			}
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return Summary{}, fmt.Errorf("submit round: %w", err)
		}
	}
	wg.Wait()

	sum.Duration = time.Since(start)
	if sum.Games > 0 {
		sum.Mean = float64(total) / float64(sum.Games)
	}
	attrs := []any{"pilot", r.opts.Pilot, "games", sum.Games, "best", sum.Best, "mean", sum.Mean,
		"capped", sum.Capped, "cancelled", sum.Cancelled, "won", sum.Won, "elapsed", sum.Duration}
	if agent := r.opts.Agent; agent != nil {
		attrs = append(attrs, "states", agent.States(), "epsilon", agent.Epsilon())
	}
	r.log.Info("headless run finished", attrs...)
	return sum, ctx.Err()
}

func (r *Runner) play(ctx context.Context, seed uint64) (stats.Result, error) {
	g, err := game.NewGame(r.opts.Game, rand.New(rand.NewSource(seed)))
	if err != nil {
		return stats.Result{}, err
	}
	// The pilot gets its own stream so exploration does not shift food placement.
	pilot, err := ai.New(r.opts.Pilot, r.opts.Agent, rand.New(rand.NewSource(^seed)))
	if err != nil {
		return stats.Result{}, err
	}
	for !g.Finished() && ctx.Err() == nil {
		if r.opts.MaxSteps > 0 && g.Steps() >= r.opts.MaxSteps {
			break
		}
		pilot.Steer(g)
		g.Tick()
		pilot.Learn(g)
	}
	if r.opts.Agent != nil {
		r.opts.Agent.EndEpisode()
	}

	res := stats.Result{
		ID:        g.ID,
		Score:     g.Score(),
		Steps:     g.Steps(),
		StartTime: g.StartTime(),
		EndTime:   g.EndTime(),
		Duration:  g.Duration(),
	}
	switch {
	case g.State() == game.Over:
		res.Cause = g.LastCollision().String()
	case g.State() == game.Won:
		res.Cause = game.Won.String()
	case ctx.Err() != nil:
		res.Cause = CauseCancelled
		res.EndTime = time.Now()
	default:
		res.Cause = CauseCapped
		res.EndTime = time.Now()
	}
	r.log.Debug("round finished", "id", res.ID, "seed", seed, "score", res.Score, "steps", res.Steps, "cause", res.Cause)
	return res, nil
}
