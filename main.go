package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"golang.org/x/exp/rand"

	"grid-snake/ai"
	"grid-snake/config"
	"grid-snake/game"
	"grid-snake/logging"
	"grid-snake/sim"
	"grid-snake/stats"
	"grid-snake/ui"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "snake:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	log, closer, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer closer.Close()

	store, err := stats.Open(cfg.StatsFile)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Save(); err != nil {
			log.Error("saving stats", "file", store.Path(), "err", err)
		}
	}()

	opts, err := cfg.GameOptions()
	if err != nil {
		return err
	}

	var agent *ai.QAgent
	if cfg.Pilot == ai.KindQ {
		agent, err = loadAgent(cfg.QTableFile)
		if err != nil {
			return err
		}
		log.Info("q-table loaded", "file", cfg.QTableFile, "states", agent.States(), "episodes", agent.Episodes(), "epsilon", agent.Epsilon())
		defer func() {
			if cfg.QTableFile == "" {
				return
			}
			if err := agent.Save(cfg.QTableFile); err != nil {
				log.Error("saving q-table", "file", cfg.QTableFile, "err", err)
			}
		}()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	if cfg.Headless {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		runner := sim.NewRunner(sim.Options{
			Game:     opts,
			Workers:  cfg.Workers,
			MaxSteps: cfg.MaxSteps,
			Seed:     seed,
			Pilot:    cfg.Pilot,
			Agent:    agent,
		}, store, log)
		sum, err := runner.Run(ctx, cfg.Games)
		fmt.Printf("games=%d best=%d mean=%.2f capped=%d cancelled=%d won=%d\n",
			sum.Games, sum.Best, sum.Mean, sum.Capped, sum.Cancelled, sum.Won)
		return err
	}

	g, err := game.NewGame(opts, rand.New(rand.NewSource(seed)))
	if err != nil {
		return err
	}
	pilot, err := ai.New(cfg.Pilot, agent, rand.New(rand.NewSource(^seed)))
	if err != nil {
		return err
	}
	play(cfg, g, pilot, agent, store, log)
	return nil
}

func loadAgent(path string) (*ai.QAgent, error) {
	if path == "" {
		return ai.NewQAgent(ai.DefaultQParams()), nil
	}
	return ai.LoadQAgent(path, ai.DefaultQParams())
}

// play runs the window loop until the window closes or Q is pressed.
// A q pilot keeps learning while it steers; agent is nil for other pilots.
func play(cfg config.Config, g *game.Game, pilot ai.Autopilot, agent *ai.QAgent, store *stats.Store, log *slog.Logger) {
	renderer := ui.NewRenderer(g.Grid(), cfg.CellSize)
	w, h := renderer.WindowSize()
	rl.InitWindow(w, h, "Snake")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	pace := cfg.Pace()
	autopilot := cfg.Autopilot
	recorded := false
	lastUpdate := time.Now()

	log.Info("round started", "id", g.ID, "grid", fmt.Sprintf("%dx%d", g.Grid().Width, g.Grid().Height), "boundary", g.Boundary())

	for !rl.WindowShouldClose() {
		for _, in := range ui.PollInput() {
			switch in.Command {
			case ui.CmdTurn:
				if !autopilot {
					g.Turn(in.Direction)
				}
			case ui.CmdPause:
				g.TogglePause()
			case ui.CmdRestart:
				if !recorded && g.Steps() > 0 {
					record(g, store, log)
				}
				g.Reset()
				recorded = false
				lastUpdate = time.Now()
				log.Info("round started", "id", g.ID)
			case ui.CmdAutopilot:
				autopilot = !autopilot
				log.Debug("autopilot toggled", "on", autopilot)
			case ui.CmdQuit:
				return
			}
		}

		if time.Since(lastUpdate) >= pace.Interval(g.Score()) {
			lastUpdate = time.Now()
			if autopilot {
				pilot.Steer(g)
			}
			res := g.Tick()
			if autopilot {
				pilot.Learn(g)
			}
			if res.Ate {
				log.Debug("food eaten", "score", g.Score(), "length", g.Snake().Len())
			}
			if g.Finished() && !recorded {
				record(g, store, log)
				recorded = true
				if agent != nil && autopilot {
					agent.EndEpisode()
				}
			}
		}

		renderer.Draw(g, ui.HUD{
			HighScore:   store.MaxScore(),
			GamesPlayed: store.GamesPlayed(),
			Autopilot:   autopilot,
		})
	}
}

func record(g *game.Game, store *stats.Store, log *slog.Logger) {
	cause := g.LastCollision().String()
	if g.State() == game.Won {
		cause = game.Won.String()
	}
	end := g.EndTime()
	if end.IsZero() {
		end = time.Now()
		cause = "abandoned"
	}
	store.Add(stats.Result{
		ID:        g.ID,
		Score:     g.Score(),
		Steps:     g.Steps(),
		Cause:     cause,
		StartTime: g.StartTime(),
		EndTime:   end,
		Duration:  g.Duration(),
	})
	log.Info("round finished", "id", g.ID, "score", g.Score(), "steps", g.Steps(), "cause", cause, "duration", g.Duration().Round(time.Millisecond))
	if err := store.Save(); err != nil {
		log.Warn("saving stats", "file", store.Path(), "err", err)
	}
}
