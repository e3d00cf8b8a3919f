package ai

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/exp/rand"

	"grid-snake/game"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var ErrUnknownPilot = errors.New("unknown pilot")

// Rewards handed to the Q-table after each tick.
const (
	RewardFood   = 10.0
	RewardDeath  = -10.0
	RewardCloser = 1.0
	RewardAway   = -1.0
)

// QTable stores the Q value of each relative action per state key.
type QTable map[string][]float64

type QParams struct {
	LearningRate float64
	Discount     float64
	Epsilon      float64
	MinEpsilon   float64
	EpsilonDecay float64
}

func DefaultQParams() QParams {
	return QParams{
		LearningRate: 0.1,
		Discount:     0.9,
		Epsilon:      0.9,
		MinEpsilon:   0.01,
		EpsilonDecay: 0.995,
	}
}

// QAgent is a tabular Q-learning agent shared by every QPilot that trains
// it. It is safe for concurrent use.
type QAgent struct {
	mutex    sync.RWMutex
	params   QParams
	table    QTable
	epsilon  float64
	episodes int
}

func NewQAgent(params QParams) *QAgent {
	return &QAgent{
		params:  params,
		table:   make(QTable),
		epsilon: params.Epsilon,
	}
}

// Value returns Q(key, a); unseen states are worth zero.
func (q *QAgent) Value(key string, a Action) float64 {
	q.mutex.RLock()
	defer q.mutex.RUnlock()
	if row, ok := q.table[key]; ok {
		return row[a]
	}
	return 0
}

// Best returns the action with the highest Q value. Straight wins ties.
func (q *QAgent) Best(key string) Action {
	q.mutex.RLock()
	defer q.mutex.RUnlock()
	return q.best(key)
}

func (q *QAgent) best(key string) Action {
	row, ok := q.table[key]
	if !ok {
		return Straight
	}
	best := Straight
	for _, a := range actions {
		if row[a] > row[best] {
			best = a
		}
	}
	return best
}

// Choose is epsilon-greedy: a random action with probability epsilon,
// otherwise the best known one.
func (q *QAgent) Choose(key string, rng *rand.Rand) Action {
	q.mutex.RLock()
	defer q.mutex.RUnlock()
	if rng.Float64() < q.epsilon {
		return actions[rng.Intn(len(actions))]
	}
	return q.best(key)
}

// Update applies Q(s,a) += lr * (r + discount * max Q(s') - Q(s,a)).
// A terminal step has no future value.
func (q *QAgent) Update(key string, a Action, reward float64, next string, terminal bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	row := q.row(key)
	target := reward
	if !terminal {
		target += q.params.Discount * q.maxValue(next)
	}
	row[a] += q.params.LearningRate * (target - row[a])
}

func (q *QAgent) row(key string) []float64 {
	row, ok := q.table[key]
	if !ok {
		row = make([]float64, len(actions))
		q.table[key] = row
	}
	return row
}

func (q *QAgent) maxValue(key string) float64 {
	row, ok := q.table[key]
	if !ok {
		return 0
	}
	best := math.Inf(-1)
	for _, v := range row {
		best = max(best, v)
	}
	return best
}

// EndEpisode counts a finished round and decays epsilon.
func (q *QAgent) EndEpisode() {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	q.episodes++
	q.epsilon = max(q.params.MinEpsilon, q.params.Epsilon*math.Pow(q.params.EpsilonDecay, float64(q.episodes)))
}

func (q *QAgent) Epsilon() float64 {
	q.mutex.RLock()
	defer q.mutex.RUnlock()
	return q.epsilon
}

func (q *QAgent) Episodes() int {
	q.mutex.RLock()
	defer q.mutex.RUnlock()
	return q.episodes
}

// States is the number of distinct states seen so far.
func (q *QAgent) States() int {
	q.mutex.RLock()
	defer q.mutex.RUnlock()
	return len(q.table)
}

type agentState struct {
	QTable   QTable  `json:"qtable"`
	Epsilon  float64 `json:"epsilon"`
	Episodes int     `json:"episodes"`
}

// Save writes the table, epsilon and episode count to path.
func (q *QAgent) Save(path string) error {
	q.mutex.RLock()
	data, err := json.MarshalIndent(agentState{
		QTable:   q.table,
		Epsilon:  q.epsilon,
		Episodes: q.episodes,
	}, "", "  ")
	q.mutex.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal q-table: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create q-table directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write q-table: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace q-table: %w", err)
	}
	return nil
}

// LoadQAgent restores an agent saved at path. A missing file yields a fresh
// agent.
func LoadQAgent(path string, params QParams) (*QAgent, error) {
	q := NewQAgent(params)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return q, nil
		}
		return nil, fmt.Errorf("read q-table: %w", err)
	}

	var state agentState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode q-table %s: %w", path, err)
	}
	for key, row := range state.QTable {
		if len(row) != len(actions) {
			return nil, fmt.Errorf("decode q-table %s: state %q has %d values", path, key, len(row))
		}
	}
	if state.QTable != nil {
		q.table = state.QTable
		q.epsilon = state.Epsilon
		q.episodes = state.Episodes
	}
	return q, nil
}

// StateKey encodes what a QPilot sees: where the food lies relative to the
// heading (ahead/behind, left/right) and whether straight, left or right is
// deadly.
func StateKey(g *game.Game) string {
	snake := g.Snake()
	heading := snake.Direction
	head := snake.Head()

	ahead, side := 0, 0
	if food, ok := g.Food(); ok {
		d := g.Offset(head, food)
		fwd := heading.Vector()
		right := heading.TurnRight().Vector()
		ahead = sign(d.X*fwd.X + d.Y*fwd.Y)
		side = sign(d.X*right.X + d.Y*right.Y)
	}
	return fmt.Sprintf("f%d:r%d:d%d%d%d", ahead, side,
		bit(g.IsDeadly(heading)),
		bit(g.IsDeadly(heading.TurnLeft())),
		bit(g.IsDeadly(heading.TurnRight())))
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

func bit(b bool) int {
	if b {
		return 1
	}
	return 0
}

type transition struct {
	key    string
	action Action
	score  int
	dist   int
}

// QPilot plays one round at a time with a shared QAgent, feeding it a
// reward after every tick.
type QPilot struct {
	agent *QAgent
	rng   *rand.Rand
	last  *transition
}

// NewQPilot steers with agent; a nil rng gets a time seeded source.
func NewQPilot(agent *QAgent, rng *rand.Rand) *QPilot {
	if rng == nil {
		rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	return &QPilot{agent: agent, rng: rng}
}

func (p *QPilot) Agent() *QAgent {
	return p.agent
}

func (p *QPilot) Steer(g *game.Game) Action {
	p.last = nil
	if g.State() != game.Running || len(g.Snake().Pending()) > 0 {
		return Straight
	}

	key := StateKey(g)
	a := p.agent.Choose(key, p.rng)
	if a != Straight {
		g.Turn(a.Apply(g.Snake().Direction))
	}
	p.last = &transition{key: key, action: a, score: g.Score(), dist: foodDistance(g)}
	return a
}

// Learn rewards the action chosen by the last Steer with what the tick did.
func (p *QPilot) Learn(g *game.Game) {
	if p.last == nil {
		return
	}
	t := p.last
	p.last = nil

	var reward float64
	switch {
	case g.State() == game.Over:
		reward = RewardDeath
	case g.Score() > t.score:
		reward = RewardFood
	case foodDistance(g) < t.dist:
		reward = RewardCloser
	default:
		reward = RewardAway
	}

	if g.Finished() {
		p.agent.Update(t.key, t.action, reward, "", true)
		return
	}
	p.agent.Update(t.key, t.action, reward, StateKey(g), false)
}

func foodDistance(g *game.Game) int {
	food, ok := g.Food()
	if !ok {
		return 0
	}
	return g.Distance(g.Snake().Head(), food)
}

// New builds the autopilot of the given kind. The q kind needs an agent.
func New(kind string, agent *QAgent, rng *rand.Rand) (Autopilot, error) {
	switch kind {
	case KindGreedy:
		return NewPilot(), nil
	case KindQ:
		if agent == nil {
			return nil, errors.New("q pilot needs an agent")
		}
		return NewQPilot(agent, rng), nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownPilot, kind)
}

// ValidKind reports whether New knows the pilot kind.
func ValidKind(kind string) bool {
	return kind == KindGreedy || kind == KindQ
}
