// Package stats keeps the score history of finished rounds, folding old
// rounds into aggregate records so the file stays small.
package stats

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// GroupSize is how many records of one compression level fold into one
// record of the next level.
const GroupSize = 100

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// GameRecord is one finished round, or an aggregate of many.
type GameRecord struct {
	ID               string    `json:"id,omitempty"`
	StartTime        time.Time `json:"startTime"`
	EndTime          time.Time `json:"endTime"`
	Score            int       `json:"score"`
	Steps            int       `json:"steps"`
	Cause            string    `json:"cause,omitempty"`
	CompressionIndex int       `json:"compressionIndex"` // 0 for single rounds
	GamesCount       int       `json:"gamesCount"`
	AverageScore     float64   `json:"averageScore"`
	MedianScore      float64   `json:"medianScore"`
	MaxScore         int       `json:"maxScore"`
	MinScore         int       `json:"minScore"`
	AverageDuration  float64   `json:"averageDuration"`
	MaxDuration      float64   `json:"maxDuration"`
	MinDuration      float64   `json:"minDuration"`
}

// Result describes a finished round handed to Add.
type Result struct {
	ID        string
	Score     int
	Steps     int
	Cause     string
	StartTime time.Time
	EndTime   time.Time
	// Duration is the played time. Zero falls back to EndTime - StartTime.
	Duration time.Duration
}

// Store is safe for concurrent use.
type Store struct {
	path      string
	groupSize int
	mutex     sync.RWMutex
	games     []GameRecord
}

// NewStore returns an empty store persisted at path. An empty path keeps
// the history in memory only.
func NewStore(path string) *Store {
	return &Store{
		path:      path,
		groupSize: GroupSize,
		games:     make([]GameRecord, 0),
	}
}

// Open creates a store and loads any history already at path.
func Open(path string) (*Store, error) {
	s := NewStore(path)
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Path() string {
	return s.path
}

// Add records a finished round.
func (s *Store) Add(r Result) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	played := r.Duration
	if played <= 0 {
		played = r.EndTime.Sub(r.StartTime)
	}
	duration := played.Seconds()
	s.games = append(s.games, GameRecord{
		ID:              r.ID,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		Score:           r.Score,
		Steps:           r.Steps,
		Cause:           r.Cause,
		GamesCount:      1,
		AverageScore:    float64(r.Score),
		MedianScore:     float64(r.Score),
		MaxScore:        r.Score,
		MinScore:        r.Score,
		AverageDuration: duration,
		MaxDuration:     duration,
		MinDuration:     duration,
	})
	s.compact()
}

// compact folds every full group of same-level records into one record of
// the next level, cascading upwards.
func (s *Store) compact() {
	for level := 0; level <= topLevel(s.games); level++ {
		var same, rest []GameRecord
		for _, g := range s.games {
			if g.CompressionIndex == level {
				same = append(same, g)
			} else {
				rest = append(rest, g)
			}
		}
		if len(same) < s.groupSize {
			continue
		}

		sort.SliceStable(same, func(i, j int) bool {
			return same[i].StartTime.Before(same[j].StartTime)
		})
		i := 0
		for ; i+s.groupSize <= len(same); i += s.groupSize {
			rest = append(rest, fold(same[i:i+s.groupSize], level+1))
		}
		s.games = append(rest, same[i:]...)
	}
}

func topLevel(games []GameRecord) int {
	top := 0
	for _, g := range games {
		top = max(top, g.CompressionIndex)
	}
	return top
}

func fold(group []GameRecord, level int) GameRecord {
	out := GameRecord{
		StartTime:        group[0].StartTime,
		EndTime:          group[0].EndTime,
		CompressionIndex: level,
		MaxScore:         group[0].MaxScore,
		MinScore:         group[0].MinScore,
		MaxDuration:      group[0].MaxDuration,
		MinDuration:      group[0].MinDuration,
	}
	var totalScore, totalDuration float64
	medians := make([]float64, 0, len(group))
	for _, g := range group {
		out.MaxScore = max(out.MaxScore, g.MaxScore)
		out.MinScore = min(out.MinScore, g.MinScore)
		out.MaxDuration = max(out.MaxDuration, g.MaxDuration)
		out.MinDuration = min(out.MinDuration, g.MinDuration)
		if g.StartTime.Before(out.StartTime) {
			out.StartTime = g.StartTime
		}
		if g.EndTime.After(out.EndTime) {
			out.EndTime = g.EndTime
		}
		totalScore += g.AverageScore * float64(g.GamesCount)
		totalDuration += g.AverageDuration * float64(g.GamesCount)
		out.GamesCount += g.GamesCount
		out.Steps += g.Steps
		for i := 0; i < g.GamesCount; i++ {
			medians = append(medians, g.MedianScore)
		}
	}
	out.AverageScore = totalScore / float64(out.GamesCount)
	out.AverageDuration = totalDuration / float64(out.GamesCount)
	out.MedianScore = median(medians)
	out.Score = out.MaxScore
	return out
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sort.Float64s(values)
	n := len(values)
	if n%2 == 0 {
		return (values[n/2-1] + values[n/2]) / 2
	}
	return values[n/2]
}

// Records returns a copy of the history, oldest first.
func (s *Store) Records() []GameRecord {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]GameRecord, len(s.games))
	copy(out, s.games)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

func (s *Store) GamesPlayed() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	total := 0
	for _, g := range s.games {
		total += g.GamesCount
	}
	return total
}

func (s *Store) AverageScore() float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var total float64
	var count int
	for _, g := range s.games {
		total += g.AverageScore * float64(g.GamesCount)
		count += g.GamesCount
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// MedianScore weights each record's median by the rounds it covers.
func (s *Store) MedianScore() float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	values := make([]float64, 0)
	for _, g := range s.games {
		for i := 0; i < g.GamesCount; i++ {
			values = append(values, g.MedianScore)
		}
	}
	return median(values)
}

// MaxScore is the high score.
func (s *Store) MaxScore() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	best := 0
	for _, g := range s.games {
		best = max(best, g.MaxScore)
	}
	return best
}

// AverageDuration is in seconds.
func (s *Store) AverageDuration() float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var total float64
	var count int
	for _, g := range s.games {
		total += g.AverageDuration * float64(g.GamesCount)
		count += g.GamesCount
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// Save writes the history to the store path.
func (s *Store) Save() error {
	if s.path == "" {
		return nil
	}
	s.mutex.RLock()
	data, err := json.MarshalIndent(s.games, "", "  ")
	s.mutex.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create stats directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write stats: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace stats: %w", err)
	}
	return nil
}

// Load replaces the history with the file contents. A missing file leaves
// the store empty.
func (s *Store) Load() error {
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read stats: %w", err)
	}

	var games []GameRecord
	if err := json.Unmarshal(data, &games); err != nil {
		return fmt.Errorf("decode stats %s: %w", s.path, err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.games = games
	s.compact()
	return nil
}
