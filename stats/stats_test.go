package stats

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func result(i, score int) Result {
	start := epoch.Add(time.Duration(i) * time.Minute)
	return Result{
		ID:        "round",
		Score:     score,
		Steps:     score * 10,
		Cause:     "self",
		StartTime: start,
		EndTime:   start.Add(time.Duration(score+1) * time.Second),
	}
}

func TestStoreAggregates(t *testing.T) {
	s := NewStore("")
	s.Add(result(0, 2))
	s.Add(result(1, 7))
	s.Add(result(2, 3))

	assert.Equal(t, 3, s.GamesPlayed())
	assert.Equal(t, 7, s.MaxScore())
	assert.InDelta(t, 4.0, s.AverageScore(), 1e-9)
	assert.InDelta(t, 3.0, s.MedianScore(), 1e-9)
	assert.InDelta(t, 5.0, s.AverageDuration(), 1e-9)

	records := s.Records()
	require.Len(t, records, 3)
	assert.Equal(t, 2, records[0].Score)
	assert.Equal(t, "self", records[0].Cause)
}

func TestStoreEmpty(t *testing.T) {
	s := NewStore("")
	assert.Zero(t, s.GamesPlayed())
	assert.Zero(t, s.MaxScore())
	assert.Zero(t, s.AverageScore())
	assert.Zero(t, s.MedianScore())
	assert.Zero(t, s.AverageDuration())
}

func TestStoreCompactsFullGroups(t *testing.T) {
	s := NewStore("")
	s.groupSize = 4
	for i := 0; i < 9; i++ {
		s.Add(result(i, i))
	}

	records := s.Records()
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, 1, first.CompressionIndex)
	assert.Equal(t, 4, first.GamesCount)
	assert.Equal(t, 0, first.MinScore)
	assert.Equal(t, 3, first.MaxScore)
	assert.InDelta(t, 1.5, first.AverageScore, 1e-9)
	assert.Equal(t, epoch, first.StartTime)

	assert.Equal(t, 1, records[1].CompressionIndex)
	assert.Equal(t, 0, records[2].CompressionIndex)
	assert.Equal(t, 8, records[2].Score)

	assert.Equal(t, 9, s.GamesPlayed())
	assert.Equal(t, 8, s.MaxScore())
	assert.InDelta(t, 4.0, s.AverageScore(), 1e-9)
}

func TestStoreCompactionCascades(t *testing.T) {
	s := NewStore("")
	s.groupSize = 2
	for i := 0; i < 4; i++ {
		s.Add(result(i, 1))
	}

	records := s.Records()
	require.Len(t, records, 1)
	assert.Equal(t, 2, records[0].CompressionIndex)
	assert.Equal(t, 4, records[0].GamesCount)
}

func TestStoreSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "stats.json")
	s := NewStore(path)
	s.Add(result(0, 5))
	s.Add(result(1, 9))
	require.NoError(t, s.Save())

	loaded, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.GamesPlayed())
	assert.Equal(t, 9, loaded.MaxScore())
	assert.Equal(t, s.Records(), loaded.Records())
}

func TestStoreLoadMissingFile(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Zero(t, s.GamesPlayed())
}

func TestStoreLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Open(path)
	assert.Error(t, err)
}

func TestStoreUsesPlayedDuration(t *testing.T) {
	s := NewStore("")
	r := result(0, 3)
	r.EndTime = r.StartTime.Add(time.Hour)
	r.Duration = 20 * time.Second
	s.Add(r)

	assert.InDelta(t, 20.0, s.AverageDuration(), 1e-9)
}
