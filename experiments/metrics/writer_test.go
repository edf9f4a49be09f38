package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestNewWriter(t *testing.T) {
	dir := t.TempDir()

	first, err := NewWriter(dir, "strength")
	require.NoError(t, err)
	second, err := NewWriter(dir, "strength")
	require.NoError(t, err)

	require.NotEqual(t, first.Dir(), second.Dir(), "Each run should get its own directory")
	require.Equal(t, filepath.Join(dir, "strength"), filepath.Dir(first.Dir()))
	_, err = uuid.Parse(filepath.Base(first.Dir()))
	require.NoError(t, err, "Run directory should be named by a uuid")
	require.DirExists(t, first.Dir())
}

func TestWriter(t *testing.T) {
	w, err := NewWriter(t.TempDir(), "test")
	require.NoError(t, err)

	t.Run("agent configs", func(t *testing.T) {
		configs := []AgentConfig{
			{ID: 0, Random: true},
			{ID: 1, Goroutines: 8, Duration: 10 * time.Millisecond, Cutoff: 50, Repetitions: 5, Heuristic: true},
		}

		require.NoError(t, w.WriteAgentConfigs(configs))

		rows := readCSV(t, filepath.Join(w.Dir(), "agent_configs.csv"))
		require.Len(t, rows, 3)
		require.Equal(t, "id", rows[0][0])
		require.Equal(t, []string{"0", "true", "0", "0s", "0", "0", "0", "false", "false", "false"}, rows[1])
		require.Equal(t, []string{"1", "false", "8", "10ms", "0", "50", "5", "false", "false", "true"}, rows[2])
	})

	t.Run("game records", func(t *testing.T) {
		start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		records := []GameRecord{{
			ID:     1,
			Agent1: 1,
			Agent2: 0,
			GameMetric: GameMetric{
				StartingPlayer: 1,
				Outcome:        "win",
				StartTime:      start,
				EndTime:        start.Add(time.Second),
				Duration:       time.Second,
				TotalMoves:     7,
			},
		}}

		require.NoError(t, w.WriteGameRecords(records))

		rows := readCSV(t, filepath.Join(w.Dir(), "game_records.csv"))
		require.Len(t, rows, 2)
		require.Equal(t, []string{"1", "1", "0", "1", "win", "2024-01-02T03:04:05Z", "2024-01-02T03:04:06Z", "1s", "7"}, rows[1])
	})

	t.Run("move records", func(t *testing.T) {
		records := []MoveRecord{{
			Game: 1,
			MoveMetric: MoveMetric{
				Step:   2,
				Player: 1,
				Move:   "c4",
				SearchMetric: SearchMetric{
					Goroutines:   4,
					Duration:     time.Millisecond,
					Episodes:     100,
					FullPlayouts: 90,
					RootVisits:   101,
					Children:     8,
					IsTreeReset:  true,
				},
			},
		}}

		require.NoError(t, w.WriteMoveRecords(records))

		rows := readCSV(t, filepath.Join(w.Dir(), "move_records.csv"))
		require.Len(t, rows, 2)
		require.Equal(t, []string{"1", "2", "1", "c4", "4", "1ms", "100", "90", "101", "8", "true"}, rows[1])
	})

	t.Run("empty records keep the header", func(t *testing.T) {
		require.NoError(t, w.WriteMoveRecords(nil))

		rows := readCSV(t, filepath.Join(w.Dir(), "move_records.csv"))
		require.Len(t, rows, 1)
	})
}

func TestCollector(t *testing.T) {
	c := NewCollector()
	c.Start(4, 50, 5)
	c.SetTreeReset(true)
	for i := 0; i < 3; i++ {
		c.AddEpisode()
	}
	c.AddFullPlayout()

	metric := c.Complete(4, 2)

	require.Equal(t, 4, metric.Goroutines)
	require.Equal(t, 50, metric.Cutoff)
	require.Equal(t, 5, metric.Repetitions)
	require.Equal(t, 3, metric.Episodes)
	require.Equal(t, 1, metric.FullPlayouts)
	require.Equal(t, 4, metric.RootVisits)
	require.Equal(t, 2, metric.Children)
	require.True(t, metric.IsTreeReset)

	c.Start(1, 1, 1)
	require.Zero(t, c.Complete(1, 0).Episodes, "Start should reset the counters")

	require.Equal(t, SearchMetric{}, NewDummyCollector().Complete(4, 2))
}
