package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// AgentConfig describes one agent of an experiment. Random agents ignore the
// search fields.
type AgentConfig struct {
	ID          int
	Random      bool
	Goroutines  int
	Duration    time.Duration
	Episodes    int
	Cutoff      int
	Repetitions int
	Noise       bool
	TreeReuse   bool
	Heuristic   bool // Line evaluation instead of rollouts
}

type GameRecord struct {
	ID     int
	Agent1 int // AgentConfig.ID
	Agent2 int // AgentConfig.ID
	GameMetric
}

type MoveRecord struct {
	Game int // GameRecord.ID
	MoveMetric
}

type Writer struct {
	baseDir string
}

// NewWriter creates a fresh run directory under dir/name, named by a random
// run id.
func NewWriter(dir, name string) (*Writer, error) {
	baseDir := filepath.Join(dir, name, uuid.NewString())
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteAgentConfigs(configs []AgentConfig) error {
	header := []string{"id", "random", "goroutines", "duration", "episodes", "cutoff", "repetitions", "noise", "tree_reuse", "heuristic"}
	rows := make([][]string, len(configs))
	for i, config := range configs {
		rows[i] = []string{
			strconv.Itoa(config.ID),
			strconv.FormatBool(config.Random),
			strconv.Itoa(config.Goroutines),
			config.Duration.String(),
			strconv.Itoa(config.Episodes),
			strconv.Itoa(config.Cutoff),
			strconv.Itoa(config.Repetitions),
			strconv.FormatBool(config.Noise),
			strconv.FormatBool(config.TreeReuse),
			strconv.FormatBool(config.Heuristic),
		}
	}
	return w.write("agent_configs.csv", header, rows)
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	header := []string{"id", "agent1", "agent2", "starting_player", "outcome", "start_time", "end_time", "duration", "total_moves"}
	rows := make([][]string, len(records))
	for i, record := range records {
		rows[i] = []string{
			strconv.Itoa(record.ID),
			strconv.Itoa(record.Agent1),
			strconv.Itoa(record.Agent2),
			strconv.Itoa(record.StartingPlayer),
			record.Outcome,
			record.StartTime.Format(time.RFC3339Nano),
			record.EndTime.Format(time.RFC3339Nano),
			record.Duration.String(),
			strconv.Itoa(record.TotalMoves),
		}
	}
	return w.write("game_records.csv", header, rows)
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	header := []string{"game", "step", "player", "move", "goroutines", "duration", "episodes", "full_playouts", "root_visits", "children", "is_tree_reset"}
	rows := make([][]string, len(records))
	for i, record := range records {
		rows[i] = []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Step),
			strconv.Itoa(record.Player),
			record.Move,
			strconv.Itoa(record.Goroutines),
			record.Duration.String(),
			strconv.Itoa(record.Episodes),
			strconv.Itoa(record.FullPlayouts),
			strconv.Itoa(record.RootVisits),
			strconv.Itoa(record.Children),
			strconv.FormatBool(record.IsTreeReset),
		}
	}
	return w.write("move_records.csv", header, rows)
}

func (w *Writer) write(name string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s rows: %w", name, err)
	}
	return nil
}
