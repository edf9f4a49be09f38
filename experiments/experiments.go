package experiments

import (
	"context"
	"fmt"
	"selfplay/config"
	"selfplay/engine"
	"selfplay/experiments/metrics"
	"selfplay/game"
	"selfplay/searcher"
	"selfplay/searcher/agent"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// Run plays the experiment named by cfg and stores its records as CSV files.
// It returns the run directory.
func Run(ctx context.Context, cfg *config.Config) (string, error) {
	var configs []metrics.AgentConfig
	var matchUps [][]metrics.AgentConfig
	switch cfg.Experiment {
	case "strength":
		configs, matchUps = strength(cfg)
	case "parallelization":
		configs, matchUps = parallelization(cfg)
	case "cutoff":
		configs, matchUps = cutoff(cfg)
	default:
		return "", fmt.Errorf("%w: unknown experiment %q", config.ErrInvalid, cfg.Experiment)
	}
	return runExperiment(ctx, cfg, configs, matchUps)
}

func searchConfig(cfg *config.Config, id int) metrics.AgentConfig {
	return metrics.AgentConfig{
		ID:          id,
		Goroutines:  cfg.Goroutines,
		Duration:    cfg.Duration,
		Episodes:    cfg.Episodes,
		Cutoff:      cfg.Cutoff,
		Repetitions: cfg.Repetitions,
		Noise:       cfg.Noise,
		TreeReuse:   cfg.TreeReuse,
		Heuristic:   cfg.Heuristic,
	}
}

// strength pairs the configured search agent against a random agent.
func strength(cfg *config.Config) ([]metrics.AgentConfig, [][]metrics.AgentConfig) {
	baseline := metrics.AgentConfig{ID: 0, Random: true}
	search := searchConfig(cfg, 1)
	return []metrics.AgentConfig{baseline, search}, [][]metrics.AgentConfig{{search, baseline}}
}

// parallelization pairs agents with 1, 2, 4, ... goroutines, up to the
// configured count, against the baseline sequential agent.
func parallelization(cfg *config.Config) ([]metrics.AgentConfig, [][]metrics.AgentConfig) {
	baseline := searchConfig(cfg, 0)
	baseline.Goroutines = 1

	var counts []int
	for g := 1; g < cfg.Goroutines; g *= 2 {
		counts = append(counts, g)
	}
	counts = append(counts, cfg.Goroutines)

	configs := []metrics.AgentConfig{baseline}
	matchUps := [][]metrics.AgentConfig{}
	for i, g := range counts {
		config := searchConfig(cfg, i+1)
		config.Goroutines = g
		configs = append(configs, config)
		matchUps = append(matchUps, []metrics.AgentConfig{config, baseline})
	}
	return configs, matchUps
}

// cutoff pairs agents with shorter rollouts against the full playout agent.
func cutoff(cfg *config.Config) ([]metrics.AgentConfig, [][]metrics.AgentConfig) {
	baseline := searchConfig(cfg, 0)
	baseline.Cutoff = searcher.MaxCutoff

	full := cfg.Cutoff
	if full <= 0 {
		full = searcher.MaxCutoff
	}

	configs := []metrics.AgentConfig{baseline}
	matchUps := [][]metrics.AgentConfig{}
	for i, c := range []int{max(1, full/4), max(1, full/2), full} {
		config := searchConfig(cfg, i+1)
		config.Cutoff = c
		configs = append(configs, config)
		matchUps = append(matchUps, []metrics.AgentConfig{config, baseline})
	}
	return configs, matchUps
}

func runExperiment(ctx context.Context, cfg *config.Config, configs []metrics.AgentConfig, matchUps [][]metrics.AgentConfig) (string, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	seeds := rand.New(rand.NewSource(seed))
	rules := game.NewRules(cfg.Rows, cfg.Cols, cfg.InARow)

	// Run a number of games for each matchup
	count := 0
	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}

	log.Info().Msgf("starting %s experiment...", cfg.Experiment)

	for mi, matchup := range matchUps {
		config1, config2 := matchup[0], matchup[1]
		wins := 0

		log.Info().Msgf("starting matchup %d of %d between agent1=%+v and agent2=%+v...", mi+1, len(matchUps), config1, config2)

		for i := 0; i < cfg.Games; i++ {
			// Agents take turns starting
			starting := i % 2
			agents := []agent.Agent{createAgent(config1, seeds), createAgent(config2, seeds)}
			if starting == 1 {
				agents[0], agents[1] = agents[1], agents[0]
			}

			e := engine.LocalEngine(game.NewBoard(rules, game.First), agents)
			outcome, gameMetric, moveMetrics, err := e.Run(ctx)
			if err != nil {
				return "", fmt.Errorf("matchup %d game %d: %w", mi+1, i+1, err)
			}

			count++
			gameMetric.StartingPlayer = starting
			gameRecords = append(gameRecords, metrics.GameRecord{
				ID:         count,
				Agent1:     config1.ID,
				Agent2:     config2.ID,
				GameMetric: gameMetric,
			})
			for _, mm := range moveMetrics {
				// Player indexes follow the matchup, not the turn order
				mm.Player = (mm.Player + starting) % 2
				moveRecords = append(moveRecords, metrics.MoveRecord{
					Game:       count,
					MoveMetric: mm,
				})
			}
			if (starting == 0 && outcome == game.Win) || (starting == 1 && outcome == game.Loss) {
				wins++
			}

			log.Info().Msgf("completed matchup %d of %d game %d: %v for the starting agent", mi+1, len(matchUps), i+1, outcome)
		}
		log.Info().Msgf("completed matchup %d of %d, agent1 won %d of %d", mi+1, len(matchUps), wins, cfg.Games)
	}

	log.Info().Msgf("completed %s experiment", cfg.Experiment)

	return store(cfg, configs, gameRecords, moveRecords)
}

func store(cfg *config.Config, configs []metrics.AgentConfig, gameRecords []metrics.GameRecord, moveRecords []metrics.MoveRecord) (string, error) {
	writer, err := metrics.NewWriter(cfg.OutputDir, cfg.Experiment)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}

	if err := writer.WriteAgentConfigs(configs); err != nil {
		return "", fmt.Errorf("failed to store agent configs: %w", err)
	}
	log.Info().Msg("stored agent configs")

	if err := writer.WriteGameRecords(gameRecords); err != nil {
		return "", fmt.Errorf("failed to store game records: %w", err)
	}
	log.Info().Msg("stored game records")

	if err := writer.WriteMoveRecords(moveRecords); err != nil {
		return "", fmt.Errorf("failed to store move records: %w", err)
	}
	log.Info().Msg("stored move records")

	return writer.Dir(), nil
}

func createAgent(config metrics.AgentConfig, seeds *rand.Rand) agent.Agent {
	if config.Random {
		return agent.NewRandomAgent(seeds.Uint64())
	}

	options := []searcher.Option{searcher.WithSeed(seeds.Uint64())}
	if config.Episodes > 0 {
		options = append(options, searcher.WithEpisodes(config.Episodes))
	}
	if config.Duration > 0 {
		options = append(options, searcher.WithDuration(config.Duration))
	}
	if config.Cutoff > 0 {
		options = append(options, searcher.WithCutoff(config.Cutoff))
	}
	if config.Repetitions > 0 {
		options = append(options, searcher.WithRepetitions(config.Repetitions))
	}
	if config.TreeReuse {
		options = append(options, searcher.WithTreeReuse())
	}
	if config.Heuristic {
		options = append(options, searcher.WithEvaluationFn(game.EvaluateLines), searcher.WithPriorFn(game.UniformPrior))
	}
	options = append(options, searcher.WithMetrics())

	mcts := searcher.NewMCTS(config.Goroutines, options...)
	opponent := agent.NewRandomAgent(seeds.Uint64())
	if config.Noise {
		return agent.NewTrainingAgent(mcts, opponent)
	}
	return agent.NewEvaluationAgent(mcts, opponent)
}
