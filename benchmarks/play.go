package benchmarks

import (
	"context"
	"os"
	"os/signal"
	"path"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/zeu5/maze-mdp/mdp"
	"github.com/zeu5/maze-mdp/pacman"
	"github.com/zeu5/maze-mdp/policies"
	"github.com/zeu5/maze-mdp/types"
)

type playConfig struct {
	layout      string
	layoutFile  string
	seed        uint64
	redisAddr   string
	warmStart   bool
	baselines   bool
	timeout     time.Duration
	recordTrace bool
}

// Play compares the MDP agent against the exploration baselines on one layout
func Play(ctx context.Context, cfg playConfig) error {
	l, err := loadLayout(cfg.layout, cfg.layoutFile)
	if err != nil {
		return err
	}

	mdpPolicy, err := policies.NewMDPPolicy(mdp.LayoutOf(l), logger.WithPrefix("mdp"), agentOptions(false)...)
	if err != nil {
		return err
	}

	c, err := types.NewComparison(&types.ComparisonConfig{
		Runs:       runs,
		Episodes:   episodes,
		Horizon:    horizon,
		RecordPath: saveFile,
		Timeout:    cfg.timeout,
		// record flags
		RecordTraces: cfg.recordTrace,
		RecordTimes:  false,
		RecordPolicy: true,
		Logger:       logger.WithPrefix("experiment"),
	})
	if err != nil {
		return err
	}
	stopProfiling := startProfiling()
	defer stopProfiling()

	scoreComparators := []types.Comparator{pacman.ScoreComparator(path.Join(saveFile, "score"))}
	if cfg.redisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr: cfg.redisAddr,
		})
		defer client.Close()
		scoreComparators = append(scoreComparators, pacman.RedisComparator(client, logger.WithPrefix("redis")))
	}
	c.AddAnalysis("Score", pacman.NewScoreAnalyzer(), types.ChainComparators(scoreComparators...))
	c.AddAnalysis("Visits", pacman.NewVisitAnalyzer(l), pacman.VisitComparator(path.Join(saveFile, "visits")))
	c.AddAnalysis("Coverage", types.NewCoverageAnalyzer(pacman.PositionAbstractor()), types.CoveragePlotter(path.Join(saveFile, "coverage")))

	c.AddExperiment(types.NewExperiment("MDP", mdpPolicy, pacman.NewEnvironment(l, cfg.seed)))
	if cfg.warmStart {
		warm, err := policies.NewMDPPolicy(mdp.LayoutOf(l), logger.WithPrefix("mdp-warm"), agentOptions(true)...)
		if err != nil {
			return err
		}
		c.AddExperiment(types.NewExperiment("MDP-Warm", warm, pacman.NewEnvironment(l, cfg.seed)))
	}
	if cfg.baselines {
		c.AddExperiment(types.NewExperiment(
			"Random",
			types.NewSeededRandomPolicy(cfg.seed),
			pacman.NewEnvironment(l, cfg.seed),
		))
		c.AddExperiment(types.NewExperiment(
			"NegReward",
			types.NewSoftMaxNegPolicy(0.3, 0.7, cfg.seed),
			pacman.NewEnvironment(l, cfg.seed),
		))
		c.AddExperiment(types.NewExperiment(
			"Exploration",
			policies.NewBonusPolicyGreedy(0.1, 0.99, 0.02, cfg.seed),
			pacman.NewEnvironment(l, cfg.seed),
		))
	}

	results, err := c.Run(ctx)
	for run, stats := range results {
		for name, s := range stats {
			logger.Info("experiment done", "run", run, "experiment", name, "episodes", s.Episodes,
				"timesteps", s.Timesteps, "errors", s.Errors, "timeouts", s.TimedOut, "aborted", s.Aborted)
		}
	}
	return err
}

func PlayCommand() *cobra.Command {
	cfg := playConfig{}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play games with the MDP agent and compare it to exploration baselines",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()
			if !cmd.Flags().Changed("redis") {
				cfg.redisAddr = envOr(redisAddrEnv, "")
			}
			return Play(ctx, cfg)
		},
	}
	cmd.PersistentFlags().StringVarP(&cfg.layout, "layout", "l", "smallGrid", "Builtin layout to play on")
	cmd.PersistentFlags().StringVar(&cfg.layoutFile, "layout-file", "", "Layout file, overrides --layout")
	cmd.PersistentFlags().Uint64Var(&cfg.seed, "seed", 1, "Seed of the ghosts and the random baselines")
	cmd.PersistentFlags().StringVar(&cfg.redisAddr, "redis", "", "Redis address to publish run summaries to (default $"+redisAddrEnv+")")
	cmd.PersistentFlags().BoolVar(&cfg.warmStart, "warm-start", false, "Also play an agent seeding value iteration with the previous utilities")
	cmd.PersistentFlags().BoolVar(&cfg.baselines, "baselines", true, "Play the random and exploration baselines")
	cmd.PersistentFlags().DurationVar(&cfg.timeout, "timeout", 0, "Timeout of each episode, 0 for none")
	cmd.PersistentFlags().BoolVar(&cfg.recordTrace, "record-traces", false, "Record every episode trace as JSON lines")
	return cmd
}
