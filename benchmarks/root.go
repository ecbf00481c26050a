package benchmarks

import (
	"errors"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/zeu5/maze-mdp/mdp"
)

const (
	redisAddrEnv = "MAZE_MDP_REDIS_ADDR"
	listenEnv    = "MAZE_MDP_LISTEN"
)

var (
	episodes     int
	horizon      int
	saveFile     string
	runs         int
	logLevel     string
	profilesFile string
	convergence  string
	cpuprofile   string
	memprofile   string

	logger   = log.NewWithOptions(os.Stderr, log.Options{Prefix: "maze-mdp"})
	profiles = mdp.DefaultProfiles()
)

func GetRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           "maze-mdp",
		Short:         "Value iteration agent for maze games",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup()
		},
	}
	rootCommand.PersistentFlags().IntVarP(&episodes, "episodes", "e", 100, "Number of episodes to run")
	rootCommand.PersistentFlags().IntVar(&horizon, "horizon", 500, "Horizon of each episode")
	rootCommand.PersistentFlags().StringVarP(&saveFile, "save", "s", "results", "Folder for the result data, its existing contents are deleted first")
	rootCommand.PersistentFlags().IntVar(&runs, "runs", 1, "Number of experiment runs")
	rootCommand.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCommand.PersistentFlags().StringVar(&profilesFile, "profiles", "", "YAML file with additional maze profiles")
	rootCommand.PersistentFlags().StringVar(&convergence, "convergence", string(mdp.SupNorm), "Convergence test of value iteration (sup-norm, legacy-sum)")
	rootCommand.PersistentFlags().StringVar(&cpuprofile, "cpuprofile", "", "write cpu profile to `file` in the save folder")
	rootCommand.PersistentFlags().StringVar(&memprofile, "memprofile", "", "write memory profile to `file` in the save folder")
	// adding the subcommands here
	rootCommand.AddCommand(PlayCommand())
	rootCommand.AddCommand(SolveCommand())
	rootCommand.AddCommand(ServeCommand())
	rootCommand.AddCommand(LayoutsCommand())
	return rootCommand
}

// setup loads .env, the log level and the profile table
func setup() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	logger.SetLevel(level)

	if _, err := mdp.ParseConvergence(convergence); err != nil {
		return err
	}
	if profilesFile != "" {
		table, err := mdp.LoadProfiles(profilesFile)
		if err != nil {
			return err
		}
		profiles = table
	}
	return nil
}

func agentOptions(warm bool) []mdp.Option {
	opts := []mdp.Option{
		mdp.WithProfiles(profiles),
		mdp.WithConvergence(mdp.Convergence(convergence)),
	}
	if warm {
		opts = append(opts, mdp.WithWarmStart())
	}
	return opts
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
