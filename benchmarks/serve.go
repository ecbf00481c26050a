package benchmarks

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/zeu5/maze-mdp/mdp"
	"github.com/zeu5/maze-mdp/server"
)

func ServeCommand() *cobra.Command {
	var listen string
	var warmStart bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve agent decisions over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("listen") {
				listen = envOr(listenEnv, listen)
			}
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			s := server.New(server.Config{
				Profiles:    profiles,
				Convergence: mdp.Convergence(convergence),
				WarmStart:   warmStart,
				Logger:      logger.WithPrefix("server"),
			})
			return s.Serve(ctx, listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", ":8080", "Address to listen on (default $"+listenEnv+")")
	cmd.Flags().BoolVar(&warmStart, "warm-start", false, "Seed value iteration with the utilities of the previous tick")
	return cmd
}
