package benchmarks

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/zeu5/maze-mdp/mdp"
	"github.com/zeu5/maze-mdp/pacman"
)

var titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("172"))

// Solve plans the first move on a layout and prints the utilities
func Solve(layoutName, layoutFile string, showRewards bool) error {
	l, err := loadLayout(layoutName, layoutFile)
	if err != nil {
		return err
	}
	agent := mdp.NewAgent(append(agentOptions(false), mdp.WithLogger(logger.WithPrefix("mdp")))...)
	if err := agent.RegisterInitialState(mdp.LayoutOf(l)); err != nil {
		return err
	}

	game := pacman.NewGame(l, 0)
	decision, err := agent.Decide(game.Observation())
	if err != nil {
		return err
	}

	profile := agent.Profile()
	fmt.Println(titleStyle.Render(fmt.Sprintf("%s  gamma=%.2f cost=%.2f radius=%d", profile.Name, profile.Discount, profile.MovementCost, profile.HazardRadius)))
	fmt.Print(game.String())
	if showRewards {
		fmt.Println(titleStyle.Render("rewards"))
		fmt.Println(agent.RenderValues(decision.Rewards, game.Agent()))
	}
	fmt.Println(titleStyle.Render("utilities"))
	fmt.Println(agent.Render(game.Agent()))
	fmt.Printf("action=%s sweeps=%d residual=%.2g\n", decision.Action, decision.Stats.Sweeps, decision.Stats.Residual)
	return nil
}

func SolveCommand() *cobra.Command {
	var layout, layoutFile string
	var showRewards bool
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Plan the first move on a layout and show the utility map",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Solve(layout, layoutFile, showRewards)
		},
	}
	cmd.Flags().StringVarP(&layout, "layout", "l", "mediumClassic", "Builtin layout to solve")
	cmd.Flags().StringVar(&layoutFile, "layout-file", "", "Layout file, overrides --layout")
	cmd.Flags().BoolVar(&showRewards, "rewards", false, "Also show the reward map")
	return cmd
}
