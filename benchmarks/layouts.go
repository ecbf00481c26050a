package benchmarks

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zeu5/maze-mdp/maze"
)

func LayoutsCommand() *cobra.Command {
	var show bool
	cmd := &cobra.Command{
		Use:   "layouts",
		Short: "List the builtin layouts and the profile each resolves to",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "LAYOUT\tSIZE\tCELLS\tPROFILE")
			for _, name := range maze.BuiltinLayouts() {
				l, err := maze.BuiltinLayout(name)
				if err != nil {
					return err
				}
				g, err := maze.NewGrid(l.Corners(), l.Walls)
				if err != nil {
					return err
				}
				cells := g.TraversableCells().Len()
				profile := "-"
				if p, err := profiles.Resolve(g.Width(), g.Height(), cells); err == nil {
					profile = p.Name
				}
				fmt.Fprintf(w, "%s\t%dx%d\t%d\t%s\n", name, g.Width(), g.Height(), cells, profile)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if show {
				for _, name := range maze.BuiltinLayouts() {
					l, _ := maze.BuiltinLayout(name)
					g, _ := maze.NewGrid(l.Corners(), l.Walls)
					g.RefreshConsumables(l.Food)
					g.RefreshHazards(l.Ghosts)
					fmt.Printf("\n%s\n%s", name, g.String())
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&show, "show", false, "Print the marker overlay of every layout")
	return cmd
}
