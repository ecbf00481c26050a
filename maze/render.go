package maze

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	wallStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("172"))
	agentStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("226"))
	positiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	negativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	neutralStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// RenderValues draws one value per traversable cell, top row first. Walls are
// drawn as blocks and the agent cell is highlighted.
func RenderValues(g *Grid, values map[Position]float64, agent Position) string {
	const cellWidth = 7
	var b strings.Builder
	for y := g.Height() - 1; y >= 0; y-- {
		for x := 0; x < g.Width(); x++ {
			p := Position{X: x, Y: y}
			if g.Marker(x, y) == Wall {
				b.WriteString(wallStyle.Render(strings.Repeat("█", cellWidth)))
				continue
			}
			v, ok := values[p]
			text := fmt.Sprintf("%*s", cellWidth, "?")
			if ok {
				text = fmt.Sprintf("%*.2f", cellWidth, v)
			}
			switch {
			case p == agent:
				b.WriteString(agentStyle.Render(text))
			case !ok || v == 0:
				b.WriteString(neutralStyle.Render(text))
			case v > 0:
				b.WriteString(positiveStyle.Render(text))
			default:
				b.WriteString(negativeStyle.Render(text))
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
