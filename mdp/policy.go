package mdp

import "github.com/zeu5/maze-mdp/maze"

// NoActionBaseline is the utility an action has to beat to be chosen over Stop
const NoActionBaseline = -100.0

// SelectAction picks the legal action whose destination has the greatest
// utility. Ties go to the action listed first in legal. Destinations outside
// the utility map are never chosen, and when no action beats
// NoActionBaseline the result is maze.Stop.
func SelectAction(pos maze.Position, legal []maze.Direction, utilities Values) maze.Direction {
	choice, best := maze.Stop, NoActionBaseline
	for _, action := range legal {
		if action == maze.Stop {
			continue
		}
		u, ok := utilities[pos.Move(action)]
		if ok && u > best {
			choice, best = action, u
		}
	}
	return choice
}
