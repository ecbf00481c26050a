package mdp

import "github.com/zeu5/maze-mdp/maze"

// Rewards assigns a scalar reward to every traversable cell.
//
// Every cell starts at -movementCost. Cells holding a consumable are
// overwritten with 1/len(consumables), so the per item incentive grows as the
// maze is cleared. Finally, for every cell holding an active hazard, visited
// in the enumeration order of cells, all cells within hazardRadius
// (Manhattan, inclusive) are overwritten with -1/(distance+1). Penalties
// overwrite, they are never summed: with overlapping hazards the last hazard
// cell in enumeration order wins.
func Rewards(cells maze.CellSet, consumables []maze.Position, hazards []Hazard, movementCost float64, hazardRadius int) Values {
	rewards := make(Values, cells.Len())
	for _, c := range cells.Cells() {
		rewards[c] = -movementCost
	}

	if len(consumables) > 0 {
		bonus := 1 / float64(len(consumables))
		for _, food := range consumables {
			if cells.Contains(food) {
				rewards[food] = bonus
			}
		}
	}

	active := make(map[maze.Position]bool)
	for _, h := range hazards {
		if h.Active() {
			active[h.Position] = true
		}
	}
	if len(active) == 0 {
		return rewards
	}
	all := cells.Cells()
	for _, hazard := range all {
		if !active[hazard] {
			continue
		}
		for _, tile := range all {
			distance := maze.Manhattan(tile, hazard)
			if distance <= hazardRadius {
				rewards[tile] = -1 / float64(distance+1)
			}
		}
	}
	return rewards
}
