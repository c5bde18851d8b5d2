package goban

import "github.com/pixelgrove/gostones-backend/internal/entity"

// GroupAt returns the maximal connected set of cells sharing the team of
// (x, y), reachable via 4-neighbor adjacency. Off-board start returns an
// empty group.
func GroupAt(state *entity.GameState, x, y int) []*entity.Cell {
	group, _ := GroupWithBoundary(state, x, y)
	return group
}

// GroupWithBoundary also returns the deduplicated boundary set: neighboring
// cells that do not share the starting cell's team.
func GroupWithBoundary(state *entity.GameState, x, y int) ([]*entity.Cell, []*entity.Cell) {
	startingCell := state.GetCell(x, y)
	if startingCell == nil {
		return nil, nil
	}

	return partitionTraverse(state, startingCell, func(neighbor *entity.Cell) bool {
		return neighbor.Team == startingCell.Team
	})
}

// partitionTraverse walks the board iteratively from startingCell, splitting
// reachable cells into those matching the inclusion condition and the
// boundary that failed it. Iterative on purpose: a full board must not blow
// the stack.
func partitionTraverse(state *entity.GameState, startingCell *entity.Cell, include func(*entity.Cell) bool) ([]*entity.Cell, []*entity.Cell) {
	checked := make(map[*entity.Cell]bool)
	onBoundary := make(map[*entity.Cell]bool)

	var group, boundary []*entity.Cell

	cellsToCheck := []*entity.Cell{startingCell}

	for len(cellsToCheck) > 0 {
		cell := cellsToCheck[len(cellsToCheck)-1]
		cellsToCheck = cellsToCheck[:len(cellsToCheck)-1]

		if checked[cell] {
			continue
		}

		checked[cell] = true
		group = append(group, cell)

		for _, neighbor := range state.GetNeighbors(cell.X, cell.Y) {
			if checked[neighbor] {
				continue
			}

			if include(neighbor) {
				cellsToCheck = append(cellsToCheck, neighbor)
				continue
			}

			if !onBoundary[neighbor] {
				onBoundary[neighbor] = true
				boundary = append(boundary, neighbor)
			}
		}
	}

	return group, boundary
}

// Liberties counts the distinct cells adjacent to the group at (x, y) that
// are empty or still flagged NewlyPlayed. The just-placed stone counts as a
// liberty of its own group during the settle window of a single placement;
// capture resolution relies on that to spot groups whose last liberty is the
// cell that was just played.
func Liberties(state *entity.GameState, x, y int) int {
	counted := make(map[*entity.Cell]bool)
	count := 0

	for _, groupCell := range GroupAt(state, x, y) {
		for _, neighbor := range state.GetNeighbors(groupCell.X, groupCell.Y) {
			if !neighbor.IsEmpty() && !neighbor.NewlyPlayed {
				continue
			}

			if !counted[neighbor] {
				counted[neighbor] = true
				count++
			}
		}
	}

	return count
}

// InAtari reports whether the group at (x, y) is one capture away from
// removal.
func InAtari(state *entity.GameState, x, y int) bool {
	return Liberties(state, x, y) == 1
}
