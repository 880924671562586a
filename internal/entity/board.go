package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
)

const (
	BoardSize = 3

	MarkX = "X"
	MarkO = "O"

	EmptyCell = ""
)

// Board is a fixed 3x3 grid of cell marks. A cell holds EmptyCell until it is
// marked exactly once; it never reverts except on Reset.
type Board [BoardSize][BoardSize]string

// MarkForSeat - returns the fixed mark for a seat: seat 1 plays X, seat 2 plays O.
func MarkForSeat(seat int) string {
	if seat == 1 {
		return MarkX
	}
	return MarkO
}

func (that *Board) Reset() {
	for row := range that {
		for col := range that[row] {
			that[row][col] = EmptyCell
		}
	}
}

// IsInside - reports whether the coordinates are strictly inside the grid.
func (that *Board) IsInside(row, col int) bool {
	return row >= 0 && row < BoardSize && col >= 0 && col < BoardSize
}

// Place - marks a cell for a player.
func (that *Board) Place(row, col int, mark string) error {
	if !that.IsInside(row, col) {
		return fmt.Errorf("%w: %d,%d", apperror.ErrInvalidCell, row, col)
	}

	if that[row][col] != EmptyCell {
		return apperror.ErrCellOccupied
	}

	that[row][col] = mark

	return nil
}

// HasWin - reports whether the mark owns a full row, column or diagonal.
func (that *Board) HasWin(mark string) bool {
	for i := 0; i < BoardSize; i++ {
		if that[i][0] == mark && that[i][1] == mark && that[i][2] == mark {
			return true
		}
		if that[0][i] == mark && that[1][i] == mark && that[2][i] == mark {
			return true
		}
	}

	if that[0][0] == mark && that[1][1] == mark && that[2][2] == mark {
		return true
	}

	if that[0][2] == mark && that[1][1] == mark && that[2][0] == mark {
		return true
	}

	return false
}

// IsFull - reports whether no empty cell remains. Draw is a full board with no
// winner, so callers must check HasWin first.
func (that *Board) IsFull() bool {
	for row := range that {
		for col := range that[row] {
			if that[row][col] == EmptyCell {
				return false
			}
		}
	}

	return true
}

// Grid - returns a copy of the board for pushing to players.
func (that *Board) Grid() [BoardSize][BoardSize]string {
	return *that
}
