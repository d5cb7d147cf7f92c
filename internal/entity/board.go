package entity

const (
	PlayerX = "X"
	PlayerO = "O"

	EmptyCell = ""

	BoardSize = 3
)

// Cell addresses one square of the board.
type Cell struct {
	Row int
	Col int
}

// WinLines are the 8 triples that decide a game: 3 rows, 3 columns, 2 diagonals.
var WinLines = [8][3]Cell{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// Board is a 3x3 grid; it marshals to JSON as [["","",""],...].
type Board [BoardSize][BoardSize]string

// ApplyMove sets one cell. Callers check bounds, turn and occupancy first.
func (that *Board) ApplyMove(row, col int, playerID string) {
	that[row][col] = playerID
}

func (that *Board) IsEmptyAt(row, col int) bool {
	return that[row][col] == EmptyCell
}

// Winner returns the mark occupying a full line, or "" if there is none.
func (that *Board) Winner() string {
	for _, line := range WinLines {
		a := that[line[0].Row][line[0].Col]
		b := that[line[1].Row][line[1].Col]
		c := that[line[2].Row][line[2].Col]

		if a != EmptyCell && a == b && b == c {
			return a
		}
	}

	return ""
}

// IsDraw reports whether every cell is taken. Check Winner first: the last
// move can fill the board and complete a line at once.
func (that *Board) IsDraw() bool {
	return that.Filled() == BoardSize*BoardSize
}

func (that *Board) Filled() int {
	filled := 0
	for _, row := range that {
		for _, cell := range row {
			if cell != EmptyCell {
				filled++
			}
		}
	}

	return filled
}

func InBounds(row, col int) bool {
	return row >= 0 && row < BoardSize && col >= 0 && col < BoardSize
}

func IsPlayer(mark string) bool {
	return mark == PlayerX || mark == PlayerO
}

// OtherPlayer returns the opponent's mark.
func OtherPlayer(mark string) string {
	if mark == PlayerX {
		return PlayerO
	}
	return PlayerX
}
