package xiangqi

import "fmt"

// Board dimensions. Rank 0 is Black's back rank, rank 9 is Red's.
const (
	Files = 9
	Ranks = 10
)

// Cell addresses an intersection on the board.
type Cell struct {
	File int `json:"file"` // 0-8, left to right
	Rank int `json:"rank"` // 0-9, Black side at 0
}

// Valid reports whether the cell lies on the board.
func (c Cell) Valid() bool {
	return c.File >= 0 && c.File < Files && c.Rank >= 0 && c.Rank < Ranks
}

// InPalace reports whether the cell lies inside the given side's palace.
func (c Cell) InPalace(s Side) bool {
	if c.File < 3 || c.File > 5 {
		return false
	}
	if s == Red {
		return c.Rank >= 7 && c.Rank <= 9
	}
	return c.Rank >= 0 && c.Rank <= 2
}

// AcrossRiver reports whether the cell lies on the enemy side of the river
// from the given side's point of view.
func (c Cell) AcrossRiver(s Side) bool {
	if s == Red {
		return c.Rank <= 4
	}
	return c.Rank >= 5
}

// OwnSideOfRiver reports whether the cell lies on the given side's half.
func (c Cell) OwnSideOfRiver(s Side) bool {
	return !c.AcrossRiver(s)
}

// String returns file-letter plus rank notation, with rank 0 at Red's back
// rank (e.g. Red's king starts on "e0", Black's on "e9").
func (c Cell) String() string {
	return fmt.Sprintf("%c%d", 'a'+c.File, (Ranks-1)-c.Rank)
}

// Move is a single piece displacement. Captured is the empty piece for
// quiet moves.
type Move struct {
	From     Cell  `json:"from"`
	To       Cell  `json:"to"`
	Piece    Piece `json:"piece"`
	Captured Piece `json:"captured"`
}

// IsCapture reports whether the move takes an enemy piece.
func (m Move) IsCapture() bool {
	return !m.Captured.IsEmpty()
}

// String returns origin-destination notation (e.g. "b2e2")
func (m Move) String() string {
	return m.From.String() + m.To.String()
}

// Describe returns a readable move description for display.
func (m Move) Describe() string {
	if m.IsCapture() {
		return fmt.Sprintf("%s %s takes %s on %s", m.Piece, m.From, m.Captured.Kind, m.To)
	}
	return fmt.Sprintf("%s %s to %s", m.Piece, m.From, m.To)
}

// Board is a full piece placement. It is a value type: Apply and Set on a
// copy never disturb the original.
type Board struct {
	cells [Ranks][Files]Piece
}

// NewBoard returns an empty board.
func NewBoard() Board {
	return Board{}
}

// StartingBoard returns the standard opening setup.
func StartingBoard() Board {
	var b Board
	back := []Kind{Chariot, Horse, Elephant, Advisor, King, Advisor, Elephant, Horse, Chariot}
	for f, k := range back {
		b.cells[0][f] = Piece{Black, k}
		b.cells[9][f] = Piece{Red, k}
	}
	for _, f := range []int{1, 7} {
		b.cells[2][f] = Piece{Black, Cannon}
		b.cells[7][f] = Piece{Red, Cannon}
	}
	for _, f := range []int{0, 2, 4, 6, 8} {
		b.cells[3][f] = Piece{Black, Pawn}
		b.cells[6][f] = Piece{Red, Pawn}
	}
	return b
}

// At returns the piece at the cell. Off-board cells read as empty.
func (b Board) At(c Cell) Piece {
	if !c.Valid() {
		return Piece{}
	}
	return b.cells[c.Rank][c.File]
}

// Set places a piece at the cell.
func (b *Board) Set(c Cell, p Piece) {
	if c.Valid() {
		b.cells[c.Rank][c.File] = p
	}
}

// Apply returns a new board with the move played. It does not check
// legality.
func (b Board) Apply(m Move) Board {
	next := b
	next.cells[m.To.Rank][m.To.File] = next.cells[m.From.Rank][m.From.File]
	next.cells[m.From.Rank][m.From.File] = Piece{}
	return next
}

// FindKing locates the given side's king.
func (b Board) FindKing(s Side) (Cell, bool) {
	for rank := 0; rank < Ranks; rank++ {
		for file := 0; file < Files; file++ {
			p := b.cells[rank][file]
			if p.Kind == King && p.Side == s {
				return Cell{File: file, Rank: rank}, true
			}
		}
	}
	return Cell{}, false
}

// Count returns how many pieces of the given side and kind are on the board.
func (b Board) Count(s Side, k Kind) int {
	n := 0
	for rank := 0; rank < Ranks; rank++ {
		for file := 0; file < Files; file++ {
			p := b.cells[rank][file]
			if !p.IsEmpty() && p.Side == s && p.Kind == k {
				n++
			}
		}
	}
	return n
}

// Pieces returns every occupied cell for the given side.
func (b Board) Pieces(s Side) []Cell {
	var out []Cell
	for rank := 0; rank < Ranks; rank++ {
		for file := 0; file < Files; file++ {
			p := b.cells[rank][file]
			if !p.IsEmpty() && p.Side == s {
				out = append(out, Cell{File: file, Rank: rank})
			}
		}
	}
	return out
}

// Equal reports whether two boards hold identical placements.
func (b Board) Equal(other Board) bool {
	return b.cells == other.cells
}

// CellDelta records a single cell that differs between two boards.
type CellDelta struct {
	Cell   Cell
	Before Piece
	After  Piece
}

// Diff returns every cell whose occupant differs between b and other,
// scanning rank-major so the result order is deterministic.
func (b Board) Diff(other Board) []CellDelta {
	var deltas []CellDelta
	for rank := 0; rank < Ranks; rank++ {
		for file := 0; file < Files; file++ {
			before := b.cells[rank][file]
			after := other.cells[rank][file]
			if before != after {
				deltas = append(deltas, CellDelta{
					Cell:   Cell{File: file, Rank: rank},
					Before: before,
					After:  after,
				})
			}
		}
	}
	return deltas
}

// String renders the board with piece glyphs, Black at the top.
func (b Board) String() string {
	result := "\n   a  b  c  d  e  f  g  h  i\n"
	for rank := 0; rank < Ranks; rank++ {
		result += fmt.Sprintf("%d  ", (Ranks-1)-rank)
		for file := 0; file < Files; file++ {
			result += string(b.cells[rank][file].Glyph()) + "  "
		}
		result += "\n"
		if rank == 4 {
			result += "   ~~~~~~~~~ river ~~~~~~~~~\n"
		}
	}
	return result
}
