package eval

import "github.com/longmaomaoa/ai-OpenChess/internal/xiangqi"

// Base piece values in centipawns.
var pieceValues = map[xiangqi.Kind]float64{
	xiangqi.King:     10000,
	xiangqi.Advisor:  200,
	xiangqi.Elephant: 200,
	xiangqi.Horse:    450,
	xiangqi.Chariot:  900,
	xiangqi.Cannon:   450,
	xiangqi.Pawn:     100,
}

// PieceValue returns the base value of a piece kind.
func PieceValue(k xiangqi.Kind) float64 {
	return pieceValues[k]
}

// Position tables are written from Red's point of view with rank 0 at the
// top (Black's back rank). Black reads them vertically flipped.

// Pawns gain as they advance past the river.
var pawnTable = [10][9]float64{
	{0, 0, 0, 0, 0, 0, 0, 0, 0},
	{70, 70, 70, 70, 70, 70, 70, 70, 70},
	{50, 50, 50, 50, 50, 50, 50, 50, 50},
	{40, 40, 40, 40, 40, 40, 40, 40, 40},
	{30, 30, 30, 30, 30, 30, 30, 30, 30},
	{20, 20, 20, 20, 20, 20, 20, 20, 20},
	{10, 10, 10, 10, 10, 10, 10, 10, 10},
	{0, 0, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 0, 0, 0, 0, 0, 0},
}

// Horses are strongest near the center.
var horseTable = [10][9]float64{
	{-20, -10, -10, -10, -10, -10, -10, -10, -20},
	{-10, 0, 0, 0, 0, 0, 0, 0, -10},
	{-10, 0, 5, 10, 10, 10, 5, 0, -10},
	{-10, 0, 10, 20, 20, 20, 10, 0, -10},
	{-10, 0, 10, 20, 30, 20, 10, 0, -10},
	{-10, 0, 10, 20, 30, 20, 10, 0, -10},
	{-10, 0, 10, 20, 20, 20, 10, 0, -10},
	{-10, 0, 5, 10, 10, 10, 5, 0, -10},
	{-10, 0, 0, 0, 0, 0, 0, 0, -10},
	{-20, -10, -10, -10, -10, -10, -10, -10, -20},
}

// Chariots prefer open ranks near either back row.
var chariotTable = [10][9]float64{
	{0, 0, 0, 0, 0, 0, 0, 0, 0},
	{5, 10, 10, 10, 10, 10, 10, 10, 5},
	{-5, 0, 0, 0, 0, 0, 0, 0, -5},
	{-5, 0, 0, 0, 0, 0, 0, 0, -5},
	{-5, 0, 0, 0, 0, 0, 0, 0, -5},
	{-5, 0, 0, 0, 0, 0, 0, 0, -5},
	{-5, 0, 0, 0, 0, 0, 0, 0, -5},
	{-5, 0, 0, 0, 0, 0, 0, 0, -5},
	{5, 10, 10, 10, 10, 10, 10, 10, 5},
	{0, 0, 0, 0, 0, 0, 0, 0, 0},
}

// Cannons like the center files and the enemy back rank.
var cannonTable = [10][9]float64{
	{20, 20, 20, 20, 20, 20, 20, 20, 20},
	{-5, 0, 0, 0, 0, 0, 0, 0, -5},
	{-5, 0, 0, 0, 0, 0, 0, 0, -5},
	{-5, 0, 0, 5, 5, 5, 0, 0, -5},
	{-5, 0, 0, 5, 10, 5, 0, 0, -5},
	{-5, 0, 0, 5, 10, 5, 0, 0, -5},
	{-5, 0, 0, 5, 5, 5, 0, 0, -5},
	{-5, 0, 0, 0, 0, 0, 0, 0, -5},
	{-5, 0, 0, 0, 0, 0, 0, 0, -5},
	{20, 20, 20, 20, 20, 20, 20, 20, 20},
}

var kingTable = [10][9]float64{
	{0, 0, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 1, 5, 1, 0, 0, 0},
	{0, 0, 0, 2, 3, 2, 0, 0, 0},
	{0, 0, 0, 1, 1, 1, 0, 0, 0},
}

var advisorTable = [10][9]float64{
	{0, 0, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 20, 0, 20, 0, 0, 0},
	{0, 0, 0, 0, 23, 0, 0, 0, 0},
	{0, 0, 0, 20, 0, 20, 0, 0, 0},
}

var elephantTable = [10][9]float64{
	{0, 0, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 20, 0, 0, 0, 20, 0, 0},
	{0, 0, 0, 0, 0, 0, 0, 0, 0},
	{18, 0, 0, 0, 23, 0, 0, 0, 18},
	{0, 0, 0, 0, 0, 0, 0, 0, 0},
	{0, 0, 20, 0, 0, 0, 20, 0, 0},
}

var kindTables = map[xiangqi.Kind]*[10][9]float64{
	xiangqi.King:     &kingTable,
	xiangqi.Advisor:  &advisorTable,
	xiangqi.Elephant: &elephantTable,
	xiangqi.Horse:    &horseTable,
	xiangqi.Chariot:  &chariotTable,
	xiangqi.Cannon:   &cannonTable,
	xiangqi.Pawn:     &pawnTable,
}

// PositionValue returns the positional bonus for a piece on a cell. Black
// pieces read the Red table flipped top to bottom.
func PositionValue(p xiangqi.Piece, c xiangqi.Cell) float64 {
	table, ok := kindTables[p.Kind]
	if !ok {
		return 0
	}
	rank := c.Rank
	if p.Side == xiangqi.Black {
		rank = (xiangqi.Ranks - 1) - rank
	}
	return table[rank][c.File]
}
