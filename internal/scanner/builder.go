package scanner

import (
	"fmt"

	"github.com/longmaomaoa/ai-OpenChess/internal/vision"
	"github.com/longmaomaoa/ai-OpenChess/internal/xiangqi"
)

// kindCeilings is the most pieces of each kind one side can ever field.
var kindCeilings = map[xiangqi.Kind]int{
	xiangqi.King:     1,
	xiangqi.Advisor:  2,
	xiangqi.Elephant: 2,
	xiangqi.Horse:    2,
	xiangqi.Chariot:  2,
	xiangqi.Cannon:   2,
	xiangqi.Pawn:     5,
}

// ReadingGrid holds one recognition pass over the full board, rank-major.
type ReadingGrid [xiangqi.Ranks][xiangqi.Files]vision.CellReading

// BuildBoard turns a recognition pass into a board, rejecting frames that
// cannot come from a legal game. Duplicate king sightings collapse to the
// more confident cell; an exact confidence tie is unresolvable.
func BuildBoard(grid ReadingGrid) (xiangqi.Board, error) {
	b := xiangqi.NewBoard()
	for rank := 0; rank < xiangqi.Ranks; rank++ {
		for file := 0; file < xiangqi.Files; file++ {
			reading := grid[rank][file]
			if reading.IsEmpty() {
				continue
			}
			b.Set(xiangqi.Cell{File: file, Rank: rank}, reading.Piece)
		}
	}

	for _, side := range []xiangqi.Side{xiangqi.Red, xiangqi.Black} {
		if err := collapseKings(&b, grid, side); err != nil {
			return xiangqi.Board{}, err
		}
		if err := checkCensus(b, side); err != nil {
			return xiangqi.Board{}, err
		}
	}

	return b, nil
}

// collapseKings resolves multiple sightings of one side's king, keeping
// only the most confident cell.
func collapseKings(b *xiangqi.Board, grid ReadingGrid, side xiangqi.Side) error {
	king := xiangqi.Piece{Side: side, Kind: xiangqi.King}

	var cells []xiangqi.Cell
	for rank := 0; rank < xiangqi.Ranks; rank++ {
		for file := 0; file < xiangqi.Files; file++ {
			if grid[rank][file].Piece == king {
				cells = append(cells, xiangqi.Cell{File: file, Rank: rank})
			}
		}
	}
	if len(cells) <= 1 {
		return nil
	}

	best := cells[0]
	bestConf := grid[best.Rank][best.File].Confidence
	tied := false
	for _, c := range cells[1:] {
		conf := grid[c.Rank][c.File].Confidence
		switch {
		case conf > bestConf:
			best, bestConf, tied = c, conf, false
		case conf == bestConf:
			tied = true
		}
	}
	if tied {
		return &AmbiguousBoardError{Side: side, Cells: cells}
	}

	for _, c := range cells {
		if c != best {
			b.Set(c, xiangqi.Piece{})
		}
	}
	return nil
}

// checkCensus verifies one side's piece counts against the ceilings and
// requires its king to be on the board.
func checkCensus(b xiangqi.Board, side xiangqi.Side) error {
	if _, ok := b.FindKing(side); !ok {
		return &SuspectBoardError{Reason: fmt.Sprintf("no %v king on the board", side)}
	}
	for kind, ceiling := range kindCeilings {
		n := b.Count(side, kind)
		if n > ceiling {
			return &SuspectBoardError{
				Reason: fmt.Sprintf("%d %v %vs, at most %d possible", n, side, kind, ceiling),
			}
		}
	}
	return nil
}
