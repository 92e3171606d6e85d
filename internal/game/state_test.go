package game

import (
	"testing"

	"github.com/longmaomaoa/ai-OpenChess/internal/xiangqi"
)

func TestAdvanceAppendsWithoutMutating(t *testing.T) {
	root := NewGame(xiangqi.StartingBoard(), xiangqi.Red)

	move := xiangqi.Move{
		From: xiangqi.Cell{File: 1, Rank: 7},
		To:   xiangqi.Cell{File: 4, Rank: 7},
	}
	next, err := root.Advance(move)
	if err != nil {
		t.Fatalf("advance failed: %v", err)
	}

	if root.Ply() != 0 {
		t.Error("root ply changed")
	}
	if !root.Board().Equal(xiangqi.StartingBoard()) {
		t.Error("root board was mutated by Advance")
	}
	if next.Ply() != 1 {
		t.Errorf("expected ply 1, got %d", next.Ply())
	}
	if next.SideToMove() != xiangqi.Black {
		t.Errorf("expected black to move, got %s", next.SideToMove())
	}
	if next.LastMove() == nil || next.LastMove().Piece.Kind != xiangqi.Cannon {
		t.Error("last move should record the cannon")
	}
}

func TestAdvanceRejectsWrongSide(t *testing.T) {
	root := NewGame(xiangqi.StartingBoard(), xiangqi.Red)

	// A black pawn push while red is to move.
	move := xiangqi.Move{
		From: xiangqi.Cell{File: 0, Rank: 3},
		To:   xiangqi.Cell{File: 0, Rank: 4},
	}
	if _, err := root.Advance(move); err == nil {
		t.Error("expected an error advancing with the wrong side")
	}

	// An empty origin is rejected too.
	move = xiangqi.Move{
		From: xiangqi.Cell{File: 4, Rank: 4},
		To:   xiangqi.Cell{File: 4, Rank: 5},
	}
	if _, err := root.Advance(move); err == nil {
		t.Error("expected an error advancing from an empty cell")
	}
}

func TestHistoryAndRewind(t *testing.T) {
	state := NewGame(xiangqi.StartingBoard(), xiangqi.Red)

	sequence := []xiangqi.Move{
		{From: xiangqi.Cell{File: 1, Rank: 7}, To: xiangqi.Cell{File: 4, Rank: 7}}, // red cannon to center
		{From: xiangqi.Cell{File: 1, Rank: 0}, To: xiangqi.Cell{File: 2, Rank: 2}}, // black horse out
		{From: xiangqi.Cell{File: 1, Rank: 9}, To: xiangqi.Cell{File: 2, Rank: 7}}, // red horse out
	}

	for _, m := range sequence {
		var err error
		state, err = state.Advance(m)
		if err != nil {
			t.Fatalf("advance %s failed: %v", m, err)
		}
	}

	boards := state.History()
	if len(boards) != 4 {
		t.Fatalf("expected 4 boards in history, got %d", len(boards))
	}
	if !boards[0].Equal(xiangqi.StartingBoard()) {
		t.Error("history should start at the root board")
	}
	if !boards[3].Equal(state.Board()) {
		t.Error("history should end at the head board")
	}

	moves := state.Moves()
	if len(moves) != 3 {
		t.Fatalf("expected 3 moves, got %d", len(moves))
	}
	if moves[0].From != sequence[0].From || moves[0].To != sequence[0].To {
		t.Errorf("first recorded move is %s", moves[0])
	}

	back := state.Rewind(2)
	if back.Ply() != 1 {
		t.Errorf("expected ply 1 after rewinding 2, got %d", back.Ply())
	}
	if !back.Board().Equal(boards[1]) {
		t.Error("rewound board does not match history")
	}

	// Rewinding past the root stops at the root.
	if got := state.Rewind(10).Ply(); got != 0 {
		t.Errorf("expected root after deep rewind, got ply %d", got)
	}
}
