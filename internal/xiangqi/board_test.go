package xiangqi

import "testing"

func TestStartingBoard(t *testing.T) {
	b := StartingBoard()

	counts := []struct {
		kind Kind
		want int
	}{
		{King, 1},
		{Advisor, 2},
		{Elephant, 2},
		{Horse, 2},
		{Chariot, 2},
		{Cannon, 2},
		{Pawn, 5},
	}

	for _, side := range []Side{Red, Black} {
		for _, tt := range counts {
			if got := b.Count(side, tt.kind); got != tt.want {
				t.Errorf("%s %s: expected %d, got %d", side, tt.kind, tt.want, got)
			}
		}
	}

	redKing, ok := b.FindKing(Red)
	if !ok {
		t.Fatal("red king not found on starting board")
	}
	if redKing.File != 4 || redKing.Rank != 9 {
		t.Errorf("red king at %v, want file 4 rank 9", redKing)
	}

	blackKing, ok := b.FindKing(Black)
	if !ok {
		t.Fatal("black king not found on starting board")
	}
	if blackKing.File != 4 || blackKing.Rank != 0 {
		t.Errorf("black king at %v, want file 4 rank 0", blackKing)
	}
}

func TestCellNotation(t *testing.T) {
	tests := []struct {
		cell     Cell
		expected string
	}{
		{Cell{File: 4, Rank: 9}, "e0"},
		{Cell{File: 4, Rank: 0}, "e9"},
		{Cell{File: 0, Rank: 9}, "a0"},
		{Cell{File: 8, Rank: 0}, "i9"},
	}

	for _, tt := range tests {
		if got := tt.cell.String(); got != tt.expected {
			t.Errorf("Cell %+v: expected %s, got %s", tt.cell, tt.expected, got)
		}
	}
}

func TestCellGeometry(t *testing.T) {
	tests := []struct {
		name     string
		cell     Cell
		side     Side
		inPalace bool
		crossed  bool
	}{
		{"red king start", Cell{File: 4, Rank: 9}, Red, true, false},
		{"black king start", Cell{File: 4, Rank: 0}, Black, true, false},
		{"red palace corner", Cell{File: 3, Rank: 7}, Red, true, false},
		{"outside palace file", Cell{File: 2, Rank: 8}, Red, false, false},
		{"red pawn crossed", Cell{File: 0, Rank: 4}, Red, false, true},
		{"red pawn not crossed", Cell{File: 0, Rank: 5}, Red, false, false},
		{"black pawn crossed", Cell{File: 0, Rank: 5}, Black, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cell.InPalace(tt.side); got != tt.inPalace {
				t.Errorf("InPalace: expected %v, got %v", tt.inPalace, got)
			}
			if got := tt.cell.AcrossRiver(tt.side); got != tt.crossed {
				t.Errorf("AcrossRiver: expected %v, got %v", tt.crossed, got)
			}
		})
	}
}

func TestApplyDoesNotMutate(t *testing.T) {
	b := StartingBoard()
	from := Cell{File: 1, Rank: 7}
	to := Cell{File: 4, Rank: 7}

	next := b.Apply(Move{From: from, To: to, Piece: b.At(from)})

	if !b.Equal(StartingBoard()) {
		t.Error("Apply mutated the original board")
	}
	if !b.At(to).IsEmpty() {
		t.Error("original board destination should still be empty")
	}
	if next.At(to).Kind != Cannon {
		t.Errorf("expected cannon on destination, got %s", next.At(to))
	}
	if !next.At(from).IsEmpty() {
		t.Error("origin should be empty after the move")
	}
}

func TestBoardDiff(t *testing.T) {
	b := StartingBoard()
	if deltas := b.Diff(b); len(deltas) != 0 {
		t.Errorf("identical boards should produce no deltas, got %d", len(deltas))
	}

	from := Cell{File: 1, Rank: 7}
	to := Cell{File: 4, Rank: 7}
	next := b.Apply(Move{From: from, To: to})

	deltas := b.Diff(next)
	if len(deltas) != 2 {
		t.Fatalf("expected 2 deltas, got %d", len(deltas))
	}

	foundOrigin, foundDest := false, false
	for _, d := range deltas {
		if d.Cell == from && d.After.IsEmpty() && d.Before.Kind == Cannon {
			foundOrigin = true
		}
		if d.Cell == to && d.Before.IsEmpty() && d.After.Kind == Cannon {
			foundDest = true
		}
	}
	if !foundOrigin {
		t.Error("vacated origin not reported")
	}
	if !foundDest {
		t.Error("occupied destination not reported")
	}
}

func TestGlyphRoundTrip(t *testing.T) {
	sided := []Piece{
		{Red, King}, {Black, King},
		{Red, Advisor}, {Black, Advisor},
		{Red, Elephant}, {Black, Elephant},
		{Red, Pawn}, {Black, Pawn},
	}
	for _, p := range sided {
		got, sideKnown, ok := PieceFromGlyph(p.Glyph())
		if !ok {
			t.Errorf("glyph %c not recognized", p.Glyph())
			continue
		}
		if !sideKnown {
			t.Errorf("glyph %c should resolve side", p.Glyph())
		}
		if got != p {
			t.Errorf("glyph %c: expected %s, got %s", p.Glyph(), p, got)
		}
	}

	// Shared glyphs resolve the kind but not the side.
	for _, k := range []Kind{Horse, Chariot, Cannon} {
		got, sideKnown, ok := PieceFromGlyph(Piece{Black, k}.Glyph())
		if !ok {
			t.Errorf("glyph for %s not recognized", k)
			continue
		}
		if sideKnown {
			t.Errorf("glyph for %s should be side-ambiguous", k)
		}
		if got.Kind != k {
			t.Errorf("expected kind %s, got %s", k, got.Kind)
		}
	}
}

func TestBoardString(t *testing.T) {
	out := StartingBoard().String()
	if len(out) < 100 {
		t.Error("board rendering seems too short")
	}
}
