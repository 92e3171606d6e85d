package vision

import (
	"image"
	"testing"

	"github.com/longmaomaoa/ai-OpenChess/internal/xiangqi"
)

func TestNewGridMapperRejectsTinyRegion(t *testing.T) {
	if _, err := NewGridMapper(4, 4); err == nil {
		t.Fatal("expected error for region smaller than the grid")
	}
	if _, err := NewGridMapper(900, 1000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCellRectTilesTheRegion(t *testing.T) {
	g, err := NewGridMapper(900, 1000)
	if err != nil {
		t.Fatalf("NewGridMapper: %v", err)
	}

	first := g.CellRect(xiangqi.Cell{File: 0, Rank: 0})
	if first.Min != image.Pt(0, 0) || first.Max != image.Pt(100, 100) {
		t.Errorf("first cell rect = %v, want (0,0)-(100,100)", first)
	}

	last := g.CellRect(xiangqi.Cell{File: 8, Rank: 9})
	if last.Max != image.Pt(900, 1000) {
		t.Errorf("last cell rect = %v, want max (900,1000)", last)
	}

	// Adjacent cells share an edge with no gap or overlap.
	a := g.CellRect(xiangqi.Cell{File: 3, Rank: 5})
	b := g.CellRect(xiangqi.Cell{File: 4, Rank: 5})
	if a.Max.X != b.Min.X {
		t.Errorf("cells overlap or gap: %v then %v", a, b)
	}
}

func TestPieceROIStaysInsideCell(t *testing.T) {
	g, err := NewGridMapper(900, 1000)
	if err != nil {
		t.Fatalf("NewGridMapper: %v", err)
	}
	for _, c := range g.Cells() {
		roi := g.PieceROI(c)
		rect := g.CellRect(c)
		if !roi.In(rect) {
			t.Fatalf("ROI %v of cell %v escapes its rect %v", roi, c, rect)
		}
		if roi.Dx() == 0 || roi.Dy() == 0 {
			t.Fatalf("degenerate ROI %v for cell %v", roi, c)
		}
	}
}

func TestCellAtRoundTrip(t *testing.T) {
	g, err := NewGridMapper(900, 1000)
	if err != nil {
		t.Fatalf("NewGridMapper: %v", err)
	}
	for _, c := range g.Cells() {
		rect := g.CellRect(c)
		center := image.Pt((rect.Min.X+rect.Max.X)/2, (rect.Min.Y+rect.Max.Y)/2)
		got, ok := g.CellAt(center)
		if !ok || got != c {
			t.Fatalf("CellAt(%v) = %v, %v; want %v", center, got, ok, c)
		}
	}
	if _, ok := g.CellAt(image.Pt(-1, 10)); ok {
		t.Error("point left of the region should not map to a cell")
	}
	if _, ok := g.CellAt(image.Pt(900, 10)); ok {
		t.Error("point past the right edge should not map to a cell")
	}
}

func TestCellsOrder(t *testing.T) {
	g, err := NewGridMapper(900, 1000)
	if err != nil {
		t.Fatalf("NewGridMapper: %v", err)
	}
	cells := g.Cells()
	if len(cells) != xiangqi.Files*xiangqi.Ranks {
		t.Fatalf("len(cells) = %d, want %d", len(cells), xiangqi.Files*xiangqi.Ranks)
	}
	if cells[0] != (xiangqi.Cell{File: 0, Rank: 0}) {
		t.Errorf("first cell = %v", cells[0])
	}
	if cells[9] != (xiangqi.Cell{File: 0, Rank: 1}) {
		t.Errorf("cell 9 = %v, want start of rank 1", cells[9])
	}
}
