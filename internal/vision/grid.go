package vision

import (
	"fmt"
	"image"

	"github.com/longmaomaoa/ai-OpenChess/internal/xiangqi"
)

// GridMapper translates between pixel coordinates inside the captured
// board region and the 9x10 cell grid. The mapping is pure geometry: the
// region is cut into equal cells, files left to right and ranks top to
// bottom with Black's back rank at the top.
type GridMapper struct {
	width  int
	height int
	cellW  float64
	cellH  float64
}

// NewGridMapper creates a mapper for a board region of the given pixel
// size.
func NewGridMapper(width, height int) (*GridMapper, error) {
	if width < xiangqi.Files || height < xiangqi.Ranks {
		return nil, fmt.Errorf("region %dx%d too small for a %dx%d grid",
			width, height, xiangqi.Files, xiangqi.Ranks)
	}
	return &GridMapper{
		width:  width,
		height: height,
		cellW:  float64(width) / float64(xiangqi.Files),
		cellH:  float64(height) / float64(xiangqi.Ranks),
	}, nil
}

// CellRect returns the full pixel rectangle of a cell.
func (g *GridMapper) CellRect(c xiangqi.Cell) image.Rectangle {
	x0 := int(float64(c.File) * g.cellW)
	y0 := int(float64(c.Rank) * g.cellH)
	x1 := int(float64(c.File+1) * g.cellW)
	y1 := int(float64(c.Rank+1) * g.cellH)
	return image.Rect(x0, y0, x1, y1)
}

// PieceROI returns the centered half-cell window used for recognition,
// which trims board lines and neighboring pieces from the crop.
func (g *GridMapper) PieceROI(c xiangqi.Cell) image.Rectangle {
	cx := (float64(c.File) + 0.5) * g.cellW
	cy := (float64(c.Rank) + 0.5) * g.cellH
	halfW := g.cellW / 4
	halfH := g.cellH / 4
	return image.Rect(int(cx-halfW), int(cy-halfH), int(cx+halfW), int(cy+halfH))
}

// CellAt maps a pixel point back to its cell. ok is false outside the
// region.
func (g *GridMapper) CellAt(pt image.Point) (xiangqi.Cell, bool) {
	if pt.X < 0 || pt.Y < 0 || pt.X >= g.width || pt.Y >= g.height {
		return xiangqi.Cell{}, false
	}
	c := xiangqi.Cell{
		File: int(float64(pt.X) / g.cellW),
		Rank: int(float64(pt.Y) / g.cellH),
	}
	if !c.Valid() {
		return xiangqi.Cell{}, false
	}
	return c, true
}

// Cells returns every cell of the grid in rank-major order.
func (g *GridMapper) Cells() []xiangqi.Cell {
	cells := make([]xiangqi.Cell, 0, xiangqi.Files*xiangqi.Ranks)
	for rank := 0; rank < xiangqi.Ranks; rank++ {
		for file := 0; file < xiangqi.Files; file++ {
			cells = append(cells, xiangqi.Cell{File: file, Rank: rank})
		}
	}
	return cells
}
