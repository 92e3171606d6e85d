package vision

import "github.com/longmaomaoa/ai-OpenChess/internal/xiangqi"

// The three per-cell classifiers each produce a vote; Fuse combines them
// with a fixed precedence so recognition is deterministic for any given
// set of votes.

// TemplateVote is the best template match for a cell.
type TemplateVote struct {
	Piece   xiangqi.Piece
	Score   float64
	Matched bool
}

// OCRVote is the glyph read from a cell. SideKnown is false for the
// glyphs shared by both sides (horse, chariot, cannon).
type OCRVote struct {
	Text       string
	Piece      xiangqi.Piece
	SideKnown  bool
	Confidence float64
	Matched    bool
}

// ColorVote classifies the dominant piece paint in a cell. Empty is set
// when neither color mask clears the ratio floor.
type ColorVote struct {
	Side      xiangqi.Side
	SideKnown bool
	Empty     bool
	Ratio     float64
}

// CellReading is the fused result for one cell. An empty Piece means the
// cell was read as unoccupied.
type CellReading struct {
	Piece      xiangqi.Piece
	Confidence float64
	Source     string
}

// IsEmpty reports whether the cell was read as unoccupied.
func (r CellReading) IsEmpty() bool {
	return r.Piece.IsEmpty()
}

// FusionPolicy holds the thresholds that steer vote fusion.
type FusionPolicy struct {
	TemplateMin   float64 // template votes below this are discarded
	OCRMin        float64 // OCR votes below this are discarded
	OCRPreference float64 // OCR wins label disagreements at or above this
	ColorOverride float64 // color may flip the side at or above this ratio
}

// Fuse combines the three votes for one cell:
//
//  1. A color-empty cell is empty, whatever the glyph classifiers say.
//  2. Template and OCR agreeing on the piece yields that piece at the
//     higher of the two confidences.
//  3. On disagreement OCR wins if it clears the preference threshold,
//     otherwise the template wins.
//  4. A single surviving vote is taken as is; a side-ambiguous OCR vote
//     with no color support stays unresolved.
//  5. No surviving vote reads as empty with zero confidence.
//  6. A strong color vote overrides only the side of the chosen piece.
func Fuse(tmpl TemplateVote, ocr OCRVote, color ColorVote, policy FusionPolicy) CellReading {
	if color.Empty {
		conf := 1 - color.Ratio
		if conf < 0 {
			conf = 0
		}
		return CellReading{Confidence: conf, Source: "color"}
	}

	templateOK := tmpl.Matched && tmpl.Score >= policy.TemplateMin
	ocrOK := ocr.Matched && ocr.Confidence >= policy.OCRMin

	var reading CellReading
	switch {
	case templateOK && ocrOK:
		ocrPiece, resolved := resolveOCRSide(ocr, color, tmpl)
		if resolved && ocrPiece == tmpl.Piece {
			conf := tmpl.Score
			if ocr.Confidence > conf {
				conf = ocr.Confidence
			}
			reading = CellReading{Piece: tmpl.Piece, Confidence: conf, Source: "agreement"}
		} else if resolved && ocr.Confidence >= policy.OCRPreference {
			reading = CellReading{Piece: ocrPiece, Confidence: ocr.Confidence, Source: "ocr"}
		} else {
			reading = CellReading{Piece: tmpl.Piece, Confidence: tmpl.Score, Source: "template"}
		}
	case templateOK:
		reading = CellReading{Piece: tmpl.Piece, Confidence: tmpl.Score, Source: "template"}
	case ocrOK:
		ocrPiece, resolved := resolveOCRSide(ocr, color, TemplateVote{})
		if !resolved {
			// A shared glyph with no side signal cannot name a piece.
			return CellReading{Source: "none"}
		}
		reading = CellReading{Piece: ocrPiece, Confidence: ocr.Confidence, Source: "ocr"}
	default:
		return CellReading{Source: "none"}
	}

	// A confident color contradiction corrects the side without touching
	// the kind.
	if color.SideKnown && color.Ratio >= policy.ColorOverride &&
		reading.Piece.Side != color.Side {
		reading.Piece.Side = color.Side
		reading.Source += "+color"
	}

	return reading
}

// resolveOCRSide fills in the side of a shared-glyph OCR vote, preferring
// the color vote and falling back on the template's side.
func resolveOCRSide(ocr OCRVote, color ColorVote, tmpl TemplateVote) (xiangqi.Piece, bool) {
	if ocr.SideKnown {
		return ocr.Piece, true
	}
	p := ocr.Piece
	if color.SideKnown {
		p.Side = color.Side
		return p, true
	}
	if tmpl.Matched {
		p.Side = tmpl.Piece.Side
		return p, true
	}
	return xiangqi.Piece{}, false
}
