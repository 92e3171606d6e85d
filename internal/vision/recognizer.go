package vision

import (
	"fmt"
	"image"
	"sync"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"

	"github.com/longmaomaoa/ai-OpenChess/internal/xiangqi"
)

// PieceRecognizer classifies a single cell crop by fusing template
// matching, OCR and color analysis. Template and color classification are
// safe to run from multiple goroutines; the tesseract client is not, so
// OCR calls are serialized behind a mutex.
type PieceRecognizer struct {
	library  *TemplateLibrary
	colors   ColorThresholds
	policy   FusionPolicy
	colorMin float64

	useOCR bool
	ocr    *gosseract.Client
	ocrMu  sync.Mutex
}

// NewPieceRecognizer creates a recognizer from config and a loaded
// template library.
func NewPieceRecognizer(config *Config, library *TemplateLibrary) (*PieceRecognizer, error) {
	if library == nil || library.Len() == 0 {
		return nil, fmt.Errorf("recognizer requires a template library")
	}

	colors := DefaultColorThresholds()
	if config.ColorThresholds != nil {
		colors = *config.ColorThresholds
	}

	r := &PieceRecognizer{
		library:  library,
		colors:   colors,
		policy:   config.FusionPolicy(),
		colorMin: config.ColorRatioMin,
		useOCR:   config.UseOCR,
	}

	if config.UseOCR {
		client := gosseract.NewClient()
		if err := client.SetLanguage(config.TessdataLanguage); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set OCR language: %w", err)
		}
		// Single text line matches the one-glyph crops.
		if err := client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set OCR segmentation mode: %w", err)
		}
		r.ocr = client
	}

	return r, nil
}

// Recognize classifies one cell crop.
func (r *PieceRecognizer) Recognize(cell gocv.Mat) (CellReading, error) {
	if cell.Empty() {
		return CellReading{}, fmt.Errorf("empty cell image")
	}

	// Screen grabs arrive as BGRA; the color and template paths want BGR.
	bgr := gocv.NewMat()
	defer bgr.Close()
	if cell.Channels() == 4 {
		gocv.CvtColor(cell, &bgr, gocv.ColorBGRAToBGR)
	} else {
		cell.CopyTo(&bgr)
	}

	color := r.classifyColor(bgr)
	tmpl := r.matchTemplates(bgr)

	var ocr OCRVote
	if r.useOCR && !color.Empty {
		var err error
		ocr, err = r.readGlyph(bgr)
		if err != nil {
			// OCR failure degrades to the remaining two signals.
			ocr = OCRVote{}
		}
	}

	return Fuse(tmpl, ocr, color, r.policy), nil
}

// matchTemplates runs normalized cross-correlation against every template
// and keeps the best score.
func (r *PieceRecognizer) matchTemplates(cell gocv.Mat) TemplateVote {
	gray := gocv.NewMat()
	defer gray.Close()
	if cell.Channels() > 1 {
		gocv.CvtColor(cell, &gray, gocv.ColorBGRToGray)
	} else {
		cell.CopyTo(&gray)
	}

	vote := TemplateVote{}
	for _, t := range r.library.Templates() {
		resized := gocv.NewMat()
		gocv.Resize(t.Image, &resized, image.Pt(gray.Cols(), gray.Rows()), 0, 0, gocv.InterpolationLinear)

		result := gocv.NewMat()
		mask := gocv.NewMat()
		gocv.MatchTemplate(gray, resized, &result, gocv.TmCcoeffNormed, mask)
		_, maxVal, _, _ := gocv.MinMaxLoc(result)

		mask.Close()
		result.Close()
		resized.Close()

		score := float64(maxVal)
		if !vote.Matched || score > vote.Score {
			vote = TemplateVote{Piece: t.Piece, Score: score, Matched: true}
		}
	}
	return vote
}

// readGlyph OCRs the crop and resolves the glyph through the piece table.
func (r *PieceRecognizer) readGlyph(cell gocv.Mat) (OCRVote, error) {
	buf, err := gocv.IMEncode(gocv.PNGFileExt, cell)
	if err != nil {
		return OCRVote{}, fmt.Errorf("failed to encode cell: %w", err)
	}
	defer buf.Close()

	r.ocrMu.Lock()
	defer r.ocrMu.Unlock()

	if err := r.ocr.SetImageFromBytes(buf.GetBytes()); err != nil {
		return OCRVote{}, fmt.Errorf("failed to set OCR image: %w", err)
	}

	boxes, err := r.ocr.GetBoundingBoxes(gosseract.RIL_SYMBOL)
	if err != nil {
		return OCRVote{}, fmt.Errorf("OCR failed: %w", err)
	}

	for _, box := range boxes {
		for _, glyph := range box.Word {
			piece, sideKnown, ok := xiangqi.PieceFromGlyph(glyph)
			if !ok {
				continue
			}
			return OCRVote{
				Text:       box.Word,
				Piece:      piece,
				SideKnown:  sideKnown,
				Confidence: box.Confidence / 100,
				Matched:    true,
			}, nil
		}
	}
	return OCRVote{}, nil
}

// classifyColor masks the crop against the red and black HSV ranges and
// votes on the dominant paint.
func (r *PieceRecognizer) classifyColor(cell gocv.Mat) ColorVote {
	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(cell, &hsv, gocv.ColorBGRToHSV)

	redMask := gocv.NewMat()
	defer redMask.Close()
	redAltMask := gocv.NewMat()
	defer redAltMask.Close()
	blackMask := gocv.NewMat()
	defer blackMask.Close()

	gocv.InRangeWithScalar(hsv, r.colors.RedLower, r.colors.RedUpper, &redMask)
	gocv.InRangeWithScalar(hsv, r.colors.RedAltLower, r.colors.RedAltUpper, &redAltMask)
	gocv.InRangeWithScalar(hsv, r.colors.BlackLower, r.colors.BlackUpper, &blackMask)

	total := float64(cell.Rows() * cell.Cols())
	redRatio := float64(gocv.CountNonZero(redMask)+gocv.CountNonZero(redAltMask)) / total
	blackRatio := float64(gocv.CountNonZero(blackMask)) / total

	switch {
	case redRatio > r.colorMin && redRatio >= blackRatio:
		return ColorVote{Side: xiangqi.Red, SideKnown: true, Ratio: redRatio}
	case blackRatio > r.colorMin:
		return ColorVote{Side: xiangqi.Black, SideKnown: true, Ratio: blackRatio}
	default:
		ratio := redRatio
		if blackRatio > ratio {
			ratio = blackRatio
		}
		return ColorVote{Empty: true, Ratio: ratio}
	}
}

// Close releases the OCR client.
func (r *PieceRecognizer) Close() error {
	if r.ocr != nil {
		return r.ocr.Close()
	}
	return nil
}
