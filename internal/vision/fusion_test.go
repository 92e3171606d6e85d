package vision

import (
	"testing"

	"github.com/longmaomaoa/ai-OpenChess/internal/xiangqi"
)

func testPolicy() FusionPolicy {
	return FusionPolicy{
		TemplateMin:   0.70,
		OCRMin:        0.60,
		OCRPreference: 0.80,
		ColorOverride: 0.35,
	}
}

func TestFusePrecedence(t *testing.T) {
	redHorse := xiangqi.Piece{Side: xiangqi.Red, Kind: xiangqi.Horse}
	blackHorse := xiangqi.Piece{Side: xiangqi.Black, Kind: xiangqi.Horse}
	redCannon := xiangqi.Piece{Side: xiangqi.Red, Kind: xiangqi.Cannon}
	redKing := xiangqi.Piece{Side: xiangqi.Red, Kind: xiangqi.King}

	tests := []struct {
		name       string
		tmpl       TemplateVote
		ocr        OCRVote
		color      ColorVote
		wantPiece  xiangqi.Piece
		wantEmpty  bool
		wantSource string
	}{
		{
			name:       "color empty overrides matched template",
			tmpl:       TemplateVote{Piece: redHorse, Score: 0.95, Matched: true},
			color:      ColorVote{Empty: true, Ratio: 0.02},
			wantEmpty:  true,
			wantSource: "color",
		},
		{
			name:       "agreement takes the higher confidence",
			tmpl:       TemplateVote{Piece: redKing, Score: 0.75, Matched: true},
			ocr:        OCRVote{Piece: redKing, SideKnown: true, Confidence: 0.90, Matched: true},
			color:      ColorVote{Side: xiangqi.Red, SideKnown: true, Ratio: 0.4},
			wantPiece:  redKing,
			wantSource: "agreement",
		},
		{
			name:       "disagreement resolved by confident ocr",
			tmpl:       TemplateVote{Piece: redHorse, Score: 0.72, Matched: true},
			ocr:        OCRVote{Piece: redKing, SideKnown: true, Confidence: 0.88, Matched: true},
			color:      ColorVote{Side: xiangqi.Red, SideKnown: true, Ratio: 0.4},
			wantPiece:  redKing,
			wantSource: "ocr",
		},
		{
			name:       "disagreement with weak ocr keeps the template",
			tmpl:       TemplateVote{Piece: redHorse, Score: 0.85, Matched: true},
			ocr:        OCRVote{Piece: redKing, SideKnown: true, Confidence: 0.65, Matched: true},
			color:      ColorVote{Side: xiangqi.Red, SideKnown: true, Ratio: 0.4},
			wantPiece:  redHorse,
			wantSource: "template",
		},
		{
			name:       "template alone",
			tmpl:       TemplateVote{Piece: redCannon, Score: 0.80, Matched: true},
			color:      ColorVote{Side: xiangqi.Red, SideKnown: true, Ratio: 0.2},
			wantPiece:  redCannon,
			wantSource: "template",
		},
		{
			name:       "template below threshold is discarded",
			tmpl:       TemplateVote{Piece: redCannon, Score: 0.50, Matched: true},
			color:      ColorVote{Side: xiangqi.Red, SideKnown: true, Ratio: 0.2},
			wantEmpty:  true,
			wantSource: "none",
		},
		{
			name:       "shared glyph resolved by color",
			ocr:        OCRVote{Piece: xiangqi.Piece{Kind: xiangqi.Horse}, Confidence: 0.85, Matched: true},
			color:      ColorVote{Side: xiangqi.Black, SideKnown: true, Ratio: 0.3},
			wantPiece:  blackHorse,
			wantSource: "ocr",
		},
		{
			name:      "shared glyph without side support stays empty",
			ocr:       OCRVote{Piece: xiangqi.Piece{Kind: xiangqi.Horse}, Confidence: 0.85, Matched: true},
			color:     ColorVote{Ratio: 0.05},
			wantEmpty: true,
		},
		{
			name:       "strong color flips the side only",
			tmpl:       TemplateVote{Piece: redHorse, Score: 0.82, Matched: true},
			color:      ColorVote{Side: xiangqi.Black, SideKnown: true, Ratio: 0.5},
			wantPiece:  blackHorse,
			wantSource: "template+color",
		},
		{
			name:       "weak color does not flip the side",
			tmpl:       TemplateVote{Piece: redHorse, Score: 0.82, Matched: true},
			color:      ColorVote{Side: xiangqi.Black, SideKnown: true, Ratio: 0.15},
			wantPiece:  redHorse,
			wantSource: "template",
		},
		{
			name:      "no votes reads as empty",
			color:     ColorVote{Ratio: 0.05},
			wantEmpty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fuse(tt.tmpl, tt.ocr, tt.color, testPolicy())
			if tt.wantEmpty {
				if !got.IsEmpty() {
					t.Fatalf("expected empty reading, got %v from %s", got.Piece, got.Source)
				}
				if tt.wantSource != "" && got.Source != tt.wantSource {
					t.Errorf("source = %q, want %q", got.Source, tt.wantSource)
				}
				return
			}
			if got.Piece != tt.wantPiece {
				t.Errorf("piece = %v, want %v", got.Piece, tt.wantPiece)
			}
			if got.Source != tt.wantSource {
				t.Errorf("source = %q, want %q", got.Source, tt.wantSource)
			}
			if got.Confidence <= 0 {
				t.Errorf("confidence = %v, want > 0", got.Confidence)
			}
		})
	}
}

func TestFuseAgreementConfidence(t *testing.T) {
	king := xiangqi.Piece{Side: xiangqi.Red, Kind: xiangqi.King}
	got := Fuse(
		TemplateVote{Piece: king, Score: 0.75, Matched: true},
		OCRVote{Piece: king, SideKnown: true, Confidence: 0.91, Matched: true},
		ColorVote{Side: xiangqi.Red, SideKnown: true, Ratio: 0.4},
		testPolicy(),
	)
	if got.Confidence != 0.91 {
		t.Errorf("agreement confidence = %v, want the higher vote 0.91", got.Confidence)
	}
}
