package vision

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"

	"github.com/longmaomaoa/ai-OpenChess/internal/xiangqi"
)

// Template is one reference piece image.
type Template struct {
	Piece xiangqi.Piece
	Name  string
	Image gocv.Mat
}

// TemplateLibrary holds the reference images used for matching.
type TemplateLibrary struct {
	templates []Template
}

// templateNames maps file basenames to piece labels.
var templateNames = map[string]xiangqi.Piece{
	"red_king":       {Side: xiangqi.Red, Kind: xiangqi.King},
	"red_advisor":    {Side: xiangqi.Red, Kind: xiangqi.Advisor},
	"red_elephant":   {Side: xiangqi.Red, Kind: xiangqi.Elephant},
	"red_horse":      {Side: xiangqi.Red, Kind: xiangqi.Horse},
	"red_chariot":    {Side: xiangqi.Red, Kind: xiangqi.Chariot},
	"red_cannon":     {Side: xiangqi.Red, Kind: xiangqi.Cannon},
	"red_pawn":       {Side: xiangqi.Red, Kind: xiangqi.Pawn},
	"black_king":     {Side: xiangqi.Black, Kind: xiangqi.King},
	"black_advisor":  {Side: xiangqi.Black, Kind: xiangqi.Advisor},
	"black_elephant": {Side: xiangqi.Black, Kind: xiangqi.Elephant},
	"black_horse":    {Side: xiangqi.Black, Kind: xiangqi.Horse},
	"black_chariot":  {Side: xiangqi.Black, Kind: xiangqi.Chariot},
	"black_cannon":   {Side: xiangqi.Black, Kind: xiangqi.Cannon},
	"black_pawn":     {Side: xiangqi.Black, Kind: xiangqi.Pawn},
}

// PieceFromTemplateName resolves a template basename (without extension)
// to its piece label.
func PieceFromTemplateName(name string) (xiangqi.Piece, bool) {
	p, ok := templateNames[strings.ToLower(name)]
	return p, ok
}

// LoadTemplateLibrary reads every recognized template image from dir.
// Unrecognized filenames are skipped. An empty directory is an error: the
// matcher would be blind.
func LoadTemplateLibrary(dir string) (*TemplateLibrary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read template dir: %w", err)
	}

	lib := &TemplateLibrary{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
			continue
		}
		base := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		piece, ok := PieceFromTemplateName(base)
		if !ok {
			continue
		}

		img := gocv.IMRead(filepath.Join(dir, entry.Name()), gocv.IMReadGrayScale)
		if img.Empty() {
			return nil, fmt.Errorf("failed to load template image: %s", entry.Name())
		}
		lib.templates = append(lib.templates, Template{
			Piece: piece,
			Name:  base,
			Image: img,
		})
	}

	if len(lib.templates) == 0 {
		return nil, fmt.Errorf("no usable templates in %s", dir)
	}
	return lib, nil
}

// Templates returns the loaded templates.
func (l *TemplateLibrary) Templates() []Template {
	return l.templates
}

// Len returns the number of loaded templates.
func (l *TemplateLibrary) Len() int {
	return len(l.templates)
}

// Close releases the template images.
func (l *TemplateLibrary) Close() {
	for i := range l.templates {
		l.templates[i].Image.Close()
	}
	l.templates = nil
}
