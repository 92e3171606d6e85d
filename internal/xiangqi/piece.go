package xiangqi

import "fmt"

// Side identifies which army a piece belongs to.
type Side int

const (
	Red Side = iota
	Black
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == Red {
		return Black
	}
	return Red
}

// String returns the side name
func (s Side) String() string {
	if s == Red {
		return "red"
	}
	return "black"
}

// Kind represents a piece kind. The zero value marks an empty square.
type Kind int

const (
	NoKind Kind = iota
	King
	Advisor
	Elephant
	Horse
	Chariot
	Cannon
	Pawn
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case King:
		return "king"
	case Advisor:
		return "advisor"
	case Elephant:
		return "elephant"
	case Horse:
		return "horse"
	case Chariot:
		return "chariot"
	case Cannon:
		return "cannon"
	case Pawn:
		return "pawn"
	default:
		return "none"
	}
}

// Piece is a piece on the board. The zero value is an empty square.
type Piece struct {
	Side Side `json:"side"`
	Kind Kind `json:"kind"`
}

// IsEmpty reports whether the piece slot is unoccupied.
func (p Piece) IsEmpty() bool {
	return p.Kind == NoKind
}

// String returns a readable piece description (e.g. "red chariot")
func (p Piece) String() string {
	if p.IsEmpty() {
		return "empty"
	}
	return fmt.Sprintf("%s %s", p.Side, p.Kind)
}

// redGlyphs and blackGlyphs map kinds to the characters printed on the
// physical pieces. Horse, chariot and cannon share a glyph across sides.
var redGlyphs = map[Kind]rune{
	King:     '帅',
	Advisor:  '仕',
	Elephant: '相',
	Horse:    '马',
	Chariot:  '车',
	Cannon:   '炮',
	Pawn:     '兵',
}

var blackGlyphs = map[Kind]rune{
	King:     '将',
	Advisor:  '士',
	Elephant: '象',
	Horse:    '马',
	Chariot:  '车',
	Cannon:   '炮',
	Pawn:     '卒',
}

// Glyph returns the Chinese character for the piece, or '·' for empty.
func (p Piece) Glyph() rune {
	if p.IsEmpty() {
		return '·'
	}
	if p.Side == Red {
		return redGlyphs[p.Kind]
	}
	return blackGlyphs[p.Kind]
}

// PieceFromGlyph resolves a glyph to a piece. Side-ambiguous glyphs
// (horse, chariot, cannon) resolve to the kind with sideKnown=false so the
// caller can supply the side from another signal.
func PieceFromGlyph(r rune) (piece Piece, sideKnown bool, ok bool) {
	switch r {
	case '帅', '帥':
		return Piece{Red, King}, true, true
	case '将', '將':
		return Piece{Black, King}, true, true
	case '仕':
		return Piece{Red, Advisor}, true, true
	case '士':
		return Piece{Black, Advisor}, true, true
	case '相':
		return Piece{Red, Elephant}, true, true
	case '象':
		return Piece{Black, Elephant}, true, true
	case '兵':
		return Piece{Red, Pawn}, true, true
	case '卒':
		return Piece{Black, Pawn}, true, true
	case '马', '馬':
		return Piece{Red, Horse}, false, true
	case '车', '車':
		return Piece{Red, Chariot}, false, true
	case '炮', '砲':
		return Piece{Red, Cannon}, false, true
	default:
		return Piece{}, false, false
	}
}
