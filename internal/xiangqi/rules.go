package xiangqi

import "fmt"

// GameStatus classifies a position from the side to move's point of view.
type GameStatus int

const (
	StatusOngoing GameStatus = iota
	StatusCheck
	StatusCheckmate
	StatusStalemate
)

// Terminal reports whether the game is over. Both checkmate and stalemate
// end the game as a loss for the side to move.
func (s GameStatus) Terminal() bool {
	return s == StatusCheckmate || s == StatusStalemate
}

// String returns the status name
func (s GameStatus) String() string {
	switch s {
	case StatusCheck:
		return "check"
	case StatusCheckmate:
		return "checkmate"
	case StatusStalemate:
		return "stalemate"
	default:
		return "ongoing"
	}
}

var orthogonalSteps = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

var diagonalSteps = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}

// horseSteps pairs each L-jump with the adjacent leg cell that must be
// empty for the jump to be playable.
var horseSteps = [8][4]int{
	{1, 2, 0, 1}, {-1, 2, 0, 1}, {1, -2, 0, -1}, {-1, -2, 0, -1},
	{2, 1, 1, 0}, {2, -1, 1, 0}, {-2, 1, -1, 0}, {-2, -1, -1, 0},
}

// forward returns the rank delta that advances the given side.
func forward(s Side) int {
	if s == Red {
		return -1
	}
	return 1
}

// PseudoMoves generates every move that obeys the piece movement rules,
// without checking whether the mover's king is left exposed.
func PseudoMoves(b Board, side Side) []Move {
	var moves []Move
	for _, from := range b.Pieces(side) {
		moves = append(moves, pieceMoves(b, from)...)
	}
	return moves
}

func pieceMoves(b Board, from Cell) []Move {
	p := b.At(from)
	switch p.Kind {
	case King:
		return kingMoves(b, from, p)
	case Advisor:
		return advisorMoves(b, from, p)
	case Elephant:
		return elephantMoves(b, from, p)
	case Horse:
		return horseMoves(b, from, p)
	case Chariot:
		return slideMoves(b, from, p)
	case Cannon:
		return cannonMoves(b, from, p)
	case Pawn:
		return pawnMoves(b, from, p)
	default:
		return nil
	}
}

func appendMove(moves []Move, b Board, from, to Cell, p Piece) []Move {
	target := b.At(to)
	if !target.IsEmpty() && target.Side == p.Side {
		return moves
	}
	return append(moves, Move{From: from, To: to, Piece: p, Captured: target})
}

// kingMoves yields the single orthogonal palace steps plus the flying
// general capture along an open file.
func kingMoves(b Board, from Cell, p Piece) []Move {
	var moves []Move
	for _, d := range orthogonalSteps {
		to := Cell{File: from.File + d[0], Rank: from.Rank + d[1]}
		if to.Valid() && to.InPalace(p.Side) {
			moves = appendMove(moves, b, from, to, p)
		}
	}
	// Flying general: if the enemy king stands on the same file with no
	// piece between, capturing it is a legal move.
	dir := forward(p.Side)
	for rank := from.Rank + dir; rank >= 0 && rank < Ranks; rank += dir {
		c := Cell{File: from.File, Rank: rank}
		occ := b.At(c)
		if occ.IsEmpty() {
			continue
		}
		if occ.Kind == King && occ.Side != p.Side {
			moves = append(moves, Move{From: from, To: c, Piece: p, Captured: occ})
		}
		break
	}
	return moves
}

func advisorMoves(b Board, from Cell, p Piece) []Move {
	var moves []Move
	for _, d := range diagonalSteps {
		to := Cell{File: from.File + d[0], Rank: from.Rank + d[1]}
		if to.Valid() && to.InPalace(p.Side) {
			moves = appendMove(moves, b, from, to, p)
		}
	}
	return moves
}

func elephantMoves(b Board, from Cell, p Piece) []Move {
	var moves []Move
	for _, d := range diagonalSteps {
		eye := Cell{File: from.File + d[0], Rank: from.Rank + d[1]}
		to := Cell{File: from.File + 2*d[0], Rank: from.Rank + 2*d[1]}
		if !to.Valid() || to.AcrossRiver(p.Side) {
			continue
		}
		if !b.At(eye).IsEmpty() {
			continue
		}
		moves = appendMove(moves, b, from, to, p)
	}
	return moves
}

func horseMoves(b Board, from Cell, p Piece) []Move {
	var moves []Move
	for _, d := range horseSteps {
		leg := Cell{File: from.File + d[2], Rank: from.Rank + d[3]}
		if !b.At(leg).IsEmpty() {
			continue
		}
		to := Cell{File: from.File + d[0], Rank: from.Rank + d[1]}
		if to.Valid() {
			moves = appendMove(moves, b, from, to, p)
		}
	}
	return moves
}

func slideMoves(b Board, from Cell, p Piece) []Move {
	var moves []Move
	for _, d := range orthogonalSteps {
		for step := 1; ; step++ {
			to := Cell{File: from.File + d[0]*step, Rank: from.Rank + d[1]*step}
			if !to.Valid() {
				break
			}
			occ := b.At(to)
			if occ.IsEmpty() {
				moves = append(moves, Move{From: from, To: to, Piece: p})
				continue
			}
			if occ.Side != p.Side {
				moves = append(moves, Move{From: from, To: to, Piece: p, Captured: occ})
			}
			break
		}
	}
	return moves
}

// cannonMoves slides through empty cells for quiet moves, then past exactly
// one screen piece for a capture.
func cannonMoves(b Board, from Cell, p Piece) []Move {
	var moves []Move
	for _, d := range orthogonalSteps {
		screened := false
		for step := 1; ; step++ {
			to := Cell{File: from.File + d[0]*step, Rank: from.Rank + d[1]*step}
			if !to.Valid() {
				break
			}
			occ := b.At(to)
			if !screened {
				if occ.IsEmpty() {
					moves = append(moves, Move{From: from, To: to, Piece: p})
					continue
				}
				screened = true
				continue
			}
			if occ.IsEmpty() {
				continue
			}
			if occ.Side != p.Side {
				moves = append(moves, Move{From: from, To: to, Piece: p, Captured: occ})
			}
			break
		}
	}
	return moves
}

func pawnMoves(b Board, from Cell, p Piece) []Move {
	var moves []Move
	ahead := Cell{File: from.File, Rank: from.Rank + forward(p.Side)}
	if ahead.Valid() {
		moves = appendMove(moves, b, from, ahead, p)
	}
	if from.AcrossRiver(p.Side) {
		for _, df := range []int{-1, 1} {
			to := Cell{File: from.File + df, Rank: from.Rank}
			if to.Valid() {
				moves = appendMove(moves, b, from, to, p)
			}
		}
	}
	return moves
}

// KingsFacing reports whether the two kings stand on the same file with no
// piece between them.
func KingsFacing(b Board) bool {
	redKing, okRed := b.FindKing(Red)
	blackKing, okBlack := b.FindKing(Black)
	if !okRed || !okBlack || redKing.File != blackKing.File {
		return false
	}
	for rank := blackKing.Rank + 1; rank < redKing.Rank; rank++ {
		if !b.At(Cell{File: redKing.File, Rank: rank}).IsEmpty() {
			return false
		}
	}
	return true
}

// InCheck reports whether the given side's king is attacked, including the
// flying general condition. A missing king counts as in check.
func InCheck(b Board, side Side) bool {
	kingCell, ok := b.FindKing(side)
	if !ok {
		return true
	}
	if KingsFacing(b) {
		return true
	}
	for _, m := range PseudoMoves(b, side.Opponent()) {
		if m.To == kingCell {
			return true
		}
	}
	return false
}

// LegalMoves generates every move for the side that does not leave its own
// king in check or create the facing-kings condition.
func LegalMoves(b Board, side Side) []Move {
	pseudo := PseudoMoves(b, side)
	legal := make([]Move, 0, len(pseudo))
	for _, m := range pseudo {
		if !InCheck(b.Apply(m), side) {
			legal = append(legal, m)
		}
	}
	return legal
}

// IsLegalMove reports whether the move is playable on the board, returning
// a reasoned error when it is not.
func IsLegalMove(b Board, m Move) error {
	if !m.From.Valid() || !m.To.Valid() {
		return fmt.Errorf("move %s is off the board", m)
	}
	p := b.At(m.From)
	if p.IsEmpty() {
		return fmt.Errorf("no piece on %s", m.From)
	}
	if !m.Piece.IsEmpty() && p != m.Piece {
		return fmt.Errorf("piece on %s is %s, not %s", m.From, p, m.Piece)
	}
	for _, candidate := range LegalMoves(b, p.Side) {
		if candidate.From == m.From && candidate.To == m.To {
			return nil
		}
	}
	if InCheck(b.Apply(Move{From: m.From, To: m.To, Piece: p}), p.Side) {
		return fmt.Errorf("move %s leaves the %s king exposed", m, p.Side)
	}
	return fmt.Errorf("%s cannot move from %s to %s", p, m.From, m.To)
}

// Status classifies the position for the side to move. A side with no
// legal moves has lost, whether or not it stands in check.
func Status(b Board, sideToMove Side) GameStatus {
	check := InCheck(b, sideToMove)
	if len(LegalMoves(b, sideToMove)) == 0 {
		if check {
			return StatusCheckmate
		}
		return StatusStalemate
	}
	if check {
		return StatusCheck
	}
	return StatusOngoing
}
