package scanner

import (
	"fmt"

	"github.com/longmaomaoa/ai-OpenChess/internal/xiangqi"
)

// AmbiguousBoardError reports a frame where two cells claim the same king
// with equal confidence, so neither can be discarded.
type AmbiguousBoardError struct {
	Side  xiangqi.Side
	Cells []xiangqi.Cell
}

func (e *AmbiguousBoardError) Error() string {
	return fmt.Sprintf("ambiguous board: %v king seen at %v with equal confidence", e.Side, e.Cells)
}

// SuspectBoardError reports a frame whose piece census cannot come from a
// legal game, for example a missing king or three chariots.
type SuspectBoardError struct {
	Reason string
}

func (e *SuspectBoardError) Error() string {
	return fmt.Sprintf("suspect board: %s", e.Reason)
}

// RecognitionNoiseError reports a frame diff too scattered to be a single
// move, usually an animation or popup caught mid-frame.
type RecognitionNoiseError struct {
	Changed int
}

func (e *RecognitionNoiseError) Error() string {
	return fmt.Sprintf("recognition noise: %d cells changed at once", e.Changed)
}

// InvalidTransitionError reports a pair of boards whose difference is not
// the shape of any move.
type InvalidTransitionError struct {
	Deltas []xiangqi.CellDelta
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %d cell deltas do not form a move", len(e.Deltas))
}

// IllegalMoveError reports a detected move the rules reject for the side
// to play.
type IllegalMoveError struct {
	Move   xiangqi.Move
	Reason error
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move %s: %v", e.Move, e.Reason)
}

func (e *IllegalMoveError) Unwrap() error {
	return e.Reason
}
