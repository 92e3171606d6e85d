package scanner

import (
	"github.com/longmaomaoa/ai-OpenChess/internal/xiangqi"
)

// DetectMove compares two consecutive boards and recovers the single move
// between them. moved is false when the boards are identical. Frames that
// differ in a way no move explains return a typed error.
func DetectMove(prev, next xiangqi.Board) (move xiangqi.Move, moved bool, err error) {
	deltas := prev.Diff(next)
	if len(deltas) == 0 {
		return xiangqi.Move{}, false, nil
	}

	// A move vacates exactly one cell and fills or replaces exactly one
	// other with the same piece.
	var departures, arrivals []xiangqi.CellDelta
	for _, d := range deltas {
		if d.After.IsEmpty() {
			departures = append(departures, d)
		} else {
			arrivals = append(arrivals, d)
		}
	}

	if len(departures) == 1 && len(arrivals) == 1 && len(deltas) == 2 {
		dep, arr := departures[0], arrivals[0]
		if arr.After == dep.Before && !dep.Before.IsEmpty() {
			return xiangqi.Move{
				From:     dep.Cell,
				To:       arr.Cell,
				Piece:    dep.Before,
				Captured: arr.Before,
			}, true, nil
		}
		return xiangqi.Move{}, false, &InvalidTransitionError{Deltas: deltas}
	}

	if len(deltas) > 2 {
		return xiangqi.Move{}, false, &RecognitionNoiseError{Changed: len(deltas)}
	}
	return xiangqi.Move{}, false, &InvalidTransitionError{Deltas: deltas}
}
