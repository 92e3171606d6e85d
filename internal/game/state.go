// Package game tracks an observed game as an append-only chain of
// positions. States are immutable once created: advancing produces a new
// node pointing back at its parent, so earlier positions stay intact for
// replay and rewind.
package game

import (
	"fmt"
	"time"

	"github.com/longmaomaoa/ai-OpenChess/internal/xiangqi"
)

// State is one node in the game history chain.
type State struct {
	parent     *State
	board      xiangqi.Board
	sideToMove xiangqi.Side
	lastMove   *xiangqi.Move
	ply        int
	observedAt time.Time
}

// NewGame starts a history at the given position with the given side to
// move.
func NewGame(board xiangqi.Board, sideToMove xiangqi.Side) *State {
	return &State{
		board:      board,
		sideToMove: sideToMove,
		observedAt: time.Now(),
	}
}

// Board returns the position at this node.
func (s *State) Board() xiangqi.Board {
	return s.board
}

// SideToMove returns whose turn it is at this node.
func (s *State) SideToMove() xiangqi.Side {
	return s.sideToMove
}

// LastMove returns the move that produced this node, or nil for the root.
func (s *State) LastMove() *xiangqi.Move {
	return s.lastMove
}

// Ply returns the number of moves played to reach this node.
func (s *State) Ply() int {
	return s.ply
}

// ObservedAt returns when this node was recorded.
func (s *State) ObservedAt() time.Time {
	return s.observedAt
}

// Status classifies this node's position for the side to move.
func (s *State) Status() xiangqi.GameStatus {
	return xiangqi.Status(s.board, s.sideToMove)
}

// Advance appends a move and returns the new head. The move must belong
// to the side to move; the receiver is never modified.
func (s *State) Advance(m xiangqi.Move) (*State, error) {
	piece := s.board.At(m.From)
	if piece.IsEmpty() {
		return nil, fmt.Errorf("no piece on %s", m.From)
	}
	if piece.Side != s.sideToMove {
		return nil, fmt.Errorf("it is %s to move, not %s", s.sideToMove, piece.Side)
	}
	if err := xiangqi.IsLegalMove(s.board, m); err != nil {
		return nil, fmt.Errorf("cannot advance: %w", err)
	}

	m.Piece = piece
	m.Captured = s.board.At(m.To)

	return &State{
		parent:     s,
		board:      s.board.Apply(m),
		sideToMove: s.sideToMove.Opponent(),
		lastMove:   &m,
		ply:        s.ply + 1,
		observedAt: time.Now(),
	}, nil
}

// Rewind returns the state n moves earlier, or the root if n exceeds the
// history length.
func (s *State) Rewind(n int) *State {
	node := s
	for i := 0; i < n && node.parent != nil; i++ {
		node = node.parent
	}
	return node
}

// History returns every board from the root to this node, oldest first.
func (s *State) History() []xiangqi.Board {
	var chain []*State
	for node := s; node != nil; node = node.parent {
		chain = append(chain, node)
	}
	boards := make([]xiangqi.Board, len(chain))
	for i, node := range chain {
		boards[len(chain)-1-i] = node.board
	}
	return boards
}

// Moves returns every move from the root to this node, oldest first.
func (s *State) Moves() []xiangqi.Move {
	var reversed []xiangqi.Move
	for node := s; node != nil; node = node.parent {
		if node.lastMove != nil {
			reversed = append(reversed, *node.lastMove)
		}
	}
	moves := make([]xiangqi.Move, len(reversed))
	for i, m := range reversed {
		moves[len(reversed)-1-i] = m
	}
	return moves
}
