package eval

import (
	"fmt"
	"math"

	"github.com/longmaomaoa/ai-OpenChess/internal/xiangqi"
)

// Weights controls how the evaluation terms are combined.
type Weights struct {
	Material      float64 `json:"material"`
	Position      float64 `json:"position"`
	Mobility      float64 `json:"mobility"`
	KingSafety    float64 `json:"king_safety"`
	CenterControl float64 `json:"center_control"`
	Development   float64 `json:"development"`
	Attack        float64 `json:"attack"`
	Defense       float64 `json:"defense"`
}

// DefaultWeights returns the standard term weights.
func DefaultWeights() Weights {
	return Weights{
		Material:      1.0,
		Position:      0.3,
		Mobility:      0.2,
		KingSafety:    0.4,
		CenterControl: 0.15,
		Development:   0.1,
		Attack:        0.25,
		Defense:       0.2,
	}
}

// Validate checks that no weight is negative.
func (w Weights) Validate() error {
	if w.Material < 0 || w.Position < 0 || w.Mobility < 0 ||
		w.KingSafety < 0 || w.CenterControl < 0 ||
		w.Development < 0 || w.Attack < 0 || w.Defense < 0 {
		return fmt.Errorf("evaluation weights must be non-negative: %+v", w)
	}
	return nil
}

// Phase is the rough stage of the game, derived from the ply count.
type Phase int

const (
	Opening Phase = iota
	Middlegame
	Endgame
)

// String returns the phase name
func (p Phase) String() string {
	switch p {
	case Opening:
		return "opening"
	case Middlegame:
		return "middlegame"
	default:
		return "endgame"
	}
}

// PhaseFor classifies a ply count into a game phase.
func PhaseFor(ply int) Phase {
	moves := ply / 2
	switch {
	case moves <= 10:
		return Opening
	case moves <= 30:
		return Middlegame
	default:
		return Endgame
	}
}

// Report carries the evaluation of a position from one side's point of
// view. Score terms are differences (positive favors the given side).
type Report struct {
	Score          float64 `json:"score"`
	WinProbability float64 `json:"win_probability"`
	Material       float64 `json:"material"`
	Position       float64 `json:"position"`
	Mobility       float64 `json:"mobility"`
	KingSafety     float64 `json:"king_safety"`
	CenterControl  float64 `json:"center_control"`
	Development    float64 `json:"development"`
	Attack         float64 `json:"attack"`
	Defense        float64 `json:"defense"`
	Phase          Phase   `json:"phase"`
}

const (
	// mateScore gates the evaluation when a king is off the board.
	mateScore = 100000

	// sigmoidScale maps centipawn scores into win probability.
	sigmoidScale = 0.002

	minWinProbability = 0.01
	maxWinProbability = 0.99
)

// centerCells are the six river-bank intersections on the middle files.
var centerCells = []xiangqi.Cell{
	{File: 3, Rank: 4}, {File: 4, Rank: 4}, {File: 5, Rank: 4},
	{File: 3, Rank: 5}, {File: 4, Rank: 5}, {File: 5, Rank: 5},
}

// Evaluator scores positions and converts scores to win probabilities.
type Evaluator struct {
	weights Weights
}

// NewEvaluator creates an evaluator with the given weights.
func NewEvaluator(w Weights) (*Evaluator, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Evaluator{weights: w}, nil
}

// Evaluate scores the board for the given side at the given ply.
//
// The raw terms are always computed from Red's point of view and negated
// for Black, so evaluating the same board from both sides always yields
// win probabilities that sum to exactly 1.
func (e *Evaluator) Evaluate(b xiangqi.Board, side xiangqi.Side, ply int) Report {
	material := e.materialTerm(b)
	position := e.positionTerm(b)
	mobility := e.mobilityTerm(b)
	kingSafety := e.kingSafetyTerm(b)
	center := e.centerControlTerm(b)
	development := e.developmentTerm(b)
	attack := e.attackTerm(b)
	defense := e.defenseTerm(b)

	score := material*e.weights.Material +
		position*e.weights.Position +
		mobility*e.weights.Mobility +
		kingSafety*e.weights.KingSafety +
		center*e.weights.CenterControl +
		development*e.weights.Development +
		attack*e.weights.Attack +
		defense*e.weights.Defense

	// A captured king decides the game regardless of everything else.
	if _, ok := b.FindKing(xiangqi.Red); !ok {
		score = -mateScore
	}
	if _, ok := b.FindKing(xiangqi.Black); !ok {
		score = mateScore
	}

	redWin := winProbability(score)

	report := Report{
		Score:          score,
		WinProbability: redWin,
		Material:       material,
		Position:       position,
		Mobility:       mobility,
		KingSafety:     kingSafety,
		CenterControl:  center,
		Development:    development,
		Attack:         attack,
		Defense:        defense,
		Phase:          PhaseFor(ply),
	}
	if side == xiangqi.Black {
		report.Score = -score
		report.Material = -material
		report.Position = -position
		report.Mobility = -mobility
		report.KingSafety = -kingSafety
		report.CenterControl = -center
		report.Development = -development
		report.Attack = -attack
		report.Defense = -defense
		report.WinProbability = 1 - redWin
	}
	return report
}

// materialTerm sums base piece values, Red minus Black.
func (e *Evaluator) materialTerm(b xiangqi.Board) float64 {
	total := 0.0
	for _, c := range b.Pieces(xiangqi.Red) {
		total += PieceValue(b.At(c).Kind)
	}
	for _, c := range b.Pieces(xiangqi.Black) {
		total -= PieceValue(b.At(c).Kind)
	}
	return total
}

// positionTerm sums the per-kind position tables, Red minus Black.
func (e *Evaluator) positionTerm(b xiangqi.Board) float64 {
	total := 0.0
	for _, c := range b.Pieces(xiangqi.Red) {
		total += PositionValue(b.At(c), c)
	}
	for _, c := range b.Pieces(xiangqi.Black) {
		total -= PositionValue(b.At(c), c)
	}
	return total
}

// mobilityTerm is the legal move count difference, Red minus Black.
func (e *Evaluator) mobilityTerm(b xiangqi.Board) float64 {
	red := len(xiangqi.LegalMoves(b, xiangqi.Red))
	black := len(xiangqi.LegalMoves(b, xiangqi.Black))
	return float64(red-black) * 2
}

// kingSafetyTerm compares palace protection, Red minus Black.
func (e *Evaluator) kingSafetyTerm(b xiangqi.Board) float64 {
	return (kingSafety(b, xiangqi.Red) - kingSafety(b, xiangqi.Black)) * 50
}

// kingSafety counts palace protectors against enemy pieces that can reach
// the palace.
func kingSafety(b xiangqi.Board, side xiangqi.Side) float64 {
	protectors := 0
	for _, c := range b.Pieces(side) {
		if c.InPalace(side) && b.At(c).Kind != xiangqi.King {
			protectors++
		}
	}

	threateners := make(map[xiangqi.Cell]bool)
	for _, m := range xiangqi.PseudoMoves(b, side.Opponent()) {
		if m.To.InPalace(side) {
			threateners[m.From] = true
		}
	}

	return float64(protectors)*20 - float64(len(threateners))*30
}

// centerControlTerm rewards occupying the river-bank center, Red minus
// Black.
func (e *Evaluator) centerControlTerm(b xiangqi.Board) float64 {
	total := 0.0
	for _, c := range centerCells {
		p := b.At(c)
		if p.IsEmpty() {
			continue
		}
		if p.Side == xiangqi.Red {
			total += 15
		} else {
			total -= 15
		}
	}
	return total
}

// developmentTerm rewards pieces that have left their starting squares,
// Red minus Black.
func (e *Evaluator) developmentTerm(b xiangqi.Board) float64 {
	start := xiangqi.StartingBoard()
	total := 0.0
	for rank := 0; rank < xiangqi.Ranks; rank++ {
		for file := 0; file < xiangqi.Files; file++ {
			c := xiangqi.Cell{File: file, Rank: rank}
			home := start.At(c)
			if home.IsEmpty() || b.At(c) == home {
				continue
			}
			if home.Side == xiangqi.Red {
				total += 10
			} else {
				total -= 10
			}
		}
	}
	return total
}

// attackTerm weighs material that has crossed the river, Red minus
// Black.
func (e *Evaluator) attackTerm(b xiangqi.Board) float64 {
	total := 0.0
	for _, c := range b.Pieces(xiangqi.Red) {
		if c.AcrossRiver(xiangqi.Red) {
			total += PieceValue(b.At(c).Kind) * 0.1
		}
	}
	for _, c := range b.Pieces(xiangqi.Black) {
		if c.AcrossRiver(xiangqi.Black) {
			total -= PieceValue(b.At(c).Kind) * 0.1
		}
	}
	return total
}

// defenseTerm weighs material still guarding its own half, Red minus
// Black.
func (e *Evaluator) defenseTerm(b xiangqi.Board) float64 {
	total := 0.0
	for _, c := range b.Pieces(xiangqi.Red) {
		if c.OwnSideOfRiver(xiangqi.Red) {
			total += PieceValue(b.At(c).Kind) * 0.05
		}
	}
	for _, c := range b.Pieces(xiangqi.Black) {
		if c.OwnSideOfRiver(xiangqi.Black) {
			total -= PieceValue(b.At(c).Kind) * 0.05
		}
	}
	return total
}

// winProbability maps a centipawn score to [0.01, 0.99] with a sigmoid.
func winProbability(score float64) float64 {
	p := 1.0 / (1.0 + math.Exp(-score*sigmoidScale))
	return math.Max(minWinProbability, math.Min(maxWinProbability, p))
}

// Summary returns a one-line verdict for display.
func (r Report) Summary() string {
	pct := r.WinProbability * 100
	var verdict string
	switch {
	case pct >= 80:
		verdict = "winning"
	case pct >= 65:
		verdict = "clearly better"
	case pct >= 55:
		verdict = "slightly better"
	case pct >= 45:
		verdict = "balanced"
	case pct >= 35:
		verdict = "slightly worse"
	case pct >= 20:
		verdict = "clearly worse"
	default:
		verdict = "losing"
	}
	return fmt.Sprintf("%s (%.1f%% win probability, score %.1f, %s)",
		verdict, pct, r.Score, r.Phase)
}
