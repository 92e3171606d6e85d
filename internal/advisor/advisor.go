package advisor

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/longmaomaoa/ai-OpenChess/internal/eval"
	"github.com/longmaomaoa/ai-OpenChess/internal/xiangqi"
)

// Recommendation is a single ranked move suggestion.
type Recommendation struct {
	Move           xiangqi.Move `json:"move"`
	Rank           int          `json:"rank"`
	Score          float64      `json:"score"`
	WinProbability float64      `json:"win_probability"`
	Improvement    float64      `json:"improvement"`
	Confidence     float64      `json:"confidence"`
	GivesCheck     bool         `json:"gives_check"`
	Category       string       `json:"category"`
	Reasoning      string       `json:"reasoning"`
}

// Threat is a piece currently attackable by the other side.
type Threat struct {
	Piece xiangqi.Piece `json:"piece"`
	Cell  xiangqi.Cell  `json:"cell"`
}

// Advice is the full output for one position.
type Advice struct {
	Side            xiangqi.Side       `json:"side"`
	Status          xiangqi.GameStatus `json:"status"`
	Baseline        eval.Report        `json:"baseline"`
	Recommendations []Recommendation   `json:"recommendations"`
	Threats         []Threat           `json:"threats"`
	Opportunities   []Threat           `json:"opportunities"`
	Elapsed         time.Duration      `json:"elapsed"`
}

// Advisor ranks one-ply continuations for the side to move.
type Advisor struct {
	evaluator *eval.Evaluator
	topN      int
	logger    *zap.Logger
	mu        sync.Mutex

	// Statistics
	totalRequests   int
	totalMovesTried int
	totalElapsed    time.Duration
}

// NewAdvisor creates an advisor returning at most topN suggestions.
func NewAdvisor(evaluator *eval.Evaluator, topN int, logger *zap.Logger) (*Advisor, error) {
	if evaluator == nil {
		return nil, fmt.Errorf("advisor requires an evaluator")
	}
	if topN < 1 {
		return nil, fmt.Errorf("invalid topN: %d (must be at least 1)", topN)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Advisor{
		evaluator: evaluator,
		topN:      topN,
		logger:    logger,
	}, nil
}

// Recommend evaluates every legal move one ply deep and returns the top
// suggestions in deterministic order. Terminal positions return the
// status with an empty recommendation list.
func (a *Advisor) Recommend(b xiangqi.Board, side xiangqi.Side, ply int) (*Advice, error) {
	start := time.Now()

	status := xiangqi.Status(b, side)
	baseline := a.evaluator.Evaluate(b, side, ply)

	advice := &Advice{
		Side:          side,
		Status:        status,
		Baseline:      baseline,
		Threats:       findThreats(b, side),
		Opportunities: findThreats(b, side.Opponent()),
	}

	if status.Terminal() {
		advice.Elapsed = time.Since(start)
		a.logger.Info("Position is terminal",
			zap.String("side", side.String()),
			zap.String("status", status.String()),
		)
		return advice, nil
	}

	moves := xiangqi.LegalMoves(b, side)
	candidates := make([]Recommendation, 0, len(moves))
	for _, m := range moves {
		next := b.Apply(m)
		report := a.evaluator.Evaluate(next, side, ply+1)
		rec := Recommendation{
			Move:           m,
			Score:          report.Score,
			WinProbability: report.WinProbability,
			Improvement:    report.Score - baseline.Score,
			GivesCheck:     xiangqi.InCheck(next, side.Opponent()),
		}
		rec.Confidence = confidence(rec)
		rec.Category = categorize(rec.Confidence)
		rec.Reasoning = reasoning(rec)
		candidates = append(candidates, rec)
	}

	sortRecommendations(candidates)
	if len(candidates) > a.topN {
		candidates = candidates[:a.topN]
	}
	for i := range candidates {
		candidates[i].Rank = i + 1
	}
	advice.Recommendations = candidates
	advice.Elapsed = time.Since(start)

	a.mu.Lock()
	a.totalRequests++
	a.totalMovesTried += len(moves)
	a.totalElapsed += advice.Elapsed
	a.mu.Unlock()

	if len(candidates) > 0 {
		top := candidates[0]
		a.logger.Info("Advice ready",
			zap.String("side", side.String()),
			zap.String("move", top.Move.String()),
			zap.Float64("score", top.Score),
			zap.Float64("win_probability", top.WinProbability),
			zap.Float64("confidence", top.Confidence),
			zap.Int("candidates", len(moves)),
			zap.Duration("elapsed", advice.Elapsed),
		)
	}

	return advice, nil
}

// sortRecommendations orders by score descending; ties go to captures
// first, then lexicographic origin and destination so the output is fully
// deterministic.
func sortRecommendations(recs []Recommendation) {
	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Move.IsCapture() != b.Move.IsCapture() {
			return a.Move.IsCapture()
		}
		if from := a.Move.From.String(); from != b.Move.From.String() {
			return from < b.Move.From.String()
		}
		return a.Move.To.String() < b.Move.To.String()
	})
}

// confidence follows the fixed ladder: base 0.5, plus improvement tiers,
// plus capture and check bonuses, clamped to [0.10, 0.95].
func confidence(rec Recommendation) float64 {
	c := 0.5
	switch {
	case rec.Improvement > 100:
		c += 0.3
	case rec.Improvement > 50:
		c += 0.2
	case rec.Improvement > 0:
		c += 0.1
	}
	if rec.Move.IsCapture() {
		c += 0.1
	}
	if rec.GivesCheck {
		c += 0.15
	}
	if c < 0.10 {
		c = 0.10
	}
	if c > 0.95 {
		c = 0.95
	}
	return c
}

func categorize(confidence float64) string {
	switch {
	case confidence >= 0.9:
		return "Excellent"
	case confidence >= 0.7:
		return "Good"
	case confidence >= 0.5:
		return "Fair"
	case confidence >= 0.3:
		return "Risky"
	default:
		return "Speculative"
	}
}

func reasoning(rec Recommendation) string {
	var parts []string
	if rec.Move.IsCapture() {
		parts = append(parts, fmt.Sprintf("captures the %s", rec.Move.Captured))
	}
	if rec.GivesCheck {
		parts = append(parts, "gives check")
	}
	switch {
	case rec.Improvement > 100:
		parts = append(parts, "major improvement")
	case rec.Improvement > 0:
		parts = append(parts, "improves the position")
	case rec.Improvement == 0:
		parts = append(parts, "holds the position")
	default:
		parts = append(parts, "concedes ground")
	}

	out := parts[0]
	for _, p := range parts[1:] {
		out += ", " + p
	}
	return out
}

// findThreats lists pieces of the given side that an enemy piece can
// capture right now.
func findThreats(b xiangqi.Board, side xiangqi.Side) []Threat {
	seen := make(map[xiangqi.Cell]bool)
	var threats []Threat
	for _, m := range xiangqi.PseudoMoves(b, side.Opponent()) {
		if !m.IsCapture() || seen[m.To] {
			continue
		}
		seen[m.To] = true
		threats = append(threats, Threat{Piece: b.At(m.To), Cell: m.To})
	}
	sort.Slice(threats, func(i, j int) bool {
		return threats[i].Cell.String() < threats[j].Cell.String()
	})
	return threats
}

// Stats reports advisor workload counters.
type Stats struct {
	TotalRequests   int
	TotalMovesTried int
	AvgElapsed      time.Duration
}

// GetStats returns current advisor statistics.
func (a *Advisor) GetStats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	avg := time.Duration(0)
	if a.totalRequests > 0 {
		avg = a.totalElapsed / time.Duration(a.totalRequests)
	}
	return Stats{
		TotalRequests:   a.totalRequests,
		TotalMovesTried: a.totalMovesTried,
		AvgElapsed:      avg,
	}
}
