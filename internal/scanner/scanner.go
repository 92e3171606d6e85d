package scanner

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/longmaomaoa/ai-OpenChess/internal/advisor"
	"github.com/longmaomaoa/ai-OpenChess/internal/eval"
	"github.com/longmaomaoa/ai-OpenChess/internal/game"
	"github.com/longmaomaoa/ai-OpenChess/internal/storage"
	"github.com/longmaomaoa/ai-OpenChess/internal/vision"
	"github.com/longmaomaoa/ai-OpenChess/internal/xiangqi"
)

// resyncAfter is how many consecutive rejected frames force the tracker
// to re-seed from the observed board.
const resyncAfter = 3

// Analysis is one accepted observation: the board, the move that led to
// it (nil for the first frame), and the evaluation and advice for the
// side to move.
type Analysis struct {
	Region    string
	Board     xiangqi.Board
	Move      *xiangqi.Move
	Ply       int
	Status    xiangqi.GameStatus
	Report    eval.Report
	Advice    *advisor.Advice
	Timestamp time.Time
}

// Params collects the pipeline's collaborators.
type Params struct {
	Vision    *vision.Config
	Evaluator *eval.Evaluator
	Advisor   *advisor.Advisor
	Log       *storage.GameLog // optional move record
	Logger    *zap.Logger
	FirstSide xiangqi.Side // side to move on the first observed board
	Region    string       // region id stamped onto every analysis
}

// Pipeline watches one board region: capture, per-cell recognition, move
// tracking, evaluation and advice.
type Pipeline struct {
	config     *vision.Config
	capturer   *vision.Capturer
	grid       *vision.GridMapper
	library    *vision.TemplateLibrary
	recognizer *vision.PieceRecognizer
	evaluator  *eval.Evaluator
	advisor    *advisor.Advisor
	gameLog    *storage.GameLog
	logger     *zap.Logger
	region     string

	analysisChan chan<- Analysis
	stopChan     chan struct{}
	wg           sync.WaitGroup

	mu        sync.Mutex
	running   bool
	state     *game.State
	firstSide xiangqi.Side
	rejected  int // consecutive frames the tracker could not absorb
	stats     PipelineStats
}

// PipelineStats tracks pipeline performance.
type PipelineStats struct {
	FramesProcessed  int64
	FramesSkipped    int64
	BoardsBuilt      int64
	MovesDetected    int64
	Resyncs          int64
	Errors           int64
	LastProcessTime  time.Duration
	AverageFrameTime time.Duration
}

// NewPipeline creates a scan pipeline for one board region.
func NewPipeline(p Params, analysisChan chan<- Analysis) (*Pipeline, error) {
	if err := p.Vision.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if p.Evaluator == nil || p.Advisor == nil {
		return nil, fmt.Errorf("evaluator and advisor are required")
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.Region != "" {
		p.Logger = p.Logger.With(zap.String("region", p.Region))
	}

	capturer, err := vision.NewCapturer(p.Vision.CaptureRegion, p.Vision.DiffThreshold)
	if err != nil {
		return nil, fmt.Errorf("failed to create capturer: %w", err)
	}

	grid, err := vision.NewGridMapper(p.Vision.CaptureRegion.Width, p.Vision.CaptureRegion.Height)
	if err != nil {
		return nil, fmt.Errorf("failed to create grid mapper: %w", err)
	}

	library, err := vision.LoadTemplateLibrary(p.Vision.TemplateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	recognizer, err := vision.NewPieceRecognizer(p.Vision, library)
	if err != nil {
		library.Close()
		return nil, fmt.Errorf("failed to create recognizer: %w", err)
	}

	return &Pipeline{
		config:       p.Vision,
		capturer:     capturer,
		grid:         grid,
		library:      library,
		recognizer:   recognizer,
		evaluator:    p.Evaluator,
		advisor:      p.Advisor,
		gameLog:      p.Log,
		logger:       p.Logger,
		region:       p.Region,
		analysisChan: analysisChan,
		stopChan:     make(chan struct{}),
		firstSide:    p.FirstSide,
	}, nil
}

// Start begins the scan loop. A stopped pipeline can be started again.
func (p *Pipeline) Start() error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("pipeline already running")
	}
	p.running = true
	p.stopChan = make(chan struct{})
	p.mu.Unlock()

	p.wg.Add(1)
	go p.processLoop()

	p.logger.Info("scan pipeline started",
		zap.Duration("interval", p.config.ScanInterval()),
		zap.Int("workers", p.config.Workers))
	return nil
}

// Stop stops the scan loop and waits for it to drain.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	stop := p.stopChan
	p.mu.Unlock()

	close(stop)
	p.wg.Wait()

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
}

// IsRunning returns whether the scan loop is active.
func (p *Pipeline) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// GetStats returns current pipeline statistics.
func (p *Pipeline) GetStats() PipelineStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Moves returns the accepted move sequence so far.
func (p *Pipeline) Moves() []xiangqi.Move {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == nil {
		return nil
	}
	return p.state.Moves()
}

func (p *Pipeline) processLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.ScanInterval())
	defer ticker.Stop()

	for {
		select {
		case <-p.stopChan:
			return
		case <-ticker.C:
			if err := p.scanOnce(); err != nil {
				p.mu.Lock()
				p.stats.Errors++
				p.mu.Unlock()
				p.logger.Warn("scan failed", zap.Error(err))
			}
		}
	}
}

// scanOnce captures one frame and, if it changed, runs the full
// recognition and tracking pass.
func (p *Pipeline) scanOnce() error {
	startTime := time.Now()

	frame, err := p.capturer.CaptureFrame()
	if err != nil {
		return fmt.Errorf("failed to capture frame: %w", err)
	}
	defer frame.Close()

	changed, diff, err := p.capturer.DetectChange(frame)
	if err != nil {
		return fmt.Errorf("failed to detect change: %w", err)
	}

	defer func() {
		p.mu.Lock()
		p.stats.FramesProcessed++
		elapsed := time.Since(startTime)
		p.stats.LastProcessTime = elapsed
		if p.stats.AverageFrameTime == 0 {
			p.stats.AverageFrameTime = elapsed
		} else {
			p.stats.AverageFrameTime = (p.stats.AverageFrameTime + elapsed) / 2
		}
		p.mu.Unlock()
	}()

	if !changed {
		p.mu.Lock()
		p.stats.FramesSkipped++
		p.mu.Unlock()
		return nil
	}
	p.logger.Debug("frame changed", zap.Float64("diff", diff))

	analysis, err := p.AnalyzeFrame(frame)
	if err != nil {
		return err
	}
	if analysis == nil {
		return nil
	}

	select {
	case p.analysisChan <- *analysis:
	case <-p.stopChan:
	}
	return nil
}

// AnalyzeFrame runs recognition and tracking on one captured frame. It
// returns nil without error when the frame shows no new position.
func (p *Pipeline) AnalyzeFrame(frame *gocv.Mat) (*Analysis, error) {
	grid, err := p.recognizeCells(frame)
	if err != nil {
		return nil, err
	}

	board, err := BuildBoard(grid)
	if err != nil {
		p.noteRejected()
		return nil, err
	}

	p.mu.Lock()
	p.stats.BoardsBuilt++
	state := p.state
	p.mu.Unlock()

	if state == nil {
		return p.seedGame(board)
	}

	move, moved, err := DetectMove(state.Board(), board)
	if err != nil {
		return nil, p.absorbRejection(board, err)
	}
	if !moved {
		p.resetRejected()
		return nil, nil
	}

	next, err := state.Advance(move)
	if err != nil {
		return nil, p.absorbRejection(board, &IllegalMoveError{Move: move, Reason: err})
	}
	p.resetRejected()

	p.mu.Lock()
	p.state = next
	p.stats.MovesDetected++
	p.mu.Unlock()

	return p.analyze(next, &move)
}

// seedGame starts tracking from the first cleanly recognized board.
func (p *Pipeline) seedGame(board xiangqi.Board) (*Analysis, error) {
	state := game.NewGame(board, p.firstSide)

	p.mu.Lock()
	p.state = state
	p.rejected = 0
	p.mu.Unlock()

	p.logger.Info("game tracking started",
		zap.String("side_to_move", p.firstSide.String()))
	return p.analyze(state, nil)
}

// analyze evaluates the position and collects advice for the side to
// move, recording the move when a game log is attached.
func (p *Pipeline) analyze(state *game.State, move *xiangqi.Move) (*Analysis, error) {
	board := state.Board()
	side := state.SideToMove()

	report := p.evaluator.Evaluate(board, side, state.Ply())
	advice, err := p.advisor.Recommend(board, side, state.Ply())
	if err != nil {
		return nil, fmt.Errorf("failed to build advice: %w", err)
	}

	if move != nil && p.gameLog != nil {
		moverReport := p.evaluator.Evaluate(board, move.Piece.Side, state.Ply())
		if err := p.gameLog.Append(*move, state.Ply()-1, moverReport.Score, moverReport.WinProbability); err != nil {
			p.logger.Warn("failed to record move", zap.Error(err))
		}
	}

	return &Analysis{
		Region:    p.region,
		Board:     board,
		Move:      move,
		Ply:       state.Ply(),
		Status:    state.Status(),
		Report:    report,
		Advice:    advice,
		Timestamp: time.Now(),
	}, nil
}

// recognizeCells classifies all 90 cells of the frame, fanning the work
// out over the configured number of workers.
func (p *Pipeline) recognizeCells(frame *gocv.Mat) (ReadingGrid, error) {
	var grid ReadingGrid
	if frame.Empty() {
		return grid, fmt.Errorf("empty frame")
	}

	sem := make(chan struct{}, p.config.Workers)
	var wg sync.WaitGroup
	var failMu sync.Mutex
	failed := 0

	for _, cell := range p.grid.Cells() {
		wg.Add(1)
		sem <- struct{}{}
		go func(c xiangqi.Cell) {
			defer wg.Done()
			defer func() { <-sem }()

			roi := frame.Region(p.grid.PieceROI(c))
			defer roi.Close()

			reading, err := p.recognizer.Recognize(roi)
			if err != nil {
				// An unreadable cell is treated as empty rather than
				// sinking the whole frame.
				failMu.Lock()
				failed++
				failMu.Unlock()
				return
			}
			grid[c.Rank][c.File] = reading
		}(cell)
	}
	wg.Wait()

	if failed > 0 {
		p.logger.Debug("cells failed recognition", zap.Int("failed", failed))
	}
	return grid, nil
}

// noteRejected counts a frame the tracker could not absorb.
func (p *Pipeline) noteRejected() {
	p.mu.Lock()
	p.rejected++
	p.mu.Unlock()
}

func (p *Pipeline) resetRejected() {
	p.mu.Lock()
	p.rejected = 0
	p.mu.Unlock()
}

// absorbRejection counts a rejected frame and, after too many in a row,
// re-seeds tracking from the observed board. The game on screen has
// drifted from the tracked one, usually after a missed animation.
func (p *Pipeline) absorbRejection(board xiangqi.Board, cause error) error {
	p.mu.Lock()
	p.rejected++
	rejected := p.rejected
	p.mu.Unlock()

	if rejected < resyncAfter {
		return cause
	}

	p.mu.Lock()
	side := p.firstSide
	if p.state != nil {
		side = p.state.SideToMove()
	}
	p.state = game.NewGame(board, side)
	p.rejected = 0
	p.stats.Resyncs++
	p.mu.Unlock()

	p.logger.Warn("tracking resynced from observed board",
		zap.String("side_to_move", side.String()),
		zap.Error(cause))
	return nil
}

// Close stops the loop and releases vision resources.
func (p *Pipeline) Close() error {
	p.Stop()

	var firstErr error
	if err := p.recognizer.Close(); err != nil {
		firstErr = err
	}
	p.library.Close()
	p.capturer.Close()

	if p.gameLog != nil {
		if err := p.gameLog.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// String returns pipeline status.
func (p *Pipeline) String() string {
	stats := p.GetStats()
	return fmt.Sprintf(
		"Scan Pipeline:\n"+
			"  Running: %v\n"+
			"  Frames Processed: %d\n"+
			"  Frames Skipped: %d\n"+
			"  Boards Built: %d\n"+
			"  Moves Detected: %d\n"+
			"  Resyncs: %d\n"+
			"  Errors: %d\n"+
			"  Last Process Time: %v\n"+
			"  Avg Frame Time: %v\n",
		p.IsRunning(),
		stats.FramesProcessed,
		stats.FramesSkipped,
		stats.BoardsBuilt,
		stats.MovesDetected,
		stats.Resyncs,
		stats.Errors,
		stats.LastProcessTime,
		stats.AverageFrameTime,
	)
}
