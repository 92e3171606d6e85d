package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/longmaomaoa/ai-OpenChess/internal/advisor"
	"github.com/longmaomaoa/ai-OpenChess/internal/config"
	"github.com/longmaomaoa/ai-OpenChess/internal/eval"
	"github.com/longmaomaoa/ai-OpenChess/internal/scanner"
	"github.com/longmaomaoa/ai-OpenChess/internal/vision"
)

// openchess-scan analyzes a single saved board screenshot and prints the
// position, its evaluation and the ranked moves.
func main() {
	imagePath := flag.String("image", "", "Path to a board screenshot")
	configPath := flag.String("config", "openchess.json", "Path to configuration file")
	side := flag.String("side", "red", "Side to move (red or black)")
	topK := flag.Int("top", 5, "Number of moves to display")

	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: openchess-scan -image <path> [-side red|black] [-top n]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg := config.Default()
	if _, err := os.Stat(*configPath); err == nil {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
		cfg = loaded
	}
	cfg.Advisor.FirstSideToMove = *side
	cfg.Advisor.MaxRecommends = *topK
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := zap.NewNop()

	evaluator, err := eval.NewEvaluator(cfg.Advisor.Weights)
	if err != nil {
		log.Fatalf("Failed to create evaluator: %v", err)
	}

	adv, err := advisor.NewAdvisor(evaluator, cfg.Advisor.MaxRecommends, logger)
	if err != nil {
		log.Fatalf("Failed to create advisor: %v", err)
	}

	frame, err := vision.LoadFrame(*imagePath)
	if err != nil {
		log.Fatalf("Failed to load image: %v", err)
	}
	defer frame.Close()

	// The grid is cut from the image itself, not the configured screen
	// region.
	cfg.Vision.CaptureRegion = vision.CaptureRegion{
		Width:  frame.Cols(),
		Height: frame.Rows(),
	}

	pipeline, err := scanner.NewPipeline(scanner.Params{
		Vision:    &cfg.Vision,
		Evaluator: evaluator,
		Advisor:   adv,
		Logger:    logger,
		FirstSide: cfg.FirstSide(),
	}, nil)
	if err != nil {
		log.Fatalf("Failed to create pipeline: %v", err)
	}
	defer pipeline.Close()

	analysis, err := pipeline.AnalyzeFrame(frame)
	if err != nil {
		log.Fatalf("Failed to analyze board: %v", err)
	}
	if analysis == nil {
		log.Fatal("No position recognized in the image")
	}

	fmt.Printf("Recognized position (%s to move):\n\n", analysis.Advice.Side)
	fmt.Println(analysis.Board)
	fmt.Println(analysis.Report.Summary())

	formatter := &advisor.Formatter{}
	fmt.Println(formatter.FormatAdvice(analysis.Advice))
}
