package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/longmaomaoa/ai-OpenChess/internal/advisor"
	"github.com/longmaomaoa/ai-OpenChess/internal/config"
	"github.com/longmaomaoa/ai-OpenChess/internal/eval"
	"github.com/longmaomaoa/ai-OpenChess/internal/scanner"
	"github.com/longmaomaoa/ai-OpenChess/internal/storage"
)

func main() {
	configPath := flag.String("config", "openchess.json", "Path to configuration file")
	regionFlag := flag.String("region", "", "Comma-separated named regions to watch (default: every named region)")
	side := flag.String("side", "", "Override the side advice is for (red or black)")
	topK := flag.Int("top", 0, "Override the number of recommendations")
	verbose := flag.Bool("v", false, "Verbose output")

	flag.Parse()

	fmt.Println("=== OpenChess Live Board Watcher ===")
	fmt.Println()

	cfg := loadConfig(*configPath)
	if *side != "" {
		cfg.Advisor.PlayerSide = *side
	}
	if *topK > 0 {
		cfg.Advisor.MaxRecommends = *topK
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if *verbose {
		fmt.Println("Vision Configuration:")
		fmt.Println(cfg.Vision.String())
	}

	logger, err := newLogger(cfg.Interface.LogLevel, cfg.Interface.LogPath)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	evaluator, err := eval.NewEvaluator(cfg.Advisor.Weights)
	if err != nil {
		log.Fatalf("Failed to create evaluator: %v", err)
	}

	adv, err := advisor.NewAdvisor(evaluator, cfg.Advisor.MaxRecommends, logger)
	if err != nil {
		log.Fatalf("Failed to create advisor: %v", err)
	}

	// One pipeline per watched region, all feeding the same channel.
	regionIDs := selectRegions(cfg, *regionFlag)
	analysisChan := make(chan scanner.Analysis, 8)
	var pipelines []*scanner.Pipeline

	for _, id := range regionIDs {
		visionCfg, err := cfg.VisionFor(id)
		if err != nil {
			log.Fatalf("Failed to resolve region: %v", err)
		}

		var gameLog *storage.GameLog
		if cfg.Storage.Enabled {
			gameLog, err = storage.NewGameLog(logPathFor(cfg.Storage.DBPath, id))
			if err != nil {
				log.Fatalf("Failed to open game log: %v", err)
			}
		}

		pipeline, err := scanner.NewPipeline(scanner.Params{
			Vision:    &visionCfg,
			Evaluator: evaluator,
			Advisor:   adv,
			Log:       gameLog,
			Logger:    logger,
			FirstSide: cfg.FirstSide(),
			Region:    id,
		}, analysisChan)
		if err != nil {
			log.Fatalf("Failed to create pipeline: %v", err)
		}
		defer pipeline.Close()
		pipelines = append(pipelines, pipeline)

		if err := pipeline.Start(); err != nil {
			log.Fatalf("Failed to start pipeline: %v", err)
		}

		fmt.Printf("Watching %s(%d,%d) %dx%d every %v.\n",
			regionLabel(id),
			visionCfg.CaptureRegion.X, visionCfg.CaptureRegion.Y,
			visionCfg.CaptureRegion.Width, visionCfg.CaptureRegion.Height,
			visionCfg.ScanInterval())
	}
	fmt.Println("Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	formatter := &advisor.Formatter{}
	playerSide := cfg.PlayerSide()

	for {
		select {
		case analysis := <-analysisChan:
			label := regionLabel(analysis.Region)
			if analysis.Move != nil {
				fmt.Printf("\n%sMove observed: %s\n", label, analysis.Move.Describe())
			} else {
				fmt.Printf("\n%sBoard recognized, tracking started.\n", label)
			}
			if *verbose {
				fmt.Println(analysis.Board)
			}
			if analysis.Status.Terminal() {
				fmt.Printf("%sGame over: %s\n", label, analysis.Status)
				continue
			}
			if analysis.Advice != nil && analysis.Advice.Side == playerSide {
				fmt.Println(formatter.FormatAdvice(analysis.Advice))
			}
		case <-sigChan:
			fmt.Println("\nStopping...")
			for _, pipeline := range pipelines {
				pipeline.Stop()
				fmt.Println(pipeline.String())
			}
			return
		}
	}
}

// selectRegions resolves which regions to watch: the -region list, every
// named region, or the inline capture region when none are named.
func selectRegions(cfg *config.Config, regionFlag string) []string {
	if regionFlag != "" {
		var ids []string
		for _, id := range strings.Split(regionFlag, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
		return ids
	}
	if len(cfg.Regions) > 0 {
		return cfg.RegionIDs()
	}
	return []string{""}
}

// logPathFor keeps one game record per region.
func logPathFor(base, regionID string) string {
	if regionID == "" {
		return base
	}
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "-" + regionID + ext
}

func regionLabel(id string) string {
	if id == "" {
		return ""
	}
	return "[" + id + "] "
}

// loadConfig falls back on defaults when no file is present.
func loadConfig(path string) *config.Config {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Printf("Config file not found, using defaults: %s", path)
		return config.Default()
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Printf("Error loading config, using defaults: %v", err)
		return config.Default()
	}
	return cfg
}

// newLogger builds a zap logger at the configured level, optionally
// teeing to a file.
func newLogger(level, path string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	if path != "" {
		zcfg.OutputPaths = append(zcfg.OutputPaths, path)
	}
	return zcfg.Build()
}
