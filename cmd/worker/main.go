// The worker runs one extraction batch over the whole receipt bucket and
// exits: every configured strategy against every stored document, results
// persisted to the database and mirrored as JSON objects into the result
// bucket.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/receiptlab/receipt-extraction-service/internal/ai"
	"github.com/receiptlab/receipt-extraction-service/internal/db"
	"github.com/receiptlab/receipt-extraction-service/internal/models"
	"github.com/receiptlab/receipt-extraction-service/internal/ocr"
	"github.com/receiptlab/receipt-extraction-service/internal/pipeline"
	"github.com/receiptlab/receipt-extraction-service/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	config, err := loadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := storage.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	if err := db.Init(); err != nil {
		log.Printf("Warning: Database not available: %v", err)
	} else {
		defer db.Close()
	}

	scanMode := ai.ScanBalanced
	if config.Pipeline.LegacyJSONScan {
		scanMode = ai.ScanLegacy
	}

	ctx := context.Background()
	strategies, err := pipeline.BuildStrategies(ctx, config.Strategies, config.AI, scanMode, logger)
	if err != nil {
		log.Fatalf("Failed to build strategies: %v", err)
	}

	engine := ocr.NewClient(config.OCR.Endpoint, time.Duration(config.OCR.TimeoutSeconds)*time.Second)
	orchestrator := pipeline.New(store, engine, strategies, config.Pipeline.Workers, logger)

	keys, err := store.List(ctx)
	if err != nil {
		log.Fatalf("Failed to list receipt bucket: %v", err)
	}
	log.Printf("Processing %d objects with %d strategies", len(keys), len(strategies))

	start := time.Now()
	batch, failures := orchestrator.Run(ctx, keys)

	for i := range batch {
		res := &batch[i]

		if db.Pool != nil {
			if _, err := db.SaveRecord(ctx, res); err != nil {
				log.Printf("Failed to save record (file: %s, strategy: %s): %v", res.FileName, res.StrategyName, err)
			}
		}

		data, err := json.MarshalIndent(res, "", "    ")
		if err != nil {
			log.Printf("Failed to serialize record (file: %s, strategy: %s): %v", res.FileName, res.StrategyName, err)
			continue
		}
		if _, err := store.PutResult(ctx, res.StrategyName, res.FileName, data); err != nil {
			log.Printf("Failed to write result object (file: %s, strategy: %s): %v", res.FileName, res.StrategyName, err)
		}
	}

	log.Printf("Batch complete: %d records, %d failures, %.1fs", len(batch), len(failures), time.Since(start).Seconds())
}

func loadConfig(path string) (*models.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config models.Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.AI.OpenAI.APIKey = apiKey
	}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.AI.Gemini.APIKey = apiKey
	}
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		config.AI.Ollama.BaseURL = baseURL
	}
	if endpoint := os.Getenv("OCR_ENDPOINT"); endpoint != "" {
		config.OCR.Endpoint = endpoint
	}

	return &config, nil
}
