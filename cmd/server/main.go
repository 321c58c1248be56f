package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/receiptlab/receipt-extraction-service/api"
	"github.com/receiptlab/receipt-extraction-service/internal/ai"
	"github.com/receiptlab/receipt-extraction-service/internal/db"
	"github.com/receiptlab/receipt-extraction-service/internal/models"
	"github.com/receiptlab/receipt-extraction-service/internal/ocr"
	"github.com/receiptlab/receipt-extraction-service/internal/pipeline"
	"github.com/receiptlab/receipt-extraction-service/internal/storage"
)

func main() {
	// Load .env if present (development convenience)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize database connection pool
	if err := db.Init(); err != nil {
		log.Printf("Warning: Database not available: %v", err)
		log.Println("Running without persistence")
	} else {
		defer db.Close()
		log.Println("Database connection pool initialized")
	}

	// Initialize MinIO storage
	store, err := storage.NewFromEnv()
	if err != nil {
		log.Printf("Warning: MinIO storage not available: %v", err)
		log.Println("Uploads and batch processing are disabled")
		store = nil
	} else {
		log.Println("MinIO storage initialized")
	}

	// Load configuration
	config, err := loadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Build the extraction pipeline
	scanMode := ai.ScanBalanced
	if config.Pipeline.LegacyJSONScan {
		scanMode = ai.ScanLegacy
	}
	strategies, err := pipeline.BuildStrategies(context.Background(), config.Strategies, config.AI, scanMode, logger)
	if err != nil {
		log.Fatalf("Failed to build strategies: %v", err)
	}

	engine := ocr.NewClient(config.OCR.Endpoint, time.Duration(config.OCR.TimeoutSeconds)*time.Second)
	orchestrator := pipeline.New(store, engine, strategies, config.Pipeline.Workers, logger)

	// Create API handler
	handler := api.NewHandler(config, store, orchestrator)
	router := handler.SetupRoutes()

	// Start server
	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	log.Printf("Starting Receipt Extraction Service v%s on %s", api.Version, addr)
	log.Printf("OCR Engine: %s", config.OCR.Endpoint)
	log.Printf("Strategies: %d", len(strategies))
	log.Printf("Database: %v", db.Pool != nil)
	log.Printf("Storage: %v", store != nil)
	log.Printf("Endpoints:")
	log.Printf("  POST http://%s/api/receipts          - Upload receipt", addr)
	log.Printf("  POST http://%s/api/receipts/process  - Run extraction batch", addr)
	log.Printf("  GET  http://%s/api/receipts?model=m  - Get records by model", addr)
	log.Printf("  GET  http://%s/health                - Health check", addr)

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func loadConfig(path string) (*models.Config, error) {
	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	var config models.Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables if present
	if port := os.Getenv("PORT"); port != "" {
		fmt.Sscanf(port, "%d", &config.Port)
	}
	if host := os.Getenv("HOST"); host != "" {
		config.Host = host
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
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.AI.OpenAI.BaseURL = baseURL
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		config.AI.OpenAI.Model = model
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		config.AI.Gemini.Model = model
	}
	if endpoint := os.Getenv("OCR_ENDPOINT"); endpoint != "" {
		config.OCR.Endpoint = endpoint
	}

	return &config, nil
}
