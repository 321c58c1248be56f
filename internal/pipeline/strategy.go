package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/receiptlab/receipt-extraction-service/internal/ai"
	"github.com/receiptlab/receipt-extraction-service/internal/models"
	"github.com/receiptlab/receipt-extraction-service/internal/ocr"
)

// ModelExtractor is the model-based extraction path. *ai.Extractor implements
// it; tests substitute fakes.
type ModelExtractor interface {
	Extract(ctx context.Context, in ai.Input) (models.FieldRecord, error)
}

// Strategy is one named extraction configuration. The orchestrator receives
// the full set at construction and iterates it in order for every document;
// there is no process-wide registry.
type Strategy struct {
	Name    string
	ModelID string
	UseOCR  bool

	// Extractor is nil for the deterministic regex strategy, which runs
	// the field parser instead of a model.
	Extractor ModelExtractor
}

// ObjectStore fetches raw document bytes by key.
type ObjectStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// OCREngine produces the structural block graph for an image.
type OCREngine interface {
	AnalyzeDocument(ctx context.Context, image []byte) ([]ocr.Block, error)
}

// BuildStrategies resolves the configured strategy list into runtime
// strategies, constructing one provider-bound extractor per entry. The
// "regex" provider maps to the deterministic parser path.
func BuildStrategies(ctx context.Context, cfgs []models.StrategyConfig, aiCfg models.AIConfig, mode ai.ScanMode, logger *slog.Logger) ([]Strategy, error) {
	strategies := make([]Strategy, 0, len(cfgs))
	for _, sc := range cfgs {
		if sc.Provider == "regex" {
			strategies = append(strategies, Strategy{
				Name:    sc.Name,
				ModelID: "regex",
				UseOCR:  sc.UseOCR,
			})
			continue
		}

		provider, err := ai.NewProvider(ctx, sc.Provider, sc.Model, aiCfg)
		if err != nil {
			return nil, fmt.Errorf("strategy %s: %w", sc.Name, err)
		}
		modelID := sc.Provider
		if sc.Model != "" {
			modelID += "/" + sc.Model
		}
		strategies = append(strategies, Strategy{
			Name:      sc.Name,
			ModelID:   modelID,
			UseOCR:    sc.UseOCR,
			Extractor: ai.NewExtractor(provider, mode, logger),
		})
	}
	return strategies, nil
}
