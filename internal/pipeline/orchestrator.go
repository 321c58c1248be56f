// Package pipeline runs the (document × strategy) extraction grid. Failures
// are contained at pair granularity: one failing pair never aborts a batch or
// affects any other pair.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/receiptlab/receipt-extraction-service/internal/ai"
	"github.com/receiptlab/receipt-extraction-service/internal/models"
	"github.com/receiptlab/receipt-extraction-service/internal/ocr"
	"github.com/receiptlab/receipt-extraction-service/internal/parser"
)

// Pipeline stages a pair can fail in.
const (
	StageFetch  = "fetch"
	StageOCR    = "ocr"
	StageInvoke = "invoke"
	StageParse  = "parse"
)

// Failure records one failed (document, strategy) pair. Unsupported file
// types are skips, not failures, and never appear here.
type Failure struct {
	FileName string
	Strategy string
	Stage    string
	Err      error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s/%s at %s: %v", f.FileName, f.Strategy, f.Stage, f.Err)
}

// Orchestrator applies every configured strategy to every document of a run.
type Orchestrator struct {
	store      ObjectStore
	engine     OCREngine
	strategies []Strategy
	workers    int
	log        *slog.Logger
}

// New creates an orchestrator. The strategy slice is treated as immutable and
// defines the iteration order for every document. workers <= 1 means fully
// sequential processing.
func New(store ObjectStore, engine OCREngine, strategies []Strategy, workers int, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if workers < 1 {
		workers = 1
	}
	return &Orchestrator{
		store:      store,
		engine:     engine,
		strategies: strategies,
		workers:    workers,
		log:        logger,
	}
}

// supportedExtensions gates which object keys are processed at all.
var supportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// Run executes the extraction grid over the given document keys. Every pair
// is attempted exactly once; the returned batch holds the successful pairs in
// (document enumeration, strategy registry) order, and the failure list holds
// everything that was attempted and failed. Documents with unsupported
// extensions contribute nothing to either.
func (o *Orchestrator) Run(ctx context.Context, keys []string) (models.Batch, []Failure) {
	var docs []string
	for _, key := range keys {
		if !supportedExtensions[strings.ToLower(filepath.Ext(key))] {
			o.log.Info("pipeline.skip.unsupported_type", "file", key)
			continue
		}
		docs = append(docs, key)
	}

	n := len(docs) * len(o.strategies)
	results := make([]*models.Result, n)
	failures := make([]*Failure, n)

	if o.workers > 1 {
		o.runParallel(ctx, docs, results, failures)
	} else {
		for i, key := range docs {
			for j := range o.strategies {
				slot := i*len(o.strategies) + j
				results[slot], failures[slot] = o.runPair(ctx, key, o.strategies[j])
			}
		}
	}

	// Slot order is (document, strategy) order, so assembly restores the
	// deterministic batch ordering regardless of how pairs were scheduled.
	batch := make(models.Batch, 0, n)
	var failed []Failure
	for slot := 0; slot < n; slot++ {
		if results[slot] != nil {
			batch = append(batch, *results[slot])
		}
		if failures[slot] != nil {
			failed = append(failed, *failures[slot])
		}
	}
	return batch, failed
}

// runParallel schedules the grid on a bounded worker pool. Each pair owns its
// result and failure slot, so no locking is needed.
func (o *Orchestrator) runParallel(ctx context.Context, docs []string, results []*models.Result, failures []*Failure) {
	sem := semaphore.NewWeighted(int64(o.workers))
	g, gctx := errgroup.WithContext(ctx)

	for i, key := range docs {
		for j := range o.strategies {
			slot := i*len(o.strategies) + j
			key, strat := key, o.strategies[j]

			if err := sem.Acquire(gctx, 1); err != nil {
				break
			}
			g.Go(func() error {
				defer sem.Release(1)
				results[slot], failures[slot] = o.runPair(gctx, key, strat)
				return nil
			})
		}
	}
	_ = g.Wait()
}

// runPair attempts one (document, strategy) extraction.
func (o *Orchestrator) runPair(ctx context.Context, key string, strat Strategy) (*models.Result, *Failure) {
	o.log.Info("pipeline.pair.start",
		"file", key,
		"strategy", strat.Name,
		"model", strat.ModelID,
		"use_ocr", strat.UseOCR,
	)

	data, err := o.store.Get(ctx, key)
	if err != nil {
		return nil, o.fail(key, strat, StageFetch, err)
	}

	var text string
	if strat.UseOCR {
		blocks, err := o.engine.AnalyzeDocument(ctx, data)
		if err != nil {
			return nil, o.fail(key, strat, StageOCR, err)
		}
		lines, _ := ocr.Reduce(blocks)
		text = ocr.JoinLines(lines)
	}

	var rec models.FieldRecord
	if strat.Extractor == nil {
		// Deterministic path: no model call. Without OCR the document
		// bytes are treated as flat text.
		if !strat.UseOCR {
			text = string(data)
		}
		rec = parser.Extract(text)
	} else {
		in := ai.Input{Text: text}
		if !strat.UseOCR {
			in.Image = data
		}
		rec, err = strat.Extractor.Extract(ctx, in)
		if err != nil {
			stage := StageInvoke
			var malformed *ai.MalformedOutputError
			if errors.As(err, &malformed) {
				stage = StageParse
			}
			return nil, o.fail(key, strat, stage, err)
		}
	}

	return &models.Result{
		FieldRecord: rec,
		Provenance: models.Provenance{
			FileName:     key,
			StrategyName: strat.Name,
			ModelID:      strat.ModelID,
			UsedOCR:      strat.UseOCR,
			ProcessedAt:  time.Now().UTC(),
		},
	}, nil
}

func (o *Orchestrator) fail(key string, strat Strategy, stage string, err error) *Failure {
	if errors.Is(err, ai.ErrNoJSONObject) {
		// Absent JSON is its own kind: the model answered but produced
		// no object span at all.
		o.log.Error("pipeline.pair.no_json_object", "file", key, "strategy", strat.Name)
	} else {
		o.log.Error("pipeline.pair.failed",
			"file", key,
			"strategy", strat.Name,
			"stage", stage,
			"error", err,
		)
	}
	return &Failure{FileName: key, Strategy: strat.Name, Stage: stage, Err: err}
}
