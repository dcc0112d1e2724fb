package services

import (
	"context"
	"fmt"
	"route-scenario-service/internal/domain"
	"route-scenario-service/internal/ports"

	"go.uber.org/zap"
)

// ProgressSink receives a snapshot after every item state change.
// It is called from the orchestrator's goroutine and must not block for long.
type ProgressSink func(domain.BatchProgress)

const cancelledReason = "batch cancelled"

// BatchOrchestrator turns a set of source files into scenarios, one file at
// a time: upload and parse, validate, optimize, persist. A failing file never
// stops the batch.
type BatchOrchestrator struct {
	parser    ports.InputParser
	optimizer ports.Optimizer
	repo      ports.ScenarioRepository
}

func NewBatchOrchestrator(
	parser ports.InputParser,
	optimizer ports.Optimizer,
	repo ports.ScenarioRepository,
) *BatchOrchestrator {
	return &BatchOrchestrator{parser: parser, optimizer: optimizer, repo: repo}
}

type batchRun struct {
	items     []domain.BatchItem
	completed int
	saved     int
	sink      ProgressSink
}

func (r *batchRun) emit(i int) {
	if r.sink == nil {
		return
	}
	item := r.items[i]
	r.sink(domain.BatchProgress{
		Index:     i + 1,
		Total:     len(r.items),
		Completed: r.completed,
		Saved:     r.saved,
		Item:      item,
	})
}

func (r *batchRun) advance(i int, next domain.ItemStatus) {
	if err := r.items[i].Advance(next); err != nil {
		zap.S().DPanicw("invalid batch transition", "err", err)
		return
	}
	if next == domain.StatusSaved {
		r.completed++
		r.saved++
	}
	r.emit(i)
}

func (r *batchRun) fail(i int, reason string) {
	if err := r.items[i].Fail(reason); err != nil {
		zap.S().DPanicw("invalid batch transition", "err", err)
		return
	}
	r.completed++
	r.emit(i)
}

// Run processes files in order and classifies the batch. Cancelling ctx stops
// the batch between files; the file in flight still runs to completion and
// every file not yet started is marked failed.
func (o *BatchOrchestrator) Run(
	ctx context.Context,
	files []domain.SourceFile,
	sink ProgressSink,
) (domain.BatchOutcome, error) {
	if len(files) == 0 {
		return domain.BatchOutcome{}, fmt.Errorf("run batch: %w: no files", domain.ErrInvalidInput)
	}

	run := &batchRun{items: make([]domain.BatchItem, len(files)), sink: sink}
	for i, f := range files {
		run.items[i] = domain.NewBatchItem(f.Name)
	}

	log := zap.S().With("batch_size", len(files))

	for i, f := range files {
		if ctx.Err() != nil {
			for j := i; j < len(files); j++ {
				run.fail(j, cancelledReason)
			}
			log.Infow("batch cancelled", "processed", i)
			break
		}

		o.process(context.WithoutCancel(ctx), run, i, f)

		item := run.items[i]
		log.Infow("batch item finished", "file", f.Name, "status", item.Status, "err", item.Error, "completed", run.completed)
	}

	out := domain.ClassifyBatch(run.items)
	log.Infow("batch finished", "kind", out.Kind, "saved", out.Saved, "failed", out.Failed)
	return out, nil
}

func (o *BatchOrchestrator) process(ctx context.Context, run *batchRun, i int, f domain.SourceFile) {
	run.emit(i)

	if err := domain.CheckSourceFile(f); err != nil {
		run.fail(i, UserMessage(err))
		return
	}

	run.advance(i, domain.StatusUploading)
	parsed, err := o.parser.ParseAndValidate(ctx, f)
	if err != nil {
		run.fail(i, UserMessage(err))
		return
	}

	run.advance(i, domain.StatusParsing)
	input := parsed.FileData
	if err := input.Validate(); err != nil {
		run.fail(i, "parsed input is invalid: "+err.Error())
		return
	}

	run.advance(i, domain.StatusOptimizing)
	res, err := o.optimizer.Optimize(ctx, input)
	if err != nil {
		run.fail(i, UserMessage(err))
		return
	}

	sc, err := o.repo.Create(ctx, domain.Scenario{
		Name:                domain.ScenarioNameFromFile(f.Name),
		Description:         "Auto-created from " + f.Name,
		InputData:           input,
		OptimizationResults: res,
	})
	if err != nil {
		run.fail(i, "save failed: "+err.Error())
		return
	}

	run.items[i].Scenario = &sc
	run.advance(i, domain.StatusSaved)
}
