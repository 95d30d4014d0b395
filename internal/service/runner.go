package service

import (
	"context"
	"fmt"
	"time"

	"github.com/brewops/schemasync/internal/domain"
	"github.com/brewops/schemasync/internal/logger"
	"github.com/brewops/schemasync/internal/repository"
)

// PageFetcher is the capability the orchestrator needs from the content
// fetcher stage.
type PageFetcher interface {
	Fetch(ctx context.Context, pageID string) (*FetchResult, error)
}

// RunService drives a batch ingestion run: items are processed sequentially
// in row-number order, each through reconcile, fetch, and generate, with
// every stage failure converted into item-level status fields. A single
// row can never abort the run; completion means every row was attempted.
type RunService struct {
	runs       *repository.RunRepository
	reconciler *ReconcileService
	fetcher    PageFetcher
	generator  SchemaGenerator
	logger     *logger.Logger
}

// NewRunService creates a new run orchestrator.
// Parameters:
//   - runs: run repository for item loading and progress writes.
//   - reconciler: catalog reconcile service.
//   - fetcher: content fetch stage.
//   - generator: schema generation stage.
//   - log: logger instance.
// Returns:
//   - *RunService: initialized orchestrator.
func NewRunService(
	runs *repository.RunRepository,
	reconciler *ReconcileService,
	fetcher PageFetcher,
	generator SchemaGenerator,
	log *logger.Logger,
) *RunService {
	return &RunService{
		runs:       runs,
		reconciler: reconciler,
		fetcher:    fetcher,
		generator:  generator,
		logger:     log,
	}
}

// log returns a logger from context if available, otherwise returns the default logger
func (s *RunService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// RunStats holds aggregate counts for one run invocation.
type RunStats struct {
	TotalItems   int       `json:"total_items"`
	Created      int       `json:"created"`
	Updated      int       `json:"updated"`
	Errored      int       `json:"errored"`
	HTMLFailed   int       `json:"html_failed"`
	SchemaFailed int       `json:"schema_failed"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
}

// Process executes the run with the given ID. The run moves pending →
// running → completed; completion is unconditional once every item has been
// attempted. Only a failure to load the run or its items, or to record the
// status transitions, escapes to the caller.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - runID: run ID.
// Returns:
//   - *RunStats: aggregate outcome counts.
//   - error: non-nil only for run-level load or status-write failures.
func (s *RunService) Process(ctx context.Context, runID string) (*RunStats, error) {
	ctx = logger.SetRunID(ctx, runID)

	run, err := s.runs.GetByID(ctx, runID)
	if err != nil {
		return nil, domain.WrapPersistenceError(err)
	}

	items, err := s.runs.ListItems(ctx, run.ID)
	if err != nil {
		return nil, domain.WrapPersistenceError(err)
	}

	if err := s.runs.UpdateStatus(ctx, run.ID, domain.RunStatusRunning); err != nil {
		return nil, domain.WrapPersistenceError(err)
	}

	stats := &RunStats{
		TotalItems: len(items),
		StartTime:  time.Now(),
	}

	s.log(ctx).WithField("total_items", len(items)).Info("Starting run")

	// One item fully to completion before the next; an item's failure is
	// recorded on the item and never stops the sweep.
	for i := range items {
		outcome := s.processItem(ctx, &items[i])

		switch outcome.result {
		case domain.ItemResultCreated:
			stats.Created++
		case domain.ItemResultUpdated:
			stats.Updated++
		case domain.ItemResultError:
			stats.Errored++
		}
		if outcome.htmlStatus == domain.StepStatusFailed {
			stats.HTMLFailed++
		}
		if outcome.schemaStatus == domain.StepStatusFailed {
			stats.SchemaFailed++
		}
	}

	if err := s.runs.UpdateStatus(ctx, run.ID, domain.RunStatusCompleted); err != nil {
		return nil, domain.WrapPersistenceError(err)
	}

	stats.EndTime = time.Now()

	s.log(ctx).WithFields(logger.Fields{
		"total":         stats.TotalItems,
		"created":       stats.Created,
		"updated":       stats.Updated,
		"errored":       stats.Errored,
		"html_failed":   stats.HTMLFailed,
		"schema_failed": stats.SchemaFailed,
		"duration":      stats.EndTime.Sub(stats.StartTime).String(),
	}).Info("Run completed")

	return stats, nil
}

// itemOutcome summarizes how far one item progressed.
type itemOutcome struct {
	result       domain.ItemResult
	htmlStatus   domain.StepStatus
	schemaStatus domain.StepStatus
}

// processItem runs one item through the per-item state machine. It cannot
// propagate an error or a panic: every failure is converted into status
// fields on the item, which is what makes "one bad row never aborts the
// batch" structural rather than a convention.
func (s *RunService) processItem(ctx context.Context, item *domain.RunItem) (outcome itemOutcome) {
	ctx = logger.WithField(ctx, logger.FieldItemID, item.ID)

	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("unexpected failure processing row %d: %v", item.RowNumber, r)
			s.recordItemError(ctx, item, msg)
			outcome.result = domain.ItemResultError
		}
	}()

	if msg := missingFields(item); msg != "" {
		s.recordItemError(ctx, item, msg)
		outcome.result = domain.ItemResultError
		return outcome
	}

	pageID, isNew, err := s.reconciler.Reconcile(ctx, item.Domain, item.Path, item.PageType, item.Category)
	if err != nil {
		s.recordItemError(ctx, item, err.Error())
		outcome.result = domain.ItemResultError
		return outcome
	}

	result := domain.ItemResultUpdated
	if isNew {
		result = domain.ItemResultCreated
	}
	outcome.result = result

	// Persist result and resolved page immediately: the durable bookmark
	// that lets a partially-completed run be inspected mid-flight.
	if err := s.runs.SetItemResult(ctx, item.ID, result, pageID, ""); err != nil {
		s.log(ctx).WithError(err).Error("Failed to record item result")
	}

	ctx = logger.WithField(ctx, logger.FieldPageID, pageID)

	outcome.htmlStatus = domain.StepStatusSuccess
	if _, err := s.fetcher.Fetch(ctx, pageID); err != nil {
		s.log(ctx).WithError(err).Warn("HTML fetch failed")
		outcome.htmlStatus = domain.StepStatusFailed
	}
	if err := s.runs.SetItemHTMLStatus(ctx, item.ID, outcome.htmlStatus); err != nil {
		s.log(ctx).WithError(err).Error("Failed to record html status")
	}

	// Generation is attempted regardless of the fetch outcome.
	outcome.schemaStatus = domain.StepStatusSuccess
	if err := s.generator.Generate(ctx, pageID); err != nil {
		s.log(ctx).WithError(err).Warn("Schema generation failed")
		outcome.schemaStatus = domain.StepStatusFailed
	}
	if err := s.runs.SetItemSchemaStatus(ctx, item.ID, outcome.schemaStatus); err != nil {
		s.log(ctx).WithError(err).Error("Failed to record schema status")
	}

	return outcome
}

// recordItemError marks an item as errored with a descriptive message.
func (s *RunService) recordItemError(ctx context.Context, item *domain.RunItem, msg string) {
	s.log(ctx).WithField("row_number", item.RowNumber).Warn(msg)
	if err := s.runs.SetItemResult(ctx, item.ID, domain.ItemResultError, "", msg); err != nil {
		s.log(ctx).WithError(err).Error("Failed to record item error")
	}
}

// missingFields returns a descriptive message naming every absent required
// field of a row, or "" when the row is complete.
func missingFields(item *domain.RunItem) string {
	var missing []string
	if item.Domain == "" {
		missing = append(missing, "domain")
	}
	if item.Path == "" {
		missing = append(missing, "path")
	}
	if item.PageType == "" {
		missing = append(missing, "page type")
	}
	if item.Category == "" {
		missing = append(missing, "category")
	}
	if len(missing) == 0 {
		return ""
	}

	msg := "missing required fields: "
	for i, f := range missing {
		if i > 0 {
			msg += ", "
		}
		msg += f
	}
	return msg
}
