package repository

import (
	"context"
	"time"

	"github.com/brewops/schemasync/internal/domain"
	"gorm.io/gorm"
)

// RunRepository handles run and run-item data operations. Item progress
// fields are written one at a time as the orchestrator completes each stage,
// so a partially processed run is always inspectable.
type RunRepository struct {
	db *gorm.DB
}

// NewRunRepository creates a new RunRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *RunRepository: repository instance bound to db.
func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

// CreateWithItems inserts a run together with its batch rows in one
// transaction.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - run: run record, with Items populated.
// Returns:
//   - error: non-nil if the insert fails.
func (r *RunRepository) CreateWithItems(ctx context.Context, run *domain.Run) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// GetByID retrieves a run by its ID, without items.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: run ID.
// Returns:
//   - *domain.Run: run record if found.
//   - error: non-nil if lookup fails.
func (r *RunRepository) GetByID(ctx context.Context, id string) (*domain.Run, error) {
	var run domain.Run
	if err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// GetWithItems retrieves a run with its items ordered by row number.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: run ID.
// Returns:
//   - *domain.Run: run record with Items populated.
//   - error: non-nil if lookup fails.
func (r *RunRepository) GetWithItems(ctx context.Context, id string) (*domain.Run, error) {
	var run domain.Run
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("row_number ASC")
		}).
		First(&run, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// ListItems retrieves all items of a run strictly ordered by row number
// ascending. This ordering defines processing order.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - runID: run ID.
// Returns:
//   - []domain.RunItem: ordered item records.
//   - error: non-nil if the query fails.
func (r *RunRepository) ListItems(ctx context.Context, runID string) ([]domain.RunItem, error) {
	var items []domain.RunItem
	if err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("row_number ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateStatus sets the run status together with its started/completed
// timestamps.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: run ID.
//   - status: new run status.
// Returns:
//   - error: non-nil if the update fails.
func (r *RunRepository) UpdateStatus(ctx context.Context, id string, status domain.RunStatus) error {
	updates := map[string]interface{}{"status": status}
	now := time.Now()
	switch status {
	case domain.RunStatusRunning:
		updates["started_at"] = now
	case domain.RunStatusCompleted, domain.RunStatusFailed:
		updates["completed_at"] = now
	}
	return r.db.WithContext(ctx).Model(&domain.Run{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// SetItemResult records the terminal reconciliation outcome of an item,
// together with the resolved page ID and any error message.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - itemID: run item ID.
//   - result: created, updated, or error.
//   - pageID: resolved page ID; empty for validation/reconcile errors.
//   - errMsg: descriptive error message; empty on success.
// Returns:
//   - error: non-nil if the update fails.
func (r *RunRepository) SetItemResult(ctx context.Context, itemID string, result domain.ItemResult, pageID, errMsg string) error {
	updates := map[string]interface{}{"result": result}
	if pageID != "" {
		updates["page_id"] = pageID
	}
	if errMsg != "" {
		updates["error_message"] = errMsg
	}
	return r.db.WithContext(ctx).Model(&domain.RunItem{}).
		Where("id = ?", itemID).
		Updates(updates).Error
}

// SetItemHTMLStatus records the fetch-stage outcome of an item.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - itemID: run item ID.
//   - status: success or failed.
// Returns:
//   - error: non-nil if the update fails.
func (r *RunRepository) SetItemHTMLStatus(ctx context.Context, itemID string, status domain.StepStatus) error {
	return r.db.WithContext(ctx).Model(&domain.RunItem{}).
		Where("id = ?", itemID).
		Update("html_status", status).Error
}

// SetItemSchemaStatus records the generation-stage outcome of an item.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - itemID: run item ID.
//   - status: success or failed.
// Returns:
//   - error: non-nil if the update fails.
func (r *RunRepository) SetItemSchemaStatus(ctx context.Context, itemID string, status domain.StepStatus) error {
	return r.db.WithContext(ctx).Model(&domain.RunItem{}).
		Where("id = ?", itemID).
		Update("schema_status", status).Error
}

// List retrieves runs ordered by creation time descending with pagination.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - limit: maximum number of records to return.
//   - offset: number of records to skip.
// Returns:
//   - []domain.Run: matching run records.
//   - error: non-nil if the query fails.
func (r *RunRepository) List(ctx context.Context, limit, offset int) ([]domain.Run, error) {
	var runs []domain.Run
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
