package domain

import "time"

// RunStatus represents the status of a batch ingestion run.
// Values include RunStatusPending, RunStatusRunning, RunStatusCompleted, and
// RunStatusFailed.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// ItemResult is the terminal reconciliation outcome of one run item.
// Empty until the orchestrator has attempted the item.
type ItemResult string

const (
	ItemResultCreated ItemResult = "created"
	ItemResultUpdated ItemResult = "updated"
	ItemResultError   ItemResult = "error"
)

// StepStatus is the outcome of one pipeline stage (HTML fetch or schema
// generation) for a run item. The two stages are recorded independently.
type StepStatus string

const (
	StepStatusSuccess StepStatus = "success"
	StepStatusFailed  StepStatus = "failed"
)

// Run represents one batch-ingestion invocation over a set of rows.
// A completed run means every row was attempted, not that every row succeeded.
type Run struct {
	ID          string     `gorm:"type:text;primaryKey" json:"id"`
	Name        string     `gorm:"type:text" json:"name,omitempty"`
	Status      RunStatus  `gorm:"type:text;default:pending;index:idx_runs_status" json:"status"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Items []RunItem `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// TableName returns the database table name for Run.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (Run) TableName() string {
	return "runs"
}

// RunItem is one row of a batch and its progress record. RowNumber defines
// processing order within the run. Result, HTMLStatus, and SchemaStatus are
// each set at most once by the orchestrator as the corresponding stage
// completes.
type RunItem struct {
	ID           string     `gorm:"type:text;primaryKey" json:"id"`
	RunID        string     `gorm:"type:text;not null;index:idx_run_items_run" json:"run_id"`
	RowNumber    int        `gorm:"not null" json:"row_number"`
	Domain       SiteDomain `gorm:"type:text" json:"domain"`
	Path         string     `gorm:"type:text" json:"path"`
	PageType     string     `gorm:"type:text" json:"page_type"`
	Category     string     `gorm:"type:text" json:"category"`
	Result       ItemResult `gorm:"type:text" json:"result,omitempty"`
	PageID       string     `gorm:"type:text;index:idx_run_items_page" json:"page_id,omitempty"`
	HTMLStatus   StepStatus `gorm:"type:text;column:html_status" json:"html_status,omitempty"`
	SchemaStatus StepStatus `gorm:"type:text;column:schema_status" json:"schema_status,omitempty"`
	ErrorMessage string     `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName returns the database table name for RunItem.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (RunItem) TableName() string {
	return "run_items"
}
