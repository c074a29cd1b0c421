package interfaces

import (
	"citrus-link/models"

	"gorm.io/gorm"
)

// TaskRepositoryInterface defines the contract for task data access.
type TaskRepositoryInterface interface {
	// CreateTx inserts a new task within a transaction. The unique
	// index on target_id rejects a task whose target is already owned.
	CreateTx(tx *gorm.DB, task *models.Task) error

	// GetByID retrieves a task by id.
	GetByID(id string) (*models.Task, error)

	// ListWithTargets retrieves all tasks with their owned targets
	// preloaded, in natural store order.
	ListWithTargets() ([]models.Task, error)

	// UpdateFields applies a partial column update to a task.
	UpdateFields(id string, updates map[string]interface{}) error

	// DeleteTx removes a task within a transaction.
	DeleteTx(tx *gorm.DB, id string) error

	// ClearRobotAssignmentTx nulls the robot reference on every task
	// assigned to the given robot, within a transaction.
	ClearRobotAssignmentTx(tx *gorm.DB, robotID string) error

	// Count returns the number of stored tasks.
	Count() (int64, error)

	// CountByStatus returns the number of tasks in the given status.
	CountByStatus(status string) (int64, error)
}
