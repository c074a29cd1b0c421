package repositories

import (
	"fmt"

	"citrus-link/models"
	"citrus-link/repositories/base"
	"citrus-link/repositories/interfaces"

	"gorm.io/gorm"
)

const taskTable = "t_biz_task"

// TaskRepository implements TaskRepositoryInterface.
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new instance of TaskRepository.
func NewTaskRepository(db *gorm.DB) interfaces.TaskRepositoryInterface {
	return &TaskRepository{
		db: db,
	}
}

// CreateTx inserts a new task within a transaction. The unique index
// on target_id enforces one-to-one target ownership at write time.
func (tr *TaskRepository) CreateTx(tx *gorm.DB, task *models.Task) error {
	if err := tx.Create(task).Error; err != nil {
		return base.HandleDBError("create", taskTable, task.ID, err)
	}
	return nil
}

// GetByID retrieves a task by id.
func (tr *TaskRepository) GetByID(id string) (*models.Task, error) {
	var task models.Task
	err := tr.db.Where("id = ?", id).First(&task).Error
	if err != nil {
		return nil, base.HandleDBError("get", taskTable, id, err)
	}
	return &task, nil
}

// ListWithTargets retrieves all tasks with their owned targets
// preloaded, in natural store order.
func (tr *TaskRepository) ListWithTargets() ([]models.Task, error) {
	var tasks []models.Task
	if err := tr.db.Preload("Target").Find(&tasks).Error; err != nil {
		return nil, base.WrapDBError("list", taskTable, err)
	}
	return tasks, nil
}

// UpdateFields applies a partial column update to a task.
func (tr *TaskRepository) UpdateFields(id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		// Nothing supplied; still surface NotFound for absent ids.
		var count int64
		if err := tr.db.Model(&models.Task{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return base.WrapDBError("update", taskTable, err)
		}
		if count == 0 {
			return base.NewEntityNotFoundError(taskTable, fmt.Sprintf("id %s", id))
		}
		return nil
	}

	result := tr.db.Model(&models.Task{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return base.WrapDBError("update", taskTable, result.Error)
	}
	if result.RowsAffected == 0 {
		return base.NewEntityNotFoundError(taskTable, fmt.Sprintf("id %s", id))
	}
	return nil
}

// DeleteTx removes a task within a transaction.
func (tr *TaskRepository) DeleteTx(tx *gorm.DB, id string) error {
	if err := tx.Where("id = ?", id).Delete(&models.Task{}).Error; err != nil {
		return base.WrapDBError("delete", taskTable, err)
	}
	return nil
}

// ClearRobotAssignmentTx nulls the robot reference on every task
// assigned to the given robot. Tasks themselves are never deleted when
// their robot goes away.
func (tr *TaskRepository) ClearRobotAssignmentTx(tx *gorm.DB, robotID string) error {
	err := tx.Model(&models.Task{}).
		Where("assigned_robot_id = ?", robotID).
		Update("assigned_robot_id", nil).Error
	if err != nil {
		return base.WrapDBError("update", taskTable, err)
	}
	return nil
}

// Count returns the number of stored tasks.
func (tr *TaskRepository) Count() (int64, error) {
	var count int64
	err := tr.db.Model(&models.Task{}).Count(&count).Error
	if err != nil {
		return 0, base.WrapDBError("count", taskTable, err)
	}
	return count, nil
}

// CountByStatus returns the number of tasks in the given status.
func (tr *TaskRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := tr.db.Model(&models.Task{}).Where("status = ?", status).Count(&count).Error
	if err != nil {
		return 0, base.WrapDBError("count", taskTable, err)
	}
	return count, nil
}
