package repositories

import (
	"citrus-link/models"
	"citrus-link/repositories/base"
	"citrus-link/repositories/interfaces"

	"gorm.io/gorm"
)

const logTable = "t_sys_log"

// LogRepository implements LogRepositoryInterface.
type LogRepository struct {
	db *gorm.DB
}

// NewLogRepository creates a new instance of LogRepository.
func NewLogRepository(db *gorm.DB) interfaces.LogRepositoryInterface {
	return &LogRepository{
		db: db,
	}
}

// Append stores a new log line.
func (lr *LogRepository) Append(log *models.SystemLog) error {
	return lr.AppendTx(lr.db, log)
}

// AppendTx stores a new log line within a running transaction.
func (lr *LogRepository) AppendTx(tx *gorm.DB, log *models.SystemLog) error {
	if err := tx.Create(log).Error; err != nil {
		return base.WrapDBError("create", logTable, err)
	}
	return nil
}

// ListByRobot retrieves the most recent log lines for a robot.
func (lr *LogRepository) ListByRobot(robotID string, limit int) ([]models.SystemLog, error) {
	var logs []models.SystemLog
	query := lr.db.Where("robot_id = ?", robotID).Order("created_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&logs).Error; err != nil {
		return nil, base.WrapDBError("list", logTable, err)
	}
	return logs, nil
}
