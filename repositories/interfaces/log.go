package interfaces

import (
	"citrus-link/models"

	"gorm.io/gorm"
)

// LogRepositoryInterface defines the contract for system log access.
type LogRepositoryInterface interface {
	// Append stores a new log line.
	Append(log *models.SystemLog) error

	// AppendTx stores a new log line within a running transaction.
	AppendTx(tx *gorm.DB, log *models.SystemLog) error

	// ListByRobot retrieves the most recent log lines for a robot.
	ListByRobot(robotID string, limit int) ([]models.SystemLog, error)
}
