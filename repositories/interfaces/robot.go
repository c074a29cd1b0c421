package interfaces

import (
	"citrus-link/models"

	"gorm.io/gorm"
)

// RobotRepositoryInterface defines the contract for robot data access.
type RobotRepositoryInterface interface {
	// Create inserts a new robot, rejecting duplicate ids, duplicate IP
	// addresses and battery levels outside [0,100].
	Create(robot *models.Robot) error

	// GetByID retrieves a robot by its caller-supplied id.
	GetByID(id string) (*models.Robot, error)

	// Exists reports whether a robot with the given id is stored.
	Exists(id string) (bool, error)

	// List retrieves all robots in natural store order.
	List() ([]models.Robot, error)

	// Count returns the number of stored robots.
	Count() (int64, error)

	// CountByStatus returns the number of robots in the given status.
	CountByStatus(status string) (int64, error)

	// AverageBattery returns the mean battery level across the fleet,
	// or 0 with no error when the fleet is empty.
	AverageBattery() (float64, error)

	// ApplyTelemetry updates battery, load, status and heartbeat from a
	// robot report within a transaction. Battery is range-checked.
	ApplyTelemetry(tx *gorm.DB, id string, updates map[string]interface{}) error

	// DeleteTx removes a robot within a transaction.
	DeleteTx(tx *gorm.DB, id string) error
}
