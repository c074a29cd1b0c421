package repositories

import (
	"fmt"

	"citrus-link/models"
	"citrus-link/repositories/base"
	"citrus-link/repositories/interfaces"

	"gorm.io/gorm"
)

const robotTable = "t_sys_robot"

// RobotRepository implements RobotRepositoryInterface.
type RobotRepository struct {
	db *gorm.DB
}

// NewRobotRepository creates a new instance of RobotRepository.
func NewRobotRepository(db *gorm.DB) interfaces.RobotRepositoryInterface {
	return &RobotRepository{
		db: db,
	}
}

// validateBattery range-checks a battery reading before it reaches the
// database check constraint, so callers get a typed error.
func validateBattery(level float64) error {
	if level < 0 || level > 100 {
		return base.NewValidationError("battery_level", fmt.Sprintf("%g", level), "must be within [0,100]")
	}
	return nil
}

// Create inserts a new robot. The id is caller-supplied; duplicate ids
// and duplicate IP addresses are rejected.
func (rr *RobotRepository) Create(robot *models.Robot) error {
	if err := validateBattery(robot.BatteryLevel); err != nil {
		return err
	}

	exists, err := rr.Exists(robot.ID)
	if err != nil {
		return err
	}
	if exists {
		return base.NewDuplicateEntityError(robotTable, "id", robot.ID)
	}

	if err := rr.db.Create(robot).Error; err != nil {
		// Unique index on ip_address surfaces here.
		return base.HandleDBError("create", robotTable, robot.ID, err)
	}
	return nil
}

// GetByID retrieves a robot by its caller-supplied id.
func (rr *RobotRepository) GetByID(id string) (*models.Robot, error) {
	var robot models.Robot
	err := rr.db.Where("id = ?", id).First(&robot).Error
	if err != nil {
		return nil, base.HandleDBError("get", robotTable, id, err)
	}
	return &robot, nil
}

// Exists reports whether a robot with the given id is stored.
func (rr *RobotRepository) Exists(id string) (bool, error) {
	var count int64
	err := rr.db.Model(&models.Robot{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, base.WrapDBError("check existence", robotTable, err)
	}
	return count > 0, nil
}

// List retrieves all robots in natural store order.
func (rr *RobotRepository) List() ([]models.Robot, error) {
	var robots []models.Robot
	if err := rr.db.Find(&robots).Error; err != nil {
		return nil, base.WrapDBError("list", robotTable, err)
	}
	return robots, nil
}

// Count returns the number of stored robots.
func (rr *RobotRepository) Count() (int64, error) {
	var count int64
	err := rr.db.Model(&models.Robot{}).Count(&count).Error
	if err != nil {
		return 0, base.WrapDBError("count", robotTable, err)
	}
	return count, nil
}

// CountByStatus returns the number of robots in the given status.
func (rr *RobotRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := rr.db.Model(&models.Robot{}).Where("status = ?", status).Count(&count).Error
	if err != nil {
		return 0, base.WrapDBError("count", robotTable, err)
	}
	return count, nil
}

// AverageBattery returns the mean battery level across the fleet, or 0
// when the fleet is empty.
func (rr *RobotRepository) AverageBattery() (float64, error) {
	var avg float64
	err := rr.db.Model(&models.Robot{}).
		Select("COALESCE(AVG(battery_level), 0)").
		Scan(&avg).Error
	if err != nil {
		return 0, base.WrapDBError("aggregate", robotTable, err)
	}
	return avg, nil
}

// ApplyTelemetry updates battery, load, status and heartbeat columns
// from a robot report within a transaction.
func (rr *RobotRepository) ApplyTelemetry(tx *gorm.DB, id string, updates map[string]interface{}) error {
	if level, ok := updates["battery_level"].(float64); ok {
		if err := validateBattery(level); err != nil {
			return err
		}
	}

	result := tx.Model(&models.Robot{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return base.WrapDBError("update", robotTable, result.Error)
	}
	if result.RowsAffected == 0 {
		return base.NewEntityNotFoundError(robotTable, fmt.Sprintf("id %s", id))
	}
	return nil
}

// DeleteTx removes a robot within a transaction.
func (rr *RobotRepository) DeleteTx(tx *gorm.DB, id string) error {
	if err := tx.Where("id = ?", id).Delete(&models.Robot{}).Error; err != nil {
		return base.WrapDBError("delete", robotTable, err)
	}
	return nil
}
