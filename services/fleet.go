package services

import (
	"errors"
	"log/slog"
	"time"

	"citrus-link/database"
	"citrus-link/models"
	"citrus-link/redis"
	"citrus-link/repositories/base"
	"citrus-link/utils"
)

// Placeholder survey location used when task creation carries no
// coordinate. Stands in for the perception pipeline, which reports
// real target positions in a production deployment.
var defaultTargetCoordinate = models.PointZ{X: 10.5, Y: 20.0, Z: 1.5}

// defaultRipeness is assumed for targets created without a measurement.
const defaultRipeness = 0.8

// adminUsername is the designated administrative account resolved as
// task creator when present.
const adminUsername = "admin"

// FleetService maintains the task/target/robot assignment model as one
// consistent unit.
type FleetService struct {
	db     *database.Database
	cache  RobotCache
	logger *slog.Logger
}

// NewFleetService creates a new instance of FleetService.
func NewFleetService(db *database.Database, cache RobotCache, logger *slog.Logger) *FleetService {
	return &FleetService{
		db:     db,
		cache:  cache,
		logger: logger.With("component", "fleet_service"),
	}
}

// ===================================================================
// TASKS
// ===================================================================

// CreateTask creates a new target and its owning task as one atomic
// unit. The target never persists if the task insert fails.
func (fs *FleetService) CreateTask(req *models.TaskCreateRequest) error {
	if req.Priority == nil {
		return base.NewValidationError("priority", "", "task priority is required")
	}
	if req.TargetArea == "" {
		return base.NewValidationError("target_area", "", "target area is required")
	}

	coordinate := defaultTargetCoordinate
	if req.X != nil {
		coordinate.X = *req.X
	}
	if req.Y != nil {
		coordinate.Y = *req.Y
	}
	if req.Z != nil {
		coordinate.Z = *req.Z
	}

	tx := fs.db.UoW.Begin()
	defer func() {
		if r := recover(); r != nil {
			fs.db.UoW.Rollback(tx)
			panic(r)
		}
	}()

	target := &models.Target{
		Coordinate: coordinate,
		Ripeness:   defaultRipeness,
		ImageURL:   "",
		AreaCode:   req.TargetArea,
	}
	if err := fs.db.TargetRepo.CreateTx(tx, target); err != nil {
		fs.db.UoW.Rollback(tx)
		return err
	}

	var creatorID *string
	admin, err := fs.db.UserRepo.GetByUsernameTx(tx, adminUsername)
	if err == nil {
		creatorID = &admin.ID
	} else if !base.IsEntityNotFound(err) {
		fs.db.UoW.Rollback(tx)
		return err
	}

	var robotID *string
	if req.AssignedRobotID != "" {
		robotID = &req.AssignedRobotID
	}

	task := &models.Task{
		ID:              utils.GenerateEntityID(),
		Priority:        *req.Priority,
		Status:          models.TaskStatusPending,
		Type:            utils.GetValueOrDefault(req.Type, models.TaskTypePicking),
		CreatedBy:       creatorID,
		AssignedRobotID: robotID,
		TargetID:        target.ID,
	}
	if err := fs.db.TaskRepo.CreateTx(tx, task); err != nil {
		fs.db.UoW.Rollback(tx)
		return err
	}

	if err := fs.db.UoW.Commit(tx); err != nil {
		return err
	}

	fs.logger.Info("Task created", "taskId", task.ID, "targetId", target.ID, "area", req.TargetArea)
	return nil
}

// BuildTaskUpdates translates a partial update request into the column
// set to apply. Empty status or robot id values count as not supplied
// (an empty string can therefore never clear a field), while priority
// applies whenever present, including zero.
func BuildTaskUpdates(req *models.TaskUpdateRequest) map[string]interface{} {
	updates := make(map[string]interface{})
	if req.Status != nil && *req.Status != "" {
		updates["status"] = *req.Status
	}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}
	if req.AssignedRobotID != nil && *req.AssignedRobotID != "" {
		updates["assigned_robot_id"] = *req.AssignedRobotID
	}
	return updates
}

// UpdateTask applies a partial update to a task. Omitted fields stay
// untouched; an absent task id yields a not-found error.
func (fs *FleetService) UpdateTask(id string, req *models.TaskUpdateRequest) error {
	if err := fs.db.TaskRepo.UpdateFields(id, BuildTaskUpdates(req)); err != nil {
		return err
	}
	fs.logger.Info("Task updated", "taskId", id)
	return nil
}

// DeleteTask removes a task together with its owned target as one
// atomic unit. Deleting an absent id is a successful no-op.
func (fs *FleetService) DeleteTask(id string) error {
	task, err := fs.db.TaskRepo.GetByID(id)
	if err != nil {
		if base.IsEntityNotFound(err) {
			return nil
		}
		return err
	}

	tx := fs.db.UoW.Begin()
	defer func() {
		if r := recover(); r != nil {
			fs.db.UoW.Rollback(tx)
			panic(r)
		}
	}()

	// Task row goes first so the target's foreign key is released
	// before the owned target row is removed.
	if err := fs.db.TaskRepo.DeleteTx(tx, task.ID); err != nil {
		fs.db.UoW.Rollback(tx)
		return err
	}
	if err := fs.db.TargetRepo.DeleteTx(tx, task.TargetID); err != nil {
		fs.db.UoW.Rollback(tx)
		return err
	}

	if err := fs.db.UoW.Commit(tx); err != nil {
		return err
	}

	fs.logger.Info("Task deleted", "taskId", id, "targetId", task.TargetID)
	return nil
}

// ListTasks returns the denormalized task list for the dashboard.
func (fs *FleetService) ListTasks() ([]models.TaskView, error) {
	tasks, err := fs.db.TaskRepo.ListWithTargets()
	if err != nil {
		return nil, err
	}

	views := make([]models.TaskView, 0, len(tasks))
	for _, t := range tasks {
		area := "Unknown"
		if t.Target != nil {
			area = t.Target.AreaCode
		}
		assignedTo := "--"
		if t.AssignedRobotID != nil {
			assignedTo = *t.AssignedRobotID
		}
		views = append(views, models.TaskView{
			ID:          utils.TruncateID(t.ID, 6),
			FullID:      t.ID,
			Target:      area,
			Priority:    PriorityLabel(t.Priority),
			PriorityVal: t.Priority,
			AssignedTo:  assignedTo,
			Status:      t.Status,
		})
	}
	return views, nil
}

// PriorityLabel maps a numeric priority to its display label.
func PriorityLabel(priority int) string {
	switch priority {
	case 2:
		return "High"
	case 1:
		return "Medium"
	default:
		return "Low"
	}
}

// ===================================================================
// ROBOTS
// ===================================================================

// CreateRobot registers a new harvesting unit. The id is caller
// supplied; a duplicate id is a conflict.
func (fs *FleetService) CreateRobot(req *models.RobotCreateRequest) error {
	if req.ID == "" {
		return base.NewValidationError("id", "", "robot id is required")
	}
	if req.IPAddress == "" {
		return base.NewValidationError("ip_address", "", "robot IP address is required")
	}

	battery := 100.0
	if req.BatteryLevel != nil {
		battery = *req.BatteryLevel
	}
	load := 0.0
	if req.CurrentLoad != nil {
		load = *req.CurrentLoad
	}

	now := time.Now()
	robot := &models.Robot{
		ID:            req.ID,
		IPAddress:     req.IPAddress,
		BatteryLevel:  battery,
		CurrentLoad:   load,
		Status:        utils.GetValueOrDefault(req.Status, models.RobotStatusOffline),
		LastHeartbeat: &now,
	}
	if err := fs.db.RobotRepo.Create(robot); err != nil {
		return err
	}

	if err := fs.cache.SaveConnectionStatus(robot.ID, robot.Status); err != nil {
		fs.logger.Warn("Failed to record robot presence", "robotId", robot.ID, slog.Any("error", err))
	}

	fs.logger.Info("Robot registered", "robotId", robot.ID, "ip", robot.IPAddress)
	return nil
}

// DeleteRobot clears the robot reference on every task assigned to the
// robot and removes the robot, as one atomic unit. Tasks survive with
// no robot assigned. Deleting an absent id is a successful no-op.
func (fs *FleetService) DeleteRobot(id string) error {
	exists, err := fs.db.RobotRepo.Exists(id)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	tx := fs.db.UoW.Begin()
	defer func() {
		if r := recover(); r != nil {
			fs.db.UoW.Rollback(tx)
			panic(r)
		}
	}()

	if err := fs.db.TaskRepo.ClearRobotAssignmentTx(tx, id); err != nil {
		fs.db.UoW.Rollback(tx)
		return err
	}
	if err := fs.db.RobotRepo.DeleteTx(tx, id); err != nil {
		fs.db.UoW.Rollback(tx)
		return err
	}

	if err := fs.db.UoW.Commit(tx); err != nil {
		return err
	}

	if err := fs.cache.ClearRobot(id); err != nil {
		fs.logger.Warn("Failed to clear robot cache", "robotId", id, slog.Any("error", err))
	}

	fs.logger.Info("Robot deleted", "robotId", id)
	return nil
}

// ListRobots returns the robot list for the dashboard.
func (fs *FleetService) ListRobots() ([]models.RobotView, error) {
	robots, err := fs.db.RobotRepo.List()
	if err != nil {
		return nil, err
	}

	views := make([]models.RobotView, 0, len(robots))
	for _, r := range robots {
		views = append(views, models.RobotView{
			ID:           r.ID,
			IPAddress:    r.IPAddress,
			BatteryLevel: r.BatteryLevel,
			CurrentLoad:  r.CurrentLoad,
			Status:       r.Status,
		})
	}
	return views, nil
}

// GetRobotLogs returns the most recent log trail for a robot.
func (fs *FleetService) GetRobotLogs(robotID string, limit int) ([]models.SystemLog, error) {
	exists, err := fs.db.RobotRepo.Exists(robotID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, base.NewEntityNotFoundError("t_sys_robot", "id "+robotID)
	}
	return fs.db.LogRepo.ListByRobot(robotID, limit)
}

// GetTargetDetail returns a single target with its point re-serialized
// as readable WKT for diagnostics.
func (fs *FleetService) GetTargetDetail(id int64) (*models.TargetDetail, error) {
	target, err := fs.db.TargetRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	wkt, err := fs.db.TargetRepo.GetWKT(id)
	if err != nil {
		return nil, err
	}
	return &models.TargetDetail{Target: *target, CoordinateWKT: wkt}, nil
}

// GetRobotTelemetry returns the last cached telemetry report. A cache
// miss surfaces as not-found; a failing cache backend stays an
// infrastructure error.
func (fs *FleetService) GetRobotTelemetry(robotID string) (*models.TelemetryMessage, error) {
	telemetry, err := fs.cache.GetTelemetry(robotID)
	if err != nil {
		if errors.Is(err, redis.ErrCacheMiss) {
			return nil, base.NewEntityNotFoundError("robot_telemetry", "robot "+robotID)
		}
		return nil, err
	}
	return telemetry, nil
}
