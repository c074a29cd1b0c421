package services

import (
	"fmt"
	"log/slog"
	"time"

	"citrus-link/database"
	"citrus-link/models"
)

// TelemetryService applies robot-published reports to the entity
// store and keeps the Redis presence cache current.
type TelemetryService struct {
	db     *database.Database
	cache  RobotCache
	logger *slog.Logger
}

// NewTelemetryService creates a new instance of TelemetryService.
func NewTelemetryService(db *database.Database, cache RobotCache, logger *slog.Logger) *TelemetryService {
	return &TelemetryService{
		db:     db,
		cache:  cache,
		logger: logger.With("component", "telemetry_service"),
	}
}

// HandleTelemetry applies one telemetry report. The robot row update
// and any status-transition log line commit as one transaction; a
// report for an unknown robot is dropped with an error.
func (ts *TelemetryService) HandleTelemetry(robotID string, msg *models.TelemetryMessage) error {
	robot, err := ts.db.RobotRepo.GetByID(robotID)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"last_heartbeat": time.Now(),
	}
	if msg.BatteryLevel != nil {
		updates["battery_level"] = *msg.BatteryLevel
	}
	if msg.CurrentLoad != nil {
		updates["current_load"] = *msg.CurrentLoad
	}
	if msg.Status != "" {
		updates["status"] = msg.Status
	}

	tx := ts.db.UoW.Begin()
	defer func() {
		if r := recover(); r != nil {
			ts.db.UoW.Rollback(tx)
			panic(r)
		}
	}()

	if err := ts.db.RobotRepo.ApplyTelemetry(tx, robotID, updates); err != nil {
		ts.db.UoW.Rollback(tx)
		return err
	}

	if msg.Status != "" && msg.Status != robot.Status {
		logLine := &models.SystemLog{
			RobotID: &robot.ID,
			Level:   "INFO",
			Content: fmt.Sprintf("Robot status changed from %s to %s", robot.Status, msg.Status),
		}
		if err := ts.db.LogRepo.AppendTx(tx, logLine); err != nil {
			ts.db.UoW.Rollback(tx)
			return err
		}
	}

	if err := ts.db.UoW.Commit(tx); err != nil {
		return err
	}

	// Cache writes are best effort; the store already holds the truth.
	if err := ts.cache.SaveTelemetry(robotID, msg); err != nil {
		ts.logger.Warn("Failed to cache telemetry", "robotId", robotID, slog.Any("error", err))
	}
	if msg.Status != "" {
		if err := ts.cache.SaveConnectionStatus(robotID, msg.Status); err != nil {
			ts.logger.Warn("Failed to record robot presence", "robotId", robotID, slog.Any("error", err))
		}
	}

	return nil
}

// HandleRobotLog stores a robot-published log line.
func (ts *TelemetryService) HandleRobotLog(robotID string, msg *models.RobotLogMessage) error {
	if _, err := ts.db.RobotRepo.GetByID(robotID); err != nil {
		return err
	}

	return ts.db.LogRepo.Append(&models.SystemLog{
		RobotID: &robotID,
		Level:   msg.Level,
		Content: msg.Content,
	})
}
