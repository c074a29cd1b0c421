package services

import (
	"citrus-link/models"
)

// RobotCache is the presence and telemetry cache as seen by the
// service layer. The Redis client satisfies it; tests substitute an
// in-memory implementation.
type RobotCache interface {
	// SaveTelemetry caches the last raw telemetry report for a robot.
	SaveTelemetry(robotID string, telemetry *models.TelemetryMessage) error

	// GetTelemetry returns the last cached telemetry report, or an
	// error wrapping the cache-miss sentinel when none is cached.
	GetTelemetry(robotID string) (*models.TelemetryMessage, error)

	// SaveConnectionStatus records a robot's presence.
	SaveConnectionStatus(robotID, status string) error

	// ClearRobot drops all cached keys for a deleted robot.
	ClearRobot(robotID string) error

	// IsRobotOnline reports cached presence; absence counts as offline.
	IsRobotOnline(robotID string) bool
}
