package services

import (
	"citrus-link/database"
	"citrus-link/models"
)

// StatsService computes point-in-time fleet statistics. Every call
// reads fresh entity state; with fleet sizes this small the dashboard
// takes correctness over latency, so nothing is cached.
type StatsService struct {
	db *database.Database
}

// NewStatsService creates a new instance of StatsService.
func NewStatsService(db *database.Database) *StatsService {
	return &StatsService{
		db: db,
	}
}

// GetDashboardStats returns the fleet-wide dashboard counters. The
// four reads are individually consistent but take no shared snapshot;
// these are advisory views, not transactional guarantees.
func (ss *StatsService) GetDashboardStats() (*models.DashboardStats, error) {
	totalRobots, err := ss.db.RobotRepo.Count()
	if err != nil {
		return nil, err
	}
	onlineRobots, err := ss.db.RobotRepo.CountByStatus(models.RobotStatusOnline)
	if err != nil {
		return nil, err
	}
	totalTasks, err := ss.db.TaskRepo.Count()
	if err != nil {
		return nil, err
	}
	completedTasks, err := ss.db.TaskRepo.CountByStatus(models.TaskStatusCompleted)
	if err != nil {
		return nil, err
	}
	avgBattery, err := ss.db.RobotRepo.AverageBattery()
	if err != nil {
		return nil, err
	}

	return &models.DashboardStats{
		OnlineCount: int(onlineRobots),
		TotalRobots: int(totalRobots),
		TaskRate:    CompletionRate(completedTasks, totalTasks),
		BatteryAvg:  int(avgBattery),
	}, nil
}

// CompletionRate returns the completed share of tasks as a truncated
// percentage, 0 when no tasks exist.
func CompletionRate(completed, total int64) int {
	if total == 0 {
		return 0
	}
	return int(float64(completed) / float64(total) * 100)
}
