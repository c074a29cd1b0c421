// Command seed loads a demo fleet into the database: the admin
// account, one robot, and one in-progress picking task with its
// target. Existing rows are left alone so the command can be re-run.
package main

import (
	"log/slog"
	"os"
	"time"

	"citrus-link/config"
	"citrus-link/database"
	"citrus-link/logging"
	"citrus-link/models"
	"citrus-link/repositories/base"
	"citrus-link/utils"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg := config.LoadConfig()
	logger := logging.NewLogger(cfg.LogLevel).With("component", "seed")

	db, err := database.NewDatabase(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize database", slog.Any("error", err))
		os.Exit(1)
	}

	admin := seedAdmin(db, logger)
	robot := seedRobot(db, logger)
	seedTask(db, logger, admin, robot)

	logger.Info("Seed completed")
}

func seedAdmin(db *database.Database, logger *slog.Logger) *models.User {
	if existing, err := db.UserRepo.GetByUsername("admin"); err == nil {
		logger.Info("Admin user already present", "userId", existing.ID)
		return existing
	}

	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "admin"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("Failed to hash admin password", slog.Any("error", err))
		os.Exit(1)
	}

	admin := &models.User{
		ID:           utils.GenerateEntityID(),
		Username:     "admin",
		PasswordHash: string(hash),
		Role:         "ADMIN",
	}
	if err := db.UserRepo.Create(admin); err != nil {
		logger.Error("Failed to create admin user", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Admin user created", "userId", admin.ID)
	return admin
}

func seedRobot(db *database.Database, logger *slog.Logger) *models.Robot {
	if existing, err := db.RobotRepo.GetByID("UGV-01"); err == nil {
		logger.Info("Demo robot already present", "robotId", existing.ID)
		return existing
	}

	now := time.Now()
	robot := &models.Robot{
		ID:            "UGV-01",
		IPAddress:     "192.168.1.101",
		BatteryLevel:  85.5,
		CurrentLoad:   12.5,
		Status:        models.RobotStatusOnline,
		LastHeartbeat: &now,
	}
	if err := db.RobotRepo.Create(robot); err != nil {
		if base.IsDuplicateEntity(err) {
			logger.Info("Demo robot already present", "robotId", robot.ID)
			return robot
		}
		logger.Error("Failed to create demo robot", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Demo robot created", "robotId", robot.ID)
	return robot
}

func seedTask(db *database.Database, logger *slog.Logger, admin *models.User, robot *models.Robot) {
	count, err := db.TaskRepo.Count()
	if err != nil {
		logger.Error("Failed to count tasks", slog.Any("error", err))
		os.Exit(1)
	}
	if count > 0 {
		logger.Info("Tasks already present, skipping demo task")
		return
	}

	tx := db.UoW.Begin()

	target := &models.Target{
		Coordinate: models.PointZ{X: 10.5, Y: 20.0, Z: 1.5},
		Ripeness:   0.95,
		ImageURL:   "/static/cam01_01.jpg",
		AreaCode:   "Area-A",
	}
	if err := db.TargetRepo.CreateTx(tx, target); err != nil {
		db.UoW.Rollback(tx)
		logger.Error("Failed to create demo target", slog.Any("error", err))
		os.Exit(1)
	}

	task := &models.Task{
		ID:              utils.GenerateEntityID(),
		Priority:        2,
		Status:          models.TaskStatusInProgress,
		Type:            models.TaskTypePicking,
		CreatedBy:       &admin.ID,
		AssignedRobotID: &robot.ID,
		TargetID:        target.ID,
	}
	if err := db.TaskRepo.CreateTx(tx, task); err != nil {
		db.UoW.Rollback(tx)
		logger.Error("Failed to create demo task", slog.Any("error", err))
		os.Exit(1)
	}

	if err := db.UoW.Commit(tx); err != nil {
		logger.Error("Failed to commit demo task", slog.Any("error", err))
		os.Exit(1)
	}

	if err := db.LogRepo.Append(&models.SystemLog{
		RobotID: &robot.ID,
		Level:   "INFO",
		Content: "System initialized successfully.",
	}); err != nil {
		logger.Warn("Failed to append seed log line", slog.Any("error", err))
	}

	logger.Info("Demo task created", "taskId", task.ID, "targetId", target.ID)
}
