package services

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"testing"

	"citrus-link/database"
	"citrus-link/models"
	"citrus-link/redis"
	"citrus-link/repositories/base"

	"gorm.io/gorm"
)

// fakeStore is an in-memory stand-in for the Postgres-backed
// repositories. Writes issued inside a transaction stage in pending
// and only reach the committed maps on Commit, so tests can observe
// whether multi-write operations really behave as one unit.
type fakeStore struct {
	users   map[string]*models.User
	robots  map[string]*models.Robot
	targets map[int64]*models.Target
	tasks   map[string]*models.Task
	logs    []models.SystemLog

	nextTargetID int64
	pending      []func()

	begun      int
	committed  int
	rolledBack int

	failTaskCreate   error
	failTargetDelete error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:   make(map[string]*models.User),
		robots:  make(map[string]*models.Robot),
		targets: make(map[int64]*models.Target),
		tasks:   make(map[string]*models.Task),
	}
}

type fakeUoW struct{ s *fakeStore }

func (u *fakeUoW) Begin() *gorm.DB {
	u.s.begun++
	return &gorm.DB{}
}

func (u *fakeUoW) Commit(tx *gorm.DB) error {
	for _, apply := range u.s.pending {
		apply()
	}
	u.s.pending = nil
	u.s.committed++
	return nil
}

func (u *fakeUoW) Rollback(tx *gorm.DB) {
	u.s.pending = nil
	u.s.rolledBack++
}

type fakeUserRepo struct{ s *fakeStore }

func (r *fakeUserRepo) Create(user *models.User) error {
	r.s.users[user.Username] = user
	return nil
}

func (r *fakeUserRepo) GetByUsername(username string) (*models.User, error) {
	user, ok := r.s.users[username]
	if !ok {
		return nil, base.NewEntityNotFoundError("t_sys_user", "username "+username)
	}
	return user, nil
}

func (r *fakeUserRepo) GetByUsernameTx(tx *gorm.DB, username string) (*models.User, error) {
	return r.GetByUsername(username)
}

type fakeRobotRepo struct{ s *fakeStore }

func (r *fakeRobotRepo) Create(robot *models.Robot) error {
	if _, ok := r.s.robots[robot.ID]; ok {
		return base.NewDuplicateEntityError("t_sys_robot", "id", robot.ID)
	}
	r.s.robots[robot.ID] = robot
	return nil
}

func (r *fakeRobotRepo) GetByID(id string) (*models.Robot, error) {
	robot, ok := r.s.robots[id]
	if !ok {
		return nil, base.NewEntityNotFoundError("t_sys_robot", "id "+id)
	}
	return robot, nil
}

func (r *fakeRobotRepo) Exists(id string) (bool, error) {
	_, ok := r.s.robots[id]
	return ok, nil
}

func (r *fakeRobotRepo) List() ([]models.Robot, error) {
	ids := make([]string, 0, len(r.s.robots))
	for id := range r.s.robots {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	robots := make([]models.Robot, 0, len(ids))
	for _, id := range ids {
		robots = append(robots, *r.s.robots[id])
	}
	return robots, nil
}

func (r *fakeRobotRepo) Count() (int64, error) {
	return int64(len(r.s.robots)), nil
}

func (r *fakeRobotRepo) CountByStatus(status string) (int64, error) {
	var n int64
	for _, robot := range r.s.robots {
		if robot.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *fakeRobotRepo) AverageBattery() (float64, error) {
	if len(r.s.robots) == 0 {
		return 0, nil
	}
	var sum float64
	for _, robot := range r.s.robots {
		sum += robot.BatteryLevel
	}
	return sum / float64(len(r.s.robots)), nil
}

func (r *fakeRobotRepo) ApplyTelemetry(tx *gorm.DB, id string, updates map[string]interface{}) error {
	return nil
}

func (r *fakeRobotRepo) DeleteTx(tx *gorm.DB, id string) error {
	r.s.pending = append(r.s.pending, func() {
		delete(r.s.robots, id)
	})
	return nil
}

type fakeTargetRepo struct{ s *fakeStore }

func (r *fakeTargetRepo) CreateTx(tx *gorm.DB, target *models.Target) error {
	r.s.nextTargetID++
	target.ID = r.s.nextTargetID
	r.s.pending = append(r.s.pending, func() {
		r.s.targets[target.ID] = target
	})
	return nil
}

func (r *fakeTargetRepo) DeleteTx(tx *gorm.DB, id int64) error {
	if r.s.failTargetDelete != nil {
		return r.s.failTargetDelete
	}
	r.s.pending = append(r.s.pending, func() {
		delete(r.s.targets, id)
	})
	return nil
}

func (r *fakeTargetRepo) GetByID(id int64) (*models.Target, error) {
	target, ok := r.s.targets[id]
	if !ok {
		return nil, base.NewEntityNotFoundError("t_biz_target", fmt.Sprintf("id %d", id))
	}
	return target, nil
}

func (r *fakeTargetRepo) ListPlanar() ([]models.TargetPlanar, error) {
	ids := make([]int64, 0, len(r.s.targets))
	for id := range r.s.targets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	planar := make([]models.TargetPlanar, 0, len(ids))
	for _, id := range ids {
		t := r.s.targets[id]
		planar = append(planar, models.TargetPlanar{ID: t.ID, X: t.Coordinate.X, Y: t.Coordinate.Y})
	}
	return planar, nil
}

func (r *fakeTargetRepo) GetWKT(id int64) (string, error) {
	target, err := r.GetByID(id)
	if err != nil {
		return "", err
	}
	return target.Coordinate.WKT(), nil
}

type fakeTaskRepo struct{ s *fakeStore }

func (r *fakeTaskRepo) CreateTx(tx *gorm.DB, task *models.Task) error {
	if r.s.failTaskCreate != nil {
		return r.s.failTaskCreate
	}
	r.s.pending = append(r.s.pending, func() {
		r.s.tasks[task.ID] = task
	})
	return nil
}

func (r *fakeTaskRepo) GetByID(id string) (*models.Task, error) {
	task, ok := r.s.tasks[id]
	if !ok {
		return nil, base.NewEntityNotFoundError("t_biz_task", "id "+id)
	}
	return task, nil
}

func (r *fakeTaskRepo) ListWithTargets() ([]models.Task, error) {
	ids := make([]string, 0, len(r.s.tasks))
	for id := range r.s.tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	tasks := make([]models.Task, 0, len(ids))
	for _, id := range ids {
		task := *r.s.tasks[id]
		if target, ok := r.s.targets[task.TargetID]; ok {
			task.Target = target
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (r *fakeTaskRepo) UpdateFields(id string, updates map[string]interface{}) error {
	if _, ok := r.s.tasks[id]; !ok {
		return base.NewEntityNotFoundError("t_biz_task", "id "+id)
	}
	return nil
}

func (r *fakeTaskRepo) DeleteTx(tx *gorm.DB, id string) error {
	r.s.pending = append(r.s.pending, func() {
		delete(r.s.tasks, id)
	})
	return nil
}

func (r *fakeTaskRepo) ClearRobotAssignmentTx(tx *gorm.DB, robotID string) error {
	r.s.pending = append(r.s.pending, func() {
		for _, task := range r.s.tasks {
			if task.AssignedRobotID != nil && *task.AssignedRobotID == robotID {
				task.AssignedRobotID = nil
			}
		}
	})
	return nil
}

func (r *fakeTaskRepo) Count() (int64, error) {
	return int64(len(r.s.tasks)), nil
}

func (r *fakeTaskRepo) CountByStatus(status string) (int64, error) {
	var n int64
	for _, task := range r.s.tasks {
		if task.Status == status {
			n++
		}
	}
	return n, nil
}

type fakeLogRepo struct{ s *fakeStore }

func (r *fakeLogRepo) Append(log *models.SystemLog) error {
	r.s.logs = append(r.s.logs, *log)
	return nil
}

func (r *fakeLogRepo) AppendTx(tx *gorm.DB, log *models.SystemLog) error {
	r.s.pending = append(r.s.pending, func() {
		r.s.logs = append(r.s.logs, *log)
	})
	return nil
}

func (r *fakeLogRepo) ListByRobot(robotID string, limit int) ([]models.SystemLog, error) {
	var logs []models.SystemLog
	for _, line := range r.s.logs {
		if line.RobotID != nil && *line.RobotID == robotID {
			logs = append(logs, line)
		}
	}
	return logs, nil
}

// fakeCache is an in-memory RobotCache.
type fakeCache struct {
	telemetry map[string]*models.TelemetryMessage
	presence  map[string]bool
	cleared   []string
	getErr    error
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		telemetry: make(map[string]*models.TelemetryMessage),
		presence:  make(map[string]bool),
	}
}

func (c *fakeCache) SaveTelemetry(robotID string, telemetry *models.TelemetryMessage) error {
	c.telemetry[robotID] = telemetry
	return nil
}

func (c *fakeCache) GetTelemetry(robotID string) (*models.TelemetryMessage, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	telemetry, ok := c.telemetry[robotID]
	if !ok {
		return nil, fmt.Errorf("telemetry for robot %s: %w", robotID, redis.ErrCacheMiss)
	}
	return telemetry, nil
}

func (c *fakeCache) SaveConnectionStatus(robotID, status string) error {
	c.presence[robotID] = status == models.RobotStatusOnline
	return nil
}

func (c *fakeCache) ClearRobot(robotID string) error {
	c.cleared = append(c.cleared, robotID)
	delete(c.presence, robotID)
	delete(c.telemetry, robotID)
	return nil
}

func (c *fakeCache) IsRobotOnline(robotID string) bool {
	return c.presence[robotID]
}

func newFleetFixture() (*FleetService, *fakeStore, *fakeCache) {
	store := newFakeStore()
	cache := newFakeCache()
	db := &database.Database{
		UoW:        &fakeUoW{s: store},
		UserRepo:   &fakeUserRepo{s: store},
		RobotRepo:  &fakeRobotRepo{s: store},
		TargetRepo: &fakeTargetRepo{s: store},
		TaskRepo:   &fakeTaskRepo{s: store},
		LogRepo:    &fakeLogRepo{s: store},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewFleetService(db, cache, logger), store, cache
}

func TestCreateTaskTransaction(t *testing.T) {
	t.Run("Target And Task Commit Together", func(t *testing.T) {
		fleet, store, _ := newFleetFixture()
		store.users["admin"] = &models.User{ID: "user-1", Username: "admin"}

		err := fleet.CreateTask(&models.TaskCreateRequest{
			Priority:   intPtr(2),
			TargetArea: "Area-A",
		})
		if err != nil {
			t.Fatalf("CreateTask failed: %v", err)
		}
		if store.committed != 1 {
			t.Fatalf("Expected 1 commit, got %d", store.committed)
		}
		if len(store.targets) != 1 || len(store.tasks) != 1 {
			t.Fatalf("Expected 1 target and 1 task, got %d/%d", len(store.targets), len(store.tasks))
		}

		for _, task := range store.tasks {
			if task.Status != models.TaskStatusPending {
				t.Errorf("Expected status %s, got %s", models.TaskStatusPending, task.Status)
			}
			if task.Type != models.TaskTypePicking {
				t.Errorf("Expected default type %s, got %s", models.TaskTypePicking, task.Type)
			}
			if task.Priority != 2 {
				t.Errorf("Expected priority 2, got %d", task.Priority)
			}
			if task.AssignedRobotID != nil {
				t.Errorf("Expected no robot assignment, got %v", *task.AssignedRobotID)
			}
			if task.CreatedBy == nil || *task.CreatedBy != "user-1" {
				t.Errorf("Expected creator user-1, got %v", task.CreatedBy)
			}
			if _, ok := store.targets[task.TargetID]; !ok {
				t.Errorf("Task references target %d which is not stored", task.TargetID)
			}
		}
	})

	t.Run("Explicit Robot Assignment Is Kept", func(t *testing.T) {
		fleet, store, _ := newFleetFixture()

		err := fleet.CreateTask(&models.TaskCreateRequest{
			Priority:        intPtr(1),
			TargetArea:      "Area-B",
			AssignedRobotID: "UGV-01",
		})
		if err != nil {
			t.Fatalf("CreateTask failed: %v", err)
		}
		for _, task := range store.tasks {
			if task.AssignedRobotID == nil || *task.AssignedRobotID != "UGV-01" {
				t.Errorf("Expected assignment UGV-01, got %v", task.AssignedRobotID)
			}
		}
	})

	t.Run("Target Rolls Back When Task Insert Fails", func(t *testing.T) {
		fleet, store, _ := newFleetFixture()
		store.failTaskCreate = errors.New("unique index violation")

		err := fleet.CreateTask(&models.TaskCreateRequest{
			Priority:   intPtr(1),
			TargetArea: "Area-A",
		})
		if err == nil {
			t.Fatal("Expected CreateTask to fail")
		}
		if len(store.targets) != 0 {
			t.Errorf("Target must not persist after rollback, got %d", len(store.targets))
		}
		if store.rolledBack != 1 || store.committed != 0 {
			t.Errorf("Expected 1 rollback and 0 commits, got %d/%d", store.rolledBack, store.committed)
		}
	})

	t.Run("Missing Priority Is Rejected", func(t *testing.T) {
		fleet, store, _ := newFleetFixture()

		err := fleet.CreateTask(&models.TaskCreateRequest{TargetArea: "Area-A"})
		if !base.IsValidationError(err) {
			t.Fatalf("Expected validation error, got %v", err)
		}
		if store.begun != 0 {
			t.Errorf("No transaction should start on invalid input, got %d", store.begun)
		}
	})

	t.Run("Missing Target Area Is Rejected", func(t *testing.T) {
		fleet, store, _ := newFleetFixture()

		err := fleet.CreateTask(&models.TaskCreateRequest{Priority: intPtr(0)})
		if !base.IsValidationError(err) {
			t.Fatalf("Expected validation error, got %v", err)
		}
		if len(store.targets) != 0 || len(store.tasks) != 0 {
			t.Errorf("Nothing should be stored on invalid input")
		}
	})
}

func TestDeleteTaskTransaction(t *testing.T) {
	seed := func(store *fakeStore) {
		store.targets[7] = &models.Target{ID: 7, AreaCode: "Area-A"}
		store.tasks["task-1"] = &models.Task{ID: "task-1", TargetID: 7, Status: models.TaskStatusPending}
	}

	t.Run("Removes Task And Its Owned Target", func(t *testing.T) {
		fleet, store, _ := newFleetFixture()
		seed(store)

		if err := fleet.DeleteTask("task-1"); err != nil {
			t.Fatalf("DeleteTask failed: %v", err)
		}
		if len(store.tasks) != 0 {
			t.Errorf("Expected task removed, %d left", len(store.tasks))
		}
		if len(store.targets) != 0 {
			t.Errorf("Expected owned target removed, %d left", len(store.targets))
		}
		if store.committed != 1 {
			t.Errorf("Expected 1 commit, got %d", store.committed)
		}
	})

	t.Run("Absent Id Is A NoOp", func(t *testing.T) {
		fleet, store, _ := newFleetFixture()

		if err := fleet.DeleteTask("ghost"); err != nil {
			t.Fatalf("Expected nil for absent id, got %v", err)
		}
		if store.begun != 0 {
			t.Errorf("No transaction should start for an absent id, got %d", store.begun)
		}
	})

	t.Run("Target Delete Failure Rolls Back The Task Row", func(t *testing.T) {
		fleet, store, _ := newFleetFixture()
		seed(store)
		store.failTargetDelete = errors.New("constraint violation")

		if err := fleet.DeleteTask("task-1"); err == nil {
			t.Fatal("Expected DeleteTask to fail")
		}
		if _, ok := store.tasks["task-1"]; !ok {
			t.Error("Task row must survive when the target delete fails")
		}
		if store.rolledBack != 1 {
			t.Errorf("Expected 1 rollback, got %d", store.rolledBack)
		}
	})
}

func TestDeleteRobotTransaction(t *testing.T) {
	t.Run("Clears Assignments And Keeps Tasks", func(t *testing.T) {
		fleet, store, cache := newFleetFixture()
		store.robots["UGV-01"] = &models.Robot{ID: "UGV-01"}
		store.tasks["task-1"] = &models.Task{ID: "task-1", TargetID: 1, AssignedRobotID: strPtr("UGV-01")}
		store.tasks["task-2"] = &models.Task{ID: "task-2", TargetID: 2, AssignedRobotID: strPtr("UGV-01")}
		store.tasks["task-3"] = &models.Task{ID: "task-3", TargetID: 3, AssignedRobotID: strPtr("UGV-02")}

		if err := fleet.DeleteRobot("UGV-01"); err != nil {
			t.Fatalf("DeleteRobot failed: %v", err)
		}
		if _, ok := store.robots["UGV-01"]; ok {
			t.Error("Expected robot removed")
		}
		if len(store.tasks) != 3 {
			t.Fatalf("Tasks must survive robot deletion, got %d", len(store.tasks))
		}
		if store.tasks["task-1"].AssignedRobotID != nil || store.tasks["task-2"].AssignedRobotID != nil {
			t.Error("Expected assignments to the deleted robot cleared")
		}
		if got := store.tasks["task-3"].AssignedRobotID; got == nil || *got != "UGV-02" {
			t.Errorf("Other robot's assignment must stay, got %v", got)
		}
		if len(cache.cleared) != 1 || cache.cleared[0] != "UGV-01" {
			t.Errorf("Expected cache cleared for UGV-01, got %v", cache.cleared)
		}
	})

	t.Run("Absent Robot Is A NoOp", func(t *testing.T) {
		fleet, store, cache := newFleetFixture()

		if err := fleet.DeleteRobot("ghost"); err != nil {
			t.Fatalf("Expected nil for absent id, got %v", err)
		}
		if store.begun != 0 {
			t.Errorf("No transaction should start for an absent id, got %d", store.begun)
		}
		if len(cache.cleared) != 0 {
			t.Errorf("Cache must stay untouched, got %v", cache.cleared)
		}
	})
}

func TestGetRobotTelemetry(t *testing.T) {
	t.Run("Cached Report Is Returned", func(t *testing.T) {
		fleet, _, cache := newFleetFixture()
		battery := 87.5
		cache.telemetry["UGV-01"] = &models.TelemetryMessage{BatteryLevel: &battery}

		telemetry, err := fleet.GetRobotTelemetry("UGV-01")
		if err != nil {
			t.Fatalf("GetRobotTelemetry failed: %v", err)
		}
		if telemetry.BatteryLevel == nil || *telemetry.BatteryLevel != 87.5 {
			t.Errorf("Expected battery 87.5, got %v", telemetry.BatteryLevel)
		}
	})

	t.Run("Cache Miss Is NotFound", func(t *testing.T) {
		fleet, _, _ := newFleetFixture()

		_, err := fleet.GetRobotTelemetry("UGV-01")
		if !base.IsEntityNotFound(err) {
			t.Fatalf("Expected not-found for a cache miss, got %v", err)
		}
	})

	t.Run("Backend Failure Stays An Error", func(t *testing.T) {
		fleet, _, cache := newFleetFixture()
		cache.getErr = errors.New("connection refused")

		_, err := fleet.GetRobotTelemetry("UGV-01")
		if err == nil {
			t.Fatal("Expected an error")
		}
		if base.IsEntityNotFound(err) {
			t.Error("A backend failure must not masquerade as not-found")
		}
	})
}

func TestGetMapObjectsPresence(t *testing.T) {
	store := newFakeStore()
	cache := newFakeCache()
	db := &database.Database{
		RobotRepo:  &fakeRobotRepo{s: store},
		TargetRepo: &fakeTargetRepo{s: store},
	}
	maps := NewMapService(db, cache)

	store.robots["UGV-01"] = &models.Robot{ID: "UGV-01", Status: models.RobotStatusOffline}
	store.robots["UGV-02"] = &models.Robot{ID: "UGV-02", Status: models.RobotStatusOffline}
	cache.presence["UGV-01"] = true

	objects, err := maps.GetMapObjects()
	if err != nil {
		t.Fatalf("GetMapObjects failed: %v", err)
	}
	if len(objects.Robots) != 2 {
		t.Fatalf("Expected 2 robots, got %d", len(objects.Robots))
	}
	if objects.Robots[0].Status != models.RobotStatusOnline {
		t.Errorf("Live presence must override stored status, got %s", objects.Robots[0].Status)
	}
	if objects.Robots[1].Status != models.RobotStatusOffline {
		t.Errorf("Without presence the stored status stands, got %s", objects.Robots[1].Status)
	}
}
