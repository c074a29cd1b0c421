package models

import (
	"time"
)

// Database Models

// User is an operator account. Authentication is not enforced yet; the
// role field is carried for the eventual policy layer.
type User struct {
	ID           string `gorm:"type:varchar(36);primaryKey" json:"id"`
	Username     string `gorm:"type:varchar(50);uniqueIndex" json:"username"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
	Role         string `gorm:"type:varchar(20)" json:"role"`

	Tasks []Task `gorm:"foreignKey:CreatedBy" json:"-"`
}

func (User) TableName() string { return "t_sys_user" }

// Robot is a harvesting unit. Identity is caller-supplied (e.g.
// "UGV-01") and stable across reconnects. Robots carry no stored
// geometry; map positions are derived from the id.
type Robot struct {
	ID            string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	IPAddress     string     `gorm:"type:inet;uniqueIndex" json:"ip_address"`
	BatteryLevel  float64    `gorm:"check:battery_level >= 0 AND battery_level <= 100" json:"battery_level"`
	CurrentLoad   float64    `json:"current_load"`
	Status        string     `gorm:"type:varchar(10)" json:"status"`
	LastHeartbeat *time.Time `json:"last_heartbeat"`

	Tasks []Task      `gorm:"foreignKey:AssignedRobotID" json:"-"`
	Logs  []SystemLog `gorm:"foreignKey:RobotID" json:"-"`
}

func (Robot) TableName() string { return "t_sys_robot" }

// Robot connectivity states. Status is stored as a plain string; these
// are the conventional values.
const (
	RobotStatusOnline  = "ONLINE"
	RobotStatusOffline = "OFFLINE"
)

// Target is a geolocated object of interest (a fruit cluster). Each
// target is owned by exactly one task and never exists on its own.
type Target struct {
	ID         int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Coordinate PointZ  `gorm:"not null" json:"coordinate"`
	Ripeness   float64 `gorm:"check:ripeness >= 0 AND ripeness <= 1.0" json:"ripeness"`
	ImageURL   string  `gorm:"type:text" json:"image_url"`
	AreaCode   string  `gorm:"type:varchar(10)" json:"area_code"`
}

func (Target) TableName() string { return "t_biz_target" }

// Task is a unit of picking work. It owns its target (one-to-one) and
// is optionally assigned to one robot.
type Task struct {
	ID              string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Priority        int       `gorm:"not null" json:"priority"`
	Status          string    `gorm:"type:varchar(20);not null" json:"status"`
	Type            string    `gorm:"type:varchar(20)" json:"type"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	CreatedBy       *string   `gorm:"type:varchar(36)" json:"created_by"`
	AssignedRobotID *string   `gorm:"type:varchar(36)" json:"assigned_robot_id"`
	TargetID        int64     `gorm:"uniqueIndex;not null" json:"target_id"`

	Creator *User   `gorm:"foreignKey:CreatedBy" json:"-"`
	Robot   *Robot  `gorm:"foreignKey:AssignedRobotID" json:"-"`
	Target  *Target `gorm:"foreignKey:TargetID" json:"-"`
}

func (Task) TableName() string { return "t_biz_task" }

// Task lifecycle states. The store deliberately does not restrict the
// status column to this set; the three-state lifecycle is guidance for
// callers, not a constraint.
const (
	TaskStatusPending    = "PENDING"
	TaskStatusInProgress = "IN_PROGRESS"
	TaskStatusCompleted  = "COMPLETED"
)

// TaskTypePicking is the default task type.
const TaskTypePicking = "PICKING"

// SystemLog is a free-text operational log line attributed to a robot.
type SystemLog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	RobotID   *string   `gorm:"type:varchar(36)" json:"robot_id"`
	Content   string    `gorm:"type:text" json:"content"`
	Level     string    `gorm:"type:varchar(10)" json:"level"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (SystemLog) TableName() string { return "t_sys_log" }
