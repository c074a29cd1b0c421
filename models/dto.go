package models

import (
	"time"
)

// API Request Structures

// TaskCreateRequest creates a task together with its owned target.
// Priority and target area are required; priority is a pointer so an
// explicit 0 can be told apart from an absent field. Coordinates are
// optional while the perception pipeline is external; absent values
// fall back to the survey placeholder location.
type TaskCreateRequest struct {
	Priority        *int     `json:"priority"`
	Type            string   `json:"type"`
	TargetArea      string   `json:"target_area"`
	AssignedRobotID string   `json:"assigned_robot_id"`
	X               *float64 `json:"x"`
	Y               *float64 `json:"y"`
	Z               *float64 `json:"z"`
}

// TaskUpdateRequest carries a partial update. Empty status or robot id
// values are treated as not supplied; priority applies whenever the
// field is present, including zero.
type TaskUpdateRequest struct {
	Status          *string `json:"status"`
	Priority        *int    `json:"priority"`
	AssignedRobotID *string `json:"assigned_robot_id"`
}

type RobotCreateRequest struct {
	ID           string   `json:"id"`
	IPAddress    string   `json:"ip_address"`
	BatteryLevel *float64 `json:"battery_level"`
	CurrentLoad  *float64 `json:"current_load"`
	Status       string   `json:"status"`
}

// API Response Structures

type DashboardStats struct {
	OnlineCount int `json:"online_count"`
	TotalRobots int `json:"total_robots"`
	TaskRate    int `json:"task_rate"`
	BatteryAvg  int `json:"battery_avg"`
}

type TaskView struct {
	ID          string `json:"id"`
	FullID      string `json:"full_id"`
	Target      string `json:"target"`
	Priority    string `json:"priority"`
	PriorityVal int    `json:"priority_val"`
	AssignedTo  string `json:"assigned_to"`
	Status      string `json:"status"`
}

type RobotView struct {
	ID           string  `json:"id"`
	IPAddress    string  `json:"ip_address"`
	BatteryLevel float64 `json:"battery_level"`
	CurrentLoad  float64 `json:"current_load"`
	Status       string  `json:"status"`
}

type MapRobot struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Status string `json:"status"`
	X      int64  `json:"x"`
	Y      int64  `json:"y"`
}

type MapTarget struct {
	ID   int64   `json:"id"`
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// TargetPlanar is the planar (x,y) extraction of a stored target
// point, z dropped for display.
type TargetPlanar struct {
	ID int64   `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type MapObjects struct {
	Robots  []MapRobot  `json:"robots"`
	Targets []MapTarget `json:"targets"`
}

type OperationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Detail  string `json:"detail"`
}

// TargetDetail is the diagnostics view of a stored target, carrying
// the point both structurally and as readable WKT.
type TargetDetail struct {
	Target
	CoordinateWKT string `json:"coordinate_wkt"`
}

// MQTT Message Structures

// TelemetryMessage is the periodic robot report published on
// citrus/v1/<robotId>/telemetry. Pointer fields distinguish omitted
// readings from zero readings.
type TelemetryMessage struct {
	BatteryLevel *float64  `json:"battery_level"`
	CurrentLoad  *float64  `json:"current_load"`
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
}

// RobotLogMessage is a robot-published log line on
// citrus/v1/<robotId>/log.
type RobotLogMessage struct {
	Level   string `json:"level"`
	Content string `json:"content"`
}
