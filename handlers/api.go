package handlers

import (
	"net/http"
	"strconv"
	"time"

	"citrus-link/models"
	"citrus-link/services"
	"citrus-link/utils"

	"github.com/labstack/echo/v4"
)

// APIHandler exposes the dashboard and fleet management endpoints.
type APIHandler struct {
	fleet *services.FleetService
	stats *services.StatsService
	maps  *services.MapService
}

// NewAPIHandler creates a new instance of APIHandler.
func NewAPIHandler(fleet *services.FleetService, stats *services.StatsService, maps *services.MapService) *APIHandler {
	return &APIHandler{
		fleet: fleet,
		stats: stats,
		maps:  maps,
	}
}

// RegisterRoutes attaches all API routes to the echo instance.
func (h *APIHandler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")

	api.GET("/health", h.HealthCheck)
	api.GET("/dashboard/stats", h.GetDashboardStats)

	api.GET("/tasks", h.GetTasks)
	api.POST("/tasks", h.CreateTask)
	api.PUT("/tasks/:id", h.UpdateTask)
	api.DELETE("/tasks/:id", h.DeleteTask)

	api.GET("/robots", h.GetRobots)
	api.POST("/robots", h.CreateRobot)
	api.DELETE("/robots/:id", h.DeleteRobot)
	api.GET("/robots/:id/logs", h.GetRobotLogs)
	api.GET("/robots/:id/telemetry", h.GetRobotTelemetry)

	api.GET("/targets/:id", h.GetTarget)
	api.GET("/map/objects", h.GetMapObjects)
}

// ===================================================================
// HEALTH & DASHBOARD
// ===================================================================

// HealthCheck provides a simple health status of the service.
func (h *APIHandler) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"service":   "citrus-link",
		"timestamp": time.Now().Unix(),
	})
}

// GetDashboardStats returns the fleet-wide dashboard counters.
func (h *APIHandler) GetDashboardStats(c echo.Context) error {
	stats, err := h.stats.GetDashboardStats()
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// ===================================================================
// TASKS
// ===================================================================

// GetTasks lists all tasks with denormalized display fields.
func (h *APIHandler) GetTasks(c echo.Context) error {
	tasks, err := h.fleet.ListTasks()
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, tasks)
}

// CreateTask creates a task together with its owned target. Any
// failure surfaces as a client error with the constraint detail.
func (h *APIHandler) CreateTask(c echo.Context) error {
	var req models.TaskCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}

	if err := h.fleet.CreateTask(&req); err != nil {
		return badRequest(c, err)
	}
	return c.JSON(http.StatusOK, models.OperationResponse{Success: true, Message: "Task created"})
}

// UpdateTask applies a partial update to a task.
func (h *APIHandler) UpdateTask(c echo.Context) error {
	var req models.TaskUpdateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}

	if err := h.fleet.UpdateTask(c.Param("id"), &req); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, models.OperationResponse{Success: true})
}

// DeleteTask removes a task and its owned target. Idempotent.
func (h *APIHandler) DeleteTask(c echo.Context) error {
	if err := h.fleet.DeleteTask(c.Param("id")); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, models.OperationResponse{Success: true})
}

// ===================================================================
// ROBOTS
// ===================================================================

// GetRobots lists all robots.
func (h *APIHandler) GetRobots(c echo.Context) error {
	robots, err := h.fleet.ListRobots()
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, robots)
}

// CreateRobot registers a new robot; a duplicate id is rejected as a
// client error.
func (h *APIHandler) CreateRobot(c echo.Context) error {
	var req models.RobotCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, err)
	}

	if err := h.fleet.CreateRobot(&req); err != nil {
		return badRequest(c, err)
	}
	return c.JSON(http.StatusOK, models.OperationResponse{Success: true})
}

// DeleteRobot unassigns the robot's tasks and removes it. Idempotent.
func (h *APIHandler) DeleteRobot(c echo.Context) error {
	if err := h.fleet.DeleteRobot(c.Param("id")); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, models.OperationResponse{Success: true})
}

// GetRobotLogs returns the recent log trail for a robot.
func (h *APIHandler) GetRobotLogs(c echo.Context) error {
	pagination := utils.GetPaginationParams(c.QueryParam("limit"), "", 50)
	logs, err := h.fleet.GetRobotLogs(c.Param("id"), pagination.Limit)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}

// GetRobotTelemetry returns the last cached telemetry report. A robot
// with nothing cached is a 404; a failing cache backend is not.
func (h *APIHandler) GetRobotTelemetry(c echo.Context) error {
	telemetry, err := h.fleet.GetRobotTelemetry(c.Param("id"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, telemetry)
}

// ===================================================================
// TARGETS & MAP
// ===================================================================

// GetTarget returns one target with its coordinate as readable WKT,
// for field diagnostics.
func (h *APIHandler) GetTarget(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return badRequest(c, err)
	}

	target, err := h.fleet.GetTargetDetail(id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, target)
}

// GetMapObjects returns display coordinates for robots and targets.
func (h *APIHandler) GetMapObjects(c echo.Context) error {
	objects, err := h.maps.GetMapObjects()
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, objects)
}
