package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/accesslearn/internal/tasks"
)

// TasksController handles task queue management endpoints.
type TasksController struct {
	queue     TaskQueue
	retention time.Duration
}

// NewTasksController creates a new TasksController. retention is the default
// age after which device profiles are pruned.
func NewTasksController(queue TaskQueue, retention time.Duration) *TasksController {
	return &TasksController{queue: queue, retention: retention}
}

func (tc *TasksController) RegisterRoutes(router gin.IRoutes) {
	router.GET("/api/tasks/types", tc.ListTaskTypes)
	router.GET("/api/tasks/:id", tc.GetTaskStatus)
	router.POST("/api/tasks/:type/run", tc.RunTask)
}

// TaskTypeInfo describes an available task type.
type TaskTypeInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Queue       string `json:"queue"`
}

// ListTaskTypes handles GET /api/tasks/types
// Returns the list of available task types that can be triggered.
func (tc *TasksController) ListTaskTypes(c *gin.Context) {
	types := []TaskTypeInfo{
		{
			Type:        tasks.PruneProfilesQueue,
			Description: "Delete device profiles not seen within the retention period",
			Queue:       tasks.PruneProfilesQueue,
		},
	}

	c.JSON(http.StatusOK, gin.H{
		"task_types": types,
	})
}

// GetTaskStatus handles GET /api/tasks/:id
// Returns the status of a specific task.
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		respondBadRequest(c, "task ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.queue.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": taskStatusToString(status),
	})
}

// RunTaskRequest is the request body for running a task.
type RunTaskRequest struct {
	// Retention overrides the default profile retention, e.g. "72h".
	Retention string `json:"retention,omitempty" form:"retention"`
}

// RunTask handles POST /api/tasks/:type/run
// Manually triggers a task of the specified type.
func (tc *TasksController) RunTask(c *gin.Context) {
	taskType := c.Param("type")

	var req RunTaskRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBind(&req); err != nil {
			respondBadRequest(c, "invalid request body")
			return
		}
	}

	switch taskType {
	case tasks.PruneProfilesQueue:
		retention := tc.retention
		if req.Retention != "" {
			d, err := time.ParseDuration(req.Retention)
			if err != nil || d <= 0 {
				respondBadRequest(c, "retention must be a positive duration")
				return
			}
			retention = d
		}

		id, err := tc.queue.EnqueuePruneProfiles(retention)
		if err != nil {
			respondInternalError(c, err, "enqueue "+taskType)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{
			"success": true,
			"task_id": id,
			"type":    taskType,
			"message": "task enqueued",
		})

	default:
		respondBadRequest(c, fmt.Sprintf("unknown task type: %s", taskType))
	}
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
