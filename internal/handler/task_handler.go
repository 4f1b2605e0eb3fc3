package handler

import (
	"net/http"

	"buildflow/internal/middleware"
	"buildflow/internal/service"
	"buildflow/pkg/pagination"
	"buildflow/pkg/response"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	taskService service.TaskService
}

// NewTaskHandler sets up the routing dependencies for task endpoints
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *TaskHandler) RegisterRoutes(router *gin.RouterGroup) {
	tasks := router.Group("/tasks", middleware.RequireAuth())
	{
		tasks.POST("", h.CreateTask)
		tasks.GET("", h.ListTasks)
		tasks.PUT("/:id", h.UpdateTask)
		tasks.DELETE("/:id", h.DeleteTask)
	}
}

// CreateTask handles POST /tasks
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateTaskRequest  true  "Create Task Payload"
// @Success      201      {object}  response.Response{data=service.TaskResponse}
// @Failure      400      {object}  response.Response
// @Router       /tasks [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req service.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), middleware.TenantID(c), middleware.UserID(c).String(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, task))
}

// ListTasks handles GET /tasks
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        project_id  query     string  false  "Filter by project"
// @Param        status      query     string  false  "Filter by status"
// @Param        page        query     int     false  "Page number"
// @Param        limit       query     int     false  "Page size"
// @Success      200         {object}  response.Response{data=[]service.TaskResponse}
// @Router       /tasks [get]
func (h *TaskHandler) ListTasks(c *gin.Context) {
	p := pagination.Parse(c)
	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), middleware.TenantID(c), c.Query("project_id"), c.Query("status"), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paged(http.StatusOK, tasks, p.Page, p.Limit, total))
}

// UpdateTask handles PUT /tasks/:id
// @Summary      Update a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Task ID"
// @Param        payload  body      service.UpdateTaskRequest  true  "Update Task Payload"
// @Success      200      {object}  response.Response{data=service.TaskResponse}
// @Failure      400      {object}  response.Response
// @Router       /tasks/{id} [put]
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	var req service.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), middleware.TenantID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, task))
}

// DeleteTask handles DELETE /tasks/:id
// @Summary      Delete a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	if err := h.taskService.DeleteTask(c.Request.Context(), middleware.TenantID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}
