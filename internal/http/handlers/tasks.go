package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type TaskStore interface {
	Create(ctx context.Context, userID string, req task.CreateTaskRequest) (task.Task, error)
	ListByUser(ctx context.Context, userID string) ([]task.Task, error)
	GetByID(ctx context.Context, id, userID string) (task.Task, error)
	Update(ctx context.Context, id, userID string, req task.UpdateTaskRequest) (task.Task, error)
	UpdateStatus(ctx context.Context, id, userID string, status task.Status) (task.Task, error)
	ExistsByIDAndUser(ctx context.Context, id, userID string) (bool, error)
	Delete(ctx context.Context, id, userID string) error
}

type TasksHandler struct {
	store TaskStore
}

func NewTasksHandler(store TaskStore) *TasksHandler {
	return &TasksHandler{store: store}
}

// principal pulls the authenticated user id off the request. The scoping id
// is never taken from client input.
func principal(ctx *gin.Context) (string, bool) {
	u, ok := middlewares.PrincipalFromContext(ctx)

	if !ok || u.ID == "" {
		RespondUnauthorized(ctx, "Missing identity context")
		return "", false
	}

	return u.ID, true
}

func storeCtx(ctx *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request.Context(), 3*time.Second)
}

func (h *TasksHandler) ListTasks(ctx *gin.Context) {
	userID, ok := principal(ctx)
	if !ok {
		return
	}

	cctx, cancel := storeCtx(ctx)
	defer cancel()

	tasks, err := h.store.ListByUser(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not list tasks")
		return
	}

	ctx.JSON(http.StatusOK, tasks)
}

func (h *TasksHandler) GetTaskByID(ctx *gin.Context) {
	userID, ok := principal(ctx)
	if !ok {
		return
	}

	cctx, cancel := storeCtx(ctx)
	defer cancel()

	t, err := h.store.GetByID(cctx, ctx.Param("id"), userID)

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			RespondNotFound(ctx, "Task not found")
			return
		}
		RespondInternal(ctx, "Could not fetch task")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, t)
}

func (h *TasksHandler) CreateTask(ctx *gin.Context) {
	userID, ok := principal(ctx)
	if !ok {
		return
	}

	var req task.CreateTaskRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := storeCtx(ctx)
	defer cancel()

	t, err := h.store.Create(cctx, userID, req)

	if err != nil {
		RespondInternal(ctx, "Could not create task")
		return
	}

	ctx.JSON(http.StatusCreated, t)
}

func (h *TasksHandler) UpdateTask(ctx *gin.Context) {
	userID, ok := principal(ctx)
	if !ok {
		return
	}

	var req task.UpdateTaskRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := storeCtx(ctx)
	defer cancel()

	t, err := h.store.Update(cctx, ctx.Param("id"), userID, req)

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			RespondNotFound(ctx, "Task not found")
			return
		}
		RespondInternal(ctx, "Could not update task")
		return
	}

	ctx.JSON(http.StatusOK, t)
}

func (h *TasksHandler) UpdateTaskStatus(ctx *gin.Context) {
	userID, ok := principal(ctx)
	if !ok {
		return
	}

	var req task.UpdateStatusRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := storeCtx(ctx)
	defer cancel()

	t, err := h.store.UpdateStatus(cctx, ctx.Param("id"), userID, req.Status)

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			RespondNotFound(ctx, "Task not found")
			return
		}
		RespondInternal(ctx, "Could not update task status")
		return
	}

	ctx.JSON(http.StatusOK, t)
}

// MarkTaskCompleted forces COMPLETED from any state. Idempotent on state;
// every call still bumps updatedAt and succeeds.
func (h *TasksHandler) MarkTaskCompleted(ctx *gin.Context) {
	userID, ok := principal(ctx)
	if !ok {
		return
	}

	cctx, cancel := storeCtx(ctx)
	defer cancel()

	t, err := h.store.UpdateStatus(cctx, ctx.Param("id"), userID, task.StatusCompleted)

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			RespondNotFound(ctx, "Task not found")
			return
		}
		RespondInternal(ctx, "Could not complete task")
		return
	}

	ctx.JSON(http.StatusOK, t)
}

func (h *TasksHandler) DeleteTask(ctx *gin.Context) {
	userID, ok := principal(ctx)
	if !ok {
		return
	}

	cctx, cancel := storeCtx(ctx)
	defer cancel()

	exists, err := h.store.ExistsByIDAndUser(cctx, ctx.Param("id"), userID)

	if err != nil {
		RespondInternal(ctx, "Could not delete task")
		return
	}

	if !exists {
		RespondNotFound(ctx, "Task not found")
		return
	}

	// losing a concurrent-delete race here is fine, the row is gone either way
	err = h.store.Delete(cctx, ctx.Param("id"), userID)

	if err != nil {
		RespondInternal(ctx, "Could not delete task")
		return
	}

	ctx.Status(http.StatusNoContent)
}
