package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/google/uuid"
)

type TasksRepo struct {
	mu    sync.RWMutex
	items map[string]task.Task
}

func NewTasksRepo() *TasksRepo {
	return &TasksRepo{
		items: make(map[string]task.Task),
	}
}

func (r *TasksRepo) Create(ctx context.Context, userID string, req task.CreateTaskRequest) (task.Task, error) {
	now := time.Now().UTC()

	status := task.StatusTodo
	if req.Status != nil {
		status = *req.Status
	}

	t := task.Task{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	r.mu.Lock()
	r.items[t.ID] = t
	r.mu.Unlock()

	return t, nil
}

func (r *TasksRepo) ListByUser(ctx context.Context, userID string) ([]task.Task, error) {
	r.mu.RLock()

	output := make([]task.Task, 0)

	for _, t := range r.items {
		if t.UserID == userID {
			output = append(output, t)
		}
	}

	r.mu.RUnlock()

	// same ordering contract as the SQL repo
	sort.Slice(output, func(i, j int) bool {
		if output[i].CreatedAt.Equal(output[j].CreatedAt) {
			return output[i].ID < output[j].ID
		}
		return output[i].CreatedAt.Before(output[j].CreatedAt)
	})

	return output, nil
}

func (r *TasksRepo) GetByID(ctx context.Context, id, userID string) (task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[id]

	if !ok || t.UserID != userID {
		return task.Task{}, task.ErrNotFound
	}

	return t, nil
}

func (r *TasksRepo) Update(ctx context.Context, id, userID string, req task.UpdateTaskRequest) (task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]

	if !ok || t.UserID != userID {
		return task.Task{}, task.ErrNotFound
	}

	t.Title = req.Title
	t.Description = req.Description

	if req.Status != nil {
		t.Status = *req.Status
	}

	t.UpdatedAt = time.Now().UTC()
	r.items[id] = t

	return t, nil
}

func (r *TasksRepo) UpdateStatus(ctx context.Context, id, userID string, status task.Status) (task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]

	if !ok || t.UserID != userID {
		return task.Task{}, task.ErrNotFound
	}

	t.Status = status
	t.UpdatedAt = time.Now().UTC()
	r.items[id] = t

	return t, nil
}

func (r *TasksRepo) ExistsByIDAndUser(ctx context.Context, id, userID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[id]

	return ok && t.UserID == userID, nil
}

func (r *TasksRepo) Delete(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]

	if ok && t.UserID == userID {
		delete(r.items, id)
	}

	// deleting an already-gone row is not an error, the caller checked
	// existence first
	return nil
}
