package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/http/handlers"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

// Fake repository implementation of the handlers.TaskStore interface

type fakeTaskStore struct {
	createFn       func(ctx context.Context, userID string, req task.CreateTaskRequest) (task.Task, error)
	listFn         func(ctx context.Context, userID string) ([]task.Task, error)
	getFn          func(ctx context.Context, id, userID string) (task.Task, error)
	updateFn       func(ctx context.Context, id, userID string, req task.UpdateTaskRequest) (task.Task, error)
	updateStatusFn func(ctx context.Context, id, userID string, status task.Status) (task.Task, error)
	existsFn       func(ctx context.Context, id, userID string) (bool, error)
	deleteFn       func(ctx context.Context, id, userID string) error
}

func (f *fakeTaskStore) Create(ctx context.Context, userID string, req task.CreateTaskRequest) (task.Task, error) {
	if f.createFn != nil {
		return f.createFn(ctx, userID, req)
	}
	return task.Task{}, nil
}

func (f *fakeTaskStore) ListByUser(ctx context.Context, userID string) ([]task.Task, error) {
	if f.listFn != nil {
		return f.listFn(ctx, userID)
	}
	return []task.Task{}, nil
}

func (f *fakeTaskStore) GetByID(ctx context.Context, id, userID string) (task.Task, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id, userID)
	}
	return task.Task{}, nil
}

func (f *fakeTaskStore) Update(ctx context.Context, id, userID string, req task.UpdateTaskRequest) (task.Task, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, userID, req)
	}
	return task.Task{}, nil
}

func (f *fakeTaskStore) UpdateStatus(ctx context.Context, id, userID string, status task.Status) (task.Task, error) {
	if f.updateStatusFn != nil {
		return f.updateStatusFn(ctx, id, userID, status)
	}
	return task.Task{}, nil
}

func (f *fakeTaskStore) ExistsByIDAndUser(ctx context.Context, id, userID string) (bool, error) {
	if f.existsFn != nil {
		return f.existsFn(ctx, id, userID)
	}
	return false, nil
}

func (f *fakeTaskStore) Delete(ctx context.Context, id, userID string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id, userID)
	}
	return nil
}

// mounts one handler with a fixed principal already resolved

func setupTaskRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, func(c *gin.Context) {
		middlewares.SetPrincipal(c, user.User{ID: "u1", Username: "alice"})
	}, h)

	return r
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestCreateTaskHandler(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantTask   task.Status
	}{
		{
			name:       "defaults to TODO when status omitted",
			body:       `{"title":"T1"}`,
			wantStatus: http.StatusCreated,
			wantTask:   task.StatusTodo,
		},
		{
			name:       "explicit status is kept",
			body:       `{"title":"T1","status":"IN_PROGRESS"}`,
			wantStatus: http.StatusCreated,
			wantTask:   task.StatusInProgress,
		},
		{
			name:       "missing title is a validation failure",
			body:       `{"description":"no title"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown status enum is rejected",
			body:       `{"title":"T1","status":"DONE"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeTaskStore{
				createFn: func(ctx context.Context, userID string, req task.CreateTaskRequest) (task.Task, error) {
					status := task.StatusTodo
					if req.Status != nil {
						status = *req.Status
					}
					return task.Task{
						ID:        "t1",
						Title:     req.Title,
						Status:    status,
						UserID:    userID,
						CreatedAt: now,
						UpdatedAt: now,
					}, nil
				},
			}

			h := handlers.NewTasksHandler(store)
			r := setupTaskRouter(http.MethodPost, "/api/tasks", h.CreateTask)

			w := doJSON(r, http.MethodPost, "/api/tasks", tc.body)

			if w.Code != tc.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tc.wantStatus, w.Body.String())
			}

			if tc.wantStatus != http.StatusCreated {
				return
			}

			var got task.Task
			if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
				t.Fatalf("unmarshal response: %v", err)
			}
			if got.Status != tc.wantTask {
				t.Fatalf("status = %q, want %q", got.Status, tc.wantTask)
			}
		})
	}
}

func TestGetTaskByID_NotFoundForForeignTask(t *testing.T) {
	store := &fakeTaskStore{
		getFn: func(ctx context.Context, id, userID string) (task.Task, error) {
			// the store only surfaces rows scoped to the principal
			return task.Task{}, task.ErrNotFound
		},
	}

	h := handlers.NewTasksHandler(store)
	r := setupTaskRouter(http.MethodGet, "/api/tasks/:id", h.GetTaskByID)

	w := doJSON(r, http.MethodGet, "/api/tasks/t-owned-by-someone-else", "")

	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404, body=%s", w.Code, w.Body.String())
	}

	var errBody handlers.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &errBody); err != nil {
		t.Fatalf("unmarshal error body: %v", err)
	}
	if errBody.Status != http.StatusNotFound || errBody.Error != "Not Found" {
		t.Fatalf("unexpected error body: %+v", errBody)
	}
	if errBody.Path != "/api/tasks/t-owned-by-someone-else" {
		t.Fatalf("path = %q", errBody.Path)
	}
}

func TestUpdateTaskHandler_PassesStatusPointerThrough(t *testing.T) {
	var gotReq task.UpdateTaskRequest

	store := &fakeTaskStore{
		updateFn: func(ctx context.Context, id, userID string, req task.UpdateTaskRequest) (task.Task, error) {
			gotReq = req
			return task.Task{ID: id, Title: req.Title, Status: task.StatusTodo, UserID: userID}, nil
		},
	}

	h := handlers.NewTasksHandler(store)
	r := setupTaskRouter(http.MethodPut, "/api/tasks/:id", h.UpdateTask)

	// no status field: pointer stays nil so the store keeps the old value
	w := doJSON(r, http.MethodPut, "/api/tasks/t1", `{"title":"new title","description":"d"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
	}
	if gotReq.Status != nil {
		t.Fatalf("omitted status should bind to nil, got %v", *gotReq.Status)
	}

	w = doJSON(r, http.MethodPut, "/api/tasks/t1", `{"title":"new title","status":"COMPLETED"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
	}
	if gotReq.Status == nil || *gotReq.Status != task.StatusCompleted {
		t.Fatalf("supplied status should bind, got %v", gotReq.Status)
	}
}

func TestUpdateTaskStatusHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid transition", `{"status":"IN_PROGRESS"}`, http.StatusOK},
		{"reopen completed task", `{"status":"TODO"}`, http.StatusOK},
		{"invalid enum", `{"status":"ARCHIVED"}`, http.StatusBadRequest},
		{"missing status", `{}`, http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeTaskStore{
				updateStatusFn: func(ctx context.Context, id, userID string, status task.Status) (task.Task, error) {
					return task.Task{ID: id, Status: status, UserID: userID}, nil
				},
			}

			h := handlers.NewTasksHandler(store)
			r := setupTaskRouter(http.MethodPut, "/api/tasks/:id/status", h.UpdateTaskStatus)

			w := doJSON(r, http.MethodPut, "/api/tasks/t1/status", tc.body)

			if w.Code != tc.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tc.wantStatus, w.Body.String())
			}
		})
	}
}

func TestMarkTaskCompletedHandler(t *testing.T) {
	var forced task.Status

	store := &fakeTaskStore{
		updateStatusFn: func(ctx context.Context, id, userID string, status task.Status) (task.Task, error) {
			forced = status
			return task.Task{ID: id, Status: status, UserID: userID}, nil
		},
	}

	h := handlers.NewTasksHandler(store)
	r := setupTaskRouter(http.MethodPatch, "/api/tasks/:id/complete", h.MarkTaskCompleted)

	w := doJSON(r, http.MethodPatch, "/api/tasks/t1/complete", "")

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
	}
	if forced != task.StatusCompleted {
		t.Fatalf("complete should force COMPLETED, got %q", forced)
	}
}

func TestDeleteTaskHandler(t *testing.T) {
	t.Run("existing task deletes with 204 and no body", func(t *testing.T) {
		deleted := false

		store := &fakeTaskStore{
			existsFn: func(ctx context.Context, id, userID string) (bool, error) {
				return true, nil
			},
			deleteFn: func(ctx context.Context, id, userID string) error {
				deleted = true
				return nil
			},
		}

		h := handlers.NewTasksHandler(store)
		r := setupTaskRouter(http.MethodDelete, "/api/tasks/:id", h.DeleteTask)

		w := doJSON(r, http.MethodDelete, "/api/tasks/t1", "")

		if w.Code != http.StatusNoContent {
			t.Fatalf("got status %d, want 204, body=%s", w.Code, w.Body.String())
		}
		if w.Body.Len() != 0 {
			t.Fatalf("204 must have an empty body, got %q", w.Body.String())
		}
		if !deleted {
			t.Fatal("expected the store delete to run")
		}
	})

	t.Run("absent task is 404 before any delete", func(t *testing.T) {
		store := &fakeTaskStore{
			existsFn: func(ctx context.Context, id, userID string) (bool, error) {
				return false, nil
			},
			deleteFn: func(ctx context.Context, id, userID string) error {
				t.Fatal("delete must not run when the precondition fails")
				return nil
			},
		}

		h := handlers.NewTasksHandler(store)
		r := setupTaskRouter(http.MethodDelete, "/api/tasks/:id", h.DeleteTask)

		w := doJSON(r, http.MethodDelete, "/api/tasks/missing", "")

		if w.Code != http.StatusNotFound {
			t.Fatalf("got status %d, want 404, body=%s", w.Code, w.Body.String())
		}
	})
}

func TestListTasksHandler(t *testing.T) {
	store := &fakeTaskStore{
		listFn: func(ctx context.Context, userID string) ([]task.Task, error) {
			if userID != "u1" {
				t.Fatalf("list must be scoped to the principal, got %q", userID)
			}
			return []task.Task{
				{ID: "t1", Title: "first", Status: task.StatusTodo, UserID: userID},
				{ID: "t2", Title: "second", Status: task.StatusCompleted, UserID: userID},
			}, nil
		},
	}

	h := handlers.NewTasksHandler(store)
	r := setupTaskRouter(http.MethodGet, "/api/tasks", h.ListTasks)

	w := doJSON(r, http.MethodGet, "/api/tasks", "")

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
	}

	var listed []task.Task
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(listed) != 2 || listed[0].ID != "t1" || listed[1].ID != "t2" {
		t.Fatalf("unexpected list: %+v", listed)
	}
}

func TestTasksHandler_NoPrincipalIs401(t *testing.T) {
	h := handlers.NewTasksHandler(&fakeTaskStore{})

	r := gin.New()
	// no principal middleware mounted
	r.GET("/api/tasks", h.ListTasks)

	w := doJSON(r, http.MethodGet, "/api/tasks", "")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want 401, body=%s", w.Code, w.Body.String())
	}
}
