package task

import (
	"errors"
	"time"
)

// Status is the task lifecycle state. All transitions between the three
// values are allowed; COMPLETED is not terminal.
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status"`
	UserID      string    `json:"-"` // ownership is never part of the response body
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("task not found")

type CreateTaskRequest struct {
	Title       string  `json:"title" binding:"required,max=100"`
	Description string  `json:"description" binding:"omitempty,max=500"`
	Status      *Status `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS COMPLETED"`
}

// UpdateTaskRequest overwrites title and description unconditionally;
// status only when supplied.
type UpdateTaskRequest struct {
	Title       string  `json:"title" binding:"required,max=100"`
	Description string  `json:"description" binding:"omitempty,max=500"`
	Status      *Status `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS COMPLETED"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required,oneof=TODO IN_PROGRESS COMPLETED"`
}
