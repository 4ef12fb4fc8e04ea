package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TasksRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewTasksRepo(pool *pgxpool.Pool, prom *observability.Prom) *TasksRepo {
	return &TasksRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *TasksRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
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

	err := r.observe("tasks.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO tasks(id, title, description, status, user_id, created_at, updated_at) VALUES($1,$2,$3,$4,$5,$6,$7)`,
			t.ID, t.Title, t.Description, t.Status, t.UserID, t.CreatedAt, t.UpdatedAt)
		return err
	})

	if err != nil {
		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) ListByUser(ctx context.Context, userID string) ([]task.Task, error) {
	var rows pgx.Rows

	err := r.observe("tasks.list_by_user", func() error {
		var err error
		// stable ordering so clients see a consistent list
		rows, err = r.pool.Query(ctx,
			`SELECT id, title, description, status, user_id, created_at, updated_at
			FROM tasks
			WHERE user_id = $1
			ORDER BY created_at ASC, id ASC`,
			userID)
		return err
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	output := make([]task.Task, 0)

	for rows.Next() {
		var t task.Task

		err = rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.UserID, &t.CreatedAt, &t.UpdatedAt)

		if err != nil {
			return nil, err
		}

		output = append(output, t)
	}

	err = rows.Err()

	if err != nil {
		return nil, err
	}

	return output, nil
}

func (r *TasksRepo) GetByID(ctx context.Context, id, userID string) (task.Task, error) {
	var t task.Task

	err := r.observe("tasks.get_by_id", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, title, description, status, user_id, created_at, updated_at
			FROM tasks
			WHERE id = $1 AND user_id = $2`,
			id, userID).Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.UserID, &t.CreatedAt, &t.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}

	return t, nil
}

// Update overwrites title and description; status only when supplied.
func (r *TasksRepo) Update(ctx context.Context, id, userID string, req task.UpdateTaskRequest) (task.Task, error) {
	var t task.Task

	err := r.observe("tasks.update", func() error {
		return r.pool.QueryRow(
			ctx,
			`UPDATE tasks
				SET title = $3,
						description = $4,
						status = COALESCE($5, status),
						updated_at = NOW()
			WHERE id = $1 AND user_id = $2
			RETURNING id, title, description, status, user_id, created_at, updated_at`,
			id,
			userID,
			req.Title,
			req.Description,
			req.Status,
		).Scan(
			&t.ID,
			&t.Title,
			&t.Description,
			&t.Status,
			&t.UserID,
			&t.CreatedAt,
			&t.UpdatedAt,
		)
	})

	if err != nil {
		// if there are no rows matching the id within the user scope
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) UpdateStatus(ctx context.Context, id, userID string, status task.Status) (task.Task, error) {
	var t task.Task

	err := r.observe("tasks.update_status", func() error {
		return r.pool.QueryRow(
			ctx,
			`UPDATE tasks
				SET status = $3,
						updated_at = NOW()
			WHERE id = $1 AND user_id = $2
			RETURNING id, title, description, status, user_id, created_at, updated_at`,
			id, userID, status,
		).Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.UserID, &t.CreatedAt, &t.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) ExistsByIDAndUser(ctx context.Context, id, userID string) (bool, error) {
	var exists bool

	err := r.observe("tasks.exists_by_id_and_user", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM tasks WHERE id = $1 AND user_id = $2)`, id, userID).Scan(&exists)
	})

	return exists, err
}

// Delete is best-effort: zero rows affected is not an error here. The
// existence check runs before this call; a concurrent delete winning the
// race is fine.
func (r *TasksRepo) Delete(ctx context.Context, id, userID string) error {
	return r.observe("tasks.delete", func() error {
		_, err := r.pool.Exec(ctx, `
			DELETE FROM tasks WHERE id = $1 AND user_id = $2
		`, id, userID)

		return err
	})
}
