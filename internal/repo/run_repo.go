package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/camunda-demo/internal/domain"
)

// DefaultListLimit — сколько runs возвращает List без явного лимита.
const DefaultListLimit = 20

// RunRepo — журнал demo runs.
type RunRepo struct {
	pool *pgxpool.Pool
}

// NewRunRepo создаёт новый RunRepo.
func NewRunRepo(pool *pgxpool.Pool) *RunRepo {
	return &RunRepo{pool: pool}
}

const runColumns = `id, process_id, instance_key, user_task_key, job_completed,
	final_state, status, error, started_at, finished_at`

// Create записывает новый run.
func (r *RunRepo) Create(ctx context.Context, run *domain.Run) error {
	query := `
		INSERT INTO demo_runs (` + runColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		run.ID,
		run.ProcessID,
		nullKey(run.InstanceKey),
		nullKey(run.UserTaskKey),
		run.JobCompleted,
		nullString(string(run.FinalState)),
		string(run.Status),
		nullString(run.Error),
		run.StartedAt,
		run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Update перезаписывает изменяемые поля run.
func (r *RunRepo) Update(ctx context.Context, run *domain.Run) error {
	query := `
		UPDATE demo_runs
		SET instance_key = $2, user_task_key = $3, job_completed = $4,
		    final_state = $5, status = $6, error = $7, finished_at = $8
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		run.ID,
		nullKey(run.InstanceKey),
		nullKey(run.UserTaskKey),
		run.JobCompleted,
		nullString(string(run.FinalState)),
		string(run.Status),
		nullString(run.Error),
		run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID возвращает run по ID.
func (r *RunRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	query := `SELECT ` + runColumns + ` FROM demo_runs WHERE id = $1`

	run, err := scanRun(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return run, err
}

// List возвращает последние runs, новые первыми.
func (r *RunRepo) List(ctx context.Context, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `SELECT ` + runColumns + ` FROM demo_runs ORDER BY started_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// --- Helpers ---

// scanRun сканирует строку (pgx.Row или pgx.Rows) в Run.
func scanRun(row pgx.Row) (*domain.Run, error) {
	var (
		run         domain.Run
		instanceKey *int64
		userTaskKey *int64
		finalState  *string
		status      string
		runError    *string
	)

	err := row.Scan(
		&run.ID,
		&run.ProcessID,
		&instanceKey,
		&userTaskKey,
		&run.JobCompleted,
		&finalState,
		&status,
		&runError,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}

	if instanceKey != nil {
		run.InstanceKey = domain.Key(*instanceKey)
	}
	if userTaskKey != nil {
		run.UserTaskKey = domain.Key(*userTaskKey)
	}
	if finalState != nil {
		run.FinalState = domain.InstanceState(*finalState)
	}
	if runError != nil {
		run.Error = *runError
	}
	run.Status = domain.RunStatus(status)

	return &run, nil
}

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// nullKey возвращает nil для нулевого ключа.
func nullKey(k domain.Key) *int64 {
	if k.IsZero() {
		return nil
	}
	v := int64(k)
	return &v
}
