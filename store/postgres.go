package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"tasklist-api/models"
)

// PostgresTaskStore implements TaskStore on a pgx pool.
type PostgresTaskStore struct {
	pool *pgxpool.Pool
}

func NewPostgresTaskStore(pool *pgxpool.Pool) *PostgresTaskStore {
	return &PostgresTaskStore{pool: pool}
}

func (s *PostgresTaskStore) List(ctx context.Context, userID uuid.UUID, filter TaskFilter) ([]models.Task, error) {
	query := `SELECT id, user_id, text, completed, image_url, created_at, updated_at
	          FROM tasks
	          WHERE user_id = $1`
	switch filter {
	case FilterActive:
		query += ` AND completed = false`
	case FilterCompleted:
		query += ` AND completed = true`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Text, &t.Completed, &t.ImageURL, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *PostgresTaskStore) Insert(ctx context.Context, task *models.Task) error {
	return s.pool.QueryRow(ctx,
		`INSERT INTO tasks (user_id, text, completed, image_url)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		task.UserID, task.Text, task.Completed, task.ImageURL,
	).Scan(&task.ID, &task.CreatedAt)
}

// InsertMany writes all rows with a single COPY statement, so the batch
// is atomic: either every task is inserted or none are.
func (s *PostgresTaskStore) InsertMany(ctx context.Context, tasks []models.Task) (int64, error) {
	rows := make([][]any, 0, len(tasks))
	now := time.Now().UTC()
	for _, t := range tasks {
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		rows = append(rows, []any{t.ID, t.UserID, t.Text, t.Completed, t.ImageURL, t.CreatedAt})
	}

	return s.pool.CopyFrom(ctx,
		pgx.Identifier{"tasks"},
		[]string{"id", "user_id", "text", "completed", "image_url", "created_at"},
		pgx.CopyFromRows(rows),
	)
}

func (s *PostgresTaskStore) Update(ctx context.Context, userID, id uuid.UUID, patch TaskPatch) (models.Task, error) {
	var t models.Task
	err := s.pool.QueryRow(ctx,
		`UPDATE tasks
		 SET text = COALESCE($1, text), completed = COALESCE($2, completed), updated_at = now()
		 WHERE id = $3 AND user_id = $4
		 RETURNING id, user_id, text, completed, image_url, created_at, updated_at`,
		patch.Text, patch.Completed, id, userID,
	).Scan(&t.ID, &t.UserID, &t.Text, &t.Completed, &t.ImageURL, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Task{}, ErrNotFound
	}
	return t, err
}

func (s *PostgresTaskStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresTaskStore) DeleteCompleted(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM tasks WHERE user_id = $1 AND completed = true`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// PostgresUserStore implements UserStore on a pgx pool.
type PostgresUserStore struct {
	pool *pgxpool.Pool
}

func NewPostgresUserStore(pool *pgxpool.Pool) *PostgresUserStore {
	return &PostgresUserStore{pool: pool}
}

func (s *PostgresUserStore) Insert(ctx context.Context, u *models.User) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, password, verified)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		u.Name, u.Email, u.Password, u.Verified,
	).Scan(&u.ID, &u.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateEmail
	}
	return err
}

func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.get(ctx,
		`SELECT id, name, email, password, verified, created_at FROM users WHERE email = $1`, email)
}

func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.get(ctx,
		`SELECT id, name, email, password, verified, created_at FROM users WHERE id = $1`, id)
}

func (s *PostgresUserStore) get(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx, query, arg).
		Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Verified, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresUserStore) SetVerified(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET verified = true WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
