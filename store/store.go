package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"tasklist-api/models"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

type TaskFilter string

const (
	FilterAll       TaskFilter = "all"
	FilterActive    TaskFilter = "active"
	FilterCompleted TaskFilter = "completed"
)

func ParseTaskFilter(s string) (TaskFilter, bool) {
	switch TaskFilter(s) {
	case FilterAll, FilterActive, FilterCompleted:
		return TaskFilter(s), true
	case "":
		return FilterAll, true
	}
	return "", false
}

// TaskPatch is a partial task update. Nil fields are left untouched.
type TaskPatch struct {
	Text      *string
	Completed *bool
}

// TaskStore persists tasks. Every operation is scoped to the owning
// user; a task id belonging to another user behaves as if it does not
// exist.
type TaskStore interface {
	List(ctx context.Context, userID uuid.UUID, filter TaskFilter) ([]models.Task, error)
	Insert(ctx context.Context, task *models.Task) error
	InsertMany(ctx context.Context, tasks []models.Task) (int64, error)
	Update(ctx context.Context, userID, id uuid.UUID, patch TaskPatch) (models.Task, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	DeleteCompleted(ctx context.Context, userID uuid.UUID) (int64, error)
}

type UserStore interface {
	Insert(ctx context.Context, u *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	SetVerified(ctx context.Context, id uuid.UUID) error
}
