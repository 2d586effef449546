package assessment

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("assessment not found")
	// ErrConflict is returned by Update when the stored version moved on.
	ErrConflict = errors.New("assessment was modified concurrently")
)

// Repository stores assessment records. Update succeeds only when r.Version matches
// the stored version and increments it on success.
type Repository interface {
	Create(ctx context.Context, r *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	Update(ctx context.Context, r *Record) error
	List(ctx context.Context, limit, offset int) ([]*Record, int, error)
	ListBySubject(ctx context.Context, subjectID string, limit, offset int) ([]*Record, int, error)
}
