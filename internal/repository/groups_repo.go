package repository

import (
	"context"
	"database/sql"

	"jdm-dashboard/internal/domain"
)

// GroupsRepository data access for lab result groups.
type GroupsRepository interface {
	GetAll(ctx context.Context) ([]domain.ResultGroup, error)

	// GetByID returns (nil, nil) when the group does not exist.
	GetByID(ctx context.Context, groupID string) (*domain.ResultGroup, error)

	Insert(ctx context.Context, g domain.ResultGroup) error
	InsertBatch(ctx context.Context, tx *sql.Tx, groups []domain.ResultGroup) error
	Update(ctx context.Context, g domain.ResultGroup) error
	Delete(ctx context.Context, groupID string) error
}
