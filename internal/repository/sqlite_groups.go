package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"jdm-dashboard/internal/domain"
)

// SqliteGroupsRepository GroupsRepository 实现 (embedded SQLite).
type SqliteGroupsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSqliteGroupsRepository(db *sql.DB, logger *zap.Logger) *SqliteGroupsRepository {
	return &SqliteGroupsRepository{db: db, logger: logger}
}

var _ GroupsRepository = (*SqliteGroupsRepository)(nil)

func (r *SqliteGroupsRepository) GetAll(ctx context.Context) ([]domain.ResultGroup, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT lab_result_group_id, group_name FROM lab_result_group ORDER BY group_name`)
	if err != nil {
		return nil, fmt.Errorf("query result groups: %w", err)
	}
	defer rows.Close()

	var groups []domain.ResultGroup
	for rows.Next() {
		var g domain.ResultGroup
		if err := rows.Scan(&g.GroupID, &g.GroupName); err != nil {
			return nil, fmt.Errorf("scan result group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *SqliteGroupsRepository) GetByID(ctx context.Context, groupID string) (*domain.ResultGroup, error) {
	var g domain.ResultGroup
	err := r.db.QueryRowContext(ctx,
		`SELECT lab_result_group_id, group_name FROM lab_result_group WHERE lab_result_group_id = ?`,
		groupID).Scan(&g.GroupID, &g.GroupName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query result group %s: %w", groupID, err)
	}
	return &g, nil
}

func (r *SqliteGroupsRepository) Insert(ctx context.Context, g domain.ResultGroup) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO lab_result_group (lab_result_group_id, group_name) VALUES (?, ?)`,
		g.GroupID, g.GroupName)
	if err != nil {
		return fmt.Errorf("insert result group %s: %w", g.GroupID, err)
	}
	return nil
}

func (r *SqliteGroupsRepository) InsertBatch(ctx context.Context, tx *sql.Tx, groups []domain.ResultGroup) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO lab_result_group (lab_result_group_id, group_name) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare group batch: %w", err)
	}
	defer stmt.Close()

	for _, g := range groups {
		if _, err := stmt.ExecContext(ctx, g.GroupID, g.GroupName); err != nil {
			return fmt.Errorf("insert result group %s: %w", g.GroupID, err)
		}
	}
	return nil
}

func (r *SqliteGroupsRepository) Update(ctx context.Context, g domain.ResultGroup) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE lab_result_group SET group_name = ? WHERE lab_result_group_id = ?`,
		g.GroupName, g.GroupID)
	if err != nil {
		return fmt.Errorf("update result group %s: %w", g.GroupID, err)
	}
	return nil
}

func (r *SqliteGroupsRepository) Delete(ctx context.Context, groupID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM lab_result_group WHERE lab_result_group_id = ?`, groupID)
	if err != nil {
		return fmt.Errorf("delete result group %s: %w", groupID, err)
	}
	return nil
}
