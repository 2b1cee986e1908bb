package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"jdm-dashboard/internal/domain"
)

// SqliteScoresRepository ScoresRepository 实现 (embedded SQLite).
type SqliteScoresRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSqliteScoresRepository(db *sql.DB, logger *zap.Logger) *SqliteScoresRepository {
	return &SqliteScoresRepository{db: db, logger: logger}
}

var _ ScoresRepository = (*SqliteScoresRepository)(nil)

const scoreColumns = "id, date, category, value, patient_id"

func scanScore(scanner interface{ Scan(...any) error }) (domain.ScoreEntry, error) {
	var e domain.ScoreEntry
	var dateStr string
	if err := scanner.Scan(&e.ID, &dateStr, &e.Category, &e.Value, &e.PatientID); err != nil {
		return e, err
	}
	date, err := parseDate(dateStr)
	if err != nil {
		return e, err
	}
	e.Date = date
	return e, nil
}

func (r *SqliteScoresRepository) queryScores(ctx context.Context, query string, args ...any) ([]domain.ScoreEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query score entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.ScoreEntry
	for rows.Next() {
		e, err := scanScore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan score entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *SqliteScoresRepository) GetAll(ctx context.Context) ([]domain.ScoreEntry, error) {
	return r.queryScores(ctx,
		`SELECT `+scoreColumns+` FROM cmas ORDER BY patient_id, date`)
}

func (r *SqliteScoresRepository) GetAllForPatient(ctx context.Context, patientID string) ([]domain.ScoreEntry, error) {
	return r.queryScores(ctx,
		`SELECT `+scoreColumns+` FROM cmas WHERE patient_id = ? ORDER BY date`, patientID)
}

func (r *SqliteScoresRepository) GetByID(ctx context.Context, id int64) (*domain.ScoreEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+scoreColumns+` FROM cmas WHERE id = ?`, id)
	e, err := scanScore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query score entry %d: %w", id, err)
	}
	return &e, nil
}

func (r *SqliteScoresRepository) GetByCategory(ctx context.Context, patientID, category string) ([]domain.ScoreEntry, error) {
	return r.queryScores(ctx,
		`SELECT `+scoreColumns+` FROM cmas WHERE patient_id = ? AND category = ? ORDER BY date`,
		patientID, category)
}

func (r *SqliteScoresRepository) GetGroupedByCategory(ctx context.Context, patientID string) (map[string][]domain.ScoreEntry, error) {
	entries, err := r.queryScores(ctx,
		`SELECT `+scoreColumns+` FROM cmas WHERE patient_id = ? ORDER BY category, date`, patientID)
	if err != nil {
		return nil, err
	}
	return groupByCategory(entries), nil
}

func (r *SqliteScoresRepository) GetAllGroupedByCategory(ctx context.Context) (map[string][]domain.ScoreEntry, error) {
	entries, err := r.queryScores(ctx,
		`SELECT `+scoreColumns+` FROM cmas ORDER BY category, date`)
	if err != nil {
		return nil, err
	}
	return groupByCategory(entries), nil
}

func groupByCategory(entries []domain.ScoreEntry) map[string][]domain.ScoreEntry {
	grouped := make(map[string][]domain.ScoreEntry)
	for _, e := range entries {
		grouped[e.Category] = append(grouped[e.Category], e)
	}
	return grouped
}

func (r *SqliteScoresRepository) GetTrendsByMonth(ctx context.Context, patientID, category string) ([]MonthAverage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT strftime('%Y-%m', date) AS month, AVG(value) AS avg_value
		 FROM cmas WHERE patient_id = ? AND category = ?
		 GROUP BY strftime('%Y-%m', date) ORDER BY month`,
		patientID, category)
	if err != nil {
		return nil, fmt.Errorf("query score trends: %w", err)
	}
	defer rows.Close()

	var trends []MonthAverage
	for rows.Next() {
		var t MonthAverage
		if err := rows.Scan(&t.Month, &t.Average); err != nil {
			return nil, fmt.Errorf("scan trend row: %w", err)
		}
		trends = append(trends, t)
	}
	return trends, rows.Err()
}

func (r *SqliteScoresRepository) GetStatistics(ctx context.Context, patientID, category string) (ScoreStatistics, bool, error) {
	var stats ScoreStatistics
	var minV, maxV sql.NullInt64
	var avgV sql.NullFloat64
	err := r.db.QueryRowContext(ctx,
		`SELECT MIN(value), MAX(value), AVG(value)
		 FROM cmas WHERE patient_id = ? AND category = ?`,
		patientID, category).Scan(&minV, &maxV, &avgV)
	if err != nil {
		return stats, false, fmt.Errorf("query score statistics: %w", err)
	}
	// Aggregates over zero rows come back NULL.
	if !minV.Valid {
		return stats, false, nil
	}
	stats.Min = int(minV.Int64)
	stats.Max = int(maxV.Int64)
	stats.Average = avgV.Float64
	return stats, true, nil
}

func (r *SqliteScoresRepository) Insert(ctx context.Context, entry domain.ScoreEntry) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO cmas (date, category, value, patient_id) VALUES (?, ?, ?, ?)`,
		formatDate(entry.Date), entry.Category, entry.Value, entry.PatientID)
	if err != nil {
		return 0, fmt.Errorf("insert score entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("score entry id: %w", err)
	}
	return id, nil
}

func (r *SqliteScoresRepository) InsertBatch(ctx context.Context, tx *sql.Tx, entries []domain.ScoreEntry) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO cmas (date, category, value, patient_id) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare score batch: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, formatDate(e.Date), e.Category, e.Value, e.PatientID); err != nil {
			return fmt.Errorf("insert score entry for %s: %w", formatDate(e.Date), err)
		}
	}
	return nil
}

func (r *SqliteScoresRepository) Update(ctx context.Context, entry domain.ScoreEntry) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE cmas SET date = ?, category = ?, value = ?, patient_id = ? WHERE id = ?`,
		formatDate(entry.Date), entry.Category, entry.Value, entry.PatientID, entry.ID)
	if err != nil {
		return fmt.Errorf("update score entry %d: %w", entry.ID, err)
	}
	return nil
}

func (r *SqliteScoresRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cmas WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete score entry %d: %w", id, err)
	}
	return nil
}
