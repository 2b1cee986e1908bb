package domain

import "time"

// ScoreEntry 对应 cmas 表 (CMAS disease-activity scores).
// Multiple entries may share a date across different categories.
type ScoreEntry struct {
	ID        int64     `db:"id"`         // INTEGER, PRIMARY KEY AUTOINCREMENT
	Date      time.Time `db:"date"`       // TEXT (ISO date), NOT NULL
	Category  string    `db:"category"`   // TEXT, NOT NULL - banded score name
	Value     int       `db:"value"`      // INTEGER, NOT NULL
	PatientID string    `db:"patient_id"` // TEXT, NOT NULL, FK to patient
}
