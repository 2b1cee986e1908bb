package domain

// LabResult 对应 lab_result 表.
// Metadata describing one kind of laboratory test. EnglishName is an
// overlay from a second source file and may be empty.
type LabResult struct {
	LabResultID string `db:"lab_result_id"`       // TEXT, PRIMARY KEY
	GroupID     string `db:"lab_result_group_id"` // TEXT, NOT NULL, FK to lab_result_group
	PatientID   string `db:"patient_id"`          // TEXT, NOT NULL, FK to patient
	ResultName  string `db:"result_name"`         // TEXT, NOT NULL - native-language name
	Unit        string `db:"unit"`                // TEXT, nullable
	EnglishName string `db:"result_name_english"` // TEXT, nullable
}

// DisplayName returns the English name when present, otherwise the
// native name. Never empty as long as ResultName is set.
func (r LabResult) DisplayName() string {
	if r.EnglishName != "" {
		return r.EnglishName
	}
	return r.ResultName
}
