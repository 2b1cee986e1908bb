package domain

// Patient 对应 patient 表。
// In this deployment exactly one patient exists; the ID is still carried
// explicitly so multi-patient support stays an additive change.
type Patient struct {
	PatientID string `db:"patient_id"` // TEXT, PRIMARY KEY
	Name      string `db:"name"`       // TEXT, NOT NULL
}
