package domain

// ResultGroup 对应 lab_result_group 表.
// Static taxonomy bucket for organizing lab result definitions.
type ResultGroup struct {
	GroupID   string `db:"lab_result_group_id"` // TEXT, PRIMARY KEY
	GroupName string `db:"group_name"`          // TEXT, NOT NULL
}
