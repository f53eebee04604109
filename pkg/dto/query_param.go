package dto

type Filter struct {
	StudentID string `query:"student_id"`
	Status    string `query:"status"`
	Limit     int    `query:"limit"`
	Page      int    `query:"page"`
}
