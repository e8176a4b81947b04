package dto

// ExportRequest captures GET /admin/export/csv query parameters.
type ExportRequest struct {
	Type      string `form:"type" validate:"required,oneof=claims lost_ids"`
	StartDate string `form:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Format    string `form:"format" validate:"omitempty,oneof=csv pdf"`
}

// ExportFile is a rendered export ready to be streamed.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}
