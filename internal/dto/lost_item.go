package dto

// LostItemInput is the multipart form body for creating or updating a lost ID.
// FoundDate uses YYYY-MM-DD.
type LostItemInput struct {
	StudentID     string  `form:"student_id" validate:"required,max=32"`
	StudentName   string  `form:"student_name" validate:"required,max=200"`
	IDType        string  `form:"id_type" validate:"required,oneof=student_id government_issued other"`
	FoundDate     string  `form:"found_date" validate:"required,datetime=2006-01-02"`
	FoundLocation string  `form:"found_location" validate:"required,max=255"`
	Description   *string `form:"description" validate:"omitempty,max=2000"`
}

// ImageUpload is a raw image received alongside LostItemInput.
type ImageUpload struct {
	Filename string
	Data     []byte
}
