package models

import "time"

// LostItemStatus tracks where a found ID is in its recovery.
type LostItemStatus string

const (
	LostItemAvailable LostItemStatus = "available"
	LostItemClaimed   LostItemStatus = "claimed"
	LostItemReturned  LostItemStatus = "returned"
)

func (s LostItemStatus) Valid() bool {
	switch s {
	case LostItemAvailable, LostItemClaimed, LostItemReturned:
		return true
	}
	return false
}

// IDType classifies the found document.
type IDType string

const (
	IDTypeStudent    IDType = "student_id"
	IDTypeGovernment IDType = "government_issued"
	IDTypeOther      IDType = "other"
)

func (t IDType) Valid() bool {
	switch t {
	case IDTypeStudent, IDTypeGovernment, IDTypeOther:
		return true
	}
	return false
}

// LostItem is a found identification document registered by an admin (table lost_ids).
// StudentID and StudentName are the owner details printed on the document.
type LostItem struct {
	ID            string         `db:"id" json:"id"`
	StudentID     string         `db:"student_id" json:"student_id"`
	StudentName   string         `db:"student_name" json:"student_name"`
	IDType        IDType         `db:"id_type" json:"id_type"`
	FoundDate     time.Time      `db:"found_date" json:"found_date"`
	FoundLocation string         `db:"found_location" json:"found_location"`
	Description   *string        `db:"description" json:"description,omitempty"`
	ImageFilename *string        `db:"image_filename" json:"image_filename,omitempty"`
	ImagePath     *string        `db:"image_path" json:"-"`
	ImageURL      *string        `db:"image_url" json:"image_url,omitempty"`
	ImageSize     *int64         `db:"image_size" json:"image_size,omitempty"`
	ImageMimeType *string        `db:"image_mimetype" json:"image_mimetype,omitempty"`
	Status        LostItemStatus `db:"status" json:"status"`
	AddedBy       *string        `db:"added_by" json:"added_by,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// HasImage reports whether an image file is attached.
func (l *LostItem) HasImage() bool {
	return l.ImageFilename != nil && *l.ImageFilename != ""
}

// LostItemFilter captures list criteria for lost IDs.
type LostItemFilter struct {
	Status   *LostItemStatus
	IDType   *IDType
	Search   string
	Page     int
	PageSize int
}

// LostItemDetail is the admin view of an item with its claim history.
type LostItemDetail struct {
	LostItem
	AddedByName *string             `db:"added_by_name" json:"added_by_name,omitempty"`
	Claims      []ClaimHistoryEntry `db:"-" json:"claims"`
}

// LostItemSuggestion is one search-as-you-type hit.
type LostItemSuggestion struct {
	StudentName string `db:"student_name" json:"student_name"`
	StudentID   string `db:"student_id" json:"student_id"`
}

// IDTypeCount pairs an id type with a count.
type IDTypeCount struct {
	IDType IDType `db:"id_type" json:"id_type"`
	Count  int    `db:"count" json:"count"`
}
