package models

import "time"

// Student is a registered account allowed to browse and claim lost IDs.
// StudentNumber is the campus-issued number, ID the internal key used as claimant id.
type Student struct {
	ID            string    `db:"id" json:"id"`
	StudentNumber string    `db:"student_id" json:"student_id"`
	FirstName     string    `db:"first_name" json:"first_name"`
	LastName      string    `db:"last_name" json:"last_name"`
	Email         string    `db:"email" json:"email"`
	Phone         string    `db:"phone" json:"phone"`
	PasswordHash  string    `db:"password_hash" json:"-"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}
