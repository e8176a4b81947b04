package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lostid-api/internal/models"
)

const studentColumns = `id, student_id, first_name, last_name, email, phone, password_hash, created_at, updated_at`

// StudentRepository manages persistence for student accounts.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByEmail returns a student by email, case-insensitively.
func (r *StudentRepository) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE LOWER(email) = LOWER($1) LIMIT 1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find student by email: %w", err)
	}
	return &student, nil
}

// FindByID returns a student by internal id.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find student by id: %w", err)
	}
	return &student, nil
}

// ExistsByNumberOrEmail reports whether either identifier is already registered.
func (r *StudentRepository) ExistsByNumberOrEmail(ctx context.Context, number, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM students WHERE student_id = $1 OR LOWER(email) = LOWER($2))`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, number, email); err != nil {
		return false, fmt.Errorf("check student exists: %w", err)
	}
	return exists, nil
}

// Create inserts a new student. A unique violation yields ErrDuplicate.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now

	const query = `INSERT INTO students (id, student_id, first_name, last_name, email, phone, password_hash, created_at, updated_at)
VALUES (:id, :student_id, :first_name, :last_name, :email, :phone, :password_hash, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		if translateUnique(err) == ErrDuplicate {
			return ErrDuplicate
		}
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}
