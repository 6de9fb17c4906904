package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/alama/core"
)

// Course belongs to exactly one university and has exactly one lecturer of
// record.
type Course struct {
	ID           int       `json:"id"`
	UniversityID int       `json:"university_id"`
	LecturerID   int       `json:"lecturer_id"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

// Enrollment ties a student to a course; unique per
// (course, user, university).
type Enrollment struct {
	ID           int       `json:"id"`
	CourseID     int       `json:"course_id"`
	UserID       int       `json:"user_id"`
	UniversityID int       `json:"university_id"`
	CreatedAt    time.Time `json:"created_at"` // UTC
}

// Lecturer is the public profile of a course's lecturer.
type Lecturer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// StudentCourse is one entry of a student's course list.
type StudentCourse struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Lecturer Lecturer `json:"lecturer"`
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Name       string `json:"name" validate:"required"`
	LecturerID int    `json:"lecturer_id" validate:"required"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

// NewEnrollment contains information needed to enroll a student.
type NewEnrollment struct {
	StudentID int `json:"student_id" validate:"required"`
}

func (ne *NewEnrollment) Validate(validate *validator.Validate) error {
	return validate.Struct(ne)
}
