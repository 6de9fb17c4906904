package grading

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/alama/core"
)

// NoteSchema is one named, weighted gradeable component of a course.
// Type is a free-form category ("final", "exam", "homework", ...); names
// need not be unique within a course.
type NoteSchema struct {
	ID           int       `json:"id"`
	UserID       int       `json:"user_id"` // creating lecturer
	CourseID     int       `json:"course_id"`
	UniversityID int       `json:"university_id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Weight       float64   `json:"weight"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

// NoteData is a student's recorded score for one schema; at most one row
// per (schema, student) — upserted, never appended.
type NoteData struct {
	SchemaID  int     `json:"schema_id"`
	StudentID int     `json:"student_id"`
	Note      float64 `json:"note"`
}

// AggregatedNote joins a schema with a student's recorded value; Note is
// nil while no NoteData row exists. Derived, never persisted.
type AggregatedNote struct {
	ID     int      `json:"id"`
	Name   string   `json:"name"`
	Type   string   `json:"type"`
	Weight float64  `json:"weight"`
	Note   *float64 `json:"note"`
}

// GradeResult is a student's full per-course report. FinalGrade and
// Passed are nil when the formula was not evaluated.
type GradeResult struct {
	CourseID   int              `json:"course_id"`
	Notes      []AggregatedNote `json:"notes"`
	FinalGrade *float64         `json:"final_grade"`
	Passed     *bool            `json:"passed"`
}

// StatusResult is the strict pass/fail view: Passed stays nil unless every
// component has a recorded note.
type StatusResult struct {
	CourseID int   `json:"course_id"`
	Passed   *bool `json:"passed"`
}

// NewNoteSchema contains information needed to create a new NoteSchema.
type NewNoteSchema struct {
	Name   string  `json:"name" validate:"required"`
	Type   string  `json:"type" validate:"required"`
	Weight float64 `json:"weight" validate:"gte=0"`
}

func (ns *NewNoteSchema) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Type = core.CleanString(ns.Type, true /* lower */)
	return validate.Struct(ns)
}

// UpdateNoteSchema defines what may be modified on an existing NoteSchema;
// nil fields are left untouched.
type UpdateNoteSchema struct {
	Name   *string  `json:"name"`
	Type   *string  `json:"type"`
	Weight *float64 `json:"weight" validate:"omitempty,gte=0"`
}

func (us *UpdateNoteSchema) Validate(validate *validator.Validate) error {
	if us.Name != nil {
		name := core.CleanString(*us.Name)
		us.Name = &name
	}
	if us.Type != nil {
		typ := core.CleanString(*us.Type, true /* lower */)
		us.Type = &typ
	}
	return validate.Struct(us)
}

// UpsertNote records or replaces a student's score for one schema.
type UpsertNote struct {
	Note float64 `json:"note" validate:"gte=0"`
}

func (un *UpsertNote) Validate(validate *validator.Validate) error {
	return validate.Struct(un)
}
