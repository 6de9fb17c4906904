package university

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/alama/core"
)

// University is the top-level tenant. Formula holds the tenant-supplied
// pass/fail source text; empty means no formula has been set yet.
type University struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Formula   string    `json:"note_calculation"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// Member is one (user, university) role assignment; a user holds at most
// one role per university.
type Member struct {
	UserID       int    `json:"user_id"`
	UniversityID int    `json:"university_id"`
	Role         string `json:"role"`
}

// NewUniversity contains information needed to create a new University.
type NewUniversity struct {
	Name string `json:"name" validate:"required"`
}

func (nu *NewUniversity) Validate(validate *validator.Validate) error {
	nu.Name = core.CleanString(nu.Name)
	return validate.Struct(nu)
}

// AssignRole grants a user a role within a university, replacing any
// previous assignment.
type AssignRole struct {
	UserID int    `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"required,role"`
}

func (ar *AssignRole) Validate(validate *validator.Validate) error {
	ar.Role = core.CleanString(ar.Role)
	return validate.Struct(ar)
}

// SetFormula replaces a university's pass/fail formula.
type SetFormula struct {
	Code string `json:"code" validate:"required"`
}

func (sf *SetFormula) Validate(validate *validator.Validate) error {
	return validate.Struct(sf)
}
