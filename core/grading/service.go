package grading

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/access"
	"github.com/trezcool/alama/core/course"
	"github.com/trezcool/alama/core/eval"
	"github.com/trezcool/alama/core/university"
	"github.com/trezcool/alama/core/user"
)

var (
	// errors
	ErrNotFound    = errors.New("note schema not found")
	ErrSchemaInUse = errors.New("cannot delete note schema with existing note data")
)

type (
	Repository interface {
		CreateNoteSchema(ctx context.Context, ns NoteSchema) (NoteSchema, error)
		GetNoteSchema(ctx context.Context, schemaID, courseID, universityID int) (NoteSchema, error)
		QueryNoteSchemas(ctx context.Context, courseID, universityID int) ([]NoteSchema, error)
		UpdateNoteSchema(ctx context.Context, ns NoteSchema) (NoteSchema, error)
		DeleteNoteSchema(ctx context.Context, schemaID int) error
		CountNoteData(ctx context.Context, schemaID int) (int, error)
		UpsertNoteData(ctx context.Context, nd NoteData) error
		QueryNoteData(ctx context.Context, courseID, universityID, studentID int) ([]NoteData, error)
	}

	// Service orchestrates every grading operation: authorize, then
	// aggregate, then (when a policy asks for it) evaluate.
	Service struct {
		repo     Repository
		courses  course.Repository
		unis     university.Repository
		auth     *access.Authorizer
		boundary *eval.Boundary
		logger   core.Logger
	}
)

func NewService(
	repo Repository,
	courses course.Repository,
	unis university.Repository,
	auth *access.Authorizer,
	boundary *eval.Boundary,
	logger core.Logger,
) *Service {
	return &Service{repo: repo, courses: courses, unis: unis, auth: auth, boundary: boundary, logger: logger}
}

// lecturerScope authorizes a schema-mutating call and confirms the course
// exists. An ADMIN passes without owning the course; a LECTURER must own it.
func (svc *Service) lecturerScope(ctx context.Context, usr user.User, universityID, courseID int) error {
	decision, err := svc.auth.Authorize(ctx, usr, access.Scope{
		UniversityID: universityID,
		CourseID:     courseID,
		Require:      access.Lecturer,
	})
	if err != nil {
		return err
	}
	if dErr := decision.Err(); dErr != nil {
		return dErr
	}
	if _, err = svc.courses.GetCourse(ctx, courseID, universityID); err != nil {
		return err
	}
	return nil
}

// studentScope authorizes a student-facing read and confirms enrollment.
func (svc *Service) studentScope(ctx context.Context, usr user.User, universityID, courseID int) error {
	decision, err := svc.auth.Authorize(ctx, usr, access.Scope{UniversityID: universityID, Require: access.Student})
	if err != nil {
		return err
	}
	if dErr := decision.Err(); dErr != nil {
		return dErr
	}
	_, enrolled, err := svc.courses.GetEnrollment(ctx, courseID, usr.ID, universityID)
	if err != nil {
		return err
	}
	if !enrolled {
		return course.ErrNotFound
	}
	return nil
}

func (svc *Service) CreateSchema(
	ctx context.Context, usr user.User, universityID, courseID int, ns NewNoteSchema,
) (NoteSchema, error) {
	if err := svc.lecturerScope(ctx, usr, universityID, courseID); err != nil {
		return NoteSchema{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateNoteSchema(ctx, NoteSchema{
		UserID:       usr.ID,
		CourseID:     courseID,
		UniversityID: universityID,
		Name:         ns.Name,
		Type:         ns.Type,
		Weight:       ns.Weight,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (svc *Service) Schemas(ctx context.Context, usr user.User, universityID, courseID int) ([]NoteSchema, error) {
	if err := svc.lecturerScope(ctx, usr, universityID, courseID); err != nil {
		return nil, err
	}
	return svc.repo.QueryNoteSchemas(ctx, courseID, universityID)
}

func (svc *Service) Schema(ctx context.Context, usr user.User, universityID, courseID, schemaID int) (NoteSchema, error) {
	if err := svc.lecturerScope(ctx, usr, universityID, courseID); err != nil {
		return NoteSchema{}, err
	}
	return svc.repo.GetNoteSchema(ctx, schemaID, courseID, universityID)
}

func (svc *Service) UpdateSchema(
	ctx context.Context, usr user.User, universityID, courseID, schemaID int, us UpdateNoteSchema,
) (NoteSchema, error) {
	if err := svc.lecturerScope(ctx, usr, universityID, courseID); err != nil {
		return NoteSchema{}, err
	}
	ns, err := svc.repo.GetNoteSchema(ctx, schemaID, courseID, universityID)
	if err != nil {
		return NoteSchema{}, err
	}
	if us.Name != nil {
		ns.Name = *us.Name
	}
	if us.Type != nil {
		ns.Type = *us.Type
	}
	if us.Weight != nil {
		ns.Weight = *us.Weight
	}
	ns.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateNoteSchema(ctx, ns)
}

// DeleteSchema refuses to remove a schema while any note data references
// it; the referential guard lives here, not only in storage.
func (svc *Service) DeleteSchema(ctx context.Context, usr user.User, universityID, courseID, schemaID int) error {
	if err := svc.lecturerScope(ctx, usr, universityID, courseID); err != nil {
		return err
	}
	if _, err := svc.repo.GetNoteSchema(ctx, schemaID, courseID, universityID); err != nil {
		return err
	}
	count, err := svc.repo.CountNoteData(ctx, schemaID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrSchemaInUse
	}
	return svc.repo.DeleteNoteSchema(ctx, schemaID)
}

// RecordNote upserts a student's score for one schema. All checks run
// before the single write; repeating the call is a no-op on state.
func (svc *Service) RecordNote(
	ctx context.Context, usr user.User, universityID, courseID, studentID, schemaID int, un UpsertNote,
) error {
	if err := svc.lecturerScope(ctx, usr, universityID, courseID); err != nil {
		return err
	}

	role, ok, err := svc.unis.GetRole(ctx, studentID, universityID)
	if err != nil {
		return err
	}
	if !ok || role != access.RoleStudent {
		return course.ErrNotFound // student not found in this university
	}
	if _, enrolled, err := svc.courses.GetEnrollment(ctx, courseID, studentID, universityID); err != nil {
		return err
	} else if !enrolled {
		return course.ErrNotFound
	}
	if _, err = svc.repo.GetNoteSchema(ctx, schemaID, courseID, universityID); err != nil {
		return err
	}

	return svc.repo.UpsertNoteData(ctx, NoteData{SchemaID: schemaID, StudentID: studentID, Note: un.Note})
}

// StudentReport aggregates the calling student's notes and evaluates the
// university formula when at least one note is recorded. An evaluator
// failure degrades the report to a null grade instead of failing the read.
func (svc *Service) StudentReport(ctx context.Context, usr user.User, universityID, courseID int) (GradeResult, error) {
	if err := svc.studentScope(ctx, usr, universityID, courseID); err != nil {
		return GradeResult{}, err
	}

	notes, err := svc.aggregate(ctx, universityID, courseID, usr.ID)
	if err != nil {
		return GradeResult{}, err
	}
	uni, err := svc.unis.GetUniversityByID(ctx, universityID)
	if err != nil {
		return GradeResult{}, err
	}

	result := GradeResult{CourseID: courseID, Notes: notes}
	verdict, err := svc.boundary.EvaluateReport(ctx, uni.Formula, usr, universityID, components(notes))
	if err != nil {
		var evalErr *eval.Error
		if errors.As(err, &evalErr) {
			svc.logger.Error(fmt.Sprintf("evaluating grade for course %d: %v", courseID, err), err, usr)
			return result, nil
		}
		return GradeResult{}, err
	}
	result.FinalGrade = verdict.FinalGrade
	result.Passed = verdict.Passed
	return result, nil
}

// StudentStatus answers pass/fail only, and only when every component has
// a recorded note; unset notes yield a null verdict rather than a guess.
func (svc *Service) StudentStatus(ctx context.Context, usr user.User, universityID, courseID int) (StatusResult, error) {
	if err := svc.studentScope(ctx, usr, universityID, courseID); err != nil {
		return StatusResult{}, err
	}

	notes, err := svc.aggregate(ctx, universityID, courseID, usr.ID)
	if err != nil {
		return StatusResult{}, err
	}
	uni, err := svc.unis.GetUniversityByID(ctx, universityID)
	if err != nil {
		return StatusResult{}, err
	}

	verdict, err := svc.boundary.EvaluateStrict(ctx, uni.Formula, usr, universityID, components(notes))
	if err != nil {
		return StatusResult{}, err
	}
	return StatusResult{CourseID: courseID, Passed: verdict.Passed}, nil
}

func (svc *Service) aggregate(ctx context.Context, universityID, courseID, studentID int) ([]AggregatedNote, error) {
	schemas, err := svc.repo.QueryNoteSchemas(ctx, courseID, universityID)
	if err != nil {
		return nil, err
	}
	data, err := svc.repo.QueryNoteData(ctx, courseID, universityID, studentID)
	if err != nil {
		return nil, err
	}
	return Aggregate(schemas, data), nil
}
