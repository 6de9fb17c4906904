package course

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/access"
	"github.com/trezcool/alama/core/user"
)

var (
	// errors
	ErrNotFound        = errors.New("course not found")
	ErrAlreadyEnrolled = errors.New("student is already enrolled in this course")
)

type (
	Repository interface {
		access.CourseFinder

		CreateCourse(ctx context.Context, c Course) (Course, error)
		GetCourse(ctx context.Context, courseID, universityID int) (Course, error)
		CreateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
		GetEnrollment(ctx context.Context, courseID, userID, universityID int) (Enrollment, bool, error)
		QueryStudentCourses(ctx context.Context, userID, universityID int) ([]StudentCourse, error)
	}

	Service struct {
		repo    Repository
		roles   access.RoleFinder
		auth    *access.Authorizer
		usrSvc  user.ServiceInterface
		mailSvc core.EmailService
	}
)

func NewService(
	repo Repository,
	roles access.RoleFinder,
	auth *access.Authorizer,
	usrSvc user.ServiceInterface,
	mailSvc core.EmailService,
) *Service {
	return &Service{repo: repo, roles: roles, auth: auth, usrSvc: usrSvc, mailSvc: mailSvc}
}

// Create opens a new course; university admins only. The lecturer of
// record must hold the LECTURER role (or be an admin) in the university.
func (svc *Service) Create(ctx context.Context, usr user.User, universityID int, nc NewCourse) (Course, error) {
	decision, err := svc.auth.Authorize(ctx, usr, access.Scope{UniversityID: universityID, Require: access.Admin})
	if err != nil {
		return Course{}, err
	}
	if dErr := decision.Err(); dErr != nil {
		return Course{}, dErr
	}

	role, ok, err := svc.roles.GetRole(ctx, nc.LecturerID, universityID)
	if err != nil {
		return Course{}, err
	}
	if !ok || role == access.RoleStudent {
		return Course{}, ErrNotFound // lecturer not found in this university
	}

	now := time.Now().UTC()
	return svc.repo.CreateCourse(ctx, Course{
		UniversityID: universityID,
		LecturerID:   nc.LecturerID,
		Name:         nc.Name,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// Enroll adds a student to a course; university admins only. The target
// must hold the STUDENT role and not already be enrolled.
func (svc *Service) Enroll(ctx context.Context, usr user.User, universityID, courseID, studentID int) (Enrollment, error) {
	decision, err := svc.auth.Authorize(ctx, usr, access.Scope{UniversityID: universityID, Require: access.Admin})
	if err != nil {
		return Enrollment{}, err
	}
	if dErr := decision.Err(); dErr != nil {
		return Enrollment{}, dErr
	}

	if _, err = svc.repo.GetCourse(ctx, courseID, universityID); err != nil {
		return Enrollment{}, err
	}

	role, ok, err := svc.roles.GetRole(ctx, studentID, universityID)
	if err != nil {
		return Enrollment{}, err
	}
	if !ok || role != access.RoleStudent {
		return Enrollment{}, ErrNotFound // student not found in this university
	}

	if _, exists, err := svc.repo.GetEnrollment(ctx, courseID, studentID, universityID); err != nil {
		return Enrollment{}, err
	} else if exists {
		return Enrollment{}, ErrAlreadyEnrolled
	}

	enr, err := svc.repo.CreateEnrollment(ctx, Enrollment{
		CourseID:     courseID,
		UserID:       studentID,
		UniversityID: universityID,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return Enrollment{}, err
	}

	svc.notifyEnrolled(ctx, courseID, universityID, studentID)
	return enr, nil
}

// StudentCourses lists the courses the calling student is enrolled in.
func (svc *Service) StudentCourses(ctx context.Context, usr user.User, universityID int) ([]StudentCourse, error) {
	decision, err := svc.auth.Authorize(ctx, usr, access.Scope{UniversityID: universityID, Require: access.Student})
	if err != nil {
		return nil, err
	}
	if dErr := decision.Err(); dErr != nil {
		return nil, dErr
	}
	return svc.repo.QueryStudentCourses(ctx, usr.ID, universityID)
}

func (svc *Service) notifyEnrolled(ctx context.Context, courseID, universityID, studentID int) {
	student, err := svc.usrSvc.GetByID(ctx, studentID)
	if err != nil || student.Email == "" {
		return
	}
	crs, err := svc.repo.GetCourse(ctx, courseID, universityID)
	if err != nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: student.FullName(), Address: student.Email}},
		Subject: "Course enrollment",
		BodyStr: fmt.Sprintf("You have been enrolled in %s.", crs.Name),
	})
}
