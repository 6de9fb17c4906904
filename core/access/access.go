// Package access decides whether an authenticated user may act on a
// university, and optionally on one of its courses. Every service entry
// point consults it before touching storage.
//
// Denials deliberately read as "not found": resources outside the caller's
// tenant must not be discoverable.
package access

import (
	"context"
	"errors"

	"github.com/trezcool/alama/core/user"
)

// Roles scoped per (user, university). A user holds at most one.
const (
	RoleAdmin    = "ADMIN"
	RoleLecturer = "LECTURER"
	RoleStudent  = "STUDENT"
)

var AllRoles = []string{RoleAdmin, RoleLecturer, RoleStudent}

// Class is the minimum role class a scope requires.
type Class int

const (
	// Member requires any role in the university.
	Member Class = iota
	// Student requires the STUDENT role exactly.
	Student
	// Lecturer requires LECTURER or ADMIN. When the scope carries a course,
	// a LECTURER must also own it; ADMIN bypasses the ownership check.
	Lecturer
	// Admin requires the ADMIN role.
	Admin
)

// Scope is the tenant slice a request wants to act on. A zero UniversityID
// means the operation is not tenant-scoped.
type Scope struct {
	UniversityID int
	CourseID     int
	Require      Class
}

// Decision is the outcome of an authorization check.
type Decision int

const (
	Allow Decision = iota
	// DenyNotFound hides the denial as "not found" at the boundary.
	DenyNotFound
	// DenyBadCredential means the caller's identity itself is the problem.
	DenyBadCredential
)

var (
	ErrNotFound      = errors.New("not found")
	ErrBadCredential = errors.New("user not authenticated")
)

// Err maps a Decision to its boundary error; nil for Allow.
func (d Decision) Err() error {
	switch d {
	case DenyNotFound:
		return ErrNotFound
	case DenyBadCredential:
		return ErrBadCredential
	default:
		return nil
	}
}

type (
	// RoleFinder reads the per (user, university) role assignment.
	// ok is false when the user is not a member.
	RoleFinder interface {
		GetRole(ctx context.Context, userID, universityID int) (role string, ok bool, err error)
	}

	// CourseFinder resolves a course's lecturer of record.
	// ok is false when the course does not exist in the university.
	CourseFinder interface {
		GetCourseLecturer(ctx context.Context, courseID, universityID int) (lecturerID int, ok bool, err error)
	}

	Authorizer struct {
		roles   RoleFinder
		courses CourseFinder
	}
)

func NewAuthorizer(roles RoleFinder, courses CourseFinder) *Authorizer {
	return &Authorizer{roles: roles, courses: courses}
}

// Authorize decides whether usr may act on the given scope. The returned
// error reports storage failures only; the Decision carries the verdict.
func (a *Authorizer) Authorize(ctx context.Context, usr user.User, sc Scope) (Decision, error) {
	if usr.ID == 0 {
		return DenyBadCredential, nil
	}
	// system admins sit above the tenant hierarchy
	if usr.IsSystemAdmin {
		return Allow, nil
	}
	if sc.UniversityID == 0 {
		return Allow, nil
	}

	role, ok, err := a.roles.GetRole(ctx, usr.ID, sc.UniversityID)
	if err != nil {
		return DenyNotFound, err
	}
	if !ok { // not a member
		return DenyNotFound, nil
	}

	switch sc.Require {
	case Admin:
		if role != RoleAdmin {
			return DenyNotFound, nil
		}
	case Lecturer:
		if role != RoleLecturer && role != RoleAdmin {
			return DenyNotFound, nil
		}
	case Student:
		if role != RoleStudent {
			return DenyNotFound, nil
		}
	}

	// a LECTURER can only act on a course they own
	if sc.CourseID != 0 && role == RoleLecturer {
		lecturerID, ok, err := a.courses.GetCourseLecturer(ctx, sc.CourseID, sc.UniversityID)
		if err != nil {
			return DenyNotFound, err
		}
		if !ok || lecturerID != usr.ID {
			return DenyNotFound, nil
		}
	}
	return Allow, nil
}
