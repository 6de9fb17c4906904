package university

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/alama/core/access"
	"github.com/trezcool/alama/core/eval"
	"github.com/trezcool/alama/core/user"
)

var (
	// errors
	ErrNotFound = errors.New("university not found")
)

type (
	Repository interface {
		access.RoleFinder

		CreateUniversity(ctx context.Context, uni University) (University, error)
		GetUniversityByID(ctx context.Context, id int) (University, error)
		QueryUniversitiesByMember(ctx context.Context, userID int) ([]University, error)
		SetUniversityFormula(ctx context.Context, id int, formula string) (University, error)
		AssignRole(ctx context.Context, member Member) error
	}

	Service struct {
		repo     Repository
		auth     *access.Authorizer
		boundary *eval.Boundary
	}
)

func NewService(repo Repository, auth *access.Authorizer, boundary *eval.Boundary) *Service {
	return &Service{repo: repo, auth: auth, boundary: boundary}
}

// Create registers a new tenant; system admins only.
func (svc *Service) Create(ctx context.Context, usr user.User, nu NewUniversity) (University, error) {
	if !usr.IsSystemAdmin {
		return University{}, access.ErrNotFound
	}
	now := time.Now().UTC()
	return svc.repo.CreateUniversity(ctx, University{Name: nu.Name, CreatedAt: now, UpdatedAt: now})
}

// Mine lists the universities where usr holds any role.
func (svc *Service) Mine(ctx context.Context, usr user.User) ([]University, error) {
	decision, err := svc.auth.Authorize(ctx, usr, access.Scope{})
	if err != nil {
		return nil, err
	}
	if dErr := decision.Err(); dErr != nil {
		return nil, dErr
	}
	return svc.repo.QueryUniversitiesByMember(ctx, usr.ID)
}

// Assign grants a role within the university; its admins only.
func (svc *Service) Assign(ctx context.Context, usr user.User, universityID int, ar AssignRole) error {
	decision, err := svc.auth.Authorize(ctx, usr, access.Scope{UniversityID: universityID, Require: access.Admin})
	if err != nil {
		return err
	}
	if dErr := decision.Err(); dErr != nil {
		return dErr
	}
	if _, err = svc.repo.GetUniversityByID(ctx, universityID); err != nil {
		return err
	}
	return svc.repo.AssignRole(ctx, Member{UserID: ar.UserID, UniversityID: universityID, Role: ar.Role})
}

// ReplaceFormula trial-runs the candidate formula before persisting it;
// a formula that fails the trial never reaches storage.
func (svc *Service) ReplaceFormula(ctx context.Context, usr user.User, universityID int, sf SetFormula) (University, error) {
	decision, err := svc.auth.Authorize(ctx, usr, access.Scope{UniversityID: universityID, Require: access.Admin})
	if err != nil {
		return University{}, err
	}
	if dErr := decision.Err(); dErr != nil {
		return University{}, dErr
	}
	if _, err = svc.repo.GetUniversityByID(ctx, universityID); err != nil {
		return University{}, err
	}

	if err = svc.boundary.ValidateFormula(ctx, sf.Code, usr, universityID); err != nil {
		return University{}, err
	}
	return svc.repo.SetUniversityFormula(ctx, universityID, sf.Code)
}
