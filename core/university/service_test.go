package university_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/access"
	"github.com/trezcool/alama/core/eval"
	"github.com/trezcool/alama/core/university"
	"github.com/trezcool/alama/core/user"
	evalsvc "github.com/trezcool/alama/services/evaluator"
	dummydb "github.com/trezcool/alama/storage/database/dummy"
)

type fixture struct {
	svc       *university.Service
	repo      university.Repository
	evaluator *evalsvc.DummyService

	sysAdmin user.User
	admin    user.User
	student  user.User
	uni      university.University
}

func newFixture(t *testing.T, fn func(string, eval.DataContext) (bool, error)) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("opening dummy db: %v", err)
	}
	uniRepo := dummydb.NewUniversityRepository(db)
	crsRepo := dummydb.NewCourseRepository(db)

	evaluator := evalsvc.NewDummyService(fn)
	conf := &core.Config{}
	conf.Evaluator.Timeout = 1e9
	boundary := eval.NewBoundary(evaluator, conf)
	auth := access.NewAuthorizer(uniRepo, crsRepo)

	f := &fixture{
		svc:       university.NewService(uniRepo, auth, boundary),
		repo:      uniRepo,
		evaluator: evaluator,
		sysAdmin:  user.User{ID: 1, IsSystemAdmin: true},
		admin:     user.User{ID: 2},
		student:   user.User{ID: 3},
	}

	f.uni, err = uniRepo.CreateUniversity(ctx, university.University{Name: "Test U"})
	if err != nil {
		t.Fatalf("creating university: %v", err)
	}
	for id, role := range map[int]string{2: access.RoleAdmin, 3: access.RoleStudent} {
		if err = uniRepo.AssignRole(ctx, university.Member{UserID: id, UniversityID: f.uni.ID, Role: role}); err != nil {
			t.Fatalf("assigning role: %v", err)
		}
	}
	return f
}

func Test_service_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("system admin creates a tenant", func(t *testing.T) {
		f := newFixture(t, nil)
		uni, err := f.svc.Create(ctx, f.sysAdmin, university.NewUniversity{Name: "New U"})
		assert.NoError(t, err)
		assert.NotZero(t, uni.ID)
	})

	t.Run("tenant admin may not create tenants", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.svc.Create(ctx, f.admin, university.NewUniversity{Name: "New U"})
		assert.Equal(t, access.ErrNotFound, err)
	})
}

func Test_service_Mine(t *testing.T) {
	ctx := context.Background()

	t.Run("lists memberships only", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.repo.CreateUniversity(ctx, university.University{Name: "Other U"})
		assert.NoError(t, err)

		unis, err := f.svc.Mine(ctx, f.student)
		assert.NoError(t, err)
		assert.Len(t, unis, 1)
		assert.Equal(t, f.uni.ID, unis[0].ID)
	})

	t.Run("anonymous caller is rejected", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.svc.Mine(ctx, user.User{})
		assert.Equal(t, access.ErrBadCredential, err)
	})
}

func Test_service_Assign(t *testing.T) {
	ctx := context.Background()

	t.Run("admin grants and replaces a role", func(t *testing.T) {
		f := newFixture(t, nil)
		err := f.svc.Assign(ctx, f.admin, f.uni.ID, university.AssignRole{UserID: 9, Role: access.RoleLecturer})
		assert.NoError(t, err)

		role, ok, err := f.repo.GetRole(ctx, 9, f.uni.ID)
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, access.RoleLecturer, role)

		// replace, not append
		err = f.svc.Assign(ctx, f.admin, f.uni.ID, university.AssignRole{UserID: 9, Role: access.RoleStudent})
		assert.NoError(t, err)
		role, _, _ = f.repo.GetRole(ctx, 9, f.uni.ID)
		assert.Equal(t, access.RoleStudent, role)
	})

	t.Run("student may not grant roles", func(t *testing.T) {
		f := newFixture(t, nil)
		err := f.svc.Assign(ctx, f.student, f.uni.ID, university.AssignRole{UserID: 9, Role: access.RoleStudent})
		assert.Equal(t, access.ErrNotFound, err)
	})

	t.Run("missing university is not found", func(t *testing.T) {
		f := newFixture(t, nil)
		err := f.svc.Assign(ctx, f.sysAdmin, 999, university.AssignRole{UserID: 9, Role: access.RoleStudent})
		assert.Equal(t, university.ErrNotFound, err)
	})
}

func Test_service_ReplaceFormula(t *testing.T) {
	ctx := context.Background()

	t.Run("valid formula is trialed then persisted", func(t *testing.T) {
		f := newFixture(t, func(_ string, data eval.DataContext) (bool, error) {
			return data.Total >= 60, nil
		})

		uni, err := f.svc.ReplaceFormula(ctx, f.admin, f.uni.ID, university.SetFormula{Code: "return total >= 60"})
		assert.NoError(t, err)
		assert.Equal(t, "return total >= 60", uni.Formula)

		// trial ran against the synthetic dataset
		calls := f.evaluator.Calls()
		assert.Len(t, calls, 1)
		assert.Equal(t, 100.0, calls[0].Data.Final)

		stored, err := f.repo.GetUniversityByID(ctx, f.uni.ID)
		assert.NoError(t, err)
		assert.Equal(t, "return total >= 60", stored.Formula)
	})

	t.Run("failing trial never reaches storage", func(t *testing.T) {
		f := newFixture(t, func(string, eval.DataContext) (bool, error) {
			return false, errors.New("syntax error")
		})

		_, err := f.svc.ReplaceFormula(ctx, f.admin, f.uni.ID, university.SetFormula{Code: "garbage("})
		var evalErr *eval.Error
		assert.True(t, errors.As(err, &evalErr))

		stored, err := f.repo.GetUniversityByID(ctx, f.uni.ID)
		assert.NoError(t, err)
		assert.Empty(t, stored.Formula)
	})

	t.Run("non-admin may not set the formula", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.svc.ReplaceFormula(ctx, f.student, f.uni.ID, university.SetFormula{Code: "return true"})
		assert.Equal(t, access.ErrNotFound, err)
		assert.Empty(t, f.evaluator.Calls())
	})
}
