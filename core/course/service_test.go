package course_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/access"
	"github.com/trezcool/alama/core/course"
	"github.com/trezcool/alama/core/university"
	"github.com/trezcool/alama/core/user"
	emailsvc "github.com/trezcool/alama/services/email"
	dummydb "github.com/trezcool/alama/storage/database/dummy"
)

type fixture struct {
	svc     *course.Service
	usrSvc  user.ServiceInterface
	crsRepo course.Repository
	uniRepo university.Repository

	uni      university.University
	admin    user.User
	lecturer user.User
	student  user.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("opening dummy db: %v", err)
	}
	uniRepo := dummydb.NewUniversityRepository(db)
	crsRepo := dummydb.NewCourseRepository(db)
	usrRepo := dummydb.NewUserRepository(db)

	conf := &core.Config{AppName: "Alama", SecretKey: []byte("secret"), TestMode: true}
	usrSvc := user.NewService(usrRepo, conf)
	auth := access.NewAuthorizer(uniRepo, crsRepo)
	mailSvc := emailsvc.NewConsoleServiceMock(conf)

	f := &fixture{
		svc:     course.NewService(crsRepo, uniRepo, auth, usrSvc, mailSvc),
		usrSvc:  usrSvc,
		crsRepo: crsRepo,
		uniRepo: uniRepo,
	}

	f.uni, err = uniRepo.CreateUniversity(ctx, university.University{Name: "Test U"})
	if err != nil {
		t.Fatalf("creating university: %v", err)
	}

	f.admin = f.createUser(t, "admin", access.RoleAdmin)
	f.lecturer = f.createUser(t, "lecturer", access.RoleLecturer)
	f.student = f.createUser(t, "student", access.RoleStudent)
	return f
}

func (f *fixture) createUser(t *testing.T, uname, role string) user.User {
	t.Helper()
	ctx := context.Background()
	usr, err := f.usrSvc.Create(ctx, user.NewUser{
		Username: uname,
		Email:    uname + "@test.alama",
		Password: "LePassword",
	})
	if err != nil {
		t.Fatalf("creating user %s: %v", uname, err)
	}
	if err = f.uniRepo.AssignRole(ctx, university.Member{UserID: usr.ID, UniversityID: f.uni.ID, Role: role}); err != nil {
		t.Fatalf("assigning role: %v", err)
	}
	return usr
}

func (f *fixture) createCourse(t *testing.T, name string) course.Course {
	t.Helper()
	crs, err := f.svc.Create(context.Background(), f.admin, f.uni.ID,
		course.NewCourse{Name: name, LecturerID: f.lecturer.ID})
	if err != nil {
		t.Fatalf("creating course: %v", err)
	}
	return crs
}

func Test_service_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("admin creates a course", func(t *testing.T) {
		f := newFixture(t)
		crs := f.createCourse(t, "Algebra")
		assert.Equal(t, f.lecturer.ID, crs.LecturerID)
		assert.Equal(t, f.uni.ID, crs.UniversityID)
	})

	t.Run("lecturer may not create courses", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Create(ctx, f.lecturer, f.uni.ID,
			course.NewCourse{Name: "Algebra", LecturerID: f.lecturer.ID})
		assert.Equal(t, access.ErrNotFound, err)
	})

	t.Run("lecturer of record must not be a student", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Create(ctx, f.admin, f.uni.ID,
			course.NewCourse{Name: "Algebra", LecturerID: f.student.ID})
		assert.Equal(t, course.ErrNotFound, err)
	})

	t.Run("lecturer of record must be a member", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Create(ctx, f.admin, f.uni.ID,
			course.NewCourse{Name: "Algebra", LecturerID: 999})
		assert.Equal(t, course.ErrNotFound, err)
	})
}

func Test_service_Enroll(t *testing.T) {
	ctx := context.Background()

	t.Run("admin enrolls a student", func(t *testing.T) {
		f := newFixture(t)
		crs := f.createCourse(t, "Algebra")

		enr, err := f.svc.Enroll(ctx, f.admin, f.uni.ID, crs.ID, f.student.ID)
		assert.NoError(t, err)
		assert.Equal(t, f.student.ID, enr.UserID)

		// enrollment email went out
		assert.NotEmpty(t, emailsvc.SentMessages)
	})

	t.Run("duplicate enrollment conflicts", func(t *testing.T) {
		f := newFixture(t)
		crs := f.createCourse(t, "Algebra")

		_, err := f.svc.Enroll(ctx, f.admin, f.uni.ID, crs.ID, f.student.ID)
		assert.NoError(t, err)
		_, err = f.svc.Enroll(ctx, f.admin, f.uni.ID, crs.ID, f.student.ID)
		assert.Equal(t, course.ErrAlreadyEnrolled, err)
	})

	t.Run("non-student target is not found", func(t *testing.T) {
		f := newFixture(t)
		crs := f.createCourse(t, "Algebra")

		_, err := f.svc.Enroll(ctx, f.admin, f.uni.ID, crs.ID, f.lecturer.ID)
		assert.Equal(t, course.ErrNotFound, err)
	})

	t.Run("missing course is not found", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Enroll(ctx, f.admin, f.uni.ID, 999, f.student.ID)
		assert.Equal(t, course.ErrNotFound, err)
	})

	t.Run("lecturer may not enroll students", func(t *testing.T) {
		f := newFixture(t)
		crs := f.createCourse(t, "Algebra")
		_, err := f.svc.Enroll(ctx, f.lecturer, f.uni.ID, crs.ID, f.student.ID)
		assert.Equal(t, access.ErrNotFound, err)
	})
}

func Test_service_StudentCourses(t *testing.T) {
	ctx := context.Background()

	t.Run("lists enrolled courses with the lecturer profile", func(t *testing.T) {
		f := newFixture(t)
		crs := f.createCourse(t, "Algebra")
		f.createCourse(t, "Physics") // not enrolled

		_, err := f.svc.Enroll(ctx, f.admin, f.uni.ID, crs.ID, f.student.ID)
		assert.NoError(t, err)

		courses, err := f.svc.StudentCourses(ctx, f.student, f.uni.ID)
		assert.NoError(t, err)
		assert.Equal(t, []course.StudentCourse{
			{ID: crs.ID, Name: "Algebra", Lecturer: course.Lecturer{Username: "lecturer"}},
		}, courses)
	})

	t.Run("non-student caller is denied", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.StudentCourses(ctx, f.lecturer, f.uni.ID)
		assert.Equal(t, access.ErrNotFound, err)
	})
}
