package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/alama/core"
	"github.com/trezcool/alama/core/access"
	"github.com/trezcool/alama/core/course"
	"github.com/trezcool/alama/core/eval"
	"github.com/trezcool/alama/core/grading"
	"github.com/trezcool/alama/core/university"
	"github.com/trezcool/alama/core/user"
	emailsvc "github.com/trezcool/alama/services/email"
	evalsvc "github.com/trezcool/alama/services/evaluator"
	dummydb "github.com/trezcool/alama/storage/database/dummy"
)

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

type testApp struct {
	server    Server
	usrSvc    user.ServiceInterface
	uniRepo   university.Repository
	crsRepo   course.Repository
	grdRepo   grading.Repository
	evaluator *evalsvc.DummyService

	uni university.University
	crs course.Course

	sysAdmin, admin, lecturer, student seededUser
}

type seededUser struct {
	user.User
	token string
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

var _ core.Logger = nopLogger{}

const testPassword = "LePassword"

// setupApp wires a full server against the in-memory database, seeds one
// university with an admin, a lecturer and an enrolled student, and mints
// their tokens.
func setupApp(t *testing.T, evalFn func(string, eval.DataContext) (bool, error)) *testApp {
	t.Helper()
	ctx := context.Background()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("opening dummy db: %v", err)
	}

	conf := &core.Config{TestMode: true, AppName: "Alama", SecretKey: []byte("secret")}
	conf.Evaluator.Timeout = 1e9

	uniRepo := dummydb.NewUniversityRepository(db)
	crsRepo := dummydb.NewCourseRepository(db)
	grdRepo := dummydb.NewGradingRepository(db)
	usrRepo := dummydb.NewUserRepository(db)

	evaluator := evalsvc.NewDummyService(evalFn)
	boundary := eval.NewBoundary(evaluator, conf)
	auth := access.NewAuthorizer(uniRepo, crsRepo)
	mailSvc := emailsvc.NewConsoleServiceMock(conf)

	usrSvc := user.NewService(usrRepo, conf)
	uniSvc := university.NewService(uniRepo, auth, boundary)
	crsSvc := course.NewService(crsRepo, uniRepo, auth, usrSvc, mailSvc)
	grdSvc := grading.NewService(grdRepo, crsRepo, uniRepo, auth, boundary, nopLogger{})

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	access.InitValidators(validate, translator)

	app := &testApp{
		usrSvc:    usrSvc,
		uniRepo:   uniRepo,
		crsRepo:   crsRepo,
		grdRepo:   grdRepo,
		evaluator: evaluator,
	}
	app.server = NewServer(ServerDeps{
		Conf:           conf,
		Logger:         nopLogger{},
		UserSvc:        usrSvc,
		UniversitySvc:  uniSvc,
		CourseSvc:      crsSvc,
		GradingSvc:     grdSvc,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})

	app.uni, err = uniRepo.CreateUniversity(ctx, university.University{Name: "Test U"})
	if err != nil {
		t.Fatalf("creating university: %v", err)
	}

	app.sysAdmin = app.seedUser(t, "sysadmin", "", true)
	app.admin = app.seedUser(t, "admin", access.RoleAdmin, false)
	app.lecturer = app.seedUser(t, "lecturer", access.RoleLecturer, false)
	app.student = app.seedUser(t, "student", access.RoleStudent, false)

	app.crs, err = crsRepo.CreateCourse(ctx, course.Course{
		UniversityID: app.uni.ID, LecturerID: app.lecturer.ID, Name: "Algebra"})
	if err != nil {
		t.Fatalf("creating course: %v", err)
	}
	_, err = crsRepo.CreateEnrollment(ctx, course.Enrollment{
		CourseID: app.crs.ID, UserID: app.student.ID, UniversityID: app.uni.ID})
	if err != nil {
		t.Fatalf("enrolling student: %v", err)
	}
	return app
}

func (app *testApp) seedUser(t *testing.T, uname, role string, sysAdmin bool) seededUser {
	t.Helper()
	ctx := context.Background()

	usr, err := app.usrSvc.Create(ctx, user.NewUser{
		Username:      uname,
		Email:         uname + "@test.alama",
		Password:      testPassword,
		IsSystemAdmin: sysAdmin,
	})
	if err != nil {
		t.Fatalf("creating user %s: %v", uname, err)
	}
	if role != "" {
		err = app.uniRepo.AssignRole(ctx, university.Member{UserID: usr.ID, UniversityID: app.uni.ID, Role: role})
		if err != nil {
			t.Fatalf("assigning role: %v", err)
		}
	}
	usr, err = app.usrSvc.Authenticate(ctx, uname, testPassword)
	if err != nil {
		t.Fatalf("authenticating %s: %v", uname, err)
	}
	return seededUser{User: usr, token: usr.Token}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func jsonBody(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshaling body: %v", err)
	}
	return b
}

func marshalErr(t *testing.T, msg string) []byte {
	t.Helper()
	return jsonBody(t, httpErr{Error: msg})
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
