package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core/course"
)

type courseApi struct {
	deps ServerDeps
}

func registerCourseAPI(g *echo.Group, auth echo.MiddlewareFunc, deps ServerDeps) {
	api := courseApi{deps: deps}

	ug := g.Group("/universities/:id", auth)
	ug.POST("/courses", api.create)
	ug.GET("/my-courses", api.studentCourses)
	ug.POST("/courses/:courseID/enrollments", api.enroll)
}

// Handlers

func (api *courseApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data course.NewCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	crs, err := api.deps.CourseSvc.Create(ctx.Request().Context(), usr, pathID(ctx, "id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) enroll(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data course.NewEnrollment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEnrollment")
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	enr, err := api.deps.CourseSvc.Enroll(
		ctx.Request().Context(), usr, pathID(ctx, "id"), pathID(ctx, "courseID"), data.StudentID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, enr)
}

func (api *courseApi) studentCourses(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	courses, err := api.deps.CourseSvc.StudentCourses(ctx.Request().Context(), usr, pathID(ctx, "id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, courses)
}
