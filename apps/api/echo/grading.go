package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/alama/core/grading"
)

type gradingApi struct {
	deps ServerDeps
}

func registerGradingAPI(g *echo.Group, auth echo.MiddlewareFunc, deps ServerDeps) {
	api := gradingApi{deps: deps}

	cg := g.Group("/universities/:id/courses/:courseID", auth)

	// lecturer endpoints
	cg.POST("/schemas", api.createSchema)
	cg.GET("/schemas", api.querySchemas)
	cg.GET("/schemas/:schemaID", api.retrieveSchema)
	cg.PUT("/schemas/:schemaID", api.updateSchema)
	cg.DELETE("/schemas/:schemaID", api.destroySchema)
	cg.PUT("/students/:studentID/notes/:schemaID", api.recordNote)

	// student endpoints
	cg.GET("/my-report", api.studentReport)
	cg.GET("/my-status", api.studentStatus)
}

// Handlers

func (api *gradingApi) createSchema(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data grading.NewNoteSchema
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNoteSchema")
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	ns, err := api.deps.GradingSvc.CreateSchema(
		ctx.Request().Context(), usr, pathID(ctx, "id"), pathID(ctx, "courseID"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, ns)
}

func (api *gradingApi) querySchemas(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	schemas, err := api.deps.GradingSvc.Schemas(
		ctx.Request().Context(), usr, pathID(ctx, "id"), pathID(ctx, "courseID"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, schemas)
}

func (api *gradingApi) retrieveSchema(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	ns, err := api.deps.GradingSvc.Schema(
		ctx.Request().Context(), usr, pathID(ctx, "id"), pathID(ctx, "courseID"), pathID(ctx, "schemaID"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ns)
}

func (api *gradingApi) updateSchema(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data grading.UpdateNoteSchema
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateNoteSchema")
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	ns, err := api.deps.GradingSvc.UpdateSchema(
		ctx.Request().Context(), usr, pathID(ctx, "id"), pathID(ctx, "courseID"), pathID(ctx, "schemaID"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ns)
}

func (api *gradingApi) destroySchema(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	err = api.deps.GradingSvc.DeleteSchema(
		ctx.Request().Context(), usr, pathID(ctx, "id"), pathID(ctx, "courseID"), pathID(ctx, "schemaID"))
	if err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *gradingApi) recordNote(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data grading.UpsertNote
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpsertNote")
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	err = api.deps.GradingSvc.RecordNote(
		ctx.Request().Context(), usr,
		pathID(ctx, "id"), pathID(ctx, "courseID"), pathID(ctx, "studentID"), pathID(ctx, "schemaID"), data)
	if err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *gradingApi) studentReport(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	report, err := api.deps.GradingSvc.StudentReport(
		ctx.Request().Context(), usr, pathID(ctx, "id"), pathID(ctx, "courseID"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *gradingApi) studentStatus(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	status, err := api.deps.GradingSvc.StudentStatus(
		ctx.Request().Context(), usr, pathID(ctx, "id"), pathID(ctx, "courseID"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, status)
}
