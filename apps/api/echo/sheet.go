package echoapi

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/attendance"
	"github.com/trezcool/markaz/core/sheet"
	exportsvc "github.com/trezcool/markaz/services/export"
)

const loadFailedNotice = "The attendance sheet could not be loaded. Please reload the page."

// SheetService keeps the open sheet of every teacher.
type SheetService interface {
	Open(ctx context.Context, teacherID string, month attendance.Month) (*sheet.Session, error)
	Get(teacherID string, month attendance.Month) (*sheet.Session, error)
	Close(ctx context.Context, teacherID string) error
}

var _ SheetService = (*sheet.Service)(nil) // interface compliance check

type (
	RowResponse struct {
		StudentID   string `json:"student_id"`
		StudentName string `json:"student_name"`
		Phone       string `json:"phone"`

		Weeks [attendance.WeeksPerMonth]attendance.WeeklyRecord `json:"weeks"`
		attendance.MonthlyTotals
		AttendanceRate float64 `json:"attendance_rate"`

		OverallScore       *float64               `json:"overall_score"`
		TeacherEvaluation1 *float64               `json:"teacher_evaluation_1"`
		TeacherEvaluation2 *float64               `json:"teacher_evaluation_2"`
		FinalGrade         *float64               `json:"final_grade"`
		LetterEquivalent   attendance.LetterGrade `json:"letter_equivalent"`
		Status             attendance.Status      `json:"status"`
		Notes              *string                `json:"notes"`

		Saved          bool `json:"saved"`
		Dirty          bool `json:"dirty"`
		HasCertificate bool `json:"has_certificate"`
	}

	SheetResponse struct {
		Month      attendance.Month `json:"month"`
		Rows       []RowResponse    `json:"rows"`
		SaveStatus sheet.SaveStatus `json:"save_status"`
		Notice     string           `json:"notice,omitempty"`
	}
)

func NewRowResponse(row attendance.Row) RowResponse {
	return RowResponse{
		StudentID:          row.StudentID,
		StudentName:        row.StudentName,
		Phone:              row.Phone,
		Weeks:              row.Weeks,
		MonthlyTotals:      row.Totals,
		AttendanceRate:     row.Totals.AttendanceRate(),
		OverallScore:       row.OverallScore,
		TeacherEvaluation1: row.TeacherEvaluation1,
		TeacherEvaluation2: row.TeacherEvaluation2,
		FinalGrade:         row.FinalGrade,
		LetterEquivalent:   row.LetterEquivalent,
		Status:             row.Status,
		Notes:              row.Notes,
		Saved:              row.PersistedID != "",
		Dirty:              row.Dirty,
		HasCertificate:     row.HasCertificate,
	}
}

func NewSheetResponse(sess *sheet.Session) SheetResponse {
	rows := sess.Rows()
	resp := SheetResponse{
		Month:      sess.Month(),
		Rows:       make([]RowResponse, len(rows)),
		SaveStatus: sess.SaveStatus(),
	}
	for i, row := range rows {
		resp.Rows[i] = NewRowResponse(row)
	}
	return resp
}

type sheetApi struct {
	svc      SheetService
	logger   core.Logger
	validate *validator.Validate
}

func registerSheetAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc SheetService, logger core.Logger, validate *validator.Validate) {
	api := sheetApi{svc: svc, logger: logger, validate: validate}

	sheets := g.Group("/sheets", jwt, teacherMiddleware)
	sheets.GET("/:month", api.open)
	sheets.DELETE("/:month", api.close)
	sheets.GET("/:month/status", api.saveStatus)
	sheets.POST("/:month/save", api.save)
	sheets.GET("/:month/export", api.export)

	sheets.GET("/:month/rows/:student", api.row)
	sheets.PUT("/:month/rows/:student/marks", api.setMark)
	sheets.PUT("/:month/rows/:student/assessments", api.setAssessment)
	sheets.PUT("/:month/rows/:student/fields", api.setField)
	sheets.POST("/:month/rows/:student/status", api.cycleStatus)
}

// session returns the teacher's open session for the `:month` path param.
func (api *sheetApi) session(ctx echo.Context) (*sheet.Session, error) {
	month, err := bindMonth(ctx)
	if err != nil {
		return nil, err
	}
	teacherID, err := contextTeacherID(ctx)
	if err != nil {
		return nil, err
	}
	sess, err := api.svc.Get(teacherID, month)
	if err != nil {
		return nil, sheetHTTPError(err)
	}
	return sess, nil
}

// open loads the teacher's sheet for the month, switching away from any other month.
// A sheet that cannot be loaded is answered with no rows and a notice.
func (api *sheetApi) open(ctx echo.Context) error {
	month, err := bindMonth(ctx)
	if err != nil {
		return err
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	sess, err := api.svc.Open(ctx.Request().Context(), claims.Subject, month)
	if err != nil {
		if errors.Cause(err) == sheet.ErrLoadFailed {
			api.logger.Error(fmt.Sprintf("opening sheet %s: %v", month, err), err, claims.person())
			return ctx.JSON(http.StatusOK, SheetResponse{
				Month:  month,
				Rows:   []RowResponse{},
				Notice: loadFailedNotice,
			})
		}
		return sheetHTTPError(errors.Wrap(err, "opening sheet"))
	}
	return ctx.JSON(http.StatusOK, NewSheetResponse(sess))
}

func (api *sheetApi) close(ctx echo.Context) error {
	sess, err := api.session(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Close(ctx.Request().Context(), sess.TeacherID()); err != nil {
		return sheetHTTPError(errors.Wrap(err, "closing sheet"))
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *sheetApi) saveStatus(ctx echo.Context) error {
	sess, err := api.session(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess.SaveStatus())
}

// save flushes the pending edits right away instead of waiting for the auto-save.
func (api *sheetApi) save(ctx echo.Context) error {
	sess, err := api.session(ctx)
	if err != nil {
		return err
	}
	if err = sess.Flush(ctx.Request().Context()); err != nil {
		return sheetHTTPError(errors.Wrap(err, "saving sheet"))
	}
	return ctx.JSON(http.StatusOK, sess.SaveStatus())
}

func (api *sheetApi) export(ctx echo.Context) error {
	sess, err := api.session(ctx)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err = exportsvc.WriteSheet(&buf, sess.Month(), sess.Rows()); err != nil {
		return errors.Wrap(err, "exporting sheet")
	}

	name := exportsvc.FileName(sess.TeacherID(), sess.Month())
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	ctx.Response().Header().Set(echo.HeaderLastModified, time.Now().UTC().Format(http.TimeFormat))
	return ctx.Blob(http.StatusOK, exportsvc.ContentTypeXLSX, buf.Bytes())
}

func (api *sheetApi) row(ctx echo.Context) error {
	sess, err := api.session(ctx)
	if err != nil {
		return err
	}
	row, err := sess.Row(ctx.Param(studentParam))
	if err != nil {
		return sheetHTTPError(err)
	}
	return ctx.JSON(http.StatusOK, NewRowResponse(row))
}

func (api *sheetApi) setMark(ctx echo.Context) error {
	sess, err := api.session(ctx)
	if err != nil {
		return err
	}

	var data MarkRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MarkRequest")
	}
	day, mark, err := data.Validate(api.validate)
	if err != nil {
		return err
	}

	row, err := sess.SetMark(ctx.Param(studentParam), data.Week, day, mark)
	if err != nil {
		return sheetHTTPError(err)
	}
	return ctx.JSON(http.StatusOK, NewRowResponse(row))
}

func (api *sheetApi) setAssessment(ctx echo.Context) error {
	sess, err := api.session(ctx)
	if err != nil {
		return err
	}

	var data AssessmentRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssessmentRequest")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	row, err := sess.SetWeeklyAssessment(ctx.Param(studentParam), data.Week, data.Score)
	if err != nil {
		return sheetHTTPError(err)
	}
	return ctx.JSON(http.StatusOK, NewRowResponse(row))
}

func (api *sheetApi) setField(ctx echo.Context) error {
	sess, err := api.session(ctx)
	if err != nil {
		return err
	}

	var data FieldRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to FieldRequest")
	}
	field, err := data.Validate(api.validate)
	if err != nil {
		return err
	}

	row, err := sess.SetField(ctx.Param(studentParam), field, data.Value)
	if err != nil {
		return sheetHTTPError(err)
	}
	return ctx.JSON(http.StatusOK, NewRowResponse(row))
}

func (api *sheetApi) cycleStatus(ctx echo.Context) error {
	sess, err := api.session(ctx)
	if err != nil {
		return err
	}
	row, err := sess.CycleStatus(ctx.Param(studentParam))
	if err != nil {
		return sheetHTTPError(err)
	}
	return ctx.JSON(http.StatusOK, NewRowResponse(row))
}
