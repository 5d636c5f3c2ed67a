package exportsvc

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/markaz/core/attendance"
)

const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// FileName is the download name of a teacher's monthly sheet, eg. `attendance_t1_2026-10.xlsx`.
func FileName(teacherID string, month attendance.Month) string {
	return fmt.Sprintf("attendance_%s_%s.xlsx", teacherID, month)
}

// Header returns the column titles of the exported sheet.
func Header() []interface{} {
	header := []interface{}{"Student ID", "Student", "Phone"}
	for week := 1; week <= attendance.WeeksPerMonth; week++ {
		for _, day := range attendance.Weekdays {
			header = append(header, fmt.Sprintf("W%d %s", week, strings.ToUpper(day.String()[:1])+day.String()[1:]))
		}
	}
	for week := 1; week <= attendance.WeeksPerMonth; week++ {
		header = append(header, fmt.Sprintf("W%d Assessment", week))
	}
	return append(header,
		"Present", "Late", "Very late", "Absent", "Attendance %",
		"Overall score", "Teacher evaluation 1", "Teacher evaluation 2", "Final grade",
		"Letter", "Status", "Notes", "Certificate",
	)
}

func rowValues(row attendance.Row) []interface{} {
	vals := []interface{}{row.StudentID, row.StudentName, row.Phone}
	for _, wr := range row.Weeks {
		for _, m := range wr.Days {
			vals = append(vals, string(m))
		}
	}
	for _, wr := range row.Weeks {
		vals = append(vals, number(wr.Assessment))
	}

	totals := row.Totals
	rate := math.Round(totals.AttendanceRate()*10000) / 100

	var notes string
	if row.Notes != nil {
		notes = *row.Notes
	}
	var cert string
	if row.HasCertificate {
		cert = "yes"
	}
	return append(vals,
		totals.Present, totals.Late, totals.VeryLate, totals.Absent, rate,
		number(row.OverallScore), number(row.TeacherEvaluation1), number(row.TeacherEvaluation2), number(row.FinalGrade),
		string(row.LetterEquivalent), string(row.Status), notes, cert,
	)
}

// number leaves the cell blank for unset scores.
func number(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

// NewWorkbook lays the rows out on a single worksheet named after the month.
// The caller must Close the returned file.
func NewWorkbook(month attendance.Month, rows []attendance.Row) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := month.String()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, "naming worksheet")
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, "creating header style")
	}

	header := Header()
	if err = f.SetSheetRow(sheet, "A1", &header); err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, "writing header")
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err = f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, "styling header")
	}
	if err = f.SetPanes(sheet, &excelize.Panes{Freeze: true, XSplit: 2, YSplit: 1, TopLeftCell: "C2", ActivePane: "bottomRight"}); err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, "freezing header")
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		vals := rowValues(row)
		if err = f.SetSheetRow(sheet, cell, &vals); err != nil {
			_ = f.Close()
			return nil, errors.Wrapf(err, "writing row of student %s", row.StudentID)
		}
	}
	return f, nil
}

// WriteSheet streams the month's rows as an XLSX workbook to w.
func WriteSheet(w io.Writer, month attendance.Month, rows []attendance.Row) error {
	f, err := NewWorkbook(month, rows)
	if err != nil {
		return err
	}
	defer f.Close()

	if err = f.Write(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}
