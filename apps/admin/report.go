package main

import (
	"bytes"
	"context"
	"fmt"
	"net/mail"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/attendance"
	"github.com/trezcool/markaz/core/sheet"
	exportsvc "github.com/trezcool/markaz/services/export"
)

// report prints the teacher's monthly sheet, or exports it to xlsxPath, or emails it to email.
func (cli *commandLine) report(teacherID string, month attendance.Month, xlsxPath, email string) error {
	sess, err := sheet.Load(context.Background(), cli.sheet, teacherID, month)
	if err != nil {
		return err
	}
	defer sess.Discard()
	rows := sess.Rows()

	switch {
	case xlsxPath != "":
		return cli.exportReport(xlsxPath, month, rows)
	case email != "":
		return cli.emailReport(email, teacherID, month, rows)
	}
	return cli.printReport(teacherID, month, rows)
}

func (cli *commandLine) printReport(teacherID string, month attendance.Month, rows []attendance.Row) error {
	fmt.Fprintf(cli.out, "Teacher %s - %s - %d student(s)\n\n", teacherID, month, len(rows))

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STUDENT\tNAME\tPRESENT\tLATE\tVERY LATE\tABSENT\tRATE\tFINAL\tLETTER\tSTATUS\tCERTIFICATE")
	for _, r := range rows {
		final := "-"
		if r.FinalGrade != nil {
			final = fmt.Sprintf("%g", *r.FinalGrade)
		}
		letter, status, cert := "-", "-", "-"
		if r.LetterEquivalent != attendance.LetterNone {
			letter = string(r.LetterEquivalent)
		}
		if r.Status != attendance.StatusUnset {
			status = string(r.Status)
		}
		if r.HasCertificate {
			cert = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%.0f%%\t%s\t%s\t%s\t%s\n",
			r.StudentID, r.StudentName,
			r.Totals.Present, r.Totals.Late, r.Totals.VeryLate, r.Totals.Absent, r.Totals.AttendanceRate()*100,
			final, letter, status, cert,
		)
	}
	return w.Flush()
}

func (cli *commandLine) exportReport(path string, month attendance.Month, rows []attendance.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating export file")
	}
	if err = exportsvc.WriteSheet(f, month, rows); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return errors.Wrap(err, "closing export file")
	}
	fmt.Fprintf(cli.out, "%d row(s) exported to %s\n", len(rows), path)
	return nil
}

func (cli *commandLine) emailReport(to, teacherID string, month attendance.Month, rows []attendance.Row) error {
	addr, err := mail.ParseAddress(to)
	if err != nil {
		return errors.Wrap(err, "parsing email address")
	}

	var buf bytes.Buffer
	if err = exportsvc.WriteSheet(&buf, month, rows); err != nil {
		return err
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{*addr},
		Subject:      fmt.Sprintf("Attendance sheet %s", month),
		TemplateName: "sheet_report",
		TemplateData: map[string]interface{}{
			"TeacherID": teacherID,
			"Month":     month.String(),
		},
	}
	if err = msg.Attach(&buf, exportsvc.FileName(teacherID, month), exportsvc.ContentTypeXLSX); err != nil {
		return err
	}

	cli.mailSvc.SendMessages(msg)
	if w, ok := cli.mailSvc.(interface{ Wait() }); ok {
		w.Wait()
	}
	fmt.Fprintf(cli.out, "sheet emailed to %s\n", addr.Address)
	return nil
}
