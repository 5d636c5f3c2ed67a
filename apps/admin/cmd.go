package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/attendance"
	"github.com/trezcool/markaz/core/sheet"
	"github.com/trezcool/markaz/core/student"
)

var errHelp = errors.New("help provided")

// studentAssigner is the part of the student registry the CLI writes to.
type studentAssigner interface {
	Assign(ctx context.Context, teacherID string, s student.Student) error
}

type commandLine struct {
	conf     *core.Config
	db       *sql.DB
	sheet    sheet.Deps
	assigner studentAssigner
	mailSvc  core.EmailService
	out      io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose command (up, up-by-one, up-to, down, down-to, redo, reset, status, version, create, fix)")
	fmt.Fprintln(cli.out, "  assign -teacher ID -student ID -name NAME [-phone PHONE] - assign a student to a teacher")
	fmt.Fprintln(cli.out, "  report -teacher ID -month YYYY-MM [-xlsx FILE] [-email ADDRESS] - print, export or email a monthly sheet")
	fmt.Fprintln(cli.out, "  token -teacher ID [-username USERNAME] [-email EMAIL] - generate a teacher token (DEV only)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	assignCmd := flag.NewFlagSet("assign", flag.ContinueOnError)
	assignTeacher := assignCmd.String("teacher", "", "The teacher's ID.")
	assignStudent := assignCmd.String("student", "", "The student's ID (uuid).")
	assignName := assignCmd.String("name", "", "The student's display name.")
	assignPhone := assignCmd.String("phone", "", "The student's phone number.")

	reportCmd := flag.NewFlagSet("report", flag.ContinueOnError)
	reportTeacher := reportCmd.String("teacher", "", "The teacher's ID.")
	reportMonth := reportCmd.String("month", "", "The month of the sheet (YYYY-MM).")
	reportXLSX := reportCmd.String("xlsx", "", "Export the sheet to this XLSX file instead of printing it.")
	reportEmail := reportCmd.String("email", "", "Email the XLSX sheet to this address instead of printing it.")

	tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
	tokenTeacher := tokenCmd.String("teacher", "", "The teacher's ID.")
	tokenUname := tokenCmd.String("username", "", "The teacher's username.")
	tokenEmail := tokenCmd.String("email", "", "The teacher's email.")

	for _, fs := range []*flag.FlagSet{assignCmd, reportCmd, tokenCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "assign":
		if err := assignCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *assignTeacher == "" || *assignStudent == "" || *assignName == "" {
			assignCmd.Usage()
			return errHelp
		}
		return cli.assign(*assignTeacher, student.Student{ID: *assignStudent, DisplayName: *assignName, Phone: *assignPhone})
	case "report":
		if err := reportCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *reportTeacher == "" || *reportMonth == "" {
			reportCmd.Usage()
			return errHelp
		}
		month, err := attendance.ParseMonth(*reportMonth)
		if err != nil {
			return err
		}
		return cli.report(*reportTeacher, month, *reportXLSX, *reportEmail)
	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *tokenTeacher == "" {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(*tokenTeacher, *tokenUname, *tokenEmail)
	default:
		cli.printUsage()
		return errHelp
	}
}
