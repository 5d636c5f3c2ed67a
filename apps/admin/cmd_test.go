package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/attendance"
	"github.com/trezcool/markaz/core/sheet"
	"github.com/trezcool/markaz/core/student"
	emailsvc "github.com/trezcool/markaz/services/email"
	dummydb "github.com/trezcool/markaz/storage/database/dummy"
	testutil "github.com/trezcool/markaz/tests"
)

const (
	teacherID = "t1"
	aishaID   = "8f14e45f-ceea-467f-a8f5-3f4a1b5f1a01"
)

type fakeAssigner struct {
	assigned map[string][]student.Student
}

func (a *fakeAssigner) Assign(_ context.Context, teacherID string, s student.Student) error {
	a.assigned[teacherID] = append(a.assigned[teacherID], s)
	return nil
}

func setup(t *testing.T) (*commandLine, *bytes.Buffer, *fakeAssigner) {
	conf := testutil.NewConfig()
	logger := new(testutil.Logger)
	core.ParseEmailTemplates(conf, logger)
	emailsvc.ResetSentMessages()

	db := dummydb.Open()
	registry := dummydb.NewStudentRegistry(db)
	registry.Assign(teacherID,
		student.Student{ID: aishaID, DisplayName: "Aisha"},
		student.Student{ID: "s2", DisplayName: "Omar"},
	)

	records := dummydb.NewRecordRepository(db)
	month, _ := attendance.ParseMonth("2026-10")
	row := attendance.NewRow(aishaID, "Aisha", "")
	for _, day := range attendance.Weekdays {
		require.NoError(t, row.SetMark(1, day, attendance.Present))
	}
	require.NoError(t, row.SetMark(2, attendance.Sunday, attendance.Absent))
	require.NoError(t, row.ApplyFieldEdit(attendance.FieldFinalGrade, 92))
	row.CycleStatus()
	_, err := records.UpsertSheetRecord(context.Background(), row.Record(teacherID, month))
	require.NoError(t, err)

	out := new(bytes.Buffer)
	assigner := &fakeAssigner{assigned: make(map[string][]student.Student)}
	return &commandLine{
		conf:     conf,
		sheet:    sheet.Deps{Registry: registry, Records: records, Logger: logger},
		assigner: assigner,
		mailSvc:  emailsvc.NewConsoleServiceMock(conf),
		out:      out,
	}, out, assigner
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func checkErr(t *testing.T, tt cliTest, err error) {
	if err != nil {
		if tt.wantErr != nil {
			if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		} else if tt.wantErrStr != "" {
			if err.Error() != tt.wantErrStr {
				t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
			}
		} else {
			t.Errorf("cli.run() unexpected error = %v", err)
		}
	} else if tt.wantErr != nil || tt.wantErrStr != "" {
		t.Errorf("cli.run() error = nil, wantErr %v %s", tt.wantErr, tt.wantErrStr)
	}
}

func Test_commandLine_run(t *testing.T) {
	cli, out, _ := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			checkErr(t, tt, cli.run(args))
			assert.Contains(t, out.String(), "Usage:")
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _, _ := setup(t)

	origRun := gooseRunFunc
	t.Cleanup(func() { gooseRunFunc = origRun })

	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		if dir != "migrations" {
			return fmt.Errorf("unexpected migrations dir %q", dir)
		}
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "branch", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}
}

func Test_commandLine_assign(t *testing.T) {
	cli, _, assigner := setup(t)

	tests := []cliTest{
		{name: "no args", args: []string{"assign"}, wantErr: errHelp},
		{name: "no name", args: []string{"assign", "-teacher", teacherID, "-student", aishaID}, wantErr: errHelp},
		{name: "student ID must be a uuid", args: []string{"assign", "-teacher", teacherID, "-student", "s9", "-name", "Layla"}, wantErrStr: `student ID "s9": invalid UUID length: 2`},
		{name: "assign", args: []string{"assign", "-teacher", teacherID, "-student", aishaID, "-name", "  Aisha ", "-phone", "0501234567"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}

	require.Len(t, assigner.assigned[teacherID], 1)
	assert.Equal(t, student.Student{ID: aishaID, DisplayName: "Aisha", Phone: "0501234567"}, assigner.assigned[teacherID][0])
}

func Test_commandLine_report(t *testing.T) {
	cli, out, _ := setup(t)

	tests := []cliTest{
		{name: "no args", args: []string{"report"}, wantErr: errHelp},
		{name: "no month", args: []string{"report", "-teacher", teacherID}, wantErr: errHelp},
		{name: "invalid month", args: []string{"report", "-teacher", teacherID, "-month", "October"}, wantErr: attendance.ErrInvalidMonth},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}

	t.Run("print", func(t *testing.T) {
		out.Reset()
		require.NoError(t, cli.run([]string{"admin", "report", "-teacher", teacherID, "-month", "2026-10"}))

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 5)
		assert.Equal(t, "Teacher t1 - 2026-10 - 2 student(s)", lines[0])
		assert.Equal(t, []string{aishaID, "Aisha", "5", "0", "0", "1", "83%", "92", "-", "passed", "-"}, strings.Fields(lines[3]))
		assert.Equal(t, []string{"s2", "Omar", "0", "0", "0", "0", "0%", "-", "-", "-", "-"}, strings.Fields(lines[4]))
	})

	t.Run("xlsx", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sheet.xlsx")
		require.NoError(t, cli.run([]string{"admin", "report", "-teacher", teacherID, "-month", "2026-10", "-xlsx", path}))

		f, err := excelize.OpenFile(path)
		require.NoError(t, err)
		defer f.Close()

		rows, err := f.GetRows("2026-10")
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, aishaID, rows[1][0])

		_, err = os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("email", func(t *testing.T) {
		require.NoError(t, cli.run([]string{"admin", "report", "-teacher", teacherID, "-month", "2026-10", "-email", "director@markaz.test"}))

		msgs := emailsvc.GetSentMessages()
		require.Len(t, msgs, 1)
		assert.Equal(t, "director@markaz.test", msgs[0].To[0].Address)
		assert.Contains(t, msgs[0].TextContent, "teacher t1 for 2026-10")
		require.Len(t, msgs[0].Attachments, 1)
		assert.Equal(t, "attendance_t1_2026-10.xlsx", msgs[0].Attachments[0].Filename)
	})
}

func Test_commandLine_token(t *testing.T) {
	cli, out, _ := setup(t)

	tests := []cliTest{
		{name: "no teacher", args: []string{"token"}, wantErr: errHelp},
		{name: "token", args: []string{"token", "-teacher", teacherID}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			checkErr(t, tt, cli.run(args))
			if tt.wantErr == nil {
				assert.Len(t, strings.Split(strings.TrimSpace(out.String()), "."), 3)
			}
		})
	}

	cli.conf.Env = "PROD"
	assert.Equal(t, errProdToken, cli.run([]string{"admin", "token", "-teacher", teacherID}))
}
