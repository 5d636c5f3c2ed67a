package testutil

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/attendance"
	"github.com/trezcool/markaz/storage/database"
)

// NewConfig returns the TEST configuration. Auto-saves are pushed far away so tests flush explicitly.
func NewConfig() *core.Config {
	if os.Getenv("ENV") == "" {
		_ = os.Setenv("ENV", "TEST")
	}
	conf := core.NewConfig()
	conf.Debug = false
	conf.TestMode = true
	conf.Sheet.AutoSaveDelay = time.Hour
	return conf
}

// NewValidator returns a validator with every app validation tag registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	attendance.InitValidators(validate, translator)
	return validate, translator
}

type LogEntry struct {
	Level   string
	Message string
	Args    []interface{}
}

// Logger records log entries in memory.
type Logger struct {
	mu      sync.Mutex
	entries []LogEntry
}

var _ core.Logger = (*Logger)(nil) // interface compliance check

func (l *Logger) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Message: msg, Args: args})
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("debug", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("info", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("warn", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("error", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) { l.log("fatal", msg, args) }

// Entries returns the entries logged at level, or all of them when level is empty.
func (l *Logger) Entries(level string) []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	var entries []LogEntry
	for _, e := range l.entries {
		if level == "" || e.Level == level {
			entries = append(entries, e)
		}
	}
	return entries
}

// PrepareDB opens the TEST database, migrates it and empties every table.
// The test is skipped when no database is reachable.
func PrepareDB(t *testing.T) *sql.DB {
	t.Helper()

	conf := NewConfig()
	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("database.Open(): %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		t.Skipf("database not reachable: %v", err)
	}

	if err = database.Migrate(db, conf); err != nil {
		_ = db.Close()
		t.Fatalf("database.Migrate(): %v", err)
	}
	ResetDB(t, db)

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// ResetDB deletes all the data of the app tables.
func ResetDB(t *testing.T, db *sql.DB) {
	t.Helper()
	if _, err := db.Exec("TRUNCATE certificate, sheet_record, teacher_student, student CASCADE"); err != nil {
		t.Fatalf("ResetDB(): %v", err)
	}
}

// Float returns a pointer to f.
func Float(f float64) *float64 { return &f }

// String returns a pointer to s.
func String(s string) *string { return &s }
