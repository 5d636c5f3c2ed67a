package dummydb

import (
	"sync"

	"github.com/trezcool/markaz/core/attendance"
	"github.com/trezcool/markaz/core/certificate"
	"github.com/trezcool/markaz/core/student"
)

type (
	// DB is an in-memory store for the attendance sheet boundaries.
	DB struct {
		student     *studentTable
		record      *recordTable
		certificate *certificateTable
	}

	studentTable struct {
		sync.RWMutex
		assigned map[string][]student.Student // {teacherID: students}
	}

	recordTable struct {
		sync.RWMutex
		table map[string]*attendance.Record
		order []string
	}

	certificateTable struct {
		sync.RWMutex
		table map[string]*certificate.Certificate // {sheetRecordID: certificate}
	}
)

func Open() *DB {
	return &DB{
		student:     &studentTable{assigned: make(map[string][]student.Student)},
		record:      &recordTable{table: make(map[string]*attendance.Record)},
		certificate: &certificateTable{table: make(map[string]*certificate.Certificate)},
	}
}
