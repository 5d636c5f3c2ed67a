package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/pkg/errors"

	. "github.com/trezcool/markaz/apps/api/echo"
	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/attendance"
	"github.com/trezcool/markaz/core/certificate"
	"github.com/trezcool/markaz/core/sheet"
	"github.com/trezcool/markaz/core/student"
	emailsvc "github.com/trezcool/markaz/services/email"
	dummydb "github.com/trezcool/markaz/storage/database/dummy"
	testutil "github.com/trezcool/markaz/tests"
)

var (
	errMissingToken = httpErr{Error: "missing or malformed jwt"}

	teacherID = "t1"
	students  = []student.Student{
		{ID: "s1", DisplayName: "Aisha", Phone: "0501234567"},
		{ID: "s2", DisplayName: "Omar"},
	}
)

type fixture struct {
	conf    *core.Config
	app     *Server
	logger  *testutil.Logger
	records interface {
		attendance.Repository
		Count() int
	}
	certs interface{ All() []certificate.Certificate }
}

// failingRegistry fails every listing, to exercise the load-failure path.
type failingRegistry struct{}

func (failingRegistry) ListAssigned(context.Context, string) ([]student.Student, error) {
	return nil, errors.New("registry unavailable")
}

// setup serves the sheet API over in-memory repos holding the two students of teacherID and recs.
// A registry replaces the in-memory one.
func setup(t *testing.T, registry student.Registry, recs ...attendance.Record) *fixture {
	conf := testutil.NewConfig()
	logger := new(testutil.Logger)
	validate, translator := testutil.NewValidator()
	core.ParseEmailTemplates(conf, logger)
	emailsvc.ResetSentMessages()

	db := dummydb.Open()
	if registry == nil {
		reg := dummydb.NewStudentRegistry(db)
		reg.Assign(teacherID, students...)
		registry = reg
	}
	records := dummydb.NewRecordRepository(db)
	for _, rec := range recs {
		if _, err := records.UpsertSheetRecord(context.Background(), rec); err != nil {
			t.Fatalf("UpsertSheetRecord(): %v", err)
		}
	}
	certs := dummydb.NewCertificateRepository(db)
	certSvc := certificate.NewService(nil, certs, emailsvc.NewConsoleServiceMock(conf), conf)

	svc := sheet.NewService(sheet.Deps{
		Registry:      registry,
		Records:       records,
		Issuer:        certSvc,
		Logger:        logger,
		AutoSaveDelay: conf.Sheet.AutoSaveDelay,
	})
	t.Cleanup(func() { _ = svc.Shutdown(context.Background()) })

	return &fixture{
		conf:    conf,
		logger:  logger,
		records: records,
		certs:   certs,
		app: NewServer(ServerDeps{
			Conf:       conf,
			Logger:     logger,
			SheetSvc:   svc,
			Validate:   validate,
			Translator: translator,
		}),
	}
}

func (f *fixture) token(t *testing.T, claims *Claims) string {
	token, err := GenerateToken(f.conf, claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func (f *fixture) teacherToken(t *testing.T) string {
	return f.token(t, NewTeacherClaims(f.conf, teacherID, "teacher", "teacher@markaz.test"))
}

func (f *fixture) serve(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	f.app.ServeHTTP(rec, req)
	return rec
}

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

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("json.Unmarshal(): %v; body %s", err, rec.Body.String())
	}
}
