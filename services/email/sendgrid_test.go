package emailsvc

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/mail"
	"sync"
	"testing"

	"github.com/sendgrid/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/markaz/core"
	testutil "github.com/trezcool/markaz/tests"
)

func Test_sendgridService_SendMessages(t *testing.T) {
	conf := testutil.NewConfig()
	conf.SendgridApiKey = "sg-key"

	logger := new(testutil.Logger)
	core.ParseEmailTemplates(conf, logger)

	origAPI := sendgridAPIFunc
	t.Cleanup(func() { sendgridAPIFunc = origAPI })

	var (
		mu   sync.Mutex
		reqs []rest.Request
	)
	status := http.StatusAccepted
	sendgridAPIFunc = func(req rest.Request) (*rest.Response, error) {
		mu.Lock()
		defer mu.Unlock()
		reqs = append(reqs, req)
		return &rest.Response{StatusCode: status, Body: "nope"}, nil
	}

	svc := NewSendgridService(conf, logger)

	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: "Office", Address: "office@markaz.test"}},
		Subject:      "Attendance sheet 2026-10",
		TemplateName: "sheet_report",
		TemplateData: map[string]interface{}{"TeacherID": "t1", "Month": "2026-10"},
	}
	require.NoError(t, msg.Attach(bytes.NewBufferString("xlsx"), "attendance_t1_2026-10.xlsx", "application/octet-stream"))
	noRecipient := &core.EmailMessage{Subject: "lost", BodyStr: "nobody reads this"}

	svc.SendMessages(msg, noRecipient)
	svc.Wait()

	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "Bearer sg-key", reqs[0].Headers["Authorization"])

	var body struct {
		Personalizations []struct {
			To      []struct{ Email string } `json:"to"`
			Subject string                   `json:"subject"`
		} `json:"personalizations"`
		Content     []struct{ Type, Value string } `json:"content"`
		Attachments []struct {
			Content  string `json:"content"`
			Filename string `json:"filename"`
		} `json:"attachments"`
	}
	require.NoError(t, json.Unmarshal(reqs[0].Body, &body))
	require.Len(t, body.Personalizations, 1)
	assert.Equal(t, "office@markaz.test", body.Personalizations[0].To[0].Email)
	assert.Equal(t, "["+conf.AppName+"] Attendance sheet 2026-10", body.Personalizations[0].Subject)
	require.NotEmpty(t, body.Content)
	assert.Contains(t, body.Content[0].Value, "teacher t1 for 2026-10")
	require.Len(t, body.Attachments, 1)
	assert.Equal(t, "eGxzeA==", body.Attachments[0].Content)
	assert.Empty(t, logger.Entries("error"))

	t.Run("failed delivery is logged", func(t *testing.T) {
		status = http.StatusBadRequest
		svc.SendMessages(msg)
		svc.Wait()

		errs := logger.Entries("error")
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Message, "status: 400")
	})
}
