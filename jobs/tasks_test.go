package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []SendEmailPayload
	err  error
}

func (f *fakeSender) Send(to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, SendEmailPayload{To: to, Subject: subject, Body: body})
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSendEmailTaskRoundTrip(t *testing.T) {
	task, err := NewSendEmailTask(SendEmailPayload{
		To:      "user@example.com",
		Subject: "Welcome",
		Body:    "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, TaskTypeSendEmail, task.Type())

	sender := &fakeSender{}
	handler := SendEmailHandler{Mailer: sender, Logger: discardLogger()}
	require.NoError(t, handler.ProcessTask(context.Background(), task))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "user@example.com", sender.sent[0].To)
	assert.Equal(t, "Welcome", sender.sent[0].Subject)
}

func TestSendEmailTaskMalformedPayloadSkipsRetry(t *testing.T) {
	handler := SendEmailHandler{Mailer: &fakeSender{}, Logger: discardLogger()}
	task := asynq.NewTask(TaskTypeSendEmail, []byte("{not json"))
	err := handler.ProcessTask(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestSendEmailTaskDeliveryFailureRetries(t *testing.T) {
	task, err := NewSendEmailTask(SendEmailPayload{To: "user@example.com"})
	require.NoError(t, err)

	handler := SendEmailHandler{
		Mailer: &fakeSender{err: errors.New("relay down")},
		Logger: discardLogger(),
	}
	err = handler.ProcessTask(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}
