package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// Sender delivers one message; satisfied by *mail.Mailer.
type Sender interface {
	Send(to, subject, body string) error
}

// SendEmailHandler processes TaskTypeSendEmail tasks through the SMTP
// mailer. Malformed payloads are dropped instead of retried.
type SendEmailHandler struct {
	Mailer Sender
	Logger *slog.Logger
}

func (h SendEmailHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if err := h.Mailer.Send(payload.To, payload.Subject, payload.Body); err != nil {
		h.Logger.Error("send email task", slog.String("to", payload.To), slog.Any("error", err))
		return err
	}
	h.Logger.Info("email sent", slog.String("to", payload.To), slog.String("subject", payload.Subject))
	return nil
}
