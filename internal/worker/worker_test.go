package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumora-academy/backend/config"
	"github.com/lumora-academy/backend/pkg/queue"
)

func emailJob(t *testing.T, payload queue.EmailPayload) *queue.Job {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return &queue.Job{ID: uuid.New().String(), Type: queue.JobTypeEmail, Payload: raw}
}

func TestProcess_SendsViaSMTP(t *testing.T) {
	cfg := config.EmailConfig{
		FromAddress: "noreply@lumora.io",
		FromName:    "Lumora Academy",
		SMTPHost:    "smtp.test",
		SMTPPort:    587,
	}
	p := NewEmailProcessor(cfg, nil, nil)

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	p.send = func(addr, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	payload := queue.EmailPayload{
		EmailType:      "enrollment_confirmation",
		EnrollmentID:   uuid.New(),
		RecipientEmail: "student@example.com",
		Subject:        "You're enrolled: Go Basics",
		BodyHTML:       "<p>Welcome</p>",
	}
	err := p.Process(context.Background(), emailJob(t, payload))
	require.NoError(t, err)

	assert.Equal(t, "smtp.test:587", gotAddr)
	assert.Equal(t, "noreply@lumora.io", gotFrom)
	assert.Equal(t, []string{"student@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: You're enrolled: Go Basics")
	assert.Contains(t, string(gotMsg), "<p>Welcome</p>")
}

func TestProcess_SkipsWhenSMTPUnconfigured(t *testing.T) {
	p := NewEmailProcessor(config.EmailConfig{}, nil, nil)
	p.send = func(string, string, []string, []byte) error {
		t.Fatal("send must not be called without SMTP config")
		return nil
	}

	err := p.Process(context.Background(), emailJob(t, queue.EmailPayload{
		RecipientEmail: "student@example.com",
	}))
	assert.NoError(t, err)
}

func TestProcess_SendFailurePropagates(t *testing.T) {
	p := NewEmailProcessor(config.EmailConfig{SMTPHost: "smtp.test", SMTPPort: 587}, nil, nil)
	p.send = func(string, string, []string, []byte) error {
		return errors.New("connection refused")
	}

	err := p.Process(context.Background(), emailJob(t, queue.EmailPayload{
		RecipientEmail: "student@example.com",
	}))
	assert.Error(t, err)
}

func TestProcess_RejectsUnknownJobType(t *testing.T) {
	p := NewEmailProcessor(config.EmailConfig{}, nil, nil)

	err := p.Process(context.Background(), &queue.Job{ID: "x", Type: "transcode"})
	assert.Error(t, err)
}

func TestProcess_RejectsBadPayload(t *testing.T) {
	p := NewEmailProcessor(config.EmailConfig{}, nil, nil)

	err := p.Process(context.Background(), &queue.Job{ID: "x", Type: queue.JobTypeEmail, Payload: []byte("{")})
	assert.Error(t, err)
}
