package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"go.uber.org/zap"

	"github.com/lumora-academy/backend/config"
	"github.com/lumora-academy/backend/pkg/queue"
)

// EmailProcessor consumes email jobs from the queue and delivers them over
// SMTP. When SMTP is not configured the job is logged and acknowledged, so
// local development without a mail relay never backs up the queue.
type EmailProcessor struct {
	cfg    config.EmailConfig
	queue  *queue.Queue
	logger *zap.Logger
	send   func(addr string, from string, to []string, msg []byte) error
}

// NewEmailProcessor creates an email job processor.
func NewEmailProcessor(cfg config.EmailConfig, q *queue.Queue, logger *zap.Logger) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &EmailProcessor{cfg: cfg, queue: q, logger: logger}
	p.send = p.smtpSend
	return p
}

// Process executes one email job.
func (p *EmailProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeEmail {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	if p.cfg.SMTPHost == "" {
		p.logger.Info("smtp not configured, skipping delivery",
			zap.String("email_type", payload.EmailType),
			zap.String("recipient", payload.RecipientEmail),
			zap.String("subject", payload.Subject))
		return nil
	}

	msg := buildMessage(p.cfg, payload)
	addr := fmt.Sprintf("%s:%d", p.cfg.SMTPHost, p.cfg.SMTPPort)
	if err := p.send(addr, p.cfg.FromAddress, []string{payload.RecipientEmail}, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	p.logger.Info("email sent",
		zap.String("email_type", payload.EmailType),
		zap.String("recipient", payload.RecipientEmail),
		zap.String("enrollment_id", payload.EnrollmentID.String()))
	return nil
}

func (p *EmailProcessor) smtpSend(addr, from string, to []string, msg []byte) error {
	var auth smtp.Auth
	if p.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", p.cfg.SMTPUser, p.cfg.SMTPPass, p.cfg.SMTPHost)
	}
	return smtp.SendMail(addr, auth, from, to, msg)
}

func buildMessage(cfg config.EmailConfig, payload queue.EmailPayload) []byte {
	headers := fmt.Sprintf(
		"From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n",
		cfg.FromName, cfg.FromAddress, payload.RecipientEmail, payload.Subject)
	return []byte(headers + payload.BodyHTML)
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *EmailProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return
		default:
		}

		job, _, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
