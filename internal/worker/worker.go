package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/cmh-events/backend/internal/emaillog"
	"github.com/cmh-events/backend/internal/mailer"
	"github.com/cmh-events/backend/pkg/metrics"
	"github.com/cmh-events/backend/pkg/queue"
)

const resetSubject = "Reset your password"

// EmailProcessor consumes email jobs from the queue, delivers them over SMTP
// and records every attempt.
type EmailProcessor struct {
	queue  *queue.Queue
	sender mailer.Sender
	log    *emaillog.Repository
	logger *zap.Logger
}

// NewEmailProcessor creates an email job processor.
func NewEmailProcessor(q *queue.Queue, sender mailer.Sender, log *emaillog.Repository, logger *zap.Logger) *EmailProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailProcessor{queue: q, sender: sender, log: log, logger: logger}
}

// Run consumes jobs until ctx is cancelled. Failed jobs are retried with the
// queue's retry/DLQ policy.
func (p *EmailProcessor) Run(ctx context.Context) {
	p.logger.Info("email worker started")
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopped")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Error("dequeue failed", zap.Error(err))
			continue
		}
		if job == nil {
			continue
		}

		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.Error(err), zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt))
			metrics.EmailJobs.WithLabelValues("failure").Inc()
			_ = p.queue.Retry(ctx, job)
			continue
		}
		metrics.EmailJobs.WithLabelValues("success").Inc()
	}
}

// Process executes one email job.
func (p *EmailProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypePasswordReset {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.PasswordResetPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	body := fmt.Sprintf(
		"A password reset was requested for this address.\r\n\r\n"+
			"Open the link below to choose a new password. The link expires in 30 minutes.\r\n\r\n%s\r\n\r\n"+
			"If you did not request this, ignore this email.\r\n",
		payload.ResetLink,
	)

	if err := p.sender.Send(payload.RecipientEmail, resetSubject, body); err != nil {
		if p.log != nil {
			_ = p.log.Record(ctx, string(job.Type), payload.RecipientEmail, resetSubject, "failed", err.Error())
		}
		return fmt.Errorf("send reset email: %w", err)
	}

	if p.log != nil {
		_ = p.log.Record(ctx, string(job.Type), payload.RecipientEmail, resetSubject, "sent", "")
	}
	p.logger.Info("reset email sent", zap.String("recipient", payload.RecipientEmail))
	return nil
}
