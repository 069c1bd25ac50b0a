package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cmh-events/backend/pkg/queue"
)

type memSender struct {
	sent []string
	err  error
}

func (m *memSender) Send(to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to+"|"+subject+"|"+body)
	return nil
}

func resetJob(t *testing.T, email, link string) *queue.Job {
	t.Helper()
	payload, err := json.Marshal(queue.PasswordResetPayload{RecipientEmail: email, ResetLink: link})
	require.NoError(t, err)
	return &queue.Job{ID: "job-1", Type: queue.JobTypePasswordReset, Payload: payload}
}

func TestProcessSendsResetEmail(t *testing.T) {
	sender := &memSender{}
	p := NewEmailProcessor(nil, sender, nil, zap.NewNop())

	err := p.Process(context.Background(), resetJob(t, "organizer@example.com", "http://localhost:3000/auth/reset?token=abc"))
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "organizer@example.com")
	assert.Contains(t, sender.sent[0], "http://localhost:3000/auth/reset?token=abc")
}

func TestProcessPropagatesSendFailure(t *testing.T) {
	sender := &memSender{err: errors.New("smtp refused")}
	p := NewEmailProcessor(nil, sender, nil, zap.NewNop())

	err := p.Process(context.Background(), resetJob(t, "organizer@example.com", "link"))
	assert.Error(t, err, "a failed send must bubble up so the queue can retry")
}

func TestProcessRejectsUnknownJobType(t *testing.T) {
	p := NewEmailProcessor(nil, &memSender{}, nil, zap.NewNop())

	err := p.Process(context.Background(), &queue.Job{ID: "job-2", Type: "mystery"})
	assert.Error(t, err)
}
