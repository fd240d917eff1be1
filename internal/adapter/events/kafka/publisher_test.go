package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/loanticker/internal/domain"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublisher_WritesKeyedMessage(t *testing.T) {
	w := &fakeWriter{}
	p := &Publisher{writer: w}
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	err := p.Publish(context.Background(), domain.LoanEvent{
		EventType:      domain.EventTypeLoanStatusChanged,
		LoanID:         1709285400000,
		Loan:           domain.LoanRecord{ID: 1709285400000, Name: "Budi", Status: domain.LoanStatusApproved},
		PreviousStatus: domain.LoanStatusPending,
		OccurredAt:     at,
	})
	require.NoError(t, err)
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "1709285400000", string(msg.Key))
	assert.Equal(t, at, msg.Time)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "loan.status_changed", string(msg.Headers[0].Value))

	var decoded domain.LoanEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, domain.LoanStatusPending, decoded.PreviousStatus)
	assert.Equal(t, "Budi", decoded.Loan.Name)
}

func TestPublisher_PropagatesWriteError(t *testing.T) {
	p := &Publisher{writer: &fakeWriter{err: errors.New("broker down")}}

	err := p.Publish(context.Background(), domain.LoanEvent{LoanID: 1})
	assert.EqualError(t, err, "broker down")
}

func TestNewPublisher_DefaultTopic(t *testing.T) {
	p := NewPublisher([]string{"localhost:9092"}, "")
	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, DefaultTopic, w.Topic)
	require.NoError(t, p.Close())
}
