package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/srgjo27/lodging_booking/internal/core/domain"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
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

func sampleEvent() domain.ReservationEvent {
	r := &domain.Reservation{
		ID:        11,
		TenantID:  1,
		ListingID: 42,
		StartDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
		Status:    domain.ReservationConfirmed,
	}
	return domain.NewReservationEvent(domain.EventReservationConfirmed, r, 99)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, zaptest.NewLogger(t))
	event := sampleEvent()

	require.NoError(t, p.Publish(context.Background(), event))
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "42", string(msg.Key))
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, "reservation.confirmed", string(msg.Headers[0].Value))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "reservation.confirmed", decoded["type"])
	assert.Equal(t, "2025-06-01", decoded["start_date"])
	assert.Equal(t, "confirmed", decoded["status"])
	assert.EqualValues(t, 99, decoded["actor_id"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := newKafkaPublisher(&fakeWriter{err: errors.New("broker down")}, zaptest.NewLogger(t))

	err := p.Publish(context.Background(), sampleEvent())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestNoopPublisher(t *testing.T) {
	p := NewNoopPublisher(zaptest.NewLogger(t))
	assert.NoError(t, p.Publish(context.Background(), sampleEvent()))
}
