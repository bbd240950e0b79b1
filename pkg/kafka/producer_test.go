package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func header(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func buildMessage(t *testing.T) Message {
	t.Helper()
	msg, err := NewMessage().
		WithKey("veh-1").
		WithEventType("booking.created").
		WithValue(map[string]string{"booking_id": "b-1"}).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return msg
}

func TestMessageBuilder(t *testing.T) {
	msg := buildMessage(t)

	if msg.GetEventID() == "" {
		t.Error("event id should be generated")
	}
	if msg.Headers[HeaderTimestamp] == "" {
		t.Error("timestamp header should be set")
	}
	var payload map[string]string
	if err := msg.DecodeValue(&payload); err != nil || payload["booking_id"] != "b-1" {
		t.Errorf("DecodeValue() = %v, %v", payload, err)
	}

	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	if !errors.Is(err, ErrInvalidMessage) {
		t.Errorf("unencodable value: err = %v, want ErrInvalidMessage", err)
	}
}

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriters(w, nil, "booking-events", "")

	var seen []string
	p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
		seen = append(seen, msg.Topic)
		return next(ctx, msg)
	})

	if err := p.Publish(context.Background(), buildMessage(t)); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(w.msgs) != 1 || string(w.msgs[0].Key) != "veh-1" {
		t.Fatalf("written = %+v", w.msgs)
	}
	if header(w.msgs[0], HeaderEventType) != "booking.created" {
		t.Error("event type header not propagated")
	}
	if len(seen) != 1 || seen[0] != "booking-events" {
		t.Errorf("middleware saw %v", seen)
	}
}

func TestProducer_RejectsInvalid(t *testing.T) {
	p := NewProducerWithWriters(&fakeWriter{}, nil, "t", "")

	if err := p.Publish(context.Background(), Message{Value: []byte("x")}); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("err = %v, want ErrEmptyKey", err)
	}
	if err := p.Publish(context.Background(), Message{Key: "k"}); !errors.Is(err, ErrEmptyValue) {
		t.Errorf("err = %v, want ErrEmptyValue", err)
	}

	_ = p.Close()
	if err := p.Publish(context.Background(), buildMessage(t)); !errors.Is(err, ErrProducerClosed) {
		t.Errorf("err = %v, want ErrProducerClosed", err)
	}
}

func TestProducer_FailedWriteGoesToDLQ(t *testing.T) {
	writeErr := errors.New("connection refused")
	w := &fakeWriter{err: writeErr}
	dlq := &fakeWriter{}
	p := NewProducerWithWriters(w, dlq, "booking-events", "dlq-booking-events")

	msg := buildMessage(t)
	err := p.Publish(context.Background(), msg)
	if !errors.Is(err, writeErr) {
		t.Fatalf("err = %v, want original write error", err)
	}
	if len(dlq.msgs) != 1 {
		t.Fatalf("dlq got %d messages", len(dlq.msgs))
	}
	if header(dlq.msgs[0], HeaderOriginalTopic) != "booking-events" {
		t.Error("original topic header missing")
	}
	if header(dlq.msgs[0], HeaderDLQError) != "connection refused" {
		t.Error("dlq error header missing")
	}
	if _, ok := msg.Headers[HeaderDLQError]; ok {
		t.Error("caller message headers must not be mutated")
	}

	if got := ClassifyError(err); got != ErrorTypeTransient {
		t.Errorf("ClassifyError() = %v, want transient", got)
	}
}

func TestProducer_CloseIsIdempotent(t *testing.T) {
	w, dlq := &fakeWriter{}, &fakeWriter{}
	p := NewProducerWithWriters(w, dlq, "t", "d")

	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if !w.closed || !dlq.closed {
		t.Error("writers should be closed")
	}
}
