package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fayiz2005/Kaze/config"
	"github.com/fayiz2005/Kaze/internal/service"

	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gopkgmail "gopkg.in/gomail.v2"
)

var testMsg = service.Notification{To: "jane@example.com", Subject: "Order Confirmation", Body: "Thank you for your order, Jane!"}

func TestEmailSender_BuildsPlainTextMessage(t *testing.T) {
	var got *gopkgmail.Message
	s := NewEmailSender(config.SMTP{Host: "smtp.example.com", Port: 465, From: "shop@example.com", SSL: true})
	s.send = func(m *gopkgmail.Message) error {
		got = m
		return nil
	}

	require.NoError(t, s.Notify(context.Background(), testMsg))
	require.NotNil(t, got)
	assert.Equal(t, []string{"shop@example.com"}, got.GetHeader("From"))
	assert.Equal(t, []string{"jane@example.com"}, got.GetHeader("To"))
	assert.Equal(t, []string{"Order Confirmation"}, got.GetHeader("Subject"))
}

func TestEmailSender_Errors(t *testing.T) {
	s := NewEmailSender(config.SMTP{From: "shop@example.com"})
	s.send = func(m *gopkgmail.Message) error { return errors.New("535 auth failed") }

	err := s.Notify(context.Background(), testMsg)
	assert.ErrorContains(t, err, "535 auth failed")

	assert.Error(t, s.Notify(context.Background(), service.Notification{Subject: "x"}), "empty recipient")
}

func TestEmailSender_RespectsDeadline(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	s := NewEmailSender(config.SMTP{From: "shop@example.com"})
	s.send = func(m *gopkgmail.Message) error {
		<-release
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := s.Notify(ctx, testMsg)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestKafkaNotifier_PublishesJSON(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaNotifier{writer: w}

	require.NoError(t, p.Notify(context.Background(), testMsg))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "jane@example.com", string(w.msgs[0].Key))

	var decoded service.Notification
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, testMsg, decoded)
}

type fakeReader struct {
	msgs []kafka.Message
	i    int
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if r.i < len(r.msgs) {
		m := r.msgs[r.i]
		r.i++
		return m, nil
	}
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) Close() error { return nil }

type captureNotifier struct {
	mu   sync.Mutex
	sent []service.Notification
	err  error
}

func (c *captureNotifier) Notify(ctx context.Context, n service.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, n)
	return nil
}

func (c *captureNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

func TestKafkaEmailConsumer_SkipsBadMessages(t *testing.T) {
	good, _ := json.Marshal(testMsg)
	noRecipient, _ := json.Marshal(service.Notification{Subject: "x", Body: "y"})

	reader := &fakeReader{msgs: []kafka.Message{
		{Value: []byte("{not json")},
		{Value: noRecipient},
		{Value: good},
	}}
	sink := &captureNotifier{}
	c := &KafkaEmailConsumer{reader: reader, sender: sink, sendTimeout: time.Second, log: zap.NewNop()}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)

	assert.Equal(t, testMsg, sink.sent[0])
}

func TestBreakerNotifier_OpensAfterFailures(t *testing.T) {
	next := &captureNotifier{err: errors.New("smtp down")}
	b := NewBreakerNotifier(next, BreakerSettings{Name: "test", ConsecutiveFails: 2, OpenTimeout: time.Minute}, zap.NewNop())

	for i := 0; i < 2; i++ {
		assert.ErrorContains(t, b.Notify(context.Background(), testMsg), "smtp down")
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	err := b.Notify(context.Background(), testMsg)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestNew_Modes(t *testing.T) {
	log := zap.NewNop()

	n, closeFn, err := New(&config.Config{Notify: config.Notify{Mode: ModeLog}}, log)
	require.NoError(t, err)
	assert.IsType(t, &LogNotifier{}, n)
	assert.NoError(t, closeFn())

	n, _, err = New(&config.Config{Notify: config.Notify{Mode: ModeSMTP}, SMTP: config.SMTP{Host: "localhost", Port: 465}}, log)
	require.NoError(t, err)
	assert.IsType(t, &BreakerNotifier{}, n)

	n, closeFn, err = New(&config.Config{Notify: config.Notify{Mode: ModeKafka}, Kafka: config.Kafka{Brokers: []string{"localhost:9092"}, Topic: "kaze.email"}}, log)
	require.NoError(t, err)
	assert.IsType(t, &BreakerNotifier{}, n)
	assert.NoError(t, closeFn())

	_, _, err = New(&config.Config{Notify: config.Notify{Mode: "pigeon"}}, log)
	assert.Error(t, err)
}
