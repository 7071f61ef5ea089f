package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	return m.Called(name, kind, durable).Error(0)
}

func (m *MockChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	a := m.Called(name, durable)
	return amqp.Queue{Name: name}, a.Error(0)
}

func (m *MockChannel) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	return m.Called(name, key, exchange).Error(0)
}

func (m *MockChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(exchange, key, msg).Error(0)
}

func (m *MockChannel) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	a := m.Called(queue, autoAck)
	msgs, _ := a.Get(0).(<-chan amqp.Delivery)
	return msgs, a.Error(1)
}

func (m *MockChannel) Close() error {
	return m.Called().Error(0)
}

// recorder is an amqp.Acknowledger remembering how each delivery was settled.
type recorder struct {
	mu      sync.Mutex
	acked   []uint64
	nacked  map[uint64]bool
	settled chan struct{}
}

func newRecorder() *recorder {
	return &recorder{nacked: make(map[uint64]bool), settled: make(chan struct{}, 16)}
}

func (r *recorder) Ack(tag uint64, multiple bool) error {
	r.mu.Lock()
	r.acked = append(r.acked, tag)
	r.mu.Unlock()
	r.settled <- struct{}{}
	return nil
}

func (r *recorder) Nack(tag uint64, multiple, requeue bool) error {
	r.mu.Lock()
	r.nacked[tag] = requeue
	r.mu.Unlock()
	r.settled <- struct{}{}
	return nil
}

func (r *recorder) Reject(tag uint64, requeue bool) error {
	return r.Nack(tag, false, requeue)
}

func newTestClient(t *testing.T) (*Client, *MockChannel) {
	t.Helper()
	ch := new(MockChannel)
	ch.On("ExchangeDeclare", Exchange, amqp.ExchangeTopic, true).Return(nil)
	ch.On("QueueDeclare", OrderQueue, true).Return(nil)
	ch.On("QueueBind", OrderQueue, "order.*", Exchange).Return(nil)

	c, err := newClient(ch, zap.NewNop())
	require.NoError(t, err)
	return c, ch
}

func TestNewClient_DeclaresTopology(t *testing.T) {
	_, ch := newTestClient(t)
	ch.AssertExpectations(t)
}

func TestNewClient_DeclareFailure(t *testing.T) {
	ch := new(MockChannel)
	ch.On("ExchangeDeclare", Exchange, amqp.ExchangeTopic, true).Return(errors.New("access refused"))

	_, err := newClient(ch, zap.NewNop())
	assert.ErrorContains(t, err, "failed to declare exchange")
}

func TestNewClient_DialFailure(t *testing.T) {
	_, err := NewClient(Config{URL: "not-a-url"}, zap.NewNop())
	assert.ErrorContains(t, err, "failed to connect to RabbitMQ")
}

func TestPublish(t *testing.T) {
	c, ch := newTestClient(t)
	ch.On("Publish", Exchange, "order.created", mock.MatchedBy(func(msg amqp.Publishing) bool {
		var body map[string]interface{}
		return json.Unmarshal(msg.Body, &body) == nil &&
			body["orderId"] == "o1" &&
			msg.ContentType == "application/json" &&
			msg.DeliveryMode == amqp.Persistent
	})).Return(nil).Once()

	err := c.Publish(context.Background(), "order.created", map[string]string{"orderId": "o1"})
	require.NoError(t, err)
	ch.AssertExpectations(t)
}

func TestPublish_Errors(t *testing.T) {
	c, ch := newTestClient(t)
	ch.On("Publish", Exchange, "order.created", mock.Anything).Return(errors.New("channel closed"))

	err := c.Publish(context.Background(), "order.created", map[string]string{})
	assert.ErrorContains(t, err, "failed to publish order.created event")

	err = c.Publish(context.Background(), "order.created", make(chan int))
	assert.ErrorContains(t, err, "failed to marshal")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Publish(ctx, "order.created", nil), context.Canceled)
}

func TestConsumeOrderEvents(t *testing.T) {
	c, ch := newTestClient(t)
	deliveries := make(chan amqp.Delivery, 3)
	ch.On("Consume", OrderQueue, false).Return((<-chan amqp.Delivery)(deliveries), nil)

	rec := newRecorder()
	require.NoError(t, c.ConsumeOrderEvents(func(msg amqp.Delivery) error {
		if string(msg.Body) == "bad" {
			return errors.New("undecodable")
		}
		return nil
	}))

	deliveries <- amqp.Delivery{Acknowledger: rec, DeliveryTag: 1, Body: []byte(`{}`)}
	deliveries <- amqp.Delivery{Acknowledger: rec, DeliveryTag: 2, Body: []byte("bad")}
	deliveries <- amqp.Delivery{Acknowledger: rec, DeliveryTag: 3, Body: []byte("bad"), Redelivered: true}
	close(deliveries)

	for i := 0; i < 3; i++ {
		select {
		case <-rec.settled:
		case <-time.After(2 * time.Second):
			t.Fatal("delivery was not settled")
		}
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []uint64{1}, rec.acked)
	assert.Equal(t, map[uint64]bool{2: true, 3: false}, rec.nacked)
}

func TestConsumeOrderEvents_RegisterFailure(t *testing.T) {
	c, ch := newTestClient(t)
	ch.On("Consume", OrderQueue, false).Return(nil, errors.New("not allowed"))

	err := c.ConsumeOrderEvents(func(amqp.Delivery) error { return nil })
	assert.ErrorContains(t, err, "failed to register consumer")
}
