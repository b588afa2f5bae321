package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/caisse_ledger/internal/core/domain"
	"github.com/SscSPs/caisse_ledger/internal/events"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	mu         sync.Mutex
	declared   []string
	published  []amqp091.Publishing
	keys       []string
	publishErr error
	closed     bool
}

func (c *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error {
	c.declared = append(c.declared, name+":"+kind)
	return nil
}

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.publishErr != nil {
		return c.publishErr
	}
	c.keys = append(c.keys, key)
	c.published = append(c.published, msg)
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func (c *fakeChannel) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.published)
}

func TestForwarder_Forward(t *testing.T) {
	ch := &fakeChannel{}
	f, err := newForwarderWithChannel(ch, "ledger.events")
	require.NoError(t, err)
	assert.Equal(t, []string{"ledger.events:topic"}, ch.declared)

	evt := events.New(events.AccountArchived, domain.AccountRef{Kind: domain.BankAccount, ID: "b1"}, map[string]string{"period": "2025-01"})
	require.NoError(t, f.Forward(context.Background(), evt))

	require.Len(t, ch.published, 1)
	assert.Equal(t, "account.archived", ch.keys[0])
	assert.Equal(t, evt.ID, ch.published[0].MessageId)
	assert.Equal(t, "application/json", ch.published[0].ContentType)

	var decoded events.Event
	require.NoError(t, json.Unmarshal(ch.published[0].Body, &decoded))
	assert.Equal(t, evt.Type, decoded.Type)
	assert.Equal(t, evt.Account, decoded.Account)
}

func TestForwarder_ForwardError(t *testing.T) {
	ch := &fakeChannel{publishErr: errors.New("channel closed")}
	f, err := newForwarderWithChannel(ch, "ledger.events")
	require.NoError(t, err)

	err = f.Forward(context.Background(), events.New(events.AccountReset, domain.AccountRef{}, nil))
	assert.ErrorContains(t, err, "publish event")
}

func TestForwarder_RunStopsWithContext(t *testing.T) {
	ch := &fakeChannel{}
	f, err := newForwarderWithChannel(ch, "ledger.events")
	require.NoError(t, err)

	broker := events.NewBroker(8)
	defer broker.Close()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.Run(ctx, broker)
		close(done)
	}()

	require.Eventually(t, func() bool { return broker.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	broker.Publish(context.Background(), events.New(events.TransactionRecorded, domain.AccountRef{}, nil))
	require.Eventually(t, func() bool { return ch.count() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("forwarder did not stop")
	}
	require.NoError(t, f.Close())
	assert.True(t, ch.closed)
}
