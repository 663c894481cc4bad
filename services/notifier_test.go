package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeProvider struct {
	mu   sync.Mutex
	sent []Message
	fail func(Message) bool
}

func (p *fakeProvider) Send(_ context.Context, msg Message) error {
	if p.fail != nil && p.fail(msg) {
		return errors.New("delivery refused")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, msg)
	return nil
}

func TestSendAllCountsIndependently(t *testing.T) {
	provider := &fakeProvider{fail: func(m Message) bool {
		return strings.HasPrefix(m.To, "bad")
	}}
	n := NewNotifier(provider, zap.NewNop())

	msgs := []Message{
		{To: "a@example.com"},
		{To: "bad1@example.com"},
		{To: "b@example.com"},
		{To: "bad2@example.com"},
	}

	sent, failed := n.SendAll(context.Background(), msgs)
	assert.Equal(t, 2, sent)
	assert.Equal(t, 2, failed, "failures are per recipient, not all-or-nothing")
	assert.Len(t, provider.sent, 2)
}

func TestSendAllNilSafe(t *testing.T) {
	var n *Notifier
	sent, failed := n.SendAll(context.Background(), []Message{{To: "a@example.com"}})
	assert.Zero(t, sent)
	assert.Zero(t, failed)

	unconfigured := NewNotifier(nil, zap.NewNop())
	sent, failed = unconfigured.SendAll(context.Background(), []Message{{To: "a@example.com"}})
	assert.Zero(t, sent)
	assert.Zero(t, failed)
}
