package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spec-kit/complaint-service/internal/domain"
)

func TestInMemoryDispatcher_FailingHandlerDoesNotStopOthers(t *testing.T) {
	d := NewInMemoryDispatcher(zaptest.NewLogger(t))
	var calls []string
	d.Subscribe(EventTicketEscalated, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventTicketEscalated, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls = append(calls, "created")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketEscalated, TicketID: "t1"}))
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestInMemoryDispatcher_WildcardAfterTypedAndPanicRecovered(t *testing.T) {
	d := NewInMemoryDispatcher(zaptest.NewLogger(t))
	var calls []string
	d.SubscribeAll(func(_ context.Context, e Event) error {
		calls = append(calls, "all:"+string(e.Type))
		return nil
	})
	d.Subscribe(EventSLAOverdue, func(context.Context, Event) error {
		panic("nil map")
	})
	d.Subscribe(EventSLAOverdue, func(context.Context, Event) error {
		calls = append(calls, "typed")
		return nil
	})

	require.NotPanics(t, func() {
		require.NoError(t, d.Publish(context.Background(), Event{Type: EventSLAOverdue}))
	})
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketCreated}))

	assert.Equal(t, []string{"typed", "all:" + string(EventSLAOverdue), "all:" + string(EventTicketCreated)}, calls)
}

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type inlineSubmitter struct{ reject bool }

func (s inlineSubmitter) Submit(task func()) error {
	if s.reject {
		return errors.New("pool overloaded")
	}
	task()
	return nil
}

func TestForwardTo_PublishesWithRoutingKey(t *testing.T) {
	logger := zaptest.NewLogger(t)
	d := NewInMemoryDispatcher(logger)
	publisher := &recordingPublisher{}
	ForwardTo(d, publisher, inlineSubmitter{}, logger)

	ctx := context.Background()
	require.NoError(t, d.Publish(ctx, Event{Type: EventTicketCreated}))
	require.NoError(t, d.Publish(ctx, Event{Type: EventSLAOverdue}))

	assert.Equal(t, []string{"ticket.created", "sla.overdue"}, publisher.keys)
}

func TestForwardTo_DroppedTaskDoesNotFailPublish(t *testing.T) {
	logger := zaptest.NewLogger(t)
	d := NewInMemoryDispatcher(logger)
	publisher := &recordingPublisher{}
	ForwardTo(d, publisher, inlineSubmitter{reject: true}, logger)

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketDeleted}))
	assert.Empty(t, publisher.keys)
}

func TestRoutingKeys(t *testing.T) {
	seen := map[string]bool{}
	for _, eventType := range AllEventTypes {
		key := eventType.RoutingKey()
		assert.False(t, seen[key], key)
		seen[key] = true
	}
	assert.Equal(t, "ticket.done_by_uic", EventTicketDoneByUIC.RoutingKey())
}

func TestActorOf(t *testing.T) {
	actor := ActorOf(domain.Actor{ID: 7, Kind: domain.ActorKindEmployee})
	assert.Equal(t, domain.SenderTypeEmployee, actor.Type)
	require.NotNil(t, actor.ID)
	assert.Equal(t, int64(7), *actor.ID)

	system := ActorOf(domain.SystemActor)
	assert.Equal(t, domain.SenderTypeSystem, system.Type)
	assert.Nil(t, system.ID)
}
