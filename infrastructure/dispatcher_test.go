package infrastructure

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"rolekeeper/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRouter struct {
	mu     sync.Mutex
	events []entities.ReactionEvent
	delay  time.Duration
	wg     *sync.WaitGroup
}

func (r *recordingRouter) Route(ctx context.Context, event entities.ReactionEvent) {
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	if r.wg != nil {
		r.wg.Done()
	}
}

func (r *recordingRouter) routed() []entities.ReactionEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entities.ReactionEvent, len(r.events))
	copy(out, r.events)
	return out
}

type panickingRouter struct {
	calls chan struct{}
}

func (r *panickingRouter) Route(ctx context.Context, event entities.ReactionEvent) {
	r.calls <- struct{}{}
	panic("router failure")
}

func TestDispatcher_PreservesPerMemberOrder(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup
	router := &recordingRouter{delay: 100 * time.Microsecond, wg: &wg}
	dispatcher := NewDispatcher(router, 4, 8)
	stop := dispatcher.Start(context.Background())
	defer stop()

	const perMember = 50
	members := []int64{1, 2, 3}
	wg.Add(perMember * len(members))
	for i := 0; i < perMember; i++ {
		for _, member := range members {
			require.True(t, dispatcher.Submit(entities.ReactionEvent{
				Kind:      entities.ReactionAdded,
				GuildID:   10,
				MessageID: int64(i),
				MemberID:  member,
			}))
		}
	}
	wg.Wait()

	next := make(map[int64]int64)
	for _, event := range router.routed() {
		assert.Equal(t, next[event.MemberID], event.MessageID, "member %d out of order", event.MemberID)
		next[event.MemberID] = event.MessageID + 1
	}
	for _, member := range members {
		assert.Equal(t, int64(perMember), next[member])
	}
}

func TestDispatcher_SameKeySameShard(t *testing.T) {
	t.Parallel()

	dispatcher := NewDispatcher(&recordingRouter{}, 8, 1)
	key := entities.MemberKey{GuildID: 123456789, MemberID: 987654321}

	shard := dispatcher.shardFor(key)
	for i := 0; i < 10; i++ {
		assert.Equal(t, shard, dispatcher.shardFor(key))
	}
	assert.GreaterOrEqual(t, shard, 0)
	assert.Less(t, shard, 8)
}

func TestDispatcher_SubmitBeforeStartAndAfterStop(t *testing.T) {
	t.Parallel()

	dispatcher := NewDispatcher(&recordingRouter{}, 2, 4)
	assert.False(t, dispatcher.Submit(entities.ReactionEvent{GuildID: 1, MemberID: 1}))

	stop := dispatcher.Start(context.Background())
	assert.True(t, dispatcher.Submit(entities.ReactionEvent{GuildID: 1, MemberID: 1}))

	stop()
	stop()
	assert.False(t, dispatcher.Submit(entities.ReactionEvent{GuildID: 1, MemberID: 1}))
}

func TestDispatcher_AcceptedEventsAreRoutedWhenStopRaces(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		workers    int
		queueSize  int
		submitters int
	}{
		{name: "roomy queues", workers: 4, queueSize: 64, submitters: 8},
		{name: "full queues", workers: 2, queueSize: 1, submitters: 16},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := &recordingRouter{delay: 50 * time.Microsecond}
			dispatcher := NewDispatcher(router, tt.workers, tt.queueSize)
			stop := dispatcher.Start(context.Background())

			var (
				wg       sync.WaitGroup
				accepted atomic.Int64
			)
			for s := 0; s < tt.submitters; s++ {
				wg.Add(1)
				go func(member int64) {
					defer wg.Done()
					for i := int64(0); ; i++ {
						if !dispatcher.Submit(entities.ReactionEvent{GuildID: 1, MemberID: member, MessageID: i}) {
							return
						}
						accepted.Add(1)
					}
				}(int64(s))
			}

			time.Sleep(20 * time.Millisecond)
			stop()
			wg.Wait()

			assert.Positive(t, accepted.Load())
			assert.Len(t, router.routed(), int(accepted.Load()))
		})
	}
}

func TestDispatcher_RecoversFromRouterPanic(t *testing.T) {
	t.Parallel()

	router := &panickingRouter{calls: make(chan struct{}, 2)}
	dispatcher := NewDispatcher(router, 1, 4)
	stop := dispatcher.Start(context.Background())
	defer stop()

	require.True(t, dispatcher.Submit(entities.ReactionEvent{GuildID: 1, MemberID: 1}))
	require.True(t, dispatcher.Submit(entities.ReactionEvent{GuildID: 1, MemberID: 1}))

	for i := 0; i < 2; i++ {
		select {
		case <-router.calls:
		case <-time.After(2 * time.Second):
			t.Fatal("worker stopped after panic")
		}
	}
}

func TestDispatcher_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	dispatcher := NewDispatcher(&recordingRouter{}, 2, 4)
	stop := dispatcher.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stop did not return after context cancellation")
	}
}
