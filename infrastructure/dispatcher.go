package infrastructure

import (
	"context"
	"encoding/binary"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"rolekeeper/domain/entities"
	"rolekeeper/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultDispatchWorkers = 16
	DefaultShardQueueSize  = 256
)

// Dispatcher fans reaction events out to a fixed set of shard workers.
// Events for one (guild, member) pair always land on the same shard and are
// routed in arrival order; different pairs proceed in parallel.
type Dispatcher struct {
	router  interfaces.ReactionRouter
	shards  []chan entities.ReactionEvent
	done    chan struct{}
	running atomic.Bool
	once    sync.Once
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher with the given number of shards
func NewDispatcher(router interfaces.ReactionRouter, workers, queueSize int) *Dispatcher {
	if workers <= 0 {
		workers = DefaultDispatchWorkers
	}
	if queueSize <= 0 {
		queueSize = DefaultShardQueueSize
	}

	shards := make([]chan entities.ReactionEvent, workers)
	for i := range shards {
		shards[i] = make(chan entities.ReactionEvent, queueSize)
	}

	return &Dispatcher{
		router: router,
		shards: shards,
		done:   make(chan struct{}),
	}
}

// Start launches the shard workers.
// Returns a cleanup function to stop the workers gracefully
func (d *Dispatcher) Start(ctx context.Context) func() {
	for i, shard := range d.shards {
		d.wg.Add(1)
		go d.work(ctx, i, shard)
	}
	d.running.Store(true)

	log.WithField("workers", len(d.shards)).Info("Reaction dispatcher started")

	return func() {
		d.once.Do(func() {
			d.running.Store(false)
			close(d.done)
			d.wg.Wait()
			log.Info("Reaction dispatcher stopped")
		})
	}
}

// Submit queues an event on its shard. It blocks only while that shard's queue
// is full and reports false if the dispatcher is not running. An event that
// Submit accepts is routed before the stop function returns, unless the start
// context was cancelled first.
func (d *Dispatcher) Submit(event entities.ReactionEvent) bool {
	if !d.running.Load() {
		return false
	}

	shard := d.shards[d.shardFor(event.Key())]
	select {
	case <-d.done:
		return false
	case shard <- event:
		return d.accepted()
	default:
	}

	log.WithFields(log.Fields{
		"guild_id": event.GuildID,
		"user_id":  event.MemberID,
	}).Warn("Dispatcher shard queue full, waiting")

	select {
	case shard <- event:
		return d.accepted()
	case <-d.done:
		return false
	}
}

// accepted reports whether a completed send happened before stop. Workers
// drain their queue once done is closed, so such an event is still routed.
func (d *Dispatcher) accepted() bool {
	select {
	case <-d.done:
		return false
	default:
		return true
	}
}

func (d *Dispatcher) shardFor(key entities.MemberKey) int {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(key.GuildID))
	binary.LittleEndian.PutUint64(buf[8:], uint64(key.MemberID))

	h := fnv.New32a()
	_, _ = h.Write(buf[:])
	return int(h.Sum32() % uint32(len(d.shards)))
}

func (d *Dispatcher) work(ctx context.Context, index int, queue <-chan entities.ReactionEvent) {
	defer d.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-d.done:
			d.drain(ctx, index, queue)
			return
		case event := <-queue:
			d.route(ctx, event)
		}
	}
}

// drain routes whatever was queued before stop
func (d *Dispatcher) drain(ctx context.Context, index int, queue <-chan entities.ReactionEvent) {
	if pending := len(queue); pending > 0 {
		log.WithFields(log.Fields{
			"shard":   index,
			"pending": pending,
		}).Info("Draining queued reaction events on shutdown")
	}
	for {
		select {
		case event := <-queue:
			d.route(ctx, event)
		default:
			return
		}
	}
}

func (d *Dispatcher) route(ctx context.Context, event entities.ReactionEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"guild_id":   event.GuildID,
				"user_id":    event.MemberID,
				"message_id": event.MessageID,
				"panic":      r,
			}).Error("Reaction routing panicked")
		}
	}()
	d.router.Route(ctx, event)
}
