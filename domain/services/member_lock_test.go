package services

import (
	"sync"
	"testing"
	"time"

	"rolekeeper/domain/entities"

	"github.com/stretchr/testify/assert"
)

func TestMemberLocker_SerializesSameKey(t *testing.T) {
	t.Parallel()

	locker := NewMemberLocker()
	key := entities.MemberKey{GuildID: 1, MemberID: 2}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locker.Lock(key)
			defer unlock()

			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 0, locker.Len())
}

func TestMemberLocker_DistinctKeysDoNotBlock(t *testing.T) {
	t.Parallel()

	locker := NewMemberLocker()
	unlockA := locker.Lock(entities.MemberKey{GuildID: 1, MemberID: 1})
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := locker.Lock(entities.MemberKey{GuildID: 1, MemberID: 2})
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different member blocked")
	}
}

func TestMemberLocker_UnlockIsIdempotent(t *testing.T) {
	t.Parallel()

	locker := NewMemberLocker()
	key := entities.MemberKey{GuildID: 1, MemberID: 1}

	unlock := locker.Lock(key)
	assert.Equal(t, 1, locker.Len())
	unlock()
	unlock()
	assert.Equal(t, 0, locker.Len())

	// the key can be taken again
	unlock = locker.Lock(key)
	unlock()
	assert.Equal(t, 0, locker.Len())
}
