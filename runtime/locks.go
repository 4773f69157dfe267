package runtime

import (
	"hash/fnv"
	"sort"
	"strings"
	"sync"
)

const lockShards = 64

// keyedMutex serializes mutations touching the same entity key. Striping
// over a fixed shard array keeps it allocation-free; unrelated keys may
// occasionally share a shard, which only costs a little contention.
// No handler ever holds two shards, so ordering cannot deadlock.
type keyedMutex struct {
	shards [lockShards]sync.Mutex
}

// Lock acquires the shard for the key and returns its unlock function.
func (k *keyedMutex) Lock(key string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	m := &k.shards[h.Sum32()%lockShards]
	m.Lock()
	return m.Unlock
}

func roomLockKey(roomID string) string {
	return "room:" + roomID
}

// pairLockKey is order-independent so both directions of a friendship
// serialize on the same shard.
func pairLockKey(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return "pair:" + strings.Join(ids, ":")
}
