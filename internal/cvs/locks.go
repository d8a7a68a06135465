package cvs

import (
	"hash/fnv"
	"sync"
)

// lockStripes bounds the lock state held by a Service regardless of how many
// user ids it sees. Users that hash to the same stripe serialize on each other.
const lockStripes = 256

// stripedLocks maps user ids onto a fixed set of mutexes. The three families are
// always taken in the order quota, manager, working, and a caller never holds two
// locks of the same family, so stripe collisions cannot deadlock.
type stripedLocks struct {
	quota   [lockStripes]sync.Mutex
	manager [lockStripes]sync.Mutex
	working [lockStripes]sync.Mutex
}

func stripe(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % lockStripes)
}
