package engine

import (
	"sort"
	"strconv"
	"sync"
)

// entityLocks serializes check-and-mutate sequences per entity.  Two
// concurrent creates on the same post, or two resumes for the same
// client, must not both pass their admission checks; locking the
// involved post and client keys around the whole check-and-mutate
// span closes that race.  Global serialization is deliberately
// avoided: operations on unrelated posts proceed in parallel.
type entityLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func newEntityLocks() *entityLocks {
	return &entityLocks{m: make(map[string]*sync.Mutex)}
}

func (l *entityLocks) get(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	mu, ok := l.m[key]
	if !ok {
		mu = &sync.Mutex{}
		l.m[key] = mu
	}
	return mu
}

// acquire locks all keys in sorted order and returns the matching
// release function.  Sorting gives every caller the same lock order,
// which rules out deadlock between overlapping key sets.
func (l *entityLocks) acquire(keys ...string) func() {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	locked := make([]*sync.Mutex, 0, len(sorted))
	for i, k := range sorted {
		if i > 0 && sorted[i-1] == k {
			continue // duplicate key, already held
		}
		mu := l.get(k)
		mu.Lock()
		locked = append(locked, mu)
	}
	return func() {
		for i := len(locked) - 1; i >= 0; i-- {
			locked[i].Unlock()
		}
	}
}

func postKey(id uint64) string   { return "post:" + strconv.FormatUint(id, 10) }
func clientKey(id uint64) string { return "client:" + strconv.FormatUint(id, 10) }
