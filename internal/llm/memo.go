package llm

import (
	"crypto/md5"
	"fmt"
	"strings"
	"sync"
	"time"
)

// memo keeps recent interpretations in process so repeated queries skip the
// model round trip.
type memo struct {
	mu      sync.RWMutex
	entries map[string]memoEntry
	ttl     time.Duration
	now     func() time.Time
}

type memoEntry struct {
	interpretation Interpretation
	storedAt       time.Time
}

func newMemo(ttl time.Duration) *memo {
	return &memo{
		entries: make(map[string]memoEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *memo) get(query string) (Interpretation, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[memoKey(query)]
	if !ok || m.now().Sub(entry.storedAt) > m.ttl {
		return Interpretation{}, false
	}
	return entry.interpretation, true
}

func (m *memo) set(query string, in Interpretation) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	// expired entries are dropped on write so the map stays bounded by traffic
	for k, e := range m.entries {
		if now.Sub(e.storedAt) > m.ttl {
			delete(m.entries, k)
		}
	}
	m.entries[memoKey(query)] = memoEntry{interpretation: in, storedAt: now}
}

func memoKey(query string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	return fmt.Sprintf("%x", md5.Sum([]byte(normalized)))
}
