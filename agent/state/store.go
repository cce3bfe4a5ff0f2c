package state

import (
	"sync"
	"time"
)

const defaultContextTTL = 30 * time.Minute

// ContextStore is the process-wide table of live conversations. Access is
// serialized per customer: operations on different customers never block each
// other, while Acquire guarantees at most one in-flight turn per customer.
type ContextStore struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	now     func() time.Time
}

type entry struct {
	mu   sync.Mutex
	conv *Conversation
}

type ContextStoreOption func(*ContextStore)

func WithNow(now func() time.Time) ContextStoreOption {
	return func(s *ContextStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewContextStore(ttl time.Duration, opts ...ContextStoreOption) *ContextStore {
	if ttl <= 0 {
		ttl = defaultContextTTL
	}
	s := &ContextStore{
		entries: make(map[string]*entry, 64),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *ContextStore) TTL() time.Duration {
	return s.ttl
}

// Get returns the live conversation for id if present and not expired. It
// does not extend the TTL. LastActivity is only read under the per-key lock;
// an entry whose lock is held has a turn in flight and is live by definition.
func (s *ContextStore) Get(id string) (*Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	if !e.mu.TryLock() {
		return e.conv, true
	}
	expired := e.conv.Expired(s.now(), s.ttl)
	e.mu.Unlock()
	if expired {
		return nil, false
	}
	return e.conv, true
}

// Acquire returns the conversation for id, creating a fresh one when absent
// or expired, and takes the per-key lock. The caller must invoke release once
// the turn is finished. Expired entries are swept lazily on every call.
func (s *ContextStore) Acquire(id string) (conv *Conversation, created bool, release func()) {
	for {
		s.mu.Lock()
		now := s.now()
		s.evictExpiredLocked(now)

		e, ok := s.entries[id]
		created = !ok
		if !ok {
			e = &entry{conv: NewConversation(id, now)}
			s.entries[id] = e
		}
		s.mu.Unlock()

		e.mu.Lock()

		// The entry may have been evicted between dropping the table lock and
		// taking the entry lock; retry against the current table in that case.
		s.mu.Lock()
		current, ok := s.entries[id]
		s.mu.Unlock()
		if ok && current == e {
			return e.conv, created, e.mu.Unlock
		}
		e.mu.Unlock()
	}
}

// Touch refreshes the conversation's last-activity timestamp. The caller must
// hold the conversation's per-key lock (as Acquire hands out); every other
// LastActivity access goes through that lock as well.
func (s *ContextStore) Touch(conv *Conversation) {
	conv.Touch(s.now())
}

// EvictExpired removes every conversation idle for longer than the TTL.
// Entries whose per-key lock is held (a turn in flight) are skipped.
func (s *ContextStore) EvictExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictExpiredLocked(now)
}

// evictExpiredLocked takes each entry's lock before reading its expiry so the
// scan never races a Touch from an in-flight turn. Held entries are skipped
// and picked up by a later sweep.
func (s *ContextStore) evictExpiredLocked(now time.Time) int {
	evicted := 0
	for id, e := range s.entries {
		if !e.mu.TryLock() {
			continue
		}
		expired := e.conv.Expired(now, s.ttl)
		if !expired {
			e.mu.Unlock()
			continue
		}
		delete(s.entries, id)
		e.mu.Unlock()
		evicted++
	}
	return evicted
}

// FindByOrder returns the id of the customer whose live conversation owns the
// order. Entries with a turn in flight are skipped; a payment notification
// racing a turn is retried by the sender.
func (s *ContextStore) FindByOrder(orderID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, e := range s.entries {
		if !e.mu.TryLock() {
			continue
		}
		match := e.conv.Order != nil && e.conv.Order.ID == orderID
		e.mu.Unlock()
		if match {
			return id, true
		}
	}
	return "", false
}

// Remove drops the conversation for id regardless of expiry (explicit
// session end).
func (s *ContextStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

func (s *ContextStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
