package server

import (
	"errors"
	"sync"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/chaos-io/cutout/editor"
)

var ErrSessionNotFound = errors.New("server: session not found")

type entry struct {
	mu       sync.Mutex
	session  *editor.Session
	lastUsed time.Time
}

// Store 内存中的编辑会话，id 用 ksuid
// 每个会话自带一把锁，同一会话上的命令串行执行
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

func (s *Store) Create(sess *editor.Session) string {
	id := ksuid.New().String()

	s.mu.Lock()
	s.entries[id] = &entry{session: sess, lastUsed: s.now()}
	s.mu.Unlock()
	return id
}

// With 持有会话锁执行 fn
func (s *Store) With(id string, fn func(*editor.Session) error) error {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastUsed = s.now()
	return fn(e.session)
}

func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return false
	}
	delete(s.entries, id)
	return true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep 删除空闲超过 ttl 的会话，正在执行命令的会话跳过
func (s *Store) Sweep(ttl time.Duration) int {
	deadline := s.now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, e := range s.entries {
		if !e.mu.TryLock() {
			continue
		}
		idle := e.lastUsed.Before(deadline)
		e.mu.Unlock()
		if idle {
			delete(s.entries, id)
			n++
		}
	}
	return n
}
