package net

import (
	"sort"

	"github.com/ifcquery/ifcview/internal/net/packet"
)

// SessionStore tracks live sessions. Loop goroutine only.
type SessionStore struct {
	sessions map[uint64]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[uint64]*Session)}
}

func (st *SessionStore) Add(s *Session) {
	st.sessions[s.ID] = s
}

func (st *SessionStore) Remove(id uint64) {
	delete(st.sessions, id)
}

func (st *SessionStore) Get(id uint64) *Session {
	return st.sessions[id]
}

func (st *SessionStore) Count() int {
	return len(st.sessions)
}

// Raw exposes the backing map for draining loops.
func (st *SessionStore) Raw() map[uint64]*Session {
	return st.sessions
}

// Each visits sessions in id order.
func (st *SessionStore) Each(fn func(*Session)) {
	ids := make([]uint64, 0, len(st.sessions))
	for id := range st.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		fn(st.sessions[id])
	}
}

// Broadcast sends data to every authenticated, open session.
func (st *SessionStore) Broadcast(data []byte) int {
	n := 0
	for _, s := range st.sessions {
		if s.IsClosed() || s.State() != packet.StateAuthenticated {
			continue
		}
		s.Send(data)
		n++
	}
	return n
}
