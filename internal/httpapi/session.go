package httpapi

import (
	"container/list"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	"github.com/abhisek/trigtutor/internal/exercises"
)

const (
	sessionName  = "trigtutor-session"
	sessionIDKey = "sid"
)

func newSessionStore(secret []byte) sessions.Store {
	if len(secret) == 0 {
		secret = securecookie.GenerateRandomKey(32)
	}
	store := sessions.NewCookieStore(secret)
	store.Options.HttpOnly = true
	store.Options.Path = "/"
	return store
}

const (
	maxSessions    = 10000
	sessionIdleTTL = 24 * time.Hour
)

// historyRegistry keeps one exercise history per browser session, in
// process memory only. It holds at most capacity sessions; the least recently
// used one is dropped first, and sessions idle longer than ttl start over.
type historyRegistry struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	now      func() time.Time
	order    *list.List // front is most recently used
	byID     map[string]*list.Element
}

type sessionEntry struct {
	id       string
	history  *exercises.History
	lastSeen time.Time
}

func newHistoryRegistry(capacity int, ttl time.Duration) *historyRegistry {
	return &historyRegistry{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		order:    list.New(),
		byID:     make(map[string]*list.Element),
	}
}

func (r *historyRegistry) get(id string) *exercises.History {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if el, ok := r.byID[id]; ok {
		e := el.Value.(*sessionEntry)
		if now.Sub(e.lastSeen) <= r.ttl {
			e.lastSeen = now
			r.order.MoveToFront(el)
			return e.history
		}
		r.remove(el)
	}

	r.evict(now)
	e := &sessionEntry{id: id, history: exercises.NewHistory(), lastSeen: now}
	r.byID[id] = r.order.PushFront(e)
	return e.history
}

// evict drops idle sessions from the back, then the oldest ones until there
// is room for one more.
func (r *historyRegistry) evict(now time.Time) {
	for el := r.order.Back(); el != nil; el = r.order.Back() {
		idle := now.Sub(el.Value.(*sessionEntry).lastSeen) > r.ttl
		if !idle && r.order.Len() < r.capacity {
			return
		}
		r.remove(el)
	}
}

func (r *historyRegistry) remove(el *list.Element) {
	r.order.Remove(el)
	delete(r.byID, el.Value.(*sessionEntry).id)
}

func (r *historyRegistry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.order.Len()
}

// sessionHistory returns the exercise history of the caller's session,
// starting a session when the request carries none.
func (s *Server) sessionHistory(c *gin.Context) (*exercises.History, error) {
	// A cookie that fails to decode yields a fresh session.
	session, _ := s.sessions.Get(c.Request, sessionName)

	id, _ := session.Values[sessionIDKey].(string)
	if id == "" {
		id = uuid.NewString()
		session.Values[sessionIDKey] = id
		if err := session.Save(c.Request, c.Writer); err != nil {
			return nil, err
		}
	}
	return s.histories.get(id), nil
}
