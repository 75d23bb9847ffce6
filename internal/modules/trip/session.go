package trip

import (
	"context"
	"sync"
	"time"

	"tow-trip-planner/internal/models"
)

// sessionIdleTTL drops sessions nobody planned with for a day.
const sessionIdleTTL = 24 * time.Hour

type session struct {
	seq     uint64
	cancel  context.CancelFunc
	plan    *models.TripPlan
	touched time.Time
}

// sessions hands out a monotonically increasing token per session and
// keeps the latest successful plan of each session for confirmation.
type sessions struct {
	mu   sync.Mutex
	now  func() time.Time
	byID map[string]*session
}

func newSessions(now func() time.Time) *sessions {
	return &sessions{now: now, byID: make(map[string]*session)}
}

// begin starts a new request for id, cancelling the one in flight and
// dropping the saved plan, which no longer matches the newest inputs. The
// returned release func must be called when the request finishes.
func (s *sessions) begin(ctx context.Context, id string) (uint64, context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	now := s.now()
	s.prune(now)
	sess, ok := s.byID[id]
	if !ok {
		sess = &session{}
		s.byID[id] = sess
	}
	if sess.cancel != nil {
		sess.cancel()
	}
	sess.seq++
	sess.plan = nil
	sess.cancel = cancel
	sess.touched = now
	token := sess.seq
	s.mu.Unlock()

	release := func() {
		cancel()
		s.mu.Lock()
		if cur, ok := s.byID[id]; ok && cur.seq == token {
			cur.cancel = nil
		}
		s.mu.Unlock()
	}
	return token, ctx, release
}

// latest reports whether token is still the newest request of id.
func (s *sessions) latest(id string, token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[id]
	return ok && sess.seq == token
}

// commit stores plan as the session's latest plan if token is still the
// newest request.
func (s *sessions) commit(id string, token uint64, plan *models.TripPlan) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[id]
	if !ok || sess.seq != token {
		return false
	}
	sess.plan = plan
	return true
}

// take removes and returns the latest plan of id together with the token
// it was taken under.
func (s *sessions) take(id string) (*models.TripPlan, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[id]
	if !ok {
		return nil, 0
	}
	plan := sess.plan
	sess.plan = nil
	return plan, sess.seq
}

// restore puts plan back when confirming it failed, unless a newer request
// started since it was taken.
func (s *sessions) restore(id string, token uint64, plan *models.TripPlan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.byID[id]; ok && sess.seq == token && sess.plan == nil {
		sess.plan = plan
	}
}

// prune must be called with mu held.
func (s *sessions) prune(now time.Time) {
	for id, sess := range s.byID {
		if sess.cancel == nil && now.Sub(sess.touched) > sessionIdleTTL {
			delete(s.byID, id)
		}
	}
}
