// Package scheduler provides keyed, cancellable single-shot timers.
//
// At most one timer is outstanding per key. Scheduling a key replaces (and
// cancels) any timer already installed for it. Every installation gets a fresh
// Token; a firing callback must Release its token before acting, which fails
// when the timer was cancelled or replaced after it had already fired.
package scheduler

import (
	"sync"
	"time"
)

// Token identifies one timer installation.
type Token uint64

// Timer is a stoppable pending callback.
type Timer interface {
	Stop() bool
}

// Clock creates timers and reports the current time.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// RealClock returns a Clock backed by the time package.
func RealClock() Clock { return realClock{} }

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock overrides the clock used to create timers.
func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

type entry struct {
	token Token
	timer Timer
}

// Scheduler runs callbacks after a fixed delay, one outstanding timer per key.
type Scheduler struct {
	mu     sync.Mutex
	clock  Clock
	delay  time.Duration
	seq    Token
	timers map[string]entry
	closed bool
}

// New creates a Scheduler that fires callbacks after delay.
func New(delay time.Duration, opts ...Option) *Scheduler {
	s := &Scheduler{
		clock:  realClock{},
		delay:  delay,
		timers: make(map[string]entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Delay returns the configured delay.
func (s *Scheduler) Delay() time.Duration { return s.delay }

// Clock returns the clock timers are created from.
func (s *Scheduler) Clock() Clock { return s.clock }

// Schedule installs fn to run after the delay under key, cancelling any timer
// already outstanding for key. fn receives the installation token. After
// Close, Schedule does nothing and returns the zero token.
func (s *Scheduler) Schedule(key string, fn func(Token)) Token {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0
	}
	if prev, ok := s.timers[key]; ok {
		prev.timer.Stop()
	}
	s.seq++
	tok := s.seq
	s.timers[key] = entry{
		token: tok,
		timer: s.clock.AfterFunc(s.delay, func() { fn(tok) }),
	}
	return tok
}

// Cancel stops the timer outstanding for key. It reports whether one was
// installed; cancelling twice, or after the timer fired, is a no-op.
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.timers[key]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(s.timers, key)
	return true
}

// Release removes the installation for key if tok is still current. A false
// result means the firing is stale and must be ignored.
func (s *Scheduler) Release(key string, tok Token) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.timers[key]
	if !ok || e.token != tok {
		return false
	}
	delete(s.timers, key)
	return true
}

// Pending reports whether a timer is outstanding for key.
func (s *Scheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[key]
	return ok
}

// Len returns the number of outstanding timers.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Close cancels every outstanding timer and rejects further scheduling.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, e := range s.timers {
		e.timer.Stop()
		delete(s.timers, key)
	}
	s.closed = true
}
