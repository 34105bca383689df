package train

import (
	"context"
	"fmt"
	"sync"

	"brainlib/m"
)

// State is the lifecycle position of a Session.
type State int

const (
	Idle State = iota
	Training
	Paused
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Training:
		return "training"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type requestKind int

const (
	reqPause requestKind = iota
	reqResume
	reqStop
	reqSnapshot
)

type request struct {
	kind  requestKind
	reply chan reply
}

type reply struct {
	state State
	net   *m.Network
	err   error
}

// Session runs a Learner on the calling goroutine and lets other goroutines
// pause, resume, stop or snapshot it. Requests made while a block is in flight
// are served once that block has been applied.
//
//	Idle -> Training        Run
//	Training -> Paused      Pause
//	Paused -> Training      Resume
//	any but Stopped -> Stopped  Stop, or ctx done
//	Training -> Idle        Run's condition no longer holds
type Session struct {
	learner *Learner
	reqs    chan request

	mu      sync.Mutex
	state   State
	running bool
	done    chan struct{}
}

func NewSession(l *Learner) *Session {
	return &Session{learner: l, reqs: make(chan request)}
}

func (s *Session) Learner() *Learner { return s.learner }

// Run trains while cond holds. It returns nil when cond fails or the session
// is stopped, and ctx's error when ctx ends first.
func (s *Session) Run(ctx context.Context, cond func(Progress) bool) error {
	s.mu.Lock()
	if s.state != Idle {
		from := s.state
		s.mu.Unlock()
		return &TransitionError{From: from, To: Training}
	}
	s.state = Training
	s.running = true
	s.done = make(chan struct{})
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		if s.state != Stopped {
			s.state = Idle
		}
		close(s.done)
		s.mu.Unlock()
	}()

	for {
	drain:
		for {
			select {
			case r := <-s.reqs:
				s.serve(r)
			default:
				break drain
			}
		}

		switch s.State() {
		case Stopped:
			return nil
		case Paused:
			select {
			case r := <-s.reqs:
				s.serve(r)
			case <-ctx.Done():
				s.setState(Stopped)
				return ctx.Err()
			}
			continue
		}

		if err := ctx.Err(); err != nil {
			s.setState(Stopped)
			return err
		}
		if cond != nil && !cond(s.learner.Progress()) {
			return nil
		}
		if _, err := s.learner.LearnBlock(); err != nil {
			return err
		}
	}
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Session) serve(r request) {
	s.mu.Lock()
	rep := s.handle(r.kind)
	s.mu.Unlock()
	r.reply <- rep
}

// handle must be called with s.mu held.
func (s *Session) handle(kind requestKind) reply {
	switch kind {
	case reqPause:
		if s.state != Training {
			return reply{state: s.state, err: &TransitionError{From: s.state, To: Paused}}
		}
		s.state = Paused
	case reqResume:
		if s.state != Paused {
			return reply{state: s.state, err: &TransitionError{From: s.state, To: Training}}
		}
		s.state = Training
	case reqStop:
		if s.state == Stopped {
			return reply{state: s.state, err: &TransitionError{From: s.state, To: Stopped}}
		}
		s.state = Stopped
	case reqSnapshot:
		return reply{state: s.state, net: s.learner.Network().Clone()}
	}
	return reply{state: s.state}
}

func (s *Session) do(kind requestKind) reply {
	for {
		s.mu.Lock()
		if !s.running {
			rep := s.handle(kind)
			s.mu.Unlock()
			return rep
		}
		done := s.done
		s.mu.Unlock()

		r := request{kind: kind, reply: make(chan reply, 1)}
		select {
		case s.reqs <- r:
			return <-r.reply
		case <-done:
			// Run returned; retry against the idle session.
		}
	}
}

// Pause holds training after the current block.
func (s *Session) Pause() error { return s.do(reqPause).err }

func (s *Session) Resume() error { return s.do(reqResume).err }

// Stop ends the session for good. A running Run returns nil.
func (s *Session) Stop() error { return s.do(reqStop).err }

// Snapshot returns a copy of the network taken between blocks.
func (s *Session) Snapshot() *m.Network { return s.do(reqSnapshot).net }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
