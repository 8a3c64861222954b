// Package session keeps per-browser planner state: the latest trip plan,
// its rendered text, the export timestamp and the follow-up chat history.
package session

import (
	"errors"
	"sync"
	"time"

	"tripplanner/internal/export"
	"tripplanner/internal/trip"
)

var (
	// ErrNoPlan is returned when an operation needs a generated plan first.
	ErrNoPlan = errors.New("session: no trip plan generated yet")
	// ErrPlanChanged is returned when an answer arrives for a plan that
	// has since been replaced.
	ErrPlanChanged = errors.New("session: trip plan changed while answering")
)

// Session is safe for concurrent use.
type Session struct {
	ID string

	mu        sync.Mutex
	inputs    trip.TripInputs
	result    trip.TripResult
	fullText  string
	planID    string
	timestamp time.Time
	// rev counts stored plans; answers are tied to the rev they were asked about.
	rev  uint64
	chat []export.QA
	busy bool
}

// View is a point-in-time copy of a session.
type View struct {
	ID        string
	Inputs    trip.TripInputs
	Result    trip.TripResult
	FullText  string
	PlanID    string
	Timestamp time.Time
	Chat      []export.QA
	Busy      bool
}

// HasPlan reports whether a plan has been generated.
func (v View) HasPlan() bool { return v.FullText != "" }

func newSession(id string, now time.Time) *Session {
	return &Session{ID: id, inputs: trip.DefaultInputs(), timestamp: now}
}

// Snapshot copies the current state.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		ID:        s.ID,
		Inputs:    s.inputs,
		Result:    s.result,
		FullText:  s.fullText,
		PlanID:    s.planID,
		Timestamp: s.timestamp,
		Chat:      append([]export.QA(nil), s.chat...),
		Busy:      s.busy,
	}
}

// SetInputs remembers the last submitted form values.
func (s *Session) SetInputs(in trip.TripInputs) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = in
}

// SetPlan stores a new plan. The chat history is cleared and the
// timestamp reset to now.
func (s *Session) SetPlan(result trip.TripResult, fullText, planID string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = result
	s.fullText = fullText
	s.planID = planID
	s.timestamp = now
	s.rev++
	s.chat = nil
}

// Itinerary returns the full plan text and its revision, or ErrNoPlan.
func (s *Session) Itinerary() (string, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fullText == "" {
		return "", 0, ErrNoPlan
	}
	return s.fullText, s.rev, nil
}

// AppendQA records one question answered against plan revision rev and
// returns its 1-based index. It returns ErrPlanChanged, recording nothing,
// if another plan was stored after rev.
func (s *Session) AppendQA(rev uint64, question, answer string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rev != s.rev {
		return 0, ErrPlanChanged
	}
	s.chat = append(s.chat, export.QA{Question: question, Answer: answer})
	return len(s.chat), nil
}

// TryBegin marks the session as running a long operation. It returns
// false if one is already in flight; callers must call End after a true.
func (s *Session) TryBegin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return false
	}
	s.busy = true
	return true
}

func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
}
