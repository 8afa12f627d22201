// Package session implements the typing-session state machine: it judges
// input against the source text, tracks the caret and mistakes, counts down
// the time limit and produces one final result.
package session

import (
	"errors"
	"time"

	"github.com/verte-zerg/tiertype/internal/model"
	"github.com/verte-zerg/tiertype/internal/stats"
)

// TimeLimit is the session length in seconds.
const TimeLimit = 60

// ErrNotFinished is returned by Finalize before the session has finished.
var ErrNotFinished = errors.New("session not finished")

// Status is the judgement of one source character.
type Status int

// Character statuses.
const (
	Untouched Status = iota
	Correct
	Incorrect
)

func (s Status) String() string {
	switch s {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	default:
		return "untouched"
	}
}

// Phase is the lifecycle stage of a session.
type Phase int

// Session phases. Finished is terminal.
const (
	Idle Phase = iota
	Running
	Finished
)

func (p Phase) String() string {
	switch p {
	case Running:
		return "running"
	case Finished:
		return "finished"
	default:
		return "idle"
	}
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the clock used to timestamp the result.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// Session is one typing attempt over a fixed text. It is not safe for
// concurrent use; the host delivers events serially.
type Session struct {
	text       []rune
	statuses   []Status
	difficulty model.Difficulty

	caret     int
	mistakes  int
	elapsed   int
	remaining int
	phase     Phase

	result model.SessionResult
	now    func() time.Time
}

// New returns an idle session over text.
func New(text string, difficulty model.Difficulty, opts ...Option) *Session {
	s := &Session{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.Start(text, difficulty)
	return s
}

// Start resets the session to Idle over a new text.
func (s *Session) Start(text string, difficulty model.Difficulty) {
	s.text = []rune(text)
	s.statuses = make([]Status, len(s.text))
	s.difficulty = difficulty
	s.caret = 0
	s.mistakes = 0
	s.elapsed = 0
	s.remaining = TimeLimit
	s.phase = Idle
	s.result = model.SessionResult{}
}

// SubmitInput applies an input-length change. typed is the character that
// landed at the previous caret position; it is only consulted when the input
// grew. Only that single character is judged, whatever the growth.
func (s *Session) SubmitInput(newLength int, typed rune) {
	if !s.accept(newLength) {
		return
	}
	old := s.caret
	newLength = s.clamp(newLength)
	if newLength > old {
		s.judge(old, typed)
	}
	s.moveCaret(newLength)
}

// SubmitText applies the full current input. Every position added since the
// previous call is judged, so pasted or batched keystrokes are all scored.
func (s *Session) SubmitText(input string) {
	runes := []rune(input)
	if !s.accept(len(runes)) {
		return
	}
	old := s.caret
	newLength := s.clamp(len(runes))
	for i := old; i < newLength; i++ {
		s.judge(i, runes[i])
	}
	s.moveCaret(newLength)
}

// Tick advances the clock by one second while Running.
func (s *Session) Tick() {
	if s.phase != Running {
		return
	}
	s.remaining--
	s.elapsed++
	if s.remaining <= 0 {
		s.remaining = 0
		s.finish()
	}
}

// Finalize returns the session result. It fails with ErrNotFinished until
// the session is Finished and returns the same value on every later call.
func (s *Session) Finalize() (model.SessionResult, error) {
	if s.phase != Finished {
		return model.SessionResult{}, ErrNotFinished
	}
	return s.result, nil
}

func (s *Session) accept(newLength int) bool {
	if s.phase == Idle && newLength > 0 && s.remaining > 0 {
		s.phase = Running
	}
	return s.phase == Running && s.remaining > 0
}

func (s *Session) clamp(n int) int {
	if n < 0 {
		return 0
	}
	if n > len(s.text) {
		return len(s.text)
	}
	return n
}

func (s *Session) judge(i int, typed rune) {
	if i < 0 || i >= len(s.text) {
		return
	}
	if typed == s.text[i] {
		s.statuses[i] = Correct
		return
	}
	s.statuses[i] = Incorrect
	s.mistakes++
}

func (s *Session) moveCaret(n int) {
	s.caret = n
	// Covers both backspaced positions and stale marks past the caret.
	// Mistakes are kept: they count first landings, not what is on screen.
	for i := s.caret; i < len(s.statuses); i++ {
		s.statuses[i] = Untouched
	}
	if s.caret == len(s.text) && s.remaining > 0 {
		s.finish()
	}
}

func (s *Session) finish() {
	s.phase = Finished
	s.result = model.SessionResult{
		WPM:            stats.ComputeWPM(s.caret, s.mistakes, s.elapsed),
		Accuracy:       stats.ComputeAccuracy(s.caret, s.mistakes),
		Difficulty:     s.difficulty,
		PlayedAt:       s.now().UTC(),
		TypedChars:     s.caret,
		Mistakes:       s.mistakes,
		ElapsedSeconds: s.elapsed,
	}
}

// Phase returns the current lifecycle stage.
func (s *Session) Phase() Phase { return s.phase }

// Caret returns the index of the next character to judge.
func (s *Session) Caret() int { return s.caret }

// Mistakes returns the number of mistyped first landings.
func (s *Session) Mistakes() int { return s.mistakes }

// Elapsed returns the seconds ticked while Running.
func (s *Session) Elapsed() int { return s.elapsed }

// Remaining returns the seconds left before time out.
func (s *Session) Remaining() int { return s.remaining }

// Difficulty returns the tier the text was drawn from.
func (s *Session) Difficulty() model.Difficulty { return s.difficulty }

// Text returns the source text.
func (s *Session) Text() string { return string(s.text) }

// Len returns the source length in characters.
func (s *Session) Len() int { return len(s.text) }

// StatusAt returns the status of character i, Untouched when out of range.
func (s *Session) StatusAt(i int) Status {
	if i < 0 || i >= len(s.statuses) {
		return Untouched
	}
	return s.statuses[i]
}
