package session

import "github.com/verte-zerg/tiertype/internal/stats"

// Char is one projected source character.
type Char struct {
	Rune   rune
	Status Status
}

// Projection is a read-only snapshot of a session for rendering.
type Projection struct {
	Chars     []Char
	Caret     int // -1 once Finished
	Typed     int
	Phase     Phase
	Remaining int
	Elapsed   int
	Mistakes  int
	WPM       int
	Accuracy  int
}

// View projects the current state. While the session runs WPM is gross
// (mistakes not subtracted); once Finished it is the final net value.
func (s *Session) View() Projection {
	chars := make([]Char, len(s.text))
	for i, r := range s.text {
		chars[i] = Char{Rune: r, Status: s.statuses[i]}
	}
	p := Projection{
		Chars:     chars,
		Caret:     s.caret,
		Typed:     s.caret,
		Phase:     s.phase,
		Remaining: s.remaining,
		Elapsed:   s.elapsed,
		Mistakes:  s.mistakes,
		WPM:       stats.ComputeWPM(s.caret, 0, s.elapsed),
		Accuracy:  stats.ComputeAccuracy(s.caret, s.mistakes),
	}
	if s.phase == Finished {
		p.Caret = -1
		p.WPM = s.result.WPM
		p.Accuracy = s.result.Accuracy
	}
	return p
}

// Progress returns the share of the text consumed, in percent.
func (p Projection) Progress() int {
	if len(p.Chars) == 0 {
		return 0
	}
	return p.Typed * 100 / len(p.Chars)
}
