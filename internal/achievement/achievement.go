// Package achievement evaluates the fixed achievement catalog against a
// player's score history.
package achievement

import "github.com/verte-zerg/tiertype/internal/model"

// Predicate reports whether a history satisfies an achievement. Predicates
// must not depend on the order of the history.
type Predicate func(history []model.SessionResult) bool

// Achievement is one catalog entry.
type Achievement struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Check       Predicate
}

// Catalog ids.
const (
	FirstGame       = "first_game"
	Easy50WPM       = "easy_50_wpm"
	Medium60WPM     = "medium_60_wpm"
	Hard70WPM       = "hard_70_wpm"
	AccuracyMaster  = "accuracy_master"
	TenGames        = "ten_games"
	AllDifficulties = "all_difficulties_played"
)

var catalog = []Achievement{
	{
		ID:          FirstGame,
		Name:        "First Steps",
		Description: "Complete your first typing test.",
		Icon:        "👣",
		Check:       minGames(1),
	},
	{
		ID:          Easy50WPM,
		Name:        "Easy Rider",
		Description: "Achieve 50 WPM on Easy difficulty.",
		Icon:        "🪶",
		Check:       wpmOn(model.Easy, 50),
	},
	{
		ID:          Medium60WPM,
		Name:        "Medium Mover",
		Description: "Achieve 60 WPM on Medium difficulty.",
		Icon:        "💨",
		Check:       wpmOn(model.Medium, 60),
	},
	{
		ID:          Hard70WPM,
		Name:        "Hard Hitter",
		Description: "Achieve 70 WPM on Hard difficulty.",
		Icon:        "⚡",
		Check:       wpmOn(model.Hard, 70),
	},
	{
		ID:          AccuracyMaster,
		Name:        "Perfect Precision",
		Description: "Achieve 100% accuracy in any game.",
		Icon:        "🎯",
		Check: func(history []model.SessionResult) bool {
			for _, r := range history {
				if r.Accuracy == 100 {
					return true
				}
			}
			return false
		},
	},
	{
		ID:          TenGames,
		Name:        "Persistent Typer",
		Description: "Complete 10 typing tests.",
		Icon:        "🏅",
		Check:       minGames(10),
	},
	{
		ID:          AllDifficulties,
		Name:        "Jack of All Trades",
		Description: "Play a game on Easy, Medium, and Hard.",
		Icon:        "🧩",
		Check: func(history []model.SessionResult) bool {
			played := map[model.Difficulty]struct{}{}
			for _, r := range history {
				played[r.Difficulty] = struct{}{}
			}
			for _, d := range model.Difficulties {
				if _, ok := played[d]; !ok {
					return false
				}
			}
			return true
		},
	},
}

var byID = func() map[string]Achievement {
	m := make(map[string]Achievement, len(catalog))
	for _, a := range catalog {
		m[a.ID] = a
	}
	return m
}()

func minGames(n int) Predicate {
	return func(history []model.SessionResult) bool {
		return len(history) >= n
	}
}

func wpmOn(d model.Difficulty, wpm int) Predicate {
	return func(history []model.SessionResult) bool {
		for _, r := range history {
			if r.Difficulty == d && r.WPM >= wpm {
				return true
			}
		}
		return false
	}
}

// Catalog returns the achievement catalog in display order.
func Catalog() []Achievement {
	out := make([]Achievement, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the catalog entry for id.
func Lookup(id string) (Achievement, bool) {
	a, ok := byID[id]
	return a, ok
}

// Set is a set of unlocked achievement ids.
type Set map[string]struct{}

// NewSet builds a Set from ids.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Evaluate returns the ids, in catalog order, whose predicate holds over the
// whole history and which are not already unlocked. It never reports ids
// that should be removed; unlocks only grow.
func Evaluate(history []model.SessionResult, unlocked Set) []string {
	var fresh []string
	for _, a := range catalog {
		if unlocked.Has(a.ID) {
			continue
		}
		if a.Check(history) {
			fresh = append(fresh, a.ID)
		}
	}
	return fresh
}

// Status pairs a catalog entry with its unlocked state.
type Status struct {
	Achievement
	Unlocked bool
}

// Statuses lists the catalog with unlocked flags.
func Statuses(unlocked Set) []Status {
	out := make([]Status, 0, len(catalog))
	for _, a := range catalog {
		out = append(out, Status{Achievement: a, Unlocked: unlocked.Has(a.ID)})
	}
	return out
}
