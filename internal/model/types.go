// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Difficulty is an ordered practice tier.
type Difficulty int

// Difficulty tiers in promotion order.
const (
	Easy Difficulty = iota
	Medium
	Hard
)

// Difficulties lists every tier in ascending order.
var Difficulties = []Difficulty{Easy, Medium, Hard}

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	default:
		return fmt.Sprintf("difficulty(%d)", int(d))
	}
}

// Title returns the capitalized tier name for display.
func (d Difficulty) Title() string {
	s := d.String()
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Valid reports whether d is one of the known tiers.
func (d Difficulty) Valid() bool {
	return d >= Easy && d <= Hard
}

// ParseDifficulty parses a tier name, ignoring case and surrounding space.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return Easy, nil
	case "medium":
		return Medium, nil
	case "hard":
		return Hard, nil
	default:
		return Easy, fmt.Errorf("unknown difficulty %q (want easy, medium or hard)", s)
	}
}

// Config defines practice settings.
type Config struct {
	Difficulty    Difficulty
	DifficultySet bool
	TextsDir      string
	Bell          bool
}

// SessionResult is the finalized score of one typing session.
type SessionResult struct {
	WPM            int
	Accuracy       int
	Difficulty     Difficulty
	PlayedAt       time.Time
	TypedChars     int
	Mistakes       int
	ElapsedSeconds int
}

// User is a registered player.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// PersonalBest is the best result recorded on one tier.
type PersonalBest struct {
	Difficulty Difficulty
	WPM        int
	Accuracy   int
	PlayedAt   time.Time
	Set        bool
}
