// Package progression decides difficulty promotion after a finished session.
package progression

import "github.com/verte-zerg/tiertype/internal/model"

// PromotionAccuracy is the minimum final accuracy that unlocks the next tier.
const PromotionAccuracy = 60

// Next returns the tier after current when accuracy meets the promotion bar.
// It never demotes: a low score or the top tier yields ok == false.
func Next(current model.Difficulty, accuracy int) (next model.Difficulty, ok bool) {
	if accuracy < PromotionAccuracy || !current.Valid() {
		return current, false
	}
	idx := -1
	for i, d := range model.Difficulties {
		if d == current {
			idx = i
			break
		}
	}
	if idx < 0 || idx >= len(model.Difficulties)-1 {
		return current, false
	}
	return model.Difficulties[idx+1], true
}

// Resolve maps a stored tier name to a Difficulty, defaulting to Easy.
func Resolve(stored string) model.Difficulty {
	d, err := model.ParseDifficulty(stored)
	if err != nil {
		return model.Easy
	}
	return d
}

// Max returns the higher of two tiers.
func Max(a, b model.Difficulty) model.Difficulty {
	if b > a {
		return b
	}
	return a
}
