// Package stats contains score calculations and reporting.
package stats

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/verte-zerg/tiertype/internal/achievement"
	"github.com/verte-zerg/tiertype/internal/model"
	"github.com/verte-zerg/tiertype/internal/store"
)

// DefaultTrendWindow is the moving-average window of the WPM sparkline.
const DefaultTrendWindow = 5

// Report contains precomputed data for scores rendering.
type Report struct {
	Results      []model.SessionResult
	Skipped      int
	Bests        []model.PersonalBest
	Achievements []achievement.Status
	Unlocked     []string
}

// BuildReport loads a user's history, unlocks any achievements it now earns
// and prepares the data for scores rendering.
func BuildReport(ctx context.Context, st *store.Store, userID int64) (Report, error) {
	results, skipped, err := st.ListResults(ctx, userID)
	if err != nil {
		return Report{}, fmt.Errorf("list results: %w", err)
	}
	fresh, unlocked, err := SyncAchievements(ctx, st, userID, results)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Results:      results,
		Skipped:      skipped,
		Bests:        PersonalBests(results),
		Achievements: achievement.Statuses(unlocked),
		Unlocked:     fresh,
	}, nil
}

// SyncAchievements evaluates the catalog over history and stores newly
// earned ids. It returns the fresh ids and the full unlocked set.
func SyncAchievements(ctx context.Context, st *store.Store, userID int64, history []model.SessionResult) ([]string, achievement.Set, error) {
	ids, err := st.UnlockedAchievements(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("list achievements: %w", err)
	}
	unlocked := achievement.NewSet(ids...)
	fresh := achievement.Evaluate(history, unlocked)
	if len(fresh) == 0 {
		return nil, unlocked, nil
	}
	if err := st.UnlockAchievements(ctx, userID, fresh, time.Now()); err != nil {
		return nil, nil, fmt.Errorf("unlock achievements: %w", err)
	}
	for _, id := range fresh {
		unlocked[id] = struct{}{}
	}
	return fresh, unlocked, nil
}

// RenderAchievements prints the catalog with its locked state.
func RenderAchievements(w io.Writer, statuses []achievement.Status) error {
	if _, err := fmt.Fprintln(w, "Achievements"); err != nil {
		return err
	}
	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		rows = append(rows, AchievementRow(s))
	}
	for _, line := range formatTable([]string{"", "Name", "Description", "State"}, rows, nil) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// AchievementRow formats one achievement status as table cells.
func AchievementRow(s achievement.Status) []string {
	state := "locked"
	icon := "🔒"
	if s.Unlocked {
		state = "unlocked"
		icon = s.Icon
	}
	return []string{icon, s.Name, s.Description, state}
}

// RenderReport prints the full plain-text scores report.
func RenderReport(w io.Writer, r Report) error {
	for _, id := range r.Unlocked {
		if a, ok := achievement.Lookup(id); ok {
			if _, err := fmt.Fprintf(w, "Achievement unlocked: %s %s\n", a.Icon, a.Name); err != nil {
				return err
			}
		}
	}
	if err := RenderBests(w, r.Bests); err != nil {
		return err
	}
	if len(r.Results) > 1 {
		trend := Sparkline(WPMTrend(r.Results, DefaultTrendWindow))
		if _, err := fmt.Fprintf(w, "WPM trend: %s\n\n", trend); err != nil {
			return err
		}
	}
	if err := RenderHistory(w, r.Results); err != nil {
		return err
	}
	if err := RenderAchievements(w, r.Achievements); err != nil {
		return err
	}
	if r.Skipped > 0 {
		if _, err := fmt.Fprintf(w, "%d unreadable score rows were skipped.\n", r.Skipped); err != nil {
			return err
		}
	}
	return nil
}
