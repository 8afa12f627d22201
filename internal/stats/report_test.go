package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/tiertype/internal/achievement"
	"github.com/verte-zerg/tiertype/internal/model"
	"github.com/verte-zerg/tiertype/internal/store"
)

func openReportStore(t *testing.T) (*store.Store, int64) {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "tiertype.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	user := &model.User{Username: "ada", PasswordHash: "x"}
	if err := st.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return st, user.ID
}

func TestBuildReport(t *testing.T) {
	st, userID := openReportStore(t)
	ctx := context.Background()

	games := []model.SessionResult{
		{WPM: 30, Accuracy: 90, Difficulty: model.Easy},
		{WPM: 55, Accuracy: 100, Difficulty: model.Easy},
		{WPM: 40, Accuracy: 95, Difficulty: model.Medium},
	}
	for i, g := range games {
		g.PlayedAt = time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		if _, err := st.InsertResult(ctx, userID, g); err != nil {
			t.Fatalf("insert result: %v", err)
		}
	}

	report, err := BuildReport(ctx, st, userID)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Results) != 3 || report.Skipped != 0 {
		t.Fatalf("unexpected results: %d (skipped %d)", len(report.Results), report.Skipped)
	}
	if !report.Bests[model.Easy].Set || report.Bests[model.Easy].WPM != 55 {
		t.Fatalf("unexpected easy best: %+v", report.Bests[model.Easy])
	}
	if report.Bests[model.Hard].Set {
		t.Fatalf("hard best should be unset")
	}
	want := []string{achievement.FirstGame, achievement.Easy50WPM, achievement.AccuracyMaster}
	if len(report.Unlocked) != len(want) {
		t.Fatalf("unexpected fresh unlocks: %v", report.Unlocked)
	}
	for i := range want {
		if report.Unlocked[i] != want[i] {
			t.Fatalf("unexpected fresh unlocks: %v", report.Unlocked)
		}
	}

	stored, err := st.UnlockedAchievements(ctx, userID)
	if err != nil {
		t.Fatalf("list unlocked: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("expected unlocks to be persisted, got %v", stored)
	}

	again, err := BuildReport(ctx, st, userID)
	if err != nil {
		t.Fatalf("build report again: %v", err)
	}
	if len(again.Unlocked) != 0 {
		t.Fatalf("expected no fresh unlocks on second build, got %v", again.Unlocked)
	}
	unlockedCount := 0
	for _, s := range again.Achievements {
		if s.Unlocked {
			unlockedCount++
		}
	}
	if unlockedCount != 3 {
		t.Fatalf("expected 3 unlocked statuses, got %d", unlockedCount)
	}
}

func TestRenderReportPlain(t *testing.T) {
	played := time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local)
	results := []model.SessionResult{
		{WPM: 20, Accuracy: 80, Difficulty: model.Easy, PlayedAt: played},
		{WPM: 40, Accuracy: 100, Difficulty: model.Easy, PlayedAt: played.Add(time.Hour)},
	}
	report := Report{
		Results:      results,
		Skipped:      1,
		Bests:        PersonalBests(results),
		Achievements: achievement.Statuses(achievement.NewSet(achievement.FirstGame)),
		Unlocked:     []string{achievement.FirstGame},
	}
	var buf bytes.Buffer
	if err := RenderReport(&buf, report); err != nil {
		t.Fatalf("render report: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Achievement unlocked: 👣 First Steps",
		"Easy: 40 WPM (Accuracy: 100%)",
		"Hard: No scores yet.",
		"WPM trend: ",
		"All Scores",
		"Perfect Precision",
		"1 unreadable score rows were skipped.",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "2024-03-01 11:00") > strings.Index(out, "2024-03-01 10:00") {
		t.Fatalf("history should list the newest game first:\n%s", out)
	}
}

func TestAchievementRow(t *testing.T) {
	a, _ := achievement.Lookup(achievement.TenGames)
	locked := AchievementRow(achievement.Status{Achievement: a})
	if locked[0] != "🔒" || locked[3] != "locked" {
		t.Fatalf("unexpected locked row: %v", locked)
	}
	open := AchievementRow(achievement.Status{Achievement: a, Unlocked: true})
	if open[0] != a.Icon || open[3] != "unlocked" {
		t.Fatalf("unexpected unlocked row: %v", open)
	}
}
