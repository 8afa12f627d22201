package scoresui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tiertype/internal/achievement"
	"github.com/verte-zerg/tiertype/internal/model"
	"github.com/verte-zerg/tiertype/internal/store"
)

func newTestModel(t *testing.T, results ...model.SessionResult) (*Model, *store.Store, *model.User) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "tiertype.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	ctx := context.Background()
	user := &model.User{Username: "ada", PasswordHash: "x"}
	if err := st.CreateUser(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	for i, r := range results {
		r.PlayedAt = time.Date(2024, 1, 1, 12, i, 0, 0, time.UTC)
		if _, err := st.InsertResult(ctx, user.ID, r); err != nil {
			t.Fatalf("insert result: %v", err)
		}
	}
	return NewModel(st, user), st, user
}

func TestOpeningUnlocksAchievements(t *testing.T) {
	m, st, user := newTestModel(t,
		model.SessionResult{WPM: 61, Accuracy: 90, Difficulty: model.Medium},
		model.SessionResult{WPM: 20, Accuracy: 80, Difficulty: model.Easy},
	)
	if m.errMsg != "" {
		t.Fatalf("unexpected error: %s", m.errMsg)
	}
	report := m.Report()
	if len(report.Unlocked) != 2 || report.Unlocked[0] != achievement.FirstGame || report.Unlocked[1] != achievement.Medium60WPM {
		t.Fatalf("unexpected fresh unlocks: %v", report.Unlocked)
	}
	ids, err := st.UnlockedAchievements(context.Background(), user.ID)
	if err != nil || len(ids) != 2 {
		t.Fatalf("expected unlocks to be stored, got %v (%v)", ids, err)
	}
	out := renderAchievements(report)
	if !strings.Contains(out, "Medium Mover") || !strings.Contains(out, "(new!)") {
		t.Fatalf("unexpected achievements view: %s", out)
	}
}

func TestHistoryRowsNewestFirst(t *testing.T) {
	m, _, _ := newTestModel(t,
		model.SessionResult{WPM: 10, Accuracy: 80, Difficulty: model.Easy},
		model.SessionResult{WPM: 30, Accuracy: 70, Difficulty: model.Hard},
	)
	rows := m.history.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "hard" || rows[0][1] != "30" || rows[1][0] != "easy" {
		t.Fatalf("unexpected row order: %v", rows)
	}
}

func TestViewAndTabs(t *testing.T) {
	m, _, _ := newTestModel(t, model.SessionResult{WPM: 42, Accuracy: 97, Difficulty: model.Easy})
	if m.View() != "" {
		t.Fatalf("expected empty view before size is known")
	}
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	out := m.View()
	for _, want := range []string{"Bests", "History", "Achievements", "42 WPM", "No scores yet.", "Player: ada"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q:\n%s", want, out)
		}
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabHistory {
		t.Fatalf("expected history tab, got %d", m.activeTab)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.activeTab != tabAchievements {
		t.Fatalf("expected tabs to wrap around, got %d", m.activeTab)
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}); cmd == nil {
		t.Fatalf("expected quit command")
	}
}

func TestEmptyHistory(t *testing.T) {
	m, _, _ := newTestModel(t)
	if len(m.Report().Unlocked) != 0 {
		t.Fatalf("no games must unlock nothing")
	}
	m.Update(tea.WindowSizeMsg{Width: 90, Height: 20})
	m.moveTab(1)
	if out := m.View(); !strings.Contains(out, "You haven't played any games yet.") {
		t.Fatalf("expected empty history message:\n%s", out)
	}
}
