package achievement

import (
	"testing"
	"time"

	"github.com/verte-zerg/tiertype/internal/model"
)

func game(d model.Difficulty, wpm, acc int) model.SessionResult {
	return model.SessionResult{WPM: wpm, Accuracy: acc, Difficulty: d, PlayedAt: time.Unix(0, 0)}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func TestEvaluateEmptyHistory(t *testing.T) {
	if got := Evaluate(nil, NewSet()); len(got) != 0 {
		t.Fatalf("expected nothing for empty history, got %v", got)
	}
}

func TestEvaluatePredicates(t *testing.T) {
	cases := []struct {
		name    string
		history []model.SessionResult
		want    string
		absent  string
	}{
		{"first game", []model.SessionResult{game(model.Easy, 10, 80)}, FirstGame, TenGames},
		{"easy threshold", []model.SessionResult{game(model.Easy, 50, 90)}, Easy50WPM, Medium60WPM},
		{"easy below threshold", []model.SessionResult{game(model.Easy, 49, 90)}, FirstGame, Easy50WPM},
		{"speed on wrong tier", []model.SessionResult{game(model.Easy, 90, 90)}, Easy50WPM, Hard70WPM},
		{"medium threshold", []model.SessionResult{game(model.Medium, 60, 90)}, Medium60WPM, Easy50WPM},
		{"hard threshold", []model.SessionResult{game(model.Hard, 70, 90)}, Hard70WPM, AccuracyMaster},
		{"perfect accuracy", []model.SessionResult{game(model.Hard, 5, 100)}, AccuracyMaster, Hard70WPM},
		{"one tier only", []model.SessionResult{game(model.Easy, 1, 1), game(model.Easy, 1, 1)}, FirstGame, AllDifficulties},
		{"all tiers", []model.SessionResult{game(model.Hard, 1, 1), game(model.Easy, 1, 1), game(model.Medium, 1, 1)}, AllDifficulties, AccuracyMaster},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(tc.history, NewSet())
			if !contains(got, tc.want) {
				t.Fatalf("expected %s in %v", tc.want, got)
			}
			if contains(got, tc.absent) {
				t.Fatalf("did not expect %s in %v", tc.absent, got)
			}
		})
	}
}

func TestEvaluateTenGames(t *testing.T) {
	var history []model.SessionResult
	for i := 0; i < 9; i++ {
		history = append(history, game(model.Medium, 20, 80))
	}
	if contains(Evaluate(history, NewSet()), TenGames) {
		t.Fatalf("nine games must not unlock %s", TenGames)
	}
	history = append(history, game(model.Medium, 20, 80))
	if !contains(Evaluate(history, NewSet()), TenGames) {
		t.Fatalf("ten games must unlock %s", TenGames)
	}
}

func TestEvaluateSkipsUnlockedAndKeepsCatalogOrder(t *testing.T) {
	history := []model.SessionResult{
		game(model.Hard, 75, 100),
		game(model.Medium, 65, 95),
		game(model.Easy, 55, 95),
	}
	got := Evaluate(history, NewSet(FirstGame, Medium60WPM))
	want := []string{Easy50WPM, Hard70WPM, AccuracyMaster, AllDifficulties}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestEvaluateIsRetroactiveAndOrderFree(t *testing.T) {
	history := []model.SessionResult{
		game(model.Easy, 52, 100),
		game(model.Easy, 12, 70),
		game(model.Hard, 30, 88),
	}
	reversed := []model.SessionResult{history[2], history[1], history[0]}
	a := Evaluate(history, NewSet())
	b := Evaluate(reversed, NewSet())
	if len(a) != len(b) {
		t.Fatalf("order changed result: %v vs %v", a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("order changed result: %v vs %v", a, b)
		}
	}
	if !contains(a, Easy50WPM) || !contains(a, AccuracyMaster) {
		t.Fatalf("old games must still unlock achievements, got %v", a)
	}
}

func TestEvaluateReachesFixpoint(t *testing.T) {
	history := []model.SessionResult{
		game(model.Easy, 52, 100),
		game(model.Medium, 61, 97),
	}
	unlocked := NewSet(TenGames)
	for _, id := range Evaluate(history, unlocked) {
		unlocked[id] = struct{}{}
	}
	if again := Evaluate(history, unlocked); len(again) != 0 {
		t.Fatalf("expected no new ids on re-evaluation, got %v", again)
	}
	if !unlocked.Has(TenGames) {
		t.Fatalf("previously unlocked ids must be kept")
	}
}

func TestCatalogAndStatuses(t *testing.T) {
	cat := Catalog()
	if len(cat) != 7 {
		t.Fatalf("expected 7 catalog entries, got %d", len(cat))
	}
	seen := map[string]bool{}
	for _, a := range cat {
		if seen[a.ID] {
			t.Fatalf("duplicate id %s", a.ID)
		}
		seen[a.ID] = true
		if a.Name == "" || a.Description == "" || a.Check == nil {
			t.Fatalf("incomplete entry %+v", a)
		}
		if got, ok := Lookup(a.ID); !ok || got.Name != a.Name {
			t.Fatalf("lookup %s failed", a.ID)
		}
	}
	if _, ok := Lookup("nope"); ok {
		t.Fatalf("unexpected lookup hit")
	}

	statuses := Statuses(NewSet(AccuracyMaster))
	for i, st := range statuses {
		if st.ID != cat[i].ID {
			t.Fatalf("statuses out of catalog order at %d", i)
		}
		if st.Unlocked != (st.ID == AccuracyMaster) {
			t.Fatalf("unexpected unlocked flag for %s", st.ID)
		}
	}
}
