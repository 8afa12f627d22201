package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/tiertype/internal/model"
)

func TestComputeWPM(t *testing.T) {
	tests := []struct {
		typed, mistakes, elapsed int
		want                     int
	}{
		{0, 0, 0, 0},
		{300, 0, 60, 60},
		{300, 50, 60, 50},
		{10, 20, 60, 0},
		{100, 0, 0, 0},
		{25, 0, 30, 10},
		{7, 0, 60, 1},
		// 8/5 = 1.6 words in one minute rounds up.
		{8, 0, 60, 2},
	}
	for _, tt := range tests {
		if got := ComputeWPM(tt.typed, tt.mistakes, tt.elapsed); got != tt.want {
			t.Errorf("ComputeWPM(%d, %d, %d) = %d, want %d", tt.typed, tt.mistakes, tt.elapsed, got, tt.want)
		}
	}
}

func TestComputeAccuracy(t *testing.T) {
	tests := []struct {
		typed, mistakes int
		want            int
	}{
		{0, 0, 100},
		{10, 0, 100},
		{10, 1, 90},
		{3, 1, 67},
		{2, 1, 50},
		{1, 3, 0},
	}
	for _, tt := range tests {
		if got := ComputeAccuracy(tt.typed, tt.mistakes); got != tt.want {
			t.Errorf("ComputeAccuracy(%d, %d) = %d, want %d", tt.typed, tt.mistakes, got, tt.want)
		}
	}
}

func TestComputeAccuracyRange(t *testing.T) {
	for typed := 0; typed <= 60; typed++ {
		if got := ComputeAccuracy(typed, 0); got != 100 {
			t.Fatalf("ComputeAccuracy(%d, 0) = %d, want 100", typed, got)
		}
		for mistakes := 0; mistakes <= typed; mistakes++ {
			got := ComputeAccuracy(typed, mistakes)
			if got < 0 || got > 100 {
				t.Fatalf("ComputeAccuracy(%d, %d) = %d out of range", typed, mistakes, got)
			}
		}
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("MovingAverage[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil); got != "" {
		t.Fatalf("expected empty sparkline, got %q", got)
	}
	if got := Sparkline([]float64{3, 3, 3}); got != "+++" {
		t.Fatalf("expected flat sparkline, got %q", got)
	}
	got := Sparkline([]float64{0, 10})
	if got != " @" {
		t.Fatalf("unexpected sparkline %q", got)
	}
}

func TestPersonalBests(t *testing.T) {
	now := time.Unix(1700000000, 0)
	results := []model.SessionResult{
		{WPM: 40, Accuracy: 90, Difficulty: model.Easy, PlayedAt: now},
		{WPM: 55, Accuracy: 80, Difficulty: model.Easy, PlayedAt: now.Add(time.Minute)},
		{WPM: 55, Accuracy: 95, Difficulty: model.Easy, PlayedAt: now.Add(2 * time.Minute)},
		{WPM: 30, Accuracy: 99, Difficulty: model.Hard, PlayedAt: now},
		{WPM: 0, Accuracy: 100, Difficulty: model.Medium, PlayedAt: now},
	}
	bests := PersonalBests(results)
	if len(bests) != 3 {
		t.Fatalf("expected 3 tiers, got %d", len(bests))
	}
	easy := bests[model.Easy]
	if !easy.Set || easy.WPM != 55 || easy.Accuracy != 95 || !easy.PlayedAt.Equal(now.Add(2*time.Minute)) {
		t.Fatalf("unexpected easy best: %+v", easy)
	}
	if bests[model.Medium].Set {
		t.Fatalf("zero WPM must not count as a best: %+v", bests[model.Medium])
	}
	if hard := bests[model.Hard]; !hard.Set || hard.WPM != 30 {
		t.Fatalf("unexpected hard best: %+v", hard)
	}
}

func TestRenderReport(t *testing.T) {
	now := time.Date(2024, 3, 2, 10, 30, 0, 0, time.Local)
	results := []model.SessionResult{
		{WPM: 41, Accuracy: 93, Difficulty: model.Easy, PlayedAt: now},
		{WPM: 62, Accuracy: 88, Difficulty: model.Medium, PlayedAt: now.Add(time.Hour)},
	}
	var buf bytes.Buffer
	if err := RenderBests(&buf, PersonalBests(results)); err != nil {
		t.Fatalf("render bests: %v", err)
	}
	if err := RenderHistory(&buf, results); err != nil {
		t.Fatalf("render history: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Easy: 41 WPM (Accuracy: 93%)",
		"Medium: 62 WPM (Accuracy: 88%)",
		"Hard: No scores yet.",
		"2024-03-02 11:30",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "medium") > strings.Index(out, "easy ") {
		t.Fatalf("expected most recent result first:\n%s", out)
	}
}

func TestRenderHistoryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderHistory(&buf, nil); err != nil {
		t.Fatalf("render history: %v", err)
	}
	if !strings.Contains(buf.String(), "haven't played") {
		t.Fatalf("unexpected empty history output: %q", buf.String())
	}
}
