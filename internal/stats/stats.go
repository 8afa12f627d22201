// Package stats contains score calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/verte-zerg/tiertype/internal/model"
)

const sparkChars = " .:-=+*#%@"

// CharsPerWord is the conventional word length used for WPM.
const CharsPerWord = 5

// ComputeWPM returns net words per minute. Mistakes are subtracted from the
// typed count before converting to words; pass zero mistakes for gross WPM.
func ComputeWPM(typedCount, mistakes, elapsedSeconds int) int {
	if elapsedSeconds <= 0 {
		return 0
	}
	net := typedCount - mistakes
	if net < 0 {
		net = 0
	}
	minutes := float64(elapsedSeconds) / 60.0
	return roundHalfUp(float64(net) / CharsPerWord / minutes)
}

// ComputeAccuracy returns the share of typed characters that were not
// mistakes, as a percentage in [0, 100].
func ComputeAccuracy(typedCount, mistakes int) int {
	if typedCount <= 0 {
		return 100
	}
	acc := roundHalfUp(float64(typedCount-mistakes) / float64(typedCount) * 100)
	if acc < 0 {
		return 0
	}
	if acc > 100 {
		return 100
	}
	return acc
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// WPMTrend returns the moving-average WPM series, oldest first.
func WPMTrend(results []model.SessionResult, window int) []float64 {
	values := make([]float64, len(results))
	for i, r := range results {
		values[i] = float64(r.WPM)
	}
	return MovingAverage(values, window)
}

// PersonalBests picks the highest-WPM result per tier, breaking ties by
// accuracy. Results with zero WPM never count as a best.
func PersonalBests(results []model.SessionResult) []model.PersonalBest {
	bests := make([]model.PersonalBest, len(model.Difficulties))
	for i, d := range model.Difficulties {
		bests[i].Difficulty = d
	}
	for _, r := range results {
		if !r.Difficulty.Valid() {
			continue
		}
		b := &bests[r.Difficulty]
		if r.WPM > b.WPM || (r.WPM == b.WPM && r.Accuracy > b.Accuracy) {
			b.WPM = r.WPM
			b.Accuracy = r.Accuracy
			b.PlayedAt = r.PlayedAt
		}
	}
	for i := range bests {
		bests[i].Set = bests[i].WPM > 0
	}
	return bests
}

// MostRecentFirst returns a copy of results ordered newest first.
func MostRecentFirst(results []model.SessionResult) []model.SessionResult {
	out := make([]model.SessionResult, len(results))
	copy(out, results)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PlayedAt.After(out[j].PlayedAt)
	})
	return out
}

// RenderBests prints the personal best for every tier.
func RenderBests(w io.Writer, bests []model.PersonalBest) error {
	if _, err := fmt.Fprintln(w, "Personal Bests"); err != nil {
		return err
	}
	for _, b := range bests {
		line := fmt.Sprintf("%s: No scores yet.", b.Difficulty.Title())
		if b.Set {
			line = fmt.Sprintf("%s: %d WPM (Accuracy: %d%%)", b.Difficulty.Title(), b.WPM, b.Accuracy)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderHistory prints every result, most recent first.
func RenderHistory(w io.Writer, results []model.SessionResult) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "You haven't played any games yet. Your scores will appear here!")
		return err
	}
	if _, err := fmt.Fprintln(w, "All Scores"); err != nil {
		return err
	}
	headers := []string{"Difficulty", "WPM", "Acc", "Date"}
	rows := make([][]string, 0, len(results))
	for _, r := range MostRecentFirst(results) {
		rows = append(rows, HistoryRow(r))
	}
	for _, line := range formatTable(headers, rows, map[int]bool{1: true, 2: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// HistoryRow formats one result as table cells.
func HistoryRow(r model.SessionResult) []string {
	return []string{
		r.Difficulty.String(),
		fmt.Sprintf("%d", r.WPM),
		fmt.Sprintf("%d%%", r.Accuracy),
		FormatPlayedAt(r.PlayedAt),
	}
}

// FormatPlayedAt renders a timestamp in local time with minute precision.
func FormatPlayedAt(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
