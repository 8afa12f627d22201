package stats

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/verte-zerg/tiertype/internal/model"
)

const (
	defaultChartHeight = 8
	minChartWidth      = 10
	chartSeparator     = " │ "
)

// dash patterns along x, in braille dot columns.
type dash struct {
	name   string
	period int
	on     int
}

var (
	solid  = dash{name: "solid", period: 1, on: 1}
	dotted = dash{name: "dotted", period: 4, on: 1}
)

func (d dash) draws(x int) bool {
	if d.period <= 1 {
		return true
	}
	if x < 0 {
		x = -x
	}
	return x%d.period < d.on
}

// brailleGrid is a canvas of braille cells, each holding 2x4 dots.
type brailleGrid struct {
	cells [][]uint8
}

func newBrailleGrid(width, height int) *brailleGrid {
	g := &brailleGrid{cells: make([][]uint8, height)}
	for y := range g.cells {
		g.cells[y] = make([]uint8, width)
	}
	return g
}

func (g *brailleGrid) dotRows() int { return len(g.cells) * 4 }

func (g *brailleGrid) set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	cy, cx := y/4, x/2
	if cy >= len(g.cells) || cx >= len(g.cells[cy]) {
		return
	}
	g.cells[cy][cx] |= dotBit(x%2, y%4)
}

// polyline draws values, already one per cell column, scaled so that top
// maps to the first dot row and zero to the last.
func (g *brailleGrid) polyline(values []float64, top float64, d dash) {
	rows := g.dotRows()
	prevX, prevY := -1, -1
	for i, v := range values {
		x := i * 2
		y := rowFor(v, top, rows)
		if prevX < 0 {
			if d.draws(x) {
				g.set(x, y)
			}
		} else {
			bresenham(prevX, prevY, x, y, func(px, py int) {
				if d.draws(px) {
					g.set(px, py)
				}
			})
		}
		prevX, prevY = x, y
	}
}

func (g *brailleGrid) row(y int) string {
	var b strings.Builder
	for _, mask := range g.cells[y] {
		b.WriteRune(rune(0x2800 + int(mask)))
	}
	return b.String()
}

func dotBit(col, row int) uint8 {
	if col == 0 {
		return [4]uint8{0x01, 0x02, 0x04, 0x40}[row]
	}
	return [4]uint8{0x08, 0x10, 0x20, 0x80}[row]
}

func rowFor(v, top float64, rows int) int {
	if rows <= 1 || top <= 0 {
		return rows - 1
	}
	row := int(math.Round((1 - v/top) * float64(rows-1)))
	if row < 0 {
		return 0
	}
	if row >= rows {
		return rows - 1
	}
	return row
}

func bresenham(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := x1 - x0
	if dx < 0 {
		dx = -dx
	}
	dy := y1 - y0
	if dy > 0 {
		dy = -dy
	}
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// resample stretches or averages values to exactly width points.
func resample(values []float64, width int) []float64 {
	if len(values) == 0 || width <= 0 {
		return nil
	}
	out := make([]float64, width)
	n := len(values)
	switch {
	case n == width:
		copy(out, values)
	case n > width:
		for i := range out {
			start := i * n / width
			end := (i + 1) * n / width
			if end <= start {
				end = start + 1
			}
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
	case n == 1 || width == 1:
		for i := range out {
			out[i] = values[0]
		}
	default:
		for i := range out {
			pos := float64(i) * float64(n-1) / float64(width-1)
			idx := int(pos)
			if idx >= n-1 {
				out[i] = values[n-1]
				continue
			}
			frac := pos - float64(idx)
			out[i] = values[idx]*(1-frac) + values[idx+1]*frac
		}
	}
	return out
}

// ChartWidthFor returns the plot width, in cells, that fits a chart of
// results into totalWidth columns.
func ChartWidthFor(results []model.SessionResult, totalWidth int) int {
	width := totalWidth - len(strconv.Itoa(chartTop(results))) - len([]rune(chartSeparator))
	if width < minChartWidth {
		return minChartWidth
	}
	return width
}

func chartTop(results []model.SessionResult) int {
	top := 0
	for _, r := range results {
		if r.WPM > top {
			top = r.WPM
		}
	}
	if top == 0 {
		top = 1
	}
	return top
}

// RenderWPMChart draws each game's WPM, oldest first, and its moving average
// on a shared scale from zero to the best WPM. Fewer than two games draw
// nothing.
func RenderWPMChart(w io.Writer, results []model.SessionResult, window, width, height int) error {
	if len(results) < 2 {
		return nil
	}
	if height <= 0 {
		height = defaultChartHeight
	}
	if width < minChartWidth {
		width = minChartWidth
	}
	raw := make([]float64, len(results))
	for i, r := range results {
		raw[i] = float64(r.WPM)
	}
	top := chartTop(results)

	grid := newBrailleGrid(width, height)
	grid.polyline(resample(raw, width), float64(top), dotted)
	grid.polyline(resample(WPMTrend(results, window), width), float64(top), solid)

	labels := make([]string, height)
	labels[0] = strconv.Itoa(top)
	if height > 2 {
		labels[height/2] = strconv.Itoa(top / 2)
	}
	if height > 1 {
		labels[height-1] = "0"
	}
	labelWidth := len(labels[0])
	for y := 0; y < height; y++ {
		if _, err := fmt.Fprintf(w, "%*s%s%s\n", labelWidth, labels[y], chartSeparator, grid.row(y)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Legend: WPM (%s)  avg of %d (%s)\n", dotted.name, window, solid.name)
	return err
}
