package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/lum1n0us/envoy-wasm-vm-memory-consumption/internal/report"
)

// ChartSeries is one plotted line: a configuration label and its metric
// values ordered by round (x position = round index, i.e. instance count).
type ChartSeries struct {
	Name   string
	Color  string // ANSI color code (e.g., green, cyan)
	Values []float64
}

// ChartConfig configures the chart rendering.
type ChartConfig struct {
	Title  string
	Width  int // character columns for plot area (default 60)
	Height int // character rows for plot area (default 15)
}

// seriesColors is the palette for multi-series charts.
var seriesColors = []string{green, cyan, yellow, magenta, blue, red, white}

// MetricSeries builds one chart series per configuration label for a metric,
// skipping labels whose rounds never carry it.
func MetricSeries(s *report.Summary, metric string) []ChartSeries {
	var series []ChartSeries
	for _, row := range s.Rows {
		if row.Metric != metric {
			continue
		}
		values := make([]float64, len(row.Values))
		for i, v := range row.Values {
			values[i] = float64(v)
		}
		series = append(series, ChartSeries{
			Name:   row.Label,
			Color:  seriesColors[len(series)%len(seriesColors)],
			Values: values,
		})
	}
	return series
}

// brailleCanvas is a 2D grid of braille dot-pixels.
// Each character cell is 2 columns × 4 rows of sub-pixels.
// (0,0) is top-left. x ∈ [0, width*2), y ∈ [0, height*4).
type brailleCanvas struct {
	width  int       // in characters
	height int       // in characters
	dots   [][]uint8 // [height][width] accumulated braille bitmasks
}

func newBrailleCanvas(w, h int) *brailleCanvas {
	dots := make([][]uint8, h)
	for i := range dots {
		dots[i] = make([]uint8, w)
	}
	return &brailleCanvas{width: w, height: h, dots: dots}
}

// set activates a dot at sub-pixel coordinates (px, py).
func (c *brailleCanvas) set(px, py int) {
	if px < 0 || px >= c.width*2 || py < 0 || py >= c.height*4 {
		return
	}
	cx := px / 2
	cy := py / 4
	dx := px % 2 // 0=left, 1=right
	dy := py % 4 // 0=top, 3=bottom

	// Braille dot bit mapping:
	//   Left col (dx=0): rows 0-2 → bits 0-2 (0x01,0x02,0x04), row 3 → bit 6 (0x40)
	//   Right col (dx=1): rows 0-2 → bits 3-5 (0x08,0x10,0x20), row 3 → bit 7 (0x80)
	var bit uint8
	if dx == 0 {
		if dy < 3 {
			bit = 1 << uint(dy)
		} else {
			bit = 0x40
		}
	} else {
		if dy < 3 {
			bit = 1 << uint(dy+3)
		} else {
			bit = 0x80
		}
	}
	c.dots[cy][cx] |= bit
}

// drawLine draws a line between two sub-pixel coordinates using Bresenham's.
func (c *brailleCanvas) drawLine(x0, y0, x1, y1 int) {
	dx := iabs(x1 - x0)
	dy := iabs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy

	for {
		c.set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// render returns the canvas as a slice of strings (one per row).
func (c *brailleCanvas) render() []string {
	lines := make([]string, c.height)
	for y := 0; y < c.height; y++ {
		var sb strings.Builder
		for x := 0; x < c.width; x++ {
			sb.WriteRune(rune(0x2800 + int(c.dots[y][x])))
		}
		lines[y] = sb.String()
	}
	return lines
}

func iabs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// RenderChart renders a braille line chart of metric growth across instance
// counts. Multiple series are overlaid with per-series colors.
func RenderChart(w io.Writer, cfg ChartConfig, series []ChartSeries) {
	if len(series) == 0 {
		return
	}

	width := cfg.Width
	if width <= 0 {
		width = 60
	}
	height := cfg.Height
	if height <= 0 {
		height = 15
	}

	// Global Y range and widest series.
	var yMin, yMax float64
	maxPoints := 0
	first := true
	for _, s := range series {
		if len(s.Values) > maxPoints {
			maxPoints = len(s.Values)
		}
		for _, v := range s.Values {
			if first {
				yMin, yMax = v, v
				first = false
				continue
			}
			if v < yMin {
				yMin = v
			}
			if v > yMax {
				yMax = v
			}
		}
	}
	if first || maxPoints < 2 {
		return // nothing to plot
	}

	// Pad Y range for aesthetics.
	yRange := yMax - yMin
	if yRange == 0 {
		yRange = 1
		yMax = yMin + 1
	}
	pad := yRange * 0.05
	yMin -= pad
	if yMin < 0 {
		yMin = 0
	}
	yMax += pad

	pxWidth := width * 2
	pxHeight := height * 4

	// One canvas per series for per-series coloring.
	canvases := make([]*brailleCanvas, len(series))
	for si, s := range series {
		canvases[si] = newBrailleCanvas(width, height)
		prevPx, prevPy := -1, -1
		for i, v := range s.Values {
			px := 0
			if maxPoints > 1 {
				px = i * (pxWidth - 1) / (maxPoints - 1)
			}
			py := int((1.0 - (v-yMin)/(yMax-yMin)) * float64(pxHeight-1))
			if py < 0 {
				py = 0
			}
			if py >= pxHeight {
				py = pxHeight - 1
			}
			if prevPx >= 0 {
				canvases[si].drawLine(prevPx, prevPy, px, py)
			} else {
				canvases[si].set(px, py)
			}
			prevPx, prevPy = px, py
		}
	}

	yLabelWidth := 10
	yFmt := func(v float64) string { return fmt.Sprintf("%.0f", v) }

	if cfg.Title != "" {
		fmt.Fprintf(w, "  %s\n", Bold(cfg.Title))
	}

	// Composite output: per-cell, pick color from the series that drew dots.
	for row := 0; row < height; row++ {
		label := ""
		switch {
		case row == 0:
			label = yFmt(yMax)
		case row == height/2:
			label = yFmt(yMin + (yMax-yMin)*0.5)
		case row == height-1:
			label = yFmt(yMin)
		}
		fmt.Fprintf(w, "  %*s %s", yLabelWidth, Dim(label), dim+"│"+reset)

		for col := 0; col < width; col++ {
			chosen := -1
			var merged uint8
			for si, cv := range canvases {
				if cv.dots[row][col] != 0 {
					merged |= cv.dots[row][col]
					if chosen < 0 {
						chosen = si
					}
				}
			}
			if merged == 0 {
				fmt.Fprint(w, string(rune(0x2800))) // blank braille
			} else {
				color := series[chosen].Color
				if color == "" {
					color = cyan
				}
				fmt.Fprintf(w, "%s%s%s", color, string(rune(0x2800+int(merged))), reset)
			}
		}
		fmt.Fprintln(w)
	}

	// X-axis line and instance-count labels.
	fmt.Fprintf(w, "  %*s %s\n", yLabelWidth, "", dim+"└"+strings.Repeat("─", width)+reset)
	printInstanceAxis(w, maxPoints, width, yLabelWidth)

	// Legend when multiple series.
	if len(series) > 1 {
		fmt.Fprintf(w, "  %*s  ", yLabelWidth, "")
		for i, s := range series {
			if i > 0 {
				fmt.Fprint(w, "  ")
			}
			color := s.Color
			if color == "" {
				color = cyan
			}
			fmt.Fprintf(w, "%s━━%s %s", color, reset, s.Name)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
}

func printInstanceAxis(w io.Writer, points, width, yLabelWidth int) {
	fmt.Fprintf(w, "  %*s  ", yLabelWidth, "")
	pos := 0
	for i := 0; i < points; i++ {
		label := fmt.Sprintf("%d vm", i+1)
		if i > 0 {
			label = fmt.Sprintf("%d vms", i+1)
		}
		target := 0
		if points > 1 {
			target = i * width / (points - 1)
		}
		gap := target - pos
		if gap < 0 {
			gap = 0
		}
		fmt.Fprint(w, strings.Repeat(" ", gap))
		fmt.Fprint(w, Dim(label))
		pos = target + len(label)
	}
	fmt.Fprintln(w)
}
