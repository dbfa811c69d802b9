package main

import (
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rmax-ai/flowcanvas/pkg/canvas"
)

// One terminal cell covers cellW x cellH logical canvas pixels.
const (
	cellW = 10.0
	cellH = 20.0
)

var (
	gridCols = int(math.Ceil((canvas.MaxX + canvas.NodeWidth) / cellW))
	gridRows = int(math.Ceil((canvas.MaxY + canvas.NodeHeight) / cellH))

	boxCols = int(canvas.NodeWidth / cellW)
	boxRows = 3
)

// grid is where the canvas sits on screen, in cells.
type grid struct {
	Left int
	Top  int
}

// Origin is the canvas origin in pointer coordinates.
func (g grid) Origin() canvas.Point {
	return canvas.Point{X: float64(g.Left) * cellW, Y: float64(g.Top) * cellH}
}

// Pointer maps a terminal cell to pointer coordinates.
func (g grid) Pointer(x, y int) canvas.Point {
	return canvas.Point{X: float64(x) * cellW, Y: float64(y) * cellH}
}

// Contains reports whether the screen cell (x, y) is inside the canvas.
func (g grid) Contains(x, y int) bool {
	col, row := x-g.Left, y-g.Top
	return col >= 0 && col < gridCols && row >= 0 && row < gridRows
}

// HitTest returns the topmost node whose box covers screen cell (x, y).
func (g grid) HitTest(nodes []canvas.NodeView, x, y int) (string, bool) {
	col, row := x-g.Left, y-g.Top
	nodes = stacked(nodes)
	for i := len(nodes) - 1; i >= 0; i-- {
		if boxOf(nodes[i]).covers(col, row) {
			return nodes[i].ID, true
		}
	}
	return "", false
}

// stacked returns nodes in paint order: lowest Z first, scene order within
// equal Z.
func stacked(nodes []canvas.NodeView) []canvas.NodeView {
	out := slices.Clone(nodes)
	slices.SortStableFunc(out, func(a, b canvas.NodeView) int {
		return a.Z - b.Z
	})
	return out
}

func toCell(x, y float64) (int, int) {
	return int(math.Floor(x / cellW)), int(math.Floor(y / cellH))
}

type cell struct {
	r     rune
	color string
	bold  bool
}

type raster [][]cell

func newRaster() raster {
	rows := make(raster, gridRows)
	for i := range rows {
		rows[i] = make([]cell, gridCols)
		for j := range rows[i] {
			rows[i][j] = cell{r: ' '}
		}
	}
	return rows
}

func (ra raster) set(col, row int, c cell) {
	if row < 0 || row >= len(ra) || col < 0 || col >= len(ra[row]) {
		return
	}
	ra[row][col] = c
}

// arrowGlyph picks the arrow closest to theta (radians, y down).
func arrowGlyph(theta float64) rune {
	glyphs := []rune{'→', '↘', '↓', '↙', '←', '↖', '↑', '↗'}
	octant := int(math.Round(theta/(math.Pi/4))) % 8
	if octant < 0 {
		octant += 8
	}
	return glyphs[octant]
}

// lineGlyph picks the stroke character for a segment direction.
func lineGlyph(theta float64) rune {
	switch arrowGlyph(theta) {
	case '→', '←':
		return '─'
	case '↓', '↑':
		return '│'
	case '↘', '↖':
		return '╲'
	default:
		return '╱'
	}
}

type box struct{ col, row int }

func boxOf(n canvas.NodeView) box {
	c, r := toCell(n.X, n.Y)
	return box{col: c, row: r}
}

func (b box) covers(col, row int) bool {
	return col >= b.col && col < b.col+boxCols && row >= b.row && row < b.row+boxRows
}

// drawConnection traces c between the two boxes; the arrow takes the last
// cell before the target box.
func (ra raster) drawConnection(c canvas.ConnectionView, from, to box) {
	c0, r0 := toCell(c.Line.From.X, c.Line.From.Y)
	c1, r1 := toCell(c.Line.To.X, c.Line.To.Y)
	steps := max(abs(c1-c0), abs(r1-r0))
	glyph := lineGlyph(c.Theta)

	last := -1
	var lastCol, lastRow int
	for i := 0; i <= steps; i++ {
		col, row := c0, r0
		if steps > 0 {
			t := float64(i) / float64(steps)
			col += int(math.Round(t * float64(c1-c0)))
			row += int(math.Round(t * float64(r1-r0)))
		}
		if from.covers(col, row) {
			continue
		}
		if to.covers(col, row) {
			break
		}
		if c.Dash == "" || i%2 == 0 {
			ra.set(col, row, cell{r: glyph, color: c.Stroke})
		}
		last, lastCol, lastRow = i, col, row
	}
	if last >= 0 {
		ra.set(lastCol, lastRow, cell{r: arrowGlyph(c.Theta), color: c.Stroke})
	}
}

func (ra raster) drawNode(n canvas.NodeView, pulseOn bool) {
	c0, r0 := toCell(n.X, n.Y)
	color := canvas.StyleFor(n.Status).Term
	inner := boxCols - 2

	top := "┌" + strings.Repeat("─", inner) + "┐"
	if n.Pulse && pulseOn {
		top = "┌" + strings.Repeat("─", inner-1) + "●┐"
	}
	mid := "│" + fit(n.Name, inner, ' ') + "│"
	bottom := "└" + fit(n.Duration, inner, '─') + "┘"

	for i, line := range []string{top, mid, bottom} {
		for j, r := range []rune(line) {
			ra.set(c0+j, r0+i, cell{r: r, color: color, bold: n.Dragging})
		}
	}
}

func fit(s string, width int, pad rune) string {
	runes := []rune(s)
	if len(runes) > width {
		return string(runes[:width])
	}
	return s + strings.Repeat(string(pad), width-len(runes))
}

// String renders the raster, grouping same-styled runs.
func (ra raster) String() string {
	var sb strings.Builder
	for i, row := range ra {
		if i > 0 {
			sb.WriteByte('\n')
		}
		start := 0
		for j := 1; j <= len(row); j++ {
			if j < len(row) && row[j].color == row[start].color && row[j].bold == row[start].bold {
				continue
			}
			var run strings.Builder
			for _, c := range row[start:j] {
				run.WriteRune(c.r)
			}
			if row[start].color == "" {
				sb.WriteString(run.String())
			} else {
				style := lipgloss.NewStyle().Foreground(lipgloss.Color(row[start].color)).Bold(row[start].bold)
				sb.WriteString(style.Render(run.String()))
			}
			start = j
		}
	}
	return sb.String()
}

// drawScene rasterizes scene: connections first, then nodes in stacking order.
func drawScene(scene canvas.Scene, pulseOn bool) raster {
	ra := newRaster()
	boxes := make(map[string]box, len(scene.Nodes))
	for _, n := range scene.Nodes {
		boxes[n.ID] = boxOf(n)
	}
	for _, c := range scene.Connections {
		ra.drawConnection(c, boxes[c.From], boxes[c.To])
	}
	for _, n := range stacked(scene.Nodes) {
		ra.drawNode(n, pulseOn)
	}
	return ra
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
