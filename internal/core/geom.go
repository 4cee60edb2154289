// Package core provides the shared types of the environment contract and the
// character-cell drawing primitives used by the terminal front ends.
// It has no external dependencies so the simulation stays pure and testable.
package core

import "math"

// Rect is an axis-aligned box in screen cells.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Contains returns true if the cell (x, y) is inside this rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Viewport maps world coordinates onto a grid of screen cells.
// World and screen share the same orientation: y grows downwards.
type Viewport struct {
	WorldW, WorldH float64
	Cols, Rows     int
}

// Col returns the screen column for a world x coordinate.
func (v Viewport) Col(x float64) int {
	if v.WorldW <= 0 {
		return 0
	}
	return int(math.Floor(x * float64(v.Cols) / v.WorldW))
}

// Row returns the screen row for a world y coordinate.
func (v Viewport) Row(y float64) int {
	if v.WorldH <= 0 {
		return 0
	}
	return int(math.Floor(y * float64(v.Rows) / v.WorldH))
}

// Rect projects a world-space box onto the screen.
// Non-empty boxes always cover at least one cell.
func (v Viewport) Rect(x, y, w, h float64) Rect {
	c0, r0 := v.Col(x), v.Row(y)
	c1, r1 := v.Col(x+w), v.Row(y+h)
	return NewRect(c0, r0, Max(1, c1-c0), Max(1, r1-r0))
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Min returns the smaller of two integers.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of two integers.
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
