package core

// Color represents a foreground color for a screen cell.
// Values are mapped to ANSI codes by the terminal renderer.
type Color uint8

const (
	ColorDefault Color = iota
	ColorGreen
	ColorYellow
	ColorRed
	ColorCyan
	ColorGray
)
