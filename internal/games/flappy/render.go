package flappy

import (
	"fmt"

	"github.com/vovakirdan/flappyrl/internal/core"
)

// Render draws the current world state scaled onto the screen.
// The bottom row is the ground line; the score readout shows lifetime passes.
func (e *Env) Render(dst *core.Screen) {
	dst.Clear()
	if dst.Width() == 0 || dst.Height() < 2 {
		return
	}

	view := core.Viewport{
		WorldW: e.cfg.Screen.Width,
		WorldH: e.cfg.Screen.Height,
		Cols:   dst.Width(),
		Rows:   dst.Height() - 1,
	}

	groundY := dst.Height() - 1
	dst.DrawHLine(0, groundY, dst.Width(), GroundChar, core.ColorYellow)

	for _, p := range e.pipes.Pipes() {
		e.drawPipe(dst, view, p)
	}

	// Bird
	r := view.Rect(e.bird.X, e.bird.Y, e.cfg.Player.Width, e.cfg.Player.Height)
	dst.DrawRect(r, BirdChar, core.ColorYellow)
	dst.SetColor(r.Right()-1, r.Y, BirdBeakChar, core.ColorYellow)

	dst.DrawText(1, 0, fmt.Sprintf(" Score: %d ", e.passes))

	if e.terminated {
		drawCenteredMessage(dst, "GAME OVER", fmt.Sprintf("Episode score: %d", e.score))
	}
}

// drawPipe renders a single pipe as a top and a bottom column.
func (e *Env) drawPipe(dst *core.Screen, view core.Viewport, p Pipe) {
	x0 := view.Col(p.X)
	w := core.Max(1, view.Col(p.X+e.cfg.Obstacles.PipeWidth)-x0)
	gapTop := view.Row(p.GapY)
	gapBottom := view.Row(p.GapY + e.cfg.Obstacles.GapSize)

	color := core.ColorGreen
	if p.Passed {
		color = core.ColorGray
	}

	if gapTop > 0 {
		dst.DrawRect(core.NewRect(x0, 0, w, gapTop), PipeChar, color)
		dst.DrawHLine(x0, gapTop-1, w, PipeCapTop, color)
	}
	if gapBottom < view.Rows {
		dst.DrawRect(core.NewRect(x0, gapBottom, w, view.Rows-gapBottom), PipeChar, color)
		dst.DrawHLine(x0, gapBottom, w, PipeCapBottom, color)
	}
}

// drawCenteredMessage draws a message box in the center of the screen.
func drawCenteredMessage(dst *core.Screen, title, subtitle string) {
	boxW := core.Max(len(title), len(subtitle)) + 4
	boxH := 5
	boxX := (dst.Width() - boxW) / 2
	boxY := (dst.Height() - boxH) / 2

	dst.DrawRect(core.NewRect(boxX, boxY, boxW, boxH), ' ', core.ColorDefault)
	dst.DrawBox(core.NewRect(boxX, boxY, boxW, boxH))

	dst.DrawTextCentered(boxY+1, title)
	dst.DrawTextCentered(boxY+3, subtitle)
}
