// Package face draws a Clock reading on a display: the date on one line and
// the time of day below it.
package face

import (
	"image/color"

	"cloud.google.com/go/civil"
	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

var (
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Black = color.RGBA{A: 255}
)

// Face redraws only the lines whose text changed, erasing the old text by
// drawing it again in the background colour.
type Face struct {
	display drivers.Displayer
	font    *tinyfont.Font

	X, Y       int16 // baseline of the date line
	LineHeight int16
	Fg, Bg     color.RGBA

	lines [2]string
}

func New(display drivers.Displayer, font *tinyfont.Font) *Face {
	return &Face{
		display:    display,
		font:       font,
		X:          8,
		Y:          60,
		LineHeight: 24,
		Fg:         White,
		Bg:         Black,
	}
}

// Show draws dt and pushes the frame to the display if anything changed.
func (f *Face) Show(dt civil.DateTime) error {
	lines := [2]string{dt.Date.String(), dt.Time.String()}
	if lines == f.lines {
		return nil
	}
	for i := range lines {
		if lines[i] == f.lines[i] {
			continue
		}
		y := f.Y + int16(i)*f.LineHeight
		tinyfont.WriteLine(f.display, f.font, f.X, y, f.lines[i], f.Bg)
		tinyfont.WriteLine(f.display, f.font, f.X, y, lines[i], f.Fg)
	}
	f.lines = lines
	return f.display.Display()
}
