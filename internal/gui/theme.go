package gui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

var (
	black = color.Black
	white = color.White
	grey  = color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
)

// rowColors fade the forecast table from today+1 downwards.
var rowColors = [...]color.NRGBA{
	{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	{R: 0xe6, G: 0xe6, B: 0xe6, A: 0xff},
	{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff},
	{R: 0xb3, G: 0xb3, B: 0xb3, A: 0xff},
	{R: 0x99, G: 0x99, B: 0x99, A: 0xff},
	{R: 0x80, G: 0x80, B: 0x80, A: 0xff},
}

// RowColor is the text colour of forecast row i.
func RowColor(i int) color.Color {
	if i < 0 {
		i = 0
	}
	if i >= len(rowColors) {
		i = len(rowColors) - 1
	}
	return rowColors[i]
}

// sizeNameHeadline is the text size of the news headline.
const sizeNameHeadline fyne.ThemeSizeName = "mirrorHeadline"

const headlineSize = 30

// mirrorTheme is the default dark theme on a pure black background.
type mirrorTheme struct {
	fyne.Theme
}

func newMirrorTheme() fyne.Theme {
	return &mirrorTheme{Theme: theme.DefaultTheme()}
}

func (t *mirrorTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameBackground, theme.ColorNameOverlayBackground:
		return black
	case theme.ColorNameForeground:
		return white
	}
	return t.Theme.Color(name, theme.VariantDark)
}

func (t *mirrorTheme) Size(name fyne.ThemeSizeName) float32 {
	if name == sizeNameHeadline {
		return headlineSize
	}
	return t.Theme.Size(name)
}
