package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/i474232898/smart-mirror/internal/display"
)

const (
	Title = "Smart Mirror"

	iconSize = 55
)

type forecastRow struct {
	icon        *canvas.Image
	temperature *canvas.Text
	day         *canvas.Text
}

// Mirror is the kiosk window. It implements display.Sink; Render must run
// on the fyne UI thread.
type Mirror struct {
	win fyne.Window

	greeting *canvas.Text
	clock    *canvas.Text
	seconds  *canvas.Text
	date     *canvas.Text

	icon        *canvas.Image
	temperature *canvas.Text
	description *canvas.Text
	forecast    [display.ForecastDays]forecastRow

	headline  *widget.RichText
	publisher *canvas.Text
	assistant *canvas.Text
}

// New builds the window in its initial state. It is fullscreen unless
// windowed is set.
func New(app fyne.App, windowed bool) *Mirror {
	app.Settings().SetTheme(newMirrorTheme())

	m := &Mirror{win: app.NewWindow(Title)}
	m.win.SetContent(m.build(display.InitialState()))
	m.win.SetPadded(false)
	if windowed {
		m.win.Resize(fyne.NewSize(1280, 800))
	} else {
		m.win.SetFullScreen(true)
	}
	return m
}

func text(s string, size float32, dim, bold bool) *canvas.Text {
	t := canvas.NewText(s, white)
	if dim {
		t.Color = grey
	}
	t.TextSize = size
	t.TextStyle = fyne.TextStyle{Bold: bold}
	return t
}

func icon() *canvas.Image {
	img := canvas.NewImageFromImage(nil)
	img.FillMode = canvas.ImageFillContain
	img.SetMinSize(fyne.NewSize(iconSize, iconSize))
	return img
}

func (m *Mirror) build(s display.State) fyne.CanvasObject {
	m.greeting = text(s.Greeting, 55, false, false)
	m.clock = text(s.Time, 60, false, true)
	m.seconds = text(s.Seconds, 30, true, true)
	m.date = text(s.Date, 25, false, false)

	left := container.NewVBox(
		m.greeting,
		container.NewHBox(m.clock, container.NewVBox(layout.NewSpacer(), m.seconds)),
		m.date,
	)

	m.icon = icon()
	m.temperature = text(s.Temperature, 35, false, true)
	m.description = text(s.Description, 35, false, false)

	line := canvas.NewRectangle(grey)
	line.SetMinSize(fyne.NewSize(250, 2))

	rows := container.NewVBox()
	for i := range m.forecast {
		r := forecastRow{
			icon:        icon(),
			temperature: text("", 21, false, true),
			day:         text("", 21, false, false),
		}
		r.temperature.Color = RowColor(i)
		r.day.Color = RowColor(i)
		r.day.Alignment = fyne.TextAlignTrailing
		m.forecast[i] = r
		rows.Add(container.NewHBox(r.icon, r.temperature, layout.NewSpacer(), r.day))
	}

	right := container.NewVBox(
		container.NewHBox(m.icon, m.temperature, m.description),
		container.NewHBox(layout.NewSpacer(), line),
		rows,
	)

	m.headline = widget.NewRichText(&widget.TextSegment{
		Text:  s.Headline,
		Style: widget.RichTextStyle{SizeName: sizeNameHeadline, ColorName: theme.ColorNameForeground},
	})
	m.headline.Wrapping = fyne.TextWrapWord
	m.publisher = text(s.Publisher, 23, true, false)
	m.assistant = text(s.Assistant, 23, true, false)

	bottom := container.NewVBox(m.assistant, m.headline, m.publisher)

	top := container.NewHBox(left, layout.NewSpacer(), right)
	content := container.NewBorder(top, bottom, nil, nil)

	bg := canvas.NewRectangle(black)
	return container.NewStack(bg, container.New(layout.NewCustomPaddedLayout(50, 50, 50, 50), content))
}

// Window returns the underlying fyne window.
func (m *Mirror) Window() fyne.Window {
	return m.win
}

// Render copies the fields of section from state onto the widgets.
func (m *Mirror) Render(section display.Section, s display.State) {
	switch section {
	case display.SectionClock:
		setText(m.clock, s.Time)
		setText(m.seconds, s.Seconds)
		setText(m.date, s.Date)
		setText(m.greeting, s.Greeting)
	case display.SectionWeather:
		setText(m.temperature, s.Temperature)
		setText(m.description, s.Description)
		m.icon.Image = s.Icon
		m.icon.Refresh()
		for i := range m.forecast {
			var row display.ForecastRow
			if i < len(s.Forecast) {
				row = s.Forecast[i]
			}
			r := m.forecast[i]
			setText(r.temperature, row.Temperature)
			setText(r.day, row.Label)
			r.icon.Image = row.Icon
			r.icon.Refresh()
		}
	case display.SectionNews:
		setHeadline(m.headline, s.Headline)
		setText(m.publisher, s.Publisher)
	case display.SectionAssistant:
		setText(m.assistant, s.Assistant)
	}
}

func setText(t *canvas.Text, s string) {
	if t.Text == s {
		return
	}
	t.Text = s
	t.Refresh()
}

func setHeadline(r *widget.RichText, s string) {
	seg := r.Segments[0].(*widget.TextSegment)
	if seg.Text == s {
		return
	}
	seg.Text = s
	r.Refresh()
}
