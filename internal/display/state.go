package display

import (
	"image"
)

// ForecastDays is the number of rows in the forecast table (today excluded).
const ForecastDays = 6

// Placeholder texts shown before the first successful refresh.
const (
	LoadingHeadline  = "Loading news..."
	LoadingPublisher = " ~ "
)

// Section identifies the part of the mirror an update owns.
type Section int

const (
	SectionClock Section = iota
	SectionWeather
	SectionNews
	SectionAssistant
)

func (s Section) String() string {
	switch s {
	case SectionClock:
		return "clock"
	case SectionWeather:
		return "weather"
	case SectionNews:
		return "news"
	case SectionAssistant:
		return "assistant"
	default:
		return "unknown"
	}
}

// ForecastRow is one line of the forecast table.
type ForecastRow struct {
	Label       string      `json:"label"`
	Temperature string      `json:"temperature"`
	IconURL     string      `json:"iconUrl,omitempty"`
	Icon        image.Image `json:"-"`
}

// State is everything currently shown on the mirror.
type State struct {
	Time     string `json:"time"`
	Seconds  string `json:"seconds"`
	Date     string `json:"date"`
	Greeting string `json:"greeting"`

	Temperature string        `json:"temperature"`
	Description string        `json:"description"`
	IconURL     string        `json:"iconUrl,omitempty"`
	Icon        image.Image   `json:"-"`
	Forecast    []ForecastRow `json:"forecast,omitempty"`

	Headline  string `json:"headline"`
	Publisher string `json:"publisher"`

	Assistant string `json:"assistant,omitempty"`
}

// InitialState returns the state the window is built with.
func InitialState() State {
	return State{
		Headline:  LoadingHeadline,
		Publisher: LoadingPublisher,
	}
}

// Clone returns a copy that shares no slices with s.
func (s State) Clone() State {
	if s.Forecast != nil {
		rows := make([]ForecastRow, len(s.Forecast))
		copy(rows, s.Forecast)
		s.Forecast = rows
	}
	return s
}
