package display

import "image"

// Update replaces the fields of exactly one Section.
type Update interface {
	Section() Section
	Apply(s *State)
}

// ClockUpdate carries the formatted wall-clock fields.
type ClockUpdate struct {
	Time     string
	Seconds  string
	Date     string
	Greeting string
}

func (ClockUpdate) Section() Section { return SectionClock }

func (u ClockUpdate) Apply(s *State) {
	s.Time = u.Time
	s.Seconds = u.Seconds
	s.Date = u.Date
	s.Greeting = u.Greeting
}

// WeatherUpdate carries a weather refresh result. When Unavailable is set
// only Temperature is written; the previous description and icons stay.
type WeatherUpdate struct {
	Unavailable bool

	Temperature string
	Description string
	IconURL     string
	Icon        image.Image
	Forecast    []ForecastRow
}

func (WeatherUpdate) Section() Section { return SectionWeather }

func (u WeatherUpdate) Apply(s *State) {
	s.Temperature = u.Temperature
	if u.Unavailable {
		return
	}
	s.Description = u.Description
	s.IconURL = u.IconURL
	s.Icon = u.Icon
	rows := make([]ForecastRow, len(u.Forecast))
	copy(rows, u.Forecast)
	s.Forecast = rows
}

// NewsUpdate carries the headline and its publisher line.
type NewsUpdate struct {
	Headline  string
	Publisher string
}

func (NewsUpdate) Section() Section { return SectionNews }

func (u NewsUpdate) Apply(s *State) {
	s.Headline = u.Headline
	s.Publisher = u.Publisher
}

// AssistantUpdate carries the last assistant exchange.
type AssistantUpdate struct {
	Text string
}

func (AssistantUpdate) Section() Section { return SectionAssistant }

func (u AssistantUpdate) Apply(s *State) {
	s.Assistant = u.Text
}
