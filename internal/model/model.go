package model

import "regexp"

// CalendarEvent is a single entry of a day's schedule as supplied by an
// event source. Values are treated as immutable for the duration of a render.
type CalendarEvent struct {
	ID          int    `yaml:"id" json:"id"`
	// StoreID is the local store's row id; zero for events from other
	// sources. Unlike ID it survives merging.
	StoreID     int    `yaml:"-" json:"store_id,omitempty"`
	Title       string `yaml:"title" json:"title"`
	Subtitle    string `yaml:"subtitle,omitempty" json:"subtitle,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// StartTime / EndTime are "HH:MM" 24-hour clock strings. An empty string
	// stands for "no time"; both are ignored when AllDay is set.
	StartTime string `yaml:"start_time,omitempty" json:"start_time"`
	EndTime   string `yaml:"end_time,omitempty" json:"end_time"`

	AllDay bool `yaml:"all_day" json:"all_day"`

	// Color is a CSS color used as the box background. Values failing
	// IsCSSColor are not emitted as CSS.
	Color string `yaml:"color" json:"color"`
}

// HasTimes reports whether both clock strings are present.
func (e CalendarEvent) HasTimes() bool {
	return e.StartTime != "" && e.EndTime != ""
}

var cssColor = regexp.MustCompile(`^(?:[a-zA-Z]+|#[0-9a-fA-F]{3,8}|(?:rgb|rgba|hsl|hsla)\([0-9.,%/ ]+\))$`)

// IsCSSColor reports whether s is a named color, a hex color or an
// rgb()/hsl() function.
func IsCSSColor(s string) bool {
	return cssColor.MatchString(s)
}

// LeftUnit is the CSS unit of PositionedEvent.Left.
type LeftUnit string

const (
	UnitPixels  LeftUnit = "px"
	UnitPercent LeftUnit = "%"
)

// PositionedEvent is a timed CalendarEvent placed on the 24-hour axis.
type PositionedEvent struct {
	CalendarEvent

	// Top is the pixel offset from midnight; Height may be zero or negative
	// when the event ends at or before it starts.
	Top    float64 `json:"top"`
	Height float64 `json:"height"`

	// Left staggers overlapping events horizontally.
	Left     float64  `json:"left"`
	LeftUnit LeftUnit `json:"left_unit"`

	StartMinutes int `json:"start_minutes"`
	EndMinutes   int `json:"end_minutes"`
}
