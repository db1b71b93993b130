package entity

import "strings"

// Default unit preferences, applied when a field is blank at construction time.
const (
	DefaultTemperatureUnit   = "celsius"
	DefaultWindSpeedUnit     = "kmh"
	DefaultPrecipitationUnit = "mm"
	DefaultTimezone          = "UTC"
)

// maxRecentLocations caps the location history kept per conversation.
const maxRecentLocations = 10

// Preferences holds the user's unit and timezone preferences.
type Preferences struct {
	TemperatureUnit   string
	WindSpeedUnit     string
	PrecipitationUnit string
	Timezone          string
}

// NewPreferences builds a Preferences value, falling back to the documented
// defaults for any blank field. Defaulting happens here, never at read time.
func NewPreferences(temperature, windSpeed, precipitation, timezone string) Preferences {
	return Preferences{
		TemperatureUnit:   orDefault(temperature, DefaultTemperatureUnit),
		WindSpeedUnit:     orDefault(windSpeed, DefaultWindSpeedUnit),
		PrecipitationUnit: orDefault(precipitation, DefaultPrecipitationUnit),
		Timezone:          orDefault(timezone, DefaultTimezone),
	}
}

// DefaultPreferences returns Preferences with all defaults.
func DefaultPreferences() Preferences {
	return NewPreferences("", "", "", "")
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// ConversationContext is the accumulated conversational state attached to a
// session: the current and recent locations, unit preferences, and free-form
// extension data. It is an immutable value; every With* method returns a new
// context and never mutates the receiver.
type ConversationContext struct {
	CurrentLocation string
	RecentLocations []string
	Preferences     Preferences
	Extension       map[string]any
}

// NewConversationContext creates an empty context with default preferences.
func NewConversationContext() ConversationContext {
	return ConversationContext{
		Preferences: DefaultPreferences(),
	}
}

// WithLocation returns a copy of the context with loc set as the current
// location and pushed to the front of the recent-locations history.
// A location already present in the history is moved to the front rather
// than duplicated, and the history is truncated to the most recent ten
// entries. A blank loc returns the context unchanged.
func (c ConversationContext) WithLocation(loc string) ConversationContext {
	if strings.TrimSpace(loc) == "" {
		return c
	}

	recent := make([]string, 0, len(c.RecentLocations)+1)
	recent = append(recent, loc)
	for _, l := range c.RecentLocations {
		if l == loc {
			continue
		}
		recent = append(recent, l)
	}
	if len(recent) > maxRecentLocations {
		recent = recent[:maxRecentLocations]
	}

	next := c
	next.CurrentLocation = loc
	next.RecentLocations = recent
	return next
}

// WithPreferences returns a copy of the context with the given preferences.
func (c ConversationContext) WithPreferences(p Preferences) ConversationContext {
	next := c
	next.Preferences = p
	return next
}

// WithExtension returns a copy of the context with the extension entry set.
// The extension map is copied, so the receiver stays untouched.
func (c ConversationContext) WithExtension(key string, value any) ConversationContext {
	ext := make(map[string]any, len(c.Extension)+1)
	for k, v := range c.Extension {
		ext[k] = v
	}
	ext[key] = value

	next := c
	next.Extension = ext
	return next
}
