package entity

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPreferencesDefaults(t *testing.T) {
	tests := []struct {
		name string
		in   Preferences
		want Preferences
	}{
		{
			name: "all blank falls back to defaults",
			in:   NewPreferences("", "", "", ""),
			want: Preferences{
				TemperatureUnit:   "celsius",
				WindSpeedUnit:     "kmh",
				PrecipitationUnit: "mm",
				Timezone:          "UTC",
			},
		},
		{
			name: "whitespace counts as blank",
			in:   NewPreferences("  ", "\t", " ", ""),
			want: DefaultPreferences(),
		},
		{
			name: "explicit values survive",
			in:   NewPreferences("fahrenheit", "ms", "inch", "Europe/Zurich"),
			want: Preferences{
				TemperatureUnit:   "fahrenheit",
				WindSpeedUnit:     "ms",
				PrecipitationUnit: "inch",
				Timezone:          "Europe/Zurich",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in)
		})
	}
}

func TestWithLocationMovesToFront(t *testing.T) {
	// Scenario: Zurich, Bern, Zurich again. No duplicate, Zurich back in front.
	ctx := NewConversationContext().
		WithLocation("Zurich").
		WithLocation("Bern").
		WithLocation("Zurich")

	assert.Equal(t, "Zurich", ctx.CurrentLocation)
	assert.Equal(t, []string{"Zurich", "Bern"}, ctx.RecentLocations)
}

func TestWithLocationBlankIsNoOp(t *testing.T) {
	ctx := NewConversationContext().WithLocation("Geneva")

	for _, blank := range []string{"", "   ", "\t"} {
		next := ctx.WithLocation(blank)
		assert.Equal(t, ctx, next)
	}
}

func TestWithLocationCapsHistory(t *testing.T) {
	ctx := NewConversationContext()
	for i := 0; i < 25; i++ {
		ctx = ctx.WithLocation(fmt.Sprintf("city-%d", i))
		require.LessOrEqual(t, len(ctx.RecentLocations), maxRecentLocations)
		require.Equal(t, ctx.CurrentLocation, ctx.RecentLocations[0])
	}

	assert.Len(t, ctx.RecentLocations, maxRecentLocations)
	assert.Equal(t, "city-24", ctx.RecentLocations[0])
	assert.Equal(t, "city-15", ctx.RecentLocations[maxRecentLocations-1])
}

func TestWithLocationDoesNotMutateReceiver(t *testing.T) {
	base := NewConversationContext().WithLocation("Basel")
	_ = base.WithLocation("Lugano")

	assert.Equal(t, "Basel", base.CurrentLocation)
	assert.Equal(t, []string{"Basel"}, base.RecentLocations)
}

func TestWithExtensionCopiesMap(t *testing.T) {
	base := NewConversationContext().WithExtension("units_locked", true)
	next := base.WithExtension("beta_features", "on")

	assert.Len(t, base.Extension, 1)
	assert.Len(t, next.Extension, 2)
	assert.Equal(t, true, next.Extension["units_locked"])
}

func TestWithPreferences(t *testing.T) {
	prefs := NewPreferences("fahrenheit", "", "", "America/New_York")
	ctx := NewConversationContext().WithPreferences(prefs)

	assert.Equal(t, "fahrenheit", ctx.Preferences.TemperatureUnit)
	// Blank fields were defaulted at construction, not left empty.
	assert.Equal(t, "kmh", ctx.Preferences.WindSpeedUnit)
}
