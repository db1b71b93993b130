package enrich

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lvyanru/weather-apiserver/internal/domain/entity"
)

func TestExtractLocation(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  string
		found bool
	}{
		{"simple in-phrase", "What's the weather in Zurich?", "zurich", true},
		{"at-phrase", "Conditions at Geneva please", "geneva", true},
		{"multi word location", "Is it raining in New York today?", "new york", true},
		{"lowercase after preposition is ignored", "what's it like in general", "", false},
		{"no preposition", "Zurich weather", "", false},
		{"empty text", "", "", false},
		{"mid sentence", "I will be in Bern tomorrow, pack an umbrella?", "bern", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := ExtractLocation(tt.text)
			assert.Equal(t, tt.found, found)
			if tt.found {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestEnrichWithKnowledgeIdentity(t *testing.T) {
	// No configured keyword: the text must come back exactly as given.
	inputs := []string{
		"",
		"hello there",
		"Will it rain tomorrow?", // "rain" is not a keyword on its own
	}
	for _, in := range inputs {
		assert.Equal(t, in, EnrichWithKnowledge(in))
	}
}

func TestEnrichWithKnowledgeAppends(t *testing.T) {
	out := EnrichWithKnowledge("What's the temperature in Oslo?")
	assert.True(t, strings.HasPrefix(out, "What's the temperature in Oslo?"))
	assert.Contains(t, out, "2m above ground")

	// Keyword matching is case-insensitive.
	out = EnrichWithKnowledge("TEMPERATURE please")
	assert.Contains(t, out, "2m above ground")

	// Multiple keywords append multiple snippets.
	out = EnrichWithKnowledge("temperature and wind forecast")
	assert.Contains(t, out, "2m above ground")
	assert.Contains(t, out, "10m above ground")
	assert.Contains(t, out, "16 days")
}

func TestEnrichPromptOmitsMissingValues(t *testing.T) {
	prompt := EnrichPrompt("hello", entity.NewConversationContext())

	assert.Contains(t, prompt, SystemContext())
	assert.NotContains(t, prompt, "Current location")
	assert.NotContains(t, prompt, "Recently discussed")
	assert.Contains(t, prompt, "temperature in celsius")
	assert.Contains(t, prompt, "timezone UTC")
	assert.Contains(t, prompt, "User: hello")
}

func TestEnrichPromptIncludesLocationHistory(t *testing.T) {
	ctx := entity.NewConversationContext().
		WithLocation("lisbon").
		WithLocation("porto").
		WithLocation("madrid").
		WithLocation("oslo").
		WithLocation("bern")

	prompt := EnrichPrompt("forecast please", ctx)

	assert.Contains(t, prompt, "Current location: bern")
	// Up to the last three prior locations, most recent first.
	assert.Contains(t, prompt, "Recently discussed: oslo, madrid, porto")
	assert.NotContains(t, prompt, "lisbon")
}

func TestEnrichPromptSingleLocationHasNoHistoryClause(t *testing.T) {
	ctx := entity.NewConversationContext().WithLocation("zurich")
	prompt := EnrichPrompt("hi", ctx)

	assert.Contains(t, prompt, "Current location: zurich")
	assert.NotContains(t, prompt, "Recently discussed")
}
