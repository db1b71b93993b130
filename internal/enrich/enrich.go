// Package enrich turns a raw user message and the accumulated conversation
// context into the prompt handed to the generation backend. Location
// extraction is a heuristic, not NLP: it only trusts a capitalized phrase
// following a location preposition, trading false negatives for precision.
package enrich

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/lvyanru/weather-apiserver/internal/domain/entity"
)

// locationPattern matches "in <Proper Noun>" / "at <Proper Noun>" phrases.
// The capitalized first token keeps phrases like "in general" from matching.
var locationPattern = regexp.MustCompile(`\b(?:in|at)\s+([A-Z][A-Za-z'\-]*(?:\s+[A-Z][A-Za-z'\-]*)*)`)

// knowledgeBase maps domain keywords to the explanatory snippet appended
// when the keyword occurs in the user's message.
var knowledgeBase = map[string]string{
	"temperature":   "Temperature readings are 2m above ground.",
	"precipitation": "Precipitation totals combine rain, showers and snowfall.",
	"wind":          "Wind speed is measured 10m above ground.",
	"humidity":      "Humidity is reported as relative humidity at 2m.",
	"uv":            "The UV index is the daily maximum under clear sky.",
	"forecast":      "Forecasts cover up to 16 days at hourly resolution.",
}

// knowledgeKeywords keeps snippet order deterministic.
var knowledgeKeywords = func() []string {
	keys := make([]string, 0, len(knowledgeBase))
	for k := range knowledgeBase {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}()

// ExtractLocation scans free text for a location mention and returns it
// lower-cased, or false when nothing recognizable is found.
func ExtractLocation(text string) (string, bool) {
	m := locationPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	loc := strings.TrimRight(m[1], "'-")
	return strings.ToLower(loc), true
}

// EnrichWithKnowledge appends the knowledge snippets for every keyword that
// occurs in text. When no keyword matches, text is returned exactly as is.
func EnrichWithKnowledge(text string) string {
	lower := strings.ToLower(text)

	var snippets []string
	for _, keyword := range knowledgeKeywords {
		if strings.Contains(lower, keyword) {
			snippets = append(snippets, knowledgeBase[keyword])
		}
	}
	if len(snippets) == 0 {
		return text
	}
	return text + "\n\nBackground: " + strings.Join(snippets, " ")
}

// SystemContext is the fixed preamble identifying the assistant's domain and
// its upstream data provider. It does not depend on any session.
func SystemContext() string {
	return "You are a weather assistant. You answer questions about current conditions " +
		"and forecasts using data from the Open-Meteo API. Answer concisely and use the " +
		"user's preferred units."
}

// EnrichPrompt builds the full prompt for one turn: the system preamble, the
// session's location context and unit preferences, then the user's message
// with any matching knowledge snippets. Clauses for missing values are
// omitted entirely rather than rendered with a placeholder.
func EnrichPrompt(userText string, ctx entity.ConversationContext) string {
	var b strings.Builder
	b.WriteString(SystemContext())
	b.WriteString("\n")

	if ctx.CurrentLocation != "" {
		fmt.Fprintf(&b, "\nCurrent location: %s", ctx.CurrentLocation)
		if prior := priorLocations(ctx, 3); len(prior) > 0 {
			fmt.Fprintf(&b, "\nRecently discussed: %s", strings.Join(prior, ", "))
		}
	}

	p := ctx.Preferences
	fmt.Fprintf(&b, "\nUnits: temperature in %s, wind speed in %s, precipitation in %s, timezone %s\n",
		p.TemperatureUnit, p.WindSpeedUnit, p.PrecipitationUnit, p.Timezone)

	b.WriteString("\nUser: ")
	b.WriteString(EnrichWithKnowledge(userText))
	return b.String()
}

// priorLocations returns up to n history entries older than the current one.
func priorLocations(ctx entity.ConversationContext, n int) []string {
	if len(ctx.RecentLocations) <= 1 {
		return nil
	}
	prior := ctx.RecentLocations[1:]
	if len(prior) > n {
		prior = prior[:n]
	}
	return prior
}
