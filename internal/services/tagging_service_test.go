package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/streamreco/recommend-engine/internal/models"
)

func TestExtractLowercasesAndSplits(t *testing.T) {
	svc := NewTaggingService()
	doc := models.VideoDocument{
		Title: "Amazing Bollywood Dance",
		Tag:   []string{"India", "Music"},
	}

	tags := svc.Extract(doc)

	assert.Contains(t, tags, "amazing")
	assert.Contains(t, tags, "bollywood")
	assert.Contains(t, tags, "dance")
	assert.Contains(t, tags, "india")
	assert.Contains(t, tags, "music")
}

func TestExtractStripsEmoji(t *testing.T) {
	svc := NewTaggingService()
	doc := models.VideoDocument{Title: "party \U0001F389 tonight"}

	tags := svc.Extract(doc)

	assert.Contains(t, tags, "party")
	assert.Contains(t, tags, "tonight")
	for tag := range tags {
		assert.NotContains(t, tag, "\U0001F389")
	}
}

func TestExtractReplacesPunctuationWithWhitespace(t *testing.T) {
	svc := NewTaggingService()
	doc := models.VideoDocument{Title: "comedy|skit_full#hd"}

	tags := svc.Extract(doc)

	assert.Contains(t, tags, "comedy")
	assert.Contains(t, tags, "skit")
	assert.Contains(t, tags, "full")
	assert.NotContains(t, tags, "comedy|skit_full#hd")
}

func TestExtractDropsShortLongAndStopWords(t *testing.T) {
	svc := NewTaggingService()
	longToken := ""
	for i := 0; i < 31; i++ {
		longToken += "a"
	}
	doc := models.VideoDocument{Title: "a the " + longToken + " comedy"}

	tags := svc.Extract(doc)

	assert.NotContains(t, tags, "a")
	assert.NotContains(t, tags, "the")
	assert.NotContains(t, tags, longToken)
	assert.Contains(t, tags, "comedy")
}

func TestExtractEmptyDocumentYieldsEmptySet(t *testing.T) {
	svc := NewTaggingService()
	tags := svc.Extract(models.VideoDocument{})
	assert.Empty(t, tags)
}

// TestExtractIdempotent checks that re-running extraction over the
// stringified tag set (space-joined, itself passed back through as a
// title) produces the same set — §8 invariant 6.
func TestExtractIdempotent(t *testing.T) {
	svc := NewTaggingService()
	doc := models.VideoDocument{
		Title: "Bollywood Comedy Night",
		Tag:   []string{"funny", "india"},
	}

	first := svc.ExtractSlice(doc)

	roundTripDoc := models.VideoDocument{Title: joinTokens(first)}
	second := svc.Extract(roundTripDoc)

	assert.Equal(t, len(first), len(second))
	for _, tok := range first {
		assert.Contains(t, second, tok)
	}
}

func joinTokens(tokens []string) string {
	out := ""
	for i, t := range tokens {
		if i > 0 {
			out += " "
		}
		out += t
	}
	return out
}
