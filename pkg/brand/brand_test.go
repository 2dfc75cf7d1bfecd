package brand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStripsPunctuationAndSuffixes(t *testing.T) {
	assert.Equal(t, "acme", Normalize("Acme Inc."))
	assert.Equal(t, "acme", Normalize("  ACME  "))
	assert.Equal(t, "coca cola", Normalize("Coca-Cola Co"))
	assert.Equal(t, "acme", Normalize("acme, llc"))
}

func TestExtractMatchesKnownBrands(t *testing.T) {
	matcher := NewMatcher([]string{"Acme Inc.", "Globex"})

	mentions := matcher.Extract([]string{
		"I always buy acme products",
		"Acme is fine but globex is cheaper",
		"never heard of either",
	})

	require.Len(t, mentions, 2)
	assert.Equal(t, "Acme Inc.", mentions[0].Canonical)
	assert.Equal(t, 2, mentions[0].Count)
	assert.True(t, mentions[0].KnownMatch)
	assert.Equal(t, "Globex", mentions[1].Canonical)
	assert.Equal(t, 1, mentions[1].Count)
}

func TestExtractDiscoversRepeatedCapitalizedTokens(t *testing.T) {
	matcher := NewMatcher(nil)

	mentions := matcher.Extract([]string{
		"Initech changed everything for me",
		"my office runs on Initech",
		"Hooli showed up once",
	})

	require.Len(t, mentions, 1)
	assert.Equal(t, "Initech", mentions[0].Canonical)
	assert.Equal(t, 2, mentions[0].Count)
	assert.False(t, mentions[0].KnownMatch)
}

func TestExtractContextHit(t *testing.T) {
	matcher := NewMatcher([]string{"Acme"})

	withContext := matcher.Extract([]string{"I would recommend acme to anyone"})
	require.Len(t, withContext, 1)
	assert.True(t, withContext[0].ContextHit)

	without := matcher.Extract([]string{"acme was mentioned in passing"})
	require.Len(t, without, 1)
	assert.False(t, without[0].ContextHit)
}

func TestExtractIsDeterministic(t *testing.T) {
	matcher := NewMatcher([]string{"Acme", "Globex", "Initech"})
	texts := []string{
		"acme and globex and initech",
		"globex again",
		"acme again",
	}

	first := matcher.Extract(texts)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, matcher.Extract(texts))
	}
}

func TestConfidenceWeights(t *testing.T) {
	assert.InDelta(t, 0.0, Confidence(false, false, false), 1e-9)
	assert.InDelta(t, 0.6, Confidence(true, false, false), 1e-9)
	assert.InDelta(t, 0.7, Confidence(false, true, false), 1e-9)
	assert.InDelta(t, 0.7, Confidence(true, false, true), 1e-9)
	// known + validated would be 1.3, capped at 1.0.
	assert.InDelta(t, 1.0, Confidence(true, true, false), 1e-9)
	assert.InDelta(t, 1.0, Confidence(true, true, true), 1e-9)
}
