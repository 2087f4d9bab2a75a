package service

import (
	"testing"

	"github.com/higagan/quizcracker-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAnswer_ExactMatch(t *testing.T) {
	options, answerID := ResolveAnswer([]string{"Paris", "Berlin", "Rome", "Madrid"}, "Paris")

	require.Len(t, options, 4)
	assert.Equal(t, []domain.Option{
		{ID: "a", Text: "Paris"},
		{ID: "b", Text: "Berlin"},
		{ID: "c", Text: "Rome"},
		{ID: "d", Text: "Madrid"},
	}, options)
	assert.Equal(t, "a", answerID)
}

func TestResolveAnswer_CaseAndPunctuationInsensitive(t *testing.T) {
	options, answerID := ResolveAnswer([]string{"Paris", "Berlin"}, "paris.")

	require.Len(t, options, 2, "near-identical answer must not be appended")
	assert.Equal(t, "a", answerID)
}

func TestResolveAnswer_FuzzyMatch(t *testing.T) {
	options, answerID := ResolveAnswer(
		[]string{"The mitochondria", "The nucleus"},
		"The mitochondrias",
	)

	require.Len(t, options, 2)
	assert.Equal(t, "a", answerID)
}

func TestResolveAnswer_FirstOptionOverThresholdWins(t *testing.T) {
	// Both spellings clear the similarity threshold; the earlier option
	// must be chosen even though the later one scores higher.
	options, answerID := ResolveAnswer(
		[]string{"mitochondria", "mitochondrias"},
		"mitochondriaz",
	)

	require.Len(t, options, 2)
	assert.Equal(t, "a", answerID)
}

func TestResolveAnswer_AppendsUnmatchedAnswer(t *testing.T) {
	options, answerID := ResolveAnswer([]string{"Berlin", "Rome"}, "Paris")

	require.Len(t, options, 3)
	assert.Equal(t, domain.Option{ID: "c", Text: "Paris"}, options[2])
	assert.Equal(t, "c", answerID)
}

func TestResolveAnswer_TrimsOptionWhitespace(t *testing.T) {
	options, answerID := ResolveAnswer([]string{"  Paris  ", "Berlin"}, "Paris")

	assert.Equal(t, "Paris", options[0].Text)
	assert.Equal(t, "a", answerID)
}
